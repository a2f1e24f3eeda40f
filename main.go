package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"leanloop/internal/config"
	"leanloop/internal/gitutil"
	"leanloop/internal/ledger"
	"leanloop/internal/loop"
	"leanloop/internal/metrics"
	"leanloop/internal/oracle"
	"leanloop/internal/snapshot"
	"leanloop/internal/toolchain"
)

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		slog.Error("leanloop failed", "err", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "leanloop",
		Short:         "Repair, extend, and document Lean files with deterministic fixes and an LLM oracle",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.AddCommand(newRunCmd())
	return root
}

func newRunCmd() *cobra.Command {
	var (
		file          string
		maxIters      int
		beam          int
		updates       int
		theme         string
		scratchBranch bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Repair a Lean file until it builds, then optionally extend and document it",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAgent(cmd.Context(), file, maxIters, beam, updates, theme, scratchBranch)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "path to the Lean file to improve")
	cmd.Flags().IntVar(&maxIters, "max-iters", 20, "maximum iterations across all steps")
	cmd.Flags().IntVar(&beam, "beam", 3, "how many deterministic candidates to try per iteration")
	cmd.Flags().IntVar(&updates, "updates", 0, "number of extension cycles after a clean build")
	cmd.Flags().StringVar(&theme, "theme", "", "guides extension, e.g. 'complex analysis'")
	cmd.Flags().BoolVar(&scratchBranch, "scratch-branch", false, "create a temporary git branch before editing")
	cmd.MarkFlagRequired("file")

	return cmd
}

func runAgent(ctx context.Context, file string, maxIters, beam, updates int, theme string, scratchBranch bool) error {
	if ctx == nil {
		ctx = context.Background()
	}

	target, err := filepath.Abs(file)
	if err != nil {
		return fmt.Errorf("failed to resolve target path: %w", err)
	}

	proj, err := toolchain.FromFile(target)
	if err != nil {
		return err
	}

	cfg, err := config.Load(proj.Root)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	setupLogging(cfg.Logging.Verbose)
	slog.Debug("project discovered", "root", proj.Root, "lakefile", proj.Lakefile)

	if scratchBranch {
		if err := gitutil.EnsureBranch(ctx, proj.Root, "agent/run"); err != nil {
			return err
		}
	}

	runner := toolchain.NewRunner(proj).
		WithBuildTimeout(time.Duration(cfg.Build.BuildTimeoutMinutes) * time.Minute).
		WithCheckTimeout(time.Duration(cfg.Build.CheckTimeoutSeconds) * time.Second)
	collector := toolchain.NewCollector(runner)

	orc := oracle.NewClient(oracle.Config{
		APIKey:            cfg.Oracle.APIKey,
		Model:             cfg.Oracle.Model,
		BaseURL:           cfg.Oracle.BaseURL,
		RequestsPerMinute: cfg.Oracle.RequestsPerMinute,
	})

	snaps, err := snapshot.NewStore(proj.Root, target)
	if err != nil {
		return err
	}

	sessionID := uuid.New().String()
	recorder, db := openRecorder(cfg.LedgerP, sessionID, target, theme)
	if db != nil {
		defer db.Close()
	}

	session := loop.NewSession(sessionID, target, maxIters, beam, updates, theme)
	status, err := loop.NewRunner(session, proj.Root, runner, collector, orc, snaps, recorder).Run(ctx)
	if err != nil {
		return err
	}

	if status == loop.StatusOk {
		color.Green("Build OK")
	} else {
		color.Yellow("Stopped without full success (%s)", status)
	}
	return nil
}

// openRecorder opens the run ledger. Bookkeeping is best-effort: a ledger
// that cannot be opened downgrades to a recorder that records nothing.
func openRecorder(path, sessionID, target, theme string) (*loop.Recorder, *sql.DB) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		slog.Warn("failed to create ledger directory", "err", err)
		return loop.NewRecorder(sessionID, nil, nil), nil
	}

	db, err := ledger.Open(path)
	if err != nil {
		slog.Warn("failed to open run ledger", "path", path, "err", err)
		return loop.NewRecorder(sessionID, nil, nil), nil
	}

	led := ledger.New(db)
	if err := led.CreateSession(sessionID, target, theme, string(loop.StatusDirty)); err != nil {
		slog.Warn("failed to record session", "err", err)
	}

	return loop.NewRecorder(sessionID, led, metrics.NewHistogram(db)), db
}

func setupLogging(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}
