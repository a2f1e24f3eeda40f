package loop

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"os"
	"time"

	"github.com/fatih/color"

	"leanloop/internal/fixes"
	"leanloop/internal/metrics"
	"leanloop/internal/oracle"
	"leanloop/internal/patch"
	"leanloop/internal/toolchain"
)

// Builder runs whole-project builds.
type Builder interface {
	Build(ctx context.Context, target string) *toolchain.RunResult
}

// Diagnoser collects diagnostics for a single file.
type Diagnoser interface {
	Diagnose(ctx context.Context, file string) []toolchain.Diagnostic
}

// Oracle is the escalation tier: an untrusted generative fixer that may
// decline any request. A nil result with a nil error means "declined".
type Oracle interface {
	Repair(ctx context.Context, fileText string, errs []string) (*oracle.Result, error)
	Extend(ctx context.Context, fileText, theme string) (*oracle.Result, error)
	Document(ctx context.Context, fileText string) (*oracle.Result, error)
}

// Snapshotter records every version of the working file a run produces.
type Snapshotter interface {
	Save(tag, content string) (string, error)
}

// PatchApplier applies a unified diff against files under dir.
type PatchApplier func(ctx context.Context, diffText, dir string) error

// Runner drives the repair/extend/document state machine for one session.
// Execution is fully sequential; the working file is the only shared mutable
// resource and all history lives in snapshots.
type Runner struct {
	session    *Session
	root       string
	builder    Builder
	diagnoser  Diagnoser
	oracle     Oracle
	snapshots  Snapshotter
	applyPatch PatchApplier
	recorder   *Recorder
}

// NewRunner creates a runner for one session. root is the project root the
// build collaborator and patch tool operate in.
func NewRunner(session *Session, root string, builder Builder, diagnoser Diagnoser, orc Oracle, snapshots Snapshotter, recorder *Recorder) *Runner {
	return &Runner{
		session:    session,
		root:       root,
		builder:    builder,
		diagnoser:  diagnoser,
		oracle:     orc,
		snapshots:  snapshots,
		applyPatch: patch.Apply,
		recorder:   recorder,
	}
}

// WithPatchApplier overrides the patch application procedure
func (r *Runner) WithPatchApplier(fn PatchApplier) *Runner {
	r.applyPatch = fn
	return r
}

// Run executes the control loop until a terminal state or budget exhaustion.
// It returns the session's final status; errors are reserved for local I/O
// failures that leave no safe way to continue.
func (r *Runner) Run(ctx context.Context) (Status, error) {
	s := r.session

	data, err := os.ReadFile(s.Target)
	if err != nil {
		return StatusStuck, fmt.Errorf("failed to read target: %w", err)
	}
	src := string(data)

	if _, err := r.snapshots.Save("iter000", src); err != nil {
		return StatusStuck, err
	}

	for it := 1; it <= s.MaxIters; it++ {
		s.Iter = it
		color.Cyan("iteration %d", it)

		build := r.builder.Build(ctx, "")
		r.recorder.Latency(metrics.OpBuild, build.DurationMs)
		if build.ToolMissing {
			slog.Error("build toolchain unavailable", "stderr", build.Stderr)
		}

		if build.OK() && !toolchain.HasPlaceholder(src) {
			status, done, err := r.cleanStep(ctx, it, &src)
			if err != nil {
				return StatusStuck, err
			}
			if done {
				r.recorder.Complete(status, it)
				return status, nil
			}
			continue
		}

		status, done, err := r.repairStep(ctx, it, &src)
		if err != nil {
			return StatusStuck, err
		}
		if done {
			r.recorder.Complete(status, it)
			return status, nil
		}
	}

	color.Yellow("Iteration budget exhausted (status %s).", s.Status)
	r.recorder.Complete(s.Status, s.MaxIters)
	return s.Status, nil
}

// cleanStep handles a clean build: extend while budget remains, then the
// one-shot documentation phase.
func (r *Runner) cleanStep(ctx context.Context, it int, src *string) (Status, bool, error) {
	s := r.session
	color.Green("Build OK.")

	if s.Updates > 0 {
		color.Green("Extension step: remaining updates = %d (theme %q).", s.Updates, s.Theme)
		s.Updates--

		res, err := r.oracle.Extend(ctx, *src, s.Theme)
		if err != nil {
			slog.Warn("oracle extend failed", "err", err)
			res = nil
		}
		if res == nil {
			// Keep the last compiled version; a declining oracle is not an error.
			color.Yellow("Oracle returned no code during extension. Stopping.")
			s.Status = StatusOk
			return StatusOk, true, nil
		}
		r.recorder.OracleUsage(metrics.OpExtend, res)

		tag := fmt.Sprintf("iter%03d_extend", it)
		if err := r.writeTarget(res.Content, tag); err != nil {
			return StatusStuck, true, err
		}
		r.recorder.Iteration(it, "extend", 0, tag)
		*src = res.Content
		// The next iteration's build re-validates the extension.
		return s.Status, false, nil
	}

	if !s.didDoc {
		color.Blue("Adding documentation to the compiled file…")
		pre := *src

		res, err := r.oracle.Document(ctx, pre)
		if err != nil {
			slog.Warn("oracle document failed", "err", err)
			res = nil
		}
		if res == nil {
			slog.Info("no documentation produced, keeping compiled file")
		} else {
			r.recorder.OracleUsage(metrics.OpDocument, res)
			tag := fmt.Sprintf("iter%03d_docs", it)
			if err := r.writeTarget(res.Content, tag); err != nil {
				return StatusStuck, true, err
			}

			verify := r.builder.Build(ctx, "")
			r.recorder.Latency(metrics.OpBuild, verify.DurationMs)
			if !verify.OK() {
				color.Yellow("Documentation broke the build; reverting to compiled version.")
				if err := r.writeTarget(pre, fmt.Sprintf("iter%03d_docs_revert", it)); err != nil {
					return StatusStuck, true, err
				}
				*src = pre
			} else {
				*src = res.Content
			}
			r.recorder.Iteration(it, "document", 0, tag)
		}
		s.didDoc = true
	}

	color.Green("No more updates required. Stopping.")
	s.Status = StatusOk
	return StatusOk, true, nil
}

// repairStep handles a failing build: deterministic fixes first, then
// escalation to the oracle.
func (r *Runner) repairStep(ctx context.Context, it int, src *string) (Status, bool, error) {
	s := r.session

	diags := r.diagnoser.Diagnose(ctx, s.Target)
	errs := toolchain.ErrorTexts(diags)
	baseline := toolchain.CountErrors(diags)
	s.Errors = errs
	slog.Info("collected diagnostics", "errors", baseline)

	edits := fixes.Propose(*src, errs)
	if len(edits) > 0 {
		accepted, err := r.trialBeam(ctx, *src, edits, baseline)
		if err != nil {
			return StatusStuck, true, err
		}
		if accepted != "" {
			tag := fmt.Sprintf("iter%03d_det", it)
			if err := r.writeTarget(accepted, tag); err != nil {
				return StatusStuck, true, err
			}
			r.recorder.Iteration(it, "deterministic", baseline, tag)
			*src = accepted
			return s.Status, false, nil
		}
		slog.Info("no deterministic candidate qualified, escalating")
	}

	color.Yellow("No deterministic fixes. Escalating to the oracle…")
	res, err := r.oracle.Repair(ctx, *src, errs)
	if err != nil {
		slog.Warn("oracle repair failed", "err", err)
		res = nil
	}
	if res == nil {
		color.Red("Oracle returned no code during repair. Stopping.")
		s.Status = StatusStuck
		return StatusStuck, true, nil
	}
	r.recorder.OracleUsage(metrics.OpRepair, res)

	if patch.LooksLikeDiff(res.Content) {
		return r.applyOraclePatch(ctx, it, baseline, res.Content, src)
	}

	tag := fmt.Sprintf("iter%03d_llmrepair", it)
	if err := r.writeTarget(res.Content, tag); err != nil {
		return StatusStuck, true, err
	}
	r.recorder.Iteration(it, "repair", baseline, tag)
	*src = res.Content
	return s.Status, false, nil
}

// applyOraclePatch applies a diff-shaped oracle reply wholesale. The working
// tree is snapshotted first because the applicator makes no safety guarantee
// of its own; an unapplied patch leaves no safe recovery path, so failure is
// terminal.
func (r *Runner) applyOraclePatch(ctx context.Context, it, baseline int, diffText string, src *string) (Status, bool, error) {
	s := r.session

	if _, err := r.snapshots.Save(fmt.Sprintf("iter%03d_prepatch", it), *src); err != nil {
		return StatusStuck, true, err
	}

	if err := r.applyPatch(ctx, diffText, r.root); err != nil {
		color.Red("Patch apply failed: %v", err)
		s.Status = StatusStuck
		return StatusStuck, true, nil
	}

	data, err := os.ReadFile(s.Target)
	if err != nil {
		return StatusStuck, true, fmt.Errorf("failed to re-read target after patch: %w", err)
	}
	*src = string(data)

	now := time.Now()
	if err := os.Chtimes(s.Target, now, now); err != nil {
		return StatusStuck, true, fmt.Errorf("failed to bump mtime: %w", err)
	}

	tag := fmt.Sprintf("iter%03d_patch", it)
	if _, err := r.snapshots.Save(tag, *src); err != nil {
		return StatusStuck, true, err
	}
	r.recorder.Iteration(it, "patch", baseline, tag)
	return s.Status, false, nil
}

// trialBeam trial-applies up to Beam candidate edits against the working
// file, reverting between candidates so trials never compound. It returns
// the best-of-beam candidate (fewest errors, ties broken by declaration
// order) provided its error count does not exceed the pre-trial baseline,
// or "" when no candidate qualifies. The working file is always restored to
// the pre-trial text before returning.
func (r *Runner) trialBeam(ctx context.Context, src string, edits []fixes.Edit, baseline int) (string, error) {
	if len(edits) > r.session.Beam {
		edits = edits[:r.session.Beam]
	}

	best := -1
	bestErrs := math.MaxInt

	for i, ed := range edits {
		cand := fixes.Apply(src, ed)
		if err := r.writeFile(cand); err != nil {
			return "", err
		}

		diags := r.diagnoser.Diagnose(ctx, r.session.Target)
		n := toolchain.CountErrors(diags)
		slog.Info("trialed deterministic edit", "note", ed.Note, "errors", n)

		if n < bestErrs {
			bestErrs = n
			best = i
		}

		if err := r.writeFile(src); err != nil {
			return "", err
		}
	}

	if best < 0 || bestErrs > baseline {
		return "", nil
	}
	return fixes.Apply(src, edits[best]), nil
}

// writeTarget writes new content to the working file and snapshots it
func (r *Runner) writeTarget(content, tag string) error {
	if err := r.writeFile(content); err != nil {
		return err
	}
	if _, err := r.snapshots.Save(tag, content); err != nil {
		return err
	}
	return nil
}

// writeFile writes the working file and bumps its mtime so downstream build
// tooling keyed off modification time does not skip re-validation
func (r *Runner) writeFile(content string) error {
	if err := os.WriteFile(r.session.Target, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", r.session.Target, err)
	}
	now := time.Now()
	if err := os.Chtimes(r.session.Target, now, now); err != nil {
		return fmt.Errorf("failed to bump mtime on %s: %w", r.session.Target, err)
	}
	return nil
}
