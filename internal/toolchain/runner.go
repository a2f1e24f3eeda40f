package toolchain

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os/exec"
	"time"
)

const (
	defaultBuildTimeout = 20 * time.Minute
	defaultCheckTimeout = 60 * time.Second
	defaultMaxOutput    = 256 * 1024 // 256KB per stream
)

// RunResult contains the outcome of one toolchain invocation
type RunResult struct {
	ExitCode    int
	Stdout      string
	Stderr      string
	DurationMs  int64
	ToolMissing bool
	TimedOut    bool
}

// OK reports whether the invocation succeeded
func (r *RunResult) OK() bool {
	return !r.ToolMissing && !r.TimedOut && r.ExitCode == 0
}

// Runner invokes lake/lean for a project with bounded timeouts
type Runner struct {
	project        *Project
	buildTimeout   time.Duration
	checkTimeout   time.Duration
	maxOutputBytes int
}

// NewRunner creates a runner with default timeouts
func NewRunner(project *Project) *Runner {
	return &Runner{
		project:        project,
		buildTimeout:   defaultBuildTimeout,
		checkTimeout:   defaultCheckTimeout,
		maxOutputBytes: defaultMaxOutput,
	}
}

// WithBuildTimeout sets the whole-project build timeout
func (r *Runner) WithBuildTimeout(d time.Duration) *Runner {
	if d > 0 {
		r.buildTimeout = d
	}
	return r
}

// WithCheckTimeout sets the single-file check timeout
func (r *Runner) WithCheckTimeout(d time.Duration) *Runner {
	if d > 0 {
		r.checkTimeout = d
	}
	return r
}

// Build runs `lake build` in the project root. An empty target builds the
// whole project.
func (r *Runner) Build(ctx context.Context, target string) *RunResult {
	args := []string{"build"}
	if target != "" {
		args = append(args, target)
	}
	return r.run(ctx, r.buildTimeout, "lake", args...)
}

// CheckFile compiles a single file. It prefers `lake env lean` so the Lake
// toolchain and dependencies are visible; when the lake binary is missing it
// falls back to invoking lean directly. A missing fallback is reported as
// ToolMissing, never as success.
func (r *Runner) CheckFile(ctx context.Context, file string) *RunResult {
	res := r.run(ctx, r.checkTimeout, "lake", "env", "lean", file)
	if !res.ToolMissing {
		return res
	}
	slog.Warn("lake binary unavailable, falling back to direct lean invocation", "file", file)
	return r.run(ctx, r.checkTimeout, "lean", file)
}

func (r *Runner) run(ctx context.Context, timeout time.Duration, name string, args ...string) *RunResult {
	result := &RunResult{}
	start := time.Now()

	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, name, args...)
	cmd.Dir = r.project.Root

	var stdoutBuf, stderrBuf limitedBuffer
	stdoutBuf.limit = r.maxOutputBytes
	stderrBuf.limit = r.maxOutputBytes
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf

	err := cmd.Run()
	result.DurationMs = time.Since(start).Milliseconds()
	result.Stdout = stdoutBuf.String()
	result.Stderr = stderrBuf.String()

	if err != nil {
		var exitErr *exec.ExitError
		switch {
		case runCtx.Err() == context.DeadlineExceeded:
			result.TimedOut = true
			result.ExitCode = -1
			if result.Stderr == "" {
				result.Stderr = "command timed out"
			}
		case errors.As(err, &exitErr):
			result.ExitCode = exitErr.ExitCode()
		case errors.Is(err, exec.ErrNotFound):
			result.ToolMissing = true
			result.ExitCode = -1
			result.Stderr = name + ": executable not found in PATH"
		default:
			result.ExitCode = -1
			if result.Stderr == "" {
				result.Stderr = err.Error()
			}
		}
	}

	return result
}

// limitedBuffer caps captured output at a fixed byte limit
type limitedBuffer struct {
	bytes.Buffer
	limit     int
	truncated bool
}

func (lb *limitedBuffer) Write(p []byte) (n int, err error) {
	if lb.Len()+len(p) > lb.limit {
		remaining := lb.limit - lb.Len()
		if remaining > 0 {
			lb.Buffer.Write(p[:remaining])
		}
		lb.truncated = true
		return len(p), nil
	}
	return lb.Buffer.Write(p)
}
