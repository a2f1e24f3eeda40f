package gitutil

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"
)

// EnsureBranch creates a timestamped scratch branch under the given prefix so
// agent edits stay isolated. A directory that is not a git work tree is
// tolerated silently; the loop does not otherwise interact with version
// control.
func EnsureBranch(ctx context.Context, root, prefix string) error {
	check := exec.CommandContext(ctx, "git", "rev-parse", "--is-inside-work-tree")
	check.Dir = root
	if err := check.Run(); err != nil {
		slog.Info("not a git repository, skipping branch creation", "root", root)
		return nil
	}

	name := fmt.Sprintf("%s-%s", prefix, time.Now().Format("20060102-150405"))
	cmd := exec.CommandContext(ctx, "git", "checkout", "-b", name)
	cmd.Dir = root
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("git checkout -b %s failed: %w (%s)", name, err, strings.TrimSpace(string(out)))
	}

	slog.Info("created scratch branch", "branch", name)
	return nil
}
