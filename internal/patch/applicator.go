package patch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"github.com/sourcegraph/go-diff/diff"
)

// LooksLikeDiff sniffs whether an oracle reply is a unified diff rather than
// a full file replacement
func LooksLikeDiff(text string) bool {
	t := strings.TrimSpace(text)
	if strings.HasPrefix(t, "--- ") || strings.HasPrefix(t, "diff ") {
		return true
	}
	return strings.Contains(t, "\n--- ") && strings.Contains(t, "\n+++ ") && strings.Contains(t, "\n@@ ")
}

// Apply applies a unified diff against files under dir using the patch tool.
// The diff is parsed first so malformed input is rejected before touching the
// tree. On a nonzero patch exit the tree is left in whatever partial state
// the tool produced; callers must snapshot before calling this.
func Apply(ctx context.Context, diffText, dir string) error {
	fds, err := diff.ParseMultiFileDiff([]byte(diffText))
	if err != nil {
		return fmt.Errorf("invalid diff format: %w", err)
	}
	if len(fds) == 0 {
		return fmt.Errorf("diff contains no file changes")
	}

	tf, err := os.CreateTemp("", "leanloop-*.patch")
	if err != nil {
		return fmt.Errorf("failed to create patch file: %w", err)
	}
	defer os.Remove(tf.Name())

	if _, err := tf.WriteString(diffText); err != nil {
		tf.Close()
		return fmt.Errorf("failed to write patch file: %w", err)
	}
	if err := tf.Close(); err != nil {
		return fmt.Errorf("failed to close patch file: %w", err)
	}

	cmd := exec.CommandContext(ctx, "patch", "-p0", "-i", tf.Name())
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	if err != nil {
		slog.Error("patch failed", "dir", dir, "output", strings.TrimSpace(string(out)))
		return fmt.Errorf("patch apply failed: %w", err)
	}

	return nil
}
