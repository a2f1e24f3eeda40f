package patch

import (
	"context"
	"testing"
)

// TestLooksLikeDiff tests diff sniffing on typical oracle replies
func TestLooksLikeDiff(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected bool
	}{
		{
			name:     "unified diff header",
			text:     "--- a/Proof.lean\n+++ b/Proof.lean\n@@ -1,3 +1,4 @@\n+import Mathlib\n theorem foo : True := trivial\n",
			expected: true,
		},
		{
			name:     "git style diff",
			text:     "diff --git a/Proof.lean b/Proof.lean\n--- a/Proof.lean\n+++ b/Proof.lean\n@@ -1 +1,2 @@\n+import Mathlib\n",
			expected: true,
		},
		{
			name:     "full file replacement",
			text:     "import Mathlib\ntheorem foo : True := trivial\n",
			expected: false,
		},
		{
			name:     "prose with embedded diff",
			text:     "Apply this:\n--- a/Proof.lean\n+++ b/Proof.lean\n@@ -1 +1,2 @@\n+import Mathlib\n",
			expected: true,
		},
		{
			name:     "lean file with subtraction",
			text:     "theorem sub : 3 - 1 = 2 := by norm_num\n",
			expected: false,
		},
		{
			name:     "empty",
			text:     "",
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := LooksLikeDiff(tt.text); got != tt.expected {
				t.Errorf("LooksLikeDiff(%q) = %v, want %v", tt.text, got, tt.expected)
			}
		})
	}
}

// TestApplyRejectsMalformedDiff tests that garbage is rejected before the
// patch tool ever runs
func TestApplyRejectsMalformedDiff(t *testing.T) {
	dir := t.TempDir()
	err := Apply(context.Background(), "this is not a diff at all", dir)
	if err == nil {
		t.Fatal("Expected error for malformed diff")
	}
}
