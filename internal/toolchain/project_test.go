package toolchain

import (
	"os"
	"path/filepath"
	"testing"
)

// TestFromFileWithLakefile tests root discovery by walking up to lakefile.lean
func TestFromFileWithLakefile(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "lakefile.lean"), []byte("-- lake\n"), 0o644); err != nil {
		t.Fatalf("Failed to write lakefile: %v", err)
	}

	sub := filepath.Join(root, "Src", "Deep")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatalf("Failed to create subdir: %v", err)
	}
	target := filepath.Join(sub, "Proof.lean")
	if err := os.WriteFile(target, []byte("theorem foo : True := trivial\n"), 0o644); err != nil {
		t.Fatalf("Failed to write target: %v", err)
	}

	proj, err := FromFile(target)
	if err != nil {
		t.Fatalf("FromFile failed: %v", err)
	}
	if proj.Root != root {
		t.Errorf("Expected root %s, got %s", root, proj.Root)
	}
	if proj.Lakefile != filepath.Join(root, "lakefile.lean") {
		t.Errorf("Unexpected lakefile path: %s", proj.Lakefile)
	}
}

// TestFromFileWithoutLakefile tests the parent-directory fallback
func TestFromFileWithoutLakefile(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "Standalone.lean")
	if err := os.WriteFile(target, []byte("theorem foo : True := trivial\n"), 0o644); err != nil {
		t.Fatalf("Failed to write target: %v", err)
	}

	proj, err := FromFile(target)
	if err != nil {
		t.Fatalf("FromFile failed: %v", err)
	}
	if proj.Root != dir {
		t.Errorf("Expected root %s, got %s", dir, proj.Root)
	}
	if proj.Lakefile != "" {
		t.Errorf("Expected empty lakefile, got %s", proj.Lakefile)
	}
}

// TestFromFileMissingTarget tests that a nonexistent file is an error
func TestFromFileMissingTarget(t *testing.T) {
	_, err := FromFile(filepath.Join(t.TempDir(), "nope.lean"))
	if err == nil {
		t.Fatal("Expected error for missing target file")
	}
}
