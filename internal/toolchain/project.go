package toolchain

import (
	"fmt"
	"os"
	"path/filepath"
)

// Project represents a Lean project rooted at (or above) a target file
type Project struct {
	Root     string
	Lakefile string // empty when no lakefile.lean was found
}

// FromFile discovers the project root by walking up from the given file
// until a lakefile.lean is found. Without one, the file's parent directory
// becomes the root and Lakefile stays empty.
func FromFile(file string) (*Project, error) {
	abs, err := filepath.Abs(file)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", file, err)
	}

	if _, err := os.Stat(abs); err != nil {
		return nil, fmt.Errorf("target file does not exist: %s", abs)
	}

	cur := filepath.Dir(abs)
	for {
		lf := filepath.Join(cur, "lakefile.lean")
		if _, err := os.Stat(lf); err == nil {
			return &Project{Root: cur, Lakefile: lf}, nil
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			break
		}
		cur = parent
	}

	return &Project{Root: filepath.Dir(abs)}, nil
}
