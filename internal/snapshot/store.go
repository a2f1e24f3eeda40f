package snapshot

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Store records every version of the working file a run produces. It is
// append-only: one file per (stem, tag) under a per-run timestamped directory
// so concurrent or repeated runs never collide. Tags embed a zero-padded
// iteration number, so lexical order approximates chronological order.
type Store struct {
	dir  string
	stem string
	ext  string
}

// NewStore creates the snapshots directory for a run rooted under
// <projectRoot>/.agent_runs/<timestamp>/snapshots
func NewStore(projectRoot, targetFile string) (*Store, error) {
	ts := time.Now().Format("20060102-150405")
	dir := filepath.Join(projectRoot, ".agent_runs", ts, "snapshots")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create snapshots directory: %w", err)
	}

	base := filepath.Base(targetFile)
	ext := filepath.Ext(base)
	return &Store{
		dir:  dir,
		stem: strings.TrimSuffix(base, ext),
		ext:  ext,
	}, nil
}

// Dir returns the snapshots directory for this run
func (s *Store) Dir() string {
	return s.dir
}

// Save writes an immutable snapshot of the full file content under the given
// tag and returns its location. Saving the same tag twice overwrites the
// earlier file; the loop never reuses a tag within a session.
func (s *Store) Save(tag, content string) (string, error) {
	path := filepath.Join(s.dir, fmt.Sprintf("%s.%s%s", s.stem, tag, s.ext))
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("failed to save snapshot %s: %w", tag, err)
	}
	return path, nil
}
