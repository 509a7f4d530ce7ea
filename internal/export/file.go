package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// FileDestination writes JSONL data to a file under a directory, replacing
// the previous export atomically via rename.
type FileDestination struct {
	dir  string
	name string
}

// NewFileDestination creates a destination writing to dir/name. The
// directory is created if missing.
func NewFileDestination(dir, name string) (*FileDestination, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create export dir: %w", err)
	}
	return &FileDestination{dir: dir, name: name}, nil
}

// Write replaces the export file with data.
func (d *FileDestination) Write(_ context.Context, data []byte) error {
	tmp, err := os.CreateTemp(d.dir, d.name+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, filepath.Join(d.dir, d.name)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename export file: %w", err)
	}
	return nil
}
