package media

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// LocalArchiver stores generated images on the local filesystem, for
// deployments without object storage.
type LocalArchiver struct {
	BaseDir string
}

// NewLocalArchiver constructs an archiver writing to the provided directory.
// If baseDir is empty, os.TempDir() is used.
func NewLocalArchiver(baseDir string) (*LocalArchiver, error) {
	dir := baseDir
	if dir == "" {
		dir = os.TempDir()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create local media dir: %w", err)
	}
	return &LocalArchiver{BaseDir: dir}, nil
}

// Archive writes the image to a uniquely named file and returns its path as
// the key. No URL is produced for local storage.
func (l *LocalArchiver) Archive(_ context.Context, input ArchiveInput) (ArchiveResult, error) {
	if len(input.Data) == 0 {
		return ArchiveResult{}, fmt.Errorf("archive payload is required")
	}

	name := uuid.NewString() + extForMIME(input.ContentType)
	target := filepath.Join(l.BaseDir, name)
	if err := os.WriteFile(target, input.Data, 0o644); err != nil {
		return ArchiveResult{}, fmt.Errorf("write archive file: %w", err)
	}

	return ArchiveResult{
		Key: target,
		URL: "",
	}, nil
}
