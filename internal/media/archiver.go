// Package media archives generated images (composites and room designs) to
// object storage so they outlive the API response.
package media

import (
	"context"
	"errors"
)

// ErrArchiverDisabled indicates that archiving is not currently enabled.
var ErrArchiverDisabled = errors.New("media archiver disabled")

// ArchiveInput wraps one generated image payload.
type ArchiveInput struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ArchiveResult captures the canonical object key and its accessible URL.
type ArchiveResult struct {
	Key string
	URL string
}

// Archiver hides the backing implementation for storing generated images.
type Archiver interface {
	Archive(ctx context.Context, input ArchiveInput) (ArchiveResult, error)
}

type disabledArchiver struct{}

func (disabledArchiver) Archive(_ context.Context, _ ArchiveInput) (ArchiveResult, error) {
	return ArchiveResult{}, ErrArchiverDisabled
}

// Disabled returns an archiver that always signals disabled archiving.
func Disabled() Archiver {
	return disabledArchiver{}
}
