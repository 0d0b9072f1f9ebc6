package placement

import (
	"context"
	"errors"
	"log"
	"strings"

	"furnishAi/internal/codec"
	"furnishAi/internal/storage"
)

const (
	// MaxImageBytes is the upload size ceiling per furniture image.
	MaxImageBytes = 10 * 1024 * 1024

	// DefaultItemDescription stands in when neither the caller nor the
	// library record provides one. The prompt builder relies on every item
	// carrying a non-empty description.
	DefaultItemDescription = "Not provided"
)

var allowedImageTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
	"image/webp": {},
	"image/heic": {},
	"image/heif": {},
}

// Upload is a freshly uploaded furniture image with an optional description.
type Upload struct {
	Data        []byte
	MIME        string
	Description string
}

// Selection names the furniture for one placement request: stored library
// items by id, fresh uploads, and the legacy single-item fields older clients
// still send.
type Selection struct {
	LibraryIDs   []string
	Uploads      []Upload
	LegacyID     string
	LegacyUpload *Upload
}

// Item is the resolver's uniform output unit: image bytes plus a non-empty
// description, alive for a single placement request.
type Item struct {
	Data        []byte
	MIME        string
	Description string
}

// FurnitureResolver turns a Selection into an ordered list of items, reading
// from the store but never writing.
type FurnitureResolver struct {
	Store storage.Store
}

// Resolve fetches library items and validates uploads. Stale library ids are
// skipped so one dangling reference cannot block the remaining items; uploads
// are caller-controlled and fail the whole request on a bad media type or
// oversize payload. Library items come first, each group in input order.
func (r FurnitureResolver) Resolve(ctx context.Context, sel Selection) ([]Item, error) {
	ids := make([]string, 0, len(sel.LibraryIDs)+1)
	ids = append(ids, sel.LibraryIDs...)
	if id := strings.TrimSpace(sel.LegacyID); id != "" {
		ids = append(ids, id)
	}

	uploads := make([]Upload, 0, len(sel.Uploads)+1)
	uploads = append(uploads, sel.Uploads...)
	if sel.LegacyUpload != nil {
		uploads = append(uploads, *sel.LegacyUpload)
	}

	items := make([]Item, 0, len(ids)+len(uploads))

	for _, id := range ids {
		record, err := r.Store.GetFurniture(ctx, id)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				log.Printf("placement: furniture %s not in library, skipping", id)
				continue
			}
			return nil, &UpstreamError{Err: err}
		}
		data, err := codec.Decode(record.ImageData)
		if err != nil {
			log.Printf("placement: furniture %s has unreadable image data, skipping: %v", id, err)
			continue
		}
		items = append(items, Item{
			Data:        data,
			MIME:        "image/png",
			Description: orDefaultDescription(record.Description),
		})
	}

	for _, up := range uploads {
		mime := normalizeMIME(up.MIME)
		if _, ok := allowedImageTypes[mime]; !ok {
			return nil, validationf("unsupported file type: %s", up.MIME)
		}
		if len(up.Data) > MaxImageBytes {
			return nil, validationf("image exceeds %d MB size limit", MaxImageBytes/(1024*1024))
		}
		if len(up.Data) == 0 {
			return nil, validationf("empty furniture image upload")
		}
		items = append(items, Item{
			Data:        up.Data,
			MIME:        mime,
			Description: orDefaultDescription(up.Description),
		})
	}

	if len(items) == 0 {
		return nil, validationf("provide a furniture image or select from library")
	}
	return items, nil
}

func orDefaultDescription(desc string) string {
	if trimmed := strings.TrimSpace(desc); trimmed != "" {
		return trimmed
	}
	return DefaultItemDescription
}

func normalizeMIME(mime string) string {
	mime = strings.TrimSpace(strings.ToLower(mime))
	if base, _, ok := strings.Cut(mime, ";"); ok {
		mime = strings.TrimSpace(base)
	}
	return mime
}
