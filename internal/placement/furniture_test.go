package placement_test

import (
	"context"
	"errors"
	"testing"

	"furnishAi/internal/codec"
	"furnishAi/internal/placement"
	"furnishAi/internal/storage"
)

func seedFurniture(t *testing.T, store *storage.InMemoryStore, id, description string, data []byte) {
	t.Helper()
	_, err := store.CreateFurniture(context.Background(), storage.Furniture{
		ID:          id,
		SessionID:   "session-1",
		ImageData:   codec.Encode(data),
		Description: description,
	})
	if err != nil {
		t.Fatalf("seed furniture: %v", err)
	}
}

func TestResolveMixesLibraryAndUploads(t *testing.T) {
	store := storage.NewInMemoryStore()
	seedFurniture(t, store, "lib-1", "walnut coffee table", []byte("table-bytes"))
	seedFurniture(t, store, "lib-2", "", []byte("lamp-bytes"))

	resolver := placement.FurnitureResolver{Store: store}
	items, err := resolver.Resolve(context.Background(), placement.Selection{
		LibraryIDs: []string{"lib-1", "lib-2"},
		Uploads: []placement.Upload{
			{Data: []byte("chair-bytes"), MIME: "image/jpeg", Description: "blue velvet armchair"},
		},
	})
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("got %d items, want 3", len(items))
	}

	if items[0].Description != "walnut coffee table" {
		t.Errorf("items[0].Description = %q", items[0].Description)
	}
	if items[1].Description != placement.DefaultItemDescription {
		t.Errorf("items[1].Description = %q, want default", items[1].Description)
	}
	if string(items[2].Data) != "chair-bytes" || items[2].MIME != "image/jpeg" {
		t.Errorf("items[2] = %+v, want the upload last", items[2])
	}
}

func TestResolveSkipsMissingLibraryIDs(t *testing.T) {
	store := storage.NewInMemoryStore()
	seedFurniture(t, store, "lib-1", "oak bookshelf", []byte("shelf-bytes"))

	resolver := placement.FurnitureResolver{Store: store}
	items, err := resolver.Resolve(context.Background(), placement.Selection{
		LibraryIDs: []string{"does-not-exist", "lib-1"},
	})
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("got %d items, want 1", len(items))
	}
	if items[0].Description != "oak bookshelf" {
		t.Errorf("items[0].Description = %q", items[0].Description)
	}
}

func TestResolveLegacyFieldsFoldIntoLists(t *testing.T) {
	store := storage.NewInMemoryStore()
	seedFurniture(t, store, "legacy-id", "rattan chair", []byte("rattan-bytes"))

	resolver := placement.FurnitureResolver{Store: store}
	items, err := resolver.Resolve(context.Background(), placement.Selection{
		LegacyID: "legacy-id",
		LegacyUpload: &placement.Upload{
			Data: []byte("rug-bytes"),
			MIME: "image/png",
		},
	})
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("got %d items, want 2", len(items))
	}
	if items[0].Description != "rattan chair" {
		t.Errorf("library item should come first, got %+v", items[0])
	}
	if items[1].Description != placement.DefaultItemDescription {
		t.Errorf("legacy upload description = %q, want default", items[1].Description)
	}
}

func TestResolveRejectsBadUploads(t *testing.T) {
	resolver := placement.FurnitureResolver{Store: storage.NewInMemoryStore()}

	tests := []struct {
		name   string
		upload placement.Upload
	}{
		{"unsupported type", placement.Upload{Data: []byte("gif"), MIME: "image/gif"}},
		{"empty payload", placement.Upload{Data: nil, MIME: "image/png"}},
		{"oversize payload", placement.Upload{Data: make([]byte, placement.MaxImageBytes+1), MIME: "image/png"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := resolver.Resolve(context.Background(), placement.Selection{
				Uploads: []placement.Upload{tt.upload},
			})
			var validation *placement.ValidationError
			if !errors.As(err, &validation) {
				t.Fatalf("got %v, want ValidationError", err)
			}
		})
	}
}

func TestResolveAcceptsMIMEWithParameters(t *testing.T) {
	resolver := placement.FurnitureResolver{Store: storage.NewInMemoryStore()}
	items, err := resolver.Resolve(context.Background(), placement.Selection{
		Uploads: []placement.Upload{
			{Data: []byte("png-bytes"), MIME: "Image/PNG; charset=binary"},
		},
	})
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if items[0].MIME != "image/png" {
		t.Errorf("MIME = %q, want normalized image/png", items[0].MIME)
	}
}

func TestResolveEmptySelection(t *testing.T) {
	resolver := placement.FurnitureResolver{Store: storage.NewInMemoryStore()}
	_, err := resolver.Resolve(context.Background(), placement.Selection{})
	var validation *placement.ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("got %v, want ValidationError", err)
	}
}
