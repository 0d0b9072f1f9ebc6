package placement_test

import (
	"context"
	"errors"
	"testing"

	"furnishAi/internal/codec"
	"furnishAi/internal/placement"
	"furnishAi/internal/storage"
	"furnishAi/internal/vision"
)

type fakeRenderer struct {
	calls int
	img   vision.Image
	err   error
}

func (f *fakeRenderer) Render(_ context.Context, _ string) (vision.Image, error) {
	f.calls++
	if f.err != nil {
		return vision.Image{}, f.err
	}
	return f.img, nil
}

func seedDesign(t *testing.T, store *storage.InMemoryStore, design storage.RoomDesign) {
	t.Helper()
	if _, err := store.CreateRoomDesign(context.Background(), design); err != nil {
		t.Fatalf("seed design: %v", err)
	}
}

func TestRoomResolveStoredDesign(t *testing.T) {
	store := storage.NewInMemoryStore()
	seedDesign(t, store, storage.RoomDesign{
		ID:        "design-1",
		SessionID: "session-1",
		Metadata:  storage.RoomMetadata{RoomType: "living room", Style: "scandinavian"},
		ImageData: codec.Encode([]byte("room-bytes")),
	})

	renderer := &fakeRenderer{}
	resolver := placement.RoomResolver{Store: store, Renderer: renderer}

	res, err := resolver.Resolve(context.Background(), "design-1", "session-1")
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if res.Source != placement.RoomSourceStored {
		t.Errorf("Source = %q, want stored", res.Source)
	}
	if res.DesignID != "design-1" {
		t.Errorf("DesignID = %q", res.DesignID)
	}
	if string(res.Image) != "room-bytes" {
		t.Errorf("Image = %q", res.Image)
	}
	if res.Metadata.DesignType != "interior" {
		t.Errorf("metadata not normalized: %+v", res.Metadata)
	}
	if renderer.calls != 0 {
		t.Errorf("renderer called %d times for a stored design", renderer.calls)
	}
}

func TestRoomResolveGeneratesWhenDesignMissing(t *testing.T) {
	renderer := &fakeRenderer{img: vision.Image{Data: []byte("generated"), MIME: "image/png"}}
	resolver := placement.RoomResolver{Store: storage.NewInMemoryStore(), Renderer: renderer}

	res, err := resolver.Resolve(context.Background(), "missing-id", "session-1")
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if res.Source != placement.RoomSourceGenerated {
		t.Errorf("Source = %q, want generated", res.Source)
	}
	if res.DesignID != "" {
		t.Errorf("DesignID = %q, want empty for a generated room", res.DesignID)
	}
	if renderer.calls != 1 {
		t.Errorf("renderer called %d times, want 1", renderer.calls)
	}
}

func TestRoomResolveGeneratesWhenImagePayloadMissing(t *testing.T) {
	store := storage.NewInMemoryStore()
	seedDesign(t, store, storage.RoomDesign{
		ID:        "design-1",
		SessionID: "session-1",
		Metadata:  storage.RoomMetadata{RoomType: "bedroom"},
	})

	renderer := &fakeRenderer{img: vision.Image{Data: []byte("generated"), MIME: "image/png"}}
	resolver := placement.RoomResolver{Store: store, Renderer: renderer}

	res, err := resolver.Resolve(context.Background(), "design-1", "session-1")
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if res.Source != placement.RoomSourceGenerated {
		t.Errorf("Source = %q, want generated fallback", res.Source)
	}
}

func TestRoomResolveSessionScoping(t *testing.T) {
	store := storage.NewInMemoryStore()
	seedDesign(t, store, storage.RoomDesign{
		ID:        "design-1",
		SessionID: "other-session",
		ImageData: codec.Encode([]byte("room-bytes")),
	})

	renderer := &fakeRenderer{img: vision.Image{Data: []byte("generated"), MIME: "image/png"}}
	resolver := placement.RoomResolver{Store: store, Renderer: renderer}

	res, err := resolver.Resolve(context.Background(), "design-1", "session-1")
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if res.Source != placement.RoomSourceGenerated {
		t.Errorf("design from another session must not be served, got %q", res.Source)
	}
}

func TestRoomResolveGenerationFailure(t *testing.T) {
	renderer := &fakeRenderer{err: vision.ErrNoImage}
	resolver := placement.RoomResolver{Store: storage.NewInMemoryStore(), Renderer: renderer}

	_, err := resolver.Resolve(context.Background(), "", "session-1")
	var generation *placement.GenerationError
	if !errors.As(err, &generation) {
		t.Fatalf("got %v, want GenerationError", err)
	}
}

func TestRoomResolveUpstreamFailure(t *testing.T) {
	renderer := &fakeRenderer{err: errors.New("connection reset")}
	resolver := placement.RoomResolver{Store: storage.NewInMemoryStore(), Renderer: renderer}

	_, err := resolver.Resolve(context.Background(), "", "session-1")
	var upstream *placement.UpstreamError
	if !errors.As(err, &upstream) {
		t.Fatalf("got %v, want UpstreamError", err)
	}
}
