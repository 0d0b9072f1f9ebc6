package designs_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"furnishAi/internal/designs"
	"furnishAi/internal/storage"
	"furnishAi/internal/vision"
)

type fakeGenerator struct {
	calls []vision.Request
	resp  vision.Response
	err   error
}

func (f *fakeGenerator) Generate(_ context.Context, req vision.Request) (vision.Response, error) {
	f.calls = append(f.calls, req)
	if f.err != nil {
		return vision.Response{}, f.err
	}
	return f.resp, nil
}

func TestGeneratePersistsDesign(t *testing.T) {
	store := storage.NewInMemoryStore()
	gen := &fakeGenerator{resp: vision.Response{Parts: []vision.Part{
		vision.TextPart("A bright scandinavian living room."),
		vision.ImagePart([]byte("design-bytes"), "image/png"),
	}}}
	svc := designs.Service{Store: store, Generator: gen}

	result, err := svc.Generate(context.Background(), designs.GenerateRequest{
		SessionID: "session-1",
		Metadata:  storage.RoomMetadata{RoomType: "living room", Style: "scandinavian"},
		Prompt:    "include a fireplace",
	})
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}

	if len(gen.calls) != 1 {
		t.Fatalf("generator calls = %d, want 1", len(gen.calls))
	}
	prompt := gen.calls[0].Parts[0].Text
	for _, want := range []string{"living room", "scandinavian", "include a fireplace"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}

	if result.Design.ID == "" {
		t.Errorf("persisted design has no id")
	}
	if result.Design.Description != "A bright scandinavian living room." {
		t.Errorf("description = %q", result.Design.Description)
	}

	stored, err := store.GetRoomDesignForSession(context.Background(), result.Design.ID, "session-1")
	if err != nil {
		t.Fatalf("design not retrievable for session: %v", err)
	}
	if stored.ImageData == "" {
		t.Errorf("stored design has no image payload")
	}
}

func TestGenerateImagelessResponse(t *testing.T) {
	gen := &fakeGenerator{resp: vision.Response{Parts: []vision.Part{
		vision.TextPart("cannot comply"),
	}}}
	svc := designs.Service{Store: storage.NewInMemoryStore(), Generator: gen}

	_, err := svc.Generate(context.Background(), designs.GenerateRequest{SessionID: "session-1"})
	if !errors.Is(err, designs.ErrNoDesignImage) {
		t.Fatalf("got %v, want ErrNoDesignImage", err)
	}
}
