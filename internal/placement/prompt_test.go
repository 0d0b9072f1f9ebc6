package placement_test

import (
	"strings"
	"testing"

	"furnishAi/internal/placement"
	"furnishAi/internal/storage"
)

func TestBuildPlacementPromptSingleItem(t *testing.T) {
	meta := storage.RoomMetadata{RoomType: "living room", Style: "modern", DesignType: "interior"}
	prompt := placement.BuildPlacementPrompt(meta, []string{"blue velvet armchair"})

	for _, want := range []string{
		"Room Type: living room",
		"Style: modern",
		"Design Type: interior",
		"1. blue velvet armchair",
		"A furniture/object image that needs to be placed in the room",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestBuildPlacementPromptMultipleItems(t *testing.T) {
	prompt := placement.BuildPlacementPrompt(storage.RoomMetadata{}, []string{"armchair", "floor lamp", "rug"})

	if !strings.Contains(prompt, "3 furniture/object images") {
		t.Errorf("prompt missing item count, got:\n%s", prompt)
	}
	for _, want := range []string{"1. armchair", "2. floor lamp", "3. rug"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestBuildPlacementPromptNormalizesMetadata(t *testing.T) {
	prompt := placement.BuildPlacementPrompt(storage.RoomMetadata{}, []string{"chair"})

	if !strings.Contains(prompt, "Room Type: unknown") {
		t.Errorf("empty room type not normalized")
	}
	if !strings.Contains(prompt, "Design Type: interior") {
		t.Errorf("empty design type not normalized")
	}
}
