package placement

import (
	"fmt"
	"strings"

	"furnishAi/internal/storage"
)

// BuildPlacementPrompt composes the instruction block for the compositing
// call: room context, the enumerated furniture list, and the fixed
// directives the model needs for a believable composite. Pure function; the
// metadata is normalized so formatting never sees a missing field.
func BuildPlacementPrompt(meta storage.RoomMetadata, descriptions []string) string {
	meta = meta.Normalized()

	var b strings.Builder
	b.WriteString("You are a professional AI interior designer specializing in furniture placement and room visualization.\n\n")
	b.WriteString("You are given:\n")
	b.WriteString("1. A room design image (the base room)\n")
	if len(descriptions) == 1 {
		b.WriteString("2. A furniture/object image that needs to be placed in the room\n\n")
	} else {
		fmt.Fprintf(&b, "2. %d furniture/object images that need to be placed in the room, in the order listed below\n\n", len(descriptions))
	}

	b.WriteString("### Room Context\n")
	fmt.Fprintf(&b, "- Room Type: %s\n", meta.RoomType)
	fmt.Fprintf(&b, "- Style: %s\n", meta.Style)
	fmt.Fprintf(&b, "- Design Type: %s\n\n", meta.DesignType)

	b.WriteString("### Furniture/Object Details\n")
	for i, desc := range descriptions {
		fmt.Fprintf(&b, "%d. %s\n", i+1, desc)
	}
	b.WriteString("\n")

	b.WriteString("### Task:\n")
	b.WriteString("1. Analyze the room layout, perspective, lighting, and spatial dimensions\n")
	b.WriteString("2. Identify the most appropriate location for each furniture/object\n")
	b.WriteString("3. Scale each piece appropriately to match the room's proportions\n")
	b.WriteString("4. Adjust orientation and perspective to match the room's viewpoint\n")
	b.WriteString("5. Ensure shadows and lighting match the room environment\n")
	b.WriteString("6. Blend every piece naturally into the scene with realistic placement\n")
	b.WriteString("7. Maintain the room's existing design style and aesthetic\n\n")

	b.WriteString("### Output:\n")
	b.WriteString("- Generate a photo-realistic composite image showing the furniture placed naturally in the room\n")
	b.WriteString("- Provide a brief description of where and how each piece was placed, including any adjustments made for realism\n\n")

	b.WriteString("Important: The furniture should look like it belongs in the space naturally, with correct perspective, scale, lighting, and shadows.")
	return b.String()
}
