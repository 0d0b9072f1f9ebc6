package placement

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"furnishAi/internal/codec"
	"furnishAi/internal/storage"
	"furnishAi/internal/vision"
)

// RoomSource tags how the room image was obtained, so callers can tell a
// stored design from a generated fallback.
type RoomSource string

const (
	RoomSourceStored    RoomSource = "stored"
	RoomSourceGenerated RoomSource = "generated"
)

const emptyRoomPrompt = "Generate a neutral empty room with natural lighting for furniture placement"

var emptyRoomMetadata = storage.RoomMetadata{
	RoomType:   "empty",
	Style:      "neutral",
	DesignType: "interior",
}

// RoomResolution is the resolver's tagged result: the room image, its
// metadata, and whether it came from the store or from a generated default.
type RoomResolution struct {
	Image    []byte
	MIME     string
	Metadata storage.RoomMetadata
	Source   RoomSource
	DesignID string
}

// RoomResolver returns a usable room image for a placement request,
// generating a default empty room when no stored design applies.
type RoomResolver struct {
	Store    storage.Store
	Renderer vision.Renderer
}

// Resolve looks up the design scoped to its session when an id is given. A
// miss, or a record without an image payload, degrades to a generated default
// rather than failing; only a generation miss is fatal.
func (r RoomResolver) Resolve(ctx context.Context, designID, sessionID string) (RoomResolution, error) {
	if id := strings.TrimSpace(designID); id != "" {
		design, err := r.Store.GetRoomDesignForSession(ctx, id, sessionID)
		switch {
		case errors.Is(err, storage.ErrNotFound):
			log.Printf("placement: room design %s not found for session, generating default room", id)
		case err != nil:
			return RoomResolution{}, fmt.Errorf("fetch room design: %w", err)
		case design.ImageData == "":
			log.Printf("placement: room design %s has no image payload, generating default room", id)
		default:
			image, derr := codec.Decode(design.ImageData)
			if derr != nil {
				log.Printf("placement: room design %s has unreadable image data, generating default room: %v", id, derr)
				break
			}
			return RoomResolution{
				Image:    image,
				MIME:     "image/png",
				Metadata: design.Metadata.Normalized(),
				Source:   RoomSourceStored,
				DesignID: design.ID,
			}, nil
		}
	}

	img, err := r.Renderer.Render(ctx, emptyRoomPrompt)
	if err != nil {
		if errors.Is(err, vision.ErrNoImage) {
			return RoomResolution{}, &GenerationError{Reason: "failed to generate empty room image"}
		}
		return RoomResolution{}, &UpstreamError{Err: err}
	}

	return RoomResolution{
		Image:    img.Data,
		MIME:     img.MIME,
		Metadata: emptyRoomMetadata,
		Source:   RoomSourceGenerated,
	}, nil
}
