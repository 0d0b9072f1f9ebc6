// Package designs manages the room design catalogue: generating new designs
// from style metadata and serving stored ones.
package designs

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"furnishAi/internal/codec"
	"furnishAi/internal/events"
	"furnishAi/internal/storage"
	"furnishAi/internal/vision"
)

// GenerateRequest describes a design to produce.
type GenerateRequest struct {
	SessionID string
	Metadata  storage.RoomMetadata
	Prompt    string
}

// GenerateResult carries the persisted design together with the raw image
// bytes so the transport layer can build a data URI without re-decoding.
type GenerateResult struct {
	Design storage.RoomDesign
	Image  []byte
	MIME   string
}

// Service generates room designs and persists them in the catalogue.
type Service struct {
	Store     storage.Store
	Generator vision.Generator
	Events    *events.Broker
}

// Generate renders a room design image from the request metadata, persists it,
// and returns the stored record.
func (s Service) Generate(ctx context.Context, req GenerateRequest) (GenerateResult, error) {
	meta := req.Metadata.Normalized()

	s.publish(req.SessionID, "generating", "")
	resp, err := s.Generator.Generate(ctx, vision.Request{
		Parts:      []vision.Part{vision.TextPart(buildDesignPrompt(meta, req.Prompt))},
		Modalities: []vision.Modality{vision.ModalityText, vision.ModalityImage},
	})
	if err != nil {
		s.publish(req.SessionID, "failed", "generating")
		return GenerateResult{}, fmt.Errorf("designs: generate: %w", err)
	}

	img, text, err := vision.ExtractResult(resp)
	if err != nil {
		s.publish(req.SessionID, "failed", "extracting")
		if errors.Is(err, vision.ErrNoImage) {
			return GenerateResult{}, ErrNoDesignImage
		}
		return GenerateResult{}, fmt.Errorf("designs: extract: %w", err)
	}

	design, err := s.Store.CreateRoomDesign(ctx, storage.RoomDesign{
		SessionID:   req.SessionID,
		Metadata:    meta,
		ImageData:   codec.Encode(img.Data),
		Description: text,
	})
	if err != nil {
		s.publish(req.SessionID, "failed", "storing")
		return GenerateResult{}, fmt.Errorf("designs: store design: %w", err)
	}

	s.publish(req.SessionID, "done", design.ID)
	return GenerateResult{Design: design, Image: img.Data, MIME: img.MIME}, nil
}

// ErrNoDesignImage means the model answered without producing an image.
var ErrNoDesignImage = errors.New("model failed to generate a design image")

func (s Service) publish(sessionID, stage, detail string) {
	if s.Events == nil {
		return
	}
	s.Events.Publish(events.Event{
		SessionID: sessionID,
		Flow:      events.FlowDesign,
		Stage:     stage,
		Detail:    detail,
	})
}

func buildDesignPrompt(meta storage.RoomMetadata, extra string) string {
	var b strings.Builder
	b.WriteString("You are a professional AI interior designer.\n\n")
	fmt.Fprintf(&b, "Generate a photo-realistic %s design of a %s in %s style.\n", meta.DesignType, meta.RoomType, meta.Style)
	b.WriteString("The room should be well lit with natural lighting, furnished tastefully, and rendered from a natural eye-level perspective.\n")
	if trimmed := strings.TrimSpace(extra); trimmed != "" {
		b.WriteString("\nAdditional requirements:\n")
		b.WriteString(trimmed)
		b.WriteString("\n")
	}
	b.WriteString("\nAlso provide a brief description of the generated design.")
	return b.String()
}
