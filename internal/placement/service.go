package placement

import (
	"context"
	"errors"
	"log"

	"furnishAi/internal/events"
	"furnishAi/internal/vision"
)

// Stage identifies a step of the placement sequence. The sequence is linear;
// a failing stage short-circuits the rest.
type Stage string

const (
	StageResolvingFurniture Stage = "resolving_furniture"
	StageResolvingRoom      Stage = "resolving_room"
	StageBuildingPrompt     Stage = "building_prompt"
	StageInvoking           Stage = "invoking_model"
	StageExtracting         Stage = "extracting_response"
	StageDone               Stage = "done"
	StageFailed             Stage = "failed"
)

// Request is one placement invocation. Identifiers are the only session
// affinity the orchestrator carries.
type Request struct {
	SessionID string
	DesignID  string
	Furniture Selection
}

// Result is the outcome handed back to the transport layer. DesignID names
// the stored room the composite was computed against; it is empty when the
// room was a generated default.
type Result struct {
	Image       []byte
	MIME        string
	Description string
	DesignID    string
	RoomSource  RoomSource
}

// Service sequences furniture resolution, room resolution, prompt building,
// the generation call, and response extraction. It is stateless across
// invocations and never retries a stage.
type Service struct {
	Furniture FurnitureResolver
	Rooms     RoomResolver
	Generator vision.Generator
	Events    *events.Broker
}

// Place runs the full placement sequence for one request.
func (s Service) Place(ctx context.Context, req Request) (Result, error) {
	s.publish(req.SessionID, StageResolvingFurniture, "")
	items, err := s.Furniture.Resolve(ctx, req.Furniture)
	if err != nil {
		return Result{}, s.fail(req.SessionID, StageResolvingFurniture, err)
	}

	s.publish(req.SessionID, StageResolvingRoom, "")
	room, err := s.Rooms.Resolve(ctx, req.DesignID, req.SessionID)
	if err != nil {
		return Result{}, s.fail(req.SessionID, StageResolvingRoom, err)
	}

	s.publish(req.SessionID, StageBuildingPrompt, string(room.Source))
	descriptions := make([]string, len(items))
	for i, item := range items {
		descriptions[i] = item.Description
	}
	prompt := BuildPlacementPrompt(room.Metadata, descriptions)

	s.publish(req.SessionID, StageInvoking, "")
	parts := make([]vision.Part, 0, 2+len(items))
	parts = append(parts, vision.TextPart(prompt))
	parts = append(parts, vision.ImagePart(room.Image, room.MIME))
	for _, item := range items {
		parts = append(parts, vision.ImagePart(item.Data, item.MIME))
	}

	resp, err := s.Generator.Generate(ctx, vision.Request{
		Parts:      parts,
		Modalities: []vision.Modality{vision.ModalityText, vision.ModalityImage},
	})
	if err != nil {
		return Result{}, s.fail(req.SessionID, StageInvoking, &UpstreamError{Err: err})
	}

	s.publish(req.SessionID, StageExtracting, "")
	img, text, err := vision.ExtractResult(resp)
	if err != nil {
		if errors.Is(err, vision.ErrNoImage) {
			err = &GenerationError{Reason: "model failed to generate furniture placement image"}
		}
		return Result{}, s.fail(req.SessionID, StageExtracting, err)
	}

	s.publish(req.SessionID, StageDone, "")
	return Result{
		Image:       img.Data,
		MIME:        img.MIME,
		Description: text,
		DesignID:    room.DesignID,
		RoomSource:  room.Source,
	}, nil
}

func (s Service) publish(sessionID string, stage Stage, detail string) {
	if s.Events == nil {
		return
	}
	s.Events.Publish(events.Event{
		SessionID: sessionID,
		Flow:      events.FlowPlacement,
		Stage:     string(stage),
		Detail:    detail,
	})
}

func (s Service) fail(sessionID string, stage Stage, err error) error {
	log.Printf("placement: stage %s failed: %v", stage, err)
	if s.Events != nil {
		s.Events.Publish(events.Event{
			SessionID: sessionID,
			Flow:      events.FlowPlacement,
			Stage:     string(StageFailed),
			Detail:    string(stage),
		})
	}
	return err
}
