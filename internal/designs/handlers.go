package designs

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"furnishAi/internal/codec"
	"furnishAi/internal/media"
	"furnishAi/internal/storage"
)

// Handler serves the design catalogue over HTTP.
type Handler struct {
	Service  Service
	Store    storage.Store
	Archiver media.Archiver
}

type designView struct {
	ID          string               `json:"id"`
	SessionID   string               `json:"session_id"`
	Metadata    storage.RoomMetadata `json:"metadata"`
	Description string               `json:"description"`
	CreatedAt   time.Time            `json:"created_at"`
}

type generateRequestBody struct {
	SessionID  string `json:"session_id"`
	RoomType   string `json:"room_type"`
	Style      string `json:"style"`
	DesignType string `json:"design_type"`
	Prompt     string `json:"prompt"`
}

type generateResponse struct {
	Design      designView `json:"design"`
	Image       string     `json:"image"`
	ArchivedURL string     `json:"archived_url,omitempty"`
}

// Generate handles POST /api/designs/generate.
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	var body generateRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.SessionID == "" {
		writeError(w, http.StatusBadRequest, "session_id is required")
		return
	}

	result, err := h.Service.Generate(r.Context(), GenerateRequest{
		SessionID: body.SessionID,
		Metadata: storage.RoomMetadata{
			RoomType:   body.RoomType,
			Style:      body.Style,
			DesignType: body.DesignType,
		},
		Prompt: body.Prompt,
	})
	if err != nil {
		if errors.Is(err, ErrNoDesignImage) {
			writeError(w, http.StatusInternalServerError, ErrNoDesignImage.Error())
			return
		}
		log.Printf("designs: generate: %v", err)
		writeError(w, http.StatusInternalServerError, "design generation failed")
		return
	}

	resp := generateResponse{
		Design: toView(result.Design),
		Image:  codec.DataURI(result.MIME, result.Image),
	}
	resp.ArchivedURL = h.archive(r.Context(), result.Image, result.MIME)
	writeJSON(w, http.StatusOK, resp)
}

// ListAll handles GET /api/designs/all.
func (h *Handler) ListAll(w http.ResponseWriter, r *http.Request) {
	items, err := h.Store.ListRoomDesigns(r.Context())
	if err != nil {
		log.Printf("designs: list all: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to list designs")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"designs": toViews(items)})
}

// ListBySession handles GET /api/designs/{sessionID}.
func (h *Handler) ListBySession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if sessionID == "" {
		writeError(w, http.StatusBadRequest, "session id is required")
		return
	}

	items, err := h.Store.ListRoomDesignsBySession(r.Context(), sessionID)
	if err != nil {
		log.Printf("designs: list by session: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to list designs")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"designs": toViews(items)})
}

// Image handles GET /api/design/{designID}/image, serving the raw image.
func (h *Handler) Image(w http.ResponseWriter, r *http.Request) {
	design, err := h.Store.GetRoomDesign(r.Context(), chi.URLParam(r, "designID"))
	h.serveImage(w, design, err)
}

// SessionImage handles GET /api/designs/{sessionID}/{designID}/image; the
// design must belong to the session.
func (h *Handler) SessionImage(w http.ResponseWriter, r *http.Request) {
	design, err := h.Store.GetRoomDesignForSession(r.Context(), chi.URLParam(r, "designID"), chi.URLParam(r, "sessionID"))
	h.serveImage(w, design, err)
}

func (h *Handler) serveImage(w http.ResponseWriter, design storage.RoomDesign, err error) {
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "design not found")
			return
		}
		log.Printf("designs: fetch design: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to fetch design")
		return
	}
	if design.ImageData == "" {
		writeError(w, http.StatusNotFound, "design has no image")
		return
	}

	data, err := codec.Decode(design.ImageData)
	if err != nil {
		log.Printf("designs: decode image for %s: %v", design.ID, err)
		writeError(w, http.StatusInternalServerError, "failed to decode design image")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		log.Printf("designs: write image response: %v", err)
	}
}

func (h *Handler) archive(ctx context.Context, data []byte, mimeType string) string {
	if h.Archiver == nil {
		return ""
	}
	res, err := h.Archiver.Archive(ctx, media.ArchiveInput{ContentType: mimeType, Data: data})
	if err != nil {
		if !errors.Is(err, media.ErrArchiverDisabled) {
			log.Printf("designs: archive design image: %v", err)
		}
		return ""
	}
	return res.URL
}

func toView(d storage.RoomDesign) designView {
	return designView{
		ID:          d.ID,
		SessionID:   d.SessionID,
		Metadata:    d.Metadata.Normalized(),
		Description: d.Description,
		CreatedAt:   d.CreatedAt,
	}
}

func toViews(items []storage.RoomDesign) []designView {
	out := make([]designView, 0, len(items))
	for _, d := range items {
		out = append(out, toView(d))
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("designs: write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
