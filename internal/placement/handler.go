package placement

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"furnishAi/internal/codec"
	"furnishAi/internal/media"
	"furnishAi/internal/storage"
)

// Handler exposes the placement flow and the furniture library over HTTP.
type Handler struct {
	Service  Service
	Store    storage.Store
	Archiver media.Archiver
}

type placeResponse struct {
	Image            string `json:"image"`
	Text             string `json:"text"`
	OriginalDesignID string `json:"original_design_id"`
	RoomSource       string `json:"room_source"`
	ArchivedURL      string `json:"archived_url,omitempty"`
}

type furnitureUploadResponse struct {
	ID          string `json:"id"`
	SessionID   string `json:"session_id"`
	Description string `json:"description"`
}

type furnitureListItem struct {
	ID          string    `json:"id"`
	SessionID   string    `json:"session_id"`
	Description string    `json:"description"`
	Image       string    `json:"image"`
	CreatedAt   time.Time `json:"created_at"`
}

// Place handles POST /api/place-furniture. The request is multipart form
// data: session_id is required, design_id optional, and furniture arrives
// either as repeated furniture_ids (library references), repeated
// furniture_images files with parallel furniture_descriptions, or the legacy
// singular furniture_id / furniture_image / furniture_description fields.
func (h *Handler) Place(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(MaxImageBytes * 2); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	sessionID := strings.TrimSpace(r.FormValue("session_id"))
	if sessionID == "" {
		writeError(w, http.StatusBadRequest, "session_id is required")
		return
	}

	sel, err := selectionFromForm(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.Service.Place(r.Context(), Request{
		SessionID: sessionID,
		DesignID:  strings.TrimSpace(r.FormValue("design_id")),
		Furniture: sel,
	})
	if err != nil {
		status, msg := statusForError(err)
		writeError(w, status, msg)
		return
	}

	resp := placeResponse{
		Image:            codec.DataURI(result.MIME, result.Image),
		Text:             result.Description,
		OriginalDesignID: result.DesignID,
		RoomSource:       string(result.RoomSource),
	}
	resp.ArchivedURL = h.archive(r.Context(), result.Image, result.MIME)

	writeJSON(w, http.StatusOK, resp)
}

// UploadFurniture handles POST /api/furnitures/upload: persists one furniture
// image into the session-scoped library.
func (h *Handler) UploadFurniture(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(MaxImageBytes * 2); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	sessionID := strings.TrimSpace(r.FormValue("session_id"))
	if sessionID == "" {
		writeError(w, http.StatusBadRequest, "session_id is required")
		return
	}

	upload, err := readUpload(r, "image", r.FormValue("description"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if upload == nil {
		writeError(w, http.StatusBadRequest, "image file is required")
		return
	}
	mime := normalizeMIME(upload.MIME)
	if _, ok := allowedImageTypes[mime]; !ok {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unsupported file type: %s", upload.MIME))
		return
	}
	if len(upload.Data) == 0 {
		writeError(w, http.StatusBadRequest, "image file is empty")
		return
	}

	description := strings.TrimSpace(upload.Description)
	if description == "" {
		description = DefaultItemDescription
	}

	item := storage.Furniture{
		ID:          uuid.NewString(),
		SessionID:   sessionID,
		ImageData:   codec.Encode(upload.Data),
		Description: description,
		CreatedAt:   time.Now().UTC(),
	}
	if _, err := h.Store.CreateFurniture(r.Context(), item); err != nil {
		log.Printf("placement: store furniture: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to store furniture")
		return
	}

	writeJSON(w, http.StatusOK, furnitureUploadResponse{
		ID:          item.ID,
		SessionID:   item.SessionID,
		Description: item.Description,
	})
}

// ListFurniture handles GET /api/furnitures/{sessionID}.
func (h *Handler) ListFurniture(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if sessionID == "" {
		writeError(w, http.StatusBadRequest, "session id is required")
		return
	}

	items, err := h.Store.ListFurnitureBySession(r.Context(), sessionID)
	if err != nil {
		log.Printf("placement: list furniture: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to list furniture")
		return
	}

	out := make([]furnitureListItem, 0, len(items))
	for _, item := range items {
		data, err := codec.Decode(item.ImageData)
		image := ""
		if err == nil && len(data) > 0 {
			image = codec.DataURI("image/png", data)
		}
		out = append(out, furnitureListItem{
			ID:          item.ID,
			SessionID:   item.SessionID,
			Description: item.Description,
			Image:       image,
			CreatedAt:   item.CreatedAt,
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{"furnitures": out})
}

// archive persists the composite out of band. Failures are logged and never
// surfaced to the client.
func (h *Handler) archive(ctx context.Context, data []byte, mimeType string) string {
	if h.Archiver == nil {
		return ""
	}
	res, err := h.Archiver.Archive(ctx, media.ArchiveInput{
		ContentType: mimeType,
		Data:        data,
	})
	if err != nil {
		if !errors.Is(err, media.ErrArchiverDisabled) {
			log.Printf("placement: archive composite: %v", err)
		}
		return ""
	}
	return res.URL
}

func selectionFromForm(r *http.Request) (Selection, error) {
	var sel Selection

	for _, id := range r.Form["furniture_ids"] {
		id = strings.TrimSpace(id)
		if id != "" {
			sel.LibraryIDs = append(sel.LibraryIDs, id)
		}
	}
	sel.LegacyID = strings.TrimSpace(r.FormValue("furniture_id"))

	descriptions := r.Form["furniture_descriptions"]
	files := r.MultipartForm.File["furniture_images"]
	for i, header := range files {
		desc := ""
		if i < len(descriptions) {
			desc = descriptions[i]
		}
		upload, err := uploadFromHeader(header, desc)
		if err != nil {
			return Selection{}, err
		}
		sel.Uploads = append(sel.Uploads, upload)
	}

	legacy, err := readUpload(r, "furniture_image", r.FormValue("furniture_description"))
	if err != nil {
		return Selection{}, err
	}
	sel.LegacyUpload = legacy

	return sel, nil
}

// readUpload returns nil without error when the field is absent.
func readUpload(r *http.Request, field, description string) (*Upload, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, fmt.Errorf("read %s: %w", field, err)
	}
	file.Close()

	upload, err := uploadFromHeader(header, description)
	if err != nil {
		return nil, err
	}
	return &upload, nil
}

func uploadFromHeader(header *multipart.FileHeader, description string) (Upload, error) {
	if header.Size > MaxImageBytes {
		return Upload{}, fmt.Errorf("file %s exceeds the 10MB limit", header.Filename)
	}

	file, err := header.Open()
	if err != nil {
		return Upload{}, fmt.Errorf("open upload %s: %w", header.Filename, err)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, MaxImageBytes+1))
	if err != nil {
		return Upload{}, fmt.Errorf("read upload %s: %w", header.Filename, err)
	}
	if int64(len(data)) > MaxImageBytes {
		return Upload{}, fmt.Errorf("file %s exceeds the 10MB limit", header.Filename)
	}

	return Upload{
		Data:        data,
		MIME:        header.Header.Get("Content-Type"),
		Description: description,
	}, nil
}

// statusForError maps the placement error taxonomy onto HTTP statuses.
// Upstream failures are sanitized so provider internals never leak.
func statusForError(err error) (int, string) {
	var validation *ValidationError
	if errors.As(err, &validation) {
		return http.StatusBadRequest, validation.Reason
	}
	var notFound *NotFoundError
	if errors.As(err, &notFound) {
		return http.StatusNotFound, notFound.Error()
	}
	var upstream *UpstreamError
	if errors.As(err, &upstream) {
		return http.StatusInternalServerError, "generation request failed"
	}
	var generation *GenerationError
	if errors.As(err, &generation) {
		return http.StatusInternalServerError, generation.Reason
	}
	return http.StatusInternalServerError, "internal server error"
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("placement: write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
