package placement_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"furnishAi/internal/placement"
	"furnishAi/internal/storage"
	"furnishAi/internal/vision"
)

func newTestRouter(store storage.Store, gen *fakeGenerator, renderer *fakeRenderer) http.Handler {
	h := &placement.Handler{
		Service: newService(store, gen, renderer),
		Store:   store,
	}
	r := chi.NewRouter()
	r.Post("/api/place-furniture", h.Place)
	r.Post("/api/furnitures/upload", h.UploadFurniture)
	r.Get("/api/furnitures/{sessionID}", h.ListFurniture)
	return r
}

func addImagePart(t *testing.T, w *multipart.Writer, field, filename, contentType string, data []byte) {
	t.Helper()
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="`+field+`"; filename="`+filename+`"`)
	header.Set("Content-Type", contentType)
	part, err := w.CreatePart(header)
	if err != nil {
		t.Fatalf("create multipart part: %v", err)
	}
	if _, err := part.Write(data); err != nil {
		t.Fatalf("write multipart part: %v", err)
	}
}

func TestPlaceEndpoint(t *testing.T) {
	gen := &fakeGenerator{resp: vision.Response{Parts: []vision.Part{
		vision.TextPart("Placed near the window."),
		vision.ImagePart([]byte("composite"), "image/png"),
	}}}
	renderer := &fakeRenderer{img: vision.Image{Data: []byte("room"), MIME: "image/png"}}
	router := newTestRouter(storage.NewInMemoryStore(), gen, renderer)

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	w.WriteField("session_id", "session-1")
	w.WriteField("furniture_descriptions", "blue velvet armchair")
	addImagePart(t, w, "furniture_images", "chair.png", "image/png", []byte("chair-bytes"))
	w.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/place-furniture", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Image            string `json:"image"`
		Text             string `json:"text"`
		OriginalDesignID string `json:"original_design_id"`
		RoomSource       string `json:"room_source"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !strings.HasPrefix(resp.Image, "data:image/png;base64,") {
		t.Errorf("image = %q, want a png data URI", resp.Image)
	}
	if resp.Text != "Placed near the window." {
		t.Errorf("text = %q", resp.Text)
	}
	if resp.OriginalDesignID != "" {
		t.Errorf("original_design_id = %q, want empty for generated room", resp.OriginalDesignID)
	}
	if resp.RoomSource != "generated" {
		t.Errorf("room_source = %q", resp.RoomSource)
	}
}

func TestPlaceEndpointRequiresSessionID(t *testing.T) {
	router := newTestRouter(storage.NewInMemoryStore(), &fakeGenerator{}, &fakeRenderer{})

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	addImagePart(t, w, "furniture_images", "chair.png", "image/png", []byte("chair-bytes"))
	w.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/place-furniture", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestPlaceEndpointRejectsUnsupportedType(t *testing.T) {
	router := newTestRouter(storage.NewInMemoryStore(), &fakeGenerator{}, &fakeRenderer{})

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	w.WriteField("session_id", "session-1")
	addImagePart(t, w, "furniture_images", "chair.gif", "image/gif", []byte("gif-bytes"))
	w.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/place-furniture", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "unsupported file type") {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestFurnitureUploadAndList(t *testing.T) {
	store := storage.NewInMemoryStore()
	router := newTestRouter(store, &fakeGenerator{}, &fakeRenderer{})

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	w.WriteField("session_id", "session-1")
	w.WriteField("description", "oak bookshelf")
	addImagePart(t, w, "image", "shelf.jpg", "image/jpeg", []byte("shelf-bytes"))
	w.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/furnitures/upload", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("upload status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var uploaded struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &uploaded); err != nil {
		t.Fatalf("decode upload response: %v", err)
	}
	if uploaded.ID == "" {
		t.Fatalf("upload response has no id")
	}

	stored, err := store.GetFurniture(context.Background(), uploaded.ID)
	if err != nil {
		t.Fatalf("uploaded furniture not stored: %v", err)
	}
	if stored.Description != "oak bookshelf" {
		t.Errorf("stored description = %q", stored.Description)
	}

	listReq := httptest.NewRequest(http.MethodGet, "/api/furnitures/session-1", nil)
	listRec := httptest.NewRecorder()
	router.ServeHTTP(listRec, listReq)

	if listRec.Code != http.StatusOK {
		t.Fatalf("list status = %d", listRec.Code)
	}
	var listResp struct {
		Furnitures []struct {
			ID    string `json:"id"`
			Image string `json:"image"`
		} `json:"furnitures"`
	}
	if err := json.Unmarshal(listRec.Body.Bytes(), &listResp); err != nil {
		t.Fatalf("decode list response: %v", err)
	}
	if len(listResp.Furnitures) != 1 {
		t.Fatalf("got %d furnitures, want 1", len(listResp.Furnitures))
	}
	if !strings.HasPrefix(listResp.Furnitures[0].Image, "data:image/png;base64,") {
		t.Errorf("listed image = %q, want a data URI", listResp.Furnitures[0].Image)
	}
}
