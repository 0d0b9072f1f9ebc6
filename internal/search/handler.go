package search

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"furnishAi/internal/codec"
)

const maxAnalysisImageBytes = 10 * 1024 * 1024

var analyzableImageTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
	"image/webp": {},
}

// Handler serves the analyze-and-search flow over HTTP.
type Handler struct {
	Analyzer Analyzer
	Shopper  Shopper
}

type analyzeResponse struct {
	Description  string    `json:"description"`
	ProductLinks []Product `json:"product_links"`
	ImageData    string    `json:"image_data"`
}

// AnalyzeAndSearch handles POST /api/analyze-and-search: identifies furniture
// in the uploaded room photo and looks up matching products per item. Failed
// product searches are logged and skipped so one provider hiccup does not sink
// the analysis.
func (h *Handler) AnalyzeAndSearch(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxAnalysisImageBytes * 2); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("image")
	if err != nil {
		writeError(w, http.StatusBadRequest, "image file is required")
		return
	}
	defer file.Close()

	mime := normalizeMIME(header.Header.Get("Content-Type"))
	if _, ok := analyzableImageTypes[mime]; !ok {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unsupported file type: %s", header.Header.Get("Content-Type")))
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, maxAnalysisImageBytes+1))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read image")
		return
	}
	if len(data) == 0 {
		writeError(w, http.StatusBadRequest, "image file is empty")
		return
	}
	if len(data) > maxAnalysisImageBytes {
		writeError(w, http.StatusBadRequest, "image exceeds the 10MB limit")
		return
	}

	analysis, err := h.Analyzer.Analyze(r.Context(), data, mime)
	if err != nil {
		log.Printf("search: analyze room photo: %v", err)
		writeError(w, http.StatusInternalServerError, "room analysis failed")
		return
	}

	products := make([]Product, 0, len(analysis.Queries)*3)
	for _, q := range analysis.Queries {
		results, err := h.Shopper.Search(r.Context(), q.Query)
		if err != nil {
			log.Printf("search: shopping query %q: %v", q.Query, err)
			continue
		}
		for _, p := range results {
			p.ItemName = q.Name
			products = append(products, p)
		}
	}

	writeJSON(w, http.StatusOK, analyzeResponse{
		Description:  analysis.Description,
		ProductLinks: products,
		ImageData:    codec.DataURI(mime, data),
	})
}

func normalizeMIME(mime string) string {
	mime = strings.TrimSpace(strings.ToLower(mime))
	if base, _, ok := strings.Cut(mime, ";"); ok {
		mime = strings.TrimSpace(base)
	}
	return mime
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("search: write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
