// Package server wires the HTTP routes and middleware.
package server

import (
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"furnishAi/internal/designs"
	"furnishAi/internal/events"
	"furnishAi/internal/placement"
	"furnishAi/internal/search"
)

// New constructs the HTTP server with routes and middleware.
func New(port string, placementHandler *placement.Handler, designHandler *designs.Handler, searchHandler *search.Handler, broker *events.Broker) *http.Server {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	router.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	router.Route("/api", func(r chi.Router) {
		r.Post("/place-furniture", placementHandler.Place)

		r.Route("/furnitures", func(r chi.Router) {
			r.Post("/upload", placementHandler.UploadFurniture)
			r.Get("/{sessionID}", placementHandler.ListFurniture)
		})

		r.Route("/designs", func(r chi.Router) {
			r.Post("/generate", designHandler.Generate)
			r.Get("/all", designHandler.ListAll)
			r.Get("/{sessionID}", designHandler.ListBySession)
			r.Get("/{sessionID}/{designID}/image", designHandler.SessionImage)
		})
		r.Get("/design/{designID}/image", designHandler.Image)

		r.Post("/analyze-and-search", searchHandler.AnalyzeAndSearch)

		r.Get("/events", broker.Stream)
	})

	srv := &http.Server{
		Addr:        ":" + port,
		Handler:     router,
		ReadTimeout: 10 * time.Second,
		// Placement calls wait on the model, so writes get a long leash.
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	log.Println("server ready on", srv.Addr)
	return srv
}
