package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"furnishAi/internal/config"
	"furnishAi/internal/designs"
	"furnishAi/internal/events"
	"furnishAi/internal/media"
	"furnishAi/internal/placement"
	"furnishAi/internal/search"
	"furnishAi/internal/server"
	"furnishAi/internal/storage"
	"furnishAi/internal/vision"
)

func main() {
	cfg := config.FromEnv()

	ctx := context.Background()
	store, err := storage.NewStore(ctx, cfg.DatabaseURL, cfg.SQLitePath)
	if err != nil {
		log.Fatalf("failed to init store: %v", err)
	}
	defer store.Close()

	generator, err := vision.NewGeminiGenerator(ctx, cfg.Gemini.APIKey, cfg.Gemini.ImageModel, cfg.Gemini.Timeout)
	if err != nil {
		log.Fatalf("failed to init generator: %v", err)
	}

	var renderer vision.Renderer
	if cfg.RoomImageProvider == "imagen" && cfg.Vertex.ProjectID != "" {
		renderer = vision.NewVertexImagen(vision.VertexImagenConfig{
			ProjectID:          cfg.Vertex.ProjectID,
			Location:           cfg.Vertex.Location,
			Model:              cfg.Vertex.Model,
			ServiceAccountJSON: cfg.Gemini.ServiceAccountJSON,
		})
		log.Println("room renderer ready: Vertex Imagen")
	} else {
		renderer = vision.NewGeminiRenderer(generator)
		log.Println("room renderer ready: Gemini")
	}

	var archiver media.Archiver
	if cfg.Media.Bucket != "" && cfg.Media.Region != "" {
		archiver, err = media.NewArchiver(ctx, media.Config{
			Bucket:         cfg.Media.Bucket,
			Region:         cfg.Media.Region,
			Endpoint:       cfg.Media.Endpoint,
			PublicURL:      cfg.Media.PublicURL,
			KeyPrefix:      cfg.Media.KeyPrefix,
			ForcePathStyle: cfg.Media.ForcePathStyle,
		})
		if err != nil {
			log.Fatalf("failed to init media archiver: %v", err)
		}
	} else if cfg.Media.LocalDir != "" {
		archiver, err = media.NewLocalArchiver(cfg.Media.LocalDir)
		if err != nil {
			log.Fatalf("failed to init local media storage: %v", err)
		}
		log.Println("media archiver: using local storage")
	} else {
		archiver = media.Disabled()
	}

	var tokenSource oauth2.TokenSource
	if cfg.Gemini.ServiceAccountJSON != "" {
		creds, err := google.CredentialsFromJSON(ctx, []byte(cfg.Gemini.ServiceAccountJSON), "https://www.googleapis.com/auth/generative-language")
		if err != nil {
			log.Fatalf("failed to parse service account credentials: %v", err)
		}
		tokenSource = creds.TokenSource
	}

	eventBroker := events.NewBroker()

	placementHandler := &placement.Handler{
		Service: placement.Service{
			Furniture: placement.FurnitureResolver{Store: store},
			Rooms:     placement.RoomResolver{Store: store, Renderer: renderer},
			Generator: generator,
			Events:    eventBroker,
		},
		Store:    store,
		Archiver: archiver,
	}

	designHandler := &designs.Handler{
		Service: designs.Service{
			Store:     store,
			Generator: generator,
			Events:    eventBroker,
		},
		Store:    store,
		Archiver: archiver,
	}

	searchHandler := &search.Handler{
		Analyzer: search.NewGeminiAnalyzer(cfg.Gemini.APIKey, cfg.Gemini.AnalysisModel, cfg.Gemini.Timeout, tokenSource),
		Shopper:  search.NewSerpShopper(cfg.Serp.APIKey, cfg.Serp.Location, cfg.Serp.HL, cfg.Serp.GL, 0),
	}

	srv := server.New(cfg.Port, placementHandler, designHandler, searchHandler, eventBroker)

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-shutdownChan
		log.Println("shutting down server...")
		if err := srv.Close(); err != nil {
			log.Printf("server close error: %v", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server failed: %v", err)
	}
}
