package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds runtime configuration values.
type Config struct {
	Port        string
	DatabaseURL string
	SQLitePath  string
	Gemini      GeminiConfig
	Vertex      VertexConfig
	Serp        SerpConfig
	Media       MediaConfig

	// RoomImageProvider selects the backend for default empty-room
	// generation: "gemini" (default) or "imagen".
	RoomImageProvider string
}

// GeminiConfig describes access to the Generative Language API.
type GeminiConfig struct {
	APIKey             string
	ImageModel         string
	AnalysisModel      string
	ServiceAccountJSON string
	Timeout            time.Duration
}

// VertexConfig describes access to Vertex AI Imagen.
type VertexConfig struct {
	ProjectID string
	Location  string
	Model     string
}

// SerpConfig describes access to the SerpAPI shopping engine.
type SerpConfig struct {
	APIKey   string
	Location string
	HL       string
	GL       string
}

// MediaConfig describes S3/media related configuration.
type MediaConfig struct {
	Bucket         string
	Region         string
	Endpoint       string
	PublicURL      string
	KeyPrefix      string
	ForcePathStyle bool
	LocalDir       string
}

// FromEnv loads configuration from a .env file (when present) and the
// environment, applying defaults.
func FromEnv() Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("config: load .env: %v", err)
	}

	cfg := Config{
		Port:        getenv("APP_PORT", "8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		SQLitePath:  os.Getenv("SQLITE_PATH"),
		Gemini: GeminiConfig{
			APIKey:             os.Getenv("GEMINI_API_KEY"),
			ImageModel:         getenv("GEMINI_IMAGE_MODEL", "gemini-2.5-flash-image"),
			AnalysisModel:      getenv("GEMINI_ANALYSIS_MODEL", "gemini-2.5-flash"),
			ServiceAccountJSON: os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"),
			Timeout:            getenvDuration("GEMINI_TIMEOUT", 120*time.Second),
		},
		Vertex: VertexConfig{
			ProjectID: os.Getenv("VERTEX_PROJECT_ID"),
			Location:  getenv("VERTEX_LOCATION", "us-central1"),
			Model:     getenv("VERTEX_IMAGEN_MODEL", "imagen-3.0-generate-002"),
		},
		Serp: SerpConfig{
			APIKey:   os.Getenv("SERPAPI_API_KEY"),
			Location: os.Getenv("SERPAPI_LOCATION"),
			HL:       os.Getenv("SERPAPI_HL"),
			GL:       os.Getenv("SERPAPI_GL"),
		},
		Media: MediaConfig{
			Bucket:         os.Getenv("S3_BUCKET"),
			Region:         os.Getenv("S3_REGION"),
			Endpoint:       os.Getenv("S3_ENDPOINT"),
			PublicURL:      os.Getenv("S3_PUBLIC_URL"),
			KeyPrefix:      strings.Trim(os.Getenv("S3_KEY_PREFIX"), "/"),
			ForcePathStyle: getenvBool("S3_FORCE_PATH_STYLE", false),
			LocalDir:       os.Getenv("MEDIA_LOCAL_DIR"),
		},
		RoomImageProvider: strings.ToLower(getenv("ROOM_IMAGE_PROVIDER", "gemini")),
	}

	if cfg.Port == "" {
		log.Fatal("APP_PORT cannot be empty")
	}

	return cfg
}

func getenv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}

	return fallback
}

func getenvBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}

	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}

	return parsed
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}

	parsed, err := time.ParseDuration(val)
	if err != nil {
		return fallback
	}

	return parsed
}
