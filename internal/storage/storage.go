package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound indicates that a record could not be located in the backing store.
// Lookup misses are a normal outcome, not an exceptional one; callers decide
// whether a miss is fatal.
var ErrNotFound = errors.New("record not found")

// RoomMetadata describes the room depicted by a design image. The fields
// condition the placement instruction sent to the model.
type RoomMetadata struct {
	RoomType   string `json:"room_type"`
	Style      string `json:"style"`
	DesignType string `json:"design_type"`
}

// Normalized fills missing metadata fields so prompt construction never sees
// an empty value.
func (m RoomMetadata) Normalized() RoomMetadata {
	if strings.TrimSpace(m.RoomType) == "" {
		m.RoomType = "unknown"
	}
	if strings.TrimSpace(m.Style) == "" {
		m.Style = "unknown"
	}
	if strings.TrimSpace(m.DesignType) == "" {
		m.DesignType = "interior"
	}
	return m
}

// RoomDesign is a stored room image with its metadata. Records are immutable
// once created.
type RoomDesign struct {
	ID          string       `json:"id"`
	SessionID   string       `json:"session_id"`
	Metadata    RoomMetadata `json:"metadata"`
	ImageData   string       `json:"image_data,omitempty"` // base64, optional
	Description string       `json:"description,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
}

// Furniture is a library item uploaded by a user, reusable across placement
// requests. Records are immutable once created.
type Furniture struct {
	ID          string    `json:"id"`
	SessionID   string    `json:"session_id"`
	ImageData   string    `json:"image_data"` // base64
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Store defines the persistence behaviors the application relies on.
type Store interface {
	CreateRoomDesign(ctx context.Context, input RoomDesign) (RoomDesign, error)
	GetRoomDesign(ctx context.Context, id string) (RoomDesign, error)
	GetRoomDesignForSession(ctx context.Context, id, sessionID string) (RoomDesign, error)
	ListRoomDesigns(ctx context.Context) ([]RoomDesign, error)
	ListRoomDesignsBySession(ctx context.Context, sessionID string) ([]RoomDesign, error)
	CreateFurniture(ctx context.Context, input Furniture) (Furniture, error)
	GetFurniture(ctx context.Context, id string) (Furniture, error)
	ListFurnitureBySession(ctx context.Context, sessionID string) ([]Furniture, error)
	Close()
}

// NewStore selects a backing store: PostgreSQL when a database URL is
// provided, a local SQLite file when a path is configured, and an in-memory
// store otherwise.
func NewStore(ctx context.Context, databaseURL, sqlitePath string) (Store, error) {
	if databaseURL != "" {
		pool, err := pgxpool.New(ctx, databaseURL)
		if err != nil {
			return nil, fmt.Errorf("create pool: %w", err)
		}

		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("ping database: %w", err)
		}

		if err := ensureSchema(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}

		return &PostgresStore{pool: pool}, nil
	}

	if sqlitePath != "" {
		return NewSQLiteStore(ctx, sqlitePath)
	}

	return NewInMemoryStore(), nil
}

func ensureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS room_designs (
        id TEXT PRIMARY KEY,
        session_id TEXT NOT NULL,
        design_metadata JSONB DEFAULT '{}'::jsonb,
        generated_image_data TEXT,
        description TEXT,
        created_at TIMESTAMPTZ NOT NULL DEFAULT now()
    )`,
		`CREATE TABLE IF NOT EXISTS furnitures (
        id TEXT PRIMARY KEY,
        session_id TEXT NOT NULL,
        image_base64 TEXT NOT NULL,
        description TEXT,
        created_at TIMESTAMPTZ NOT NULL DEFAULT now()
    )`,
		`CREATE INDEX IF NOT EXISTS idx_room_designs_session ON room_designs (session_id, created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_furnitures_session ON furnitures (session_id, created_at DESC)`,
	}
	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
