package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// SQLiteStore persists records in a local SQLite file. It covers single-host
// deployments that want durability without running PostgreSQL.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the database file and ensures the schema.
func NewSQLiteStore(ctx context.Context, path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite database: %w", err)
	}

	stmts := []string{
		`CREATE TABLE IF NOT EXISTS room_designs (
            id TEXT PRIMARY KEY,
            session_id TEXT NOT NULL,
            design_metadata TEXT NOT NULL DEFAULT '{}',
            generated_image_data TEXT NOT NULL DEFAULT '',
            description TEXT NOT NULL DEFAULT '',
            created_at TIMESTAMP NOT NULL
        )`,
		`CREATE TABLE IF NOT EXISTS furnitures (
            id TEXT PRIMARY KEY,
            session_id TEXT NOT NULL,
            image_base64 TEXT NOT NULL,
            description TEXT NOT NULL DEFAULT '',
            created_at TIMESTAMP NOT NULL
        )`,
		`CREATE INDEX IF NOT EXISTS idx_room_designs_session ON room_designs (session_id, created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_furnitures_session ON furnitures (session_id, created_at)`,
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("ensure sqlite schema: %w", err)
		}
	}

	return &SQLiteStore{db: db}, nil
}

// CreateRoomDesign stores the provided design.
func (s *SQLiteStore) CreateRoomDesign(ctx context.Context, input RoomDesign) (RoomDesign, error) {
	if input.ID == "" {
		input.ID = uuid.NewString()
	}
	if input.CreatedAt.IsZero() {
		input.CreatedAt = time.Now().UTC()
	}

	meta, err := json.Marshal(input.Metadata)
	if err != nil {
		return RoomDesign{}, fmt.Errorf("marshal design metadata: %w", err)
	}

	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO room_designs (id, session_id, design_metadata, generated_image_data, description, created_at)
         VALUES (?, ?, ?, ?, ?, ?)`,
		input.ID, input.SessionID, string(meta), input.ImageData, input.Description, input.CreatedAt); err != nil {
		return RoomDesign{}, fmt.Errorf("insert room design: %w", err)
	}

	return input, nil
}

// GetRoomDesign returns a design by id regardless of owning session.
func (s *SQLiteStore) GetRoomDesign(ctx context.Context, id string) (RoomDesign, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, session_id, design_metadata, generated_image_data, description, created_at
         FROM room_designs WHERE id = ?`, id)
	return scanRoomDesignSQL(row)
}

// GetRoomDesignForSession returns a design scoped to its owning session.
func (s *SQLiteStore) GetRoomDesignForSession(ctx context.Context, id, sessionID string) (RoomDesign, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, session_id, design_metadata, generated_image_data, description, created_at
         FROM room_designs WHERE id = ? AND session_id = ?`, id, sessionID)
	return scanRoomDesignSQL(row)
}

// ListRoomDesigns returns the most recent designs across all sessions.
func (s *SQLiteStore) ListRoomDesigns(ctx context.Context) ([]RoomDesign, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, session_id, design_metadata, '', description, created_at
         FROM room_designs ORDER BY created_at DESC LIMIT 100`)
	if err != nil {
		return nil, fmt.Errorf("query room designs: %w", err)
	}
	defer rows.Close()
	return collectRoomDesignsSQL(rows)
}

// ListRoomDesignsBySession returns the session's designs, newest first.
func (s *SQLiteStore) ListRoomDesignsBySession(ctx context.Context, sessionID string) ([]RoomDesign, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, session_id, design_metadata, '', description, created_at
         FROM room_designs WHERE session_id = ? ORDER BY created_at DESC LIMIT 100`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query room designs: %w", err)
	}
	defer rows.Close()
	return collectRoomDesignsSQL(rows)
}

// CreateFurniture stores an uploaded furniture item.
func (s *SQLiteStore) CreateFurniture(ctx context.Context, input Furniture) (Furniture, error) {
	if input.ID == "" {
		input.ID = uuid.NewString()
	}
	if input.CreatedAt.IsZero() {
		input.CreatedAt = time.Now().UTC()
	}

	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO furnitures (id, session_id, image_base64, description, created_at) VALUES (?, ?, ?, ?, ?)`,
		input.ID, input.SessionID, input.ImageData, input.Description, input.CreatedAt); err != nil {
		return Furniture{}, fmt.Errorf("insert furniture: %w", err)
	}

	return input, nil
}

// GetFurniture returns a furniture item by id.
func (s *SQLiteStore) GetFurniture(ctx context.Context, id string) (Furniture, error) {
	var item Furniture
	err := s.db.QueryRowContext(ctx,
		`SELECT id, session_id, image_base64, description, created_at FROM furnitures WHERE id = ?`, id).
		Scan(&item.ID, &item.SessionID, &item.ImageData, &item.Description, &item.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Furniture{}, ErrNotFound
		}
		return Furniture{}, fmt.Errorf("query furniture: %w", err)
	}
	return item, nil
}

// ListFurnitureBySession returns the session's furniture library, newest first.
func (s *SQLiteStore) ListFurnitureBySession(ctx context.Context, sessionID string) ([]Furniture, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, session_id, image_base64, description, created_at
         FROM furnitures WHERE session_id = ? ORDER BY created_at DESC LIMIT 100`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query furnitures: %w", err)
	}
	defer rows.Close()

	items := []Furniture{}
	for rows.Next() {
		var item Furniture
		if err := rows.Scan(&item.ID, &item.SessionID, &item.ImageData, &item.Description, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan furniture: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// Close releases database resources.
func (s *SQLiteStore) Close() {
	if s.db != nil {
		_ = s.db.Close()
	}
}

type sqlScanner interface {
	Scan(dest ...any) error
}

func scanRoomDesignSQL(row sqlScanner) (RoomDesign, error) {
	var (
		design RoomDesign
		meta   string
	)
	if err := row.Scan(&design.ID, &design.SessionID, &meta, &design.ImageData, &design.Description, &design.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return RoomDesign{}, ErrNotFound
		}
		return RoomDesign{}, fmt.Errorf("scan room design: %w", err)
	}
	if meta != "" {
		if err := json.Unmarshal([]byte(meta), &design.Metadata); err != nil {
			return RoomDesign{}, fmt.Errorf("decode design metadata: %w", err)
		}
	}
	return design, nil
}

func collectRoomDesignsSQL(rows *sql.Rows) ([]RoomDesign, error) {
	designs := []RoomDesign{}
	for rows.Next() {
		design, err := scanRoomDesignSQL(rows)
		if err != nil {
			return nil, err
		}
		designs = append(designs, design)
	}
	return designs, rows.Err()
}
