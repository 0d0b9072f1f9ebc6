package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore persists room designs and furniture in PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// CreateRoomDesign stores the provided design.
func (s *PostgresStore) CreateRoomDesign(ctx context.Context, input RoomDesign) (RoomDesign, error) {
	if input.ID == "" {
		input.ID = uuid.NewString()
	}
	if input.CreatedAt.IsZero() {
		input.CreatedAt = time.Now()
	}

	meta, err := json.Marshal(input.Metadata)
	if err != nil {
		return RoomDesign{}, fmt.Errorf("marshal design metadata: %w", err)
	}

	if _, err := s.pool.Exec(ctx,
		`INSERT INTO room_designs (id, session_id, design_metadata, generated_image_data, description, created_at)
         VALUES ($1, $2, $3, $4, $5, $6)`,
		input.ID, input.SessionID, meta, input.ImageData, input.Description, input.CreatedAt); err != nil {
		return RoomDesign{}, fmt.Errorf("insert room design: %w", err)
	}

	return input, nil
}

// GetRoomDesign returns a design by id regardless of owning session.
func (s *PostgresStore) GetRoomDesign(ctx context.Context, id string) (RoomDesign, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, session_id, design_metadata, COALESCE(generated_image_data, ''), COALESCE(description, ''), created_at
         FROM room_designs WHERE id = $1`, id)
	return scanRoomDesign(row)
}

// GetRoomDesignForSession returns a design scoped to its owning session.
func (s *PostgresStore) GetRoomDesignForSession(ctx context.Context, id, sessionID string) (RoomDesign, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, session_id, design_metadata, COALESCE(generated_image_data, ''), COALESCE(description, ''), created_at
         FROM room_designs WHERE id = $1 AND session_id = $2`, id, sessionID)
	return scanRoomDesign(row)
}

// ListRoomDesigns returns the most recent designs across all sessions.
func (s *PostgresStore) ListRoomDesigns(ctx context.Context) ([]RoomDesign, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, session_id, design_metadata, '', COALESCE(description, ''), created_at
         FROM room_designs ORDER BY created_at DESC LIMIT 100`)
	if err != nil {
		return nil, fmt.Errorf("query room designs: %w", err)
	}
	defer rows.Close()
	return collectRoomDesigns(rows)
}

// ListRoomDesignsBySession returns the session's designs, newest first.
func (s *PostgresStore) ListRoomDesignsBySession(ctx context.Context, sessionID string) ([]RoomDesign, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, session_id, design_metadata, '', COALESCE(description, ''), created_at
         FROM room_designs WHERE session_id = $1 ORDER BY created_at DESC LIMIT 100`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query room designs: %w", err)
	}
	defer rows.Close()
	return collectRoomDesigns(rows)
}

// CreateFurniture stores an uploaded furniture item.
func (s *PostgresStore) CreateFurniture(ctx context.Context, input Furniture) (Furniture, error) {
	if input.ID == "" {
		input.ID = uuid.NewString()
	}
	if input.CreatedAt.IsZero() {
		input.CreatedAt = time.Now()
	}

	if _, err := s.pool.Exec(ctx,
		`INSERT INTO furnitures (id, session_id, image_base64, description, created_at) VALUES ($1, $2, $3, $4, $5)`,
		input.ID, input.SessionID, input.ImageData, input.Description, input.CreatedAt); err != nil {
		return Furniture{}, fmt.Errorf("insert furniture: %w", err)
	}

	return input, nil
}

// GetFurniture returns a furniture item by id.
func (s *PostgresStore) GetFurniture(ctx context.Context, id string) (Furniture, error) {
	var item Furniture
	err := s.pool.QueryRow(ctx,
		`SELECT id, session_id, image_base64, COALESCE(description, ''), created_at FROM furnitures WHERE id = $1`, id).
		Scan(&item.ID, &item.SessionID, &item.ImageData, &item.Description, &item.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Furniture{}, ErrNotFound
		}
		return Furniture{}, fmt.Errorf("query furniture: %w", err)
	}
	return item, nil
}

// ListFurnitureBySession returns the session's furniture library, newest first.
func (s *PostgresStore) ListFurnitureBySession(ctx context.Context, sessionID string) ([]Furniture, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, session_id, image_base64, COALESCE(description, ''), created_at
         FROM furnitures WHERE session_id = $1 ORDER BY created_at DESC LIMIT 100`, sessionID)
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
func (s *PostgresStore) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func scanRoomDesign(row pgx.Row) (RoomDesign, error) {
	var (
		design RoomDesign
		meta   []byte
	)
	if err := row.Scan(&design.ID, &design.SessionID, &meta, &design.ImageData, &design.Description, &design.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return RoomDesign{}, ErrNotFound
		}
		return RoomDesign{}, fmt.Errorf("scan room design: %w", err)
	}
	if len(meta) > 0 {
		if err := json.Unmarshal(meta, &design.Metadata); err != nil {
			return RoomDesign{}, fmt.Errorf("decode design metadata: %w", err)
		}
	}
	return design, nil
}

func collectRoomDesigns(rows pgx.Rows) ([]RoomDesign, error) {
	designs := []RoomDesign{}
	for rows.Next() {
		design, err := scanRoomDesign(rows)
		if err != nil {
			return nil, err
		}
		designs = append(designs, design)
	}
	return designs, rows.Err()
}
