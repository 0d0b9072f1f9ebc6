package storage

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemoryStore is a thread-safe store used when no database is configured.
type InMemoryStore struct {
	mu        sync.RWMutex
	designs   []RoomDesign
	furniture []Furniture
}

// NewInMemoryStore constructs an empty in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		designs:   make([]RoomDesign, 0),
		furniture: make([]Furniture, 0),
	}
}

// CreateRoomDesign prepends the design to the in-memory slice.
func (s *InMemoryStore) CreateRoomDesign(_ context.Context, input RoomDesign) (RoomDesign, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if input.ID == "" {
		input.ID = uuid.NewString()
	}
	if input.CreatedAt.IsZero() {
		input.CreatedAt = time.Now()
	}

	s.designs = append([]RoomDesign{input}, s.designs...)
	if len(s.designs) > 100 {
		s.designs = s.designs[:100]
	}

	return input, nil
}

// GetRoomDesign returns a design by id.
func (s *InMemoryStore) GetRoomDesign(_ context.Context, id string) (RoomDesign, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, d := range s.designs {
		if d.ID == id {
			return d, nil
		}
	}
	return RoomDesign{}, ErrNotFound
}

// GetRoomDesignForSession returns a design scoped to its owning session.
func (s *InMemoryStore) GetRoomDesignForSession(_ context.Context, id, sessionID string) (RoomDesign, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, d := range s.designs {
		if d.ID == id && d.SessionID == sessionID {
			return d, nil
		}
	}
	return RoomDesign{}, ErrNotFound
}

// ListRoomDesigns returns a snapshot of stored designs, newest first.
func (s *InMemoryStore) ListRoomDesigns(_ context.Context) ([]RoomDesign, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot := make([]RoomDesign, len(s.designs))
	copy(snapshot, s.designs)
	return snapshot, nil
}

// ListRoomDesignsBySession returns the session's designs, newest first.
func (s *InMemoryStore) ListRoomDesignsBySession(_ context.Context, sessionID string) ([]RoomDesign, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	designs := []RoomDesign{}
	for _, d := range s.designs {
		if d.SessionID == sessionID {
			designs = append(designs, d)
		}
	}
	return designs, nil
}

// CreateFurniture prepends the furniture item to the in-memory slice.
func (s *InMemoryStore) CreateFurniture(_ context.Context, input Furniture) (Furniture, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if input.ID == "" {
		input.ID = uuid.NewString()
	}
	if input.CreatedAt.IsZero() {
		input.CreatedAt = time.Now()
	}

	s.furniture = append([]Furniture{input}, s.furniture...)
	if len(s.furniture) > 200 {
		s.furniture = s.furniture[:200]
	}

	return input, nil
}

// GetFurniture returns a furniture item by id.
func (s *InMemoryStore) GetFurniture(_ context.Context, id string) (Furniture, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, f := range s.furniture {
		if f.ID == id {
			return f, nil
		}
	}
	return Furniture{}, ErrNotFound
}

// ListFurnitureBySession returns the session's furniture library, newest first.
func (s *InMemoryStore) ListFurnitureBySession(_ context.Context, sessionID string) ([]Furniture, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := []Furniture{}
	for _, f := range s.furniture {
		if f.SessionID == sessionID {
			items = append(items, f)
		}
	}
	return items, nil
}

// Close satisfies the Store interface.
func (s *InMemoryStore) Close() {}
