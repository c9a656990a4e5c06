package shipment

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

var _ Store = (*MemoryStore)(nil)

// MemoryStore keeps shipments in process memory. It backs tests and
// STORE_DRIVER=memory local runs.
type MemoryStore struct {
	mu        sync.RWMutex
	shipments map[string]Shipment
	now       func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		shipments: make(map[string]Shipment),
		now:       time.Now,
	}
}

func (s *MemoryStore) List(ctx context.Context, ownerID string, filter ListFilter) ([]Shipment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := s.ownedSorted(ownerID, func(sh Shipment) bool {
		return filter.Status == nil || sh.Status == *filter.Status
	})
	return truncate(result, filter.Limit), nil
}

func (s *MemoryStore) Get(ctx context.Context, ownerID, id string) (Shipment, error) {
	if err := ctx.Err(); err != nil {
		return Shipment{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	sh, ok := s.shipments[id]
	if !ok || sh.OwnerID != ownerID {
		return Shipment{}, ErrNotFound
	}
	return sh, nil
}

func (s *MemoryStore) Search(ctx context.Context, ownerID, term string, limit int) ([]Shipment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	needle := strings.ToLower(strings.TrimSpace(term))
	if needle == "" {
		return []Shipment{}, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	result := s.ownedSorted(ownerID, func(sh Shipment) bool {
		return strings.Contains(strings.ToLower(sh.OriginCity), needle) ||
			strings.Contains(strings.ToLower(sh.DestinationCity), needle)
	})
	return truncate(result, limit), nil
}

func (s *MemoryStore) UpdateStatus(ctx context.Context, ownerID, id string, status Status, at time.Time) (Shipment, error) {
	if err := ctx.Err(); err != nil {
		return Shipment{}, err
	}
	if !status.Valid() {
		return Shipment{}, ErrInvalid
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	sh, ok := s.shipments[id]
	if !ok || sh.OwnerID != ownerID {
		return Shipment{}, ErrNotFound
	}
	sh.Status = status
	sh.UpdatedAt = nextUpdatedAt(sh.UpdatedAt, at)
	s.shipments[id] = sh
	return sh, nil
}

func (s *MemoryStore) Delete(ctx context.Context, ownerID, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	sh, ok := s.shipments[id]
	if !ok || sh.OwnerID != ownerID {
		return ErrNotFound
	}
	delete(s.shipments, id)
	return nil
}

func (s *MemoryStore) Create(ctx context.Context, ownerID string, draft Draft) (Shipment, error) {
	if err := ctx.Err(); err != nil {
		return Shipment{}, err
	}
	draft.Normalize()
	if err := draft.Validate(); err != nil {
		return Shipment{}, err
	}

	sh := draft.build(uuid.NewString(), ownerID, s.now())

	s.mu.Lock()
	defer s.mu.Unlock()
	s.shipments[sh.ID] = sh
	return sh, nil
}

// ownedSorted must be called with the read lock held.
func (s *MemoryStore) ownedSorted(ownerID string, keep func(Shipment) bool) []Shipment {
	result := make([]Shipment, 0)
	for _, sh := range s.shipments {
		if sh.OwnerID == ownerID && keep(sh) {
			result = append(result, sh)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID < result[j].ID
	})
	return result
}

func truncate(rows []Shipment, limit int) []Shipment {
	if limit > 0 && len(rows) > limit {
		return rows[:limit]
	}
	return rows
}
