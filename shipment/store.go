package shipment

import (
	"context"
	"time"
)

// ListFilter narrows List. A Limit <= 0 returns every matching row.
type ListFilter struct {
	Status *Status
	Limit  int
}

// Store is the owner-scoped persistence contract for shipments.
// Every read and write is filtered by ownerID; rows owned by someone else
// behave exactly like rows that do not exist (ErrNotFound).
//
// Rows are returned in the default order: newest created_at first, ties by id.
type Store interface {
	List(ctx context.Context, ownerID string, filter ListFilter) ([]Shipment, error)
	Get(ctx context.Context, ownerID, id string) (Shipment, error)
	Search(ctx context.Context, ownerID, term string, limit int) ([]Shipment, error)
	UpdateStatus(ctx context.Context, ownerID, id string, status Status, at time.Time) (Shipment, error)
	Delete(ctx context.Context, ownerID, id string) error
	Create(ctx context.Context, ownerID string, draft Draft) (Shipment, error)
}
