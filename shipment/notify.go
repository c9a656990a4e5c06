package shipment

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	EventCreated       = "shipment.created"
	EventStatusUpdated = "shipment.status_updated"
	EventDeleted       = "shipment.deleted"
)

// Event is the payload published after a successful mutation.
type Event struct {
	Type       string    `json:"type"`
	ShipmentID string    `json:"shipment_id"`
	OwnerID    string    `json:"user_id"`
	Lane       string    `json:"lane"`
	Status     Status    `json:"status,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

type EventPublisher interface {
	Publish(ctx context.Context, key string, payload any) error
}

var _ Store = (*NotifyingStore)(nil)

// NotifyingStore wraps a Store and publishes an Event after each successful
// create, status update and delete. Publish failures are logged only.
type NotifyingStore struct {
	Store
	publisher EventPublisher
	now       func() time.Time
}

func NewNotifyingStore(inner Store, publisher EventPublisher) *NotifyingStore {
	return &NotifyingStore{Store: inner, publisher: publisher, now: time.Now}
}

func (s *NotifyingStore) Create(ctx context.Context, ownerID string, draft Draft) (Shipment, error) {
	sh, err := s.Store.Create(ctx, ownerID, draft)
	if err != nil {
		return sh, err
	}
	s.emit(ctx, EventCreated, sh)
	return sh, nil
}

func (s *NotifyingStore) UpdateStatus(ctx context.Context, ownerID, id string, status Status, at time.Time) (Shipment, error) {
	sh, err := s.Store.UpdateStatus(ctx, ownerID, id, status, at)
	if err != nil {
		return sh, err
	}
	s.emit(ctx, EventStatusUpdated, sh)
	return sh, nil
}

func (s *NotifyingStore) Delete(ctx context.Context, ownerID, id string) error {
	sh, getErr := s.Store.Get(ctx, ownerID, id)
	if err := s.Store.Delete(ctx, ownerID, id); err != nil {
		return err
	}
	if getErr != nil {
		sh = Shipment{ID: id, OwnerID: ownerID}
	}
	sh.Status = ""
	s.emit(ctx, EventDeleted, sh)
	return nil
}

func (s *NotifyingStore) emit(ctx context.Context, eventType string, sh Shipment) {
	if s.publisher == nil {
		return
	}
	ev := Event{
		Type:       eventType,
		ShipmentID: sh.ID,
		OwnerID:    sh.OwnerID,
		Status:     sh.Status,
		OccurredAt: s.now().UTC(),
	}
	if sh.OriginCity != "" {
		ev.Lane = sh.Lane()
	}
	if err := s.publisher.Publish(ctx, sh.ID, ev); err != nil {
		log.Warn().
			Err(err).
			Str("event", eventType).
			Str("shipment_id", sh.ID).
			Msg("failed to publish shipment event")
	}
}
