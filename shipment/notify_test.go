package shipment

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []Event
	err    error
}

func (p *recordingPublisher) Publish(ctx context.Context, key string, payload any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if ev, ok := payload.(Event); ok {
		p.events = append(p.events, ev)
	}
	return p.err
}

func TestNotifyingStorePublishesMutations(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	pub := &recordingPublisher{}
	store := NewNotifyingStore(NewMemoryStore(), pub)

	sh, err := store.Create(ctx, "owner-1", newDraft("Chicago", "Detroit", StatusInTransit))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, err := store.UpdateStatus(ctx, "owner-1", sh.ID, StatusDelivered, time.Now()); err != nil {
		t.Fatalf("UpdateStatus() error = %v", err)
	}
	if err := store.Delete(ctx, "owner-1", sh.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	if len(pub.events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(pub.events))
	}
	types := []string{EventCreated, EventStatusUpdated, EventDeleted}
	for i, want := range types {
		if pub.events[i].Type != want {
			t.Fatalf("event %d: expected %s, got %s", i, want, pub.events[i].Type)
		}
		if pub.events[i].ShipmentID != sh.ID {
			t.Fatalf("event %d: unexpected shipment id %s", i, pub.events[i].ShipmentID)
		}
	}
	if pub.events[1].Status != StatusDelivered {
		t.Fatalf("unexpected status in update event: %s", pub.events[1].Status)
	}
	if pub.events[2].Lane != "Chicago, IL → Detroit, MI" {
		t.Fatalf("unexpected lane in delete event: %s", pub.events[2].Lane)
	}
}

func TestNotifyingStoreSkipsFailedMutations(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	pub := &recordingPublisher{}
	store := NewNotifyingStore(NewMemoryStore(), pub)

	if _, err := store.UpdateStatus(ctx, "owner-1", "missing", StatusDelivered, time.Now()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := store.Delete(ctx, "owner-1", "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if len(pub.events) != 0 {
		t.Fatalf("expected no events, got %d", len(pub.events))
	}
}

func TestNotifyingStoreIgnoresPublishErrors(t *testing.T) {
	t.Parallel()

	pub := &recordingPublisher{err: errors.New("broker down")}
	store := NewNotifyingStore(NewMemoryStore(), pub)

	if _, err := store.Create(context.Background(), "owner-1", newDraft("Chicago", "Detroit", StatusPending)); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if len(pub.events) != 1 {
		t.Fatalf("expected publish attempt, got %d", len(pub.events))
	}
}
