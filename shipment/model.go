package shipment

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrNotFound = errors.New("shipment not found")
	ErrInvalid  = errors.New("invalid shipment")
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusInTransit Status = "in_transit"
	StatusDelivered Status = "delivered"
	StatusCancelled Status = "cancelled"
)

// AllStatuses lists every status in display order.
var AllStatuses = []Status{StatusPending, StatusInTransit, StatusDelivered, StatusCancelled}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInTransit, StatusDelivered, StatusCancelled:
		return true
	default:
		return false
	}
}

func (s Status) String() string {
	return string(s)
}

func ParseStatus(raw string) (Status, error) {
	st := Status(strings.ToLower(strings.TrimSpace(raw)))
	if !st.Valid() {
		return "", fmt.Errorf("%w: status %q is not one of %s", ErrInvalid, raw, StatusNames())
	}
	return st, nil
}

// StatusNames returns the enum values as plain strings.
func StatusNames() []string {
	names := make([]string, 0, len(AllStatuses))
	for _, st := range AllStatuses {
		names = append(names, string(st))
	}
	return names
}

type Shipment struct {
	ID               string    `json:"id"`
	OwnerID          string    `json:"user_id"`
	OriginCity       string    `json:"origin_city"`
	OriginState      string    `json:"origin_state"`
	DestinationCity  string    `json:"destination_city"`
	DestinationState string    `json:"destination_state"`
	ShipperName      string    `json:"shipper_name"`
	ConsigneeName    string    `json:"consignee_name"`
	Weight           *float64  `json:"weight"`
	Status           Status    `json:"status"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func (s Shipment) Origin() string {
	return s.OriginCity + ", " + s.OriginState
}

func (s Shipment) Destination() string {
	return s.DestinationCity + ", " + s.DestinationState
}

// Lane is the human-readable "origin → destination" route.
func (s Shipment) Lane() string {
	return s.Origin() + " → " + s.Destination()
}

// Draft carries the fields accepted on creation.
type Draft struct {
	OriginCity       string
	OriginState      string
	DestinationCity  string
	DestinationState string
	ShipperName      string
	ConsigneeName    string
	Weight           *float64
	Status           Status

	// Optional; zero means "now". Used by seeding.
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Normalize trims fields, upper-cases state codes and defaults the status.
func (d *Draft) Normalize() {
	d.OriginCity = strings.TrimSpace(d.OriginCity)
	d.OriginState = strings.ToUpper(strings.TrimSpace(d.OriginState))
	d.DestinationCity = strings.TrimSpace(d.DestinationCity)
	d.DestinationState = strings.ToUpper(strings.TrimSpace(d.DestinationState))
	d.ShipperName = strings.TrimSpace(d.ShipperName)
	d.ConsigneeName = strings.TrimSpace(d.ConsigneeName)
	if d.Status == "" {
		d.Status = StatusPending
	}
}

func (d Draft) Validate() error {
	required := map[string]string{
		"origin_city":      d.OriginCity,
		"destination_city": d.DestinationCity,
		"shipper_name":     d.ShipperName,
		"consignee_name":   d.ConsigneeName,
	}
	for field, v := range required {
		if v == "" {
			return fmt.Errorf("%w: %s is required", ErrInvalid, field)
		}
	}
	if !isStateCode(d.OriginState) {
		return fmt.Errorf("%w: origin_state must be a 2-letter code", ErrInvalid)
	}
	if !isStateCode(d.DestinationState) {
		return fmt.Errorf("%w: destination_state must be a 2-letter code", ErrInvalid)
	}
	if d.Weight != nil && *d.Weight < 0 {
		return fmt.Errorf("%w: weight must be >= 0", ErrInvalid)
	}
	if !d.Status.Valid() {
		return fmt.Errorf("%w: status %q is not one of %s", ErrInvalid, d.Status, StatusNames())
	}
	if !d.CreatedAt.IsZero() && !d.UpdatedAt.IsZero() && d.UpdatedAt.Before(d.CreatedAt) {
		return fmt.Errorf("%w: updated_at must not precede created_at", ErrInvalid)
	}
	return nil
}

// build turns a validated draft into a shipment owned by ownerID.
func (d Draft) build(id, ownerID string, now time.Time) Shipment {
	created := d.CreatedAt
	if created.IsZero() {
		created = now
	}
	updated := d.UpdatedAt
	if updated.IsZero() || updated.Before(created) {
		updated = created
	}
	return Shipment{
		ID:               id,
		OwnerID:          ownerID,
		OriginCity:       d.OriginCity,
		OriginState:      d.OriginState,
		DestinationCity:  d.DestinationCity,
		DestinationState: d.DestinationState,
		ShipperName:      d.ShipperName,
		ConsigneeName:    d.ConsigneeName,
		Weight:           d.Weight,
		Status:           d.Status,
		CreatedAt:        created.UTC().Truncate(time.Microsecond),
		UpdatedAt:        updated.UTC().Truncate(time.Microsecond),
	}
}

// nextUpdatedAt keeps updated_at strictly increasing across status changes.
func nextUpdatedAt(prev, at time.Time) time.Time {
	at = at.UTC().Truncate(time.Microsecond)
	if !at.After(prev) {
		return prev.Add(time.Microsecond)
	}
	return at
}

func isStateCode(s string) bool {
	if len(s) != 2 {
		return false
	}
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}
