package shipment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

var _ Store = (*BunStore)(nil)

const defaultOrder = "created_at DESC, id ASC"

type shipmentRow struct {
	bun.BaseModel `bun:"table:shipments,alias:s"`

	ID               string    `bun:"id,pk,type:uuid"`
	UserID           string    `bun:"user_id,notnull"`
	OriginCity       string    `bun:"origin_city,notnull"`
	OriginState      string    `bun:"origin_state,notnull"`
	DestinationCity  string    `bun:"destination_city,notnull"`
	DestinationState string    `bun:"destination_state,notnull"`
	ShipperName      string    `bun:"shipper_name,notnull"`
	ConsigneeName    string    `bun:"consignee_name,notnull"`
	Weight           *float64  `bun:"weight"`
	Status           string    `bun:"status,notnull,default:'pending'"`
	CreatedAt        time.Time `bun:"created_at,notnull,type:timestamptz"`
	UpdatedAt        time.Time `bun:"updated_at,notnull,type:timestamptz"`
}

func (r shipmentRow) toShipment() Shipment {
	return Shipment{
		ID:               r.ID,
		OwnerID:          r.UserID,
		OriginCity:       r.OriginCity,
		OriginState:      r.OriginState,
		DestinationCity:  r.DestinationCity,
		DestinationState: r.DestinationState,
		ShipperName:      r.ShipperName,
		ConsigneeName:    r.ConsigneeName,
		Weight:           r.Weight,
		Status:           Status(r.Status),
		CreatedAt:        r.CreatedAt.UTC(),
		UpdatedAt:        r.UpdatedAt.UTC(),
	}
}

func fromShipment(s Shipment) shipmentRow {
	return shipmentRow{
		ID:               s.ID,
		UserID:           s.OwnerID,
		OriginCity:       s.OriginCity,
		OriginState:      s.OriginState,
		DestinationCity:  s.DestinationCity,
		DestinationState: s.DestinationState,
		ShipperName:      s.ShipperName,
		ConsigneeName:    s.ConsigneeName,
		Weight:           s.Weight,
		Status:           string(s.Status),
		CreatedAt:        s.CreatedAt,
		UpdatedAt:        s.UpdatedAt,
	}
}

// BunStore persists shipments in PostgreSQL through bun.
type BunStore struct {
	db  bun.IDB
	now func() time.Time
}

func NewBunStore(db bun.IDB) *BunStore {
	return &BunStore{db: db, now: time.Now}
}

// Migrate creates the shipments table and its owner index when missing.
func (s *BunStore) Migrate(ctx context.Context) error {
	if _, err := s.db.NewCreateTable().
		Model((*shipmentRow)(nil)).
		IfNotExists().
		Exec(ctx); err != nil {
		return fmt.Errorf("create shipments table: %w", err)
	}
	if _, err := s.db.NewCreateIndex().
		Model((*shipmentRow)(nil)).
		Index("shipments_user_id_created_at_idx").
		Column("user_id", "created_at").
		IfNotExists().
		Exec(ctx); err != nil {
		return fmt.Errorf("create shipments owner index: %w", err)
	}
	return nil
}

func (s *BunStore) List(ctx context.Context, ownerID string, filter ListFilter) ([]Shipment, error) {
	var rows []shipmentRow
	q := s.db.NewSelect().
		Model(&rows).
		Where("user_id = ?", ownerID).
		OrderExpr(defaultOrder)
	if filter.Status != nil {
		q = q.Where("status = ?", string(*filter.Status))
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("list shipments: %w", err)
	}
	return toShipments(rows), nil
}

func (s *BunStore) Get(ctx context.Context, ownerID, id string) (Shipment, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Shipment{}, ErrNotFound
	}

	var row shipmentRow
	err := s.db.NewSelect().
		Model(&row).
		Where("id = ?", id).
		Where("user_id = ?", ownerID).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return Shipment{}, ErrNotFound
	}
	if err != nil {
		return Shipment{}, fmt.Errorf("get shipment: %w", err)
	}
	return row.toShipment(), nil
}

func (s *BunStore) Search(ctx context.Context, ownerID, term string, limit int) ([]Shipment, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return []Shipment{}, nil
	}
	pattern := "%" + escapeLike(term) + "%"

	var rows []shipmentRow
	q := s.db.NewSelect().
		Model(&rows).
		Where("user_id = ?", ownerID).
		WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.
				Where("origin_city ILIKE ?", pattern).
				WhereOr("destination_city ILIKE ?", pattern)
		}).
		OrderExpr(defaultOrder)
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("search shipments: %w", err)
	}
	return toShipments(rows), nil
}

func (s *BunStore) UpdateStatus(ctx context.Context, ownerID, id string, status Status, at time.Time) (Shipment, error) {
	if !status.Valid() {
		return Shipment{}, fmt.Errorf("%w: status %q", ErrInvalid, status)
	}
	if _, err := uuid.Parse(id); err != nil {
		return Shipment{}, ErrNotFound
	}

	var row shipmentRow
	res, err := s.db.NewUpdate().
		Model(&row).
		Set("status = ?", string(status)).
		Set("updated_at = GREATEST(?, updated_at + interval '1 microsecond')", at.UTC()).
		Where("id = ?", id).
		Where("user_id = ?", ownerID).
		Returning("*").
		Exec(ctx)
	if err != nil {
		return Shipment{}, fmt.Errorf("update shipment status: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return Shipment{}, ErrNotFound
	}
	return row.toShipment(), nil
}

func (s *BunStore) Delete(ctx context.Context, ownerID, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrNotFound
	}

	res, err := s.db.NewDelete().
		Model((*shipmentRow)(nil)).
		Where("id = ?", id).
		Where("user_id = ?", ownerID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete shipment: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete shipment rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *BunStore) Create(ctx context.Context, ownerID string, draft Draft) (Shipment, error) {
	draft.Normalize()
	if err := draft.Validate(); err != nil {
		return Shipment{}, err
	}

	sh := draft.build(uuid.NewString(), ownerID, s.now())
	row := fromShipment(sh)
	if _, err := s.db.NewInsert().Model(&row).Exec(ctx); err != nil {
		return Shipment{}, fmt.Errorf("insert shipment: %w", err)
	}
	return sh, nil
}

func toShipments(rows []shipmentRow) []Shipment {
	out := make([]Shipment, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toShipment())
	}
	return out
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
