package shipment

import (
	"context"
	_ "embed"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

//go:embed seed/demo.yaml
var demoFixture []byte

type seedRow struct {
	OriginCity       string   `yaml:"origin_city"`
	OriginState      string   `yaml:"origin_state"`
	DestinationCity  string   `yaml:"destination_city"`
	DestinationState string   `yaml:"destination_state"`
	ShipperName      string   `yaml:"shipper_name"`
	ConsigneeName    string   `yaml:"consignee_name"`
	Weight           *float64 `yaml:"weight"`
	Status           string   `yaml:"status"`
}

type seedFile struct {
	Shipments []seedRow `yaml:"shipments"`
}

// DemoDrafts parses the embedded demo fixture. Timestamps are left zero.
func DemoDrafts() ([]Draft, error) {
	var file seedFile
	if err := yaml.Unmarshal(demoFixture, &file); err != nil {
		return nil, fmt.Errorf("parse demo fixture: %w", err)
	}

	drafts := make([]Draft, 0, len(file.Shipments))
	for i, row := range file.Shipments {
		st, err := ParseStatus(row.Status)
		if err != nil {
			return nil, fmt.Errorf("demo fixture row %d: %w", i, err)
		}
		drafts = append(drafts, Draft{
			OriginCity:       row.OriginCity,
			OriginState:      row.OriginState,
			DestinationCity:  row.DestinationCity,
			DestinationState: row.DestinationState,
			ShipperName:      row.ShipperName,
			ConsigneeName:    row.ConsigneeName,
			Weight:           row.Weight,
			Status:           st,
		})
	}
	return drafts, nil
}

// Seed inserts the demo shipments for ownerID. Row i is created i days
// before now and last updated i*12h before now.
func Seed(ctx context.Context, store Store, ownerID string, now time.Time) ([]Shipment, error) {
	drafts, err := DemoDrafts()
	if err != nil {
		return nil, err
	}

	created := make([]Shipment, 0, len(drafts))
	for i, d := range drafts {
		d.CreatedAt = now.Add(-time.Duration(i) * 24 * time.Hour)
		d.UpdatedAt = now.Add(-time.Duration(i) * 12 * time.Hour)
		sh, err := store.Create(ctx, ownerID, d)
		if err != nil {
			return created, fmt.Errorf("seed shipment %d (%s): %w", i, d.OriginCity, err)
		}
		created = append(created, sh)
	}

	log.Info().
		Str("owner_id", ownerID).
		Int("count", len(created)).
		Msg("seeded demo shipments")
	return created, nil
}
