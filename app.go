package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/tanpawarit/Freight-Shipment-Assistant/shipment"
	configx "github.com/tanpawarit/Freight-Shipment-Assistant/pkg/config"
	postgresx "github.com/tanpawarit/Freight-Shipment-Assistant/pkg/postgres"
	qstashx "github.com/tanpawarit/Freight-Shipment-Assistant/pkg/qstash"
)

const (
	storeDriverMemory   = "memory"
	storeDriverPostgres = "postgres"
)

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

type AppConfig struct {
	Addr              string `envconfig:"APP_ADDR" default:":8080"`
	StoreDriver       string `envconfig:"APP_STORE_DRIVER" default:"postgres"`
	DisplayTimezone   string `envconfig:"APP_DISPLAY_TIMEZONE" default:"UTC"`
	ChatMaxIterations int    `envconfig:"APP_CHAT_MAX_ITERATIONS" default:"8"`
	SeedOwner         string `envconfig:"APP_SEED_OWNER"`
}

func (c AppConfig) driver() string {
	return strings.ToLower(strings.TrimSpace(c.StoreDriver))
}

func (c AppConfig) location() (*time.Location, error) {
	name := strings.TrimSpace(c.DisplayTimezone)
	if name == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("load display timezone %q: %w", name, err)
	}
	return loc, nil
}

// openStore builds the configured shipment store. The returned closer is
// never nil.
func openStore(ctx context.Context, appCfg AppConfig) (shipment.Store, io.Closer, error) {
	var (
		store  shipment.Store
		closer io.Closer = closerFunc(func() error { return nil })
	)

	switch appCfg.driver() {
	case storeDriverMemory:
		store = shipment.NewMemoryStore()
	case storeDriverPostgres:
		pgCfg, err := configx.New[postgresx.Config]("POSTGRES")
		if err != nil {
			return nil, nil, err
		}
		db, err := postgresx.Open(ctx, *pgCfg)
		if err != nil {
			return nil, nil, err
		}
		bunStore := shipment.NewBunStore(db)
		if err := bunStore.Migrate(ctx); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		store, closer = bunStore, db
	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", appCfg.StoreDriver)
	}

	qstashCfg, err := configx.New[qstashx.Config]("QSTASH")
	if err != nil {
		_ = closer.Close()
		return nil, nil, err
	}
	if qstashCfg.Enabled() {
		publisher, err := qstashx.NewClient(*qstashCfg)
		if err != nil {
			_ = closer.Close()
			return nil, nil, err
		}
		store = shipment.NewNotifyingStore(store, publisher)
		log.Info().Str("destination", qstashCfg.Destination).Msg("shipment events enabled")
	}

	log.Info().Str("driver", appCfg.StoreDriver).Msg("shipment store ready")
	return store, closer, nil
}
