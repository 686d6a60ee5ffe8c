package store

import (
	"context"

	"github.com/rdce-vr/Local-Track/internal/model"
)

// Writer is the write side of the store. Only the fetcher calls it.
type Writer interface {
	// InsertFuelIfChanged inserts obs unless the latest stored price for the
	// same commodity is equal. It reports whether a row was inserted.
	InsertFuelIfChanged(ctx context.Context, obs model.PriceObservation) (bool, error)

	// InsertGoldIfNew inserts obs unless the same (mid, buy, sell) triple was
	// ever stored before. It reports whether a row was inserted.
	InsertGoldIfNew(ctx context.Context, obs model.GoldObservation) (bool, error)
}

// Reader is the read side used by the presentation layer and the CLI.
type Reader interface {
	// LatestFuelPrice returns the most recent price for commodity.
	LatestFuelPrice(ctx context.Context, commodity string) (price int64, found bool, err error)

	// LatestFuel returns the newest observation per commodity, sorted by name.
	LatestFuel(ctx context.Context) ([]model.PriceObservation, error)

	// PreviousFuel returns the second newest observation per commodity,
	// sorted by name. Commodities with a single row are omitted.
	PreviousFuel(ctx context.Context) ([]model.PriceObservation, error)

	// LatestGold returns the newest gold observation, or nil when empty.
	LatestGold(ctx context.Context) (*model.GoldObservation, error)

	// PreviousGold returns the second newest gold observation, or nil.
	PreviousGold(ctx context.Context) (*model.GoldObservation, error)
}

// Store is the full Price Store.
type Store interface {
	Reader
	Writer

	// EnsureSchema creates tables and indexes if they do not exist.
	EnsureSchema(ctx context.Context) error

	// Ping verifies the store is reachable.
	Ping(ctx context.Context) error
}

var (
	_ Store = (*Postgres)(nil)
	_ Store = (*Memory)(nil)
)
