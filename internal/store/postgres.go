package store

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/rdce-vr/Local-Track/internal/database"
	"github.com/rdce-vr/Local-Track/internal/model"
)

// ConnectFunc opens a connection for a single store operation.
type ConnectFunc func(ctx context.Context, connStr string) (*pgx.Conn, error)

// Postgres is the Store backed by PostgreSQL.
//
// Every operation opens its own connection and closes it before returning.
// The schema is applied lazily before the first operation of each Postgres
// value.
type Postgres struct {
	connStr string
	connect ConnectFunc
	logger  *slog.Logger

	schemaMu    sync.Mutex
	schemaReady bool
}

// PostgresOption configures a Postgres store.
type PostgresOption func(*Postgres)

// WithConnectFunc replaces the connection opener.
func WithConnectFunc(fn ConnectFunc) PostgresOption {
	return func(s *Postgres) {
		s.connect = fn
	}
}

// NewPostgres creates a Postgres store. No connection is opened until the
// first operation.
func NewPostgres(connStr string, logger *slog.Logger, opts ...PostgresOption) *Postgres {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Postgres{
		connStr: connStr,
		connect: database.Connect,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// withConn runs fn on a fresh connection with the schema in place.
func (s *Postgres) withConn(ctx context.Context, op string, fn func(conn *pgx.Conn) error) error {
	conn, err := s.connect(ctx, s.connStr)
	if err != nil {
		return wrap(op, err)
	}
	defer conn.Close(context.WithoutCancel(ctx))

	if err := s.ensureSchema(ctx, conn); err != nil {
		return wrap(op, err)
	}

	return wrap(op, fn(conn))
}

func (s *Postgres) ensureSchema(ctx context.Context, conn *pgx.Conn) error {
	s.schemaMu.Lock()
	defer s.schemaMu.Unlock()

	if s.schemaReady {
		return nil
	}

	for _, stmt := range schemaStatements {
		if _, err := conn.Exec(ctx, stmt); err != nil {
			return err
		}
	}

	s.schemaReady = true
	s.logger.Debug("store schema ready")
	return nil
}

// EnsureSchema creates tables and indexes if they do not exist.
func (s *Postgres) EnsureSchema(ctx context.Context) error {
	return s.withConn(ctx, "ensure schema", func(*pgx.Conn) error { return nil })
}

// Ping verifies the database is reachable.
func (s *Postgres) Ping(ctx context.Context) error {
	conn, err := s.connect(ctx, s.connStr)
	if err != nil {
		return wrap("ping", err)
	}
	defer conn.Close(context.WithoutCancel(ctx))
	return wrap("ping", conn.Ping(ctx))
}

// InsertFuelIfChanged compares and inserts inside one transaction holding a
// per-commodity advisory lock, so concurrent callers cannot both insert.
func (s *Postgres) InsertFuelIfChanged(ctx context.Context, obs model.PriceObservation) (bool, error) {
	if obs.ObservedAt.IsZero() {
		obs.ObservedAt = time.Now().UTC()
	}

	var inserted bool
	err := s.withConn(ctx, "insert fuel", func(conn *pgx.Conn) error {
		tx, err := conn.Begin(ctx)
		if err != nil {
			return err
		}
		defer tx.Rollback(ctx)

		if _, err := tx.Exec(ctx, sqlLockFuel, "fuel_prices:"+obs.Commodity); err != nil {
			return err
		}

		var latest int64
		err = tx.QueryRow(ctx, sqlLatestFuelPrice, obs.Commodity).Scan(&latest)
		switch {
		case errors.Is(err, pgx.ErrNoRows):
		case err != nil:
			return err
		case latest == obs.Price:
			return nil
		}

		tag, err := tx.Exec(ctx, sqlInsertFuel, obs.Commodity, obs.Price, obs.Source, obs.ObservedAt)
		if err != nil {
			return err
		}
		if err := tx.Commit(ctx); err != nil {
			return err
		}

		inserted = tag.RowsAffected() == 1
		return nil
	})
	return inserted, err
}

// InsertGoldIfNew relies on the unique triple index; conflicts are ignored.
func (s *Postgres) InsertGoldIfNew(ctx context.Context, obs model.GoldObservation) (bool, error) {
	if obs.ObservedAt.IsZero() {
		obs.ObservedAt = time.Now().UTC()
	}

	var inserted bool
	err := s.withConn(ctx, "insert gold", func(conn *pgx.Conn) error {
		tag, err := conn.Exec(ctx, sqlInsertGold, obs.MidPrice, obs.BuyPrice, obs.SellPrice, obs.ObservedAt)
		if err != nil {
			return err
		}
		inserted = tag.RowsAffected() == 1
		return nil
	})
	return inserted, err
}

// LatestFuelPrice returns the most recent price for commodity.
func (s *Postgres) LatestFuelPrice(ctx context.Context, commodity string) (int64, bool, error) {
	var (
		price int64
		found bool
	)
	err := s.withConn(ctx, "latest fuel price", func(conn *pgx.Conn) error {
		err := conn.QueryRow(ctx, sqlLatestFuelPrice, commodity).Scan(&price)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return nil
	})
	return price, found, err
}

// LatestFuel returns the newest observation per commodity.
func (s *Postgres) LatestFuel(ctx context.Context) ([]model.PriceObservation, error) {
	return s.fuelAtRank(ctx, "latest fuel", 1)
}

// PreviousFuel returns the second newest observation per commodity.
func (s *Postgres) PreviousFuel(ctx context.Context) ([]model.PriceObservation, error) {
	return s.fuelAtRank(ctx, "previous fuel", 2)
}

func (s *Postgres) fuelAtRank(ctx context.Context, op string, rank int) ([]model.PriceObservation, error) {
	var out []model.PriceObservation
	err := s.withConn(ctx, op, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, sqlFuelAtRank, rank)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var obs model.PriceObservation
			if err := rows.Scan(&obs.Commodity, &obs.Price, &obs.Source, &obs.ObservedAt); err != nil {
				return err
			}
			obs.ObservedAt = obs.ObservedAt.UTC()
			out = append(out, obs)
		}
		return rows.Err()
	})
	return out, err
}

// LatestGold returns the newest gold observation, or nil when empty.
func (s *Postgres) LatestGold(ctx context.Context) (*model.GoldObservation, error) {
	return s.goldAtOffset(ctx, "latest gold", 0)
}

// PreviousGold returns the second newest gold observation, or nil.
func (s *Postgres) PreviousGold(ctx context.Context) (*model.GoldObservation, error) {
	return s.goldAtOffset(ctx, "previous gold", 1)
}

func (s *Postgres) goldAtOffset(ctx context.Context, op string, offset int) (*model.GoldObservation, error) {
	var out *model.GoldObservation
	err := s.withConn(ctx, op, func(conn *pgx.Conn) error {
		var obs model.GoldObservation
		err := conn.QueryRow(ctx, sqlGoldAtOffset, offset).
			Scan(&obs.MidPrice, &obs.BuyPrice, &obs.SellPrice, &obs.ObservedAt)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		if err != nil {
			return err
		}
		obs.ObservedAt = obs.ObservedAt.UTC()
		out = &obs
		return nil
	})
	return out, err
}
