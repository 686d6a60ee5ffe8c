package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rdce-vr/Local-Track/internal/model"
)

// Memory is an in-process Store with the same semantics as Postgres,
// including both unique indexes. It backs dry runs and tests.
type Memory struct {
	mu       sync.Mutex
	fuel     []model.PriceObservation
	gold     []model.GoldObservation
	fuelKeys map[fuelKey]struct{}
	goldKeys map[[3]int64]struct{}
}

type fuelKey struct {
	commodity string
	price     int64
	at        int64
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		fuelKeys: make(map[fuelKey]struct{}),
		goldKeys: make(map[[3]int64]struct{}),
	}
}

// EnsureSchema is a no-op.
func (m *Memory) EnsureSchema(context.Context) error { return nil }

// Ping is a no-op.
func (m *Memory) Ping(context.Context) error { return nil }

// InsertFuelIfChanged inserts obs unless the latest price matches.
func (m *Memory) InsertFuelIfChanged(_ context.Context, obs model.PriceObservation) (bool, error) {
	if obs.ObservedAt.IsZero() {
		obs.ObservedAt = time.Now().UTC()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if latest, ok := m.fuelAtRankLocked(obs.Commodity, 1); ok && latest.Price == obs.Price {
		return false, nil
	}

	key := fuelKey{commodity: obs.Commodity, price: obs.Price, at: obs.ObservedAt.UnixMicro()}
	if _, dup := m.fuelKeys[key]; dup {
		return false, nil
	}
	m.fuelKeys[key] = struct{}{}
	m.fuel = append(m.fuel, obs)
	return true, nil
}

// InsertGoldIfNew inserts obs unless its triple was ever stored.
func (m *Memory) InsertGoldIfNew(_ context.Context, obs model.GoldObservation) (bool, error) {
	if obs.ObservedAt.IsZero() {
		obs.ObservedAt = time.Now().UTC()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, dup := m.goldKeys[obs.Triple()]; dup {
		return false, nil
	}
	m.goldKeys[obs.Triple()] = struct{}{}
	m.gold = append(m.gold, obs)
	return true, nil
}

// LatestFuelPrice returns the most recent price for commodity.
func (m *Memory) LatestFuelPrice(_ context.Context, commodity string) (int64, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	obs, ok := m.fuelAtRankLocked(commodity, 1)
	return obs.Price, ok, nil
}

// LatestFuel returns the newest observation per commodity.
func (m *Memory) LatestFuel(context.Context) ([]model.PriceObservation, error) {
	return m.allAtRank(1), nil
}

// PreviousFuel returns the second newest observation per commodity.
func (m *Memory) PreviousFuel(context.Context) ([]model.PriceObservation, error) {
	return m.allAtRank(2), nil
}

// LatestGold returns the newest gold observation, or nil when empty.
func (m *Memory) LatestGold(context.Context) (*model.GoldObservation, error) {
	return m.goldAtRank(1), nil
}

// PreviousGold returns the second newest gold observation, or nil.
func (m *Memory) PreviousGold(context.Context) (*model.GoldObservation, error) {
	return m.goldAtRank(2), nil
}

// FuelRows returns a copy of all fuel rows in insertion order.
func (m *Memory) FuelRows() []model.PriceObservation {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.PriceObservation(nil), m.fuel...)
}

// GoldRows returns a copy of all gold rows in insertion order.
func (m *Memory) GoldRows() []model.GoldObservation {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.GoldObservation(nil), m.gold...)
}

func (m *Memory) allAtRank(rank int) []model.PriceObservation {
	m.mu.Lock()
	defer m.mu.Unlock()

	seen := make(map[string]bool)
	var out []model.PriceObservation
	for _, obs := range m.fuel {
		if seen[obs.Commodity] {
			continue
		}
		seen[obs.Commodity] = true
		if ranked, ok := m.fuelAtRankLocked(obs.Commodity, rank); ok {
			out = append(out, ranked)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Commodity < out[j].Commodity })
	return out
}

// fuelAtRankLocked orders rows by observation time, newest first, with
// later insertions winning ties. Rank 1 is the latest row.
func (m *Memory) fuelAtRankLocked(commodity string, rank int) (model.PriceObservation, bool) {
	var idx []int
	for i, obs := range m.fuel {
		if obs.Commodity == commodity {
			idx = append(idx, i)
		}
	}
	sort.SliceStable(idx, func(a, b int) bool {
		ta, tb := m.fuel[idx[a]].ObservedAt, m.fuel[idx[b]].ObservedAt
		if !ta.Equal(tb) {
			return ta.After(tb)
		}
		return idx[a] > idx[b]
	})
	if len(idx) < rank {
		return model.PriceObservation{}, false
	}
	return m.fuel[idx[rank-1]], true
}

func (m *Memory) goldAtRank(rank int) *model.GoldObservation {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx := make([]int, len(m.gold))
	for i := range m.gold {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		ta, tb := m.gold[idx[a]].ObservedAt, m.gold[idx[b]].ObservedAt
		if !ta.Equal(tb) {
			return ta.After(tb)
		}
		return idx[a] > idx[b]
	})
	if len(idx) < rank {
		return nil
	}
	obs := m.gold[idx[rank-1]]
	return &obs
}
