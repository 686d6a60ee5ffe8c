package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rdce-vr/Local-Track/internal/model"
)

var baseTime = time.Date(2026, 3, 1, 3, 0, 0, 0, time.UTC)

func fuelAt(commodity string, price int64, minutes int) model.PriceObservation {
	return model.PriceObservation{
		Commodity:  commodity,
		Price:      price,
		Source:     "patra-niaga",
		ObservedAt: baseTime.Add(time.Duration(minutes) * time.Minute),
	}
}

func goldAt(mid, buy, sell int64, minutes int) model.GoldObservation {
	return model.GoldObservation{
		MidPrice:   mid,
		BuyPrice:   buy,
		SellPrice:  sell,
		ObservedAt: baseTime.Add(time.Duration(minutes) * time.Minute),
	}
}

// runStoreContract checks the behaviour every Store implementation must share.
// newStore must return an empty store.
func runStoreContract(t *testing.T, newStore func(t *testing.T) Store) {
	ctx := context.Background()

	t.Run("alternating prices always change", func(t *testing.T) {
		s := newStore(t)
		prices := []int64{10000, 10500, 10000, 10500, 10000}
		for i, p := range prices {
			changed, err := s.InsertFuelIfChanged(ctx, fuelAt("Pertalite", p, i))
			require.NoError(t, err)
			assert.Truef(t, changed, "insert %d (price %d) should report changed", i, p)
		}
	})

	t.Run("identical run changes once", func(t *testing.T) {
		s := newStore(t)
		for i := 0; i < 4; i++ {
			changed, err := s.InsertFuelIfChanged(ctx, fuelAt("Pertamax", 12500, i))
			require.NoError(t, err)
			assert.Equal(t, i == 0, changed, "insert %d", i)
		}

		latest, err := s.LatestFuel(ctx)
		require.NoError(t, err)
		require.Len(t, latest, 1)
		assert.Equal(t, int64(12500), latest[0].Price)

		prev, err := s.PreviousFuel(ctx)
		require.NoError(t, err)
		assert.Empty(t, prev)
	})

	t.Run("latest price by observation time", func(t *testing.T) {
		s := newStore(t)
		_, found, err := s.LatestFuelPrice(ctx, "Dexlite")
		require.NoError(t, err)
		assert.False(t, found)

		_, err = s.InsertFuelIfChanged(ctx, fuelAt("Dexlite", 13000, 0))
		require.NoError(t, err)
		_, err = s.InsertFuelIfChanged(ctx, fuelAt("Dexlite", 13250, 10))
		require.NoError(t, err)

		price, found, err := s.LatestFuelPrice(ctx, "Dexlite")
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, int64(13250), price)
	})

	t.Run("ties broken by insertion order", func(t *testing.T) {
		s := newStore(t)
		_, err := s.InsertFuelIfChanged(ctx, fuelAt("Biosolar", 6800, 0))
		require.NoError(t, err)
		_, err = s.InsertFuelIfChanged(ctx, fuelAt("Biosolar", 6900, 0))
		require.NoError(t, err)

		price, found, err := s.LatestFuelPrice(ctx, "Biosolar")
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, int64(6900), price)
	})

	t.Run("latest and previous per commodity", func(t *testing.T) {
		s := newStore(t)
		for i, obs := range []model.PriceObservation{
			fuelAt("Pertamax", 12000, 0),
			fuelAt("Pertalite", 10000, 1),
			fuelAt("Pertamax", 12500, 2),
		} {
			changed, err := s.InsertFuelIfChanged(ctx, obs)
			require.NoError(t, err)
			require.Truef(t, changed, "insert %d", i)
		}

		latest, err := s.LatestFuel(ctx)
		require.NoError(t, err)
		require.Len(t, latest, 2)
		assert.Equal(t, "Pertalite", latest[0].Commodity)
		assert.Equal(t, "Pertamax", latest[1].Commodity)
		assert.Equal(t, int64(12500), latest[1].Price)
		assert.True(t, latest[1].ObservedAt.Equal(baseTime.Add(2*time.Minute)))

		prev, err := s.PreviousFuel(ctx)
		require.NoError(t, err)
		require.Len(t, prev, 1)
		assert.Equal(t, "Pertamax", prev[0].Commodity)
		assert.Equal(t, int64(12000), prev[0].Price)
	})

	t.Run("gold insert is idempotent", func(t *testing.T) {
		s := newStore(t)
		first, err := s.InsertGoldIfNew(ctx, goldAt(1_500_000, 1_450_000, 1_550_000, 0))
		require.NoError(t, err)
		assert.True(t, first)

		second, err := s.InsertGoldIfNew(ctx, goldAt(1_500_000, 1_450_000, 1_550_000, 5))
		require.NoError(t, err)
		assert.False(t, second)

		latest, err := s.LatestGold(ctx)
		require.NoError(t, err)
		require.NotNil(t, latest)
		assert.Equal(t, [3]int64{1_500_000, 1_450_000, 1_550_000}, latest.Triple())

		prev, err := s.PreviousGold(ctx)
		require.NoError(t, err)
		assert.Nil(t, prev)
	})

	t.Run("gold triple seen before stays blocked", func(t *testing.T) {
		s := newStore(t)
		a := goldAt(100, 90, 110, 0)
		b := goldAt(200, 190, 210, 1)

		ok, err := s.InsertGoldIfNew(ctx, a)
		require.NoError(t, err)
		require.True(t, ok)
		ok, err = s.InsertGoldIfNew(ctx, b)
		require.NoError(t, err)
		require.True(t, ok)

		a.ObservedAt = baseTime.Add(2 * time.Minute)
		ok, err = s.InsertGoldIfNew(ctx, a)
		require.NoError(t, err)
		assert.False(t, ok, "reappearing triple is dropped")

		latest, err := s.LatestGold(ctx)
		require.NoError(t, err)
		require.NotNil(t, latest)
		assert.Equal(t, int64(200), latest.MidPrice)

		prev, err := s.PreviousGold(ctx)
		require.NoError(t, err)
		require.NotNil(t, prev)
		assert.Equal(t, int64(100), prev.MidPrice)
	})

	t.Run("empty gold", func(t *testing.T) {
		s := newStore(t)
		latest, err := s.LatestGold(ctx)
		require.NoError(t, err)
		assert.Nil(t, latest)
	})

	t.Run("schema is re-applicable", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.EnsureSchema(ctx))
		require.NoError(t, s.EnsureSchema(ctx))
		require.NoError(t, s.Ping(ctx))
	})
}
