package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rdce-vr/Local-Track/internal/model"
)

func TestKeys(t *testing.T) {
	assert.Equal(t, "localtrack:fuel:pertalite", FuelKey("localtrack", "Pertalite"))
	assert.Equal(t, "localtrack:fuel:pertamax_turbo", FuelKey("localtrack", "Pertamax Turbo"))
	assert.Equal(t, "lt:fuel:pertamina_dex", FuelKey("lt", " Pertamina  Dex "))
	assert.Equal(t, "localtrack:gold", GoldKey("localtrack"))
}

// newTestRedis connects to LOCALTRACK_TEST_REDIS or skips.
func newTestRedis(t *testing.T) *Redis {
	t.Helper()

	addr := os.Getenv("LOCALTRACK_TEST_REDIS")
	if addr == "" {
		t.Skip("LOCALTRACK_TEST_REDIS not set")
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	prefix := "localtrack_test_" + time.Now().Format("150405.000000")
	r := NewWithClient(client, prefix, time.Minute)
	require.NoError(t, r.Ping(context.Background()))

	t.Cleanup(func() {
		ctx := context.Background()
		keys, _ := client.Keys(ctx, prefix+":*").Result()
		if len(keys) > 0 {
			client.Del(ctx, keys...)
		}
		r.Close()
	})
	return r
}

func TestRedis_Fuel(t *testing.T) {
	r := newTestRedis(t)
	ctx := context.Background()

	at := time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC)
	err := r.PublishFuel(ctx, []model.PriceObservation{
		{Commodity: "Pertalite", Price: 10000, Source: "patra-niaga", ObservedAt: at},
		{Commodity: "Pertamax Turbo", Price: 13250, Source: "patra-niaga", ObservedAt: at},
	})
	require.NoError(t, err)

	got, err := r.LatestFuel(ctx, "Pertamax Turbo")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, int64(13250), got.Price)
	assert.True(t, got.ObservedAt.Equal(at))

	missing, err := r.LatestFuel(ctx, "Dexlite")
	require.NoError(t, err)
	assert.Nil(t, missing)

	updated, err := r.FuelUpdatedAt(ctx)
	require.NoError(t, err)
	assert.True(t, updated.Equal(at))
}

func TestRedis_Gold(t *testing.T) {
	r := newTestRedis(t)
	ctx := context.Background()

	got, err := r.LatestGold(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)

	obs := model.GoldObservation{MidPrice: 1050, BuyPrice: 1000, SellPrice: 1100, ObservedAt: time.Now().UTC()}
	require.NoError(t, r.PublishGold(ctx, obs))

	got, err = r.LatestGold(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, obs.Triple(), got.Triple())
}

func TestRedis_Unreachable(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	r := NewWithClient(client, "localtrack", 0)
	defer r.Close()

	assert.Error(t, r.Ping(context.Background()))
	assert.Error(t, r.PublishGold(context.Background(), model.GoldObservation{}))
}
