package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rdce-vr/Local-Track/internal/config"
	"github.com/rdce-vr/Local-Track/internal/model"
)

// Redis publishes and reads latest prices.
type Redis struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// New creates a Redis cache from cfg. It does not connect; use Ping.
func New(cfg config.CacheConfig) *Redis {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return NewWithClient(client, cfg.Prefix, cfg.TTL)
}

// NewWithClient wraps an existing client. ttl 0 means keys never expire.
func NewWithClient(client redis.UniversalClient, prefix string, ttl time.Duration) *Redis {
	return &Redis{client: client, prefix: prefix, ttl: ttl}
}

// FuelKey returns the key holding the latest price of commodity.
func FuelKey(prefix, commodity string) string {
	slug := strings.ToLower(strings.Join(strings.Fields(commodity), "_"))
	return fmt.Sprintf("%s:fuel:%s", prefix, slug)
}

// GoldKey returns the key holding the latest gold quote.
func GoldKey(prefix string) string {
	return prefix + ":gold"
}

func fuelUpdatedKey(prefix string) string {
	return prefix + ":fuel:updated_at"
}

// PublishFuel stores obs as the latest fuel prices in one transaction.
func (r *Redis) PublishFuel(ctx context.Context, obs []model.PriceObservation) error {
	if len(obs) == 0 {
		return nil
	}

	payloads := make(map[string][]byte, len(obs))
	updated := obs[0].ObservedAt
	for _, o := range obs {
		data, err := json.Marshal(o)
		if err != nil {
			return fmt.Errorf("failed to marshal fuel price: %w", err)
		}
		payloads[FuelKey(r.prefix, o.Commodity)] = data
		if o.ObservedAt.After(updated) {
			updated = o.ObservedAt
		}
	}

	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for key, data := range payloads {
			pipe.Set(ctx, key, data, r.ttl)
		}
		pipe.Set(ctx, fuelUpdatedKey(r.prefix), updated.UTC().Format(time.RFC3339), r.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to set latest fuel prices in redis: %w", err)
	}
	return nil
}

// PublishGold stores obs as the latest gold quote.
func (r *Redis) PublishGold(ctx context.Context, obs model.GoldObservation) error {
	data, err := json.Marshal(obs)
	if err != nil {
		return fmt.Errorf("failed to marshal gold price: %w", err)
	}
	if err := r.client.Set(ctx, GoldKey(r.prefix), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set latest gold price in redis: %w", err)
	}
	return nil
}

// LatestFuel returns the cached price of commodity, or nil when absent.
func (r *Redis) LatestFuel(ctx context.Context, commodity string) (*model.PriceObservation, error) {
	var obs model.PriceObservation
	ok, err := r.get(ctx, FuelKey(r.prefix, commodity), &obs)
	if err != nil || !ok {
		return nil, err
	}
	return &obs, nil
}

// LatestGold returns the cached gold quote, or nil when absent.
func (r *Redis) LatestGold(ctx context.Context) (*model.GoldObservation, error) {
	var obs model.GoldObservation
	ok, err := r.get(ctx, GoldKey(r.prefix), &obs)
	if err != nil || !ok {
		return nil, err
	}
	return &obs, nil
}

// FuelUpdatedAt returns the time of the last fuel publish, or the zero
// time when nothing was published.
func (r *Redis) FuelUpdatedAt(ctx context.Context) (time.Time, error) {
	raw, err := r.client.Get(ctx, fuelUpdatedKey(r.prefix)).Result()
	if errors.Is(err, redis.Nil) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to get fuel update time from redis: %w", err)
	}
	return time.Parse(time.RFC3339, raw)
}

func (r *Redis) get(ctx context.Context, key string, v any) (bool, error) {
	data, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to get %s from redis: %w", key, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("failed to unmarshal %s: %w", key, err)
	}
	return true, nil
}

// Ping verifies Redis is reachable.
func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close releases the client.
func (r *Redis) Close() error {
	return r.client.Close()
}
