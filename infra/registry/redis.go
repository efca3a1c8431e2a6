package registry

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/ridewire/matchd/core/model"
	coreregistry "github.com/ridewire/matchd/core/registry"
)

const (
	availableKey    = "matchd:drivers:available"
	assignedKey     = "matchd:drivers:assigned"
	driverKeyPrefix = "matchd:driver:%s"
)

// RedisConfig holds the connection settings for the Redis registry.
type RedisConfig struct {
	Enabled  bool   `json:"enabled"`
	Addr     string `json:"addr"`
	Password string `json:"password"`
	DB       int    `json:"db"`
}

// SetDefaults applies the standard local address.
func (c *RedisConfig) SetDefaults() {
	if c.Addr == "" {
		c.Addr = "localhost:6379"
	}
}

// RedisRegistry shares the driver pool across matcher instances. Claims use
// SMOVE between the available and assigned sets, which is atomic on the
// server, so two instances can never claim the same driver.
type RedisRegistry struct {
	cli *redis.Client
}

// NewRedisRegistry connects to Redis and verifies the connection.
func NewRedisRegistry(ctx context.Context, cfg RedisConfig) (*RedisRegistry, error) {
	cfg.SetDefaults()
	cli := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := cli.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &RedisRegistry{cli: cli}, nil
}

// Close releases the connection pool.
func (r *RedisRegistry) Close() error {
	return r.cli.Close()
}

// Upsert stores the driver profile and places the driver in the available set
// unless already claimed.
func (r *RedisRegistry) Upsert(ctx context.Context, d model.DriverCandidate) error {
	raw, err := json.Marshal(d)
	if err != nil {
		return err
	}
	claimed, err := r.cli.SIsMember(ctx, assignedKey, d.ID).Result()
	if err != nil {
		return err
	}
	pipe := r.cli.Pipeline()
	pipe.Set(ctx, driverKey(d.ID), raw, 0)
	if !claimed {
		pipe.SAdd(ctx, availableKey, d.ID)
	}
	_, err = pipe.Exec(ctx)
	return err
}

// Remove deletes the driver profile and any claim on it.
func (r *RedisRegistry) Remove(ctx context.Context, driverID string) error {
	pipe := r.cli.Pipeline()
	pipe.Del(ctx, driverKey(driverID))
	pipe.SRem(ctx, availableKey, driverID)
	pipe.SRem(ctx, assignedKey, driverID)
	_, err := pipe.Exec(ctx)
	return err
}

// Snapshot loads the profiles of every driver in the available set. Profiles
// missing their key are skipped.
func (r *RedisRegistry) Snapshot(ctx context.Context) ([]model.DriverCandidate, error) {
	ids, err := r.cli.SMembers(ctx, availableKey).Result()
	if err != nil {
		return nil, fmt.Errorf("smembers: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = driverKey(id)
	}
	vals, err := r.cli.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("mget: %w", err)
	}
	out := make([]model.DriverCandidate, 0, len(vals))
	for _, v := range vals {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		var d model.DriverCandidate
		if err := json.Unmarshal([]byte(raw), &d); err != nil {
			continue
		}
		out = append(out, d)
	}
	return out, nil
}

// TryAssign moves the driver from the available to the assigned set. The move
// is atomic: exactly one concurrent caller observes success.
func (r *RedisRegistry) TryAssign(ctx context.Context, driverID string) error {
	moved, err := r.cli.SMove(ctx, availableKey, assignedKey, driverID).Result()
	if err != nil {
		return fmt.Errorf("smove: %w", err)
	}
	if moved {
		return nil
	}
	exists, err := r.cli.Exists(ctx, driverKey(driverID)).Result()
	if err != nil {
		return fmt.Errorf("exists: %w", err)
	}
	if exists == 0 {
		return coreregistry.ErrUnknownDriver
	}
	return coreregistry.ErrDriverTaken
}

// Release moves the driver back to the available set.
func (r *RedisRegistry) Release(ctx context.Context, driverID string) error {
	moved, err := r.cli.SMove(ctx, assignedKey, availableKey, driverID).Result()
	if err != nil {
		return fmt.Errorf("smove: %w", err)
	}
	if !moved {
		return coreregistry.ErrUnknownDriver
	}
	return nil
}

func driverKey(id string) string {
	return fmt.Sprintf(driverKeyPrefix, id)
}
