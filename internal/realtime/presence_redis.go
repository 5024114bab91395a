package realtime

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisRegistry is the shared-store Registry for multi-instance deployments.
// Each room maps to a redis set; redis drops empty sets on the last SRem, so
// the "delete the room entry when empty" rule holds for free.
type RedisRegistry struct {
	client *redis.Client
	prefix string
}

// NewRedisRegistry connects to redis and verifies the connection.
func NewRedisRegistry(addr, password string, db int) (*RedisRegistry, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return NewRedisRegistryWithClient(client), nil
}

// NewRedisRegistryWithClient wraps an existing client (used by tests).
func NewRedisRegistryWithClient(client *redis.Client) *RedisRegistry {
	return &RedisRegistry{
		client: client,
		prefix: "presence:",
	}
}

func (r *RedisRegistry) key(room string) string {
	return r.prefix + room
}

func (r *RedisRegistry) Join(ctx context.Context, room string, userID uint) error {
	if err := r.client.SAdd(ctx, r.key(room), userID).Err(); err != nil {
		return fmt.Errorf("presence join: %w", err)
	}
	return nil
}

func (r *RedisRegistry) Leave(ctx context.Context, room string, userID uint) error {
	if err := r.client.SRem(ctx, r.key(room), userID).Err(); err != nil {
		return fmt.Errorf("presence leave: %w", err)
	}
	return nil
}

func (r *RedisRegistry) Snapshot(ctx context.Context, room string) ([]uint, error) {
	members, err := r.client.SMembers(ctx, r.key(room)).Result()
	if err != nil {
		return nil, fmt.Errorf("presence snapshot: %w", err)
	}

	ids := make([]uint, 0, len(members))
	for _, m := range members {
		id, err := strconv.ParseUint(m, 10, 32)
		if err != nil {
			continue
		}
		ids = append(ids, uint(id))
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

// Close closes the underlying redis connection.
func (r *RedisRegistry) Close() error {
	return r.client.Close()
}
