package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/adrena/backend/internal/models"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	changesChannel  = "changes"
	presenceChannel = "presence"
)

type RedisClient struct {
	client *redis.Client
}

// NewRedisClient creates a new Redis client
func NewRedisClient(addr, password string, db int) (*RedisClient, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	// Test connection
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewFromClient(client), nil
}

// NewFromClient wraps an existing client
func NewFromClient(client *redis.Client) *RedisClient {
	return &RedisClient{client: client}
}

// Close closes the Redis connection
func (r *RedisClient) Close() error {
	return r.client.Close()
}

// JSON values

// GetJSON decodes key into dst. It reports false on a miss.
func (r *RedisClient) GetJSON(ctx context.Context, key string, dst any) (bool, error) {
	data, err := r.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, fmt.Errorf("failed to decode cached %s: %w", key, err)
	}
	return true, nil
}

// SetJSON stores v under key for ttl
func (r *RedisClient) SetJSON(ctx context.Context, key string, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, key, data, ttl).Err()
}

// Delete removes keys
func (r *RedisClient) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return r.client.Del(ctx, keys...).Err()
}

// Presence Management

func presenceKey(userID uuid.UUID) string {
	return fmt.Sprintf("presence:user:%s", userID.String())
}

// SetUserOnline sets a user as online
func (r *RedisClient) SetUserOnline(ctx context.Context, userID uuid.UUID) error {
	return r.setPresence(ctx, userID, "online", 5*time.Minute)
}

// SetUserOffline sets a user as offline
func (r *RedisClient) SetUserOffline(ctx context.Context, userID uuid.UUID) error {
	return r.setPresence(ctx, userID, "offline", 24*time.Hour)
}

func (r *RedisClient) setPresence(ctx context.Context, userID uuid.UUID, status string, ttl time.Duration) error {
	presence := models.UserPresence{
		UserID:   userID,
		Status:   status,
		LastSeen: time.Now(),
	}
	if err := r.SetJSON(ctx, presenceKey(userID), presence, ttl); err != nil {
		return err
	}
	return r.publish(ctx, presenceChannel, presence)
}

// GetUserPresence gets a user's presence
func (r *RedisClient) GetUserPresence(ctx context.Context, userID uuid.UUID) (*models.UserPresence, error) {
	var presence models.UserPresence
	found, err := r.GetJSON(ctx, presenceKey(userID), &presence)
	if err != nil {
		return nil, err
	}
	if !found {
		return &models.UserPresence{
			UserID:   userID,
			Status:   "offline",
			LastSeen: time.Now(),
		}, nil
	}
	return &presence, nil
}

// Pub/Sub

func (r *RedisClient) publish(ctx context.Context, channel string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return r.client.Publish(ctx, channel, data).Err()
}

// PublishChange publishes a row change to every server instance
func (r *RedisClient) PublishChange(ctx context.Context, change models.ChangeEvent) error {
	return r.publish(ctx, changesChannel, change)
}

// SubscribeToChanges subscribes to the change feed
func (r *RedisClient) SubscribeToChanges(ctx context.Context) *redis.PubSub {
	return r.client.Subscribe(ctx, changesChannel)
}

// SubscribeToPresence subscribes to presence updates
func (r *RedisClient) SubscribeToPresence(ctx context.Context) *redis.PubSub {
	return r.client.Subscribe(ctx, presenceChannel)
}

// AllowAction implements a Redis-backed token-bucket limiter per key (user+action).
// Returns true if the action is allowed, false if rate-limited.
func (r *RedisClient) AllowAction(ctx context.Context, userID uuid.UUID, action string, rate int, burst int) (bool, error) {
	key := fmt.Sprintf("rl:%s:%s", action, userID.String())

	now := time.Now().UnixNano() / int64(time.Millisecond)
	res, err := tokenBucket.Run(ctx, r.client, []string{key}, rate, burst, now).Int64()
	if err != nil {
		return false, err
	}
	return res == 1, nil
}

var tokenBucket = redis.NewScript(`
local key = KEYS[1]
local rate = tonumber(ARGV[1])
local burst = tonumber(ARGV[2])
local now = tonumber(ARGV[3])
local vals = redis.call('HMGET', key, 'tokens', 'last')
local tokens = tonumber(vals[1]) or burst
local last = tonumber(vals[2]) or now
local refill = math.min(burst, tokens + (math.max(0, now - last) * rate / 1000))
local allowed = 0
if refill >= 1 then
	refill = refill - 1
	allowed = 1
end
redis.call('HSET', key, 'tokens', refill, 'last', now)
redis.call('PEXPIRE', key, 60000)
return allowed
`)
