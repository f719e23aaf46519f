package auth

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisSessionPrefix = "stagelink:session:"

// RedisSessionStore keeps sessions in Redis with a TTL equal to the idle
// window, so idle expiry is enforced by Redis itself. Touch refreshes the
// TTL and cannot recreate a deleted key, which keeps a racing Invalidate
// authoritative.
type RedisSessionStore struct {
	client     redis.UniversalClient
	idleWindow time.Duration
}

// NewRedisSessionStore wraps an existing Redis client. The idle window
// must match the window configured on the Registry using this store.
func NewRedisSessionStore(client redis.UniversalClient, idleWindow time.Duration) (*RedisSessionStore, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client required")
	}
	if idleWindow <= 0 {
		idleWindow = DefaultIdleWindow
	}
	return &RedisSessionStore{client: client, idleWindow: idleWindow}, nil
}

func redisSessionKey(token string) string {
	return redisSessionPrefix + token
}

// Save stores the session with the idle-window TTL.
func (s *RedisSessionStore) Save(record SessionRecord) error {
	ctx := context.Background()
	return s.client.Set(ctx, redisSessionKey(record.Token), strconv.Itoa(record.UserID), s.idleWindow).Err()
}

// Get fetches the session, deriving last activity from the remaining TTL.
func (s *RedisSessionStore) Get(token string) (SessionRecord, bool, error) {
	ctx := context.Background()
	pipe := s.client.Pipeline()
	valueCmd := pipe.Get(ctx, redisSessionKey(token))
	ttlCmd := pipe.PTTL(ctx, redisSessionKey(token))
	if _, err := pipe.Exec(ctx); err != nil {
		if err == redis.Nil {
			return SessionRecord{}, false, nil
		}
		return SessionRecord{}, false, err
	}
	userID, err := strconv.Atoi(valueCmd.Val())
	if err != nil {
		return SessionRecord{}, false, fmt.Errorf("decode session user id: %w", err)
	}
	record := SessionRecord{Token: token, UserID: userID, LastActivity: time.Now()}
	if ttl := ttlCmd.Val(); ttl > 0 {
		record.LastActivity = time.Now().Add(ttl - s.idleWindow)
	}
	return record, true, nil
}

// Touch refreshes the TTL for a live session. EXPIRE on a missing key is a
// no-op, so an invalidated session stays gone.
func (s *RedisSessionStore) Touch(token string, _, _ time.Time) error {
	return s.client.Expire(context.Background(), redisSessionKey(token), s.idleWindow).Err()
}

// Delete removes the session key.
func (s *RedisSessionStore) Delete(token string) error {
	return s.client.Del(context.Background(), redisSessionKey(token)).Err()
}

// PurgeIdle is a no-op; Redis evicts idle sessions through key TTLs.
func (s *RedisSessionStore) PurgeIdle(time.Time) error {
	return nil
}

// Ping verifies the Redis connection.
func (s *RedisSessionStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
