package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ConnectRedis initializes and returns a Redis client instance.
func ConnectRedis(addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := rdb.Ping(ctx).Result()
	if err != nil {
		// Close the client if ping fails
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	fmt.Println("Successfully connected to Redis!")
	return rdb, nil
}

// DisconnectRedis closes the Redis client connection.
func DisconnectRedis(client *redis.Client) error {
	if client == nil {
		return nil
	}
	if err := client.Close(); err != nil {
		return fmt.Errorf("failed to close Redis connection: %w", err)
	}
	fmt.Println("Redis connection closed.")
	return nil
}

// AdLock is a best-effort advisory lock keyed by ad ID, used to serialize
// booking creation against the same ad so the overlap check and insert act as
// one unit. SETNX with a TTL; the TTL bounds how long a crashed holder can
// block other bookings.
type AdLock struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewAdLock creates an AdLock with the given hold TTL.
func NewAdLock(rdb *redis.Client, ttl time.Duration) *AdLock {
	return &AdLock{rdb: rdb, ttl: ttl}
}

func (l *AdLock) key(adID string) string {
	return "booking:lock:" + adID
}

// releaseScript deletes the lock key only when it still holds the caller's
// token, so a holder that outlived the TTL cannot drop the next holder's lock.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// Acquire tries to take the lock for adID, retrying briefly before giving up.
// On success it returns the token that must be passed back to Release.
func (l *AdLock) Acquire(ctx context.Context, adID string) (string, error) {
	token := uuid.NewString()
	deadline := time.Now().Add(l.ttl)
	for {
		ok, err := l.rdb.SetNX(ctx, l.key(adID), token, l.ttl).Result()
		if err != nil {
			return "", fmt.Errorf("failed to acquire booking lock for ad %s: %w", adID, err)
		}
		if ok {
			return token, nil
		}
		if time.Now().After(deadline) {
			return "", fmt.Errorf("timed out acquiring booking lock for ad %s", adID)
		}
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(50 * time.Millisecond):
		}
	}
}

// Release drops the lock for adID if it is still held under token. A lock that
// expired and was re-acquired by someone else is left alone.
func (l *AdLock) Release(ctx context.Context, adID, token string) {
	_ = releaseScript.Run(ctx, l.rdb, []string{l.key(adID)}, token).Err()
}
