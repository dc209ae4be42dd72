package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps one JSON blob per session under a TTL so idle
// conversations expire on their own.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(redisURL string, ttl time.Duration) (*RedisStore, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return &RedisStore{client: client, ttl: ttl}, nil
}

// NewRedisStoreWithClient wraps an existing client, used by tests against
// a fake server.
func NewRedisStoreWithClient(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func redisSessionKey(sessionID string) string {
	return "addy:session:" + sessionID
}

func (r *RedisStore) Load(ctx context.Context, sessionID string) (*Session, error) {
	data, err := r.client.Get(ctx, redisSessionKey(sessionID)).Result()
	if err == redis.Nil {
		now := time.Now()
		return &Session{
			SessionID:    sessionID,
			Turns:        []Turn{},
			StartedAt:    now,
			LastActivity: now,
		}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	var session Session
	if err := json.Unmarshal([]byte(data), &session); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &session, nil
}

func (r *RedisStore) AppendTurn(ctx context.Context, sessionID string, turn Turn) error {
	session, err := r.Load(ctx, sessionID)
	if err != nil {
		return err
	}

	session.Turns = append(session.Turns, turn)
	session.LastActivity = time.Now()
	if len(session.Turns) == 1 {
		session.StartedAt = turn.Timestamp
	}

	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	// Set refreshes the TTL on every turn
	if err := r.client.Set(ctx, redisSessionKey(sessionID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (r *RedisStore) Clear(ctx context.Context, sessionID string) error {
	if err := r.client.Del(ctx, redisSessionKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}

func (r *RedisStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
