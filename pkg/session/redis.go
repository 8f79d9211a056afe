package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps sessions in Redis with the session's remaining lifetime
// as the key TTL, so expired sessions disappear on their own.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore wraps client. Keys are stored as prefix+"session:"+id.
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) key(id string) string {
	return s.prefix + "session:" + id
}

func (s *RedisStore) Get(ctx context.Context, sessionID string) (*Session, error) {
	if err := ValidateID(sessionID); err != nil {
		return nil, err
	}
	data, err := s.client.Get(ctx, s.key(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("parse session: %w", err)
	}
	if sess.IsExpired() {
		return nil, nil
	}
	return &sess, nil
}

func (s *RedisStore) Set(ctx context.Context, sess *Session) error {
	if err := ValidateID(sess.ID); err != nil {
		return err
	}
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	return s.client.Set(ctx, s.key(sess.ID), data, sess.TTL()).Err()
}

func (s *RedisStore) Delete(ctx context.Context, sessionID string) error {
	return s.client.Del(ctx, s.key(sessionID)).Err()
}

// Cleanup is a no-op: Redis expires keys itself.
func (s *RedisStore) Cleanup(ctx context.Context) error { return nil }

var _ Store = (*RedisStore)(nil)
