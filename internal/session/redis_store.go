package session

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	apperrors "wedding-guest-list/pkg/app_errors"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) Store {
	return &RedisStore{
		client: client,
		ttl:    ttl,
	}
}

// session hash key
func (s *RedisStore) sessionKey(token string) string {
	return fmt.Sprintf("session:%s", token)
}

// pending flash list key
func (s *RedisStore) flashKey(token string) string {
	return fmt.Sprintf("session:%s:flash", token)
}

func (s *RedisStore) Create(ctx context.Context, username string) (*Session, error) {
	sess := &Session{
		Token:     uuid.New().String(),
		Username:  username,
		ExpiresAt: time.Now().Add(s.ttl).UTC(),
	}
	key := s.sessionKey(sess.Token)

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, map[string]interface{}{
			"username":   sess.Username,
			"expires_at": sess.ExpiresAt.Unix(),
		})
		pipe.Expire(ctx, key, s.ttl)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return sess, nil
}

func (s *RedisStore) Get(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, apperrors.ErrSessionNotFound
	}
	result, err := s.client.HGetAll(ctx, s.sessionKey(token)).Result()
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	// HGetAll on a missing key returns an empty map
	if len(result) == 0 {
		return nil, apperrors.ErrSessionNotFound
	}

	var expiresAt time.Time
	if v, ok := result["expires_at"]; ok {
		unix, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid expires_at: %v", err)
		}
		expiresAt = time.Unix(unix, 0).UTC()
	}

	return &Session{
		Token:     token,
		Username:  result["username"],
		ExpiresAt: expiresAt,
	}, nil
}

func (s *RedisStore) Delete(ctx context.Context, token string) error {
	return s.client.Del(ctx, s.sessionKey(token), s.flashKey(token)).Err()
}

func (s *RedisStore) AddFlash(ctx context.Context, token string, flash Flash) error {
	data, err := json.Marshal(flash)
	if err != nil {
		return fmt.Errorf("marshal flash: %w", err)
	}

	// push only while the session hash exists, so no flash list outlives it
	script := `
		local session_key = KEYS[1]
		local flash_key = KEYS[2]

		if redis.call('EXISTS', session_key) == 0 then
			return 0
		end

		redis.call('RPUSH', flash_key, ARGV[1])
		redis.call('PEXPIRE', flash_key, ARGV[2])
		return 1
	`

	added, err := s.client.Eval(ctx, script,
		[]string{s.sessionKey(token), s.flashKey(token)},
		string(data), s.ttl.Milliseconds(),
	).Int()
	if err != nil {
		return fmt.Errorf("add flash: %w", err)
	}
	if added == 0 {
		return apperrors.ErrSessionNotFound
	}
	return nil
}

func (s *RedisStore) PopFlashes(ctx context.Context, token string) ([]Flash, error) {
	key := s.flashKey(token)

	// MULTI/EXEC so a flash pushed concurrently is either returned or kept
	var lrange *redis.StringSliceCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		lrange = pipe.LRange(ctx, key, 0, -1)
		pipe.Del(ctx, key)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("pop flashes: %w", err)
	}

	flashes := make([]Flash, 0, len(lrange.Val()))
	for _, raw := range lrange.Val() {
		var flash Flash
		if err := json.Unmarshal([]byte(raw), &flash); err != nil {
			return nil, fmt.Errorf("unmarshal flash: %w", err)
		}
		flashes = append(flashes, flash)
	}
	return flashes, nil
}
