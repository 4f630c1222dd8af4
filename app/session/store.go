package session

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var ErrSessionNotFound = errors.New("session not found")

const keyPrefix = "receipts:admin_session:"

type AdminSession struct {
	AdminID   uint64    `json:"admin_id"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

type redisKV interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// RedisStore keeps admin sessions as opaque tokens with a TTL.
type RedisStore struct {
	client redisKV
	ttl    time.Duration
}

func NewRedisStore(client redisKV, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) Create(ctx context.Context, sess *AdminSession) (string, error) {
	token := strings.ReplaceAll(uuid.NewString(), "-", "") + strings.ReplaceAll(uuid.NewString(), "-", "")
	data, err := json.Marshal(sess)
	if err != nil {
		return "", err
	}
	if err := s.client.Set(ctx, keyPrefix+token, data, s.ttl).Err(); err != nil {
		return "", err
	}
	return token, nil
}

func (s *RedisStore) Get(ctx context.Context, token string) (*AdminSession, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrSessionNotFound
	}

	data, err := s.client.Get(ctx, keyPrefix+token).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}

	sess := &AdminSession{}
	if err := json.Unmarshal(data, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

func (s *RedisStore) Delete(ctx context.Context, token string) error {
	return s.client.Del(ctx, keyPrefix+strings.TrimSpace(token)).Err()
}

func (s *RedisStore) TTL() time.Duration {
	return s.ttl
}
