package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

type memoryKV struct {
	items map[string]string
	ttls  map[string]time.Duration
}

func newMemoryKV() *memoryKV {
	return &memoryKV{items: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (m *memoryKV) Set(_ context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	switch v := value.(type) {
	case []byte:
		m.items[key] = string(v)
	case string:
		m.items[key] = v
	}
	m.ttls[key] = expiration
	return redis.NewStatusResult("OK", nil)
}

func (m *memoryKV) Get(_ context.Context, key string) *redis.StringCmd {
	v, ok := m.items[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (m *memoryKV) Del(_ context.Context, keys ...string) *redis.IntCmd {
	var n int64
	for _, k := range keys {
		if _, ok := m.items[k]; ok {
			delete(m.items, k)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func TestRedisStoreLifecycle(t *testing.T) {
	kv := newMemoryKV()
	store := NewRedisStore(kv, time.Hour)
	ctx := context.Background()

	token, err := store.Create(ctx, &AdminSession{AdminID: 1, Username: "ops", Role: "admin", CreatedAt: time.Now().UTC()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(token) != 64 {
		t.Fatalf("expected 64 char token, got %d", len(token))
	}
	if kv.ttls[keyPrefix+token] != time.Hour {
		t.Fatalf("expected ttl to be applied")
	}

	sess, err := store.Get(ctx, token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sess.AdminID != 1 || sess.Username != "ops" {
		t.Fatalf("unexpected session %+v", sess)
	}

	if err := store.Delete(ctx, token); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := store.Get(ctx, token); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestRedisStoreEmptyToken(t *testing.T) {
	store := NewRedisStore(newMemoryKV(), 0)
	if store.TTL() != 12*time.Hour {
		t.Fatalf("expected default ttl")
	}
	if _, err := store.Get(context.Background(), " "); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}
