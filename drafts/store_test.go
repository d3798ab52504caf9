package drafts

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	return NewStore(rdb, "test-draft"), mr
}

func TestSaveLoadDelete(t *testing.T) {
	s, mr := newTestStore(t)
	ctx := context.Background()
	fixed := time.UnixMilli(1_700_000_000_000)
	s.now = func() time.Time { return fixed }

	values := map[string]any{
		"username": "alice",
		"profile":  map[string]any{"firstName": "Alice", "age": 30},
	}
	if err := s.Save(ctx, "u-1", "register", values, time.Hour); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if ttl := mr.TTL("test-draft:u-1:register"); ttl != time.Hour {
		t.Fatalf("expected 1h ttl, got %v", ttl)
	}

	d, err := s.Load(ctx, "u-1", "register")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if d.Values["username"] != "alice" || !d.SavedAt.Equal(fixed) {
		t.Fatalf("unexpected draft %+v", d)
	}
	profile, ok := d.Values["profile"].(map[string]any)
	if !ok || profile["firstName"] != "Alice" {
		t.Fatalf("nested map not decoded as map[string]any: %#v", d.Values["profile"])
	}

	if err := s.Delete(ctx, "u-1", "register"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := s.Load(ctx, "u-1", "register"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := s.Delete(ctx, "u-1", "register"); err != nil {
		t.Fatalf("deleting a missing draft should succeed, got %v", err)
	}
}

func TestDeterministicEncoding(t *testing.T) {
	a, err := encodeRecord(&record{SavedAt: 1, Values: map[string]any{"b": 1, "a": 2, "c": "x"}})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	b, err := encodeRecord(&record{SavedAt: 1, Values: map[string]any{"c": "x", "a": 2, "b": 1}})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if string(a) != string(b) {
		t.Fatal("expected identical bytes for identical drafts")
	}
}

func TestDefaultTTLAndValidation(t *testing.T) {
	s, mr := newTestStore(t)
	ctx := context.Background()

	if err := s.Save(ctx, "u-1", "profile", map[string]any{}, 0); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if ttl := mr.TTL("test-draft:u-1:profile"); ttl != DefaultTTL {
		t.Fatalf("expected default ttl, got %v", ttl)
	}
	if err := s.Save(ctx, " ", "profile", nil, 0); !errors.Is(err, ErrInvalidKey) {
		t.Fatalf("expected ErrInvalidKey, got %v", err)
	}
}

func TestKeySeparatorRejected(t *testing.T) {
	s, mr := newTestStore(t)
	ctx := context.Background()

	if err := s.Save(ctx, "a:b", "c", map[string]any{"x": 1}, 0); !errors.Is(err, ErrInvalidKey) {
		t.Fatalf("expected ErrInvalidKey for owner with ':', got %v", err)
	}
	if err := s.Save(ctx, "a", "b:c", map[string]any{"x": 2}, 0); !errors.Is(err, ErrInvalidKey) {
		t.Fatalf("expected ErrInvalidKey for form with ':', got %v", err)
	}
	if _, err := s.Load(ctx, "a", "b:c"); !errors.Is(err, ErrInvalidKey) {
		t.Fatalf("expected ErrInvalidKey on load, got %v", err)
	}
	if keys := mr.Keys(); len(keys) != 0 {
		t.Fatalf("expected nothing written, got %v", keys)
	}
}

func TestCorruptRecord(t *testing.T) {
	s, mr := newTestStore(t)
	if err := mr.Set("test-draft:u-1:login", "garbage"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, err := s.Load(context.Background(), "u-1", "login"); !errors.Is(err, ErrCorrupt) {
		t.Fatalf("expected ErrCorrupt, got %v", err)
	}
}

func TestRedisUnavailable(t *testing.T) {
	s, mr := newTestStore(t)
	mr.Close()
	if err := s.Save(context.Background(), "u", "f", nil, time.Minute); !errors.Is(err, ErrRedisUnavailable) {
		t.Fatalf("expected ErrRedisUnavailable, got %v", err)
	}
}
