package drafts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultTTL is used when Save is given a non-positive TTL.
const DefaultTTL = 7 * 24 * time.Hour

var (
	ErrNotFound         = errors.New("draft not found")
	ErrCorrupt          = errors.New("draft record corrupt")
	ErrRedisUnavailable = errors.New("draft redis unavailable")
	ErrInvalidKey       = errors.New("draft owner and form are required and must not contain ':'")
)

// Draft is a saved set of form values.
type Draft struct {
	Values  map[string]any
	SavedAt time.Time
}

// Store reads and writes drafts in Redis.
type Store struct {
	redis  redis.UniversalClient
	prefix string
	now    func() time.Time
}

// NewStore returns a store using prefix for every key ("draft" when empty).
func NewStore(redisClient redis.UniversalClient, prefix string) *Store {
	if prefix == "" {
		prefix = "draft"
	}
	return &Store{
		redis:  redisClient,
		prefix: prefix,
		now:    time.Now,
	}
}

func (s *Store) key(owner, form string) (string, error) {
	owner, form = strings.TrimSpace(owner), strings.TrimSpace(form)
	if owner == "" || form == "" || strings.Contains(owner, ":") || strings.Contains(form, ":") {
		return "", ErrInvalidKey
	}
	return s.prefix + ":" + owner + ":" + form, nil
}

// Save replaces the draft for owner and form.
func (s *Store) Save(ctx context.Context, owner, form string, values map[string]any, ttl time.Duration) error {
	key, err := s.key(owner, form)
	if err != nil {
		return err
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	encoded, err := encodeRecord(&record{SavedAt: s.now().UnixMilli(), Values: values})
	if err != nil {
		return fmt.Errorf("encode draft: %w", err)
	}

	if err := s.redis.Set(ctx, key, encoded, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// Load returns the draft for owner and form.
func (s *Store) Load(ctx context.Context, owner, form string) (*Draft, error) {
	key, err := s.key(owner, form)
	if err != nil {
		return nil, err
	}

	data, err := s.redis.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	r, err := decodeRecord(data)
	if err != nil {
		return nil, err
	}
	values := r.Values
	if values == nil {
		values = map[string]any{}
	}
	return &Draft{Values: values, SavedAt: time.UnixMilli(r.SavedAt)}, nil
}

// Delete removes the draft. Deleting a missing draft is not an error.
func (s *Store) Delete(ctx context.Context, owner, form string) error {
	key, err := s.key(owner, form)
	if err != nil {
		return err
	}
	if err := s.redis.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}
