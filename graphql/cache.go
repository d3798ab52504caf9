package graphql

import (
	"encoding/hex"
	"encoding/json"
	"sync"

	"github.com/zeebo/blake3"
)

// FetchPolicy selects how [Client.Query] uses the cache.
type FetchPolicy uint8

const (
	// NetworkOnly always asks the backend and stores the result.
	NetworkOnly FetchPolicy = iota
	// CacheFirst answers from the cache when possible.
	CacheFirst
	// NoCache asks the backend and stores nothing.
	NoCache
)

// ParseFetchPolicy maps "network-only", "cache-first", and "no-cache".
func ParseFetchPolicy(s string) (FetchPolicy, bool) {
	switch s {
	case "network-only", "":
		return NetworkOnly, true
	case "cache-first":
		return CacheFirst, true
	case "no-cache":
		return NoCache, true
	default:
		return NetworkOnly, false
	}
}

func (p FetchPolicy) String() string {
	switch p {
	case CacheFirst:
		return "cache-first"
	case NoCache:
		return "no-cache"
	default:
		return "network-only"
	}
}

// Cache stores successful query data keyed by operation name, document and
// variables.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]json.RawMessage
	epoch   uint64
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[string]json.RawMessage)}
}

// Key derives the cache key of op. Variables are serialised with sorted map
// keys, so logically equal operations share a key.
func Key(op *Operation) (string, error) {
	vars, err := json.Marshal(op.Variables)
	if err != nil {
		return "", err
	}

	h := blake3.New()
	_, _ = h.Write([]byte(op.Name))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte(op.Query))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write(vars)
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Get returns a copy of the cached data for key.
func (c *Cache) Get(key string) (json.RawMessage, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	data, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	return append(json.RawMessage(nil), data...), true
}

// PutIfEpoch stores a copy of data under key unless the cache was cleared
// since epoch was read. It reports whether data was stored.
func (c *Cache) PutIfEpoch(key string, data json.RawMessage, epoch uint64) bool {
	if c == nil || len(data) == 0 {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.epoch != epoch {
		return false
	}
	c.entries[key] = append(json.RawMessage(nil), data...)
	return true
}

// Epoch returns the number of times the cache has been cleared.
func (c *Cache) Epoch() uint64 {
	if c == nil {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.epoch
}

// Clear drops every entry. Writes for exchanges started before Clear are
// discarded by PutIfEpoch.
func (c *Cache) Clear() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.entries = make(map[string]json.RawMessage)
	c.epoch++
	c.mu.Unlock()
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	if c == nil {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
