package graphql

import (
	"context"
	"errors"
)

// ErrNilOperation is returned when Execute is called without an operation.
var ErrNilOperation = errors.New("graphql: nil operation")

// CacheObserver is notified of cache lookups. It is optional.
type CacheObserver interface {
	CacheHit(op *Operation)
	CacheMiss(op *Operation)
}

// Client runs operations through a composed pipeline and owns the response
// cache.
type Client struct {
	handler  HandlerFunc
	cache    *Cache
	policy   FetchPolicy
	observer CacheObserver
}

// ClientOption customises a Client.
type ClientOption func(*Client)

// WithCache sets the response cache. A nil cache disables caching.
func WithCache(c *Cache) ClientOption {
	return func(cl *Client) { cl.cache = c }
}

// WithDefaultPolicy sets the policy used when a query does not name one.
func WithDefaultPolicy(p FetchPolicy) ClientOption {
	return func(cl *Client) { cl.policy = p }
}

// WithCacheObserver registers an observer of cache hits and misses.
func WithCacheObserver(o CacheObserver) ClientOption {
	return func(cl *Client) { cl.observer = o }
}

// NewClient returns a client sending every operation through handler.
func NewClient(handler HandlerFunc, opts ...ClientOption) *Client {
	c := &Client{handler: handler, policy: NetworkOnly}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Execute runs op with the client's default fetch policy.
func (c *Client) Execute(ctx context.Context, op *Operation) (*Response, error) {
	return c.ExecuteWithPolicy(ctx, op, c.policy)
}

// ExecuteWithPolicy runs op. Mutations always reach the backend and are
// never cached. Query data is cached only when the response carried no
// errors.
func (c *Client) ExecuteWithPolicy(ctx context.Context, op *Operation, policy FetchPolicy) (*Response, error) {
	if op == nil {
		return nil, ErrNilOperation
	}
	if ctx == nil {
		ctx = context.Background()
	}

	cacheable := c.cache != nil && op.Kind == KindQuery && policy != NoCache
	var key string
	if cacheable {
		k, err := Key(op)
		if err != nil {
			cacheable = false
		} else {
			key = k
		}
	}

	if cacheable && policy == CacheFirst {
		if data, ok := c.cache.Get(key); ok {
			if c.observer != nil {
				c.observer.CacheHit(op)
			}
			return &Response{Data: data, StatusCode: 200}, nil
		}
		if c.observer != nil {
			c.observer.CacheMiss(op)
		}
	}

	epoch := c.cache.Epoch()
	resp, err := c.handler(ctx, op)
	if err != nil {
		return nil, err
	}
	if cacheable && resp != nil && !resp.HasErrors() {
		c.cache.PutIfEpoch(key, resp.Data, epoch)
	}
	return resp, nil
}

// ResetStore clears the response cache.
func (c *Client) ResetStore() {
	if c == nil {
		return
	}
	c.cache.Clear()
}

// Cache returns the client's cache, which may be nil.
func (c *Client) Cache() *Cache {
	return c.cache
}
