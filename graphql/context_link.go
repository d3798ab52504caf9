package graphql

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// RequestIDHeader carries a per-request correlation id.
const RequestIDHeader = "X-Request-ID"

type headerContextKey struct{}

// WithHeader returns a context whose operations carry key: value. Values
// added this way are applied by [ContextLink].
func WithHeader(ctx context.Context, key, value string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	prev, _ := ctx.Value(headerContextKey{}).(http.Header)
	next := prev.Clone()
	if next == nil {
		next = http.Header{}
	}
	next.Set(key, value)
	return context.WithValue(ctx, headerContextKey{}, next)
}

func headersFromContext(ctx context.Context) http.Header {
	if ctx == nil {
		return nil
	}
	h, _ := ctx.Value(headerContextKey{}).(http.Header)
	return h
}

// ContextLink is the auth-context stage. It merges static headers and
// context headers into the operation and stamps a request id. Existing
// headers on the operation win over static ones.
//
// No credential is attached: the transport's cookie jar supplies it.
func ContextLink(static http.Header) Link {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, op *Operation) (*Response, error) {
			if op.Header == nil {
				op.Header = http.Header{}
			}
			for k, vs := range static {
				if _, ok := op.Header[k]; ok {
					continue
				}
				op.Header[k] = append([]string(nil), vs...)
			}
			for k, vs := range headersFromContext(ctx) {
				op.Header[k] = append([]string(nil), vs...)
			}
			if op.Header.Get(RequestIDHeader) == "" {
				op.Header.Set(RequestIDHeader, uuid.NewString())
			}
			return next(ctx, op)
		}
	}
}
