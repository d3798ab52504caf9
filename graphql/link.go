package graphql

import "context"

// HandlerFunc executes an operation. A non-nil error means the exchange
// failed at the transport level; GraphQL errors are carried in the Response.
type HandlerFunc func(ctx context.Context, op *Operation) (*Response, error)

// Link is one pipeline stage. It receives the next stage and returns a
// handler that may act before and after calling it.
type Link func(next HandlerFunc) HandlerFunc

// Compose wraps transport with links. links[0] is the outermost stage and
// sees the final outcome of every inner stage.
func Compose(transport HandlerFunc, links ...Link) HandlerFunc {
	h := transport
	for i := len(links) - 1; i >= 0; i-- {
		if links[i] == nil {
			continue
		}
		h = links[i](h)
	}
	return h
}
