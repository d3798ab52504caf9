package flows

import (
	"context"

	"github.com/MrEthical07/authclient/graphql"
	"github.com/MrEthical07/authclient/session"
)

// Executor runs one GraphQL operation. *graphql.Client satisfies it.
type Executor interface {
	ExecuteWithPolicy(ctx context.Context, op *graphql.Operation, policy graphql.FetchPolicy) (*graphql.Response, error)
}

// SessionStore accepts session transitions. *session.Store satisfies it.
type SessionStore interface {
	Apply(session.Transition) bool
}

// CacheResetter clears cached responses. *graphql.Client satisfies it.
type CacheResetter interface {
	ResetStore()
}

// Deps groups flow dependencies. The root client builds this once and
// passes it to every flow.
type Deps struct {
	Executor Executor
	Store    SessionStore
	Cache    CacheResetter
}

func (d Deps) apply(t session.Transition) {
	if d.Store != nil {
		d.Store.Apply(t)
	}
}
