package flows

import (
	"context"

	"github.com/MrEthical07/authclient/api"
	"github.com/MrEthical07/authclient/graphql"
	"github.com/MrEthical07/authclient/session"
)

// RunFetchCurrentUser asks the backend who owns the current session cookie.
// It always bypasses the response cache. A null result is a rejection.
func RunFetchCurrentUser(ctx context.Context, deps Deps) (*session.User, error) {
	deps.apply(session.Pending{})

	op := &graphql.Operation{Name: api.OpMe, Kind: graphql.KindQuery, Query: api.MeQuery}

	var user session.User
	found, err := execute(ctx, deps, op, graphql.NetworkOnly, "me", &user)
	if err != nil {
		return nil, reject(deps, err)
	}
	if !found {
		return nil, reject(deps, rejected(op.Name, "", MsgUserNotFound))
	}

	deps.apply(session.Fulfilled{User: user})
	return user.Clone(), nil
}

// ShouldRestore reports whether a freshly mounted surface must try to
// recover the session from a server-held cookie.
func ShouldRestore(s session.Session) bool {
	return !s.IsAuthenticated && !s.Loading && s.Error == ""
}
