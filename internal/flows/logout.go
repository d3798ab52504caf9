package flows

import (
	"context"

	"github.com/MrEthical07/authclient/api"
	"github.com/MrEthical07/authclient/graphql"
	"github.com/MrEthical07/authclient/session"
)

// RunLogout ends the server session. It is best-effort: local state is
// reset and the response cache cleared even when the call fails, in which
// case the failure is still returned for logging.
func RunLogout(ctx context.Context, deps Deps) error {
	op := mutation(api.OpLogout, api.LogoutMutation, nil)

	var ok bool
	_, err := execute(ctx, deps, op, graphql.NetworkOnly, "logout", &ok)

	deps.apply(session.LoggedOut{})
	if deps.Cache != nil {
		deps.Cache.ResetStore()
	}
	return err
}

// ForceDeauthenticate applies the local effect of a logout without any
// network call.
func ForceDeauthenticate(deps Deps) {
	deps.apply(session.Deauthenticated{})
	if deps.Cache != nil {
		deps.Cache.ResetStore()
	}
}
