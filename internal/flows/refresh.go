package flows

import (
	"context"

	"github.com/MrEthical07/authclient/api"
	"github.com/MrEthical07/authclient/graphql"
)

// RefreshResult is the outcome of a successful refresh.
type RefreshResult struct {
	Message string
	UserID  string
}

// RunRefresh renews the session cookies. It never touches session state:
// an invalid session is handled by the error interceptor observing the same
// exchange. success=false is a rejection.
func RunRefresh(ctx context.Context, deps Deps) (RefreshResult, error) {
	op := mutation(api.OpRefreshToken, api.RefreshTokenMutation, nil)

	var payload api.AuthPayload
	found, err := execute(ctx, deps, op, graphql.NetworkOnly, "refreshToken", &payload)
	if err != nil {
		return RefreshResult{}, err
	}
	if !found || !payload.Success {
		return RefreshResult{}, rejected(op.Name, payload.Message, MsgRefreshFailed)
	}

	res := RefreshResult{Message: payload.Message}
	if payload.User != nil {
		res.UserID = payload.User.ID
	}
	return res, nil
}
