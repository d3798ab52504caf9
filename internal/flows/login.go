package flows

import (
	"context"

	"github.com/MrEthical07/authclient/api"
	"github.com/MrEthical07/authclient/graphql"
	"github.com/MrEthical07/authclient/session"
)

// RunLogin authenticates with username and password. A payload with
// success=false is a rejection carrying the backend's message.
func RunLogin(ctx context.Context, in api.LoginInput, deps Deps) (*session.User, error) {
	op := mutation(api.OpLogin, api.LoginMutation, map[string]any{"input": in})
	return runAuth(ctx, deps, op, "login", MsgLoginFailed)
}

// RunRegister creates an account and signs it in.
func RunRegister(ctx context.Context, in api.RegisterInput, deps Deps) (*session.User, error) {
	op := mutation(api.OpRegister, api.RegisterMutation, map[string]any{"input": in})
	return runAuth(ctx, deps, op, "register", MsgRegistrationFailed)
}

func runAuth(ctx context.Context, deps Deps, op *graphql.Operation, field, fallback string) (*session.User, error) {
	deps.apply(session.Pending{})

	var payload api.AuthPayload
	found, err := execute(ctx, deps, op, graphql.NetworkOnly, field, &payload)
	if err != nil {
		return nil, reject(deps, err)
	}
	if !found || !payload.Success {
		return nil, reject(deps, rejected(op.Name, payload.Message, fallback))
	}
	if payload.User == nil {
		return nil, reject(deps, rejected(op.Name, "", MsgUserNotFound))
	}

	deps.apply(session.Fulfilled{User: *payload.User})
	return payload.User.Clone(), nil
}

func reject(deps Deps, err error) error {
	deps.apply(session.Rejected{Message: err.Error()})
	return err
}
