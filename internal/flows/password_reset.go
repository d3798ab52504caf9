package flows

import (
	"context"

	"github.com/MrEthical07/authclient/api"
	"github.com/MrEthical07/authclient/graphql"
)

// RunRequestPasswordReset asks the backend to mail a reset link to email.
// It does not touch session state.
func RunRequestPasswordReset(ctx context.Context, email string, deps Deps) error {
	op := mutation(api.OpRequestPasswordReset, api.RequestPasswordResetMutation, map[string]any{"email": email})
	return runBool(ctx, deps, op, "requestPasswordReset", MsgResetRequestFailed)
}

// RunResetPassword sets newPassword using a mailed reset token.
func RunResetPassword(ctx context.Context, newPassword, token string, deps Deps) error {
	op := mutation(api.OpResetPassword, api.ResetPasswordMutation, map[string]any{
		"newPassword": newPassword,
		"token":       token,
	})
	return runBool(ctx, deps, op, "resetPassword", MsgResetPasswordFailed)
}

func runBool(ctx context.Context, deps Deps, op *graphql.Operation, field, fallback string) error {
	var ok bool
	if _, err := execute(ctx, deps, op, graphql.NetworkOnly, field, &ok); err != nil {
		return err
	}
	if !ok {
		return rejected(op.Name, "", fallback)
	}
	return nil
}
