package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/MrEthical07/authclient"
)

func newResetPasswordCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reset-password",
		Short: "Request or confirm a password reset",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	var email string
	request := &cobra.Command{
		Use:   "request",
		Short: "Mail a reset link to an account email",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if email == "" {
				return errors.New("--email is required")
			}
			err := a.client.RequestPasswordReset(cmd.Context(), email)
			authclient.Notify(a.notify, "Password reset email sent", err)
			if err != nil {
				return errReported
			}
			return nil
		},
	}
	request.Flags().StringVar(&email, "email", "", "account email")

	var token, password string
	confirm := &cobra.Command{
		Use:   "confirm",
		Short: "Set a new password with a mailed token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if token == "" {
				return errors.New("--token is required")
			}
			pw, err := readSecret("New password", password, cmd.InOrStdin(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			err = a.client.ResetPassword(cmd.Context(), pw, token)
			authclient.Notify(a.notify, "Password has been reset", err)
			if err != nil {
				return errReported
			}
			return nil
		},
	}
	confirm.Flags().StringVar(&token, "token", "", "reset token from the email")
	confirm.Flags().StringVar(&password, "password", "", "new password (prompted when empty)")

	cmd.AddCommand(request, confirm)
	return cmd
}
