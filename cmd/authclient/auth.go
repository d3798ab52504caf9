package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/MrEthical07/authclient"
	"github.com/MrEthical07/authclient/api"
	"github.com/MrEthical07/authclient/jwt"
	"github.com/MrEthical07/authclient/session"
)

func newLoginCmd(a *app) *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in with username and password",
		Long: `Sign in and store the session cookies.

The password is prompted for when --password is not given.

Examples:
  authclient login --username alice
  echo secret | authclient login --username alice`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if username == "" {
				return errors.New("--username is required")
			}
			pw, err := readSecret("Password", password, cmd.InOrStdin(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			user, err := a.client.Login(cmd.Context(), username, pw)
			authclient.Notify(a.notify, "Login successful", err)
			if err != nil {
				return errReported
			}
			printUser(cmd, user)
			return nil
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "account username")
	cmd.Flags().StringVar(&password, "password", "", "account password (prompted when empty)")
	return cmd
}

func newRegisterCmd(a *app) *cobra.Command {
	var in api.RegisterInput

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and sign in",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if in.Username == "" || in.Email == "" {
				return errors.New("--username and --email are required")
			}
			pw, err := readSecret("Password", in.Password, cmd.InOrStdin(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			in.Password = pw

			user, err := a.client.Register(cmd.Context(), in)
			authclient.Notify(a.notify, "Registration successful", err)
			if err != nil {
				return errReported
			}
			printUser(cmd, user)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&in.Username, "username", "", "account username")
	f.StringVar(&in.Email, "email", "", "account email")
	f.StringVar(&in.Password, "password", "", "account password (prompted when empty)")
	f.StringVar(&in.FirstName, "first-name", "", "first name")
	f.StringVar(&in.LastName, "last-name", "", "last name")
	f.StringVar(&in.Timezone, "timezone", "", "IANA timezone (default: local)")
	f.StringVar(&in.LangKey, "lang", "", "language key (default: en)")
	return cmd
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the session and forget the cookies",
		RunE: func(cmd *cobra.Command, _ []string) error {
			err := a.client.Logout(cmd.Context())
			// local state is cleared either way
			authclient.Notify(a.notify, "Logged out", nil)
			if err != nil {
				a.logger.Warn("backend logout failed", "error", err)
			}
			return nil
		},
	}
}

func newMeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "me",
		Short: "Show the signed-in user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			attempted, err := a.client.Restore(cmd.Context())
			if !attempted && err == nil {
				err = errors.New(a.client.Session().Error)
			}
			if err != nil {
				authclient.Notify(a.notify, "", err)
				return errReported
			}
			printUser(cmd, a.client.Session().User)
			printExpiry(cmd, a.client)
			return nil
		},
	}
}

// errReported marks a failure already shown through the notifier.
var errReported = errors.New("command failed")

func printUser(cmd *cobra.Command, u *session.User) {
	if u == nil {
		return
	}
	roles := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		roles = append(roles, r.Name)
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "user:  %s (%s)\n", u.Username, u.ID)
	fmt.Fprintf(out, "name:  %s %s\n", u.FirstName, u.LastName)
	fmt.Fprintf(out, "email: %s\n", u.Email)
	fmt.Fprintf(out, "roles: %s\n", strings.Join(roles, ", "))
}

func printExpiry(cmd *cobra.Command, c *authclient.Client) {
	exp, err := c.SessionExpiry()
	switch {
	case errors.Is(err, jwt.ErrNoToken):
		return
	case err != nil:
		fmt.Fprintf(cmd.ErrOrStderr(), "session expiry unavailable: %v\n", err)
	case exp.IsZero():
		fmt.Fprintln(cmd.OutOrStdout(), "expires: never")
	default:
		fmt.Fprintf(cmd.OutOrStdout(), "expires: %s (in %s)\n",
			exp.Local().Format(time.RFC3339), time.Until(exp).Round(time.Second))
	}
}
