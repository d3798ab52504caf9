package main

import (
	"fmt"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/MrEthical07/authclient/refresh"
	"github.com/MrEthical07/authclient/session"
)

func newWatchCmd(a *app) *cobra.Command {
	var interval time.Duration

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Keep the session refreshed until interrupted",
		Long: `Restore the session from the stored cookies, then refresh it on a fixed
interval until Ctrl+C. Every session change is printed. A failed refresh
stops the timer; an invalidated session ends the command.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			ended := make(chan struct{})
			var endOnce sync.Once
			unsubscribe := a.client.Subscribe(func(t session.Transition, s session.Session) {
				fmt.Fprintf(out, "%s session: %s\n", time.Now().Format(time.TimeOnly), describe(t, s))
				if _, reset := t.(session.Deauthenticated); reset {
					endOnce.Do(func() { close(ended) })
				}
			})
			defer unsubscribe()

			if _, err := a.client.Restore(ctx); err != nil {
				a.notify.Error("not signed in: " + err.Error())
				return errReported
			}

			var opts []refresh.Option
			if interval > 0 {
				opts = append(opts, refresh.WithInterval(interval))
			}
			opts = append(opts, refresh.WithObserver(func(err error) {
				if err != nil {
					a.notify.Error("refresh failed: " + err.Error())
					return
				}
				fmt.Fprintf(out, "%s refreshed\n", time.Now().Format(time.TimeOnly))
			}))

			scheduler, err := a.client.NewRefreshScheduler(opts...)
			if err != nil {
				return err
			}
			scheduler.Activate(ctx)
			defer scheduler.Deactivate()
			fmt.Fprintf(out, "refreshing every %s\n", scheduler.Interval())

			select {
			case <-ctx.Done():
				return nil
			case <-ended:
				return errReported
			}
		},
	}
	cmd.Flags().DurationVar(&interval, "interval", 0, "refresh interval (default from config)")
	return cmd
}

func describe(t session.Transition, s session.Session) string {
	switch t.(type) {
	case session.Pending:
		return "loading"
	case session.Fulfilled:
		return "signed in as " + s.User.Username
	case session.Rejected:
		return "error: " + s.Error
	case session.LoggedOut:
		return "logged out"
	case session.Deauthenticated:
		return "session expired"
	case session.ClearError:
		return "error cleared"
	default:
		return fmt.Sprintf("%T", t)
	}
}
