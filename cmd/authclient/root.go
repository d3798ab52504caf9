package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/MrEthical07/authclient"
	"github.com/MrEthical07/authclient/internal/logging"
)

// app carries the state shared by every subcommand of one invocation.
type app struct {
	lookup func(string) (string, bool)

	configPath string
	endpoint   string
	logLevel   string
	logFormat  string
	cookieFile string

	logger *slog.Logger
	jar    *cookieStore
	client *authclient.Client
	notify authclient.Notifier
}

func newRootCmd(lookup func(string) (string, bool)) *cobra.Command {
	a := &app{lookup: lookup}

	root := &cobra.Command{
		Use:   "authclient",
		Short: "Session client for the GraphQL auth backend",
		Long: `authclient signs in against the GraphQL auth backend and keeps the
session cookies between invocations in a cookie file.

Configuration is read from --config (YAML), then FE_* environment
variables, then flags.

Examples:
  authclient login --username alice
  authclient me
  authclient watch
  authclient reset-password request --email alice@example.com
  authclient logout`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			return a.teardown()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "YAML config file")
	flags.StringVar(&a.endpoint, "endpoint", "", "GraphQL endpoint (overrides config and FE_GRAPHQL_ENDPOINT)")
	flags.StringVar(&a.logLevel, "log-level", "", "log level: "+logging.LevelNames())
	flags.StringVar(&a.logFormat, "log-format", "", "log format: text or json")
	flags.StringVar(&a.cookieFile, "cookie-file", defaultCookieFile(), "file holding session cookies between runs")

	root.AddCommand(
		newLoginCmd(a),
		newRegisterCmd(a),
		newLogoutCmd(a),
		newMeCmd(a),
		newWatchCmd(a),
		newResetPasswordCmd(a),
	)
	return root
}

func defaultCookieFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".authclient-cookies.json"
	}
	return filepath.Join(dir, "authclient", "cookies.json")
}

func (a *app) loadConfig() (authclient.Config, error) {
	cfg := authclient.DefaultConfig()
	if a.configPath != "" {
		loaded, err := authclient.LoadConfig(a.configPath)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}
	if err := cfg.ApplyEnv(a.lookup); err != nil {
		return cfg, err
	}
	if a.endpoint != "" {
		cfg.Endpoint = a.endpoint
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	if a.logFormat != "" {
		cfg.Log.Format = a.logFormat
	}
	return cfg, nil
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}

	a.logger, err = logging.New(logging.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cmd.ErrOrStderr(),
	})
	if err != nil {
		return fmt.Errorf("configure logging: %w", err)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return fmt.Errorf("create cookie jar: %w", err)
	}
	a.jar = &cookieStore{path: a.cookieFile, endpoint: cfg.Endpoint, jar: jar}
	if err := a.jar.load(); err != nil {
		return err
	}

	a.client, err = authclient.New().
		WithConfig(cfg).
		WithHTTPClient(&http.Client{Jar: jar, Timeout: transportTimeout(cfg)}).
		WithLogger(a.logger).
		Build()
	if err != nil {
		return err
	}
	a.notify = terminalNotifier{out: cmd.OutOrStdout(), errOut: cmd.ErrOrStderr()}
	return nil
}

func transportTimeout(cfg authclient.Config) time.Duration {
	if cfg.Transport.Timeout > 0 {
		return cfg.Transport.Timeout
	}
	return 30 * time.Second
}

func (a *app) teardown() error {
	if a.client == nil {
		return nil
	}
	defer a.client.Close()
	return a.jar.save()
}
