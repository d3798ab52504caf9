package authclient

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/MrEthical07/authclient/api"
	"github.com/MrEthical07/authclient/drafts"
	"github.com/MrEthical07/authclient/graphql"
	"github.com/MrEthical07/authclient/intercept"
	"github.com/MrEthical07/authclient/internal/flows"
	"github.com/MrEthical07/authclient/jwt"
	"github.com/MrEthical07/authclient/middleware"
	"github.com/MrEthical07/authclient/refresh"
	"github.com/MrEthical07/authclient/report"
	"github.com/MrEthical07/authclient/session"
)

// Client is the session facade. It owns the session store, the request
// pipeline with its response cache, and the error tracker. It is safe for
// concurrent use; identity operations settle last-writer-wins.
type Client struct {
	cfg    Config
	logger *slog.Logger

	store       *session.Store
	transport   *graphql.HTTPTransport
	gql         *graphql.Client
	interceptor *intercept.Interceptor
	tracker     *report.Tracker
	reporter    report.Reporter
	metrics     *Metrics
	drafts      *drafts.Store

	restored atomic.Bool
	closed   atomic.Bool
}

func (c *Client) deps() flows.Deps {
	return flows.Deps{Executor: c.gql, Store: c.store, Cache: c.gql}
}

func (c *Client) ready() error {
	if c == nil || c.closed.Load() {
		return ErrNotReady
	}
	return nil
}

/*
====================================
SESSION OPERATIONS
====================================
*/

// Login authenticates with username and password. A backend answer with
// success=false is returned as an *OperationError wrapping ErrRejected and
// its message is stored on the session.
func (c *Client) Login(ctx context.Context, username, password string) (*session.User, error) {
	if err := c.ready(); err != nil {
		return nil, err
	}
	user, err := flows.RunLogin(ctx, api.LoginInput{Username: username, Password: password}, c.deps())
	c.metrics.record(loginMetrics, err)
	return user, err
}

// Register creates an account and signs it in. Empty Timezone and LangKey
// are filled with the local zone and "en".
func (c *Client) Register(ctx context.Context, in api.RegisterInput) (*session.User, error) {
	if err := c.ready(); err != nil {
		return nil, err
	}
	if in.Timezone == "" {
		in.Timezone = time.Local.String()
	}
	if in.LangKey == "" {
		in.LangKey = "en"
	}
	user, err := flows.RunRegister(ctx, in, c.deps())
	c.metrics.record(registerMetrics, err)
	return user, err
}

// Logout ends the server session. Local state and the response cache are
// cleared even when the call fails; the failure is returned for logging.
func (c *Client) Logout(ctx context.Context) error {
	if err := c.ready(); err != nil {
		return err
	}
	err := flows.RunLogout(ctx, c.deps())
	c.metrics.record(logoutMetrics, err)
	if err != nil {
		c.logger.Warn("logout call failed, local session cleared", "error", err)
	}
	return err
}

// FetchCurrentUser asks the backend who owns the session cookie. It always
// bypasses the response cache.
func (c *Client) FetchCurrentUser(ctx context.Context) (*session.User, error) {
	if err := c.ready(); err != nil {
		return nil, err
	}
	user, err := flows.RunFetchCurrentUser(ctx, c.deps())
	c.metrics.record(currentUserMetrics, err)
	return user, err
}

// Restore recovers the session from a server-held cookie. It runs
// FetchCurrentUser at most once per Client, and only while the session is
// unauthenticated, idle, and error-free. A failed attempt is not retried.
// attempted reports whether the call was made.
func (c *Client) Restore(ctx context.Context) (attempted bool, err error) {
	if err := c.ready(); err != nil {
		return false, err
	}
	if !flows.ShouldRestore(c.store.Snapshot()) {
		return false, nil
	}
	if !c.restored.CompareAndSwap(false, true) {
		return false, nil
	}
	if _, err := c.FetchCurrentUser(ctx); err != nil {
		c.logger.Debug("session restore failed", "error", err)
		return true, err
	}
	return true, nil
}

// RefreshToken renews the session cookies without touching session state.
// An invalid session is reset by the interceptor observing the exchange.
func (c *Client) RefreshToken(ctx context.Context) (flows.RefreshResult, error) {
	if err := c.ready(); err != nil {
		return flows.RefreshResult{}, err
	}
	res, err := flows.RunRefresh(ctx, c.deps())
	c.metrics.record(refreshMetrics, err)
	return res, err
}

// RequestPasswordReset asks the backend to mail a reset link. A false
// answer is a rejection.
func (c *Client) RequestPasswordReset(ctx context.Context, email string) error {
	if err := c.ready(); err != nil {
		return err
	}
	err := flows.RunRequestPasswordReset(ctx, email, c.deps())
	c.metrics.record(resetRequestMetrics, err)
	return err
}

// ResetPassword sets a new password with a mailed token.
func (c *Client) ResetPassword(ctx context.Context, newPassword, token string) error {
	if err := c.ready(); err != nil {
		return err
	}
	err := flows.RunResetPassword(ctx, newPassword, token, c.deps())
	c.metrics.record(resetConfirmMetrics, err)
	return err
}

// ForceDeauthenticate resets the session and clears the response cache
// without a network call. The interceptor calls it on auth failures.
func (c *Client) ForceDeauthenticate(reason string) {
	if c == nil {
		return
	}
	flows.ForceDeauthenticate(c.deps())
	c.metrics.Inc(MetricForcedDeauth)
	c.logger.Info("session deauthenticated", "reason", reason)
}

/*
====================================
SESSION STATE
====================================
*/

// Session returns a snapshot of the current session.
func (c *Client) Session() session.Session {
	if c == nil {
		return session.Session{}
	}
	return c.store.Snapshot()
}

// Subscribe registers l for every session change and returns a function
// that removes it.
func (c *Client) Subscribe(l session.Listener) func() {
	if c == nil {
		return func() {}
	}
	return c.store.Subscribe(l)
}

// ClearError drops the session's last error message.
func (c *Client) ClearError() {
	if c == nil {
		return
	}
	c.store.Apply(session.ClearError{})
}

// HasRole reports whether the signed-in user carries role.
func (c *Client) HasRole(role string) bool {
	return c.Session().HasRole(role)
}

// IsAdmin reports whether the signed-in user carries the configured admin
// role.
func (c *Client) IsAdmin() bool {
	if c == nil {
		return false
	}
	return c.HasRole(c.cfg.Access.AdminRole)
}

// SessionExpiry decodes the access_token cookie held for the endpoint and
// returns its expiry. It returns jwt.ErrNoToken when no cookie is held.
func (c *Client) SessionExpiry() (time.Time, error) {
	if err := c.ready(); err != nil {
		return time.Time{}, err
	}
	claims, err := jwt.FromJar(c.transport.Client().Jar, c.transport.Endpoint())
	if err != nil {
		return time.Time{}, err
	}
	return claims.Expiry(), nil
}

/*
====================================
AD-HOC OPERATIONS
====================================
*/

// Execute runs op through the pipeline with the configured default fetch
// policy. When the exchange invalidated the session the returned error
// wraps ErrAuthFailure; the session has already been reset by then.
func (c *Client) Execute(ctx context.Context, op *graphql.Operation) (*graphql.Response, error) {
	if err := c.ready(); err != nil {
		return nil, err
	}
	resp, err := c.gql.Execute(ctx, op)
	return resp, classifyErr(resp, err)
}

// Query runs a query with an explicit fetch policy.
func (c *Client) Query(ctx context.Context, op *graphql.Operation, policy graphql.FetchPolicy) (*graphql.Response, error) {
	if err := c.ready(); err != nil {
		return nil, err
	}
	if op != nil && op.Kind != graphql.KindQuery {
		return nil, fmt.Errorf("query %s: operation is a %s", op.Name, op.Kind)
	}
	resp, err := c.gql.ExecuteWithPolicy(ctx, op, policy)
	return resp, classifyErr(resp, err)
}

func classifyErr(resp *graphql.Response, err error) error {
	if intercept.Classify(resp, err) != intercept.ClassAuthFailure {
		var te *graphql.TransportError
		if errors.As(err, &te) {
			return fmt.Errorf("%w: %w", ErrTransport, err)
		}
		return err
	}
	if err == nil {
		return ErrAuthFailure
	}
	return fmt.Errorf("%w: %w", ErrAuthFailure, err)
}

/*
====================================
COLLABORATORS
====================================
*/

// NewRefreshScheduler returns a scheduler calling RefreshToken at the
// configured interval. The caller activates it when an authenticated
// surface mounts and deactivates it on teardown.
func (c *Client) NewRefreshScheduler(opts ...refresh.Option) (*refresh.Scheduler, error) {
	if err := c.ready(); err != nil {
		return nil, err
	}
	if !c.cfg.Refresh.Enabled {
		return nil, ErrRefreshDisabled
	}
	base := []refresh.Option{
		refresh.WithInterval(c.cfg.Refresh.Interval),
		refresh.WithLogger(c.logger),
	}
	return refresh.New(func(ctx context.Context) error {
		_, err := c.RefreshToken(ctx)
		return err
	}, append(base, opts...)...)
}

// Reporter returns the error-reporting collaborator for boundaries and
// callers. Without error tracking it only logs.
func (c *Client) Reporter() report.Reporter {
	if c == nil {
		return logReporter{logger: slog.Default()}
	}
	return c.reporter
}

// Policy returns the access guard destinations from the configuration.
func (c *Client) Policy() middleware.Policy {
	if c == nil {
		return middleware.DefaultPolicy()
	}
	return middleware.Policy{
		AdminRole:        c.cfg.Access.AdminRole,
		SignInPath:       c.cfg.Access.SignInPath,
		UnauthorizedPath: c.cfg.Access.UnauthorizedPath,
		LandingPath:      c.cfg.Access.LandingPath,
	}
}

// Drafts returns the draft store. It fails with ErrDraftsDisabled when the
// Builder was given no Redis client.
func (c *Client) Drafts() (*drafts.Store, error) {
	if err := c.ready(); err != nil {
		return nil, err
	}
	if c.drafts == nil {
		return nil, ErrDraftsDisabled
	}
	return c.drafts, nil
}

// NewAutosaver returns a debounced autosaver for form, owned by the
// signed-in user.
func (c *Client) NewAutosaver(form string) (*drafts.Autosaver, error) {
	store, err := c.Drafts()
	if err != nil {
		return nil, err
	}
	owner := c.currentUserID()
	if owner == "" {
		return nil, fmt.Errorf("autosave %s: %w", form, drafts.ErrInvalidKey)
	}
	return drafts.NewAutosaver(store, drafts.AutosaveConfig{
		Owner:  owner,
		Form:   form,
		Delay:  c.cfg.Drafts.AutosaveDelay,
		TTL:    c.cfg.Drafts.TTL,
		Logger: c.logger,
	}), nil
}

// Config returns a copy of the configuration the Client was built with.
func (c *Client) Config() Config {
	return cloneConfig(c.cfg)
}

// HTTPClient returns the transport's client and its cookie jar.
func (c *Client) HTTPClient() *http.Client {
	return c.transport.Client()
}

// MetricsSnapshot returns a copy of every counter.
func (c *Client) MetricsSnapshot() MetricsSnapshot {
	if c == nil {
		return (*Metrics)(nil).Snapshot()
	}
	return c.metrics.Snapshot()
}

// ReportDropped returns how many error reports were dropped because the
// tracker buffer was full.
func (c *Client) ReportDropped() uint64 {
	if c == nil {
		return 0
	}
	return c.tracker.Dropped()
}

// Flush delivers queued error reports.
func (c *Client) Flush(ctx context.Context) error {
	if c == nil {
		return nil
	}
	return c.tracker.Flush(ctx)
}

// Close flushes and stops the error tracker. The Client rejects further
// operations with ErrNotReady.
func (c *Client) Close() error {
	if c == nil || !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	c.tracker.Close()
	return nil
}

func (c *Client) currentUserID() string {
	snap := c.store.Snapshot()
	if snap.User == nil {
		return ""
	}
	return snap.User.ID
}

var _ intercept.Deauthenticator = (*Client)(nil)

