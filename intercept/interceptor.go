package intercept

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/MrEthical07/authclient/graphql"
	"github.com/MrEthical07/authclient/report"
)

const (
	// FeatureGraphQL tags reports of structured GraphQL errors.
	FeatureGraphQL = "graphql"
	// FeatureNetwork tags reports of transport failures.
	FeatureNetwork = "graphql-network"
)

// Deauthenticator performs the local effect of a logout without any network
// call.
type Deauthenticator interface {
	ForceDeauthenticate(reason string)
}

// DeauthenticatorFunc adapts a function to Deauthenticator.
type DeauthenticatorFunc func(reason string)

// ForceDeauthenticate implements Deauthenticator.
func (f DeauthenticatorFunc) ForceDeauthenticate(reason string) { f(reason) }

// Interceptor observes every exchange that passes through its Link.
type Interceptor struct {
	deauth   Deauthenticator
	reporter report.Reporter
	logger   *slog.Logger
}

// Option customises an Interceptor.
type Option func(*Interceptor)

// WithLogger sets the logger for error and deauthentication events.
func WithLogger(l *slog.Logger) Option {
	return func(i *Interceptor) {
		if l != nil {
			i.logger = l
		}
	}
}

// New returns an interceptor. Either collaborator may be nil.
func New(deauth Deauthenticator, reporter report.Reporter, opts ...Option) *Interceptor {
	i := &Interceptor{
		deauth:   deauth,
		reporter: reporter,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Link returns the pipeline stage. It must be composed outermost.
func (i *Interceptor) Link() graphql.Link {
	return func(next graphql.HandlerFunc) graphql.HandlerFunc {
		return func(ctx context.Context, op *graphql.Operation) (*graphql.Response, error) {
			resp, err := next(ctx, op)
			i.Observe(op, resp, err)
			return resp, err
		}
	}
}

// Observe reports the errors of one exchange and deauthenticates at most
// once if any of them is an auth failure. It never panics.
func (i *Interceptor) Observe(op *graphql.Operation, resp *graphql.Response, err error) (class Class) {
	if i == nil {
		return Classify(resp, err)
	}
	defer func() {
		if r := recover(); r != nil {
			i.logger.Error("intercept: observer panic", "panic", fmt.Sprint(r))
		}
	}()

	class = Classify(resp, err)
	if class == ClassOK {
		return class
	}

	name, vars := "", map[string]any(nil)
	if op != nil {
		name, vars = op.Name, op.Variables
	}

	if resp != nil {
		for _, e := range resp.Errors {
			i.reportGraphQL(name, vars, e)
		}
	}
	if err != nil {
		if body := transportBody(err); body != nil && body != resp {
			for _, e := range body.Errors {
				i.reportGraphQL(name, vars, e)
			}
		}
		i.reportNetwork(name, vars, err)
	}

	if class == ClassAuthFailure {
		i.logger.Info("intercept: auth failure, deauthenticating", "operation", name)
		i.deauthenticate(name)
	}
	return class
}

func (i *Interceptor) reportGraphQL(operation string, vars map[string]any, e graphql.Error) {
	i.logger.Warn("graphql error",
		"operation", operation,
		"message", e.Message,
		"locations", e.Locations,
		"path", e.Path,
	)

	metadata := map[string]any{
		"operation": operation,
		"variables": vars,
	}
	if len(e.Locations) > 0 {
		metadata["locations"] = e.Locations
	}
	if len(e.Path) > 0 {
		metadata["path"] = e.Path
	}
	if len(e.Extensions) > 0 {
		metadata["extensions"] = e.Extensions
	}
	i.capture(fmt.Errorf("GraphQL Error: %s", e.Message), report.Context{
		Level:    report.LevelPage,
		Feature:  FeatureGraphQL,
		Metadata: metadata,
	})
}

func (i *Interceptor) reportNetwork(operation string, vars map[string]any, err error) {
	i.logger.Warn("network error", "operation", operation, "err", err)

	metadata := map[string]any{
		"operation": operation,
		"variables": vars,
	}
	if status, ok := graphql.StatusCodeOf(err); ok {
		metadata["statusCode"] = status
	}
	i.capture(fmt.Errorf("Network Error: %w", err), report.Context{
		Level:    report.LevelPage,
		Feature:  FeatureNetwork,
		Metadata: metadata,
	})
}

func (i *Interceptor) capture(err error, c report.Context) {
	if i.reporter == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			i.logger.Error("intercept: reporter panic", "panic", fmt.Sprint(r))
		}
	}()
	i.reporter.CaptureError(err, c)
}

func (i *Interceptor) deauthenticate(operation string) {
	if i.deauth == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			i.logger.Error("intercept: deauthenticate panic", "panic", fmt.Sprint(r))
		}
	}()
	i.deauth.ForceDeauthenticate("auth failure on " + operation)
}

func transportBody(err error) *graphql.Response {
	var te *graphql.TransportError
	if errors.As(err, &te) {
		return te.Response
	}
	return nil
}
