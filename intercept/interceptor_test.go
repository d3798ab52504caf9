package intercept

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/MrEthical07/authclient/graphql"
	"github.com/MrEthical07/authclient/report"
)

type captured struct {
	err error
	ctx report.Context
}

type fakeReporter struct {
	mu    sync.Mutex
	items []captured
}

func (r *fakeReporter) CaptureError(err error, c report.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, captured{err: err, ctx: c})
}

type countingDeauth struct {
	calls int
}

func (d *countingDeauth) ForceDeauthenticate(string) { d.calls++ }

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func run(t *testing.T, resp *graphql.Response, err error) (*countingDeauth, *fakeReporter) {
	t.Helper()
	deauth := &countingDeauth{}
	rep := &fakeReporter{}
	i := New(deauth, rep, WithLogger(quietLogger()))

	h := graphql.Compose(func(context.Context, *graphql.Operation) (*graphql.Response, error) {
		return resp, err
	}, i.Link())

	gotResp, gotErr := h(context.Background(), &graphql.Operation{Name: "Me", Variables: map[string]any{"a": 1}})
	if gotResp != resp || !errors.Is(gotErr, err) {
		t.Fatalf("interceptor altered the outcome: %v %v", gotResp, gotErr)
	}
	return deauth, rep
}

func TestUnauthenticatedCodeDeauthenticatesOnce(t *testing.T) {
	resp := &graphql.Response{Errors: []graphql.Error{
		{Message: "a", Extensions: map[string]any{"code": "UNAUTHENTICATED"}},
		{Message: "b", Extensions: map[string]any{"code": "UNAUTHENTICATED"}},
		{Message: "token expired"},
	}}
	deauth, rep := run(t, resp, nil)

	if deauth.calls != 1 {
		t.Fatalf("expected exactly one deauthentication, got %d", deauth.calls)
	}
	if len(rep.items) != 3 {
		t.Fatalf("expected every error reported, got %d", len(rep.items))
	}
	if rep.items[0].ctx.Feature != FeatureGraphQL || rep.items[0].ctx.Level != report.LevelPage {
		t.Fatalf("unexpected report context %+v", rep.items[0].ctx)
	}
}

func TestMessageMarkersAreCaseSensitive(t *testing.T) {
	cases := []struct {
		msg  string
		auth bool
	}{
		{"JWT token expired at 12:00", true},
		{"User is not authenticated", true},
		{"Token Expired", false},
		{"NOT AUTHENTICATED", false},
		{"validation failed", false},
	}
	for _, tc := range cases {
		deauth, _ := run(t, &graphql.Response{Errors: []graphql.Error{{Message: tc.msg}}}, nil)
		if got := deauth.calls == 1; got != tc.auth {
			t.Fatalf("%q: expected auth=%v, got deauth calls %d", tc.msg, tc.auth, deauth.calls)
		}
	}
}

func TestTransportStatusClassification(t *testing.T) {
	deauth, rep := run(t, nil, &graphql.TransportError{StatusCode: 401})
	if deauth.calls != 1 {
		t.Fatalf("expected 401 to deauthenticate, got %d", deauth.calls)
	}
	if len(rep.items) != 1 || rep.items[0].ctx.Feature != FeatureNetwork {
		t.Fatalf("expected one network report, got %+v", rep.items)
	}
	if rep.items[0].ctx.Metadata["statusCode"] != 401 {
		t.Fatalf("expected statusCode metadata, got %+v", rep.items[0].ctx.Metadata)
	}

	deauth, rep = run(t, nil, &graphql.TransportError{StatusCode: 500})
	if deauth.calls != 0 {
		t.Fatal("500 must not deauthenticate")
	}
	if len(rep.items) != 1 {
		t.Fatalf("expected 500 reported, got %d", len(rep.items))
	}
}

func TestTransportBodyErrorsAreClassified(t *testing.T) {
	body := &graphql.Response{Errors: []graphql.Error{{Message: "x", Extensions: map[string]any{"code": "UNAUTHENTICATED"}}}}
	deauth, rep := run(t, nil, &graphql.TransportError{StatusCode: 400, Response: body})
	if deauth.calls != 1 {
		t.Fatalf("expected body error to deauthenticate, got %d", deauth.calls)
	}
	if len(rep.items) != 2 {
		t.Fatalf("expected graphql and network reports, got %d", len(rep.items))
	}
}

func TestNonAuthFailureOnlyReports(t *testing.T) {
	resp := &graphql.Response{Errors: []graphql.Error{{
		Message:    "Email already taken",
		Locations:  []graphql.Location{{Line: 2, Column: 3}},
		Path:       []any{"register"},
		Extensions: map[string]any{"code": "VALIDATION_ERROR"},
	}}}
	deauth, rep := run(t, resp, nil)
	if deauth.calls != 0 {
		t.Fatal("validation error must not deauthenticate")
	}
	md := rep.items[0].ctx.Metadata
	if md["operation"] != "Me" || md["path"] == nil || md["locations"] == nil {
		t.Fatalf("missing metadata: %+v", md)
	}
}

func TestSuccessIsSilent(t *testing.T) {
	deauth, rep := run(t, &graphql.Response{}, nil)
	if deauth.calls != 0 || len(rep.items) != 0 {
		t.Fatal("successful exchange must not report or deauthenticate")
	}
}

type panickingReporter struct{}

func (panickingReporter) CaptureError(error, report.Context) { panic("reporter down") }

func TestInterceptorNeverPanics(t *testing.T) {
	i := New(DeauthenticatorFunc(func(string) { panic("store gone") }), panickingReporter{}, WithLogger(quietLogger()))
	h := i.Link()(func(context.Context, *graphql.Operation) (*graphql.Response, error) {
		return nil, &graphql.TransportError{StatusCode: 401}
	})

	_, err := h(context.Background(), &graphql.Operation{Name: "Me"})
	if code, ok := graphql.StatusCodeOf(err); !ok || code != 401 {
		t.Fatalf("expected original error, got %v", err)
	}
}

func TestNilCollaboratorsAreTolerated(t *testing.T) {
	i := New(nil, nil, WithLogger(quietLogger()))
	if got := i.Observe(nil, nil, &graphql.TransportError{StatusCode: 401}); got != ClassAuthFailure {
		t.Fatalf("expected auth failure class, got %s", got)
	}
}

func TestClassify(t *testing.T) {
	if got := Classify(nil, nil); got != ClassOK {
		t.Fatalf("expected ok, got %s", got)
	}
	if got := Classify(nil, errors.New("dial tcp: refused")); got != ClassFailure {
		t.Fatalf("expected failure, got %s", got)
	}
}
