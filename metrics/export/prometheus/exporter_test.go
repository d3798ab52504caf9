package prometheus

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/MrEthical07/authclient"
	"github.com/MrEthical07/authclient/internal/logging"
	"github.com/MrEthical07/authclient/internal/testbackend"
)

type fakeSource struct {
	snapshot authclient.MetricsSnapshot
	dropped  uint64
}

func (f fakeSource) MetricsSnapshot() authclient.MetricsSnapshot { return f.snapshot }
func (f fakeSource) ReportDropped() uint64                       { return f.dropped }

func TestRenderEmptyWhenMetricsDisabled(t *testing.T) {
	exp := NewPrometheusExporterFromSource(fakeSource{
		snapshot: authclient.MetricsSnapshot{
			Counters:   map[authclient.MetricID]uint64{},
			Histograms: map[authclient.MetricID][]uint64{},
		},
	})

	if got := exp.Render(); got != "" {
		t.Fatalf("expected empty output for disabled metrics, got:\n%s", got)
	}
}

func TestRenderDeterministicIncludesCounterAndHistogram(t *testing.T) {
	exp := NewPrometheusExporterFromSource(fakeSource{
		snapshot: authclient.MetricsSnapshot{
			Counters: map[authclient.MetricID]uint64{
				authclient.MetricLoginSuccess: 7,
			},
			Histograms: map[authclient.MetricID][]uint64{
				authclient.MetricRequestLatency: {1, 2, 3, 4, 5, 6, 7, 8},
			},
			LatencySum: 2500 * time.Millisecond,
		},
		dropped: 2,
	})

	out := exp.Render()
	if !strings.Contains(out, "authclient_login_success_total 7") {
		t.Fatalf("expected login_success counter in output, got:\n%s", out)
	}
	if !strings.Contains(out, "authclient_request_latency_seconds_bucket{le=\"0.005\"} 1") {
		t.Fatalf("expected first histogram bucket in output, got:\n%s", out)
	}
	if !strings.Contains(out, "authclient_request_latency_seconds_bucket{le=\"+Inf\"} 36") {
		t.Fatalf("expected +Inf cumulative bucket in output, got:\n%s", out)
	}
	if !strings.Contains(out, "authclient_request_latency_seconds_sum 2.5\n") {
		t.Fatalf("expected latency sum in output, got:\n%s", out)
	}
	if !strings.Contains(out, "authclient_request_latency_seconds_count 36\n") {
		t.Fatalf("expected latency count in output, got:\n%s", out)
	}
	if !strings.Contains(out, "authclient_report_dropped_total 2") {
		t.Fatalf("expected report dropped counter in output, got:\n%s", out)
	}
}

func TestRenderFromLiveClient(t *testing.T) {
	backend := testbackend.New()
	defer backend.Close()

	cfg := authclient.DefaultConfig()
	cfg.Endpoint = backend.URL()
	client, err := authclient.New().WithConfig(cfg).WithLogger(logging.Discard()).Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	defer client.Close()

	if _, err := client.Login(context.Background(), "alice", "wrong"); err == nil {
		t.Fatal("expected rejected login")
	}

	out := NewPrometheusExporter(client).Render()
	if !strings.Contains(out, "authclient_login_failure_total 1") {
		t.Fatalf("expected login failure in output, got:\n%s", out)
	}
	if !strings.Contains(out, "authclient_requests_total 1") {
		t.Fatalf("expected one exchange in output, got:\n%s", out)
	}
}

func TestRenderOmitsHistogramWhenLatencyDisabled(t *testing.T) {
	exp := NewPrometheusExporterFromSource(fakeSource{
		snapshot: authclient.MetricsSnapshot{
			Counters:   map[authclient.MetricID]uint64{authclient.MetricLoginSuccess: 1},
			Histograms: map[authclient.MetricID][]uint64{},
		},
	})

	out := exp.Render()
	if strings.Contains(out, "authclient_request_latency_seconds") {
		t.Fatalf("expected no histogram family, got:\n%s", out)
	}
	if !strings.Contains(out, "# TYPE authclient_login_success_total counter\n") {
		t.Fatalf("expected counter family header, got:\n%s", out)
	}
}

func TestHandlerWritesPrometheusContentType(t *testing.T) {
	exp := NewPrometheusExporterFromSource(fakeSource{
		snapshot: authclient.MetricsSnapshot{
			Counters:   map[authclient.MetricID]uint64{authclient.MetricLoginSuccess: 1},
			Histograms: map[authclient.MetricID][]uint64{},
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	exp.Handler().ServeHTTP(rec, req)

	if got := rec.Header().Get("Content-Type"); !strings.Contains(got, "text/plain") {
		t.Fatalf("expected prometheus content type, got %q", got)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func BenchmarkRender(b *testing.B) {
	exp := NewPrometheusExporterFromSource(fakeSource{
		snapshot: authclient.MetricsSnapshot{
			Counters: map[authclient.MetricID]uint64{
				authclient.MetricLoginSuccess:   1000,
				authclient.MetricLoginFailure:   40,
				authclient.MetricRefreshSuccess: 800,
				authclient.MetricRefreshFailure: 10,
				authclient.MetricForcedDeauth:   20,
				authclient.MetricCacheHit:       300,
			},
			Histograms: map[authclient.MetricID][]uint64{
				authclient.MetricRequestLatency: {10, 20, 30, 40, 50, 60, 70, 80},
			},
		},
	})

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = exp.Render()
	}
}
