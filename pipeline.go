package authclient

import (
	"context"
	"log/slog"
	"time"

	"github.com/MrEthical07/authclient/graphql"
	"github.com/MrEthical07/authclient/report"
)

// metricsLink counts exchanges and their failures and records latency. It
// sits inside the interceptor so it measures the exchange itself.
func metricsLink(m *Metrics) graphql.Link {
	return func(next graphql.HandlerFunc) graphql.HandlerFunc {
		return func(ctx context.Context, op *graphql.Operation) (*graphql.Response, error) {
			if !m.Enabled() {
				return next(ctx, op)
			}

			start := time.Now()
			resp, err := next(ctx, op)

			m.Inc(MetricRequestLatency)
			m.Observe(MetricRequestLatency, time.Since(start))
			switch {
			case err != nil:
				m.Inc(MetricNetworkError)
			case resp.HasErrors():
				m.Inc(MetricGraphQLError)
			}
			return resp, err
		}
	}
}

type cacheMetrics struct {
	m *Metrics
}

func (c cacheMetrics) CacheHit(*graphql.Operation)  { c.m.Inc(MetricCacheHit) }
func (c cacheMetrics) CacheMiss(*graphql.Operation) { c.m.Inc(MetricCacheMiss) }

// logReporter is the Reporter used when error tracking is off.
type logReporter struct {
	logger *slog.Logger
}

func (r logReporter) CaptureError(err error, c report.Context) {
	if err == nil {
		return
	}
	r.logger.Error("captured error",
		"error", err,
		"level", string(c.Level),
		"feature", c.Feature,
	)
}
