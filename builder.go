package authclient

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/MrEthical07/authclient/drafts"
	"github.com/MrEthical07/authclient/graphql"
	"github.com/MrEthical07/authclient/intercept"
	"github.com/MrEthical07/authclient/report"
	"github.com/MrEthical07/authclient/session"
)

// Builder assembles a Client. It is single-use: configure it with the With
// methods, then call Build once.
type Builder struct {
	config     Config
	httpClient *http.Client
	redis      redis.UniversalClient
	reportSink report.Sink
	logger     *slog.Logger

	built bool
}

// New returns a builder seeded with DefaultConfig.
func New() *Builder {
	return &Builder{
		config: DefaultConfig(),
	}
}

// WithConfig replaces the whole configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithHTTPClient sets the client used by the transport stage. It should
// carry a cookie jar; the default client gets a fresh in-memory jar.
func (b *Builder) WithHTTPClient(c *http.Client) *Builder {
	b.httpClient = c
	return b
}

// WithRedis enables draft persistence.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithReportSink forces error tracking on, delivering to sink instead of
// the configured HTTP endpoint.
func (b *Builder) WithReportSink(sink report.Sink) *Builder {
	b.reportSink = sink
	return b
}

// WithLogger sets the logger shared by every component.
func (b *Builder) WithLogger(l *slog.Logger) *Builder {
	b.logger = l
	return b
}

// WithMetricsEnabled toggles in-process counters.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms toggles the request latency histogram.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build validates the configuration and wires the pipeline:
//
//	interceptor -> metrics -> auth-context -> HTTP transport
//
// The interceptor is outermost so it sees the final outcome of every
// exchange.
func (b *Builder) Build() (*Client, error) {
	if b.built {
		return nil, ErrBuilderUsed
	}

	cfg := cloneConfig(b.config)
	if b.reportSink != nil {
		cfg.Report.Enabled = true
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := b.logger
	if logger == nil {
		logger = slog.Default()
	}

	topts := []graphql.TransportOption{
		graphql.WithTimeout(cfg.Transport.Timeout),
		graphql.WithUserAgent(strings.TrimSpace(cfg.Transport.UserAgent + " " + cfg.AppName + "/" + cfg.AppVersion)),
	}
	if b.httpClient != nil {
		topts = append(topts, graphql.WithHTTPClient(b.httpClient))
	}
	transport, err := graphql.NewHTTPTransport(cfg.Endpoint, topts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	c := &Client{
		cfg:       cfg,
		logger:    logger,
		store:     session.NewStore(),
		transport: transport,
		metrics:   NewMetrics(cfg.Metrics),
	}

	if cfg.Report.Enabled {
		sink := b.reportSink
		if sink == nil {
			sink = report.NewHTTPSink(cfg.ReportEndpoint(), nil, cfg.Report.Compress)
		}
		rc := report.DefaultConfig()
		if cfg.Report.BufferSize > 0 {
			rc.BufferSize = cfg.Report.BufferSize
		}
		if cfg.Report.MaxQueueSize > 0 {
			rc.MaxQueueSize = cfg.Report.MaxQueueSize
		}
		if cfg.Report.FlushInterval > 0 {
			rc.FlushInterval = cfg.Report.FlushInterval
		}
		if cfg.AppVersion != "" {
			rc.BuildVersion = cfg.AppVersion
		}
		c.tracker = report.NewTracker(rc, sink,
			report.WithLogger(logger),
			report.WithUserID(c.currentUserID),
		)
		c.reporter = c.tracker
	} else {
		c.reporter = logReporter{logger: logger}
	}

	// the interceptor logs on its own; it only forwards when tracking is on
	var forward report.Reporter
	if c.tracker != nil {
		forward = c.tracker
	}
	c.interceptor = intercept.New(c, forward, intercept.WithLogger(logger))

	static := http.Header{}
	for k, v := range cfg.Transport.Headers {
		static.Set(k, v)
	}
	handler := graphql.Compose(transport.Handle,
		c.interceptor.Link(),
		metricsLink(c.metrics),
		graphql.ContextLink(static),
	)

	policy, _ := graphql.ParseFetchPolicy(cfg.Cache.DefaultPolicy)
	gopts := []graphql.ClientOption{
		graphql.WithDefaultPolicy(policy),
		graphql.WithCacheObserver(cacheMetrics{m: c.metrics}),
	}
	if cfg.Cache.Enabled {
		gopts = append(gopts, graphql.WithCache(graphql.NewCache()))
	}
	c.gql = graphql.NewClient(handler, gopts...)

	if b.redis != nil {
		c.drafts = drafts.NewStore(b.redis, cfg.Drafts.Prefix)
	}

	b.built = true

	return c, nil
}
