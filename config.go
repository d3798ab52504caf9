package authclient

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/MrEthical07/authclient/graphql"
	"github.com/MrEthical07/authclient/internal/logging"
)

// Mode is the deployment mode. Production tightens configuration checks.
type Mode string

const (
	ModeDevelopment Mode = "development"
	ModeProduction  Mode = "production"
)

// Config is the complete client configuration. It is copied into the Client
// at Build and treated as immutable afterwards.
type Config struct {
	Endpoint   string `yaml:"endpoint"`
	BaseURL    string `yaml:"base_url"`
	AppName    string `yaml:"app_name"`
	AppVersion string `yaml:"app_version"`
	Mode       Mode   `yaml:"mode"`

	Transport TransportConfig `yaml:"transport"`
	Refresh   RefreshConfig   `yaml:"refresh"`
	Cache     CacheConfig     `yaml:"cache"`
	Report    ReportConfig    `yaml:"report"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Drafts    DraftsConfig    `yaml:"drafts"`
	Access    AccessConfig    `yaml:"access"`
	Log       LogConfig       `yaml:"log"`
}

/*
====================================
TRANSPORT CONFIG
====================================
*/

// TransportConfig controls the HTTP transport stage.
type TransportConfig struct {
	Timeout   time.Duration     `yaml:"timeout"`
	UserAgent string            `yaml:"user_agent"`
	Headers   map[string]string `yaml:"headers"`
}

/*
====================================
REFRESH CONFIG
====================================
*/

// RefreshConfig controls the proactive refresh timer.
type RefreshConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Interval time.Duration `yaml:"interval"`
}

/*
====================================
CACHE CONFIG
====================================
*/

// CacheConfig controls the response cache. DefaultPolicy is one of
// network-only, cache-first, no-cache.
type CacheConfig struct {
	Enabled       bool   `yaml:"enabled"`
	DefaultPolicy string `yaml:"default_policy"`
}

/*
====================================
REPORT CONFIG
====================================
*/

// ReportConfig controls error reporting. An empty Endpoint resolves to
// BaseURL + "/api/errors".
type ReportConfig struct {
	Enabled       bool          `yaml:"enabled"`
	Endpoint      string        `yaml:"endpoint"`
	BufferSize    int           `yaml:"buffer_size"`
	MaxQueueSize  int           `yaml:"max_queue_size"`
	FlushInterval time.Duration `yaml:"flush_interval"`
	Compress      bool          `yaml:"compress"`
}

/*
====================================
METRICS CONFIG
====================================
*/

// MetricsConfig controls in-process counters and latency histograms.
type MetricsConfig struct {
	Enabled                 bool `yaml:"enabled"`
	EnableLatencyHistograms bool `yaml:"enable_latency_histograms"`
}

/*
====================================
DRAFTS CONFIG
====================================
*/

// DraftsConfig controls form draft persistence. Drafts need a Redis client
// passed to the Builder.
type DraftsConfig struct {
	Prefix        string        `yaml:"prefix"`
	TTL           time.Duration `yaml:"ttl"`
	AutosaveDelay time.Duration `yaml:"autosave_delay"`
}

/*
====================================
ACCESS CONFIG
====================================
*/

// AccessConfig names the admin role and the guard's redirect targets.
type AccessConfig struct {
	AdminRole        string `yaml:"admin_role"`
	SignInPath       string `yaml:"sign_in_path"`
	UnauthorizedPath string `yaml:"unauthorized_path"`
	LandingPath      string `yaml:"landing_path"`
}

// LogConfig selects the log level and format.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

/*
====================================
DEFAULT CONFIG
====================================
*/

// DefaultConfig returns the development defaults.
func DefaultConfig() Config {
	return Config{
		Endpoint:   "http://localhost:8097/graphql",
		BaseURL:    "http://localhost:8097",
		AppName:    "GraphQL Template",
		AppVersion: "1.0.0",
		Mode:       ModeDevelopment,
		Transport: TransportConfig{
			Timeout:   30 * time.Second,
			UserAgent: "authclient",
		},
		Refresh: RefreshConfig{
			Enabled:  true,
			Interval: 10 * time.Minute,
		},
		Cache: CacheConfig{
			Enabled:       true,
			DefaultPolicy: graphql.NetworkOnly.String(),
		},
		Report: ReportConfig{
			Enabled:       false,
			BufferSize:    256,
			MaxQueueSize:  50,
			FlushInterval: 30 * time.Second,
			Compress:      true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
		Drafts: DraftsConfig{
			Prefix:        "draft",
			TTL:           7 * 24 * time.Hour,
			AutosaveDelay: time.Second,
		},
		Access: AccessConfig{
			AdminRole:        "ROLE_ADMIN",
			SignInPath:       "/login",
			UnauthorizedPath: "/unauthorized",
			LandingPath:      "/dashboard",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

func cloneConfig(cfg Config) Config {
	out := cfg
	if cfg.Transport.Headers != nil {
		out.Transport.Headers = make(map[string]string, len(cfg.Transport.Headers))
		for k, v := range cfg.Transport.Headers {
			out.Transport.Headers[k] = v
		}
	}
	return out
}

// ReportEndpoint returns the resolved error-report endpoint.
func (c *Config) ReportEndpoint() string {
	if c.Report.Endpoint != "" {
		return c.Report.Endpoint
	}
	return strings.TrimRight(c.BaseURL, "/") + "/api/errors"
}

/*
====================================
LOADING
====================================
*/

// LoadConfig reads a YAML file over DefaultConfig. Fields absent from the
// file keep their defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("%w: parse %s: %v", ErrInvalidConfig, path, err)
	}
	return cfg, nil
}

// Environment variables honoured by ApplyEnv.
const (
	EnvGraphQLEndpoint     = "FE_GRAPHQL_ENDPOINT"
	EnvAPIBaseURL          = "FE_API_BASE_URL"
	EnvAppName             = "FE_APP_NAME"
	EnvAppVersion          = "FE_APP_VERSION"
	EnvEnableErrorTracking = "FE_ENABLE_ERROR_TRACKING"
	EnvErrorEndpoint       = "FE_ERROR_ENDPOINT"
	EnvLogLevel            = "FE_LOG_LEVEL"
	EnvMode                = "FE_MODE"
)

// ApplyEnv overlays environment variables read through lookup (os.LookupEnv
// when nil). In production mode FE_GRAPHQL_ENDPOINT and FE_APP_NAME must be
// set; the error names the first missing variable.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	get := func(key string) (string, bool) {
		v, ok := lookup(key)
		v = strings.TrimSpace(v)
		return v, ok && v != ""
	}

	if v, ok := get(EnvMode); ok {
		c.Mode = Mode(strings.ToLower(v))
	}
	if c.Mode == ModeProduction {
		for _, key := range []string{EnvGraphQLEndpoint, EnvAppName} {
			if _, ok := get(key); !ok {
				return fmt.Errorf("%w: missing required environment variable: %s", ErrInvalidConfig, key)
			}
		}
	}

	if v, ok := get(EnvGraphQLEndpoint); ok {
		c.Endpoint = v
	}
	if v, ok := get(EnvAPIBaseURL); ok {
		c.BaseURL = v
	}
	if v, ok := get(EnvAppName); ok {
		c.AppName = v
	}
	if v, ok := get(EnvAppVersion); ok {
		c.AppVersion = v
	}
	if v, ok := lookup(EnvEnableErrorTracking); ok {
		// only the literal "true" enables tracking
		c.Report.Enabled = strings.TrimSpace(v) == "true"
	}
	if v, ok := get(EnvErrorEndpoint); ok {
		c.Report.Endpoint = v
	}
	if v, ok := get(EnvLogLevel); ok {
		c.Log.Level = v
	}
	return nil
}

/*
====================================
VALIDATION
====================================
*/

// Validate reports the first configuration problem, wrapped in
// ErrInvalidConfig.
func (c *Config) Validate() error {
	if err := c.validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

func (c *Config) validate() error {
	if err := validateURL("Endpoint", c.Endpoint); err != nil {
		return err
	}
	if c.BaseURL != "" {
		if err := validateURL("BaseURL", c.BaseURL); err != nil {
			return err
		}
	}
	if c.Mode != ModeDevelopment && c.Mode != ModeProduction {
		return fmt.Errorf("unknown Mode %q", c.Mode)
	}
	if c.Mode == ModeProduction && strings.TrimSpace(c.AppName) == "" {
		return errors.New("AppName is required in production")
	}

	if c.Transport.Timeout < 0 {
		return errors.New("Transport Timeout must be >= 0")
	}

	if c.Refresh.Enabled && c.Refresh.Interval <= 0 {
		return errors.New("Refresh Interval must be > 0 when Refresh is enabled")
	}

	if _, ok := graphql.ParseFetchPolicy(c.Cache.DefaultPolicy); !ok {
		return fmt.Errorf("unknown Cache DefaultPolicy %q", c.Cache.DefaultPolicy)
	}

	if c.Report.Enabled {
		if c.Report.BufferSize <= 0 {
			return errors.New("Report BufferSize must be > 0")
		}
		if c.Report.MaxQueueSize <= 0 {
			return errors.New("Report MaxQueueSize must be > 0")
		}
		if c.Report.FlushInterval <= 0 {
			return errors.New("Report FlushInterval must be > 0")
		}
		if err := validateURL("Report Endpoint", c.ReportEndpoint()); err != nil {
			return err
		}
	}

	if c.Metrics.EnableLatencyHistograms && !c.Metrics.Enabled {
		return errors.New("Metrics EnableLatencyHistograms requires Metrics Enabled")
	}

	if c.Drafts.TTL < 0 || c.Drafts.AutosaveDelay < 0 {
		return errors.New("Drafts durations must be >= 0")
	}

	for _, p := range []struct{ name, path string }{
		{"SignInPath", c.Access.SignInPath},
		{"UnauthorizedPath", c.Access.UnauthorizedPath},
		{"LandingPath", c.Access.LandingPath},
	} {
		if !strings.HasPrefix(p.path, "/") {
			return fmt.Errorf("Access %s must be an absolute path", p.name)
		}
	}
	if strings.TrimSpace(c.Access.AdminRole) == "" {
		return errors.New("Access AdminRole must not be empty")
	}

	return logging.Validate(logging.Options{Level: c.Log.Level, Format: c.Log.Format})
}

func validateURL(field, raw string) error {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("%s must be an absolute http(s) URL, got %q", field, raw)
	}
	return nil
}
