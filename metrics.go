package authclient

import (
	"sync/atomic"
	"time"
)

// MetricID identifies one in-process counter.
type MetricID uint16

const (
	MetricLoginSuccess MetricID = iota
	MetricLoginFailure
	MetricRegisterSuccess
	MetricRegisterFailure
	MetricLogout
	MetricLogoutFailure
	MetricCurrentUserSuccess
	MetricCurrentUserFailure
	MetricRefreshSuccess
	MetricRefreshFailure
	MetricPasswordResetRequest
	MetricPasswordResetRequestFailure
	MetricPasswordResetConfirmSuccess
	MetricPasswordResetConfirmFailure
	// MetricForcedDeauth counts sessions reset because the backend stopped
	// recognising the credential.
	MetricForcedDeauth
	MetricGraphQLError
	MetricNetworkError
	MetricCacheHit
	MetricCacheMiss
	// MetricRequestLatency is the only histogram-backed metric. Its counter
	// holds the number of observed exchanges.
	MetricRequestLatency
	metricIDCount
)

const (
	histBucketCount = 8
	cacheLineSize   = 64
)

// LatencyBucketBounds are the inclusive upper bounds of the first seven
// histogram buckets. The eighth bucket is unbounded.
var LatencyBucketBounds = [histBucketCount - 1]time.Duration{
	5 * time.Millisecond,
	10 * time.Millisecond,
	25 * time.Millisecond,
	50 * time.Millisecond,
	100 * time.Millisecond,
	250 * time.Millisecond,
	500 * time.Millisecond,
}

type metricHistogram struct {
	buckets [histBucketCount]uint64
	sum     uint64 // nanoseconds
}

type paddedCounter struct {
	value uint64
	_     [cacheLineSize - 8]byte
}

// Metrics is a fixed set of lock-free counters. A nil or disabled Metrics
// ignores every update.
type Metrics struct {
	enabled       bool
	enableLatency bool
	counters      [metricIDCount]paddedCounter
	histograms    [metricIDCount]metricHistogram
}

// MetricsSnapshot is a point-in-time copy of every counter and, when
// latency histograms are enabled, the request latency buckets and their
// total observed duration.
type MetricsSnapshot struct {
	Counters   map[MetricID]uint64
	Histograms map[MetricID][]uint64
	LatencySum time.Duration
}

// NewMetrics returns counters configured by cfg. Latency histograms are
// only kept when metrics are enabled too.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return &Metrics{
		enabled:       cfg.Enabled,
		enableLatency: cfg.Enabled && cfg.EnableLatencyHistograms,
	}
}

// Enabled reports whether counters are recorded.
func (m *Metrics) Enabled() bool {
	return m != nil && m.enabled
}

// LatencyEnabled reports whether the latency histogram is recorded.
func (m *Metrics) LatencyEnabled() bool {
	return m != nil && m.enableLatency
}

// Inc adds one to id.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= metricIDCount {
		return
	}
	atomic.AddUint64(&m.counters[id].value, 1)
}

// Observe records d in the histogram for id. Only MetricRequestLatency has a
// histogram; other ids are ignored.
func (m *Metrics) Observe(id MetricID, d time.Duration) {
	if m == nil || !m.enabled || !m.enableLatency || id != MetricRequestLatency {
		return
	}
	h := &m.histograms[id]
	atomic.AddUint64(&h.buckets[bucketIndex(d)], 1)
	if d > 0 {
		atomic.AddUint64(&h.sum, uint64(d))
	}
}

// Value returns the current count for id.
func (m *Metrics) Value(id MetricID) uint64 {
	if m == nil || id >= metricIDCount {
		return 0
	}
	return atomic.LoadUint64(&m.counters[id].value)
}

// Snapshot copies every counter. Disabled metrics yield empty maps.
func (m *Metrics) Snapshot() MetricsSnapshot {
	if m == nil || !m.enabled {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}

	s := MetricsSnapshot{
		Counters:   make(map[MetricID]uint64, int(metricIDCount)),
		Histograms: make(map[MetricID][]uint64, 1),
	}

	for id := MetricID(0); id < metricIDCount; id++ {
		s.Counters[id] = atomic.LoadUint64(&m.counters[id].value)
	}

	if m.enableLatency {
		buckets := make([]uint64, histBucketCount)
		for i := 0; i < histBucketCount; i++ {
			buckets[i] = atomic.LoadUint64(&m.histograms[MetricRequestLatency].buckets[i])
		}
		s.Histograms[MetricRequestLatency] = buckets
		s.LatencySum = time.Duration(atomic.LoadUint64(&m.histograms[MetricRequestLatency].sum))
	}

	return s
}

func bucketIndex(d time.Duration) int {
	for i, bound := range LatencyBucketBounds {
		if d <= bound {
			return i
		}
	}
	return histBucketCount - 1
}

// opMetrics pairs the success and failure counters of one operation.
type opMetrics struct {
	ok   MetricID
	fail MetricID
}

func (m *Metrics) record(pair opMetrics, err error) {
	if err != nil {
		m.Inc(pair.fail)
		return
	}
	m.Inc(pair.ok)
}

var (
	loginMetrics        = opMetrics{MetricLoginSuccess, MetricLoginFailure}
	registerMetrics     = opMetrics{MetricRegisterSuccess, MetricRegisterFailure}
	logoutMetrics       = opMetrics{MetricLogout, MetricLogoutFailure}
	currentUserMetrics  = opMetrics{MetricCurrentUserSuccess, MetricCurrentUserFailure}
	refreshMetrics      = opMetrics{MetricRefreshSuccess, MetricRefreshFailure}
	resetRequestMetrics = opMetrics{MetricPasswordResetRequest, MetricPasswordResetRequestFailure}
	resetConfirmMetrics = opMetrics{MetricPasswordResetConfirmSuccess, MetricPasswordResetConfirmFailure}
)
