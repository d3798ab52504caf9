package internaldefs

import (
	"strconv"

	"github.com/MrEthical07/authclient"
)

// CounterDef names one client counter for exporters.
type CounterDef struct {
	ID   authclient.MetricID
	Name string
	Help string
}

// CounterDefs lists every exported counter in render order.
var CounterDefs = []CounterDef{
	{ID: authclient.MetricLoginSuccess, Name: "authclient_login_success_total", Help: "Successful logins."},
	{ID: authclient.MetricLoginFailure, Name: "authclient_login_failure_total", Help: "Rejected or failed logins."},
	{ID: authclient.MetricRegisterSuccess, Name: "authclient_register_success_total", Help: "Successful registrations."},
	{ID: authclient.MetricRegisterFailure, Name: "authclient_register_failure_total", Help: "Rejected or failed registrations."},
	{ID: authclient.MetricLogout, Name: "authclient_logout_total", Help: "Logouts acknowledged by the backend."},
	{ID: authclient.MetricLogoutFailure, Name: "authclient_logout_failure_total", Help: "Logouts whose backend call failed; local state was still cleared."},
	{ID: authclient.MetricCurrentUserSuccess, Name: "authclient_current_user_success_total", Help: "Successful current-user fetches."},
	{ID: authclient.MetricCurrentUserFailure, Name: "authclient_current_user_failure_total", Help: "Failed current-user fetches."},
	{ID: authclient.MetricRefreshSuccess, Name: "authclient_refresh_success_total", Help: "Successful token refreshes."},
	{ID: authclient.MetricRefreshFailure, Name: "authclient_refresh_failure_total", Help: "Failed token refreshes."},
	{ID: authclient.MetricPasswordResetRequest, Name: "authclient_password_reset_request_total", Help: "Accepted password reset requests."},
	{ID: authclient.MetricPasswordResetRequestFailure, Name: "authclient_password_reset_request_failure_total", Help: "Rejected or failed password reset requests."},
	{ID: authclient.MetricPasswordResetConfirmSuccess, Name: "authclient_password_reset_confirm_success_total", Help: "Successful password resets."},
	{ID: authclient.MetricPasswordResetConfirmFailure, Name: "authclient_password_reset_confirm_failure_total", Help: "Rejected or failed password resets."},
	{ID: authclient.MetricForcedDeauth, Name: "authclient_forced_deauth_total", Help: "Sessions reset after an auth failure response."},
	{ID: authclient.MetricGraphQLError, Name: "authclient_graphql_error_total", Help: "Responses carrying GraphQL errors."},
	{ID: authclient.MetricNetworkError, Name: "authclient_network_error_total", Help: "Failed network exchanges."},
	{ID: authclient.MetricCacheHit, Name: "authclient_cache_hit_total", Help: "Queries answered from the response cache."},
	{ID: authclient.MetricCacheMiss, Name: "authclient_cache_miss_total", Help: "Cache-first queries that went to the backend."},
	{ID: authclient.MetricRequestLatency, Name: "authclient_requests_total", Help: "Completed exchanges."},
}

// Exported names of the request latency histogram.
const (
	LatencyName = "authclient_request_latency_seconds"
	LatencyHelp = "GraphQL exchange latency."

	ReportDroppedName = "authclient_report_dropped_total"
	ReportDroppedHelp = "Error reports dropped because the tracker buffer was full."
)

// InfBound is the label of the unbounded last bucket.
const InfBound = "+Inf"

// Bucket is one cumulative histogram bucket.
type Bucket struct {
	Le    string // upper bound in seconds, or InfBound
	Count uint64
}

// Latency is the request latency histogram in exporter units.
type Latency struct {
	Buckets []Bucket
	Count   uint64
	Sum     float64 // seconds
}

// LatencyFrom converts the snapshot's latency buckets. ok is false when the
// snapshot carries no histogram.
func LatencyFrom(s authclient.MetricsSnapshot) (l Latency, ok bool) {
	raw, ok := s.Histograms[authclient.MetricRequestLatency]
	if !ok {
		return Latency{}, false
	}

	bounds := authclient.LatencyBucketBounds
	l.Buckets = make([]Bucket, len(bounds)+1)
	var running uint64
	for i := range l.Buckets {
		if i < len(raw) {
			running += raw[i]
		}
		le := InfBound
		if i < len(bounds) {
			le = strconv.FormatFloat(bounds[i].Seconds(), 'g', -1, 64)
		}
		l.Buckets[i] = Bucket{Le: le, Count: running}
	}
	// counts past the last known bound land in +Inf
	for i := len(l.Buckets); i < len(raw); i++ {
		running += raw[i]
	}
	l.Buckets[len(l.Buckets)-1].Count = running
	l.Count = running
	l.Sum = s.LatencySum.Seconds()
	return l, true
}
