package prometheus

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/MrEthical07/authclient"
	"github.com/MrEthical07/authclient/metrics/export/internaldefs"
)

// MetricsSource is what the exporter reads. *authclient.Client satisfies it.
type MetricsSource interface {
	MetricsSnapshot() authclient.MetricsSnapshot
	ReportDropped() uint64
}

// PrometheusExporter renders client metrics in Prometheus text exposition
// format.
type PrometheusExporter struct {
	source MetricsSource
}

// NewPrometheusExporter creates an exporter reading from client.
func NewPrometheusExporter(client *authclient.Client) *PrometheusExporter {
	return &PrometheusExporter{source: client}
}

// NewPrometheusExporterFromSource creates an exporter from a custom source.
func NewPrometheusExporterFromSource(source MetricsSource) *PrometheusExporter {
	return &PrometheusExporter{source: source}
}

// Handler returns an http.Handler that serves the rendered metrics.
func (p *PrometheusExporter) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
		_, _ = w.Write([]byte(p.Render()))
	})
}

// Render returns the current metrics. It returns "" when metrics are
// disabled and nothing was dropped.
func (p *PrometheusExporter) Render() string {
	if p == nil || p.source == nil {
		return ""
	}

	snapshot := p.source.MetricsSnapshot()
	dropped := p.source.ReportDropped()
	if len(snapshot.Counters) == 0 && len(snapshot.Histograms) == 0 && dropped == 0 {
		return ""
	}

	var w expositionWriter
	w.Grow(8192)

	for _, def := range internaldefs.CounterDefs {
		w.family(def.Name, def.Help, "counter")
		w.sample(def.Name, "", strconv.FormatUint(snapshot.Counters[def.ID], 10))
	}

	if latency, ok := internaldefs.LatencyFrom(snapshot); ok {
		name := internaldefs.LatencyName
		w.family(name, internaldefs.LatencyHelp, "histogram")
		for _, b := range latency.Buckets {
			w.sample(name+"_bucket", `le="`+b.Le+`"`, strconv.FormatUint(b.Count, 10))
		}
		w.sample(name+"_sum", "", strconv.FormatFloat(latency.Sum, 'g', -1, 64))
		w.sample(name+"_count", "", strconv.FormatUint(latency.Count, 10))
	}

	w.family(internaldefs.ReportDroppedName, internaldefs.ReportDroppedHelp, "counter")
	w.sample(internaldefs.ReportDroppedName, "", strconv.FormatUint(dropped, 10))

	return w.String()
}

// expositionWriter appends text-format lines.
type expositionWriter struct {
	strings.Builder
}

func (w *expositionWriter) family(name, help, kind string) {
	w.WriteString("# HELP " + name + " " + helpEscaper.Replace(help) + "\n")
	w.WriteString("# TYPE " + name + " " + kind + "\n")
}

func (w *expositionWriter) sample(name, labels, value string) {
	w.WriteString(name)
	if labels != "" {
		w.WriteString("{" + labels + "}")
	}
	w.WriteString(" " + value + "\n")
}

var helpEscaper = strings.NewReplacer(`\`, `\\`, "\n", `\n`)
