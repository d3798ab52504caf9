package otel

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/MrEthical07/authclient"
	"github.com/MrEthical07/authclient/metrics/export/internaldefs"
)

var (
	ErrNilMeter  = errors.New("nil meter")
	ErrNilSource = errors.New("nil metrics source")
)

// MetricsSource is what the exporter observes. *authclient.Client
// satisfies it.
type MetricsSource interface {
	MetricsSnapshot() authclient.MetricsSnapshot
	ReportDropped() uint64
}

// leKey labels each cumulative latency bucket with its upper bound.
const leKey = attribute.Key("le")

// OTelExporter publishes client metrics as observable instruments on an
// OpenTelemetry meter. Values are read from the source at collection time.
type OTelExporter struct {
	source       MetricsSource
	registration metric.Registration

	counters map[authclient.MetricID]metric.Int64ObservableCounter
	dropped  metric.Int64ObservableCounter

	latencyBuckets metric.Int64ObservableGauge
	latencyCount   metric.Int64ObservableGauge
	latencySum     metric.Float64ObservableGauge
}

// NewOTelExporter registers instruments for client on meter.
func NewOTelExporter(meter metric.Meter, client *authclient.Client) (*OTelExporter, error) {
	if client == nil {
		return nil, ErrNilSource
	}
	return NewOTelExporterFromSource(meter, client)
}

// NewOTelExporterFromSource registers instruments for a custom source.
func NewOTelExporterFromSource(meter metric.Meter, source MetricsSource) (*OTelExporter, error) {
	if meter == nil {
		return nil, ErrNilMeter
	}
	if source == nil {
		return nil, ErrNilSource
	}

	e := &OTelExporter{
		source:   source,
		counters: make(map[authclient.MetricID]metric.Int64ObservableCounter, len(internaldefs.CounterDefs)),
	}
	observables := make([]metric.Observable, 0, len(internaldefs.CounterDefs)+4)

	for _, def := range internaldefs.CounterDefs {
		ins, err := meter.Int64ObservableCounter(def.Name, metric.WithDescription(def.Help))
		if err != nil {
			return nil, fmt.Errorf("create counter %s: %w", def.Name, err)
		}
		e.counters[def.ID] = ins
		observables = append(observables, ins)
	}

	var err error
	if e.dropped, err = meter.Int64ObservableCounter(internaldefs.ReportDroppedName,
		metric.WithDescription(internaldefs.ReportDroppedHelp)); err != nil {
		return nil, fmt.Errorf("create counter %s: %w", internaldefs.ReportDroppedName, err)
	}

	name := internaldefs.LatencyName
	if e.latencyBuckets, err = meter.Int64ObservableGauge(name+"_bucket",
		metric.WithDescription(internaldefs.LatencyHelp+" Cumulative count per upper bound.")); err != nil {
		return nil, fmt.Errorf("create gauge %s_bucket: %w", name, err)
	}
	if e.latencyCount, err = meter.Int64ObservableGauge(name+"_count",
		metric.WithDescription(internaldefs.LatencyHelp+" Sample count.")); err != nil {
		return nil, fmt.Errorf("create gauge %s_count: %w", name, err)
	}
	if e.latencySum, err = meter.Float64ObservableGauge(name+"_sum",
		metric.WithUnit("s"),
		metric.WithDescription(internaldefs.LatencyHelp+" Total observed seconds.")); err != nil {
		return nil, fmt.Errorf("create gauge %s_sum: %w", name, err)
	}
	observables = append(observables, e.dropped, e.latencyBuckets, e.latencyCount, e.latencySum)

	e.registration, err = meter.RegisterCallback(e.observe, observables...)
	if err != nil {
		return nil, fmt.Errorf("register callback: %w", err)
	}
	return e, nil
}

func (e *OTelExporter) observe(_ context.Context, o metric.Observer) error {
	snapshot := e.source.MetricsSnapshot()
	for id, ins := range e.counters {
		o.ObserveInt64(ins, int64(snapshot.Counters[id]))
	}
	o.ObserveInt64(e.dropped, int64(e.source.ReportDropped()))

	latency, ok := internaldefs.LatencyFrom(snapshot)
	if !ok {
		return nil
	}
	for _, b := range latency.Buckets {
		o.ObserveInt64(e.latencyBuckets, int64(b.Count), metric.WithAttributes(leKey.String(b.Le)))
	}
	o.ObserveInt64(e.latencyCount, int64(latency.Count))
	o.ObserveFloat64(e.latencySum, latency.Sum)
	return nil
}

// Close unregisters the collection callback.
func (e *OTelExporter) Close() error {
	if e == nil || e.registration == nil {
		return nil
	}
	return e.registration.Unregister()
}
