package kws

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/cortexswarm/kws-go"

// Metrics holds the node's OpenTelemetry instruments. The instruments are
// safe for concurrent use by both loops.
type Metrics struct {
	FramesCaptured     metric.Int64Counter
	CaptureFailures    metric.Int64Counter
	SlotOverwrites     metric.Int64Counter
	ClassifierFailures metric.Int64Counter
	Decisions          metric.Int64Counter // attribute "class"
	InferenceDuration  metric.Float64Histogram
	SleepTransitions   metric.Int64Counter
}

var inferenceBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1}

// NewMetrics creates the instruments on mp.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.FramesCaptured, err = m.Int64Counter("kws.frames.captured",
		metric.WithDescription("Frames normalized and published by the capture loop."),
	); err != nil {
		return nil, err
	}
	if met.CaptureFailures, err = m.Int64Counter("kws.capture.failures",
		metric.WithDescription("Capture cycles that produced no block."),
	); err != nil {
		return nil, err
	}
	if met.SlotOverwrites, err = m.Int64Counter("kws.slot.overwrites",
		metric.WithDescription("Published frames replaced before the inference loop took them."),
	); err != nil {
		return nil, err
	}
	if met.ClassifierFailures, err = m.Int64Counter("kws.classifier.failures",
		metric.WithDescription("Inference cycles skipped because the classifier failed."),
	); err != nil {
		return nil, err
	}
	if met.Decisions, err = m.Int64Counter("kws.decisions",
		metric.WithDescription("Decided commands by class."),
	); err != nil {
		return nil, err
	}
	if met.InferenceDuration, err = m.Float64Histogram("kws.inference.duration",
		metric.WithDescription("Classifier latency per frame."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(inferenceBuckets...),
	); err != nil {
		return nil, err
	}
	if met.SleepTransitions, err = m.Int64Counter("kws.power.sleep",
		metric.WithDescription("Idle-triggered transitions to SLEEPING."),
	); err != nil {
		return nil, err
	}
	return met, nil
}

// defaultMetrics builds instruments on the global provider, which is a no-op
// unless the host installs one.
func defaultMetrics() *Metrics {
	m, err := NewMetrics(otel.GetMeterProvider())
	if err != nil {
		panic("kws: default metrics: " + err.Error())
	}
	return m
}

// classAttrs is precomputed so recording a decision does not allocate.
var classAttrs = func() [NumCommands]metric.MeasurementOption {
	var out [NumCommands]metric.MeasurementOption
	for i := range out {
		out[i] = metric.WithAttributeSet(attribute.NewSet(attribute.String("class", Class(i).String())))
	}
	return out
}()

func (m *Metrics) recordDecision(ctx context.Context, c Class) {
	m.Decisions.Add(ctx, 1, classAttrs[c])
}
