package metrics

import (
	"fmt"
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "ayamsys"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	once               sync.Once
	registry           *prom.Registry
	stageDuration      *prom.HistogramVec
	buildDuration      prom.Histogram
	stageResults       *prom.CounterVec
	buildOutcome       *prom.CounterVec
	unitDuration       *prom.HistogramVec
	compileConcurrency prom.Gauge
	emittedDecls       *prom.GaugeVec
	skippedDecls       *prom.CounterVec
}

// NewPrometheusRecorder constructs and registers Prometheus metrics (idempotent).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{registry: reg}
	pr.once.Do(func() {
		pr.stageDuration = prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Duration of individual pipeline stages",
			Buckets:   prom.DefBuckets,
		}, []string{"stage"})
		pr.buildDuration = prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "build_duration_seconds",
			Help:      "Total build duration",
			Buckets:   prom.DefBuckets,
		})
		pr.stageResults = prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "stage_results_total",
			Help:      "Stage result counts by outcome",
		}, []string{"stage", "result"})
		pr.buildOutcome = prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "build_outcomes_total",
			Help:      "Build outcomes by final status",
		}, []string{"outcome"})
		pr.unitDuration = prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "compile_unit_duration_seconds",
			Help:      "Duration of individual translation unit compiles",
			Buckets:   prom.DefBuckets,
		}, []string{"unit", "result"})
		pr.compileConcurrency = prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "compile_concurrency",
			Help:      "Parallel compile jobs used by the last build",
		})
		pr.emittedDecls = prom.NewGaugeVec(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "emitted_declarations",
			Help:      "Declarations emitted into the generated bindings by kind",
		}, []string{"kind"})
		pr.skippedDecls = prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "skipped_declarations_total",
			Help:      "Allowlisted declarations that could not be bound, by kind",
		}, []string{"kind"})
		reg.MustRegister(pr.stageDuration, pr.buildDuration, pr.stageResults, pr.buildOutcome,
			pr.unitDuration, pr.compileConcurrency, pr.emittedDecls, pr.skippedDecls)
	})
	return pr
}

func (p *PrometheusRecorder) ObserveStageDuration(stage string, d time.Duration) {
	if p == nil || p.stageDuration == nil {
		return
	}
	p.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObserveBuildDuration(d time.Duration) {
	if p == nil || p.buildDuration == nil {
		return
	}
	p.buildDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncStageResult(stage string, result ResultLabel) {
	if p == nil || p.stageResults == nil {
		return
	}
	p.stageResults.WithLabelValues(stage, string(result)).Inc()
}

func (p *PrometheusRecorder) IncBuildOutcome(outcome string) {
	if p == nil || p.buildOutcome == nil {
		return
	}
	p.buildOutcome.WithLabelValues(outcome).Inc()
}

func (p *PrometheusRecorder) ObserveCompileUnitDuration(unit string, d time.Duration, success bool) {
	if p == nil || p.unitDuration == nil {
		return
	}
	res := "failed"
	if success {
		res = "success"
	}
	p.unitDuration.WithLabelValues(unit, res).Observe(d.Seconds())
}

func (p *PrometheusRecorder) SetCompileConcurrency(n int) {
	if p == nil || p.compileConcurrency == nil {
		return
	}
	p.compileConcurrency.Set(float64(n))
}

func (p *PrometheusRecorder) SetEmittedDecls(kind string, n int) {
	if p == nil || p.emittedDecls == nil {
		return
	}
	p.emittedDecls.WithLabelValues(kind).Set(float64(n))
}

func (p *PrometheusRecorder) IncSkippedDecl(kind string) {
	if p == nil || p.skippedDecls == nil {
		return
	}
	p.skippedDecls.WithLabelValues(kind).Inc()
}

// WriteTextfile writes every metric of the recorder's registry to path in the text
// exposition format. The file is written to a temp name and renamed.
func (p *PrometheusRecorder) WriteTextfile(path string) error {
	if p == nil || p.registry == nil {
		return nil
	}
	if err := prom.WriteToTextfile(path, p.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
