// 指示: miu200521358
// Package metrics はリターゲットと再生のPrometheusメトリクスを提供する。
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// RetargetMetrics はリターゲットと再生のメトリクスを保持する。
type RetargetMetrics struct {
	CompileResults  *prometheus.CounterVec
	CompileDuration prometheus.Histogram
	MappedRatio     prometheus.Histogram
	SkippedTracks   *prometheus.CounterVec
	ModeSwitches    *prometheus.CounterVec
	CrossFades      prometheus.Counter
	StaleResults    prometheus.Counter
	registry        *prometheus.Registry
}

// NewRetargetMetrics はメトリクスを生成してregistryへ登録する。
func NewRetargetMetrics(registry *prometheus.Registry) (*RetargetMetrics, error) {
	m := &RetargetMetrics{registry: registry}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, fmt.Errorf("リターゲットメトリクスの登録に失敗しました: %w", err)
	}
	return m, nil
}

func (m *RetargetMetrics) initMetrics() {
	m.CompileResults = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "retarget_compile_results_total",
		Help: "Total number of clip compilations by outcome and rig family.",
	}, []string{"outcome", "family"})

	m.CompileDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "retarget_compile_duration_seconds",
		Help:    "Duration of clip compilations in seconds.",
		Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
	})

	m.MappedRatio = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "retarget_mapped_track_ratio",
		Help:    "Ratio of emitted tracks to source tracks per compiled clip.",
		Buckets: prometheus.LinearBuckets(0, 0.1, 11),
	})

	m.SkippedTracks = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "retarget_skipped_tracks_total",
		Help: "Total number of source tracks dropped during compilation by reason.",
	}, []string{"reason"})

	m.ModeSwitches = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "playback_mode_switches_total",
		Help: "Total number of accepted playback mode switches by entered mode.",
	}, []string{"mode"})

	m.CrossFades = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "playback_crossfades_total",
		Help: "Total number of clip cross-fades started.",
	})

	m.StaleResults = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "preload_stale_results_total",
		Help: "Total number of background compile results discarded as stale.",
	})
}

// RecordCompile はコンパイル1件の結果と所要時間を記録する。
func (m *RetargetMetrics) RecordCompile(family string, outcome string, durationSeconds float64) {
	m.CompileResults.WithLabelValues(outcome, family).Inc()
	m.CompileDuration.Observe(durationSeconds)
}

// ObserveMappedRatio は出力トラック比率を記録する。
func (m *RetargetMetrics) ObserveMappedRatio(ratio float64) {
	m.MappedRatio.Observe(ratio)
}

// AddSkippedTracks は理由別の除外トラック数を加算する。
func (m *RetargetMetrics) AddSkippedTracks(reason string, count int) {
	if count <= 0 {
		return
	}
	m.SkippedTracks.WithLabelValues(reason).Add(float64(count))
}

// RecordModeSwitch は受理したモード切替を記録する。
func (m *RetargetMetrics) RecordModeSwitch(mode string) {
	m.ModeSwitches.WithLabelValues(mode).Inc()
}

// IncrementCrossFades はクロスフェード開始数を加算する。
func (m *RetargetMetrics) IncrementCrossFades() {
	m.CrossFades.Inc()
}

// IncrementStaleResults は破棄した古い先読み結果数を加算する。
func (m *RetargetMetrics) IncrementStaleResults() {
	m.StaleResults.Inc()
}

// Collect はprometheus.Collectorを実装する。
func (m *RetargetMetrics) Collect(ch chan<- prometheus.Metric) {
	m.CompileResults.Collect(ch)
	ch <- m.CompileDuration
	ch <- m.MappedRatio
	m.SkippedTracks.Collect(ch)
	m.ModeSwitches.Collect(ch)
	ch <- m.CrossFades
	ch <- m.StaleResults
}

// Describe はprometheus.Collectorを実装する。
func (m *RetargetMetrics) Describe(ch chan<- *prometheus.Desc) {
	m.CompileResults.Describe(ch)
	ch <- m.CompileDuration.Desc()
	ch <- m.MappedRatio.Desc()
	m.SkippedTracks.Describe(ch)
	m.ModeSwitches.Describe(ch)
	ch <- m.CrossFades.Desc()
	ch <- m.StaleResults.Desc()
}
