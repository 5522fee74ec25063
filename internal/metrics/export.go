package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	exportDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "resumebuilder",
			Subsystem: "export",
			Name:      "duration_seconds",
			Help:      "PDF 导出耗时分布（秒）。",
			Buckets:   []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32, 64},
		},
		[]string{"result"},
	)

	exportPages = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "resumebuilder",
			Subsystem: "export",
			Name:      "pages",
			Help:      "成功导出的 PDF 页数。",
			Buckets:   []float64{1, 2, 3, 4, 6, 8},
		},
	)

	exportsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "resumebuilder",
			Subsystem: "export",
			Name:      "in_flight",
			Help:      "当前正在执行的导出数量。",
		},
	)

	exportRejected = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "resumebuilder",
			Subsystem: "export",
			Name:      "rejected_total",
			Help:      "因已有导出在执行而被拒绝的请求数。",
		},
	)
)

// ExportStarted 标记一次导出开始，返回的函数在结束时调用。
// stage 为空表示成功，否则为失败所在的阶段。
func ExportStarted() func(stage string, pages int) {
	start := time.Now()
	exportsInFlight.Inc()
	return func(stage string, pages int) {
		exportsInFlight.Dec()
		result := "ok"
		if stage != "" {
			result = stage
		}
		exportDuration.WithLabelValues(result).Observe(time.Since(start).Seconds())
		if stage == "" {
			exportPages.Observe(float64(pages))
		}
	}
}

// ExportRejected 记录一次被单飞保护拒绝的导出。
func ExportRejected() {
	exportRejected.Inc()
}
