package metrics

import (
	"context"
	"errors"
	"time"

	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	taskDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "resumebuilder",
			Subsystem: "worker",
			Name:      "task_duration_seconds",
			Help:      "后台任务耗时分布（秒），按结果区分。",
			Buckets:   []float64{0.5, 1, 2, 4, 8, 16, 32, 64, 128},
		},
		[]string{"task_type", "outcome"},
	)

	tasksRunning = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "resumebuilder",
			Subsystem: "worker",
			Name:      "tasks_running",
			Help:      "当前正在处理的任务数量。",
		},
		[]string{"task_type"},
	)
)

// 任务结果标签。
const (
	outcomeOK      = "ok"
	outcomeRetry   = "retry"
	outcomeDropped = "dropped"
)

// taskOutcome 区分会被重新投递的失败和最终失败。
func taskOutcome(ctx context.Context, err error) string {
	if err == nil {
		return outcomeOK
	}
	if errors.Is(err, asynq.SkipRetry) {
		return outcomeDropped
	}
	retried, ok1 := asynq.GetRetryCount(ctx)
	maxRetry, ok2 := asynq.GetMaxRetry(ctx)
	if ok1 && ok2 && retried >= maxRetry {
		return outcomeDropped
	}
	return outcomeRetry
}

// AsynqMetricsMiddleware 记录每个导出任务的耗时与结果。
func AsynqMetricsMiddleware() asynq.MiddlewareFunc {
	return func(next asynq.Handler) asynq.Handler {
		return asynq.HandlerFunc(func(ctx context.Context, task *asynq.Task) error {
			taskType := task.Type()
			tasksRunning.WithLabelValues(taskType).Inc()
			defer tasksRunning.WithLabelValues(taskType).Dec()

			start := time.Now()
			err := next.ProcessTask(ctx, task)
			taskDuration.WithLabelValues(taskType, taskOutcome(ctx, err)).Observe(time.Since(start).Seconds())
			return err
		})
	}
}
