package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskOutcome(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, outcomeOK, taskOutcome(ctx, nil))
	assert.Equal(t, outcomeDropped, taskOutcome(ctx, fmt.Errorf("bad payload: %w", asynq.SkipRetry)))
	// 不在 asynq 处理上下文中时无法得知重试次数，按可重试处理。
	assert.Equal(t, outcomeRetry, taskOutcome(ctx, errors.New("upload failed")))
}

func TestAsynqMetricsMiddleware_PassesErrorThrough(t *testing.T) {
	boom := errors.New("boom")
	h := AsynqMetricsMiddleware()(asynq.HandlerFunc(func(context.Context, *asynq.Task) error {
		return boom
	}))
	err := h.ProcessTask(context.Background(), asynq.NewTask("export:test", nil))
	require.ErrorIs(t, err, boom)
	assert.Zero(t, testutil.ToFloat64(tasksRunning.WithLabelValues("export:test")))
}

func TestGinMiddleware_UsesRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(GinMiddleware())
	r.GET("/v1/documents/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	for _, path := range []string{"/v1/documents/a", "/v1/documents/b", "/nowhere"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, 2, testutil.CollectAndCount(requestDuration, "resumebuilder_http_request_duration_seconds"))
	assert.Zero(t, testutil.ToFloat64(requestsInFlight))
}

func TestExportStarted(t *testing.T) {
	before := testutil.ToFloat64(exportRejected)
	ExportRejected()
	assert.Equal(t, before+1, testutil.ToFloat64(exportRejected))

	done := ExportStarted()
	assert.Equal(t, float64(1), testutil.ToFloat64(exportsInFlight))
	done("", 2)
	assert.Zero(t, testutil.ToFloat64(exportsInFlight))
}
