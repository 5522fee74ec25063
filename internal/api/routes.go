package api

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"resumeBuilder/internal/avatar"
	"resumeBuilder/internal/editor"
	"resumeBuilder/internal/export"
	"resumeBuilder/internal/resume"
	"resumeBuilder/internal/storage"
	"resumeBuilder/internal/store"
)

// Exporter 同步导出一份文档。
type Exporter interface {
	Export(ctx context.Context, doc *resume.Document) (*export.Artifact, error)
}

// Archive 是导出归档需要的对象存储能力。
type Archive interface {
	GeneratePresignedURLWithParams(ctx context.Context, objectKey string, duration time.Duration, params map[string]string) (string, error)
	ListObjects(ctx context.Context, prefix string, limit int) ([]storage.ObjectMeta, error)
	GetObject(ctx context.Context, objectKey string) (io.ReadCloser, storage.ObjectMeta, error)
	DeletePrefix(ctx context.Context, prefix string) error
}

// Enqueuer 把后台导出任务投递到队列。
type Enqueuer interface {
	Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// ExportLimits 控制后台导出的频率与重试。
type ExportLimits struct {
	RateLimit  int
	RateWindow time.Duration
	LinkExpiry time.Duration
	MaxRetry   int
	Timeout    time.Duration
}

// Deps 汇总路由依赖。Archive、Queue、Redis 为 nil 时对应接口返回 503。
type Deps struct {
	Store    *store.Store
	Editors  *editor.Registry
	Exporter Exporter
	Avatars  *avatar.Ingestor
	Archive  Archive
	Queue    Enqueuer
	Redis    *redis.Client
	Limits   ExportLimits
	Logger   *slog.Logger
	// AllowedOrigins 为空时 websocket 只接受同源请求。
	AllowedOrigins []string
}

// RegisterRoutes 注册 /v1 下的业务路由。
func RegisterRoutes(router *gin.Engine, deps Deps) {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	docs := NewDocumentHandler(deps.Store, deps.Editors, deps.Archive)
	themes := NewThemeHandler()
	avatars := NewAvatarHandler(deps.Editors, deps.Avatars)
	exports := NewExportHandler(deps)
	var counter redisRateCounter
	var subscriber redisSubscriber
	if deps.Redis != nil {
		counter = deps.Redis
		subscriber = deps.Redis
	}
	exports.counter = counter
	ws := NewWsHandler(subscriber, deps.Logger, deps.AllowedOrigins)

	v1 := router.Group("/v1")
	{
		v1.GET("/ws", ws.HandleConnection)
		v1.GET("/themes", themes.ListThemes)
		v1.GET("/themes/:id", themes.GetTheme)

		documents := v1.Group("/documents")
		{
			documents.GET("", docs.ListDocuments)
			documents.POST("", docs.CreateDocument)
			documents.GET("/:id", docs.GetDocument)
			documents.PUT("/:id", docs.ReplaceDocument)
			documents.DELETE("/:id", docs.DeleteDocument)
			documents.POST("/:id/duplicate", docs.DuplicateDocument)
			documents.POST("/:id/save", docs.SaveDocument)
			documents.GET("/:id/status", docs.GetStatus)
			documents.GET("/:id/view", docs.GetView)
			documents.GET("/:id/preview", docs.GetPreview)

			documents.PUT("/:id/sections", docs.ReorderSections)
			documents.PATCH("/:id/sections/:sectionId", docs.UpdateSection)
			documents.PATCH("/:id/personal", docs.UpdatePersonal)
			documents.PATCH("/:id/theme", docs.UpdateTheme)

			for _, name := range collectionNames {
				documents.POST("/:id/"+name, docs.AddEntry(name))
				documents.PATCH("/:id/"+name+"/:entryId", docs.UpdateEntry(name))
				documents.DELETE("/:id/"+name+"/:entryId", docs.RemoveEntry(name))
			}

			documents.POST("/:id/avatar", avatars.UploadAvatar)
			documents.DELETE("/:id/avatar", avatars.RemoveAvatar)

			documents.POST("/:id/export", exports.ExportNow)
			documents.POST("/:id/export/async", exports.EnqueueExport)
			documents.GET("/:id/exports", exports.ListExports)
			documents.GET("/:id/exports/latest", exports.LatestExport)
			documents.GET("/:id/exports/file", exports.DownloadExport)
		}
	}
}
