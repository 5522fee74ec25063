package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"

	"resumeBuilder/internal/api/middleware"
	"resumeBuilder/internal/editor"
	"resumeBuilder/internal/export"
	"resumeBuilder/internal/storage"
	"resumeBuilder/internal/store"
	"resumeBuilder/internal/tasks"
)

const (
	defaultLinkExpiry = 15 * time.Minute
	defaultRateWindow = time.Minute
)

// ExportHandler 负责同步导出、后台导出入队与归档访问。
type ExportHandler struct {
	store    *store.Store
	editors  *editor.Registry
	exporter Exporter
	archive  Archive
	queue    Enqueuer
	counter  redisRateCounter
	limits   ExportLimits
}

func NewExportHandler(deps Deps) *ExportHandler {
	limits := deps.Limits
	if limits.LinkExpiry <= 0 {
		limits.LinkExpiry = defaultLinkExpiry
	}
	if limits.RateWindow <= 0 {
		limits.RateWindow = defaultRateWindow
	}
	return &ExportHandler{
		store:    deps.Store,
		editors:  deps.Editors,
		exporter: deps.Exporter,
		archive:  deps.Archive,
		queue:    deps.Queue,
		limits:   limits,
	}
}

// contentDisposition 同时给出 ASCII 兜底名与 RFC 5987 编码的原始文件名。
func contentDisposition(name string) string {
	encoded := strings.ReplaceAll(url.QueryEscape(name), "+", "%20")
	return fmt.Sprintf(`attachment; filename="%s"; filename*=UTF-8''%s`, export.ASCIIFileName(name, ""), encoded)
}

// ExportNow 导出编辑器当前看到的内容并直接返回 PDF。
// 已有导出在执行时返回 409，失败时不返回任何文件内容。
func (h *ExportHandler) ExportNow(c *gin.Context) {
	if h.exporter == nil {
		Unavailable(c, "export is not configured")
		return
	}
	sess, err := h.editors.Open(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			NotFound(c, "document not found")
			return
		}
		_ = c.Error(err)
		Internal(c, "failed to load document")
		return
	}

	art, err := h.exporter.Export(c.Request.Context(), sess.Snapshot())
	if err != nil {
		if errors.Is(err, export.ErrExportInProgress) {
			ErrorWithCode(c, http.StatusConflict, err.Error(), export.Code(err))
			return
		}
		_ = c.Error(err)
		stage, _ := export.StageOf(err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "export failed",
			"stage": stage,
			"code":  export.Code(err),
		})
		return
	}

	c.Header("Content-Disposition", contentDisposition(art.FileName))
	c.Header("X-Export-Pages", strconv.Itoa(art.Pages))
	c.Data(http.StatusOK, storage.ContentTypePDF, art.PDF)
}

// EnqueueExport 先保存会话中待写入的修改，再投递后台导出任务。结果经由 websocket 推送。
func (h *ExportHandler) EnqueueExport(c *gin.Context) {
	if h.queue == nil {
		Unavailable(c, "background export is not configured")
		return
	}
	id := c.Param("id")
	ctx := c.Request.Context()
	log := middleware.LoggerFromContext(c)

	if h.counter != nil && h.limits.RateLimit > 0 {
		key := "rate:export:" + c.ClientIP()
		count, err := incrWithTTL(ctx, h.counter, key, h.limits.RateWindow)
		if err != nil {
			log.Warn("export rate counter unavailable", slog.Any("error", err))
		} else if count > int64(h.limits.RateLimit) {
			TooManyRequests(c, "too many export requests")
			return
		}
	}

	sess, err := h.editors.Open(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			NotFound(c, "document not found")
			return
		}
		_ = c.Error(err)
		Internal(c, "failed to load document")
		return
	}
	if err := sess.Flush(ctx); err != nil {
		_ = c.Error(err)
		Internal(c, "failed to save pending changes")
		return
	}

	correlationID := middleware.GetCorrelationID(c)
	var opts []asynq.Option
	if h.limits.MaxRetry > 0 {
		opts = append(opts, asynq.MaxRetry(h.limits.MaxRetry))
	}
	if h.limits.Timeout > 0 {
		opts = append(opts, asynq.Timeout(h.limits.Timeout))
	}
	task, err := tasks.NewExportPDFTask(id, correlationID, opts...)
	if err != nil {
		_ = c.Error(err)
		Internal(c, "failed to create task")
		return
	}
	info, err := h.queue.Enqueue(task)
	if err != nil {
		_ = c.Error(err)
		Internal(c, "failed to enqueue export")
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"message":        "export request accepted",
		"task_id":        info.ID,
		"correlation_id": correlationID,
		"channel":        tasks.NotifyChannel(id),
	})
}

// LatestExport 返回最近一次归档导出的限时下载链接。
func (h *ExportHandler) LatestExport(c *gin.Context) {
	if h.archive == nil {
		Unavailable(c, "export archive is not configured")
		return
	}
	ctx := c.Request.Context()
	rec, err := h.store.LatestExport(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			NotFound(c, "no archived export")
			return
		}
		_ = c.Error(err)
		Internal(c, "failed to query export")
		return
	}

	params := map[string]string{"response-content-disposition": contentDisposition(rec.FileName)}
	link, err := h.archive.GeneratePresignedURLWithParams(ctx, rec.ObjectKey, h.limits.LinkExpiry, params)
	if err != nil {
		_ = c.Error(err)
		Internal(c, "failed to generate download link")
		return
	}
	resp := gin.H{
		"url":        link,
		"fileName":   rec.FileName,
		"pages":      rec.Pages,
		"exportedAt": rec.ExportedAt,
		"expiresIn":  int(h.limits.LinkExpiry.Seconds()),
	}
	if rec.PreviewObjectKey != "" {
		if preview, err := h.archive.GeneratePresignedURLWithParams(ctx, rec.PreviewObjectKey, h.limits.LinkExpiry, nil); err == nil {
			resp["previewUrl"] = preview
		}
	}
	c.JSON(http.StatusOK, resp)
}

// ListExports 列出文档的归档对象，最新的在前。
func (h *ExportHandler) ListExports(c *gin.Context) {
	if h.archive == nil {
		Unavailable(c, "export archive is not configured")
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}

	objects, err := h.archive.ListObjects(c.Request.Context(), storage.ExportPrefix(c.Param("id")), limit)
	if err != nil {
		_ = c.Error(err)
		Internal(c, "failed to list exports")
		return
	}
	sort.Slice(objects, func(i, j int) bool {
		return objects[i].LastModified.After(objects[j].LastModified)
	})

	items := make([]gin.H, 0, len(objects))
	for _, obj := range objects {
		items = append(items, gin.H{
			"key":          obj.Key,
			"size":         obj.Size,
			"lastModified": obj.LastModified,
		})
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// DownloadExport 直接转发归档对象，key 必须属于该文档的导出目录。
func (h *ExportHandler) DownloadExport(c *gin.Context) {
	if h.archive == nil {
		Unavailable(c, "export archive is not configured")
		return
	}
	id := c.Param("id")
	key := c.Query("key")
	if !storage.IsExportKey(id, key) {
		BadRequest(c, "invalid export key")
		return
	}

	body, meta, err := h.archive.GetObject(c.Request.Context(), key)
	if err != nil {
		if storage.IsNoSuchKey(err) {
			NotFound(c, "export not found")
			return
		}
		_ = c.Error(err)
		Internal(c, "failed to read export")
		return
	}
	defer body.Close()

	contentType := storage.ContentTypePDF
	if strings.HasSuffix(strings.ToLower(key), ".jpg") {
		contentType = storage.ContentTypeJPG
	}
	c.DataFromReader(http.StatusOK, meta.Size, contentType, body, nil)
}
