package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/hibiken/asynq"
	"github.com/minio/minio-go/v7"
	"github.com/redis/go-redis/v9"

	"resumeBuilder/internal/errcode"
	"resumeBuilder/internal/export"
	"resumeBuilder/internal/resume"
	"resumeBuilder/internal/storage"
	"resumeBuilder/internal/store"
	"resumeBuilder/internal/tasks"
)

// DocumentStore 是导出任务需要的存储能力。
type DocumentStore interface {
	Get(ctx context.Context, id string) (*resume.Document, error)
	RecordExport(ctx context.Context, id string, rec store.ExportRecord) error
}

type Exporter interface {
	Export(ctx context.Context, doc *resume.Document) (*export.Artifact, error)
}

type Uploader interface {
	UploadFile(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) (*minio.UploadInfo, error)
}

type Publisher interface {
	Publish(ctx context.Context, channel string, message any) *redis.IntCmd
}

// ExportTaskHandler 负责消费文档导出任务：导出、归档、记录并通知。
type ExportTaskHandler struct {
	store     DocumentStore
	exporter  Exporter
	uploader  Uploader
	publisher Publisher
	logger    *slog.Logger
	now       func() time.Time
}

// NewExportTaskHandler 创建任务处理器。
func NewExportTaskHandler(st DocumentStore, exporter Exporter, uploader Uploader, publisher Publisher, logger *slog.Logger) *ExportTaskHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExportTaskHandler{
		store:     st,
		exporter:  exporter,
		uploader:  uploader,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// ProcessTask 实现 asynq.Handler。
func (h *ExportTaskHandler) ProcessTask(ctx context.Context, t *asynq.Task) (retErr error) {
	log := h.logger

	var payload tasks.ExportPDFPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		log.Error("unmarshal task payload failed", slog.Any("error", err))
		return fmt.Errorf("%w: %w", err, asynq.SkipRetry)
	}

	log = log.With(
		slog.String("correlation_id", payload.CorrelationID),
		slog.String("document_id", payload.DocumentID),
	)
	log.Info("starting pdf export task")

	doc, err := h.store.Get(ctx, payload.DocumentID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Warn("document not found, skipping task")
			return nil
		}
		log.Error("load document failed", slog.Any("error", err))
		return err
	}

	defer func() {
		if retErr == nil {
			return
		}
		if !errors.Is(retErr, asynq.SkipRetry) && !isFinalAsynqAttempt(ctx) {
			return
		}
		stage, _ := export.StageOf(retErr)
		notify := ExportNotifyMessage{
			Status:        StatusError,
			DocumentID:    payload.DocumentID,
			CorrelationID: payload.CorrelationID,
			Stage:         string(stage),
			ErrorCode:     export.Code(retErr),
			ErrorMessage:  strings.TrimSpace(retErr.Error()),
		}
		if err := h.publishExportNotify(context.WithoutCancel(ctx), notify); err != nil {
			log.Error("publish export error notification failed", slog.Any("error", err))
		}
	}()

	art, err := h.exporter.Export(ctx, doc)
	if err != nil {
		log.Error("export document failed", slog.Any("error", err))
		if errors.Is(err, export.ErrEmptyRaster) {
			// 空白表面重试也不会变化
			return fmt.Errorf("%w: %w", err, asynq.SkipRetry)
		}
		return err
	}

	pdfKey, previewKey := storage.NewExportKeys(doc.ID)
	if _, err := h.uploader.UploadFile(ctx, pdfKey, bytes.NewReader(art.PDF), int64(len(art.PDF)), storage.ContentTypePDF); err != nil {
		log.Error("upload pdf to minio failed", slog.Any("error", err))
		return err
	}
	if len(art.Preview) > 0 {
		if _, err := h.uploader.UploadFile(ctx, previewKey, bytes.NewReader(art.Preview), int64(len(art.Preview)), storage.ContentTypeJPG); err != nil {
			log.Warn("upload export preview failed", slog.Any("error", err))
			previewKey = ""
		}
	} else {
		previewKey = ""
	}

	rec := store.ExportRecord{
		ObjectKey:        pdfKey,
		PreviewObjectKey: previewKey,
		FileName:         art.FileName,
		Pages:            art.Pages,
		ExportedAt:       h.now(),
	}
	if err := h.store.RecordExport(ctx, doc.ID, rec); err != nil {
		log.Error("record export failed", slog.Any("error", err))
		return err
	}

	notify := ExportNotifyMessage{
		Status:        StatusCompleted,
		DocumentID:    doc.ID,
		CorrelationID: payload.CorrelationID,
		FileName:      art.FileName,
		Pages:         art.Pages,
		ErrorCode:     errcode.OK,
	}
	if err := h.publishExportNotify(ctx, notify); err != nil {
		// 归档已完成，客户端仍可通过最近导出接口取回
		log.Error("publish redis notification failed", slog.Any("error", err))
	}

	log.Info("pdf export task completed",
		slog.Int("pages", art.Pages),
		slog.String("object_key", pdfKey),
	)
	return nil
}

func (h *ExportTaskHandler) publishExportNotify(ctx context.Context, notify ExportNotifyMessage) error {
	if h.publisher == nil {
		return nil
	}
	data, err := json.Marshal(notify)
	if err != nil {
		return fmt.Errorf("marshal notification payload: %w", err)
	}
	channel := tasks.NotifyChannel(notify.DocumentID)
	if err := h.publisher.Publish(ctx, channel, data).Err(); err != nil {
		return fmt.Errorf("publish redis notification to %q: %w", channel, err)
	}
	return nil
}

func isFinalAsynqAttempt(ctx context.Context) bool {
	retryCount, ok1 := asynq.GetRetryCount(ctx)
	maxRetry, ok2 := asynq.GetMaxRetry(ctx)
	if !ok1 || !ok2 {
		return false
	}
	return retryCount >= maxRetry
}
