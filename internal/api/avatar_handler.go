package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"resumeBuilder/internal/api/middleware"
	"resumeBuilder/internal/avatar"
	"resumeBuilder/internal/editor"
	"resumeBuilder/internal/resume"
	"resumeBuilder/internal/store"
)

// multipart 头部与边界的额外余量
const multipartOverhead = 64 << 10

// AvatarHandler 处理头像上传：校验、可选病毒扫描、缩放后嵌入个人信息。
type AvatarHandler struct {
	editors *editor.Registry
	avatars *avatar.Ingestor
}

func NewAvatarHandler(editors *editor.Registry, avatars *avatar.Ingestor) *AvatarHandler {
	return &AvatarHandler{editors: editors, avatars: avatars}
}

// UploadAvatar 处理 multipart 字段 file。任何校验失败都不会修改文档。
func (h *AvatarHandler) UploadAvatar(c *gin.Context) {
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

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.avatars.MaxBytes()+multipartOverhead)
	file, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			TooLarge(c, avatar.ErrTooLarge.Error())
			return
		}
		BadRequest(c, "missing file")
		return
	}
	if file.Size > h.avatars.MaxBytes() {
		TooLarge(c, avatar.ErrTooLarge.Error())
		return
	}

	reader, err := file.Open()
	if err != nil {
		_ = c.Error(err)
		Internal(c, "failed to open file")
		return
	}
	defer reader.Close()

	res, err := h.avatars.Ingest(reader, file.Size)
	if err != nil {
		switch {
		case errors.Is(err, avatar.ErrTooLarge):
			TooLarge(c, err.Error())
		case errors.Is(err, avatar.ErrNotImage), errors.Is(err, avatar.ErrInfected):
			BadRequest(c, err.Error())
		default:
			middleware.LoggerFromContext(c).Error("ingest avatar failed", slog.Any("error", err))
			Internal(c, "failed to process image")
		}
		return
	}

	doc, err := sess.Apply(func(d *resume.Document) error {
		d.UpdatePersonal(resume.PersonalPatch{Avatar: &res.DataURI})
		return nil
	})
	if err != nil {
		_ = c.Error(err)
		Internal(c, "failed to update document")
		return
	}

	middleware.LoggerFromContext(c).Info("avatar attached",
		slog.String("source_mime", res.SourceMIME),
		slog.Int("source_bytes", res.SourceBytes),
		slog.Int("width", res.Width),
		slog.Int("height", res.Height),
	)
	c.JSON(http.StatusOK, gin.H{
		"avatar":   gin.H{"width": res.Width, "height": res.Height, "sourceMime": res.SourceMIME},
		"document": doc,
	})
}

func (h *AvatarHandler) RemoveAvatar(c *gin.Context) {
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
	empty := ""
	doc, err := sess.Apply(func(d *resume.Document) error {
		d.UpdatePersonal(resume.PersonalPatch{Avatar: &empty})
		return nil
	})
	if err != nil {
		_ = c.Error(err)
		Internal(c, "failed to update document")
		return
	}
	c.JSON(http.StatusOK, doc)
}
