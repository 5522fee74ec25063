package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"resumeBuilder/internal/api/middleware"
	"resumeBuilder/internal/editor"
	"resumeBuilder/internal/render"
	"resumeBuilder/internal/resume"
	"resumeBuilder/internal/storage"
	"resumeBuilder/internal/store"
)

// DocumentHandler 负责文档的增删改查与编辑操作。
// 所有修改都经过编辑会话，由会话负责防抖保存。
type DocumentHandler struct {
	store   *store.Store
	editors *editor.Registry
	archive Archive
	now     func() time.Time
}

func NewDocumentHandler(st *store.Store, editors *editor.Registry, archive Archive) *DocumentHandler {
	return &DocumentHandler{store: st, editors: editors, archive: archive, now: time.Now}
}

type createDocumentRequest struct {
	Name string `json:"name"`
	// Blank 为 true 时创建空白文档，否则填充示例内容。
	Blank  bool   `json:"blank"`
	Preset string `json:"preset"`
}

// viewResponse 是文档的派生视图。
type viewResponse struct {
	Layout   resume.Layout       `json:"layout"`
	Sections []resume.Section    `json:"sections"`
	Columns  resume.ColumnLayout `json:"columns"`
}

// ListDocuments 按 updatedAt 倒序列出文档。
func (h *DocumentHandler) ListDocuments(c *gin.Context) {
	items, err := h.store.List(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		Internal(c, "failed to list documents")
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// CreateDocument 新建文档，默认带示例内容。
func (h *DocumentHandler) CreateDocument(c *gin.Context) {
	var req createDocumentRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			BadRequest(c, err.Error())
			return
		}
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = resume.DefaultName
	}

	now := h.now()
	var doc *resume.Document
	if req.Blank {
		doc = resume.New(name, now)
	} else {
		var err error
		if doc, err = resume.NewSample(name, now); err != nil {
			_ = c.Error(err)
			Internal(c, "failed to build sample document")
			return
		}
	}
	if req.Preset != "" {
		if err := doc.ApplyPreset(req.Preset); err != nil {
			BadRequest(c, err.Error())
			return
		}
	}

	if err := h.store.Create(c.Request.Context(), doc); err != nil {
		_ = c.Error(err)
		Internal(c, "failed to create document")
		return
	}
	c.JSON(http.StatusCreated, doc)
}

// GetDocument 返回会话中的最新状态（可能尚未保存）。
func (h *DocumentHandler) GetDocument(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, sess.Snapshot())
}

// ReplaceDocument 整体替换文档内容，id 与 createdAt 不可修改。
func (h *DocumentHandler) ReplaceDocument(c *gin.Context) {
	var incoming resume.Document
	if err := c.ShouldBindJSON(&incoming); err != nil {
		BadRequest(c, err.Error())
		return
	}
	if incoming.ID != "" && incoming.ID != c.Param("id") {
		BadRequest(c, "document id mismatch")
		return
	}
	incoming.Normalize()
	h.mutate(c, func(d *resume.Document) error {
		// 头像只能经上传接口进入文档；允许原样带回或清空。
		if a := incoming.Personal.Avatar; a != "" && a != d.Personal.Avatar {
			return fmt.Errorf("%w: avatar must be uploaded through the avatar endpoint", errBadPayload)
		}
		d.Replace(incoming)
		return nil
	})
}

// DeleteDocument 删除文档及其导出归档。先关闭会话，避免待执行的保存写回已删除的记录。
func (h *DocumentHandler) DeleteDocument(c *gin.Context) {
	id := c.Param("id")
	ctx := c.Request.Context()
	h.editors.Drop(id)

	if err := h.store.Delete(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			NotFound(c, "document not found")
			return
		}
		_ = c.Error(err)
		Internal(c, "failed to delete document")
		return
	}

	if h.archive != nil {
		if err := h.archive.DeletePrefix(ctx, storage.ExportPrefix(id)); err != nil {
			middleware.LoggerFromContext(c).Warn("delete archived exports failed", slog.Any("error", err))
		}
	}
	c.Status(http.StatusNoContent)
}

// DuplicateDocument 复制文档。会话中未保存的修改先落盘，副本与编辑器所见一致。
func (h *DocumentHandler) DuplicateDocument(c *gin.Context) {
	id := c.Param("id")
	ctx := c.Request.Context()
	if sess, ok := h.editors.Lookup(id); ok {
		if err := sess.Flush(ctx); err != nil {
			_ = c.Error(err)
			Internal(c, "failed to save pending changes")
			return
		}
	}

	dup, err := h.store.Duplicate(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			NotFound(c, "document not found")
			return
		}
		_ = c.Error(err)
		Internal(c, "failed to duplicate document")
		return
	}
	c.JSON(http.StatusCreated, dup)
}

// SaveDocument 立即保存，取消待执行的自动保存。
func (h *DocumentHandler) SaveDocument(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	if err := sess.Save(c.Request.Context()); err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save document", "status": sess.Status()})
		return
	}
	c.JSON(http.StatusOK, sess.Status())
}

func (h *DocumentHandler) GetStatus(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, sess.Status())
}

// GetView 返回按显示顺序排列的可见区块与双栏分区。
func (h *DocumentHandler) GetView(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	doc := sess.Snapshot()
	c.JSON(http.StatusOK, viewResponse{
		Layout:   doc.Theme.Layout,
		Sections: doc.VisibleOrderedSections(),
		Columns:  doc.TwoColumnLayout(),
	})
}

// GetPreview 返回导出所用的 HTML 表面。
func (h *DocumentHandler) GetPreview(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	html, err := render.HTML(sess.Snapshot())
	if err != nil {
		_ = c.Error(err)
		Internal(c, "failed to render document")
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", html)
}

// session 打开路径中 id 对应的编辑会话；失败时已写出响应。
func (h *DocumentHandler) session(c *gin.Context) (*editor.Session, bool) {
	sess, err := h.editors.Open(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			NotFound(c, "document not found")
			return nil, false
		}
		_ = c.Error(err)
		Internal(c, "failed to load document")
		return nil, false
	}
	return sess, true
}
