package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"resumeBuilder/internal/editor"
	"resumeBuilder/internal/resume"
)

var errBadPayload = errors.New("invalid payload")

// mutate 在会话上原子地执行 fn 并校验结果；fn 或校验失败时文档保持不变。
// fn 返回 editor.ErrUnchanged 时按成功处理，响应当前文档。
func (h *DocumentHandler) mutate(c *gin.Context, fn func(d *resume.Document) error) (*resume.Document, bool) {
	sess, ok := h.session(c)
	if !ok {
		return nil, false
	}
	doc, err := sess.Apply(func(d *resume.Document) error {
		if err := fn(d); err != nil {
			return err
		}
		return d.Validate()
	})
	if err != nil {
		writeMutationError(c, err)
		return nil, false
	}
	c.JSON(http.StatusOK, doc)
	return doc, true
}

func writeMutationError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, resume.ErrUnknownSection):
		NotFound(c, err.Error())
	case errors.Is(err, errBadPayload),
		errors.Is(err, resume.ErrInvalidDocument),
		errors.Is(err, resume.ErrMissingID),
		errors.Is(err, resume.ErrDuplicateID),
		errors.Is(err, resume.ErrIncompleteReorder),
		errors.Is(err, resume.ErrUnknownPreset):
		BadRequest(c, err.Error())
	default:
		_ = c.Error(err)
		Internal(c, "failed to update document")
	}
}

type reorderRequest struct {
	IDs []string `json:"ids" binding:"required"`
	// Body 为 true 时 ids 只列出正文区块，个人信息固定在最前。
	Body bool `json:"body"`
}

// ReorderSections 按给定 id 序列重排区块。
func (h *DocumentHandler) ReorderSections(c *gin.Context) {
	var req reorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	h.mutate(c, func(d *resume.Document) error {
		if req.Body {
			return d.ReorderBody(req.IDs)
		}
		return d.ReorderByID(req.IDs)
	})
}

func (h *DocumentHandler) UpdateSection(c *gin.Context) {
	var patch resume.SectionPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		BadRequest(c, err.Error())
		return
	}
	id := c.Param("sectionId")
	h.mutate(c, func(d *resume.Document) error {
		if !d.UpdateSection(id, patch) {
			return editor.ErrUnchanged
		}
		return nil
	})
}

func (h *DocumentHandler) UpdatePersonal(c *gin.Context) {
	var patch resume.PersonalPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		BadRequest(c, err.Error())
		return
	}
	if patch.Avatar != nil && *patch.Avatar != "" {
		BadRequest(c, "avatar must be uploaded through the avatar endpoint")
		return
	}
	h.mutate(c, func(d *resume.Document) error {
		d.UpdatePersonal(patch)
		return nil
	})
}

type themeRequest struct {
	resume.ThemePatch
	// Preset 先应用预设配色，再合并其余字段。
	Preset *string `json:"preset"`
}

func (h *DocumentHandler) UpdateTheme(c *gin.Context) {
	var req themeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	h.mutate(c, func(d *resume.Document) error {
		if req.Preset != nil {
			if err := d.ApplyPreset(*req.Preset); err != nil {
				return err
			}
		}
		d.UpdateTheme(req.ThemePatch)
		return nil
	})
}

// collection 是一个条目集合的增删改操作，请求体为原始 JSON。
type collection struct {
	add    func(d *resume.Document, raw []byte) error
	update func(d *resume.Document, id string, raw []byte) (bool, error)
	remove func(d *resume.Document, id string) bool
}

var collectionNames = []string{"education", "experience", "skills", "projects", "custom-sections"}

var collections = map[string]collection{
	"education": {
		add:    addFunc(func(e *resume.Education) *string { return &e.ID }, (*resume.Document).AddEducation),
		update: updateFunc((*resume.Document).UpdateEducation),
		remove: (*resume.Document).RemoveEducation,
	},
	"experience": {
		add:    addFunc(func(e *resume.Experience) *string { return &e.ID }, (*resume.Document).AddExperience),
		update: updateFunc((*resume.Document).UpdateExperience),
		remove: (*resume.Document).RemoveExperience,
	},
	"skills": {
		add:    addFunc(func(s *resume.Skill) *string { return &s.ID }, (*resume.Document).AddSkill),
		update: updateFunc((*resume.Document).UpdateSkill),
		remove: (*resume.Document).RemoveSkill,
	},
	"projects": {
		add:    addFunc(func(p *resume.Project) *string { return &p.ID }, (*resume.Document).AddProject),
		update: updateFunc((*resume.Document).UpdateProject),
		remove: (*resume.Document).RemoveProject,
	},
	"custom-sections": {
		add:    addFunc(func(cs *resume.CustomSection) *string { return &cs.ID }, (*resume.Document).AddCustomSection),
		update: updateFunc((*resume.Document).UpdateCustomSection),
		remove: (*resume.Document).RemoveCustomSection,
	},
}

// addFunc 解码条目，缺省 id 时由服务端生成。
func addFunc[T any](idOf func(*T) *string, add func(*resume.Document, T) error) func(*resume.Document, []byte) error {
	return func(d *resume.Document, raw []byte) error {
		var e T
		if err := json.Unmarshal(raw, &e); err != nil {
			return fmt.Errorf("%w: %w", errBadPayload, err)
		}
		if id := idOf(&e); *id == "" {
			*id = resume.NewID()
		}
		return add(d, e)
	}
}

func updateFunc[P any](update func(*resume.Document, string, P) bool) func(*resume.Document, string, []byte) (bool, error) {
	return func(d *resume.Document, id string, raw []byte) (bool, error) {
		var patch P
		if err := json.Unmarshal(raw, &patch); err != nil {
			return false, fmt.Errorf("%w: %w", errBadPayload, err)
		}
		return update(d, id, patch), nil
	}
}

func readBody(c *gin.Context) ([]byte, bool) {
	raw, err := io.ReadAll(c.Request.Body)
	if err != nil || len(raw) == 0 {
		BadRequest(c, "request body required")
		return nil, false
	}
	return raw, true
}

// AddEntry 向集合追加条目；响应为修改后的完整文档。
func (h *DocumentHandler) AddEntry(name string) gin.HandlerFunc {
	col := collections[name]
	return func(c *gin.Context) {
		raw, ok := readBody(c)
		if !ok {
			return
		}
		h.mutate(c, func(d *resume.Document) error {
			return col.add(d, raw)
		})
	}
}

func (h *DocumentHandler) UpdateEntry(name string) gin.HandlerFunc {
	col := collections[name]
	return func(c *gin.Context) {
		raw, ok := readBody(c)
		if !ok {
			return
		}
		id := c.Param("entryId")
		h.mutate(c, func(d *resume.Document) error {
			found, err := col.update(d, id, raw)
			if err != nil {
				return err
			}
			if !found {
				return editor.ErrUnchanged
			}
			return nil
		})
	}
}

func (h *DocumentHandler) RemoveEntry(name string) gin.HandlerFunc {
	col := collections[name]
	return func(c *gin.Context) {
		id := c.Param("entryId")
		h.mutate(c, func(d *resume.Document) error {
			if !col.remove(d, id) {
				return editor.ErrUnchanged
			}
			return nil
		})
	}
}
