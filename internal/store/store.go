// Package store 是以文档 id 为键的持久化存储，列表按 updatedAt 倒序。
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"resumeBuilder/internal/database"
	"resumeBuilder/internal/resume"
)

var ErrNotFound = errors.New("document not found")

// Summary 是列表视图使用的轻量记录。
type Summary struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
	ExportedAt *time.Time `json:"exportedAt,omitempty"`
}

// ExportRecord 描述最近一次归档的导出结果。
type ExportRecord struct {
	ObjectKey        string
	PreviewObjectKey string
	FileName         string
	Pages            int
	ExportedAt       time.Time
}

type Store struct {
	db  *gorm.DB
	now func() time.Time
}

func New(db *gorm.DB) *Store {
	return &Store{db: db, now: time.Now}
}

// WithClock 替换时间来源，供测试使用。
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

func toModel(doc *resume.Document) (*database.Document, error) {
	content, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return &database.Document{
		ID:        doc.ID,
		Name:      doc.Name,
		Content:   content,
		CreatedAt: doc.CreatedAt.UTC(),
		UpdatedAt: doc.UpdatedAt.UTC(),
	}, nil
}

func fromModel(m *database.Document) (*resume.Document, error) {
	var doc resume.Document
	if err := json.Unmarshal(m.Content, &doc); err != nil {
		return nil, fmt.Errorf("decode document %s: %w", m.ID, err)
	}
	doc.ID = m.ID
	doc.Name = m.Name
	doc.CreatedAt = m.CreatedAt.UTC()
	doc.UpdatedAt = m.UpdatedAt.UTC()
	return &doc, nil
}

// Create 插入新文档，时间戳沿用文档自身的值。
func (s *Store) Create(ctx context.Context, doc *resume.Document) error {
	if err := doc.Validate(); err != nil {
		return err
	}
	m, err := toModel(doc)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Create(m).Error; err != nil {
		return fmt.Errorf("create document: %w", err)
	}
	return nil
}

// Save 写入文档（不存在则插入），updatedAt 设为当前时间，createdAt 以已存记录为准。
func (s *Store) Save(ctx context.Context, doc *resume.Document) error {
	if err := doc.Validate(); err != nil {
		return err
	}
	stamped := *doc
	stamped.UpdatedAt = s.now().UTC()
	if stamped.CreatedAt.IsZero() {
		stamped.CreatedAt = stamped.UpdatedAt
	}
	m, err := toModel(&stamped)
	if err != nil {
		return err
	}
	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "content", "updated_at"}),
	}).Create(m).Error
	if err != nil {
		return fmt.Errorf("save document: %w", err)
	}
	doc.UpdatedAt = stamped.UpdatedAt
	return nil
}

func (s *Store) Get(ctx context.Context, id string) (*resume.Document, error) {
	var m database.Document
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get document: %w", err)
	}
	return fromModel(&m)
}

// List 返回全部文档摘要，最近更新的在前。
func (s *Store) List(ctx context.Context) ([]Summary, error) {
	var rows []database.Document
	err := s.db.WithContext(ctx).
		Select("id", "name", "created_at", "updated_at", "exported_at").
		Order("updated_at DESC").Order("id").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	out := make([]Summary, 0, len(rows))
	for _, r := range rows {
		out = append(out, Summary{
			ID:         r.ID,
			Name:       r.Name,
			CreatedAt:  r.CreatedAt.UTC(),
			UpdatedAt:  r.UpdatedAt.UTC(),
			ExportedAt: r.ExportedAt,
		})
	}
	return out, nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(&database.Document{})
	if res.Error != nil {
		return fmt.Errorf("delete document: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// Duplicate 复制文档到新 id，原记录不受影响。
func (s *Store) Duplicate(ctx context.Context, id string) (*resume.Document, error) {
	orig, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	dup := orig.Duplicate(s.now())
	if err := s.Create(ctx, dup); err != nil {
		return nil, err
	}
	return dup, nil
}

// RecordExport 记录归档结果，不改变 updatedAt。
func (s *Store) RecordExport(ctx context.Context, id string, rec ExportRecord) error {
	exportedAt := rec.ExportedAt.UTC()
	res := s.db.WithContext(ctx).Model(&database.Document{}).Where("id = ?", id).
		UpdateColumns(map[string]any{
			"export_object_key":  rec.ObjectKey,
			"preview_object_key": rec.PreviewObjectKey,
			"export_file_name":   rec.FileName,
			"export_pages":       rec.Pages,
			"exported_at":        &exportedAt,
		})
	if res.Error != nil {
		return fmt.Errorf("record export: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// LatestExport 返回最近一次归档；从未归档时返回 ErrNotFound。
func (s *Store) LatestExport(ctx context.Context, id string) (*ExportRecord, error) {
	var m database.Document
	err := s.db.WithContext(ctx).
		Select("id", "export_object_key", "preview_object_key", "export_file_name", "export_pages", "exported_at").
		Where("id = ?", id).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("latest export: %w", err)
	}
	if m.ExportedAt == nil || m.ExportObjectKey == "" {
		return nil, fmt.Errorf("%w: no export for %s", ErrNotFound, id)
	}
	return &ExportRecord{
		ObjectKey:        m.ExportObjectKey,
		PreviewObjectKey: m.PreviewObjectKey,
		FileName:         m.ExportFileName,
		Pages:            m.ExportPages,
		ExportedAt:       m.ExportedAt.UTC(),
	}, nil
}
