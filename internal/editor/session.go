// Package editor 维护打开中的文档编辑会话：串行化的原子修改、显式保存与防抖自动保存。
package editor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"resumeBuilder/internal/autosave"
	"resumeBuilder/internal/resume"
)

var ErrClosed = errors.New("editor session closed")

// ErrUnchanged 由 Apply 的 fn 返回，表示没有任何修改（例如按不存在的 id 更新）。
// Apply 此时返回当前快照，不刷新 updatedAt，也不安排保存。
var ErrUnchanged = errors.New("document unchanged")

// Status 是会话的保存状态。
type Status string

const (
	StatusIdle   Status = "idle"
	StatusSaving Status = "saving"
	StatusSaved  Status = "saved"
	StatusError  Status = "error"
)

// Store 是会话需要的持久化能力。
type Store interface {
	Get(ctx context.Context, id string) (*resume.Document, error)
	Save(ctx context.Context, doc *resume.Document) error
}

// StatusInfo 是对外展示的保存状态快照。
type StatusInfo struct {
	DocumentID   string    `json:"documentId"`
	Status       Status    `json:"status"`
	Version      uint64    `json:"version"`
	SavedVersion uint64    `json:"savedVersion"`
	Dirty        bool      `json:"dirty"`
	Pending      bool      `json:"pending"`
	Error        string    `json:"error,omitempty"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type Options struct {
	Delay       time.Duration
	SaveTimeout time.Duration
	Now         func() time.Time
	Logger      *slog.Logger
}

func (o *Options) withDefaults() {
	if o.Delay <= 0 {
		o.Delay = autosave.DefaultDelay
	}
	if o.SaveTimeout <= 0 {
		o.SaveTimeout = 10 * time.Second
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
}

// Session 持有一份文档的内存状态。所有修改在副本上完成后整体替换，
// 读者看不到部分应用的修改。
type Session struct {
	store  Store
	opts   Options
	logger *slog.Logger

	mu           sync.Mutex
	doc          *resume.Document
	version      uint64
	savedVersion uint64
	status       Status
	lastErr      error

	// saveMu 串行化写入，Close 借它等待进行中的保存结束。
	saveMu sync.Mutex
	closed bool

	debounce *autosave.Debouncer
}

func NewSession(doc *resume.Document, store Store, opts Options) *Session {
	opts.withDefaults()
	s := &Session{
		store:  store,
		opts:   opts,
		logger: opts.Logger.With(slog.String("document_id", doc.ID)),
		doc:    doc.Clone(),
		status: StatusIdle,
	}
	s.debounce = autosave.New(opts.Delay, s.autoSave)
	return s
}

func (s *Session) ID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.ID
}

// Snapshot 返回当前文档的深拷贝。
func (s *Session) Snapshot() *resume.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.Clone()
}

// Apply 在副本上执行 fn，成功后替换文档、刷新 updatedAt 并安排自动保存。
// fn 返回错误时文档保持不变。
func (s *Session) Apply(fn func(d *resume.Document) error) (*resume.Document, error) {
	s.mu.Lock()
	next := s.doc.Clone()
	if err := fn(next); err != nil {
		if errors.Is(err, ErrUnchanged) {
			out := s.doc.Clone()
			s.mu.Unlock()
			return out, nil
		}
		s.mu.Unlock()
		return nil, err
	}
	next.ID = s.doc.ID
	next.CreatedAt = s.doc.CreatedAt
	next.Touch(s.opts.Now())
	s.doc = next
	s.version++
	s.status = StatusIdle
	s.lastErr = nil
	out := next.Clone()
	s.mu.Unlock()

	s.debounce.Trigger()
	return out, nil
}

// Save 立即持久化当前快照。保存期间到来的修改使状态保持 idle，等待下一次保存。
func (s *Session) Save(ctx context.Context) error {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()
	if s.closed {
		return ErrClosed
	}

	s.mu.Lock()
	snap := s.doc.Clone()
	ver := s.version
	s.status = StatusSaving
	s.mu.Unlock()

	err := s.store.Save(ctx, snap)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.status = StatusError
		s.lastErr = err
		return fmt.Errorf("save document %s: %w", snap.ID, err)
	}
	if ver > s.savedVersion {
		s.savedVersion = ver
	}
	if s.version == ver {
		s.status = StatusSaved
	} else {
		s.status = StatusIdle
	}
	return nil
}

func (s *Session) autoSave() {
	ctx, cancel := context.WithTimeout(context.Background(), s.opts.SaveTimeout)
	defer cancel()
	if err := s.Save(ctx); err != nil {
		if errors.Is(err, ErrClosed) {
			return
		}
		s.logger.Error("auto save failed", slog.Any("error", err))
		return
	}
	s.logger.Debug("auto saved")
}

// Flush 若有待执行的自动保存则立即执行。
func (s *Session) Flush(ctx context.Context) error {
	if !s.debounce.Cancel() {
		return nil
	}
	return s.Save(ctx)
}

// Status 返回当前保存状态。
func (s *Session) Status() StatusInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	info := StatusInfo{
		DocumentID:   s.doc.ID,
		Status:       s.status,
		Version:      s.version,
		SavedVersion: s.savedVersion,
		Dirty:        s.version != s.savedVersion,
		Pending:      s.debounce.Pending(),
		UpdatedAt:    s.doc.UpdatedAt,
	}
	if s.lastErr != nil {
		info.Error = s.lastErr.Error()
	}
	return info
}

// Close 取消待执行的自动保存并等待进行中的保存结束；之后的保存返回 ErrClosed。
func (s *Session) Close() {
	s.debounce.Stop()
	s.saveMu.Lock()
	s.closed = true
	s.saveMu.Unlock()
}
