package editor

import (
	"context"
	"errors"
	"sync"
)

// Registry 按文档 id 复用会话，同一文档在进程内只有一个会话。
type Registry struct {
	store Store
	opts  Options

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewRegistry(store Store, opts Options) *Registry {
	opts.withDefaults()
	return &Registry{store: store, opts: opts, sessions: map[string]*Session{}}
}

// Open 返回已有会话，或从存储加载文档后新建会话。
func (r *Registry) Open(ctx context.Context, id string) (*Session, error) {
	r.mu.Lock()
	if s, ok := r.sessions[id]; ok {
		r.mu.Unlock()
		return s, nil
	}
	r.mu.Unlock()

	doc, err := r.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[id]; ok {
		return s, nil
	}
	s := NewSession(doc, r.store, r.opts)
	r.sessions[id] = s
	return s, nil
}

// Lookup 返回已打开的会话，不触发加载。
func (r *Registry) Lookup(id string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	return s, ok
}

// Drop 关闭并移除会话，待执行的自动保存被丢弃。删除文档前必须调用，避免写回已删除的记录。
func (r *Registry) Drop(id string) {
	r.mu.Lock()
	s, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()
	if ok {
		s.Close()
	}
}

// FlushAll 立即执行所有待执行的自动保存，用于进程退出前。
func (r *Registry) FlushAll(ctx context.Context) error {
	r.mu.Lock()
	sessions := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		sessions = append(sessions, s)
	}
	r.mu.Unlock()

	var errs []error
	for _, s := range sessions {
		if err := s.Flush(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close 刷新后关闭全部会话。
func (r *Registry) Close(ctx context.Context) error {
	err := r.FlushAll(ctx)
	r.mu.Lock()
	sessions := r.sessions
	r.sessions = map[string]*Session{}
	r.mu.Unlock()
	for _, s := range sessions {
		s.Close()
	}
	return err
}
