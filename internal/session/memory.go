package session

import (
	"context"
	"sync"
	"time"

	"github.com/hitoshi/shopfront/internal/model"
)

// DefaultJanitorInterval は期限切れセッションを掃除する間隔のデフォルト値。
const DefaultJanitorInterval = 10 * time.Minute

// MemoryBackend はプロセス内のマップにセッションを保持するバックエンド。
// プロセス再起動でセッションは失われる。
type MemoryBackend struct {
	mu       sync.RWMutex
	sessions map[string]model.Session
	nowFunc  func() time.Time

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

// NewMemoryBackend はMemoryBackendを生成し、期限切れセッションの掃除を開始する。
// intervalが0以下の場合はDefaultJanitorIntervalを使用する。
func NewMemoryBackend(interval time.Duration) *MemoryBackend {
	if interval <= 0 {
		interval = DefaultJanitorInterval
	}
	b := &MemoryBackend{
		sessions: make(map[string]model.Session),
		nowFunc:  time.Now,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	go b.janitor(interval)
	return b
}

func (b *MemoryBackend) Load(_ context.Context, id string) (*model.Session, error) {
	b.mu.RLock()
	s, ok := b.sessions[id]
	b.mu.RUnlock()

	if !ok || s.IsExpired(b.nowFunc()) {
		return nil, nil
	}
	return &s, nil
}

func (b *MemoryBackend) Save(_ context.Context, s *model.Session) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if s.IsExpired(b.nowFunc()) {
		delete(b.sessions, s.ID)
		return nil
	}
	b.sessions[s.ID] = *s
	return nil
}

func (b *MemoryBackend) Delete(_ context.Context, id string) error {
	b.mu.Lock()
	delete(b.sessions, id)
	b.mu.Unlock()
	return nil
}

// Close は掃除goroutineを停止する。複数回呼んでも安全。
func (b *MemoryBackend) Close() error {
	b.stopOnce.Do(func() {
		close(b.stop)
		<-b.done
	})
	return nil
}

// Len は保持しているセッション数を返す（期限切れで未掃除のものを含む）。
func (b *MemoryBackend) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.sessions)
}

// evictExpired は期限切れセッションを削除し、削除件数を返す。
func (b *MemoryBackend) evictExpired() int {
	now := b.nowFunc()

	b.mu.Lock()
	defer b.mu.Unlock()

	evicted := 0
	for id, s := range b.sessions {
		if s.IsExpired(now) {
			delete(b.sessions, id)
			evicted++
		}
	}
	return evicted
}

func (b *MemoryBackend) janitor(interval time.Duration) {
	defer close(b.done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-b.stop:
			return
		case <-ticker.C:
			b.evictExpired()
		}
	}
}

// compile-time interface check
var _ Backend = (*MemoryBackend)(nil)
