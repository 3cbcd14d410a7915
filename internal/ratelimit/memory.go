package ratelimit

import (
	"context"
	"sync"
	"time"
)

var _ Store = (*MemoryStore)(nil)

// MemoryStore держит окна в памяти процесса. Истёкшие окна удаляет Sweep (см. Run).
type MemoryStore struct {
	mu      sync.Mutex
	windows map[string]*Window
}

// NewMemoryStore создаёт пустое хранилище.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{windows: make(map[string]*Window)}
}

// Hit открывает новое окно, если его нет или оно истекло, иначе увеличивает счётчик.
func (s *MemoryStore) Hit(_ context.Context, clientID string, limit int, window time.Duration, now time.Time) (Window, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.windows[clientID]
	if !ok || w.Elapsed(now) {
		w = &Window{ClientID: clientID, Start: now, Duration: window}
		s.windows[clientID] = w
	}
	w.Count++
	w.Limit = limit
	return *w, nil
}

// Sweep удаляет окна, истёкшие к моменту now, и возвращает их число.
func (s *MemoryStore) Sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for id, w := range s.windows {
		if w.Elapsed(now) {
			delete(s.windows, id)
			n++
		}
	}
	return n
}

// Len — число живых окон.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.windows)
}

// Run периодически вызывает Sweep, пока не отменён ctx.
func (s *MemoryStore) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			s.Sweep(now)
		}
	}
}
