// Package ratelimit provides a windowed request limiter whose counter state
// lives in an injected store rather than package-level maps, so instances are
// isolated and testable.
package ratelimit

import (
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Window tracks request counts for one key within the current window.
type Window struct {
	Count   int
	ResetAt time.Time
}

// CounterStore holds per-key windows. Implementations do not need to be
// goroutine safe; the Limiter serializes access.
type CounterStore interface {
	Get(key string) (Window, bool)
	Set(key string, w Window)
}

// MapStore is an unbounded CounterStore backed by a plain map.
type MapStore struct {
	windows map[string]Window
}

func NewMapStore() *MapStore {
	return &MapStore{windows: make(map[string]Window)}
}

func (s *MapStore) Get(key string) (Window, bool) {
	w, ok := s.windows[key]
	return w, ok
}

func (s *MapStore) Set(key string, w Window) {
	s.windows[key] = w
}

// LRUStore bounds the number of tracked keys; the least recently used key is
// evicted, which at worst grants an evicted client a fresh window.
type LRUStore struct {
	cache *lru.Cache[string, Window]
}

func NewLRUStore(size int) (*LRUStore, error) {
	cache, err := lru.New[string, Window](size)
	if err != nil {
		return nil, err
	}
	return &LRUStore{cache: cache}, nil
}

func (s *LRUStore) Get(key string) (Window, bool) {
	return s.cache.Get(key)
}

func (s *LRUStore) Set(key string, w Window) {
	s.cache.Add(key, w)
}

// Limiter allows at most limit requests per key per window. A nil Limiter is
// disabled: Allow always returns true.
type Limiter struct {
	mu     sync.Mutex
	limit  int
	window time.Duration
	store  CounterStore
	now    func() time.Time
}

// New creates a Limiter over the given store. If limit <= 0 the limiter is
// disabled and New returns nil.
func New(limit int, window time.Duration, store CounterStore) *Limiter {
	if limit <= 0 {
		return nil
	}
	if store == nil {
		store = NewMapStore()
	}
	return &Limiter{
		limit:  limit,
		window: window,
		store:  store,
		now:    time.Now,
	}
}

// Allow reports whether the request identified by key fits in the current
// window, counting it when it does.
func (l *Limiter) Allow(key string) bool {
	if l == nil {
		return true
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	w, ok := l.store.Get(key)
	if !ok || now.After(w.ResetAt) {
		l.store.Set(key, Window{Count: 1, ResetAt: now.Add(l.window)})
		return true
	}
	if w.Count >= l.limit {
		return false
	}
	w.Count++
	l.store.Set(key, w)
	return true
}
