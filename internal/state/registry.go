package state

import (
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Entry is one tracked request: its machine and, once available, its result.
type Entry[T any] struct {
	ID        string
	Machine   *Machine
	CreatedAt time.Time

	mu     sync.RWMutex
	result T
	set    bool
}

// SetResult stores the request outcome.
func (e *Entry[T]) SetResult(v T) {
	e.mu.Lock()
	e.result = v
	e.set = true
	e.mu.Unlock()
}

// Result returns the stored outcome, if any.
func (e *Entry[T]) Result() (T, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.result, e.set
}

// ClearResult drops the stored outcome, used on reset.
func (e *Entry[T]) ClearResult() {
	e.mu.Lock()
	var zero T
	e.result = zero
	e.set = false
	e.mu.Unlock()
}

// Registry keeps per-request entries in a TTL cache so abandoned requests
// age out on their own.
type Registry[T any] struct {
	cache *gocache.Cache
	ttl   time.Duration
}

// NewRegistry builds a registry whose entries expire after ttl.
func NewRegistry[T any](ttl time.Duration) *Registry[T] {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &Registry[T]{
		cache: gocache.New(ttl, ttl/2),
		ttl:   ttl,
	}
}

// Create registers a fresh idle entry under id.
func (r *Registry[T]) Create(id string) *Entry[T] {
	e := &Entry[T]{ID: id, Machine: NewMachine(), CreatedAt: time.Now()}
	r.cache.Set(id, e, gocache.DefaultExpiration)
	return e
}

// Get returns the entry for id.
func (r *Registry[T]) Get(id string) (*Entry[T], bool) {
	v, ok := r.cache.Get(id)
	if !ok {
		return nil, false
	}
	e, ok := v.(*Entry[T])
	return e, ok
}

// Touch extends the lifetime of an entry.
func (r *Registry[T]) Touch(e *Entry[T]) {
	r.cache.Set(e.ID, e, gocache.DefaultExpiration)
}

// Delete removes an entry.
func (r *Registry[T]) Delete(id string) {
	r.cache.Delete(id)
}

// Len reports the number of live entries.
func (r *Registry[T]) Len() int {
	return r.cache.ItemCount()
}
