package profile

import (
	"context"
	"sync"

	"brandstudio/internal/domain"
)

// DefaultKey identifies the single operator profile.
const DefaultKey = "default"

// Store persists the brand profile. Load returns the default profile when
// nothing has been saved, and merges stored values over the defaults.
type Store interface {
	Save(ctx context.Context, p domain.BrandProfile) error
	Load(ctx context.Context) (domain.BrandProfile, error)
}

// MemoryStore keeps the profile in process memory.
type MemoryStore struct {
	mu    sync.RWMutex
	saved *domain.BrandProfile
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Save(_ context.Context, p domain.BrandProfile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := clone(p)
	m.saved = &cp
	return nil
}

func (m *MemoryStore) Load(_ context.Context) (domain.BrandProfile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.saved == nil {
		return domain.DefaultBrandProfile(), nil
	}
	return domain.MergeOverDefaults(clone(*m.saved)), nil
}

func clone(p domain.BrandProfile) domain.BrandProfile {
	out := p
	if p.ReferenceImages != nil {
		out.ReferenceImages = append(make([]domain.ReferenceImage, 0, len(p.ReferenceImages)), p.ReferenceImages...)
	}
	if p.Typography != nil {
		t := *p.Typography
		out.Typography = &t
	}
	return out
}
