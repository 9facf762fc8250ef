package profile

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"brandstudio/internal/domain"
)

// Session holds the active profile for the running process. It is loaded
// once at start and replaced wholesale on save.
type Session struct {
	store  Store
	logger zerolog.Logger

	mu      sync.RWMutex
	current domain.BrandProfile
}

// OpenSession loads the stored profile, falling back to defaults on error.
func OpenSession(ctx context.Context, store Store, logger zerolog.Logger) *Session {
	s := &Session{store: store, logger: logger, current: domain.DefaultBrandProfile()}
	p, err := store.Load(ctx)
	if err != nil {
		logger.Warn().Err(err).Msg("profile load failed, using defaults")
		return s
	}
	s.current = p
	return s
}

// Current returns a copy of the active profile.
func (s *Session) Current() domain.BrandProfile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clone(s.current)
}

// Save persists p and then makes it active. On a store error the previous
// profile stays active.
func (s *Session) Save(ctx context.Context, p domain.BrandProfile) (domain.BrandProfile, error) {
	if p.ReferenceImages == nil {
		p.ReferenceImages = []domain.ReferenceImage{}
	}
	if err := s.store.Save(ctx, p); err != nil {
		return s.Current(), err
	}
	s.mu.Lock()
	s.current = clone(p)
	s.mu.Unlock()
	s.logger.Info().Str("brand", p.Name).Int("reference_images", len(p.ReferenceImages)).Msg("profile saved")
	return clone(p), nil
}
