package drive

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2"

	"brandstudio/internal/domain"
)

// SafetyMargin is subtracted from a token's expiry before it is considered stale.
const SafetyMargin = 60 * time.Second

// Consent obtains a fresh token through an interactive user grant.
type Consent interface {
	Request(ctx context.Context, clientID string) (*oauth2.Token, error)
}

// Lifecycle owns the in-memory export credential. Tokens are never refreshed
// silently; an expired token means the user must grant access again.
type Lifecycle struct {
	mu       sync.RWMutex
	clientID string
	consent  Consent
	cred     *domain.DriveCredential
	now      func() time.Time
	logger   zerolog.Logger
}

// NewLifecycle builds a lifecycle that asks consent for interactive grants.
func NewLifecycle(consent Consent, logger zerolog.Logger) *Lifecycle {
	return &Lifecycle{consent: consent, now: time.Now, logger: logger}
}

// Initialize binds the lifecycle to a client identifier. Changing the client
// drops any held credential.
func (l *Lifecycle) Initialize(clientID string) {
	clientID = strings.TrimSpace(clientID)
	l.mu.Lock()
	defer l.mu.Unlock()
	if clientID != l.clientID {
		l.cred = nil
	}
	l.clientID = clientID
}

// ClientID returns the bound client identifier.
func (l *Lifecycle) ClientID() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.clientID
}

// Initialized reports whether a client identifier is bound.
func (l *Lifecycle) Initialized() bool {
	return l.ClientID() != ""
}

// RequestInteractivePermission runs the consent flow and reports whether a
// token was granted.
func (l *Lifecycle) RequestInteractivePermission(ctx context.Context) bool {
	clientID := l.ClientID()
	if clientID == "" || l.consent == nil {
		return false
	}
	tok, err := l.consent.Request(ctx, clientID)
	if err != nil {
		l.logger.Warn().Err(err).Msg("drive consent failed")
		return false
	}
	return l.Accept(tok)
}

// Accept stores a granted token. Tokens without an access token or expiry
// are rejected.
func (l *Lifecycle) Accept(tok *oauth2.Token) bool {
	if tok == nil || strings.TrimSpace(tok.AccessToken) == "" {
		return false
	}
	expiry := tok.Expiry
	if expiry.IsZero() && tok.ExpiresIn > 0 {
		expiry = l.now().Add(time.Duration(tok.ExpiresIn) * time.Second)
	}
	if expiry.IsZero() {
		return false
	}
	l.mu.Lock()
	l.cred = &domain.DriveCredential{Token: tok.AccessToken, Expiry: expiry}
	l.mu.Unlock()
	l.logger.Info().Time("expiry", expiry).Msg("drive access granted")
	return true
}

// ValidToken returns the held credential while now < expiry - SafetyMargin.
func (l *Lifecycle) ValidToken() (domain.DriveCredential, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.cred == nil {
		return domain.DriveCredential{}, false
	}
	if !l.now().Before(l.cred.Expiry.Add(-SafetyMargin)) {
		return domain.DriveCredential{}, false
	}
	return *l.cred, true
}

// Revoke forgets the held credential, used after the store rejects it.
func (l *Lifecycle) Revoke() {
	l.mu.Lock()
	l.cred = nil
	l.mu.Unlock()
}

// Status summarises the lifecycle for display.
type Status struct {
	Initialized bool       `json:"initialized"`
	Connected   bool       `json:"connected"`
	Expiry      *time.Time `json:"expiry,omitempty"`
}

// Status reports whether a client is bound and a valid token is held.
func (l *Lifecycle) Status() Status {
	st := Status{Initialized: l.Initialized()}
	if cred, ok := l.ValidToken(); ok {
		st.Connected = true
		exp := cred.Expiry
		st.Expiry = &exp
	}
	return st
}
