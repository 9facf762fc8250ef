package drive

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// Scope limits access to files this app creates.
const Scope = "https://www.googleapis.com/auth/drive.file"

// OAuthConfig returns the authorization-code configuration for a client.
func OAuthConfig(clientID, clientSecret, redirectURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Scopes:       []string{Scope},
		Endpoint:     google.Endpoint,
	}
}

// PromptFunc shows the consent URL to the user and returns the pasted code.
type PromptFunc func(ctx context.Context, authURL string) (code string, err error)

// CodeConsent runs the authorization-code flow with a caller supplied prompt,
// e.g. a terminal that prints the URL and reads the code.
type CodeConsent struct {
	ClientSecret string
	RedirectURL  string
	Prompt       PromptFunc
}

// Request implements Consent.
func (c *CodeConsent) Request(ctx context.Context, clientID string) (*oauth2.Token, error) {
	if c.Prompt == nil {
		return nil, errors.New("drive consent: no prompt configured")
	}
	cfg := OAuthConfig(clientID, c.ClientSecret, c.RedirectURL)
	state, err := NewState()
	if err != nil {
		return nil, err
	}
	code, err := c.Prompt(ctx, cfg.AuthCodeURL(state, oauth2.AccessTypeOnline, oauth2.SetAuthURLParam("prompt", "consent")))
	if err != nil {
		return nil, err
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, errors.New("drive consent: empty authorization code")
	}
	tok, err := cfg.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("drive consent: exchange code: %w", err)
	}
	return tok, nil
}

// NewState returns a random anti-forgery state value.
func NewState() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("drive consent: state: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
