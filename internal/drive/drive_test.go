package drive

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2"

	"brandstudio/internal/domain"
)

type staticConsent struct {
	tok *oauth2.Token
	err error
}

func (c staticConsent) Request(context.Context, string) (*oauth2.Token, error) {
	return c.tok, c.err
}

func fixedLifecycle(now time.Time, consent Consent) *Lifecycle {
	l := NewLifecycle(consent, zerolog.Nop())
	l.now = func() time.Time { return now }
	return l
}

func TestValidTokenSafetyMargin(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	short := fixedLifecycle(now, nil)
	short.Accept(&oauth2.Token{AccessToken: "a", Expiry: now.Add(30 * time.Second)})
	if _, ok := short.ValidToken(); ok {
		t.Fatalf("token expiring in 30s must be invalid")
	}

	long := fixedLifecycle(now, nil)
	long.Accept(&oauth2.Token{AccessToken: "a", Expiry: now.Add(120 * time.Second)})
	cred, ok := long.ValidToken()
	if !ok || cred.Token != "a" {
		t.Fatalf("token expiring in 120s must be valid")
	}
}

func TestAcceptUsesExpiresIn(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	l := fixedLifecycle(now, nil)
	if !l.Accept(&oauth2.Token{AccessToken: "a", ExpiresIn: 3599}) {
		t.Fatalf("token rejected")
	}
	cred, ok := l.ValidToken()
	if !ok || !cred.Expiry.Equal(now.Add(3599*time.Second)) {
		t.Fatalf("unexpected credential %+v %v", cred, ok)
	}
	if l.Accept(&oauth2.Token{}) {
		t.Fatalf("empty token must be rejected")
	}
}

func TestRequestInteractivePermission(t *testing.T) {
	now := time.Now()
	l := fixedLifecycle(now, staticConsent{tok: &oauth2.Token{AccessToken: "granted", Expiry: now.Add(time.Hour)}})
	if l.RequestInteractivePermission(context.Background()) {
		t.Fatalf("uninitialized lifecycle must not grant")
	}
	l.Initialize("client-1")
	if !l.RequestInteractivePermission(context.Background()) {
		t.Fatalf("expected grant")
	}
	if st := l.Status(); !st.Connected || !st.Initialized {
		t.Fatalf("unexpected status %+v", st)
	}
	l.Initialize("client-2")
	if _, ok := l.ValidToken(); ok {
		t.Fatalf("changing client must drop the credential")
	}

	denied := fixedLifecycle(now, staticConsent{err: errors.New("user closed popup")})
	denied.Initialize("client-1")
	if denied.RequestInteractivePermission(context.Background()) {
		t.Fatalf("denied consent must report false")
	}
}

func TestExporterUpload(t *testing.T) {
	var auth, path, body string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		path = r.URL.Path
		raw, _ := io.ReadAll(r.Body)
		body = string(raw)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"file-123","webViewLink":"https://drive.google.com/file/d/file-123/view"}`))
	}))
	defer srv.Close()

	exp := NewExporter(ExporterOptions{HTTPClient: srv.Client(), Endpoint: srv.URL, Logger: zerolog.Nop()})
	res, err := exp.Upload(context.Background(),
		domain.DriveCredential{Token: "tok", Expiry: time.Now().Add(time.Hour)},
		domain.ExportFile{Name: "slide.png", MIMEType: "image/png", Data: []byte("png")})
	if err != nil {
		t.Fatalf("Upload returned error: %v", err)
	}
	if res.ID != "file-123" || !strings.Contains(res.ViewLink, "file-123") {
		t.Fatalf("unexpected result %+v", res)
	}
	if auth != "Bearer tok" {
		t.Fatalf("unexpected auth header %q", auth)
	}
	if !strings.Contains(path, "upload") {
		t.Fatalf("expected media upload path, got %q", path)
	}
	if !strings.Contains(body, "slide.png") {
		t.Fatalf("metadata not sent")
	}
}

func TestExporterClassifiesForbidden(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":{"code":403,"message":"Forbidden"}}`))
	}))
	defer srv.Close()

	now := time.Now()
	l := fixedLifecycle(now, nil)
	l.Accept(&oauth2.Token{AccessToken: "tok", Expiry: now.Add(time.Hour)})
	session := NewSessionExporter(l, NewExporter(ExporterOptions{HTTPClient: srv.Client(), Endpoint: srv.URL}))

	_, err := session.Upload(context.Background(), domain.ExportFile{Name: "a.png", MIMEType: "image/png", Data: []byte("x")})
	if !errors.Is(err, domain.ErrAuthorization) || !domain.IsAuthorization(err) {
		t.Fatalf("expected authorization error, got %v", err)
	}
	if _, ok := l.ValidToken(); ok {
		t.Fatalf("rejected credential should be revoked")
	}
}

func TestSessionExporterRequiresToken(t *testing.T) {
	session := NewSessionExporter(NewLifecycle(nil, zerolog.Nop()), NewExporter(ExporterOptions{}))
	_, err := session.Upload(context.Background(), domain.ExportFile{Name: "a.png"})
	if !errors.Is(err, domain.ErrAuthRequired) {
		t.Fatalf("expected ErrAuthRequired, got %v", err)
	}
}
