package handlers

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"

	"brandstudio/internal/domain"
	"brandstudio/internal/drive"
	"brandstudio/internal/pipeline"
	"brandstudio/internal/profile"
	"brandstudio/internal/resilience"
)

const strategyJSON = `{"platform":"Instagram Post","aspectRatio":"1:1","layoutStyle":"centered","reasoning":"square feed","refinedPrompt":"pendant on limestone"}`

type fakeService struct {
	mu         sync.Mutex
	reasonErr  error
	renderErrs map[int]error
	renders    int
}

func (f *fakeService) Reason(context.Context, domain.ReasonRequest) (string, error) {
	if f.reasonErr != nil {
		return "", f.reasonErr
	}
	return strategyJSON, nil
}

func (f *fakeService) Render(_ context.Context, req domain.RenderRequest) (*domain.Image, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.renders++
	if err := f.renderErrs[f.renders]; err != nil {
		return nil, err
	}
	return &domain.Image{Data: []byte("png-" + req.AspectRatio), MIMEType: "image/png"}, nil
}

func newTestApp(t *testing.T, svc *fakeService) (*App, http.Handler) {
	t.Helper()
	logger := zerolog.Nop()
	policy := resilience.Policy{MaxRetries: 0, InitialDelay: time.Millisecond}
	renderer := pipeline.NewRenderer(svc, policy, logger)
	app := NewApp(Options{
		Logger:       logger,
		Profiles:     profile.OpenSession(context.Background(), profile.NewMemoryStore(), logger),
		Pipeline:     pipeline.New(pipeline.NewResolver(svc, policy, logger), renderer, logger),
		Orchestrator: pipeline.NewOrchestrator(renderer, logger),
		Analyzer:     pipeline.NewAnalyzer(svc, policy, logger),
		Drive:        drive.NewLifecycle(nil, logger),
		RequestTTL:   time.Minute,
	})
	app.runAsync = func(fn func()) { fn() }

	r := chi.NewRouter()
	r.Get("/v1/healthz", app.Health)
	r.Get("/v1/profile", app.GetProfile)
	r.Put("/v1/profile", app.PutProfile)
	r.Post("/v1/strategy", app.Strategy)
	r.Post("/v1/render", app.Render)
	r.Post("/v1/requests", app.SubmitRequest)
	r.Get("/v1/requests/{id}", app.GetRequest)
	r.Post("/v1/requests/{id}/reset", app.ResetRequest)
	r.Post("/v1/stories", app.CreateStory)
	r.Get("/v1/stories/{id}", app.GetStory)
	r.Get("/v1/stories/{id}/archive", app.StoryArchive)
	r.Post("/v1/slides", app.CreateSlide)
	r.Get("/v1/slides/quick", app.QuickSlide)
	r.Get("/v1/drive/status", app.DriveStatus)
	r.Get("/v1/drive/authorize", app.DriveAuthorize)
	r.Get("/v1/drive/callback", app.DriveCallback)
	return app, r
}

func do(t *testing.T, h http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return out
}

func TestCreateStoryReportsFailedSlide(t *testing.T) {
	svc := &fakeService{renderErrs: map[int]error{
		3: &domain.ServiceError{Kind: domain.KindPermanent, Code: 400, Message: "blocked by safety filter"},
	}}
	_, h := newTestApp(t, svc)

	rec := do(t, h, http.MethodPost, "/v1/stories", map[string]any{"id": "siloam", "topic": "Pool of Siloam"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	story := decodeBody[storyView](t, rec)
	if len(story.Slides) != 4 || len(story.Errors) != 1 || story.Errors[0].Index != 3 {
		t.Fatalf("unexpected story result %+v", story)
	}
	if !story.Partial || story.CompletedAt.IsZero() {
		t.Fatalf("expected partial completed story, got %+v", story)
	}

	rec = do(t, h, http.MethodGet, "/v1/stories/siloam", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected cached story, got %d", rec.Code)
	}

	rec = do(t, h, http.MethodGet, "/v1/stories/siloam/archive", nil)
	if rec.Code != http.StatusOK || rec.Header().Get("Content-Type") != "application/zip" {
		t.Fatalf("unexpected archive response %d %q", rec.Code, rec.Header().Get("Content-Type"))
	}
	zr, err := zip.NewReader(bytes.NewReader(rec.Body.Bytes()), int64(rec.Body.Len()))
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	if len(zr.File) != 5 || zr.File[2].Name != "siloam_04_evidence.png" {
		t.Fatalf("unexpected archive entries: %d", len(zr.File))
	}
}

func TestCreateStoryRejectsInvalidSpec(t *testing.T) {
	_, h := newTestApp(t, &fakeService{})
	rec := do(t, h, http.MethodPost, "/v1/stories", map[string]any{
		"id":     "bad",
		"slides": []map[string]any{{"index": 1, "type": "hook"}},
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if rec := do(t, h, http.MethodGet, "/v1/stories/bad", nil); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown story, got %d", rec.Code)
	}
}

func TestSubmitRequestCompletesAndResets(t *testing.T) {
	_, h := newTestApp(t, &fakeService{})

	rec := do(t, h, http.MethodPost, "/v1/requests", map[string]any{"instruction": "Launch post for the pendant"})
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rec.Code, rec.Body.String())
	}
	status := decodeBody[requestStatus](t, rec)
	if status.State != "complete" || status.Image == nil || status.Strategy == nil {
		t.Fatalf("unexpected status %+v", status)
	}
	if status.Mode != domain.RenderModeGenerate || status.Strategy.AspectRatio != "1:1" {
		t.Fatalf("unexpected mode/strategy %+v", status)
	}

	rec = do(t, h, http.MethodPost, "/v1/requests/"+status.ID+"/reset", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("reset failed: %d", rec.Code)
	}
	reset := decodeBody[requestStatus](t, rec)
	if reset.State != "idle" || reset.Image != nil {
		t.Fatalf("expected idle without result, got %+v", reset)
	}
}

func TestRequestAuthorizationFailure(t *testing.T) {
	svc := &fakeService{reasonErr: &domain.ServiceError{Kind: domain.KindAuthorization, Code: 403, Message: "API key not valid"}}
	_, h := newTestApp(t, svc)

	rec := do(t, h, http.MethodPost, "/v1/requests", map[string]any{"instruction": "Launch post"})
	status := decodeBody[requestStatus](t, rec)
	if status.State != "error" || status.Authorized {
		t.Fatalf("expected error state and revoked authorization, got %+v", status)
	}

	rec = do(t, h, http.MethodPost, "/v1/strategy", map[string]any{"instruction": "Launch post"})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
	body := decodeBody[map[string]map[string]string](t, rec)
	if body["error"]["code"] != "reauthorize_required" {
		t.Fatalf("unexpected error body %+v", body)
	}
}

func TestStrategyAuthorizationRevokesFlag(t *testing.T) {
	svc := &fakeService{reasonErr: &domain.ServiceError{Kind: domain.KindAuthorization, Code: 403, Message: "API key not valid"}}
	app, h := newTestApp(t, svc)

	rec := do(t, h, http.MethodPost, "/v1/strategy", map[string]any{"instruction": "Launch post"})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
	if app.Pipeline.Authorized() {
		t.Fatalf("expected authorization revoked after strategy 403")
	}
	health := decodeBody[map[string]any](t, do(t, h, http.MethodGet, "/v1/healthz", nil))
	if health["authorized"] != false {
		t.Fatalf("health should report revoked authorization, got %v", health)
	}

	svc.reasonErr = nil
	if rec := do(t, h, http.MethodPost, "/v1/strategy", map[string]any{"instruction": "Launch post"}); rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !app.Pipeline.Authorized() {
		t.Fatalf("expected authorization restored after accepted call")
	}
}

func TestRenderAuthorizationRevokesFlag(t *testing.T) {
	svc := &fakeService{renderErrs: map[int]error{
		1: &domain.ServiceError{Kind: domain.KindAuthorization, Code: 403, Message: "permission denied"},
	}}
	app, h := newTestApp(t, svc)

	rec := do(t, h, http.MethodPost, "/v1/render", map[string]any{"directive": "gold pendant"})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
	if app.Pipeline.Authorized() {
		t.Fatalf("expected authorization revoked after render 403")
	}

	strategy := domain.BrandStrategy{Platform: "Instagram Post", AspectRatio: "1:1", RefinedPrompt: "pendant on limestone"}
	if rec := do(t, h, http.MethodPost, "/v1/render", map[string]any{"strategy": strategy}); rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !app.Pipeline.Authorized() {
		t.Fatalf("expected authorization restored after accepted render")
	}
}

func TestResetWhileIdleIsNoop(t *testing.T) {
	app, h := newTestApp(t, &fakeService{})
	entry := app.Requests.Create("r1")
	rec := do(t, h, http.MethodPost, "/v1/requests/r1/reset", nil)
	if rec.Code != http.StatusOK || entry.Machine.State() != "idle" {
		t.Fatalf("unexpected reset response %d state %s", rec.Code, entry.Machine.State())
	}
	if rec := do(t, h, http.MethodGet, "/v1/requests/missing", nil); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestQuickSlide(t *testing.T) {
	_, h := newTestApp(t, &fakeService{})

	rec := do(t, h, http.MethodGet, "/v1/slides/quick?type=cta&format=image", nil)
	if rec.Code != http.StatusOK || rec.Header().Get("Content-Type") != "image/png" {
		t.Fatalf("unexpected response %d %q", rec.Code, rec.Header().Get("Content-Type"))
	}
	if rec.Body.String() != "png-9:16" {
		t.Fatalf("expected portrait render, got %q", rec.Body.String())
	}

	rec = do(t, h, http.MethodGet, "/v1/slides/quick?topic=Hezekiah&type=bridge", nil)
	body := decodeBody[map[string]any](t, rec)
	if !strings.Contains(body["prompt"].(string), "Hezekiah") {
		t.Fatalf("prompt missing topic: %v", body["prompt"])
	}

	if rec := do(t, h, http.MethodGet, "/v1/slides/quick?type=outro", nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown type, got %d", rec.Code)
	}
}

func TestRenderRequiresDirective(t *testing.T) {
	_, h := newTestApp(t, &fakeService{})
	if rec := do(t, h, http.MethodPost, "/v1/render", map[string]any{}); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	rec := do(t, h, http.MethodPost, "/v1/render", map[string]any{"directive": "gold pendant", "aspect_ratio": "5:4"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := decodeBody[map[string]any](t, rec)
	if body["aspect_ratio"] != "1:1" {
		t.Fatalf("expected normalized ratio, got %v", body["aspect_ratio"])
	}
}

func TestRenderRejectsBadImage(t *testing.T) {
	_, h := newTestApp(t, &fakeService{})
	rec := do(t, h, http.MethodPost, "/v1/render", map[string]any{
		"directive": "edit",
		"images":    []map[string]string{{"data": "not base64!"}},
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestProfileRoundTrip(t *testing.T) {
	app, h := newTestApp(t, &fakeService{})
	p := domain.DefaultBrandProfile()
	p.Name = "Acme"
	p.DriveClientID = "client-1"
	if rec := do(t, h, http.MethodPut, "/v1/profile", p); rec.Code != http.StatusOK {
		t.Fatalf("save failed: %d", rec.Code)
	}
	got := decodeBody[domain.BrandProfile](t, do(t, h, http.MethodGet, "/v1/profile", nil))
	if got.Name != "Acme" {
		t.Fatalf("profile not saved: %+v", got)
	}
	if app.Drive.ClientID() != "client-1" {
		t.Fatalf("drive client not initialized")
	}
}

func TestProfileFreshSessionHasEmptyReferences(t *testing.T) {
	_, h := newTestApp(t, &fakeService{})
	rec := do(t, h, http.MethodGet, "/v1/profile", nil)
	if strings.Contains(rec.Body.String(), `"reference_images":null`) {
		t.Fatalf("reference images should serialize as a list: %s", rec.Body.String())
	}
	got := decodeBody[domain.BrandProfile](t, rec)
	if got.ReferenceImages == nil {
		t.Fatalf("expected empty reference list")
	}
}

func TestDriveConsentFlow(t *testing.T) {
	tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"ya29.token","token_type":"Bearer","expires_in":3600}`))
	}))
	defer tokenSrv.Close()

	app, h := newTestApp(t, &fakeService{})
	app.Drive.Initialize("client-1")
	app.DriveOAuth = &oauth2.Config{
		ClientID:     "client-1",
		ClientSecret: "secret",
		RedirectURL:  "http://localhost/v1/drive/callback",
		Endpoint:     oauth2.Endpoint{AuthURL: tokenSrv.URL + "/auth", TokenURL: tokenSrv.URL + "/token"},
	}

	rec := do(t, h, http.MethodGet, "/v1/drive/authorize?redirect=false", nil)
	authURL, err := url.Parse(decodeBody[map[string]string](t, rec)["auth_url"])
	if err != nil {
		t.Fatalf("parse auth url: %v", err)
	}
	state := authURL.Query().Get("state")
	if state == "" {
		t.Fatalf("auth url missing state: %s", authURL)
	}

	if rec := do(t, h, http.MethodGet, "/v1/drive/callback?state=forged&code=x", nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for forged state, got %d", rec.Code)
	}

	rec = do(t, h, http.MethodGet, "/v1/drive/callback?state="+state+"&code=abc", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("callback failed: %d %s", rec.Code, rec.Body.String())
	}
	if !app.Drive.Status().Connected {
		t.Fatalf("expected connected drive")
	}
}

func TestDriveAuthorizeNotConfigured(t *testing.T) {
	_, h := newTestApp(t, &fakeService{})
	if rec := do(t, h, http.MethodGet, "/v1/drive/authorize", nil); rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}
