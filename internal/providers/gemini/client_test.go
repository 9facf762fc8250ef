package gemini

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"brandstudio/internal/domain"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client, err := NewClient(context.Background(), Options{
		APIKey:     "test-key",
		BaseURL:    srv.URL,
		HTTPClient: srv.Client(),
	})
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	return client
}

func TestReasonReturnsCandidateText(t *testing.T) {
	var body map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, DefaultReasoningModel+":generateContent") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"{\"platform\":\"Amazon\"}"}]}}]}`))
	})

	text, err := client.Reason(context.Background(), domain.ReasonRequest{
		SystemInstruction: "be a strategist",
		Text:              "make a hero shot",
		Images:            []domain.Image{{Data: []byte{1, 2, 3}, MIMEType: "image/jpeg"}},
		ResponseFields:    []string{"platform"},
	})
	if err != nil {
		t.Fatalf("Reason returned error: %v", err)
	}
	if text != `{"platform":"Amazon"}` {
		t.Fatalf("unexpected text %q", text)
	}
	if _, ok := body["systemInstruction"]; !ok {
		t.Fatalf("system instruction not sent: %v", body)
	}
}

func TestRenderReturnsInlineImage(t *testing.T) {
	payload := base64.StdEncoding.EncodeToString([]byte("png-bytes"))
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, DefaultImageModel+":generateContent") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"here"},{"inlineData":{"mimeType":"image/png","data":"` + payload + `"}}]}}]}`))
	})

	img, err := client.Render(context.Background(), domain.RenderRequest{Mode: domain.RenderModeGenerate, Directive: "draw", AspectRatio: "9:16"})
	if err != nil {
		t.Fatalf("Render returned error: %v", err)
	}
	if string(img.Data) != "png-bytes" || img.MIMEType != "image/png" {
		t.Fatalf("unexpected image %+v", img)
	}
}

func TestRenderWithoutImageData(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"sorry"}]}}]}`))
	})
	_, err := client.Render(context.Background(), domain.RenderRequest{Directive: "draw"})
	if !errors.Is(err, domain.ErrNoImageData) {
		t.Fatalf("expected ErrNoImageData, got %v", err)
	}
}

func TestServiceErrorsAreClassified(t *testing.T) {
	tests := []struct {
		status int
		body   string
		kind   domain.Kind
	}{
		{http.StatusServiceUnavailable, `{"error":{"code":503,"message":"The model is overloaded.","status":"UNAVAILABLE"}}`, domain.KindTransient},
		{http.StatusTooManyRequests, `{"error":{"code":429,"message":"quota","status":"RESOURCE_EXHAUSTED"}}`, domain.KindTransient},
		{http.StatusForbidden, `{"error":{"code":403,"message":"denied","status":"PERMISSION_DENIED"}}`, domain.KindAuthorization},
		{http.StatusBadRequest, `{"error":{"code":400,"message":"bad","status":"INVALID_ARGUMENT"}}`, domain.KindPermanent},
	}
	for _, tt := range tests {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(tt.status)
			_, _ = w.Write([]byte(tt.body))
		})
		_, err := client.Reason(context.Background(), domain.ReasonRequest{Text: "x"})
		var se *domain.ServiceError
		if !errors.As(err, &se) {
			t.Fatalf("status %d: expected ServiceError, got %v", tt.status, err)
		}
		if se.Kind != tt.kind || se.Code != tt.status {
			t.Fatalf("status %d: got kind %s code %d", tt.status, se.Kind, se.Code)
		}
	}
}

func TestKindForStatusMessageHints(t *testing.T) {
	if KindForStatus(0, "", "server busy, try later") != domain.KindTransient {
		t.Fatalf("busy hint should be transient")
	}
	if KindForStatus(404, "NOT_FOUND", "model not found") != domain.KindPermanent {
		t.Fatalf("404 should be permanent")
	}
}
