package handlers

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"

	"brandstudio/internal/domain"
	"brandstudio/internal/drive"
	"brandstudio/internal/pipeline"
	"brandstudio/internal/profile"
	"brandstudio/internal/state"
)

const maxBodyBytes = 32 << 20

// App carries the services shared by every handler.
type App struct {
	Logger       zerolog.Logger
	Profiles     *profile.Session
	Pipeline     *pipeline.Pipeline
	Orchestrator *pipeline.Orchestrator
	Analyzer     *pipeline.Analyzer
	Requests     *state.Registry[*pipeline.Result]
	Stories      *state.Registry[*domain.StoryResult]
	Drive        *drive.Lifecycle
	DriveOAuth   *oauth2.Config

	jobCtx      context.Context
	oauthStates *gocache.Cache
	newID       func() string
	runAsync    func(func())
}

// Options configures NewApp.
type Options struct {
	Logger       zerolog.Logger
	Profiles     *profile.Session
	Pipeline     *pipeline.Pipeline
	Orchestrator *pipeline.Orchestrator
	Analyzer     *pipeline.Analyzer
	Drive        *drive.Lifecycle
	DriveOAuth   *oauth2.Config
	RequestTTL   time.Duration
	// JobContext bounds background requests; cancel it on shutdown.
	JobContext context.Context
}

func NewApp(opts Options) *App {
	jobCtx := opts.JobContext
	if jobCtx == nil {
		jobCtx = context.Background()
	}
	return &App{
		Logger:       opts.Logger,
		Profiles:     opts.Profiles,
		Pipeline:     opts.Pipeline,
		Orchestrator: opts.Orchestrator,
		Analyzer:     opts.Analyzer,
		Requests:     state.NewRegistry[*pipeline.Result](opts.RequestTTL),
		Stories:      state.NewRegistry[*domain.StoryResult](opts.RequestTTL),
		Drive:        opts.Drive,
		DriveOAuth:   opts.DriveOAuth,
		jobCtx:       jobCtx,
		oauthStates:  gocache.New(10*time.Minute, 5*time.Minute),
		newID:        uuid.NewString,
		runAsync:     func(fn func()) { go fn() },
	}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, errCode, message string) {
	a.json(w, code, map[string]any{
		"error": map[string]string{"code": errCode, "message": message},
	})
}

func (a *App) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return false
	}
	return true
}

// fail maps a pipeline error onto a status and error code.
func (a *App) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, code := classify(err)
	logger := zerolog.Ctx(r.Context())
	if logger.GetLevel() == zerolog.Disabled {
		logger = &a.Logger
	}
	if status >= http.StatusInternalServerError {
		logger.Error().Err(err).Str("code", code).Msg("request failed")
	} else {
		logger.Warn().Err(err).Str("code", code).Msg("request rejected")
	}
	message := err.Error()
	if code == "reauthorize_required" {
		message = "the generation service rejected the API key; re-authorize and retry"
	}
	a.error(w, status, code, message)
}

func classify(err error) (int, string) {
	switch {
	case domain.IsAuthorization(err):
		return http.StatusForbidden, "reauthorize_required"
	case errors.Is(err, domain.ErrAuthRequired):
		return http.StatusUnauthorized, "drive_auth_required"
	case errors.Is(err, domain.ErrInvalidRequest),
		errors.Is(err, domain.ErrInvalidStory),
		errors.Is(err, domain.ErrUnknownSlideType):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, domain.ErrInvalidTransition):
		return http.StatusConflict, "invalid_state"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "timeout"
	case errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable, "canceled"
	case domain.IsTransient(err):
		return http.StatusServiceUnavailable, "service_unavailable"
	case errors.Is(err, domain.ErrNoStrategy):
		return http.StatusBadGateway, "no_strategy"
	case errors.Is(err, domain.ErrNoImageData):
		return http.StatusBadGateway, "no_image"
	case errors.Is(err, domain.ErrProviderFailure):
		return http.StatusBadGateway, "provider_error"
	}
	var svcErr *domain.ServiceError
	if errors.As(err, &svcErr) {
		return http.StatusBadGateway, "provider_error"
	}
	return http.StatusInternalServerError, "internal"
}

type imagePayload struct {
	Data     string `json:"data"`
	MIMEType string `json:"mime_type"`
}

func decodeImages(in []imagePayload) ([]domain.Image, error) {
	out := make([]domain.Image, 0, len(in))
	for i, p := range in {
		data := strings.TrimSpace(p.Data)
		mime := strings.TrimSpace(p.MIMEType)
		if strings.HasPrefix(data, "data:") {
			if comma := strings.IndexByte(data, ','); comma > 0 {
				header := strings.TrimSuffix(strings.TrimPrefix(data[:comma], "data:"), ";base64")
				if mime == "" {
					mime = header
				}
				data = data[comma+1:]
			}
		}
		raw, err := base64.StdEncoding.DecodeString(data)
		if err != nil || len(raw) == 0 {
			return nil, fmt.Errorf("%w: image %d is not valid base64", domain.ErrInvalidRequest, i+1)
		}
		if mime == "" {
			mime = http.DetectContentType(raw)
		}
		out = append(out, domain.Image{Data: raw, MIMEType: mime})
	}
	return out, nil
}

type imageView struct {
	MIMEType string `json:"mime_type"`
	Data     string `json:"data"`
}

func viewImage(img domain.Image) imageView {
	return imageView{MIMEType: img.MIMEType, Data: base64.StdEncoding.EncodeToString(img.Data)}
}

// writeImage answers with raw bytes when format=image, JSON otherwise.
func (a *App) writeImage(w http.ResponseWriter, r *http.Request, img domain.Image, body map[string]any) {
	if r.URL.Query().Get("format") == "image" {
		w.Header().Set("Content-Type", img.MIMEType)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(img.Data)
		return
	}
	if body == nil {
		body = map[string]any{}
	}
	body["image"] = viewImage(img)
	a.json(w, http.StatusOK, body)
}
