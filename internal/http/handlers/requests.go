package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"brandstudio/internal/domain"
	"brandstudio/internal/pipeline"
	"brandstudio/internal/state"
)

type submitRequest struct {
	Instruction string         `json:"instruction"`
	Images      []imagePayload `json:"images"`
}

type requestStatus struct {
	ID         string                `json:"id"`
	State      state.ProcessingState `json:"state"`
	Message    string                `json:"message,omitempty"`
	Authorized bool                  `json:"authorized"`
	Strategy   *domain.BrandStrategy `json:"strategy,omitempty"`
	Directive  string                `json:"directive,omitempty"`
	Mode       domain.RenderMode     `json:"mode,omitempty"`
	Image      *imageView            `json:"image,omitempty"`
}

// SubmitRequest accepts an interactive request and processes it in the
// background. Poll GetRequest for the outcome.
func (a *App) SubmitRequest(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if !a.decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Instruction) == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "instruction is required")
		return
	}
	images, err := decodeImages(req.Images)
	if err != nil {
		a.fail(w, r, err)
		return
	}

	entry := a.Requests.Create(a.newID())
	job := pipeline.Request{Instruction: req.Instruction, Sources: images, Profile: a.Profiles.Current()}
	logger := a.Logger.With().Str("request_id", entry.ID).Logger()
	ctx := logger.WithContext(a.jobCtx)

	a.runAsync(func() {
		res, err := a.Pipeline.Process(ctx, entry.Machine, job)
		if err != nil {
			logger.Warn().Err(err).Msg("interactive request failed")
		} else {
			entry.SetResult(res)
			logger.Info().Str("platform", res.Strategy.Platform).Str("mode", string(res.Mode)).Msg("interactive request complete")
		}
		a.Requests.Touch(entry)
	})

	a.json(w, http.StatusAccepted, a.requestStatus(entry))
}

func (a *App) GetRequest(w http.ResponseWriter, r *http.Request) {
	entry, ok := a.Requests.Get(chi.URLParam(r, "id"))
	if !ok {
		a.error(w, http.StatusNotFound, "not_found", "request not found")
		return
	}
	a.json(w, http.StatusOK, a.requestStatus(entry))
}

// ResetRequest returns a finished request to idle and drops its result.
func (a *App) ResetRequest(w http.ResponseWriter, r *http.Request) {
	entry, ok := a.Requests.Get(chi.URLParam(r, "id"))
	if !ok {
		a.error(w, http.StatusNotFound, "not_found", "request not found")
		return
	}
	if err := entry.Machine.Reset(); err != nil {
		if errors.Is(err, domain.ErrInvalidTransition) {
			a.error(w, http.StatusConflict, "invalid_state", "request is still processing")
			return
		}
		a.fail(w, r, err)
		return
	}
	entry.ClearResult()
	a.Requests.Touch(entry)
	a.json(w, http.StatusOK, a.requestStatus(entry))
}

func (a *App) requestStatus(entry *state.Entry[*pipeline.Result]) requestStatus {
	snap := entry.Machine.Snapshot()
	out := requestStatus{
		ID:         entry.ID,
		State:      snap.State,
		Message:    snap.Message,
		Authorized: a.Pipeline.Authorized(),
	}
	if res, ok := entry.Result(); ok && res != nil {
		strategy := res.Strategy
		img := viewImage(res.Image)
		out.Strategy = &strategy
		out.Directive = res.Directive
		out.Mode = res.Mode
		out.Image = &img
	}
	return out
}
