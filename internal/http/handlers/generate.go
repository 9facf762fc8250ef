package handlers

import (
	"net/http"
	"strings"

	"brandstudio/internal/domain"
	"brandstudio/internal/pipeline"
	"brandstudio/internal/prompt"
)

type strategyRequest struct {
	Instruction string         `json:"instruction"`
	Images      []imagePayload `json:"images"`
}

func (a *App) Strategy(w http.ResponseWriter, r *http.Request) {
	var req strategyRequest
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
	strategy, err := a.Pipeline.Resolve(r.Context(), req.Instruction, a.Profiles.Current(), images)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, strategy)
}

type renderRequest struct {
	Directive   string         `json:"directive"`
	AspectRatio string         `json:"aspect_ratio"`
	Images      []imagePayload `json:"images"`
	// Strategy, when set, builds the directive from the profile instead.
	Strategy *domain.BrandStrategy `json:"strategy,omitempty"`
}

func (a *App) Render(w http.ResponseWriter, r *http.Request) {
	var req renderRequest
	if !a.decode(w, r, &req) {
		return
	}
	images, err := decodeImages(req.Images)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	directive := strings.TrimSpace(req.Directive)
	aspect := req.AspectRatio
	mode := pipeline.ModeFor(images)
	if req.Strategy != nil {
		profile := a.Profiles.Current()
		refs, err := pipeline.DecodeReferences(profile.ReferenceImages, prompt.MaxStrategyReferences)
		if err != nil {
			a.fail(w, r, err)
			return
		}
		directive = prompt.RenderDirective(*req.Strategy, mode, len(images), len(refs), profile)
		if aspect == "" {
			aspect = req.Strategy.AspectRatio
		}
		img, err := a.Pipeline.RenderWithMode(r.Context(), pipeline.RenderInput{
			Mode: mode, Sources: images, References: refs, Directive: directive, AspectRatio: aspect,
		})
		if err != nil {
			a.fail(w, r, err)
			return
		}
		a.writeImage(w, r, *img, map[string]any{"mode": mode, "directive": directive})
		return
	}
	if directive == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "directive or strategy is required")
		return
	}
	img, err := a.Pipeline.Render(r.Context(), images, directive, aspect)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.writeImage(w, r, *img, map[string]any{"mode": mode, "aspect_ratio": pipeline.NormalizeAspectRatio(aspect)})
}
