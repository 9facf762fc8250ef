package handlers

import (
	"net/http"
	"strings"

	"brandstudio/internal/domain"
	"brandstudio/internal/prompt"
)

// CreateSlide compiles and renders one slide outside a story.
func (a *App) CreateSlide(w http.ResponseWriter, r *http.Request) {
	var spec domain.SlideSpec
	if !a.decode(w, r, &spec) {
		return
	}
	t, err := domain.ParseSlideType(string(spec.Type))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	spec.Type = t
	if spec.Index == 0 {
		spec.Index = t.Position()
	}
	if strings.TrimSpace(spec.Topic) == "" {
		spec.Topic = prompt.DefaultTopic
	}
	if spec.EmotionalTarget == "" {
		spec.EmotionalTarget = domain.DefaultEmotion(t)
	}
	a.renderSlide(w, r, spec)
}

// QuickSlide renders a slide from query parameters, filling default copy.
func (a *App) QuickSlide(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	raw := q.Get("type")
	if raw == "" {
		raw = string(domain.SlideHook)
	}
	t, err := domain.ParseSlideType(raw)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	spec := prompt.DefaultSlide(q.Get("topic"), t)
	if text := q.Get("text"); text != "" {
		spec.TextCopy = text
	}
	if brief := q.Get("brief"); brief != "" {
		spec.VisualBrief = brief
	}
	a.renderSlide(w, r, spec)
}

func (a *App) renderSlide(w http.ResponseWriter, r *http.Request, spec domain.SlideSpec) {
	slide, err := a.Orchestrator.RenderSlide(r.Context(), a.Profiles.Current(), spec)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.writeImage(w, r, slide.Image, map[string]any{
		"index":  slide.Index,
		"type":   slide.Type,
		"prompt": slide.Prompt,
	})
}
