package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"brandstudio/internal/domain"
	"brandstudio/internal/pipeline"
	"brandstudio/internal/prompt"
	"brandstudio/pkg/zip"
)

type storyRequest struct {
	domain.StorySpec
	// Copy overrides the default text of a slide type when Slides is empty.
	Copy map[domain.SlideType]string `json:"copy,omitempty"`
}

type slideView struct {
	Index       int              `json:"index"`
	Type        domain.SlideType `json:"type"`
	Prompt      string           `json:"prompt"`
	GeneratedAt time.Time        `json:"generated_at"`
	Image       imageView        `json:"image"`
}

type storyView struct {
	StoryID      string                `json:"story_id"`
	Topic        string                `json:"topic"`
	Partial      bool                  `json:"partial"`
	Slides       []slideView           `json:"slides"`
	Errors       []domain.SlideError   `json:"errors"`
	Exports      []domain.ExportResult `json:"exports,omitempty"`
	ExportErrors []domain.SlideError   `json:"export_errors,omitempty"`
	CompletedAt  time.Time             `json:"completed_at"`
}

func viewSlide(s domain.GeneratedSlide) slideView {
	return slideView{Index: s.Index, Type: s.Type, Prompt: s.Prompt, GeneratedAt: s.GeneratedAt, Image: viewImage(s.Image)}
}

func viewStory(res *domain.StoryResult) storyView {
	out := storyView{
		StoryID:      res.StoryID,
		Topic:        res.Topic,
		Partial:      res.Partial(),
		Slides:       make([]slideView, 0, len(res.Slides)),
		Errors:       res.Errors,
		Exports:      res.Exports,
		ExportErrors: res.ExportErrors,
		CompletedAt:  res.CompletedAt,
	}
	if out.Errors == nil {
		out.Errors = []domain.SlideError{}
	}
	for _, s := range res.Slides {
		out.Slides = append(out.Slides, viewSlide(s))
	}
	return out
}

// CreateStory renders a five-slide story synchronously. Failed slides are
// reported in errors while the response stays 200.
func (a *App) CreateStory(w http.ResponseWriter, r *http.Request) {
	var req storyRequest
	if !a.decode(w, r, &req) {
		return
	}
	spec := req.StorySpec
	if strings.TrimSpace(spec.ID) == "" {
		spec.ID = a.newID()
	}
	if len(spec.Slides) == 0 {
		spec = prompt.DefaultStory(spec.ID, spec.Topic, req.Copy)
	}
	result, err := a.Orchestrator.RunStory(r.Context(), a.Profiles.Current(), spec)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	entry := a.Stories.Create(result.StoryID)
	entry.SetResult(result)
	a.json(w, http.StatusOK, viewStory(result))
}

func (a *App) GetStory(w http.ResponseWriter, r *http.Request) {
	result, ok := a.story(chi.URLParam(r, "id"))
	if !ok {
		a.error(w, http.StatusNotFound, "not_found", "story not found")
		return
	}
	a.json(w, http.StatusOK, viewStory(result))
}

// StoryArchive zips the generated slides of a story with a manifest.
func (a *App) StoryArchive(w http.ResponseWriter, r *http.Request) {
	result, ok := a.story(chi.URLParam(r, "id"))
	if !ok {
		a.error(w, http.StatusNotFound, "not_found", "story not found")
		return
	}
	if len(result.Slides) == 0 {
		a.error(w, http.StatusConflict, "empty_story", "story has no generated slides")
		return
	}
	assets := make([]zip.Asset, 0, len(result.Slides))
	for i := range result.Slides {
		slide := &result.Slides[i]
		assets = append(assets, zip.Asset{
			Filename: pipeline.SlideFileName(result.StoryID, slide),
			MIME:     slide.Image.MIMEType,
			Data:     slide.Image.Data,
		})
	}
	archive, err := zip.ArchiveAssets(assets, map[string]any{
		"story_id":     result.StoryID,
		"topic":        result.Topic,
		"errors":       result.Errors,
		"completed_at": result.CompletedAt,
	})
	if err != nil {
		a.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=story-%s.zip", result.StoryID))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(archive)
}

func (a *App) story(id string) (*domain.StoryResult, bool) {
	entry, ok := a.Stories.Get(id)
	if !ok {
		return nil, false
	}
	res, ok := entry.Result()
	return res, ok && res != nil
}
