package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"brandstudio/internal/domain"
	"brandstudio/internal/prompt"
	"brandstudio/internal/resilience"
)

// Orchestrator renders the five slides of a story one after another.
type Orchestrator struct {
	renderer     *Renderer
	limiter      *rate.Limiter
	exporter     Exporter
	exportPolicy resilience.Policy
	logger       zerolog.Logger
	now          func() time.Time
}

// OrchestratorOption customises an Orchestrator.
type OrchestratorOption func(*Orchestrator)

// WithSlideInterval paces slide renders at most once per interval.
func WithSlideInterval(interval time.Duration) OrchestratorOption {
	return func(o *Orchestrator) {
		if interval > 0 {
			o.limiter = rate.NewLimiter(rate.Every(interval), 1)
		}
	}
}

// WithExporter enables auto-export for profiles that ask for it.
func WithExporter(exp Exporter) OrchestratorOption {
	return func(o *Orchestrator) { o.exporter = exp }
}

// WithClock overrides the completion clock.
func WithClock(now func() time.Time) OrchestratorOption {
	return func(o *Orchestrator) { o.now = now }
}

// NewOrchestrator builds an orchestrator on top of a renderer.
func NewOrchestrator(renderer *Renderer, logger zerolog.Logger, opts ...OrchestratorOption) *Orchestrator {
	o := &Orchestrator{
		renderer:     renderer,
		limiter:      rate.NewLimiter(rate.Inf, 1),
		exportPolicy: resilience.DefaultPolicy.WithLogger(logger),
		logger:       logger,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// RunStory renders every slide of story in order. A failed slide is recorded
// and the run moves on; the only error return is an invalid story or a
// cancelled context before any work started.
func (o *Orchestrator) RunStory(ctx context.Context, profile domain.BrandProfile, story domain.StorySpec) (*domain.StoryResult, error) {
	if err := story.Validate(); err != nil {
		return nil, err
	}
	logger := o.logger.With().Str("story_id", story.ID).Logger()
	logger.Info().Str("topic", story.Topic).Int("slides", len(story.Slides)).Msg("story generation started")

	result := &domain.StoryResult{
		StoryID: story.ID,
		Topic:   story.Topic,
		Slides:  make([]domain.GeneratedSlide, 0, len(story.Slides)),
	}
	autoExport := profile.AutoExport && o.exporter != nil

	for _, slide := range story.Slides {
		if err := o.limiter.Wait(ctx); err != nil {
			result.Errors = append(result.Errors, domain.SlideError{Index: slide.Index, Message: err.Error()})
			continue
		}
		generated, err := o.renderSlide(ctx, profile, slide)
		if err != nil {
			logger.Error().Err(err).Int("slide", slide.Index).Str("type", string(slide.Type)).Msg("slide failed")
			result.Errors = append(result.Errors, domain.SlideError{Index: slide.Index, Message: err.Error()})
			continue
		}
		logger.Info().Int("slide", slide.Index).Str("type", string(slide.Type)).Msg("slide generated")
		result.Slides = append(result.Slides, *generated)

		if autoExport {
			o.export(ctx, logger, story, generated, result)
		}
	}

	result.CompletedAt = o.now()
	logger.Info().
		Int("generated", len(result.Slides)).
		Int("failed", len(result.Errors)).
		Bool("partial", result.Partial()).
		Msg("story generation finished")
	return result, nil
}

// RenderSlide compiles and renders a single slide outside a story.
func (o *Orchestrator) RenderSlide(ctx context.Context, profile domain.BrandProfile, slide domain.SlideSpec) (*domain.GeneratedSlide, error) {
	if err := o.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return o.renderSlide(ctx, profile, slide)
}

func (o *Orchestrator) renderSlide(ctx context.Context, profile domain.BrandProfile, slide domain.SlideSpec) (*domain.GeneratedSlide, error) {
	directive, err := prompt.CompileSlide(profile, slide)
	if err != nil {
		return nil, err
	}
	img, err := o.renderer.RenderWithMode(ctx, RenderInput{
		Mode:        domain.RenderModeGenerate,
		Directive:   directive,
		AspectRatio: prompt.StoryAspectRatio,
	})
	if err != nil {
		return nil, err
	}
	return &domain.GeneratedSlide{
		Index:       slide.Index,
		Type:        slide.Type,
		Image:       *img,
		Prompt:      directive,
		GeneratedAt: o.now(),
	}, nil
}

func (o *Orchestrator) export(ctx context.Context, logger zerolog.Logger, story domain.StorySpec, slide *domain.GeneratedSlide, result *domain.StoryResult) {
	file := domain.ExportFile{
		Name:     SlideFileName(story.ID, slide),
		MIMEType: slide.Image.MIMEType,
		Data:     slide.Image.Data,
	}
	res, err := resilience.Retry(ctx, o.exportPolicy, func(ctx context.Context) (*domain.ExportResult, error) {
		return o.exporter.Upload(ctx, file)
	})
	if err != nil {
		logger.Warn().Err(err).Int("slide", slide.Index).Msg("slide export failed")
		result.ExportErrors = append(result.ExportErrors, domain.SlideError{Index: slide.Index, Message: err.Error()})
		return
	}
	result.Exports = append(result.Exports, *res)
}

// SlideFileName names an exported slide, e.g. "story-1_03_bridge.png".
func SlideFileName(storyID string, slide *domain.GeneratedSlide) string {
	ext := "png"
	switch slide.Image.MIMEType {
	case "image/jpeg":
		ext = "jpg"
	case "image/webp":
		ext = "webp"
	}
	if storyID == "" {
		storyID = "slide"
	}
	return fmt.Sprintf("%s_%02d_%s.%s", storyID, slide.Index, slide.Type, ext)
}
