package pipeline

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/rs/zerolog"

	"brandstudio/internal/domain"
	"brandstudio/internal/resilience"
)

var supportedAspectRatios = []string{"1:1", "3:4", "4:3", "9:16", "16:9"}

// NormalizeAspectRatio maps a free-form ratio onto one the render model accepts.
func NormalizeAspectRatio(s string) string {
	s = strings.TrimSpace(s)
	switch {
	case slices.Contains(supportedAspectRatios, s):
		return s
	case strings.Contains(s, "16:9"):
		return "16:9"
	case strings.Contains(s, "9:16"):
		return "9:16"
	default:
		return "1:1"
	}
}

// RenderInput is an explicit-mode render call. Sources are edited; References
// only inform style.
type RenderInput struct {
	Mode        domain.RenderMode
	Sources     []domain.Image
	References  []domain.Image
	Directive   string
	AspectRatio string
}

// ModeFor returns edit when sources are present, generate otherwise.
func ModeFor(sources []domain.Image) domain.RenderMode {
	if len(sources) > 0 {
		return domain.RenderModeEdit
	}
	return domain.RenderModeGenerate
}

// Renderer runs the image-producing stage.
type Renderer struct {
	svc    GenerationService
	policy resilience.Policy
	logger zerolog.Logger
}

// NewRenderer wires a renderer; callers normally pass resilience.RenderPolicy.
func NewRenderer(svc GenerationService, policy resilience.Policy, logger zerolog.Logger) *Renderer {
	return &Renderer{svc: svc, policy: policy.WithLogger(logger), logger: logger}
}

// Render produces one image from a directive. Supplied images are treated
// as edit sources.
func (r *Renderer) Render(ctx context.Context, images []domain.Image, directive, aspectRatio string) (*domain.Image, error) {
	return r.RenderWithMode(ctx, RenderInput{
		Mode:        ModeFor(images),
		Sources:     images,
		Directive:   directive,
		AspectRatio: aspectRatio,
	})
}

// RenderWithMode produces one image with an explicit generate or edit mode.
func (r *Renderer) RenderWithMode(ctx context.Context, in RenderInput) (*domain.Image, error) {
	if strings.TrimSpace(in.Directive) == "" {
		return nil, fmt.Errorf("%w: directive is required", domain.ErrInvalidRequest)
	}
	mode := in.Mode
	if mode == "" {
		mode = ModeFor(in.Sources)
	}
	if mode == domain.RenderModeEdit && len(in.Sources) == 0 {
		return nil, fmt.Errorf("%w: edit mode needs a source image", domain.ErrInvalidRequest)
	}

	req := domain.RenderRequest{
		Mode:        mode,
		Directive:   in.Directive,
		Images:      append(append([]domain.Image{}, in.Sources...), in.References...),
		AspectRatio: NormalizeAspectRatio(in.AspectRatio),
	}
	img, err := resilience.Retry(ctx, r.policy, func(ctx context.Context) (*domain.Image, error) {
		return r.svc.Render(ctx, req)
	})
	if err != nil {
		return nil, err
	}
	if img == nil || len(img.Data) == 0 {
		return nil, domain.ErrNoImageData
	}
	if img.MIMEType == "" {
		img.MIMEType = "image/png"
	}
	r.logger.Debug().
		Str("mode", string(mode)).
		Str("aspect_ratio", req.AspectRatio).
		Int("bytes", len(img.Data)).
		Msg("image rendered")
	return img, nil
}
