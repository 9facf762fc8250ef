package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"brandstudio/internal/domain"
	"brandstudio/internal/prompt"
	"brandstudio/internal/resilience"
)

var strategyFields = []string{"platform", "aspectRatio", "layoutStyle", "reasoning", "refinedPrompt"}

// Resolver runs the reasoning stage that picks platform, aspect ratio and
// layout and writes the refined render directive.
type Resolver struct {
	svc    GenerationService
	policy resilience.Policy
	logger zerolog.Logger
}

// NewResolver wires a resolver with the default retry policy.
func NewResolver(svc GenerationService, policy resilience.Policy, logger zerolog.Logger) *Resolver {
	return &Resolver{svc: svc, policy: policy.WithLogger(logger), logger: logger}
}

// Resolve asks the reasoning model for a strategy. All user images are sent;
// brand references are capped at prompt.MaxStrategyReferences.
func (r *Resolver) Resolve(ctx context.Context, instruction string, profile domain.BrandProfile, images []domain.Image) (*domain.BrandStrategy, error) {
	if strings.TrimSpace(instruction) == "" {
		return nil, fmt.Errorf("%w: instruction is required", domain.ErrInvalidRequest)
	}
	refs, err := DecodeReferences(profile.ReferenceImages, prompt.MaxStrategyReferences)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err)
	}

	req := domain.ReasonRequest{
		SystemInstruction: prompt.SystemInstruction(profile),
		Text:              prompt.StrategyRequest(instruction, profile, len(images)),
		Images:            append(append([]domain.Image{}, images...), refs...),
		ResponseFields:    strategyFields,
		OptionalFields:    []string{"featuredProduct"},
	}

	raw, err := resilience.Retry(ctx, r.policy, func(ctx context.Context) (string, error) {
		return r.svc.Reason(ctx, req)
	})
	if err != nil {
		return nil, err
	}

	strategy, err := parseModelPayload[domain.BrandStrategy](raw)
	if err != nil || strings.TrimSpace(strategy.RefinedPrompt) == "" {
		r.logger.Warn().Err(err).Int("payload_len", len(raw)).Msg("strategy payload unusable")
		return nil, domain.ErrNoStrategy
	}
	if strings.TrimSpace(strategy.AspectRatio) == "" {
		if rule, ok := prompt.RuleFor(strategy.Platform); ok {
			strategy.AspectRatio = rule.AspectRatio
		}
	}
	if strings.TrimSpace(strategy.LayoutStyle) == "" {
		if rule, ok := prompt.RuleFor(strategy.Platform); ok {
			strategy.LayoutStyle = rule.LayoutStyle
		}
	}

	r.logger.Info().
		Str("platform", strategy.Platform).
		Str("aspect_ratio", strategy.AspectRatio).
		Str("layout", strategy.LayoutStyle).
		Int("user_images", len(images)).
		Int("reference_images", len(refs)).
		Msg("strategy resolved")
	return &strategy, nil
}
