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

// Analyzer extracts a visual style and product description from brand
// reference images.
type Analyzer struct {
	svc    GenerationService
	policy resilience.Policy
	logger zerolog.Logger
}

func NewAnalyzer(svc GenerationService, policy resilience.Policy, logger zerolog.Logger) *Analyzer {
	return &Analyzer{svc: svc, policy: policy.WithLogger(logger), logger: logger}
}

// Analyze sends every reference image to the reasoning model.
func (a *Analyzer) Analyze(ctx context.Context, refs []domain.ReferenceImage) (*domain.BrandAnalysis, error) {
	if len(refs) == 0 {
		return nil, fmt.Errorf("%w: no images provided for analysis", domain.ErrInvalidRequest)
	}
	images, err := DecodeReferences(refs, 0)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err)
	}
	req := domain.ReasonRequest{
		Text:           prompt.AnalysisInstruction,
		Images:         images,
		ResponseFields: []string{"visualStyle", "productDescription"},
	}
	raw, err := resilience.Retry(ctx, a.policy, func(ctx context.Context) (string, error) {
		return a.svc.Reason(ctx, req)
	})
	if err != nil {
		return nil, err
	}
	analysis, err := parseModelPayload[domain.BrandAnalysis](raw)
	if err != nil {
		return nil, fmt.Errorf("%w: brand analysis payload: %v", domain.ErrProviderFailure, err)
	}
	if strings.TrimSpace(analysis.VisualStyle) == "" && strings.TrimSpace(analysis.ProductDescription) == "" {
		return nil, fmt.Errorf("%w: brand analysis returned nothing", domain.ErrProviderFailure)
	}
	a.logger.Info().Int("images", len(images)).Msg("brand assets analyzed")
	return &analysis, nil
}
