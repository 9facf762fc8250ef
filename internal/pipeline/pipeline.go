package pipeline

import (
	"context"
	"sync/atomic"

	"github.com/rs/zerolog"

	"brandstudio/internal/domain"
	"brandstudio/internal/prompt"
	"brandstudio/internal/state"
)

// Request is one interactive strategy-then-render job.
type Request struct {
	Instruction string
	Sources     []domain.Image
	Profile     domain.BrandProfile
}

// Result is the outcome of a processed Request.
type Result struct {
	Strategy  domain.BrandStrategy `json:"strategy"`
	Directive string               `json:"directive"`
	Mode      domain.RenderMode    `json:"mode"`
	Image     domain.Image         `json:"image"`
}

// Pipeline drives Resolver and Renderer under a per-request state machine.
type Pipeline struct {
	resolver   *Resolver
	renderer   *Renderer
	logger     zerolog.Logger
	authorized atomic.Bool
}

// New builds a pipeline. The service key starts out authorized.
func New(resolver *Resolver, renderer *Renderer, logger zerolog.Logger) *Pipeline {
	p := &Pipeline{resolver: resolver, renderer: renderer, logger: logger}
	p.authorized.Store(true)
	return p
}

// Authorized reports whether the last service call was accepted.
func (p *Pipeline) Authorized() bool {
	return p.authorized.Load()
}

// Resolve runs the strategy stage alone and records whether the service
// accepted the credentials.
func (p *Pipeline) Resolve(ctx context.Context, instruction string, profile domain.BrandProfile, images []domain.Image) (*domain.BrandStrategy, error) {
	strategy, err := p.resolver.Resolve(ctx, instruction, profile, images)
	p.observe(err)
	return strategy, err
}

// Render runs a single render with the mode implied by images.
func (p *Pipeline) Render(ctx context.Context, images []domain.Image, directive, aspectRatio string) (*domain.Image, error) {
	img, err := p.renderer.Render(ctx, images, directive, aspectRatio)
	p.observe(err)
	return img, err
}

// RenderWithMode runs a single render for an already compiled directive.
func (p *Pipeline) RenderWithMode(ctx context.Context, in RenderInput) (*domain.Image, error) {
	img, err := p.renderer.RenderWithMode(ctx, in)
	p.observe(err)
	return img, err
}

// observe updates the authorized flag from the outcome of a service call.
// Errors other than authorization failures leave it untouched.
func (p *Pipeline) observe(err error) {
	switch {
	case err == nil:
		p.authorized.Store(true)
	case domain.IsAuthorization(err):
		if p.authorized.Swap(false) {
			p.logger.Warn().Err(err).Msg("service rejected credentials, re-authorization required")
		}
	}
}

// Process runs one request through analyzing and generating, leaving m in
// complete or error.
func (p *Pipeline) Process(ctx context.Context, m *state.Machine, req Request) (*Result, error) {
	if err := m.Submit(); err != nil {
		return nil, err
	}

	strategy, err := p.resolver.Resolve(ctx, req.Instruction, req.Profile, req.Sources)
	if err != nil {
		return nil, p.fail(m, err)
	}
	if err := m.StrategyResolved(); err != nil {
		return nil, err
	}

	refs, err := DecodeReferences(req.Profile.ReferenceImages, prompt.MaxStrategyReferences)
	if err != nil {
		return nil, p.fail(m, err)
	}
	mode := ModeFor(req.Sources)
	directive := prompt.RenderDirective(*strategy, mode, len(req.Sources), len(refs), req.Profile)
	img, err := p.renderer.RenderWithMode(ctx, RenderInput{
		Mode:        mode,
		Sources:     req.Sources,
		References:  refs,
		Directive:   directive,
		AspectRatio: strategy.AspectRatio,
	})
	if err != nil {
		return nil, p.fail(m, err)
	}
	p.observe(nil)
	if err := m.Rendered(); err != nil {
		return nil, err
	}
	return &Result{Strategy: *strategy, Directive: directive, Mode: mode, Image: *img}, nil
}

func (p *Pipeline) fail(m *state.Machine, err error) error {
	p.observe(err)
	if ferr := m.Fail(err.Error()); ferr != nil {
		p.logger.Error().Err(ferr).Msg("state transition to error rejected")
	}
	return err
}
