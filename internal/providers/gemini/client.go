package gemini

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/genai"

	"brandstudio/internal/domain"
	"brandstudio/internal/infra"
)

const (
	DefaultReasoningModel = "gemini-2.5-flash"
	DefaultImageModel     = "gemini-3-pro-image-preview"

	defaultMIMEType = "image/png"
)

// Options controls how the Gemini client is configured.
type Options struct {
	APIKey         string
	BaseURL        string
	ReasoningModel string
	ImageModel     string
	HTTPClient     *http.Client
	Logger         *infra.Logger
}

// Client binds the reasoning and render stages to the Gemini API.
type Client struct {
	sdk            *genai.Client
	reasoningModel string
	imageModel     string
	logger         *infra.Logger
}

// NewClient constructs a Gemini client. A nil HTTP client gets one with a
// generous timeout since image renders are slow.
func NewClient(ctx context.Context, opts Options) (*Client, error) {
	apiKey := strings.TrimSpace(opts.APIKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 3 * time.Minute}
	}

	cfg := &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpClient,
	}
	if base := strings.TrimSpace(opts.BaseURL); base != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: strings.TrimRight(base, "/") + "/"}
	}
	sdk, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}

	logger := opts.Logger
	if logger == nil {
		discard := zerolog.New(io.Discard)
		l := infra.Logger(discard)
		logger = &l
	}

	reasoning := strings.TrimSpace(opts.ReasoningModel)
	if reasoning == "" {
		reasoning = DefaultReasoningModel
	}
	image := strings.TrimSpace(opts.ImageModel)
	if image == "" {
		image = DefaultImageModel
	}

	return &Client{
		sdk:            sdk,
		reasoningModel: reasoning,
		imageModel:     image,
		logger:         logger,
	}, nil
}

// Models returns the configured reasoning and image model identifiers.
func (c *Client) Models() (reasoning, image string) {
	return c.reasoningModel, c.imageModel
}

// Reason performs a text call and returns the raw text of the first candidate.
func (c *Client) Reason(ctx context.Context, req domain.ReasonRequest) (string, error) {
	parts := []*genai.Part{genai.NewPartFromText(req.Text)}
	for _, img := range req.Images {
		parts = append(parts, imagePart(img))
	}

	cfg := &genai.GenerateContentConfig{}
	if instruction := strings.TrimSpace(req.SystemInstruction); instruction != "" {
		cfg.SystemInstruction = genai.NewContentFromText(instruction, genai.RoleUser)
	}
	if len(req.ResponseFields) > 0 {
		cfg.ResponseMIMEType = "application/json"
		cfg.ResponseSchema = objectSchema(req.ResponseFields, req.OptionalFields)
	}

	started := time.Now()
	resp, err := c.sdk.Models.GenerateContent(ctx, c.reasoningModel, []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}, cfg)
	if err != nil {
		return "", classify(err)
	}
	text := strings.TrimSpace(resp.Text())
	c.logger.Debug().
		Str("model", c.reasoningModel).
		Int("images", len(req.Images)).
		Dur("elapsed", time.Since(started)).
		Msg("gemini: reasoning call completed")
	return text, nil
}

// Render performs an image call and returns the first inline image part.
func (c *Client) Render(ctx context.Context, req domain.RenderRequest) (*domain.Image, error) {
	parts := []*genai.Part{genai.NewPartFromText(req.Directive)}
	for _, img := range req.Images {
		parts = append(parts, imagePart(img))
	}
	cfg := &genai.GenerateContentConfig{}
	if aspect := strings.TrimSpace(req.AspectRatio); aspect != "" {
		cfg.ImageConfig = &genai.ImageConfig{AspectRatio: aspect}
	}

	started := time.Now()
	resp, err := c.sdk.Models.GenerateContent(ctx, c.imageModel, []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}, cfg)
	if err != nil {
		return nil, classify(err)
	}
	img := firstInlineImage(resp)
	if img == nil {
		return nil, domain.ErrNoImageData
	}
	c.logger.Debug().
		Str("model", c.imageModel).
		Str("mode", string(req.Mode)).
		Str("aspect_ratio", req.AspectRatio).
		Int("bytes", len(img.Data)).
		Dur("elapsed", time.Since(started)).
		Msg("gemini: render call completed")
	return img, nil
}

func imagePart(img domain.Image) *genai.Part {
	mime := strings.TrimSpace(img.MIMEType)
	if mime == "" {
		mime = defaultMIMEType
	}
	return genai.NewPartFromBytes(img.Data, mime)
}

func objectSchema(required, optional []string) *genai.Schema {
	props := make(map[string]*genai.Schema, len(required)+len(optional))
	for _, name := range required {
		props[name] = &genai.Schema{Type: genai.TypeString}
	}
	for _, name := range optional {
		props[name] = &genai.Schema{Type: genai.TypeString}
	}
	return &genai.Schema{
		Type:       genai.TypeObject,
		Properties: props,
		Required:   append([]string(nil), required...),
	}
}

func firstInlineImage(resp *genai.GenerateContentResponse) *domain.Image {
	if resp == nil {
		return nil
	}
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part == nil || part.InlineData == nil || len(part.InlineData.Data) == 0 {
				continue
			}
			mime := part.InlineData.MIMEType
			if mime == "" {
				mime = defaultMIMEType
			}
			return &domain.Image{Data: part.InlineData.Data, MIMEType: mime}
		}
	}
	return nil
}

// classify maps SDK and transport failures onto domain.ServiceError.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var apiErr genai.APIError
	var apiErrPtr *genai.APIError
	switch {
	case errors.As(err, &apiErr):
		return fromAPIError(apiErr, err)
	case errors.As(err, &apiErrPtr) && apiErrPtr != nil:
		return fromAPIError(*apiErrPtr, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return &domain.ServiceError{Kind: domain.KindTransient, Message: netErr.Error(), Err: err}
	}
	return &domain.ServiceError{Kind: domain.KindPermanent, Message: err.Error(), Err: err}
}

func fromAPIError(apiErr genai.APIError, cause error) *domain.ServiceError {
	return &domain.ServiceError{
		Kind:    KindForStatus(apiErr.Code, apiErr.Status, apiErr.Message),
		Code:    apiErr.Code,
		Message: strings.TrimSpace(apiErr.Message),
		Err:     cause,
	}
}

// KindForStatus classifies an HTTP status and the API status text.
func KindForStatus(code int, status, message string) domain.Kind {
	switch code {
	case http.StatusTooManyRequests, http.StatusInternalServerError, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return domain.KindTransient
	case http.StatusUnauthorized, http.StatusForbidden:
		return domain.KindAuthorization
	}
	switch strings.ToUpper(strings.TrimSpace(status)) {
	case "UNAVAILABLE", "RESOURCE_EXHAUSTED", "DEADLINE_EXCEEDED":
		return domain.KindTransient
	case "PERMISSION_DENIED", "UNAUTHENTICATED":
		return domain.KindAuthorization
	}
	lower := strings.ToLower(message)
	for _, hint := range []string{"overloaded", "rate limit", "busy"} {
		if strings.Contains(lower, hint) {
			return domain.KindTransient
		}
	}
	return domain.KindPermanent
}
