package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"brandstudio/internal/domain"
)

// GenerationService is the external multimodal model.
type GenerationService interface {
	Reason(ctx context.Context, req domain.ReasonRequest) (string, error)
	Render(ctx context.Context, req domain.RenderRequest) (*domain.Image, error)
}

// Exporter uploads finished images to a downstream store.
type Exporter interface {
	Upload(ctx context.Context, file domain.ExportFile) (*domain.ExportResult, error)
}

// DecodeReferences turns base64 reference images into raw image payloads,
// keeping at most limit entries when limit > 0.
func DecodeReferences(refs []domain.ReferenceImage, limit int) ([]domain.Image, error) {
	if limit > 0 && len(refs) > limit {
		refs = refs[:limit]
	}
	out := make([]domain.Image, 0, len(refs))
	for _, ref := range refs {
		data, err := ref.Bytes()
		if err != nil {
			return nil, err
		}
		out = append(out, domain.Image{Data: data, MIMEType: ref.MIMEType})
	}
	return out, nil
}

func parseModelPayload[T any](raw string) (T, error) {
	var zero T
	cleaned := extractJSONFragment(raw)
	if cleaned == "" {
		return zero, errors.New("empty payload")
	}
	var decoded T
	if err := json.Unmarshal([]byte(cleaned), &decoded); err != nil {
		return zero, err
	}
	return decoded, nil
}

func extractJSONFragment(raw string) string {
	text := trimCodeFence(strings.TrimSpace(raw))
	if text == "" {
		return ""
	}
	start := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if start >= 0 && end >= start {
		text = text[start : end+1]
	}
	return strings.TrimSpace(text)
}

func trimCodeFence(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```JSON")
	trimmed = strings.TrimPrefix(trimmed, "```")
	if idx := strings.LastIndex(trimmed, "```"); idx >= 0 {
		trimmed = trimmed[:idx]
	}
	return strings.TrimSpace(trimmed)
}
