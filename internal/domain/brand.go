package domain

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// ReferenceImage is an inline image payload supplied by the operator, either
// as part of the brand profile or attached to a single request.
type ReferenceImage struct {
	Data     string `json:"data"`
	MIMEType string `json:"mime_type"`
}

// Bytes decodes the base64 payload.
func (r ReferenceImage) Bytes() ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(r.Data))
	if err != nil {
		return nil, fmt.Errorf("decode reference image: %w", err)
	}
	return raw, nil
}

// NewReferenceImage encodes raw bytes into a ReferenceImage.
func NewReferenceImage(data []byte, mimeType string) ReferenceImage {
	return ReferenceImage{
		Data:     base64.StdEncoding.EncodeToString(data),
		MIMEType: mimeType,
	}
}

// Typography carries optional font rules applied to single-image directives.
type Typography struct {
	HeadlineFont string `json:"headline_font"`
	BodyFont     string `json:"body_font"`
	UppercaseCTA bool   `json:"uppercase_cta"`
	CTAPhrase    string `json:"cta_phrase,omitempty"`
}

// IsZero reports whether no typography rule is configured.
func (t *Typography) IsZero() bool {
	if t == nil {
		return true
	}
	return strings.TrimSpace(t.HeadlineFont) == "" && strings.TrimSpace(t.BodyFont) == "" &&
		strings.TrimSpace(t.CTAPhrase) == "" && !t.UppercaseCTA
}

// BrandProfile is the tone/palette/style configuration applied to every directive.
type BrandProfile struct {
	Name               string           `json:"name" bson:"name"`
	Context            string           `json:"context" bson:"context"`
	Tone               string           `json:"tone" bson:"tone"`
	Colors             string           `json:"colors" bson:"colors"`
	VisualStyle        string           `json:"visual_style" bson:"visual_style"`
	ProductDescription string           `json:"product_description" bson:"product_description"`
	ReferenceImages    []ReferenceImage `json:"reference_images" bson:"reference_images"`
	Typography         *Typography      `json:"typography,omitempty" bson:"typography,omitempty"`
	DriveClientID      string           `json:"drive_client_id,omitempty" bson:"drive_client_id,omitempty"`
	AutoExport         bool             `json:"auto_export" bson:"auto_export"`
}

// DefaultBrandProfile returns the profile used when nothing has been saved yet.
func DefaultBrandProfile() BrandProfile {
	return BrandProfile{
		Name:               "Temple Mount Soil",
		Context:            "A social enterprise selling authenticated Temple Mount soil in premium jewelry.",
		Tone:               "Reverent, sophisticated, historically weighty (never casual, playful, or overly modern)",
		Colors:             "Gold/Amber (#B8860B), Stone Gray (#9E9E9E), Deep Brown (#3E2723), Cream (#F5F2EB)",
		VisualStyle:        "Real Jerusalem locations, Golden hour lighting (warm amber, 2800-3200K), Documentary/editorial aesthetic, Shot on Canon 5D Mark IV. Textures: weathered limestone, ancient stone, desert sand.",
		ProductDescription: "Premium jewelry containing authenticated soil. Pendants are circular glass lockets with gold-tone metal and warm brushed finish.",
		ReferenceImages:    []ReferenceImage{},
	}
}

// MergeOverDefaults fills empty fields of a stored profile with the defaults so
// profiles saved by older versions stay usable.
func MergeOverDefaults(stored BrandProfile) BrandProfile {
	def := DefaultBrandProfile()
	out := stored
	if strings.TrimSpace(out.Name) == "" {
		out.Name = def.Name
	}
	if strings.TrimSpace(out.Context) == "" {
		out.Context = def.Context
	}
	if strings.TrimSpace(out.Tone) == "" {
		out.Tone = def.Tone
	}
	if strings.TrimSpace(out.Colors) == "" {
		out.Colors = def.Colors
	}
	if strings.TrimSpace(out.VisualStyle) == "" {
		out.VisualStyle = def.VisualStyle
	}
	if strings.TrimSpace(out.ProductDescription) == "" {
		out.ProductDescription = def.ProductDescription
	}
	if out.ReferenceImages == nil {
		out.ReferenceImages = []ReferenceImage{}
	}
	return out
}

// BrandAnalysis is the style/product extraction produced from reference images.
type BrandAnalysis struct {
	VisualStyle        string `json:"visualStyle"`
	ProductDescription string `json:"productDescription"`
}

// ApplyTo copies the non-empty analysis fields onto profile.
func (a BrandAnalysis) ApplyTo(profile BrandProfile) BrandProfile {
	if s := strings.TrimSpace(a.VisualStyle); s != "" {
		profile.VisualStyle = s
	}
	if s := strings.TrimSpace(a.ProductDescription); s != "" {
		profile.ProductDescription = s
	}
	return profile
}
