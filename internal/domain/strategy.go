package domain

import "time"

// BrandStrategy is the platform/aspect/layout/directive bundle resolved before rendering.
type BrandStrategy struct {
	Platform        string `json:"platform"`
	AspectRatio     string `json:"aspectRatio"`
	LayoutStyle     string `json:"layoutStyle"`
	Reasoning       string `json:"reasoning"`
	RefinedPrompt   string `json:"refinedPrompt"`
	FeaturedProduct string `json:"featuredProduct,omitempty"`
}

// PlatformRule binds a publishing platform to its canonical format.
type PlatformRule struct {
	Platform    string
	AspectRatio string
	LayoutStyle string
	Notes       string
}

// Image is an encoded image payload returned by the render stage.
type Image struct {
	Data     []byte `json:"-"`
	MIMEType string `json:"mime_type"`
}

// RenderMode says whether the render call edits supplied images or generates from scratch.
type RenderMode string

const (
	RenderModeGenerate RenderMode = "generate"
	RenderModeEdit     RenderMode = "edit"
)

// ExportResult identifies an uploaded file in an export destination.
type ExportResult struct {
	ID       string `json:"id"`
	ViewLink string `json:"view_link"`
}

// DriveCredential is a short-lived access token for the export store. It is
// held in memory only.
type DriveCredential struct {
	Token  string    `json:"-"`
	Expiry time.Time `json:"expiry"`
}
