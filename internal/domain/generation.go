package domain

// ReasonRequest is a text-producing call to the reasoning model. When
// ResponseFields is set the model is asked for a JSON object with those
// string properties, all required.
type ReasonRequest struct {
	SystemInstruction string
	Text              string
	Images            []Image
	ResponseFields    []string
	OptionalFields    []string
}

// RenderRequest is an image-producing call to the render model. Images are
// sent after the directive in the given order.
type RenderRequest struct {
	Mode        RenderMode
	Directive   string
	Images      []Image
	AspectRatio string
}

// ExportFile is an image handed to an export store.
type ExportFile struct {
	Name     string
	MIMEType string
	Data     []byte
}
