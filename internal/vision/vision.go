// Package vision talks to the external multimodal image models. It exposes a
// narrow generator boundary so the placement core can be exercised against
// test doubles.
package vision

import "context"

// Modality is the kind of content requested from the model.
type Modality string

const (
	ModalityText  Modality = "TEXT"
	ModalityImage Modality = "IMAGE"
)

// Part is one unit of content exchanged with the model: either text or inline
// image data, never both.
type Part struct {
	Text string
	Data []byte
	MIME string
}

// TextPart wraps a prompt fragment.
func TextPart(text string) Part {
	return Part{Text: text}
}

// ImagePart wraps inline image bytes with their media type.
func ImagePart(data []byte, mimeType string) Part {
	return Part{Data: data, MIME: mimeType}
}

// IsImage reports whether the part carries inline binary data.
func (p Part) IsImage() bool {
	return len(p.Data) > 0
}

// Request describes one generation call: ordered content parts and the
// response modalities the caller wants back.
type Request struct {
	Parts      []Part
	Modalities []Modality
}

// Response holds the model's returned content parts in order.
type Response struct {
	Parts []Part
}

// Generator performs a single multimodal generation call. Implementations make
// exactly one attempt; retry policy belongs to the caller.
type Generator interface {
	Generate(ctx context.Context, req Request) (Response, error)
}

// Renderer produces an image from a text prompt alone. It is the boundary the
// room resolver uses for default empty-room generation, so the backing model
// (Gemini inline images or Vertex Imagen) can be swapped by configuration.
type Renderer interface {
	Render(ctx context.Context, prompt string) (Image, error)
}
