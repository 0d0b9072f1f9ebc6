package vision

import (
	"context"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"
)

const defaultImageModel = "gemini-2.5-flash-image"

// GeminiGenerator invokes Gemini image-capable models through the genai SDK.
type GeminiGenerator struct {
	client  *genai.Client
	model   string
	timeout time.Duration
}

// NewGeminiGenerator constructs a generator with its own client handle. The
// client is created once and reused across calls.
func NewGeminiGenerator(ctx context.Context, apiKey, model string, timeout time.Duration) (*GeminiGenerator, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("vision: missing Gemini API key")
	}
	model = strings.TrimPrefix(strings.TrimSpace(model), "models/")
	if model == "" {
		model = defaultImageModel
	}
	if timeout <= 0 {
		timeout = 120 * time.Second
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("vision: create genai client: %w", err)
	}

	return &GeminiGenerator{
		client:  client,
		model:   model,
		timeout: timeout,
	}, nil
}

// Generate sends the request parts in order and returns the model's parts in
// order. A single attempt, no retries.
func (g *GeminiGenerator) Generate(ctx context.Context, req Request) (Response, error) {
	if g == nil || g.client == nil {
		return Response{}, fmt.Errorf("vision: generator unavailable")
	}
	if len(req.Parts) == 0 {
		return Response{}, fmt.Errorf("vision: empty request")
	}

	childCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	parts := make([]*genai.Part, 0, len(req.Parts))
	for _, p := range req.Parts {
		if p.IsImage() {
			mime := p.MIME
			if strings.TrimSpace(mime) == "" {
				mime = "image/png"
			}
			parts = append(parts, &genai.Part{InlineData: &genai.Blob{MIMEType: mime, Data: p.Data}})
			continue
		}
		parts = append(parts, genai.NewPartFromText(p.Text))
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	var config *genai.GenerateContentConfig
	if len(req.Modalities) > 0 {
		modalities := make([]string, 0, len(req.Modalities))
		for _, m := range req.Modalities {
			modalities = append(modalities, string(m))
		}
		config = &genai.GenerateContentConfig{ResponseModalities: modalities}
	}

	resp, err := g.client.Models.GenerateContent(childCtx, g.model, contents, config)
	if err != nil {
		return Response{}, fmt.Errorf("vision: generate content: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return Response{}, nil
	}

	out := Response{}
	for _, part := range resp.Candidates[0].Content.Parts {
		if part.InlineData != nil && len(part.InlineData.Data) > 0 {
			out.Parts = append(out.Parts, ImagePart(part.InlineData.Data, part.InlineData.MIMEType))
			continue
		}
		if part.Text != "" {
			out.Parts = append(out.Parts, TextPart(part.Text))
		}
	}
	return out, nil
}

// geminiRenderer adapts a Generator into the text-to-image Renderer boundary
// by requesting an image-only response.
type geminiRenderer struct {
	generator Generator
}

// NewGeminiRenderer wraps the generator for prompt-only rendering.
func NewGeminiRenderer(g Generator) Renderer {
	return geminiRenderer{generator: g}
}

// Render asks for an image-only response and returns the first inline image.
func (r geminiRenderer) Render(ctx context.Context, prompt string) (Image, error) {
	if strings.TrimSpace(prompt) == "" {
		return Image{}, fmt.Errorf("vision: empty render prompt")
	}
	resp, err := r.generator.Generate(ctx, Request{
		Parts:      []Part{TextPart(prompt)},
		Modalities: []Modality{ModalityImage},
	})
	if err != nil {
		return Image{}, err
	}
	return ExtractImage(resp)
}
