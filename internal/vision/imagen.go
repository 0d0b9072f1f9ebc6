package vision

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	aiplatform "cloud.google.com/go/aiplatform/apiv1"
	"cloud.google.com/go/aiplatform/apiv1/aiplatformpb"
	"google.golang.org/api/option"
	"google.golang.org/protobuf/types/known/structpb"
)

// VertexImagen renders images from text prompts via the Vertex AI Imagen
// prediction API. It is an alternative Renderer backend for default room
// generation; it cannot serve composite placement, which needs image inputs.
type VertexImagen struct {
	projectID          string
	location           string
	model              string
	apiKey             string
	serviceAccount     string
	serviceAccountJSON string
}

// VertexImagenConfig describes how to connect to Imagen.
type VertexImagenConfig struct {
	ProjectID          string
	Location           string
	Model              string
	APIKey             string
	ServiceAccount     string
	ServiceAccountJSON string
}

// NewVertexImagen wires a VertexImagen renderer.
func NewVertexImagen(cfg VertexImagenConfig) *VertexImagen {
	return &VertexImagen{
		projectID:          strings.TrimSpace(cfg.ProjectID),
		location:           strings.TrimSpace(cfg.Location),
		model:              strings.TrimSpace(cfg.Model),
		apiKey:             strings.TrimSpace(cfg.APIKey),
		serviceAccount:     strings.TrimSpace(cfg.ServiceAccount),
		serviceAccountJSON: strings.TrimSpace(cfg.ServiceAccountJSON),
	}
}

// Render runs a text-to-image prediction and returns the first sample.
func (v *VertexImagen) Render(ctx context.Context, prompt string) (Image, error) {
	if v == nil {
		return Image{}, fmt.Errorf("imagen: renderer not configured")
	}
	if v.projectID == "" || v.location == "" || v.model == "" {
		return Image{}, fmt.Errorf("imagen: missing project/location/model")
	}
	if strings.TrimSpace(prompt) == "" {
		return Image{}, fmt.Errorf("imagen: prompt is required")
	}

	instance, err := structpb.NewValue(map[string]any{
		"prompt": prompt,
	})
	if err != nil {
		return Image{}, err
	}

	params, err := structpb.NewValue(map[string]any{
		"sampleCount": 1,
	})
	if err != nil {
		return Image{}, err
	}

	endpoint := fmt.Sprintf("projects/%s/locations/%s/publishers/google/models/%s", v.projectID, v.location, v.model)
	options := []option.ClientOption{option.WithEndpoint(fmt.Sprintf("%s-aiplatform.googleapis.com:443", v.location))}
	if v.serviceAccountJSON != "" {
		options = append(options, option.WithCredentialsJSON([]byte(v.serviceAccountJSON)))
	} else if v.serviceAccount != "" {
		options = append(options, option.WithCredentialsFile(v.serviceAccount))
	} else if v.apiKey != "" {
		options = append(options, option.WithAPIKey(v.apiKey))
	}

	client, err := aiplatform.NewPredictionClient(ctx, options...)
	if err != nil {
		return Image{}, fmt.Errorf("imagen: prediction client: %w", err)
	}
	defer client.Close()

	resp, err := client.Predict(ctx, &aiplatformpb.PredictRequest{
		Endpoint:   endpoint,
		Instances:  []*structpb.Value{instance},
		Parameters: params,
	})
	if err != nil {
		return Image{}, fmt.Errorf("imagen: predict: %w", err)
	}
	if len(resp.Predictions) == 0 {
		return Image{}, ErrNoImage
	}

	fields := resp.Predictions[0].GetStructValue().GetFields()
	encoded := fields["bytesBase64Encoded"]
	if encoded == nil {
		return Image{}, ErrNoImage
	}

	data, err := base64.StdEncoding.DecodeString(encoded.GetStringValue())
	if err != nil {
		return Image{}, fmt.Errorf("imagen: decode result: %w", err)
	}

	mime := "image/png"
	if m := fields["mimeType"]; m != nil && m.GetStringValue() != "" {
		mime = m.GetStringValue()
	}

	return Image{Data: data, MIME: mime}, nil
}
