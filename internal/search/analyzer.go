// Package search analyzes room photos to identify furniture and looks up
// matching products via Google Shopping.
package search

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

// RoomAnalysis is the model's structured read of a room photo.
type RoomAnalysis struct {
	Description string      `json:"description"`
	Queries     []ItemQuery `json:"queries"`
}

// ItemQuery names one identified furniture item together with a shopping
// search query for it.
type ItemQuery struct {
	Name  string `json:"name"`
	Query string `json:"query"`
}

const analysisPrompt = `Analyze this room photo and identify the furniture and decor items in it.

Respond with JSON only, in this exact shape:
{
  "description": "<one-paragraph description of the room and its furnishings>",
  "queries": [
    {"name": "<item name>", "query": "<google shopping search query for a similar item>"}
  ]
}

List at most 5 distinct items. Do not include any text outside the JSON object.`

// Analyzer identifies furniture in a room photo. Implementations make exactly
// one attempt per call.
type Analyzer interface {
	Analyze(ctx context.Context, image []byte, mimeType string) (RoomAnalysis, error)
}

// GeminiAnalyzer calls the Google Generative Language API directly over REST.
type GeminiAnalyzer struct {
	apiKey      string
	model       string
	client      *http.Client
	tokenSource oauth2.TokenSource
}

// NewGeminiAnalyzer constructs an analyzer for the desired model.
func NewGeminiAnalyzer(apiKey, model string, timeout time.Duration, tokenSource oauth2.TokenSource) *GeminiAnalyzer {
	if model == "" {
		model = "gemini-2.5-flash"
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &GeminiAnalyzer{
		apiKey:      apiKey,
		model:       strings.TrimPrefix(strings.TrimSpace(model), "models/"),
		client:      &http.Client{Timeout: timeout},
		tokenSource: tokenSource,
	}
}

// Analyze sends the room photo to the model and parses the structured answer.
func (a *GeminiAnalyzer) Analyze(ctx context.Context, image []byte, mimeType string) (RoomAnalysis, error) {
	payload := map[string]any{
		"contents": []map[string]any{
			{
				"role": "user",
				"parts": []map[string]any{
					{"text": analysisPrompt},
					{"inline_data": map[string]string{
						"mime_type": mimeType,
						"data":      base64.StdEncoding.EncodeToString(image),
					}},
				},
			},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return RoomAnalysis{}, fmt.Errorf("marshal analysis payload: %w", err)
	}

	endpoint := fmt.Sprintf(
		"https://generativelanguage.googleapis.com/v1beta/models/%s:generateContent",
		url.PathEscape(a.model),
	)
	if a.tokenSource == nil {
		if strings.TrimSpace(a.apiKey) == "" {
			return RoomAnalysis{}, fmt.Errorf("search: missing API key or service account credentials")
		}
		endpoint = fmt.Sprintf("%s?key=%s", endpoint, url.QueryEscape(a.apiKey))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return RoomAnalysis{}, fmt.Errorf("analysis request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	if a.tokenSource != nil {
		token, err := a.tokenSource.Token()
		if err != nil {
			return RoomAnalysis{}, fmt.Errorf("search: fetch oauth token: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+token.AccessToken)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return RoomAnalysis{}, fmt.Errorf("analysis perform request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		var failure struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&failure)
		return RoomAnalysis{}, fmt.Errorf("analysis status %d: %s", resp.StatusCode, failure.Error.Message)
	}

	var completion struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&completion); err != nil {
		return RoomAnalysis{}, fmt.Errorf("analysis decode response: %w", err)
	}
	if len(completion.Candidates) == 0 || len(completion.Candidates[0].Content.Parts) == 0 {
		return RoomAnalysis{}, fmt.Errorf("analysis returned no candidates")
	}

	var text strings.Builder
	for _, part := range completion.Candidates[0].Content.Parts {
		text.WriteString(part.Text)
	}

	analysis, err := parseAnalysis(text.String())
	if err != nil {
		return RoomAnalysis{}, err
	}
	return analysis, nil
}

// parseAnalysis tolerates the fenced and prose-wrapped JSON answers models
// tend to produce.
func parseAnalysis(raw string) (RoomAnalysis, error) {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	if start := strings.Index(cleaned, "{"); start > 0 {
		cleaned = cleaned[start:]
	}
	if end := strings.LastIndex(cleaned, "}"); end >= 0 && end < len(cleaned)-1 {
		cleaned = cleaned[:end+1]
	}

	var analysis RoomAnalysis
	if err := json.Unmarshal([]byte(cleaned), &analysis); err != nil {
		return RoomAnalysis{}, fmt.Errorf("parse analysis output: %w", err)
	}

	queries := analysis.Queries[:0]
	for _, q := range analysis.Queries {
		q.Name = strings.TrimSpace(q.Name)
		q.Query = strings.TrimSpace(q.Query)
		if q.Query == "" {
			continue
		}
		if q.Name == "" {
			q.Name = q.Query
		}
		queries = append(queries, q)
	}
	analysis.Queries = queries

	if analysis.Description == "" && len(analysis.Queries) == 0 {
		return RoomAnalysis{}, fmt.Errorf("analysis output contained no usable content")
	}
	return analysis, nil
}
