package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Product is one shopping result for an identified furniture item.
type Product struct {
	ItemName  string `json:"item_name"`
	Title     string `json:"title"`
	Link      string `json:"link"`
	Price     string `json:"price"`
	Source    string `json:"source"`
	Thumbnail string `json:"thumbnail"`
}

// Shopper runs product searches for furniture queries.
type Shopper interface {
	Search(ctx context.Context, query string) ([]Product, error)
}

// SerpShopper queries the SerpAPI Google Shopping engine.
type SerpShopper struct {
	apiKey   string
	location string
	hl       string
	gl       string
	limit    int
	client   *http.Client
}

// NewSerpShopper constructs a shopping client. Location, language, and country
// default to the United States.
func NewSerpShopper(apiKey, location, hl, gl string, timeout time.Duration) *SerpShopper {
	if location == "" {
		location = "United States"
	}
	if hl == "" {
		hl = "en"
	}
	if gl == "" {
		gl = "us"
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &SerpShopper{
		apiKey:   apiKey,
		location: location,
		hl:       hl,
		gl:       gl,
		limit:    3,
		client:   &http.Client{Timeout: timeout},
	}
}

// Search returns up to three shopping results for the query.
func (s *SerpShopper) Search(ctx context.Context, query string) ([]Product, error) {
	params := url.Values{}
	params.Set("engine", "google_shopping")
	params.Set("q", query)
	params.Set("api_key", s.apiKey)
	params.Set("location", s.location)
	params.Set("hl", s.hl)
	params.Set("gl", s.gl)
	params.Set("num", fmt.Sprintf("%d", s.limit))

	endpoint := "https://serpapi.com/search.json?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("shopping request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("shopping perform request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("shopping status %d", resp.StatusCode)
	}

	var payload struct {
		ShoppingResults []struct {
			Title     string `json:"title"`
			Link      string `json:"link"`
			Price     string `json:"price"`
			Source    string `json:"source"`
			Thumbnail string `json:"thumbnail"`
		} `json:"shopping_results"`
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("shopping decode response: %w", err)
	}
	if payload.Error != "" {
		return nil, fmt.Errorf("shopping api: %s", payload.Error)
	}

	products := make([]Product, 0, s.limit)
	for _, r := range payload.ShoppingResults {
		if len(products) == s.limit {
			break
		}
		products = append(products, Product{
			Title:     r.Title,
			Link:      r.Link,
			Price:     r.Price,
			Source:    r.Source,
			Thumbnail: r.Thumbnail,
		})
	}
	return products, nil
}
