// SPDX-License-Identifier: MIT

// Package vector provides a minimal Qdrant REST client for textbook
// chapter search.
package vector

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Client talks to a Qdrant instance over its REST API.
type Client struct {
	base   string
	apiKey string
	http   *http.Client
}

// New creates a Qdrant client. apiKey may be empty for unauthenticated
// local instances.
func New(base, apiKey string) *Client {
	return &Client{
		base:   strings.TrimRight(base, "/"),
		apiKey: apiKey,
		http:   &http.Client{Timeout: 30 * time.Second},
	}
}

// Point is one scored search hit with its chapter payload.
type Point struct {
	ID      string  `json:"id"`
	Score   float64 `json:"score"`
	Chapter string  `json:"chapter"`
	Section string  `json:"section"`
	Text    string  `json:"text"`
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var buf *bytes.Buffer
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("qdrant: encode request: %w", err)
		}
		buf = bytes.NewBuffer(data)
	} else {
		buf = &bytes.Buffer{}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, buf)
	if err != nil {
		return fmt.Errorf("qdrant: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("api-key", c.apiKey)
	}

	res, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("qdrant: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return fmt.Errorf("qdrant: unexpected status %d for %s", res.StatusCode, path)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("qdrant: decode response: %w", err)
	}
	return nil
}

// Search returns the top-limit points of collection nearest to vector.
func (c *Client) Search(ctx context.Context, collection string, vec []float32, limit int) ([]Point, error) {
	body := map[string]any{
		"vector":       vec,
		"limit":        limit,
		"with_payload": true,
	}
	var p struct {
		Result []struct {
			ID      json.Number `json:"id"`
			Score   float64     `json:"score"`
			Payload struct {
				Chapter string `json:"chapter"`
				Section string `json:"section"`
				Text    string `json:"text"`
			} `json:"payload"`
		} `json:"result"`
	}
	if err := c.do(ctx, "POST", "/collections/"+collection+"/points/search", body, &p); err != nil {
		return nil, err
	}

	out := make([]Point, 0, len(p.Result))
	for _, r := range p.Result {
		out = append(out, Point{
			ID:      r.ID.String(),
			Score:   r.Score,
			Chapter: r.Payload.Chapter,
			Section: r.Payload.Section,
			Text:    r.Payload.Text,
		})
	}
	return out, nil
}

// Collections lists the collection names, used by the health check.
func (c *Client) Collections(ctx context.Context) ([]string, error) {
	var p struct {
		Result struct {
			Collections []struct {
				Name string `json:"name"`
			} `json:"collections"`
		} `json:"result"`
	}
	if err := c.do(ctx, "GET", "/collections", nil, &p); err != nil {
		return nil, err
	}

	out := make([]string, 0, len(p.Result.Collections))
	for _, col := range p.Result.Collections {
		out = append(out, col.Name)
	}
	return out, nil
}
