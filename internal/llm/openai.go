// SPDX-License-Identifier: MIT

// Package llm provides an OpenAI API client for chat completions,
// embeddings and ChatKit session minting.
package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Message is one turn of a chat conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Client talks to the OpenAI REST API.
type Client struct {
	base           string
	apiKey         string
	model          string
	embeddingModel string
	http           *http.Client
}

// Config holds client construction options.
type Config struct {
	BaseURL        string
	APIKey         string
	Model          string
	EmbeddingModel string
}

// New creates an OpenAI client.
func New(cfg Config) *Client {
	return &Client{
		base:           strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:         cfg.APIKey,
		model:          cfg.Model,
		embeddingModel: cfg.EmbeddingModel,
		http:           &http.Client{Timeout: 120 * time.Second},
	}
}

func (c *Client) post(ctx context.Context, path string, body any, extraHeaders map[string]string) (*http.Response, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("openai: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.base+path, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("openai: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	for k, v := range extraHeaders {
		req.Header.Set(k, v)
	}

	res, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("openai: %w", err)
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		defer res.Body.Close()
		var apiErr struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		_ = json.NewDecoder(res.Body).Decode(&apiErr)
		if apiErr.Error.Message != "" {
			return nil, fmt.Errorf("openai: status %d: %s", res.StatusCode, apiErr.Error.Message)
		}
		return nil, fmt.Errorf("openai: unexpected status %d for %s", res.StatusCode, path)
	}
	return res, nil
}

// Embed returns the embedding vector for input text.
func (c *Client) Embed(ctx context.Context, input string) ([]float32, error) {
	res, err := c.post(ctx, "/v1/embeddings", map[string]any{
		"model": c.embeddingModel,
		"input": input,
	}, nil)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	var p struct {
		Data []struct {
			Embedding []float32 `json:"embedding"`
		} `json:"data"`
	}
	if err := json.NewDecoder(res.Body).Decode(&p); err != nil {
		return nil, fmt.Errorf("openai: decode embeddings: %w", err)
	}
	if len(p.Data) == 0 {
		return nil, errors.New("openai: empty embeddings response")
	}
	return p.Data[0].Embedding, nil
}

// ChatCompletion returns the assistant response for the given messages.
func (c *Client) ChatCompletion(ctx context.Context, messages []Message) (string, error) {
	res, err := c.post(ctx, "/v1/chat/completions", map[string]any{
		"model":    c.model,
		"messages": messages,
	}, nil)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()

	var p struct {
		Choices []struct {
			Message Message `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(res.Body).Decode(&p); err != nil {
		return "", fmt.Errorf("openai: decode completion: %w", err)
	}
	if len(p.Choices) == 0 {
		return "", errors.New("openai: empty completion response")
	}
	return p.Choices[0].Message.Content, nil
}

// StreamChatCompletion streams the assistant response, invoking onChunk for
// every content delta. It returns the assembled full response.
func (c *Client) StreamChatCompletion(ctx context.Context, messages []Message, onChunk func(string)) (string, error) {
	res, err := c.post(ctx, "/v1/chat/completions", map[string]any{
		"model":    c.model,
		"messages": messages,
		"stream":   true,
	}, nil)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()

	var full strings.Builder
	scanner := bufio.NewScanner(res.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if payload == "[DONE]" {
			break
		}

		var chunk struct {
			Choices []struct {
				Delta struct {
					Content string `json:"content"`
				} `json:"delta"`
			} `json:"choices"`
		}
		if err := json.Unmarshal([]byte(payload), &chunk); err != nil {
			// Skip malformed keepalive frames rather than aborting the stream.
			continue
		}
		if len(chunk.Choices) > 0 && chunk.Choices[0].Delta.Content != "" {
			full.WriteString(chunk.Choices[0].Delta.Content)
			if onChunk != nil {
				onChunk(chunk.Choices[0].Delta.Content)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("openai: stream read: %w", err)
	}
	return full.String(), nil
}

// CreateChatKitSession mints a ChatKit client secret for the given user.
func (c *Client) CreateChatKitSession(ctx context.Context, userID string) (string, time.Time, error) {
	res, err := c.post(ctx, "/v1/chatkit/sessions", map[string]any{
		"user": userID,
	}, map[string]string{"OpenAI-Beta": "chatkit_beta=v1"})
	if err != nil {
		return "", time.Time{}, err
	}
	defer res.Body.Close()

	var p struct {
		ClientSecret string `json:"client_secret"`
		ExpiresAt    int64  `json:"expires_at"`
	}
	if err := json.NewDecoder(res.Body).Decode(&p); err != nil {
		return "", time.Time{}, fmt.Errorf("openai: decode chatkit session: %w", err)
	}
	if p.ClientSecret == "" {
		return "", time.Time{}, errors.New("openai: chatkit session missing client secret")
	}
	return p.ClientSecret, time.Unix(p.ExpiresAt, 0).UTC(), nil
}
