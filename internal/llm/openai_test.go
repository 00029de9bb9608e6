// SPDX-License-Identifier: MIT

package llm

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(handler http.HandlerFunc) (*Client, *httptest.Server) {
	srv := httptest.NewServer(handler)
	c := New(Config{
		BaseURL:        srv.URL,
		APIKey:         "sk-test",
		Model:          "gpt-4o",
		EmbeddingModel: "text-embedding-3-small",
	})
	return c, srv
}

func TestEmbed(t *testing.T) {
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/embeddings", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"data":[{"embedding":[0.1,0.2,0.3]}]}`))
	})
	defer srv.Close()

	vec, err := c.Embed(context.Background(), "what is a servo?")
	require.NoError(t, err)
	assert.Len(t, vec, 3)
}

func TestChatCompletion(t *testing.T) {
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"A servo is an actuator."}}]}`))
	})
	defer srv.Close()

	out, err := c.ChatCompletion(context.Background(), []Message{{Role: "user", Content: "what is a servo?"}})
	require.NoError(t, err)
	assert.Equal(t, "A servo is an actuator.", out)
}

func TestStreamChatCompletion(t *testing.T) {
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		_, _ = w.Write([]byte(
			"data: {\"choices\":[{\"delta\":{\"content\":\"A servo \"}}]}\n\n" +
				"data: {\"choices\":[{\"delta\":{\"content\":\"is an actuator.\"}}]}\n\n" +
				"data: [DONE]\n\n"))
	})
	defer srv.Close()

	var chunks []string
	out, err := c.StreamChatCompletion(context.Background(),
		[]Message{{Role: "user", Content: "what is a servo?"}},
		func(s string) { chunks = append(chunks, s) })
	require.NoError(t, err)
	assert.Equal(t, "A servo is an actuator.", out)
	assert.Equal(t, []string{"A servo ", "is an actuator."}, chunks)
}

func TestChatCompletion_APIError(t *testing.T) {
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"rate limited"}}`))
	})
	defer srv.Close()

	_, err := c.ChatCompletion(context.Background(), []Message{{Role: "user", Content: "hi"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limited")
}

func TestCreateChatKitSession(t *testing.T) {
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chatkit/sessions", r.URL.Path)
		assert.Equal(t, "chatkit_beta=v1", r.Header.Get("OpenAI-Beta"))
		_, _ = w.Write([]byte(`{"client_secret":"ck-secret-123","expires_at":1767225600}`))
	})
	defer srv.Close()

	secret, expires, err := c.CreateChatKitSession(context.Background(), "u-1")
	require.NoError(t, err)
	assert.Equal(t, "ck-secret-123", secret)
	assert.False(t, expires.IsZero())
}
