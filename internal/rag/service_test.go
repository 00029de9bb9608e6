// SPDX-License-Identifier: MIT

package rag

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hamza123545/physical-ai-backend/internal/cache"
	"github.com/hamza123545/physical-ai-backend/internal/llm"
	"github.com/hamza123545/physical-ai-backend/internal/store"
	"github.com/hamza123545/physical-ai-backend/internal/vector"
)

type stubEmbedder struct {
	err error
}

func (s *stubEmbedder) Embed(ctx context.Context, input string) ([]float32, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []float32{0.1, 0.2}, nil
}

type stubSearcher struct {
	points []vector.Point
	err    error
}

func (s *stubSearcher) Search(ctx context.Context, collection string, vec []float32, limit int) ([]vector.Point, error) {
	return s.points, s.err
}

type stubCompleter struct {
	response string
	err      error
	// records the last system prompt for assertions
	lastSystem string
	calls      int
}

func (s *stubCompleter) ChatCompletion(ctx context.Context, messages []llm.Message) (string, error) {
	s.calls++
	if len(messages) > 0 && messages[0].Role == "system" {
		s.lastSystem = messages[0].Content
	}
	return s.response, s.err
}

func (s *stubCompleter) StreamChatCompletion(ctx context.Context, messages []llm.Message, onChunk func(string)) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	for _, part := range strings.SplitAfter(s.response, " ") {
		if onChunk != nil {
			onChunk(part)
		}
	}
	return s.response, nil
}

func TestAsk_GroundsAnswerInRetrievedContext(t *testing.T) {
	searcher := &stubSearcher{points: []vector.Point{
		{Chapter: "ch-3", Section: "kinematics", Text: "forward kinematics maps joint angles", Score: 0.9},
	}}
	completer := &stubCompleter{response: "Forward kinematics maps joint angles to pose."}
	svc := NewService(&stubEmbedder{}, searcher, completer, "textbook_chapters")

	ans, err := svc.Ask(context.Background(), "what is forward kinematics?", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "Forward kinematics maps joint angles to pose.", ans.Text)
	require.Len(t, ans.Sources, 1)
	assert.Equal(t, "ch-3", ans.Sources[0].Chapter)
	assert.Contains(t, completer.lastSystem, "forward kinematics maps joint angles")
}

func TestAsk_Streaming(t *testing.T) {
	completer := &stubCompleter{response: "a b c"}
	svc := NewService(&stubEmbedder{}, &stubSearcher{}, completer, "textbook_chapters")

	var got []string
	ans, err := svc.Ask(context.Background(), "q", nil, func(s string) { got = append(got, s) })
	require.NoError(t, err)
	assert.Equal(t, "a b c", ans.Text)
	assert.NotEmpty(t, got)
}

func TestAsk_EmbedFailure(t *testing.T) {
	svc := NewService(&stubEmbedder{err: errors.New("boom")}, &stubSearcher{}, &stubCompleter{}, "c")
	_, err := svc.Ask(context.Background(), "q", nil, nil)
	assert.Error(t, err)
}

func TestAsk_SearchFailure(t *testing.T) {
	svc := NewService(&stubEmbedder{}, &stubSearcher{err: errors.New("down")}, &stubCompleter{}, "c")
	_, err := svc.Ask(context.Background(), "q", nil, nil)
	assert.Error(t, err)
}

func TestPersonalize_CachesByProfileFingerprint(t *testing.T) {
	completer := &stubCompleter{response: "simplified content"}
	c := cache.NewMemory(0)
	p := NewPersonalizer(completer, c, time.Hour)

	profile := &store.Profile{UserID: "u-1", SoftwareExperience: "beginner"}

	out, cached, err := p.Personalize(context.Background(), profile, "ch-1", "original content")
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Equal(t, "simplified content", out)

	// Second call hits the cache; the LLM is not consulted again.
	out, cached, err = p.Personalize(context.Background(), profile, "ch-1", "original content")
	require.NoError(t, err)
	assert.True(t, cached)
	assert.Equal(t, "simplified content", out)
	assert.Equal(t, 1, completer.calls)

	// A profile change invalidates via the fingerprint.
	profile.SoftwareExperience = "advanced"
	_, cached, err = p.Personalize(context.Background(), profile, "ch-1", "original content")
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Equal(t, 2, completer.calls)
}

func TestPersonalize_LLMFailure(t *testing.T) {
	p := NewPersonalizer(&stubCompleter{err: errors.New("rate limited")}, cache.NoOp{}, time.Hour)
	_, _, err := p.Personalize(context.Background(), &store.Profile{UserID: "u"}, "ch-1", "content")
	assert.Error(t, err)
}
