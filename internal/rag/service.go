// SPDX-License-Identifier: MIT

// Package rag implements retrieval-augmented answering over the textbook
// corpus and profile-conditioned content personalization.
package rag

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hamza123545/physical-ai-backend/internal/llm"
	"github.com/hamza123545/physical-ai-backend/internal/log"
	"github.com/hamza123545/physical-ai-backend/internal/metrics"
	"github.com/hamza123545/physical-ai-backend/internal/vector"
)

// Embedder turns text into an embedding vector.
type Embedder interface {
	Embed(ctx context.Context, input string) ([]float32, error)
}

// Searcher finds the nearest textbook chunks for a vector.
type Searcher interface {
	Search(ctx context.Context, collection string, vec []float32, limit int) ([]vector.Point, error)
}

// Completer produces chat completions.
type Completer interface {
	ChatCompletion(ctx context.Context, messages []llm.Message) (string, error)
	StreamChatCompletion(ctx context.Context, messages []llm.Message, onChunk func(string)) (string, error)
}

// Source identifies a textbook passage that grounded an answer.
type Source struct {
	Chapter string  `json:"chapter"`
	Section string  `json:"section"`
	Score   float64 `json:"score"`
}

// Answer is a grounded response to a question.
type Answer struct {
	Text    string   `json:"answer"`
	Sources []Source `json:"sources"`
}

// Service answers questions grounded in the textbook corpus.
type Service struct {
	embedder   Embedder
	searcher   Searcher
	completer  Completer
	collection string
	topK       int
}

// NewService wires the RAG pipeline.
func NewService(embedder Embedder, searcher Searcher, completer Completer, collection string) *Service {
	return &Service{
		embedder:   embedder,
		searcher:   searcher,
		completer:  completer,
		collection: collection,
		topK:       5,
	}
}

const systemPrompt = "You are the Physical AI Textbook assistant. Answer using only the " +
	"provided textbook context. If the context does not cover the question, say so. " +
	"Cite chapters when relevant."

// Ask answers a question grounded in the corpus. onChunk, when non-nil,
// receives streaming deltas of the answer text.
func (s *Service) Ask(ctx context.Context, question string, history []llm.Message, onChunk func(string)) (*Answer, error) {
	start := time.Now()

	answer, err := s.ask(ctx, question, history, onChunk)
	metrics.RAGQueryDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.RecordRAGQuery("error")
		return nil, err
	}
	metrics.RecordRAGQuery("ok")
	return answer, nil
}

func (s *Service) ask(ctx context.Context, question string, history []llm.Message, onChunk func(string)) (*Answer, error) {
	logger := log.WithComponentFromContext(ctx, "rag")

	vec, err := s.embedder.Embed(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("rag: embed question: %w", err)
	}

	points, err := s.searcher.Search(ctx, s.collection, vec, s.topK)
	if err != nil {
		return nil, fmt.Errorf("rag: vector search: %w", err)
	}

	logger.Debug().
		Str(log.FieldEvent, "rag.retrieved").
		Str(log.FieldCollection, s.collection).
		Int("hits", len(points)).
		Msg("retrieved context passages")

	messages := make([]llm.Message, 0, len(history)+2)
	messages = append(messages, llm.Message{Role: "system", Content: systemPrompt + "\n\n" + contextBlock(points)})
	messages = append(messages, history...)
	messages = append(messages, llm.Message{Role: "user", Content: question})

	var text string
	if onChunk != nil {
		text, err = s.completer.StreamChatCompletion(ctx, messages, onChunk)
	} else {
		text, err = s.completer.ChatCompletion(ctx, messages)
	}
	if err != nil {
		return nil, fmt.Errorf("rag: completion: %w", err)
	}

	sources := make([]Source, 0, len(points))
	for _, p := range points {
		sources = append(sources, Source{Chapter: p.Chapter, Section: p.Section, Score: p.Score})
	}
	return &Answer{Text: text, Sources: sources}, nil
}

// SearchPassages runs the retrieval half of the pipeline on its own,
// embedding the query and returning the nearest textbook passages.
func (s *Service) SearchPassages(ctx context.Context, query string, limit int) ([]vector.Point, error) {
	if limit <= 0 {
		limit = s.topK
	}
	vec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("rag: embed query: %w", err)
	}
	points, err := s.searcher.Search(ctx, s.collection, vec, limit)
	if err != nil {
		return nil, fmt.Errorf("rag: vector search: %w", err)
	}
	return points, nil
}

func contextBlock(points []vector.Point) string {
	if len(points) == 0 {
		return "Textbook context: (no passages retrieved)"
	}
	var b strings.Builder
	b.WriteString("Textbook context:\n")
	for _, p := range points {
		fmt.Fprintf(&b, "[%s / %s] %s\n", p.Chapter, p.Section, p.Text)
	}
	return b.String()
}
