// SPDX-License-Identifier: MIT

package rag

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hamza123545/physical-ai-backend/internal/cache"
	"github.com/hamza123545/physical-ai-backend/internal/llm"
	"github.com/hamza123545/physical-ai-backend/internal/metrics"
	"github.com/hamza123545/physical-ai-backend/internal/store"
)

// Personalizer rewrites chapter content for a user's background, caching
// the result per (user, chapter, profile fingerprint).
type Personalizer struct {
	completer Completer
	cache     cache.Cache
	ttl       time.Duration
}

// NewPersonalizer creates a Personalizer.
func NewPersonalizer(completer Completer, c cache.Cache, ttl time.Duration) *Personalizer {
	return &Personalizer{
		completer: completer,
		cache:     c,
		ttl:       ttl,
	}
}

// Personalize returns the chapter content adapted to the user's profile.
// Cache hits skip the LLM entirely.
func (p *Personalizer) Personalize(ctx context.Context, profile *store.Profile, chapterID, content string) (string, bool, error) {
	key := cache.ContentKey(profile.UserID, chapterID, fingerprint(profile))

	if cached, ok := p.cache.Get(key); ok {
		metrics.RecordContentCache("hit")
		return string(cached), true, nil
	}
	metrics.RecordContentCache("miss")

	out, err := p.completer.ChatCompletion(ctx, []llm.Message{
		{Role: "system", Content: personalizePrompt(profile)},
		{Role: "user", Content: content},
	})
	if err != nil {
		return "", false, fmt.Errorf("rag: personalize: %w", err)
	}

	p.cache.Set(key, []byte(out), p.ttl)
	return out, false, nil
}

// fingerprint reduces a profile to the fields that influence the rendering.
func fingerprint(p *store.Profile) string {
	return strings.Join([]string{
		p.SoftwareExperience,
		p.HardwareExperience,
		p.RoboticsExperience,
		p.CurrentRole,
		p.ProgrammingLanguages,
		p.LearningGoals,
		p.Industry,
	}, "|")
}

func personalizePrompt(p *store.Profile) string {
	var b strings.Builder
	b.WriteString("Rewrite the following textbook content for this reader. Preserve technical accuracy and all headings.\n")
	if p.SoftwareExperience != "" {
		fmt.Fprintf(&b, "Software experience: %s\n", p.SoftwareExperience)
	}
	if p.HardwareExperience != "" {
		fmt.Fprintf(&b, "Hardware experience: %s\n", p.HardwareExperience)
	}
	if p.RoboticsExperience != "" {
		fmt.Fprintf(&b, "Robotics experience: %s\n", p.RoboticsExperience)
	}
	if p.CurrentRole != "" {
		fmt.Fprintf(&b, "Role: %s\n", p.CurrentRole)
	}
	if p.ProgrammingLanguages != "" {
		fmt.Fprintf(&b, "Preferred languages: %s\n", p.ProgrammingLanguages)
	}
	if p.LearningGoals != "" {
		fmt.Fprintf(&b, "Learning goals: %s\n", p.LearningGoals)
	}
	if p.Industry != "" {
		fmt.Fprintf(&b, "Industry: %s\n", p.Industry)
	}
	return b.String()
}
