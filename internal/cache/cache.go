// SPDX-License-Identifier: MIT

// Package cache provides TTL caching for generated content, with in-memory
// and Redis-backed implementations.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache provides thread-safe caching with expiration support.
type Cache interface {
	// Get retrieves a value from the cache. Returns false if not found or expired.
	Get(key string) ([]byte, bool)
	// Set stores a value in the cache with the specified TTL.
	Set(key string, value []byte, ttl time.Duration)
	// Delete removes a value from the cache.
	Delete(key string)
	// Stats returns cache statistics.
	Stats() Stats
}

// Stats holds cache performance counters.
type Stats struct {
	Hits        int64
	Misses      int64
	Sets        int64
	Evictions   int64
	CurrentSize int
}

// ContentKey derives the cache key for personalized chapter content.
// The profile fingerprint is part of the key so a profile update
// invalidates naturally instead of serving stale renderings.
func ContentKey(userID, chapterID, profileFingerprint string) string {
	sum := sha256.Sum256([]byte(userID + "\x00" + chapterID + "\x00" + profileFingerprint))
	return "content:" + hex.EncodeToString(sum[:16])
}

// NoOp is a cache that stores nothing (caching disabled).
type NoOp struct{}

func (NoOp) Get(string) ([]byte, bool)         { return nil, false }
func (NoOp) Set(string, []byte, time.Duration) {}
func (NoOp) Delete(string)                     {}
func (NoOp) Stats() Stats                      { return Stats{} }
