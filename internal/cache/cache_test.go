// SPDX-License-Identifier: MIT

package cache

import (
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestMemory_SetGet(t *testing.T) {
	c := NewMemory(0)

	c.Set("k", []byte("v"), time.Minute)
	got, ok := c.Get("k")
	if !ok || string(got) != "v" {
		t.Errorf("Get = %q, %v; want v, true", got, ok)
	}

	if _, ok := c.Get("missing"); ok {
		t.Error("expected miss for unknown key")
	}
}

func TestMemory_Expiration(t *testing.T) {
	c := NewMemory(0)

	c.Set("k", []byte("v"), 10*time.Millisecond)
	time.Sleep(30 * time.Millisecond)

	if _, ok := c.Get("k"); ok {
		t.Error("expected expired entry to miss")
	}
}

func TestMemory_Delete(t *testing.T) {
	c := NewMemory(0)
	c.Set("k", []byte("v"), time.Minute)
	c.Delete("k")
	if _, ok := c.Get("k"); ok {
		t.Error("expected deleted entry to miss")
	}
}

func TestMemory_Stats(t *testing.T) {
	c := NewMemory(0)
	c.Set("k", []byte("v"), time.Minute)
	c.Get("k")
	c.Get("missing")

	stats := c.Stats()
	if stats.Hits != 1 || stats.Misses != 1 || stats.Sets != 1 || stats.CurrentSize != 1 {
		t.Errorf("unexpected stats: %+v", stats)
	}
}

func TestMemory_JanitorStops(t *testing.T) {
	defer goleak.VerifyNone(t)

	c := NewMemory(5 * time.Millisecond)
	c.Set("k", []byte("v"), time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	c.Stop()

	stats := c.Stats()
	if stats.Evictions == 0 {
		t.Error("expected janitor to evict the expired entry")
	}
}

func TestContentKey_Deterministic(t *testing.T) {
	a := ContentKey("u-1", "chapter-3", "fp-1")
	b := ContentKey("u-1", "chapter-3", "fp-1")
	if a != b {
		t.Error("expected identical inputs to produce identical keys")
	}

	if a == ContentKey("u-1", "chapter-3", "fp-2") {
		t.Error("expected profile fingerprint to change the key")
	}
	if a == ContentKey("u-2", "chapter-3", "fp-1") {
		t.Error("expected user to change the key")
	}
}
