// internal/catalog/catalog.go
// Package catalog maintains the list of models the remote API currently offers.
package catalog

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/poegate/poegate/internal/logging"
)

// Entry describes one model from the remote catalog: its identifier plus the
// raw descriptor fields the API returned alongside it.
type Entry struct {
	ID  string
	Raw map[string]any
}

// FetchFunc retrieves the current catalog from the remote API.
type FetchFunc func(ctx context.Context) ([]Entry, error)

// record is one immutable cache snapshot. It is replaced wholesale on every
// successful fetch and never mutated in place, so concurrent readers need no
// lock beyond the atomic pointer.
type record struct {
	entries   []Entry
	fetchedAt time.Time
}

// Cache wraps a FetchFunc with a single-slot, time-bounded cache and a static
// fallback list used when no fresh record exists and a fetch fails.
type Cache struct {
	fetch    FetchFunc
	ttl      time.Duration
	fallback []Entry

	rec atomic.Pointer[record]

	// now is the clock; tests substitute it to control freshness.
	now func() time.Time
}

// NewCache constructs a cache over fetch with the given freshness window.
// A nil fallback means fetch failures surface an empty list.
func NewCache(fetch FetchFunc, ttl time.Duration, fallback []Entry) *Cache {
	return &Cache{
		fetch:    fetch,
		ttl:      ttl,
		fallback: fallback,
		now:      time.Now,
	}
}

// Models returns the current catalog entries. A fresh record is returned
// without touching the network; otherwise one fetch is attempted. Fetch
// failures degrade to the fallback list and are logged as warnings, never
// returned as errors, so registration always proceeds. An empty successful
// response is valid data and is cached as such.
func (c *Cache) Models(ctx context.Context) []Entry {
	if rec := c.rec.Load(); rec != nil && c.now().Sub(rec.fetchedAt) < c.ttl {
		return rec.entries
	}

	entries, err := c.fetch(ctx)
	if err != nil {
		logging.LogWarning("model catalog fetch failed, using fallback list: %v", err)
		return c.fallback
	}

	c.rec.Store(&record{entries: entries, fetchedAt: c.now()})
	return entries
}

// Fallback returns a copy of the static fallback entries.
func (c *Cache) Fallback() []Entry {
	out := make([]Entry, len(c.fallback))
	copy(out, c.fallback)
	return out
}

// DefaultFallback lists well-known chat models registered when the remote
// catalog cannot be fetched.
func DefaultFallback() []Entry {
	ids := []string{
		"GPT-4o",
		"Claude-Sonnet-4",
		"Gemini-2.5-Pro",
		"Llama-3.1-405B",
		"Grok-4",
	}
	entries := make([]Entry, len(ids))
	for i, id := range ids {
		entries[i] = Entry{ID: id, Raw: map[string]any{"id": id, "object": "model"}}
	}
	return entries
}
