package usecase

import (
	"sync"
	"time"
)

type seatsEntry struct {
	seats     []string
	expiresAt time.Time
}

// SeatsCache is an in-memory TTL cache for per-event seat availability.
// Registrations and cancellations invalidate the affected event so callers
// never see a seat list staler than the TTL or the last local mutation.
type SeatsCache struct {
	mu      sync.RWMutex
	entries map[string]seatsEntry
	ttl     time.Duration
	now     func() time.Time
}

// NewSeatsCache creates a new SeatsCache with the given TTL
func NewSeatsCache(ttl time.Duration) *SeatsCache {
	return &SeatsCache{
		entries: make(map[string]seatsEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns the cached seat list for an event, if present and not expired
func (c *SeatsCache) Get(eventID string) ([]string, bool) {
	c.mu.RLock()
	entry, ok := c.entries[eventID]
	c.mu.RUnlock()

	if !ok || c.now().After(entry.expiresAt) {
		return nil, false
	}
	return entry.seats, true
}

// Set stores the seat list for an event
func (c *SeatsCache) Set(eventID string, seats []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[eventID] = seatsEntry{seats: seats, expiresAt: c.now().Add(c.ttl)}
}

// Invalidate drops the cached seat list for an event
func (c *SeatsCache) Invalidate(eventID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, eventID)
}
