package services

import (
	"sync"
	"time"
)

// CacheState records whether this process has already mirrored the remote
// feed. It starts unset and is only set after a successful refresh.
type CacheState struct {
	mu          sync.RWMutex
	fresh       bool
	refreshedAt time.Time
}

// NewCacheState creates an unset freshness flag
func NewCacheState() *CacheState {
	return &CacheState{}
}

// IsFresh reports whether a refresh has succeeded in this process
func (c *CacheState) IsFresh() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.fresh
}

// MarkFresh sets the flag
func (c *CacheState) MarkFresh(at time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fresh = true
	c.refreshedAt = at
}

// RefreshedAt returns the time of the last successful refresh, zero if none
func (c *CacheState) RefreshedAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.refreshedAt
}

// Reset clears the flag so the next query refetches
func (c *CacheState) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fresh = false
	c.refreshedAt = time.Time{}
}
