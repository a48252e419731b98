package llm

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"
)

// cacheEntry represents a cached answer.
type cacheEntry struct {
	expiry time.Time
	answer string
}

// answerCache keeps successful answers keyed by prompt digest. A prompt embeds
// the ledger lines, so any change to the ledger changes the key.
type answerCache struct {
	entries map[string]cacheEntry
	stopCh  chan struct{}
	ttl     time.Duration
	mu      sync.RWMutex
}

// newAnswerCache creates a cache with the given TTL and starts its sweeper.
func newAnswerCache(ttl time.Duration) *answerCache {
	cache := &answerCache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
		stopCh:  make(chan struct{}),
	}

	go cache.cleanup(max(ttl, time.Minute))

	return cache
}

func cacheKey(prompt string) string {
	sum := sha256.Sum256([]byte(prompt))
	return hex.EncodeToString(sum[:])
}

// get returns the answer for prompt if present and unexpired.
func (c *answerCache) get(prompt string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, exists := c.entries[cacheKey(prompt)]
	if !exists || time.Now().After(entry.expiry) {
		return "", false
	}
	return entry.answer, true
}

// set stores an answer for prompt.
func (c *answerCache) set(prompt, answer string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[cacheKey(prompt)] = cacheEntry{
		answer: answer,
		expiry: time.Now().Add(c.ttl),
	}
}

// size returns the number of entries in the cache.
func (c *answerCache) size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// cleanup periodically removes expired entries.
func (c *answerCache) cleanup(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopCh:
			return
		case <-ticker.C:
			c.mu.Lock()
			now := time.Now()
			for key, entry := range c.entries {
				if now.After(entry.expiry) {
					delete(c.entries, key)
				}
			}
			c.mu.Unlock()
		}
	}
}

// Close stops the cleanup goroutine.
func (c *answerCache) Close() {
	close(c.stopCh)
}
