package newsletter

import (
	"sync"

	"github.com/sota-ai/sotanews/internal/models"
)

// digestCache memoizes digests by date for the process lifetime. Entries are
// only removed by an explicit force-regenerate drop.
type digestCache struct {
	mu      sync.RWMutex
	digests map[string]models.Digest
}

func newDigestCache() *digestCache {
	return &digestCache{digests: make(map[string]models.Digest)}
}

func (c *digestCache) get(date string) (models.Digest, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	digest, ok := c.digests[date]
	return digest, ok
}

func (c *digestCache) put(date string, digest models.Digest) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.digests[date] = digest
}

func (c *digestCache) drop(date string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.digests, date)
}
