package realtime

import (
	"context"
	"sync"
	"time"

	"github.com/dwhittlesey/TreasureHunter2/internal/models"
)

// ItemSource supplies the candidate set of uncollected items
type ItemSource interface {
	UncollectedItems(ctx context.Context) ([]models.TreasureItem, error)
}

// Catalog is a short-lived read cache over the item repository shared by
// all sessions. Sessions only read from it; collection events invalidate
// it so freshly collected items disappear from pushes promptly.
type Catalog struct {
	source ItemSource
	ttl    time.Duration

	mu        sync.RWMutex
	items     []models.TreasureItem
	fetchedAt time.Time
}

// NewCatalog creates a catalog with the given cache TTL
func NewCatalog(source ItemSource, ttl time.Duration) *Catalog {
	return &Catalog{
		source: source,
		ttl:    ttl,
	}
}

// Uncollected returns the cached candidate set, refreshing from the
// repository when stale
func (c *Catalog) Uncollected(ctx context.Context) ([]models.TreasureItem, error) {
	c.mu.RLock()
	if !c.fetchedAt.IsZero() && time.Since(c.fetchedAt) < c.ttl {
		items := c.items
		c.mu.RUnlock()
		return items, nil
	}
	c.mu.RUnlock()

	items, err := c.source.UncollectedItems(ctx)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.items = items
	c.fetchedAt = time.Now()
	c.mu.Unlock()

	return items, nil
}

// Invalidate drops the cache so the next read hits the repository
func (c *Catalog) Invalidate() {
	c.mu.Lock()
	c.fetchedAt = time.Time{}
	c.items = nil
	c.mu.Unlock()
}
