package memory

import (
	"context"
	"hash/maphash"
	"sync"

	"github.com/Apurer/pharmacy-availability/internal/domains/availability/domain"
	"github.com/Apurer/pharmacy-availability/internal/domains/availability/ports"
)

// DefaultShardCount is used when no shard count option is given.
const DefaultShardCount = 32

var _ ports.LocationCache = (*LocationCache)(nil)

// LocationCache is a process-lifetime, cache-aside store of location sets.
// Postal codes hash onto independent shards so writers of one key never block
// readers or writers on another shard. Entries never expire.
type LocationCache struct {
	seed   maphash.Seed
	shards []*shard
}

type shard struct {
	mu      sync.RWMutex
	entries map[string][]domain.Location
}

// Option configures a LocationCache.
type Option func(*LocationCache)

// WithShardCount overrides the number of shards; values below one are ignored.
func WithShardCount(n int) Option {
	return func(c *LocationCache) {
		if n > 0 {
			c.shards = newShards(n)
		}
	}
}

// NewLocationCache builds an empty cache.
func NewLocationCache(opts ...Option) *LocationCache {
	c := &LocationCache{
		seed:   maphash.MakeSeed(),
		shards: newShards(DefaultShardCount),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

func newShards(n int) []*shard {
	shards := make([]*shard, n)
	for i := range shards {
		shards[i] = &shard{entries: map[string][]domain.Location{}}
	}
	return shards
}

// Get returns a copy of the cached set for the postal code.
func (c *LocationCache) Get(_ context.Context, postalCode string) ([]domain.Location, bool) {
	s := c.shardFor(postalCode)
	s.mu.RLock()
	defer s.mu.RUnlock()
	locations, ok := s.entries[postalCode]
	if !ok {
		return nil, false
	}
	return domain.CloneLocations(locations), true
}

// Put stores a copy of the set, replacing any previous entry for the postal code.
func (c *LocationCache) Put(_ context.Context, postalCode string, locations []domain.Location) {
	clone := domain.CloneLocations(locations)
	if clone == nil {
		clone = []domain.Location{}
	}
	s := c.shardFor(postalCode)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[postalCode] = clone
}

// Len reports the number of cached postal codes.
func (c *LocationCache) Len() int {
	total := 0
	for _, s := range c.shards {
		s.mu.RLock()
		total += len(s.entries)
		s.mu.RUnlock()
	}
	return total
}

func (c *LocationCache) shardFor(postalCode string) *shard {
	return c.shards[maphash.String(c.seed, postalCode)%uint64(len(c.shards))]
}
