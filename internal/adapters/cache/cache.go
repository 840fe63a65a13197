// Package cache keeps assembled candidate profiles between reads.
package cache

import (
	"container/list"
	"sync"

	"github.com/okian/talentlens/internal/domain/model"
	"github.com/okian/talentlens/pkg/metrics"
)

// DefaultMaxEntries bounds the cache when no size is configured.
const DefaultMaxEntries = 10_000

// Token identifies the state a profile was assembled from. A Put only lands
// if no invalidation happened since the token was taken.
type Token struct {
	generation uint64
	version    uint64
}

type entry struct {
	candidateID string
	profile     model.CandidateProfile
}

// ProfileCache is a bounded FIFO cache of profiles keyed by candidate id.
// Cached profiles are shared between readers and must not be modified.
type ProfileCache struct {
	mu         sync.Mutex
	maxEntries int
	order      *list.List // front = oldest
	entries    map[string]*list.Element
	versions   map[string]uint64 // per-candidate bumps since the last generation
	generation uint64
}

// Option applies a configuration option to the ProfileCache.
type Option func(*ProfileCache)

// WithMaxEntries bounds the number of cached profiles. Values <= 0 disable caching.
func WithMaxEntries(n int) Option {
	return func(c *ProfileCache) {
		c.maxEntries = n
	}
}

// New creates an empty profile cache.
func New(opts ...Option) *ProfileCache {
	c := &ProfileCache{
		maxEntries: DefaultMaxEntries,
		order:      list.New(),
		entries:    make(map[string]*list.Element),
		versions:   make(map[string]uint64),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Token returns the current token for a candidate.
func (c *ProfileCache) Token(candidateID string) Token {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tokenLocked(candidateID)
}

func (c *ProfileCache) tokenLocked(candidateID string) Token {
	return Token{generation: c.generation, version: c.versions[candidateID]}
}

// Get returns the cached profile for a candidate.
func (c *ProfileCache) Get(candidateID string) (model.CandidateProfile, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	el, ok := c.entries[candidateID]
	if !ok {
		metrics.RecordProfileCacheMiss()
		return model.CandidateProfile{}, false
	}
	metrics.RecordProfileCacheHit()
	return el.Value.(*entry).profile, true
}

// Put stores a profile assembled under tok. It returns false and drops the
// profile when the candidate or the cohort was invalidated in the meantime.
func (c *ProfileCache) Put(candidateID string, tok Token, p model.CandidateProfile) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.maxEntries <= 0 || tok != c.tokenLocked(candidateID) {
		return false
	}
	if el, ok := c.entries[candidateID]; ok {
		el.Value.(*entry).profile = p
		return true
	}
	for c.order.Len() >= c.maxEntries {
		c.removeLocked(c.order.Front())
	}
	c.entries[candidateID] = c.order.PushBack(&entry{candidateID: candidateID, profile: p})
	metrics.UpdateProfileCacheEntries(c.order.Len())
	return true
}

// Invalidate drops one candidate's profile and bumps its version.
func (c *ProfileCache) Invalidate(candidateID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.versions[candidateID]++
	if el, ok := c.entries[candidateID]; ok {
		c.removeLocked(el)
		metrics.UpdateProfileCacheEntries(c.order.Len())
	}
}

// InvalidateAll drops every profile. Used when cohort statistics change,
// since every percentile and benchmark depends on them.
func (c *ProfileCache) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation++
	c.order.Init()
	clear(c.entries)
	// tokens from older generations never match again
	clear(c.versions)
	metrics.UpdateProfileCacheEntries(0)
}

// Len returns the number of cached profiles.
func (c *ProfileCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

func (c *ProfileCache) removeLocked(el *list.Element) {
	e := c.order.Remove(el).(*entry)
	delete(c.entries, e.candidateID)
}
