// Package assets fetches model and texture bytes from local directories and
// http(s) URLs, caches them, and decodes them into engine types behind
// resource handles.
package assets

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/Faultbox/orbitfx/internal/logger"
)

// ErrNotFound is returned when no source has the requested asset.
var ErrNotFound = errors.New("asset not found")

// Source fetches raw asset bytes by name.
type Source interface {
	Fetch(ctx context.Context, name string) ([]byte, error)
}

// Manager resolves asset names against its sources and caches the bytes.
// URLs go to the HTTP source. Other names are tried against each directory
// source in the order they were added.
//
// Fetches run under the manager's context, so a caller giving up does not
// fail the others sharing the same fetch.
type Manager struct {
	mu      sync.RWMutex
	sources []Source
	remote  Source
	cache   *Cache
	flight  singleflight.Group

	ctx    context.Context
	cancel context.CancelFunc
}

// NewManager creates a manager without sources. remote handles http(s)
// names and may be nil to disable network access.
func NewManager(remote Source) *Manager {
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		remote: remote,
		cache:  NewCache(),
		ctx:    ctx,
		cancel: cancel,
	}
}

// AddSource appends a source. Earlier sources win.
func (m *Manager) AddSource(s Source) {
	m.mu.Lock()
	m.sources = append(m.sources, s)
	m.mu.Unlock()
}

// Cache returns the byte cache.
func (m *Manager) Cache() *Cache {
	return m.cache
}

// IsURL reports whether name is fetched over the network.
func IsURL(name string) bool {
	return strings.HasPrefix(name, "http://") || strings.HasPrefix(name, "https://")
}

// Load returns the bytes of name. Concurrent loads of one name share a
// single fetch. Canceling ctx stops waiting but leaves the fetch running
// for the remaining callers.
func (m *Manager) Load(ctx context.Context, name string) ([]byte, error) {
	if data, ok := m.cache.Get(name); ok {
		return data, nil
	}

	ch := m.flight.DoChan(name, func() (any, error) {
		data, err := m.fetch(m.ctx, name)
		if err != nil {
			return nil, err
		}
		m.cache.Set(name, data)
		return data, nil
	})
	select {
	case r := <-ch:
		if r.Err != nil {
			return nil, r.Err
		}
		if r.Shared {
			logger.Named("assets").Debug("shared in-flight load", zap.String("name", name))
		}
		return r.Val.([]byte), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (m *Manager) fetch(ctx context.Context, name string) ([]byte, error) {
	if IsURL(name) {
		if m.remote == nil {
			return nil, fmt.Errorf("%w: %s (network disabled)", ErrNotFound, name)
		}
		return m.remote.Fetch(ctx, name)
	}

	m.mu.RLock()
	sources := m.sources
	m.mu.RUnlock()

	for _, s := range sources {
		data, err := s.Fetch(ctx, name)
		if err == nil {
			return data, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
}

// Close cancels fetches in flight and drops cached data.
func (m *Manager) Close() {
	m.cancel()
	m.cache.Clear()
}

// Cache is a simple in-memory cache for loaded assets.
type Cache struct {
	data map[string][]byte
	mu   sync.Mutex

	hits   int
	misses int
}

// NewCache creates a new cache.
func NewCache() *Cache {
	return &Cache{
		data: make(map[string][]byte),
	}
}

// Get retrieves an item from cache.
func (c *Cache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, ok := c.data[key]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return data, ok
}

// Set stores an item in cache.
func (c *Cache) Set(key string, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = data
}

// Len returns the number of cached items.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.data)
}

// Clear clears the cache.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = make(map[string][]byte)
	c.hits = 0
	c.misses = 0
}

// Stats returns cache statistics.
func (c *Cache) Stats() (hits, misses int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}
