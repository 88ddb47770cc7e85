// Package identity implements the identifier model the resolver core
// addresses modules and components by: a ModuleIdentifier names a
// module regardless of version, a ModuleVersionIdentifier pins one
// candidate version, and a ComponentIdentifier is the opaque,
// resolver-assigned identity derived from a ModuleVersionIdentifier
// through a monotone cache.
package identity

import (
	"fmt"
	"sync"
)

// ModuleIdentifier is a (group, name) pair. Equality is by value.
type ModuleIdentifier struct {
	Group string
	Name  string
}

func (m ModuleIdentifier) String() string {
	return fmt.Sprintf("%s:%s", m.Group, m.Name)
}

// ModuleVersionIdentifier pins a ModuleIdentifier to a specific version
// string.
type ModuleVersionIdentifier struct {
	Module  ModuleIdentifier
	Version string
}

func (m ModuleVersionIdentifier) String() string {
	return fmt.Sprintf("%s:%s", m.Module, m.Version)
}

// ComponentIdentifier is the opaque identity a resolver assigns to one
// ModuleVersionIdentifier. It is intentionally a thin wrapper so that a
// real implementation backed by a specific resolver (e.g. Maven GAV
// coordinates, a Git commit, a local project path) can embed whatever
// shape of identity that resolver actually produces.
type ComponentIdentifier struct {
	ModuleVersionIdentifier
}

// Cache memoizes the ModuleVersionIdentifier -> ComponentIdentifier
// mapping for a single resolve. Entries are added, never changed or
// removed: once a ComponentIdentifier has been minted for an id, that
// value is returned for the lifetime of the cache.
//
// Concurrent reads and writes are safe; a racing pair of writers for the
// same key may both compute the identifier, but only one write wins and
// callers always observe a single, stable value afterwards (duplicate
// computation is merely wasted, never observed as a change).
type Cache struct {
	mu      sync.RWMutex
	entries map[ModuleVersionIdentifier]ComponentIdentifier
}

// NewCache creates an empty identifier cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[ModuleVersionIdentifier]ComponentIdentifier)}
}

// GetOrCreate returns the cached ComponentIdentifier for id, creating it
// via newID on first access. A hit only takes the read lock and never
// calls newID; on a miss newID is called without holding any lock, and
// the result is only committed if no other goroutine won the race first.
func (c *Cache) GetOrCreate(id ModuleVersionIdentifier, newID func(ModuleVersionIdentifier) ComponentIdentifier) ComponentIdentifier {
	c.mu.RLock()
	if existing, ok := c.entries[id]; ok {
		c.mu.RUnlock()
		return existing
	}
	c.mu.RUnlock()

	candidate := newID(id)

	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.entries[id]; ok {
		return existing
	}
	c.entries[id] = candidate
	return candidate
}

// Len reports the number of distinct module version identifiers that
// have been resolved to a component identifier so far.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// DefaultComponentIdentifier is the identifier-minting function used
// when no resolver-specific scheme is supplied: the ComponentIdentifier
// is simply the ModuleVersionIdentifier itself, which is exactly what
// most resolvers (and all of the fixtures in internal/fixture) need.
func DefaultComponentIdentifier(id ModuleVersionIdentifier) ComponentIdentifier {
	return ComponentIdentifier{ModuleVersionIdentifier: id}
}
