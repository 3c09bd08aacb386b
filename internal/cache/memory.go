package cache

import (
	"context"
	"sync"
	"time"
)

const (
	// DefaultMemoryEntries bounds a Memory created with a non-positive size.
	DefaultMemoryEntries = 10000

	// sweepInterval is the minimum time between expiry sweeps of a cache
	// that is not full.
	sweepInterval = time.Minute
)

type memoryEntry struct {
	value   string
	expires time.Time // zero means no expiry
}

func (e memoryEntry) expired(now time.Time) bool {
	return !e.expires.IsZero() && !now.Before(e.expires)
}

// Memory is an in-process Cache holding at most maxEntries values. Expired
// entries are dropped on read and swept on write at most once per minute, or
// whenever the cache is full; a full cache with nothing expired evicts the
// entry closest to expiry.
type Memory struct {
	mu         sync.Mutex
	entries    map[string]memoryEntry
	maxEntries int
	nextSweep  time.Time
	now        func() time.Time
}

// NewMemory creates an empty in-memory cache bounded to maxEntries values.
func NewMemory(maxEntries int) *Memory {
	if maxEntries <= 0 {
		maxEntries = DefaultMemoryEntries
	}
	return &Memory{
		entries:    make(map[string]memoryEntry),
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

// Get returns the value stored under key if it has not expired.
func (m *Memory) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.entries[key]
	if !ok {
		return "", false, nil
	}
	if entry.expired(m.now()) {
		delete(m.entries, key)
		return "", false, nil
	}
	return entry.value, true, nil
}

// Set stores value under key. A ttl <= 0 keeps the entry until overwritten
// or evicted.
func (m *Memory) Set(_ context.Context, key, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	entry := memoryEntry{value: value}
	if ttl > 0 {
		entry.expires = now.Add(ttl)
	}

	_, exists := m.entries[key]
	full := !exists && len(m.entries) >= m.maxEntries
	if full || !now.Before(m.nextSweep) {
		m.sweep(now)
		m.nextSweep = now.Add(sweepInterval)
	}
	if !exists && len(m.entries) >= m.maxEntries {
		m.evictOne()
	}
	m.entries[key] = entry
	return nil
}

// Len returns the number of stored entries, expired ones included.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// sweep removes every expired entry. Callers hold mu.
func (m *Memory) sweep(now time.Time) {
	for key, entry := range m.entries {
		if entry.expired(now) {
			delete(m.entries, key)
		}
	}
}

// evictOne removes the entry that expires first, preferring any entry with a
// ttl over one without. Callers hold mu.
func (m *Memory) evictOne() {
	var victim string
	var victimExpires time.Time
	found := false
	for key, entry := range m.entries {
		switch {
		case !found:
		case entry.expires.IsZero():
			continue
		case victimExpires.IsZero() || entry.expires.Before(victimExpires):
		default:
			continue
		}
		victim, victimExpires, found = key, entry.expires, true
	}
	if found {
		delete(m.entries, victim)
	}
}
