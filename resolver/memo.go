package resolver

import (
	"sync"
	"time"
)

// memoTTL is short on purpose: long enough to absorb a user re-running the
// same query, short enough that fresh activity shows up on the next try.
const memoTTL = 30 * time.Second

type memoEntry struct {
	value   interface{}
	expires time.Time
}

// memo is a TTL cache for resolved results, keyed by the full request
// shape. Expired entries are dropped lazily on read.
type memo struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]memoEntry
}

func newMemo(ttl time.Duration) *memo {
	return &memo{
		ttl:     ttl,
		entries: map[string]memoEntry{},
	}
}

func (m *memo) Get(key string) (interface{}, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, found := m.entries[key]
	if !found {
		return nil, false
	}
	if time.Now().After(entry.expires) {
		delete(m.entries, key)
		return nil, false
	}
	return entry.value, true
}

func (m *memo) Set(key string, value interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = memoEntry{
		value:   value,
		expires: time.Now().Add(m.ttl),
	}
}
