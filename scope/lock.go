// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package scope

import "sync"

type state uint8

const (
	reserved state = iota + 1
	active
)

// Key derives the exclusion key for a voting room within a community.
func Key(communityID, roomID string) string {
	return communityID + ":" + roomID
}

// Lock hands out at most one holder per key. A key is first reserved while a
// vote is being set up and then promoted to active for the vote's lifetime.
// The zero value is ready to use.
type Lock struct {
	mu   sync.Mutex
	keys map[string]state
}

// TryReserve claims key. It returns false if the key is reserved or active.
func (l *Lock) TryReserve(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, held := l.keys[key]; held {
		return false
	}
	if l.keys == nil {
		l.keys = make(map[string]state)
	}
	l.keys[key] = reserved
	return true
}

// Promote marks a reserved key as owned by an open vote.
func (l *Lock) Promote(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.keys[key] == reserved {
		l.keys[key] = active
	}
}

// Release frees key whether it was reserved or active.
func (l *Lock) Release(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	delete(l.keys, key)
}

// Held reports whether key is reserved or active.
func (l *Lock) Held(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	_, held := l.keys[key]
	return held
}

// Active reports whether key belongs to an open vote.
func (l *Lock) Active(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.keys[key] == active
}
