// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ballot

import "sync"

// registry holds open votes by id.
type registry struct {
	mu    sync.Mutex
	votes map[string]*Vote
}

func newRegistry() *registry {
	return &registry{votes: make(map[string]*Vote)}
}

func (r *registry) add(v *Vote) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.votes[v.id] = v
}

func (r *registry) get(id string) (*Vote, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.votes[id]
	return v, ok
}

func (r *registry) remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.votes, id)
}

// all returns the open votes in no particular order.
func (r *registry) all() []*Vote {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Vote, 0, len(r.votes))
	for _, v := range r.votes {
		out = append(out, v)
	}
	return out
}

func (r *registry) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.votes)
}
