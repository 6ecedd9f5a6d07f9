// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package messaging

import (
	"context"
	"fmt"
	"slices"
	"sync"
)

// Snapshot is a copy of a message held by Memory.
type Snapshot struct {
	Locator string
	Address string
	Content Content
	Edits   int
	Deleted bool
}

// Memory is an in-process transport. It backs the development server and
// tests; failures can be injected per address.
type Memory struct {
	mu       sync.Mutex
	seq      int
	messages map[string]*Snapshot
	byAddr   map[string][]string

	failOpen map[string]error
	failSend map[string]error
	failEdit map[string]error
	failDel  map[string]error
}

func NewMemory() *Memory {
	return &Memory{
		messages: make(map[string]*Snapshot),
		byAddr:   make(map[string][]string),
		failOpen: make(map[string]error),
		failSend: make(map[string]error),
		failEdit: make(map[string]error),
		failDel:  make(map[string]error),
	}
}

// FailOpen makes OpenPrivateChannel fail for address.
func (m *Memory) FailOpen(address string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failOpen[address] = err
}

// FailSend makes sends to address fail.
func (m *Memory) FailSend(address string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failSend[address] = err
}

// FailEdits makes edits of messages sent to address fail.
func (m *Memory) FailEdits(address string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failEdit[address] = err
}

// FailDeletes makes deletes of messages sent to address fail.
func (m *Memory) FailDeletes(address string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failDel[address] = err
}

// OpenPrivateChannel implements Direct.
func (m *Memory) OpenPrivateChannel(ctx context.Context, address string) (Channel, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failOpen[address]; err != nil {
		return nil, err
	}
	return &memoryChannel{m: m, address: address}, nil
}

// Channel returns a channel that delivers to address without the private
// channel handshake. Used for public status messages.
func (m *Memory) Channel(address string) Channel {
	return &memoryChannel{m: m, address: address}
}

// Inbox returns every message sent to address, oldest first.
func (m *Memory) Inbox(address string) []Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Snapshot, 0, len(m.byAddr[address]))
	for _, loc := range m.byAddr[address] {
		out = append(out, m.copyOf(loc))
	}
	return out
}

// Lookup returns the message at locator.
func (m *Memory) Lookup(locator string) (Snapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.messages[locator]; !ok {
		return Snapshot{}, false
	}
	return m.copyOf(locator), true
}

func (m *Memory) copyOf(locator string) Snapshot {
	s := *m.messages[locator]
	s.Content.Components = slices.Clone(s.Content.Components)
	return s
}

type memoryChannel struct {
	m       *Memory
	address string
}

func (c *memoryChannel) Send(ctx context.Context, content Content) (Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.m.mu.Lock()
	defer c.m.mu.Unlock()
	if err := c.m.failSend[c.address]; err != nil {
		return nil, err
	}

	c.m.seq++
	loc := fmt.Sprintf("mem://%s/%d", c.address, c.m.seq)
	content.Components = slices.Clone(content.Components)
	c.m.messages[loc] = &Snapshot{Locator: loc, Address: c.address, Content: content}
	c.m.byAddr[c.address] = append(c.m.byAddr[c.address], loc)

	return &memoryMessage{m: c.m, locator: loc, address: c.address}, nil
}

type memoryMessage struct {
	m       *Memory
	locator string
	address string
}

func (msg *memoryMessage) Locator() string { return msg.locator }

func (msg *memoryMessage) Edit(ctx context.Context, content Content) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg.m.mu.Lock()
	defer msg.m.mu.Unlock()
	if err := msg.m.failEdit[msg.address]; err != nil {
		return err
	}
	s, ok := msg.m.messages[msg.locator]
	if !ok {
		return ErrUnknown
	}
	if s.Deleted {
		return ErrDeleted
	}
	content.Components = slices.Clone(content.Components)
	s.Content = content
	s.Edits++
	return nil
}

func (msg *memoryMessage) Delete(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg.m.mu.Lock()
	defer msg.m.mu.Unlock()
	if err := msg.m.failDel[msg.address]; err != nil {
		return err
	}
	s, ok := msg.m.messages[msg.locator]
	if !ok {
		return ErrUnknown
	}
	s.Deleted = true
	return nil
}
