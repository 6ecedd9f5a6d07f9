// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package messaging

import (
	"context"
	"errors"
)

var (
	ErrChannelClosed = errors.New("private channel rejected")
	ErrDeleted       = errors.New("message deleted")
	ErrUnknown       = errors.New("unknown message")
)

// Component is an interactive control attached to a message.
type Component struct {
	Label    string `json:"label"`
	CustomID string `json:"custom_id"`
	Style    string `json:"style,omitempty"`
}

// Content is an opaque message body. The ballot core passes it through
// without looking inside.
type Content struct {
	Text       string      `json:"text"`
	Components []Component `json:"components,omitempty"`
}

// Message is a handle on a sent message.
type Message interface {
	Locator() string
	Edit(ctx context.Context, content Content) error
	Delete(ctx context.Context) error
}

// Channel sends messages to one destination.
type Channel interface {
	Send(ctx context.Context, content Content) (Message, error)
}

// Direct opens private channels to participants.
type Direct interface {
	OpenPrivateChannel(ctx context.Context, address string) (Channel, error)
}
