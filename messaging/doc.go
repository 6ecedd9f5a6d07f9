// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package messaging defines the send/edit/delete capability the ballot core
needs from a chat platform.

# Contracts

	Direct.OpenPrivateChannel(ctx, address) -> Channel
	Channel.Send(ctx, Content)              -> Message
	Message.Edit(ctx, Content)
	Message.Delete(ctx)

Content is opaque to the core. It is built by a renderer from a
models.Status and only passed through.

# In-Memory Transport

Memory implements every contract in process:

	mem := messaging.NewMemory()
	public := mem.Channel("#votes")
	mem.FailOpen("dm:bob", messaging.ErrChannelClosed)

Inbox and Lookup return copies for inspection.
*/
package messaging
