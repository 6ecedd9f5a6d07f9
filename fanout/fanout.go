// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package fanout

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/danielhkuo/secretballot/messaging"
)

// DefaultLimit is the number of private sends allowed in flight at once.
const DefaultLimit = 10

// Target is one private ballot to deliver.
type Target struct {
	VoterID string
	Address string
	Content messaging.Content
}

// DeliveryError identifies the first target, in input order, that could not
// be reached.
type DeliveryError struct {
	Index   int
	VoterID string
	Err     error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("deliver ballot to %s (#%d): %v", e.VoterID, e.Index, e.Err)
}

func (e *DeliveryError) Unwrap() error { return e.Err }

// Sender delivers private ballots all-or-nothing.
type Sender struct {
	direct messaging.Direct
	limit  int
	log    *slog.Logger
}

func NewSender(direct messaging.Direct, limit int, log *slog.Logger) *Sender {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if log == nil {
		log = slog.Default()
	}
	return &Sender{direct: direct, limit: limit, log: log}
}

// Send delivers every target and returns voter id -> message. If any target
// fails, every delivered message is deleted and a *DeliveryError naming the
// lowest-index failure is returned.
func (s *Sender) Send(ctx context.Context, targets []Target) (map[string]messaging.Message, error) {
	sent := make([]messaging.Message, len(targets))
	errs := make([]error, len(targets))

	// Lowest failed index so far; len(targets) means none
	var firstFail atomic.Int64
	firstFail.Store(int64(len(targets)))

	var g errgroup.Group
	g.SetLimit(s.limit)

	for i, target := range targets {
		g.Go(func() error {
			// A lower index already failed, so this send cannot change the result
			if int64(i) > firstFail.Load() {
				return nil
			}

			msg, err := s.deliver(ctx, target)
			if err != nil {
				errs[i] = err
				lowerTo(&firstFail, int64(i))
				return nil
			}
			sent[i] = msg
			return nil
		})
	}
	_ = g.Wait()

	if idx := int(firstFail.Load()); idx < len(targets) {
		s.Rollback(ctx, sent)
		return nil, &DeliveryError{
			Index:   idx,
			VoterID: targets[idx].VoterID,
			Err:     errs[idx],
		}
	}

	out := make(map[string]messaging.Message, len(targets))
	for i, target := range targets {
		out[target.VoterID] = sent[i]
	}
	return out, nil
}

func (s *Sender) deliver(ctx context.Context, target Target) (messaging.Message, error) {
	ch, err := s.direct.OpenPrivateChannel(ctx, target.Address)
	if err != nil {
		return nil, fmt.Errorf("open private channel: %w", err)
	}
	msg, err := ch.Send(ctx, target.Content)
	if err != nil {
		return nil, fmt.Errorf("send: %w", err)
	}
	return msg, nil
}

// Rollback deletes every non-nil message. Failures are logged and swallowed.
func (s *Sender) Rollback(ctx context.Context, messages []messaging.Message) {
	// Cleanup still runs if the caller gave up
	ctx = context.WithoutCancel(ctx)

	var g errgroup.Group
	g.SetLimit(s.limit)
	for _, msg := range messages {
		if msg == nil {
			continue
		}
		g.Go(func() error {
			if err := msg.Delete(ctx); err != nil {
				s.log.Warn("failed to delete ballot during rollback", "locator", msg.Locator(), "error", err)
			}
			return nil
		})
	}
	_ = g.Wait()
}

func lowerTo(v *atomic.Int64, n int64) {
	for {
		cur := v.Load()
		if n >= cur || v.CompareAndSwap(cur, n) {
			return
		}
	}
}
