// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ballot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/danielhkuo/secretballot/fanout"
	"github.com/danielhkuo/secretballot/messaging"
	"github.com/danielhkuo/secretballot/models"
	"github.com/danielhkuo/secretballot/render"
	"github.com/danielhkuo/secretballot/scope"
)

// ContentBuilder turns vote snapshots into message bodies. The coordinator
// never inspects the content it is given.
type ContentBuilder interface {
	// Ballot is the private message with YES/NO controls for voterID.
	Ballot(status models.Status, voterID string) messaging.Content
	// PublicStatus is the room-visible progress display.
	PublicStatus(status models.Status) messaging.Content
	// Defaulted replaces the ballot of a voter counted as YES on timeout.
	Defaulted(status models.Status, voterID string) messaging.Content
}

// Archiver stores finalized outcomes.
type Archiver interface {
	SaveOutcome(ctx context.Context, rec models.Record) error
}

// StartRequest describes a vote to open.
type StartRequest struct {
	CommunityID  string
	RoomID       string
	HostID       string
	Action       models.ActionKind
	Turn         int
	Details      string
	Participants []models.Participant
	// Public is where the status display is posted.
	Public messaging.Channel
}

// StartResult identifies a newly opened vote and its public status message.
type StartResult struct {
	VoteID        string
	PublicLocator string
}

// RecordResult echoes the recorded choice. Complete is set when it was the
// last one outstanding and the vote has been finalized.
type RecordResult struct {
	Choice   models.Choice
	Complete bool
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithArchive saves every finalized outcome to a.
func WithArchive(a Archiver) Option {
	return func(c *Coordinator) { c.archive = a }
}

// WithLogger replaces slog.Default for coordinator and render logs.
func WithLogger(log *slog.Logger) Option {
	return func(c *Coordinator) { c.log = log }
}

// WithRegisterer enables Prometheus metrics for votes and status renders.
func WithRegisterer(r prometheus.Registerer) Option {
	return func(c *Coordinator) { c.registerer = r }
}

// WithClock overrides the wall clock used for timestamps. Timers still run
// on real time, less whatever the clock reports as already elapsed.
func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) { c.now = now }
}

// Coordinator owns every open vote.
type Coordinator struct {
	cfg     Config
	builder ContentBuilder
	sender  *fanout.Sender
	archive Archiver
	log     *slog.Logger
	now     func() time.Time
	newID   func() string

	registerer    prometheus.Registerer
	metrics       *Metrics
	renderMetrics *render.Metrics

	lock  scope.Lock
	votes *registry

	// ctx bounds background work: timers, ticks, renders and cleanup
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New returns a coordinator that sends private ballots through direct.
func New(cfg Config, direct messaging.Direct, builder ContentBuilder, opts ...Option) (*Coordinator, error) {
	if direct == nil || builder == nil {
		return nil, errors.New("ballot: direct messaging and content builder are required")
	}

	c := &Coordinator{
		cfg:     cfg.withDefaults(),
		builder: builder,
		log:     slog.Default(),
		now:     time.Now,
		newID:   uuid.NewString,
		votes:   newRegistry(),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.registerer != nil {
		var err error
		if c.metrics, err = NewMetrics(c.registerer); err != nil {
			return nil, fmt.Errorf("register vote metrics: %w", err)
		}
		if c.renderMetrics, err = render.NewMetrics(c.registerer); err != nil {
			return nil, fmt.Errorf("register render metrics: %w", err)
		}
	}

	c.sender = fanout.NewSender(direct, c.cfg.FanoutLimit, c.log)
	c.ctx, c.cancel = context.WithCancel(context.Background())
	return c, nil
}

// StartVote reserves the room, delivers every private ballot, posts the
// public status and opens the vote. Nothing is left behind on failure.
func (c *Coordinator) StartVote(ctx context.Context, req StartRequest) (StartResult, error) {
	res, err := c.startVote(ctx, req)
	if err != nil {
		c.metrics.reject(err)
		c.log.Info("vote rejected",
			"community_id", req.CommunityID,
			"room_id", req.RoomID,
			"reason", kind(err),
			"error", err,
		)
	}
	return res, err
}

func (c *Coordinator) startVote(ctx context.Context, req StartRequest) (StartResult, error) {
	if !req.Action.Valid() {
		return StartResult{}, fmt.Errorf("%w: %q", ErrUnknownAction, req.Action)
	}

	participants := uniqueParticipants(req.Participants)
	if len(participants) < MinVoters {
		return StartResult{}, ErrTooFewVoters
	}

	key := scope.Key(req.CommunityID, req.RoomID)
	if !c.lock.TryReserve(key) {
		return StartResult{}, ErrActiveVote
	}
	promoted := false
	defer func() {
		if !promoted {
			c.lock.Release(key)
		}
	}()

	voters := make([]models.Voter, len(participants))
	for i, p := range participants {
		voters[i] = p.Voter()
	}
	now := c.now()
	v := newVote(c.newID(), key, req, voters, now, now.Add(c.cfg.Window))
	initial := v.Snapshot(now)

	targets := make([]fanout.Target, len(participants))
	for i, p := range participants {
		targets[i] = fanout.Target{
			VoterID: p.ID,
			Address: p.Address,
			Content: c.builder.Ballot(initial, p.ID),
		}
	}

	ballots, err := c.sender.Send(ctx, targets)
	if err != nil {
		var de *fanout.DeliveryError
		if errors.As(err, &de) {
			p := participants[de.Index]
			return StartResult{}, &DMBlockedError{VoterID: p.ID, DisplayName: p.DisplayName, Err: de.Err}
		}
		return StartResult{}, err
	}

	public, err := c.postPublic(ctx, req.Public, initial)
	if err != nil {
		sent := make([]messaging.Message, 0, len(ballots))
		for _, p := range participants {
			sent = append(sent, ballots[p.ID])
		}
		c.sender.Rollback(ctx, sent)
		return StartResult{}, fmt.Errorf("%w: %v", ErrSendFailed, err)
	}

	v.ballots = ballots
	v.publisher = render.NewPublisher(c.ctx, func(ctx context.Context, s models.Status) error {
		return public.Edit(ctx, c.builder.PublicStatus(s))
	}, render.Options{
		Interval: c.cfg.RenderInterval,
		Metrics:  c.renderMetrics,
		Logger:   c.log,
		Labels:   []any{"vote_id", v.id},
	})

	var watchCtx context.Context
	watchCtx, v.halt = context.WithCancel(c.ctx)

	c.votes.add(v)
	c.lock.Promote(key)
	promoted = true
	c.metrics.voteStarted()

	c.wg.Add(2)
	go c.awaitDeadline(watchCtx, v)
	go func() {
		defer c.wg.Done()
		c.cfg.Ticks.Run(watchCtx, v.startedAt, func() { c.refresh(v) })
	}()

	c.log.Info("vote started",
		"vote_id", v.id,
		"scope", key,
		"action", v.action,
		"turn", v.turn,
		"voters", len(voters),
		"ends_at", initial.EndsAt,
	)

	return StartResult{VoteID: v.id, PublicLocator: public.Locator()}, nil
}

func (c *Coordinator) postPublic(ctx context.Context, ch messaging.Channel, status models.Status) (messaging.Message, error) {
	if ch == nil {
		return nil, errors.New("no public channel")
	}
	return ch.Send(ctx, c.builder.PublicStatus(status))
}

// RecordChoice applies voterID's choice. The call that records the last
// outstanding choice finalizes the vote before returning.
func (c *Coordinator) RecordChoice(ctx context.Context, voteID, voterID string, choice models.Choice) (RecordResult, error) {
	if !choice.Valid() {
		c.metrics.reject(ErrInvalidChoice)
		return RecordResult{}, ErrInvalidChoice
	}

	v, ok := c.votes.get(voteID)
	if !ok {
		c.metrics.reject(ErrNotActive)
		return RecordResult{}, ErrNotActive
	}

	complete, err := v.record(voterID, choice)
	if err != nil {
		c.metrics.reject(err)
		return RecordResult{}, err
	}
	c.metrics.choiceRecorded()

	// Choices are secret: log who voted, not what they chose
	c.log.Debug("choice recorded", "vote_id", voteID, "voter_id", voterID, "complete", complete)

	if complete {
		c.finalize(v, models.ReasonComplete)
	} else {
		c.refresh(v)
	}
	return RecordResult{Choice: choice, Complete: complete}, nil
}

// Active reports whether voteID is open.
func (c *Coordinator) Active(voteID string) bool {
	_, ok := c.votes.get(voteID)
	return ok
}

// Status returns a snapshot of an open vote.
func (c *Coordinator) Status(voteID string) (models.Status, bool) {
	v, ok := c.votes.get(voteID)
	if !ok {
		return models.Status{}, false
	}
	return v.Snapshot(c.now()), true
}

// OpenVotes is the number of votes currently open.
func (c *Coordinator) OpenVotes() int {
	return c.votes.len()
}

// Close stops every deadline timer and tick schedule and waits for
// background work to finish. Open votes are left unfinalized.
func (c *Coordinator) Close() {
	c.cancel()
	c.wg.Wait()
	for _, v := range c.votes.all() {
		_ = v.publisher.Flush(context.Background())
	}
}

func (c *Coordinator) awaitDeadline(ctx context.Context, v *Vote) {
	defer c.wg.Done()

	// Measured from startedAt so the deadline matches the displayed end time
	timer := time.NewTimer(c.cfg.Window - c.now().Sub(v.startedAt))
	defer timer.Stop()

	select {
	case <-ctx.Done():
	case <-timer.C:
		c.finalize(v, models.ReasonTimeout)
	}
}

// refresh asks for a fresh public render while the vote is open.
func (c *Coordinator) refresh(v *Vote) {
	if status, ok := v.openSnapshot(c.now()); ok {
		v.publisher.Request(status)
	}
}

// finalize closes v exactly once, however many triggers fire.
func (c *Coordinator) finalize(v *Vote, reason models.FinalizeReason) {
	outcome, defaulted, ok := v.finalize(c.now(), reason)
	if !ok {
		return
	}
	v.halt()
	// The room is free by the time the vote stops reporting as active
	c.lock.Release(v.scopeKey)
	c.votes.remove(v.id)

	final := v.Snapshot(c.now())
	v.publisher.RequestFinal(final)
	c.notifyDefaulted(final, defaulted, v.ballots)
	if err := v.publisher.Flush(c.ctx); err != nil {
		c.log.Warn("final status render did not finish", "vote_id", v.id, "error", err)
	}

	if c.archive != nil {
		if err := c.archive.SaveOutcome(c.ctx, v.archiveRecord()); err != nil {
			c.log.Warn("failed to archive outcome", "vote_id", v.id, "error", err)
		}
	}

	c.metrics.voteFinalized(reason, outcome.Result)

	c.log.Info("vote finalized",
		"vote_id", v.id,
		"scope", v.scopeKey,
		"reason", reason,
		"result", outcome.Result,
		"yes", outcome.Yes,
		"no", outcome.No,
		"defaulted", len(defaulted),
	)
}

// notifyDefaulted replaces the ballots of voters who were counted as YES.
// Ballots of voters who answered keep their confirmation. Failures are
// logged and dropped.
func (c *Coordinator) notifyDefaulted(final models.Status, defaulted []string, ballots map[string]messaging.Message) {
	var g errgroup.Group
	g.SetLimit(c.cfg.FanoutLimit)
	for _, id := range defaulted {
		msg := ballots[id]
		if msg == nil {
			continue
		}
		content := c.builder.Defaulted(final, id)
		g.Go(func() error {
			if err := msg.Edit(c.ctx, content); err != nil {
				c.log.Warn("failed to notify defaulted voter",
					"vote_id", final.VoteID,
					"voter_id", id,
					"error", err,
				)
			}
			return nil
		})
	}
	_ = g.Wait()
}
