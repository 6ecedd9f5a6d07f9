// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/secretballot/ballot"
	"github.com/danielhkuo/secretballot/format"
	"github.com/danielhkuo/secretballot/middleware"
	"github.com/danielhkuo/secretballot/models"
)

// ErrNotYourBallot rejects a button pressed by someone other than the voter
// the ballot was sent to.
var ErrNotYourBallot = errors.New("ballot belongs to another voter")

// Replies shown to the voter after a button press
const (
	ReplyRecorded    = "✅ Vote recorded. Thanks!"
	ReplyVoteEnded   = "✅ Vote recorded. Vote ended."
	ReplyNotYours    = "❌ This vote button isn't for you."
	ReplyNotActive   = "❌ This vote is no longer active."
	ReplyNotEligible = "❌ You're not eligible to vote in this poll."
	ReplyAlreadyDone = "❌ Your vote was already recorded."
	ReplyBadToken    = "❌ This button is not a ballot."
)

type InteractionHandler struct {
	coord Coordinator
}

func NewInteractionHandler(coord Coordinator) *InteractionHandler {
	return &InteractionHandler{coord: coord}
}

// HandleButton decodes a ballot token pressed by actorID and records the
// choice. A press by anyone other than the ballot's voter is rejected before
// the vote is touched.
func (h *InteractionHandler) HandleButton(ctx context.Context, actorID, token string) (models.InteractionResponse, error) {
	tok, err := format.ParseToken(token)
	if err != nil {
		return models.InteractionResponse{}, err
	}
	if actorID != tok.VoterID {
		return models.InteractionResponse{}, ErrNotYourBallot
	}

	res, err := h.coord.RecordChoice(ctx, tok.VoteID, tok.VoterID, tok.Choice)
	if err != nil {
		return models.InteractionResponse{}, err
	}

	reply := ReplyRecorded
	if res.Complete {
		reply = ReplyVoteEnded
	}
	return models.InteractionResponse{Content: reply, Complete: res.Complete, Choice: res.Choice}, nil
}

// Interact handles POST /interactions
func (h *InteractionHandler) Interact(w http.ResponseWriter, r *http.Request) {
	var req models.InteractionRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.ActorID == "" || req.Token == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "actor_id and token are required")
		return
	}

	resp, err := h.HandleButton(r.Context(), req.ActorID, req.Token)
	if err != nil {
		status, reply := interactionError(err)
		if status == http.StatusInternalServerError {
			slog.Error("failed to record choice", "error", err)
		}
		middleware.ErrorResponse(w, status, reply)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, resp)
}

func interactionError(err error) (int, string) {
	switch {
	case errors.Is(err, format.ErrInvalidToken), errors.Is(err, ballot.ErrInvalidChoice):
		return http.StatusBadRequest, ReplyBadToken
	case errors.Is(err, ErrNotYourBallot):
		return http.StatusForbidden, ReplyNotYours
	case errors.Is(err, ballot.ErrNotEligible):
		return http.StatusForbidden, ReplyNotEligible
	case errors.Is(err, ballot.ErrNotActive):
		return http.StatusNotFound, ReplyNotActive
	case errors.Is(err, ballot.ErrAlreadyVoted):
		return http.StatusConflict, ReplyAlreadyDone
	}
	return http.StatusInternalServerError, "Failed to record vote"
}
