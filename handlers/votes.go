// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/danielhkuo/secretballot/ballot"
	"github.com/danielhkuo/secretballot/messaging"
	"github.com/danielhkuo/secretballot/middleware"
	"github.com/danielhkuo/secretballot/models"
)

// Turn bounds accepted when starting a vote
const (
	MinTurn = 1
	MaxTurn = 9999
)

// Coordinator is the part of ballot.Coordinator the handlers use.
type Coordinator interface {
	StartVote(ctx context.Context, req ballot.StartRequest) (ballot.StartResult, error)
	RecordChoice(ctx context.Context, voteID, voterID string, choice models.Choice) (ballot.RecordResult, error)
	Status(voteID string) (models.Status, bool)
}

// Rooms resolves the public channel of a room.
type Rooms func(communityID, roomID string) messaging.Channel

// RoomAddress is where MemoryRooms posts the status of a room.
func RoomAddress(communityID, roomID string) string {
	return "room/" + communityID + "/" + roomID
}

// MemoryRooms posts public statuses to the in-memory transport.
func MemoryRooms(mem *messaging.Memory) Rooms {
	return func(communityID, roomID string) messaging.Channel {
		return mem.Channel(RoomAddress(communityID, roomID))
	}
}

type VoteHandler struct {
	coord Coordinator
	rooms Rooms
}

func NewVoteHandler(coord Coordinator, rooms Rooms) *VoteHandler {
	return &VoteHandler{coord: coord, rooms: rooms}
}

// StartVote handles POST /votes
func (h *VoteHandler) StartVote(w http.ResponseWriter, r *http.Request) {
	var req models.StartVoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	// Validate input
	if req.CommunityID == "" || req.RoomID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "community_id and room_id are required")
		return
	}
	if req.HostID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "host_id is required")
		return
	}
	action, err := models.ParseActionKind(req.Action)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Turn < MinTurn || req.Turn > MaxTurn {
		middleware.ErrorResponse(w, http.StatusBadRequest, "turn must be between 1 and 9999")
		return
	}
	if action == models.ActionRemap && req.Turn > models.RemapMaxTurn {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Remap votes are only allowed up to turn 10")
		return
	}
	if strings.TrimSpace(req.Details) == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "details is required")
		return
	}

	res, err := h.coord.StartVote(r.Context(), ballot.StartRequest{
		CommunityID:  req.CommunityID,
		RoomID:       req.RoomID,
		HostID:       req.HostID,
		Action:       action,
		Turn:         req.Turn,
		Details:      req.Details,
		Participants: ballot.AdjustVoters(req.Participants, req.Mentions),
		Public:       h.rooms(req.CommunityID, req.RoomID),
	})
	if err != nil {
		writeStartError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, models.StartVoteResponse{
		VoteID:        res.VoteID,
		PublicMessage: res.PublicLocator,
	})
}

func writeStartError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ballot.ErrTooFewVoters), errors.Is(err, ballot.ErrUnknownAction):
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ballot.ErrActiveVote):
		middleware.ErrorResponse(w, http.StatusConflict, err.Error())
	case errors.Is(err, ballot.ErrDMBlocked):
		middleware.ErrorResponse(w, http.StatusUnprocessableEntity, err.Error()+". They must allow direct messages, then try again.")
	case errors.Is(err, ballot.ErrSendFailed):
		middleware.ErrorResponse(w, http.StatusBadGateway, err.Error())
	default:
		slog.Error("failed to start vote", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to start vote")
	}
}

// GetVote handles GET /votes/{id}
func (h *VoteHandler) GetVote(w http.ResponseWriter, r *http.Request) {
	voteID := r.PathValue("id")
	if voteID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "vote id is required")
		return
	}

	status, ok := h.coord.Status(voteID)
	if !ok {
		middleware.ErrorResponse(w, http.StatusNotFound, "Vote not found or no longer active")
		return
	}

	resp := models.StatusResponse{Status: status, Voted: []string{}, Awaiting: []string{}}
	for _, v := range status.Voters {
		if status.HasVoted(v.ID) {
			resp.Voted = append(resp.Voted, v.ID)
		} else {
			resp.Awaiting = append(resp.Awaiting, v.ID)
		}
	}
	middleware.JSONResponse(w, http.StatusOK, resp)
}
