// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/danielhkuo/secretballot/messaging"
	"github.com/danielhkuo/secretballot/middleware"
	"github.com/danielhkuo/secretballot/models"
)

// Inboxes lists what the in-memory transport delivered to an address.
type Inboxes interface {
	Inbox(address string) []messaging.Snapshot
}

type InboxHandler struct {
	inboxes Inboxes
}

func NewInboxHandler(inboxes Inboxes) *InboxHandler {
	return &InboxHandler{inboxes: inboxes}
}

// Get handles GET /inbox/{address...}
func (h *InboxHandler) Get(w http.ResponseWriter, r *http.Request) {
	address := r.PathValue("address")
	if address == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "address is required")
		return
	}

	snaps := h.inboxes.Inbox(address)
	out := make([]models.InboxMessage, len(snaps))
	for i, s := range snaps {
		msg := models.InboxMessage{Locator: s.Locator, Text: s.Content.Text, Deleted: s.Deleted}
		for _, c := range s.Content.Components {
			msg.Components = append(msg.Components, c.CustomID)
		}
		out[i] = msg
	}
	middleware.JSONResponse(w, http.StatusOK, out)
}
