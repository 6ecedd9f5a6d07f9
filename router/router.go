// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/danielhkuo/secretballot/cliparse"
	"github.com/danielhkuo/secretballot/handlers"
	"github.com/danielhkuo/secretballot/middleware"
)

// Banner is the body of GET /
const Banner = "secretballot API v1"

// Services are the collaborators the routes are served from. Inboxes and
// Gatherer are optional; their routes are left out when nil.
type Services struct {
	Coordinator handlers.Coordinator
	Rooms       handlers.Rooms
	Archive     handlers.OutcomeLister
	Inboxes     handlers.Inboxes
	Gatherer    prometheus.Gatherer
}

func NewRouter(svc Services, cfg cliparse.Config) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	voteHandler := handlers.NewVoteHandler(svc.Coordinator, svc.Rooms)
	interactionHandler := handlers.NewInteractionHandler(svc.Coordinator)
	historyHandler := handlers.NewHistoryHandler(svc.Archive)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	if svc.Gatherer != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(svc.Gatherer, promhttp.HandlerOpts{}))
	}

	// Votes
	mux.HandleFunc("POST /votes", middleware.WithLogging(voteHandler.StartVote))
	mux.HandleFunc("GET /votes/{id}", middleware.WithLogging(voteHandler.GetVote))

	// Ballot buttons (signed by the chat platform)
	mux.HandleFunc("POST /interactions", middleware.WithLogging(
		middleware.VerifySignature(cfg.InteractionSecret, interactionHandler.Interact)))

	// Archive
	mux.HandleFunc("GET /history", middleware.WithLogging(historyHandler.List))

	if svc.Inboxes != nil {
		inboxHandler := handlers.NewInboxHandler(svc.Inboxes)
		mux.HandleFunc("GET /inbox/{address...}", middleware.WithLogging(inboxHandler.Get))
	}

	// Root endpoint
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(Banner))
	})

	return mux
}
