// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the secret ballot API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(router.Services{...}, cfg)

# Endpoints

Health and metrics:

	GET /health
	GET /metrics - Prometheus exposition (when a Gatherer is given)

Votes:

	POST /votes      - Start a vote in a room
	GET  /votes/{id} - Open vote status (who has voted, never how)

Ballot buttons (requires X-Signature, HMAC-SHA256 of the body):

	POST /interactions - Record the pressing voter's choice

Archive:

	GET /history?scope=&limit= - Finished outcomes, newest first

In-memory transport (when Inboxes is given):

	GET /inbox/{address...} - Messages delivered to an address

The API routes are wrapped in middleware.WithLogging.
*/
package router
