// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging

Wrap handlers with request logging:

	mux.HandleFunc("GET /health", middleware.WithLogging(handler))

Logs one line per request (method, path, status, remote, duration_ms).
Server errors are logged at warn level.

# Signed Requests

Interaction events from the bot gateway must be signed:

	mux.HandleFunc("POST /interactions",
		middleware.WithLogging(middleware.VerifySignature(secret, h.Interact)))

VerifySignature reads at most MaxBodyBytes, checks the X-Signature header
with auth.Verify and hands the untouched body to the next handler. Missing
or wrong signatures get 401.

# JSON Helpers

Write JSON responses:

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.ErrorResponse(w, http.StatusBadRequest, "message")

Parse JSON request bodies:

	var req models.StartVoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

# Client IP Extraction

Get the original client IP (handles X-Forwarded-For, X-Real-IP):

	ip := middleware.GetClientIP(r)
*/
package middleware
