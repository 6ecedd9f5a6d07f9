// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth signs and verifies interaction payloads.

The bot gateway forwards ballot button presses as JSON. Each request carries
the HMAC-SHA256 of its raw body, keyed by the shared interaction secret, in
the X-Signature header:

	sig := auth.Sign(body, secret)
	err := auth.Verify(body, r.Header.Get(auth.SignatureHeader), secret)

Signatures are hex encoded; a "sha256=" prefix is accepted. Comparison is
constant time (hmac.Equal).
*/
package auth
