// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package scope provides the per-room mutual exclusion used to keep a single
// open vote per voting room.
package scope
