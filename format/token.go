// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package format

import (
	"errors"
	"fmt"
	"strings"

	"github.com/danielhkuo/secretballot/models"
)

// TokenScheme prefixes every ballot button token.
const TokenScheme = "sv"

var ErrInvalidToken = errors.New("invalid ballot token")

// Token is a decoded ballot button press.
type Token struct {
	VoteID  string
	VoterID string
	Choice  models.Choice
}

// FormatToken encodes a ballot button as sv:voteId:voterId:YES|NO.
func FormatToken(voteID, voterID string, choice models.Choice) string {
	return strings.Join([]string{TokenScheme, voteID, voterID, string(choice)}, ":")
}

// ParseToken decodes a token made by FormatToken.
func ParseToken(s string) (Token, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 4 {
		return Token{}, fmt.Errorf("%w: want 4 fields, got %d", ErrInvalidToken, len(parts))
	}
	if parts[0] != TokenScheme {
		return Token{}, fmt.Errorf("%w: scheme %q", ErrInvalidToken, parts[0])
	}

	t := Token{VoteID: parts[1], VoterID: parts[2], Choice: models.Choice(parts[3])}
	if t.VoteID == "" || t.VoterID == "" {
		return Token{}, fmt.Errorf("%w: empty id", ErrInvalidToken)
	}
	if !t.Choice.Valid() {
		return Token{}, fmt.Errorf("%w: choice %q", ErrInvalidToken, parts[3])
	}
	return t, nil
}
