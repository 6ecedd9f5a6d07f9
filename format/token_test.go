// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package format

import (
	"errors"
	"testing"

	"github.com/danielhkuo/secretballot/models"
)

func TestFormatToken(t *testing.T) {
	got := FormatToken("v1", "u2", models.ChoiceNo)
	if got != "sv:v1:u2:NO" {
		t.Errorf("FormatToken() = %q, want sv:v1:u2:NO", got)
	}

	tok, err := ParseToken(got)
	if err != nil {
		t.Fatalf("ParseToken(%q) error = %v", got, err)
	}
	if tok.VoteID != "v1" || tok.VoterID != "u2" || tok.Choice != models.ChoiceNo {
		t.Errorf("ParseToken(%q) = %+v", got, tok)
	}
}

func TestParseToken(t *testing.T) {
	tests := []struct {
		name    string
		token   string
		want    Token
		wantErr bool
	}{
		{"yes", "sv:abc:123:YES", Token{VoteID: "abc", VoterID: "123", Choice: models.ChoiceYes}, false},
		{"no", "sv:abc:123:NO", Token{VoteID: "abc", VoterID: "123", Choice: models.ChoiceNo}, false},
		{"uuid vote id", "sv:6f1c2b1e-8d0a-4b53-9a7e-0f3f0a9c1d22:42:YES",
			Token{VoteID: "6f1c2b1e-8d0a-4b53-9a7e-0f3f0a9c1d22", VoterID: "42", Choice: models.ChoiceYes}, false},
		{"wrong scheme", "pv:abc:123:YES", Token{}, true},
		{"too few fields", "sv:abc:YES", Token{}, true},
		{"too many fields", "sv:abc:123:YES:extra", Token{}, true},
		{"empty vote id", "sv::123:YES", Token{}, true},
		{"empty voter id", "sv:abc::NO", Token{}, true},
		{"lower case choice", "sv:abc:123:yes", Token{}, true},
		{"abstain", "sv:abc:123:MAYBE", Token{}, true},
		{"empty", "", Token{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseToken(tt.token)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidToken) {
					t.Errorf("ParseToken(%q) error = %v, want ErrInvalidToken", tt.token, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseToken(%q) unexpected error: %v", tt.token, err)
			}
			if got != tt.want {
				t.Errorf("ParseToken(%q) = %+v, want %+v", tt.token, got, tt.want)
			}
		})
	}
}
