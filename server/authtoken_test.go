package server

import (
	"testing"
	"time"

	"mooworld/types"
)

func TestTokenIssuerRoundTrip(t *testing.T) {
	ti := newTokenIssuer()

	player := types.ObjID(42)
	token, err := ti.Issue(player, time.Hour)
	if err != nil {
		t.Fatalf("Issue() failed: %v", err)
	}

	got, err := ti.Verify(token)
	if err != nil {
		t.Fatalf("Verify() failed: %v", err)
	}
	if got != player {
		t.Errorf("Verify() = %v, want %v", got, player)
	}
}

func TestTokenIssuerRejectsExpiredToken(t *testing.T) {
	ti := newTokenIssuer()

	token, err := ti.Issue(types.ObjID(7), -time.Hour)
	if err != nil {
		t.Fatalf("Issue() failed: %v", err)
	}

	if _, err := ti.Verify(token); err == nil {
		t.Error("Verify() accepted a token whose expiry is in the past")
	}
}

func TestTokenIssuerRejectsForeignToken(t *testing.T) {
	a := newTokenIssuer()
	b := newTokenIssuer()

	token, err := a.Issue(types.ObjID(1), time.Hour)
	if err != nil {
		t.Fatalf("Issue() failed: %v", err)
	}

	if _, err := b.Verify(token); err == nil {
		t.Error("Verify() accepted a token signed with a different issuer's key")
	}
}

// Compile-time assertion that the websocket adapter satisfies Transport,
// the same interface TCPTransport and PipeTransport satisfy.
var _ Transport = (*WSTransport)(nil)
