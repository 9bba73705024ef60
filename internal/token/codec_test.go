package token

import (
	"errors"
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/vidora/vidora/internal/errs"
)

func TestCodec_AccessRoundTrip(t *testing.T) {
	t.Parallel()

	c := New([]byte("key"), time.Minute, time.Hour)
	userID := uuid.Must(uuid.NewV4())

	tok, exp, err := c.IssueAccess(userID)
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	if tok == "" || !exp.After(time.Now()) {
		t.Fatalf("bad token/expiry: %q %v", tok, exp)
	}

	got, err := c.VerifyAccess(tok)
	if err != nil {
		t.Fatalf("VerifyAccess: %v", err)
	}
	if got != userID {
		t.Fatalf("subject mismatch: got %s want %s", got, userID)
	}
}

func TestCodec_RefreshCarriesTokenID(t *testing.T) {
	t.Parallel()

	c := New([]byte("key"), time.Minute, time.Hour)
	userID := uuid.Must(uuid.NewV4())

	tok, err := c.IssueRefresh(userID, "nonce-123")
	if err != nil {
		t.Fatalf("IssueRefresh: %v", err)
	}
	gotID, gotNonce, err := c.VerifyRefresh(tok)
	if err != nil {
		t.Fatalf("VerifyRefresh: %v", err)
	}
	if gotID != userID || gotNonce != "nonce-123" {
		t.Fatalf("claims mismatch: %s %q", gotID, gotNonce)
	}
}

func TestCodec_Expired(t *testing.T) {
	t.Parallel()

	c := New([]byte("key"), -time.Minute, -time.Minute)
	userID := uuid.Must(uuid.NewV4())

	tok, _, err := c.IssueAccess(userID)
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	if _, err := c.VerifyAccess(tok); !errors.Is(err, errs.ErrTokenExpired) {
		t.Fatalf("want ErrTokenExpired, got %v", err)
	}

	rtok, err := c.IssueRefresh(userID, "n")
	if err != nil {
		t.Fatalf("IssueRefresh: %v", err)
	}
	if _, _, err := c.VerifyRefresh(rtok); !errors.Is(err, errs.ErrTokenExpired) {
		t.Fatalf("want ErrTokenExpired, got %v", err)
	}
}

func TestCodec_Malformed(t *testing.T) {
	t.Parallel()

	c := New([]byte("key"), time.Minute, time.Hour)
	userID := uuid.Must(uuid.NewV4())

	if _, err := c.VerifyAccess("not-a-token"); !errors.Is(err, errs.ErrTokenMalformed) {
		t.Fatalf("want ErrTokenMalformed for garbage, got %v", err)
	}

	// Signed with a different key.
	other := New([]byte("other-key"), time.Minute, time.Hour)
	tok, _, err := other.IssueAccess(userID)
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	if _, err := c.VerifyAccess(tok); !errors.Is(err, errs.ErrTokenMalformed) {
		t.Fatalf("want ErrTokenMalformed for wrong key, got %v", err)
	}

	// Refresh token without a jti is not a valid refresh token.
	accessOnly, _, err := c.IssueAccess(userID)
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	if _, _, err := c.VerifyRefresh(accessOnly); !errors.Is(err, errs.ErrTokenMalformed) {
		t.Fatalf("want ErrTokenMalformed for missing jti, got %v", err)
	}
}

func TestCodec_RefreshIsNotAnAccessToken(t *testing.T) {
	t.Parallel()

	// A refresh token must never pass as a bearer credential: access
	// verification is stateless, so an accepted refresh token would stay a
	// valid identity for its whole long TTL even after logout rotated it out.
	c := New([]byte("key"), time.Minute, time.Hour)
	userID := uuid.Must(uuid.NewV4())

	rtok, err := c.IssueRefresh(userID, "nonce-xyz")
	if err != nil {
		t.Fatalf("IssueRefresh: %v", err)
	}
	if _, err := c.VerifyAccess(rtok); !errors.Is(err, errs.ErrTokenMalformed) {
		t.Fatalf("want ErrTokenMalformed for refresh token, got %v", err)
	}
}

func TestCodec_StatelessAcrossInstances(t *testing.T) {
	t.Parallel()

	// Two codecs with the same key stand in for two processes; a token issued
	// by one verifies on the other.
	a := New([]byte("shared"), time.Minute, time.Hour)
	b := New([]byte("shared"), time.Minute, time.Hour)
	userID := uuid.Must(uuid.NewV4())

	tok, _, err := a.IssueAccess(userID)
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	got, err := b.VerifyAccess(tok)
	if err != nil || got != userID {
		t.Fatalf("cross-instance verify: got %s err %v", got, err)
	}
}
