// Package token implements stateless signing and verification of access and
// refresh tokens. The codec keeps no state beyond the signing key, so any
// process holding the same key verifies identically.
package token

import (
	"errors"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/golang-jwt/jwt/v5"

	"github.com/vidora/vidora/internal/errs"
)

// Codec signs and verifies HS256 JWTs. The key is loaded once at startup and
// never mutated.
type Codec struct {
	signKey    []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// New constructs a Codec with the process-wide signing key and TTLs.
func New(signKey []byte, accessTTL, refreshTTL time.Duration) *Codec {
	return &Codec{signKey: signKey, accessTTL: accessTTL, refreshTTL: refreshTTL}
}

// AccessTTL reports the configured access token lifetime.
func (c *Codec) AccessTTL() time.Duration { return c.accessTTL }

// IssueAccess creates a signed access token for the given subject.
func (c *Codec) IssueAccess(userID uuid.UUID) (string, time.Time, error) {
	now := time.Now()
	exp := now.Add(c.accessTTL)
	claims := jwt.RegisteredClaims{
		Subject:   userID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.signKey)
	return signed, exp, err
}

// IssueRefresh creates a signed refresh token carrying tokenID as jti. The
// caller persists only a fingerprint of tokenID, never the token itself.
func (c *Codec) IssueRefresh(userID uuid.UUID, tokenID string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   userID.String(),
		ID:        tokenID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(c.refreshTTL)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.signKey)
}

// VerifyAccess checks signature and expiry and returns the subject user ID.
// A jti marks a refresh token; those never pass as access credentials, or a
// long-lived refresh token would outlive its own revocation at the gate.
func (c *Codec) VerifyAccess(tok string) (uuid.UUID, error) {
	claims, err := c.verify(tok)
	if err != nil {
		return uuid.Nil, err
	}
	if claims.ID != "" {
		return uuid.Nil, errs.ErrTokenMalformed
	}
	id, err := uuid.FromString(claims.Subject)
	if err != nil {
		return uuid.Nil, errs.ErrTokenMalformed
	}
	return id, nil
}

// VerifyRefresh checks signature and expiry and returns the subject user ID
// and the embedded token ID.
func (c *Codec) VerifyRefresh(tok string) (uuid.UUID, string, error) {
	claims, err := c.verify(tok)
	if err != nil {
		return uuid.Nil, "", err
	}
	id, err := uuid.FromString(claims.Subject)
	if err != nil || claims.ID == "" {
		return uuid.Nil, "", errs.ErrTokenMalformed
	}
	return id, claims.ID, nil
}

// verify parses and validates a token, mapping jwt errors onto the sentinel
// taxonomy. Expiry is reported distinctly from any structural failure.
func (c *Codec) verify(tok string) (*jwt.RegisteredClaims, error) {
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(tok, claims, func(*jwt.Token) (any, error) {
		return c.signKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	switch {
	case err == nil && parsed.Valid:
		return claims, nil
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, errs.ErrTokenExpired
	default:
		return nil, errs.ErrTokenMalformed
	}
}
