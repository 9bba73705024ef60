// Package service contains application services for sessions and relations.
package service

import (
	"errors"
	"fmt"
	"strings"

	"context"

	"github.com/gofrs/uuid/v5"

	pkgcrypto "github.com/vidora/vidora/internal/crypto"
	"github.com/vidora/vidora/internal/errs"
	"github.com/vidora/vidora/internal/limiter"
	"github.com/vidora/vidora/internal/model"
	"github.com/vidora/vidora/internal/repository"
	"github.com/vidora/vidora/internal/token"
)

// SessionService owns the two-token session lifecycle: issuance on login,
// rotation on refresh, and invalidation on logout or password change.
type SessionService interface {
	// Register creates a new account with secure password hashing.
	Register(ctx context.Context, username, email, fullname, password string) (userID string, err error)
	// LoginWithIP applies rate-limiting, authenticates, and issues a token pair.
	LoginWithIP(ctx context.Context, identifier, password, ip string) (model.TokenPair, model.User, error)
	// Refresh rotates a presented refresh token into a fresh pair.
	Refresh(ctx context.Context, presented string) (model.TokenPair, error)
	// Logout clears the stored fingerprint. Idempotent.
	Logout(ctx context.Context, userID uuid.UUID) error
	// ChangePassword verifies the old password and installs a new hash.
	ChangePassword(ctx context.Context, userID uuid.UUID, oldPassword, newPassword string) error
	// VerifyAccess validates an access token and returns its subject.
	VerifyAccess(tok string) (uuid.UUID, error)
	// GetUser loads an account by id.
	GetUser(ctx context.Context, userID uuid.UUID) (*model.User, error)
}

type SessionServiceImpl struct {
	users repository.UserRepository
	codec *token.Codec
	lim   limiter.Limiter
}

// NewSessionService constructs SessionService with required dependencies.
func NewSessionService(users repository.UserRepository, codec *token.Codec, lim limiter.Limiter) *SessionServiceImpl {
	return &SessionServiceImpl{users: users, codec: codec, lim: lim}
}

// Register creates a new user record with a per-user salt.
func (s *SessionServiceImpl) Register(ctx context.Context, username, email, fullname, password string) (string, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	email = strings.TrimSpace(email)
	if username == "" || email == "" || fullname == "" || password == "" {
		return "", errors.New("validation: all fields are required")
	}
	uid, err := uuid.NewV4()
	if err != nil {
		return "", err
	}
	saltAuth, err := pkgcrypto.RandBytes(16)
	if err != nil {
		return "", err
	}
	u := &model.User{
		ID:       uid,
		Username: username,
		Email:    email,
		Fullname: fullname,
		PwdHash:  pkgcrypto.HashPassword([]byte(password), saltAuth),
		SaltAuth: saltAuth,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return "", err
	}
	return uid.String(), nil
}

// LoginWithIP authenticates with rate limiting by (identifier, ip). On
// success the stored fingerprint is overwritten unconditionally, which
// revokes any refresh token issued by a previous login.
func (s *SessionServiceImpl) LoginWithIP(ctx context.Context, identifier, password, ip string) (model.TokenPair, model.User, error) {
	ipHash := limiter.HashIP(ip)

	allowed, _, err := s.lim.Allow(ctx, identifier, ipHash)
	if err != nil {
		return model.TokenPair{}, model.User{}, err
	}
	if !allowed {
		return model.TokenPair{}, model.User{}, errs.ErrRateLimited
	}

	u, err := s.users.GetByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			if blocked, _, ferr := s.lim.Failure(ctx, identifier, ipHash); ferr == nil && blocked {
				return model.TokenPair{}, model.User{}, errs.ErrRateLimited
			}
			return model.TokenPair{}, model.User{}, errs.ErrNotFound
		}
		return model.TokenPair{}, model.User{}, err
	}
	if !pkgcrypto.VerifyPassword([]byte(password), u.SaltAuth, u.PwdHash) {
		if blocked, _, ferr := s.lim.Failure(ctx, identifier, ipHash); ferr == nil && blocked {
			return model.TokenPair{}, model.User{}, errs.ErrRateLimited
		}
		return model.TokenPair{}, model.User{}, errs.ErrInvalidCredential
	}

	// Success: reset counters (best-effort).
	_ = s.lim.Success(ctx, identifier, ipHash)

	pair, fp, err := s.issuePair(u.ID)
	if err != nil {
		return model.TokenPair{}, model.User{}, err
	}
	if err := s.users.SetRefreshFingerprint(ctx, u.ID, fp); err != nil {
		return model.TokenPair{}, model.User{}, err
	}
	return pair, *u, nil
}

// Refresh verifies the presented refresh token against the stored fingerprint
// and rotates it. The fingerprint swap is a compare-and-swap: of two refresh
// calls racing with the same token, exactly one wins; the loser gets
// ErrSessionRevoked and must re-authenticate.
func (s *SessionServiceImpl) Refresh(ctx context.Context, presented string) (model.TokenPair, error) {
	userID, tokenID, err := s.codec.VerifyRefresh(presented)
	if err != nil {
		return model.TokenPair{}, err
	}

	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return model.TokenPair{}, errs.ErrSessionRevoked
		}
		return model.TokenPair{}, err
	}

	presentedFP := pkgcrypto.Fingerprint(tokenID)
	if u.RefreshFingerprint == "" || u.RefreshFingerprint != presentedFP {
		return model.TokenPair{}, errs.ErrSessionRevoked
	}

	pair, newFP, err := s.issuePair(userID)
	if err != nil {
		return model.TokenPair{}, err
	}
	swapped, err := s.users.SwapRefreshFingerprint(ctx, userID, presentedFP, newFP)
	if err != nil {
		return model.TokenPair{}, err
	}
	if !swapped {
		// A concurrent refresh already rotated the fingerprint; the presented
		// token is provably stale.
		return model.TokenPair{}, errs.ErrSessionRevoked
	}
	return pair, nil
}

// Logout clears the fingerprint unconditionally; a second logout is a no-op.
func (s *SessionServiceImpl) Logout(ctx context.Context, userID uuid.UUID) error {
	if userID == uuid.Nil {
		return errors.New("validation: empty userID")
	}
	return s.users.ClearRefreshFingerprint(ctx, userID)
}

// ChangePassword verifies the old password, installs a new hash with a fresh
// salt, and revokes the active refresh session so a stolen refresh token dies
// with the old password.
func (s *SessionServiceImpl) ChangePassword(ctx context.Context, userID uuid.UUID, oldPassword, newPassword string) error {
	if newPassword == "" {
		return errors.New("validation: empty new password")
	}
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if !pkgcrypto.VerifyPassword([]byte(oldPassword), u.SaltAuth, u.PwdHash) {
		return errs.ErrInvalidCredential
	}
	salt, err := pkgcrypto.RandBytes(16)
	if err != nil {
		return err
	}
	hash := pkgcrypto.HashPassword([]byte(newPassword), salt)
	if err := s.users.UpdatePasswordHash(ctx, userID, hash, salt); err != nil {
		return err
	}
	return s.users.ClearRefreshFingerprint(ctx, userID)
}

// VerifyAccess validates an access token. Pure CPU; no store access.
func (s *SessionServiceImpl) VerifyAccess(tok string) (uuid.UUID, error) {
	return s.codec.VerifyAccess(tok)
}

// GetUser loads an account by id.
func (s *SessionServiceImpl) GetUser(ctx context.Context, userID uuid.UUID) (*model.User, error) {
	return s.users.GetByID(ctx, userID)
}

// issuePair mints a fresh token id, issues both tokens, and returns the
// fingerprint to persist.
func (s *SessionServiceImpl) issuePair(userID uuid.UUID) (model.TokenPair, string, error) {
	tid, err := uuid.NewV4()
	if err != nil {
		return model.TokenPair{}, "", err
	}
	tokenID := tid.String()

	access, exp, err := s.codec.IssueAccess(userID)
	if err != nil {
		return model.TokenPair{}, "", fmt.Errorf("issue access: %w", err)
	}
	refresh, err := s.codec.IssueRefresh(userID, tokenID)
	if err != nil {
		return model.TokenPair{}, "", fmt.Errorf("issue refresh: %w", err)
	}
	return model.TokenPair{AccessToken: access, RefreshToken: refresh, ExpiresAt: exp}, pkgcrypto.Fingerprint(tokenID), nil
}
