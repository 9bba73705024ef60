// Package repository defines storage interfaces implemented by concrete backends.
package repository

import (
	"context"

	"github.com/gofrs/uuid/v5"

	"github.com/vidora/vidora/internal/model"
)

// UserRepository provides account storage including the refresh fingerprint,
// the only field that needs an atomic conditional write.
type UserRepository interface {
	// Create inserts a new user. Returns errs.ErrAlreadyExists on a
	// username/email collision.
	Create(ctx context.Context, u *model.User) error
	// GetByID loads a user by ID.
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	// GetByIdentifier loads a user by username or email.
	GetByIdentifier(ctx context.Context, identifier string) (*model.User, error)
	// UpdatePasswordHash replaces the password hash and salt.
	UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash, salt []byte) error
	// SetRefreshFingerprint unconditionally overwrites the stored fingerprint.
	SetRefreshFingerprint(ctx context.Context, id uuid.UUID, fp string) error
	// SwapRefreshFingerprint replaces old with new only if old still matches,
	// reporting whether the swap applied. This is the CAS the refresh
	// rotation race is resolved on.
	SwapRefreshFingerprint(ctx context.Context, id uuid.UUID, old, fp string) (bool, error)
	// ClearRefreshFingerprint empties the fingerprint. Idempotent.
	ClearRefreshFingerprint(ctx context.Context, id uuid.UUID) error
}
