package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"

	"github.com/vidora/vidora/internal/errs"
	"github.com/vidora/vidora/internal/model"
)

// UserRepo implements UserRepository using PostgreSQL.
type UserRepo struct{ db *DB }

// NewUserRepo constructs a user repository.
func NewUserRepo(db *DB) *UserRepo { return &UserRepo{db: db} }

// storeErr maps unexpected storage failures onto ErrStoreUnavailable while
// letting caller-initiated cancellation and deadline expiry pass through.
func storeErr(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("%w: %v", errs.ErrStoreUnavailable, err)
}

// Create inserts a new user row.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	const q = `
INSERT INTO users (id, username, email, fullname, pwd_hash, salt_auth, refresh_fingerprint)
VALUES ($1, $2, $3, $4, $5, $6, '')`
	_, err := r.db.Pool.Exec(ctx, q, u.ID, u.Username, u.Email, u.Fullname, u.PwdHash, u.SaltAuth)
	if isUniqueViolation(err) {
		return errs.ErrAlreadyExists
	}
	if err != nil {
		return storeErr(err)
	}
	return nil
}

const userColumns = `id, username, email, fullname, pwd_hash, salt_auth, refresh_fingerprint, created_at`

func scanUser(row pgx.Row) (*model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.Fullname, &u.PwdHash, &u.SaltAuth, &u.RefreshFingerprint, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, storeErr(err)
	}
	return &u, nil
}

// GetByID selects a user by ID.
func (r *UserRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE id=$1`
	return scanUser(r.db.Pool.QueryRow(ctx, q, id))
}

// GetByIdentifier selects a user by username or email.
func (r *UserRepo) GetByIdentifier(ctx context.Context, identifier string) (*model.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE username=$1 OR email=$1`
	return scanUser(r.db.Pool.QueryRow(ctx, q, identifier))
}

// UpdatePasswordHash replaces hash and salt for a user.
func (r *UserRepo) UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash, salt []byte) error {
	const q = `UPDATE users SET pwd_hash=$2, salt_auth=$3 WHERE id=$1`
	tag, err := r.db.Pool.Exec(ctx, q, id, hash, salt)
	if err != nil {
		return storeErr(err)
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// SetRefreshFingerprint unconditionally overwrites the stored fingerprint.
// Login uses this; it implicitly revokes any previously issued refresh token.
func (r *UserRepo) SetRefreshFingerprint(ctx context.Context, id uuid.UUID, fp string) error {
	const q = `UPDATE users SET refresh_fingerprint=$2 WHERE id=$1`
	tag, err := r.db.Pool.Exec(ctx, q, id, fp)
	if err != nil {
		return storeErr(err)
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// SwapRefreshFingerprint performs the rotation CAS: the new fingerprint is
// written only while the old one still matches. RowsAffected==0 means a
// concurrent refresh (or logout) got there first.
func (r *UserRepo) SwapRefreshFingerprint(ctx context.Context, id uuid.UUID, old, fp string) (bool, error) {
	const q = `UPDATE users SET refresh_fingerprint=$3 WHERE id=$1 AND refresh_fingerprint=$2`
	tag, err := r.db.Pool.Exec(ctx, q, id, old, fp)
	if err != nil {
		return false, storeErr(err)
	}
	return tag.RowsAffected() == 1, nil
}

// ClearRefreshFingerprint empties the fingerprint. A second clear is a no-op,
// not an error.
func (r *UserRepo) ClearRefreshFingerprint(ctx context.Context, id uuid.UUID) error {
	const q = `UPDATE users SET refresh_fingerprint='' WHERE id=$1`
	_, err := r.db.Pool.Exec(ctx, q, id)
	if err != nil {
		return storeErr(err)
	}
	return nil
}
