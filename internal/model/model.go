// Package model defines domain entities used by services and repositories.
package model

import (
	"time"

	"github.com/gofrs/uuid/v5"
)

// TokenPair collects the access/refresh tokens issued by a login or refresh.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time // access token expiry (for diagnostics)
}

// User represents an account. The password is stored as an Argon2id hash with
// a per-user salt; RefreshFingerprint is the hash of the token ID embedded in
// the currently valid refresh token, or empty when logged out.
type User struct {
	ID                 uuid.UUID // PK
	Username           string    // unique
	Email              string    // unique
	Fullname           string
	PwdHash            []byte // Argon2id(password, SaltAuth)
	SaltAuth           []byte // per-user auth salt
	RefreshFingerprint string // hex sha256 of the live refresh token ID, "" if none
	CreatedAt          time.Time
}

// RelationKind names a user-to-entity relation stored in the ledger.
type RelationKind string

// Relation kinds. Targets are opaque ids; the ledger never dereferences them.
const (
	KindVideoLike    RelationKind = "video-like"
	KindCommentLike  RelationKind = "comment-like"
	KindTweetLike    RelationKind = "tweet-like"
	KindSubscription RelationKind = "subscription"
)

// Valid reports whether k is one of the known relation kinds.
func (k RelationKind) Valid() bool {
	switch k {
	case KindVideoLike, KindCommentLike, KindTweetLike, KindSubscription:
		return true
	}
	return false
}

// Relation is a single (actor, kind, target) row. At most one row exists per
// tuple at any instant, enforced by a unique index.
type Relation struct {
	ActorID   uuid.UUID
	Kind      RelationKind
	TargetID  uuid.UUID
	CreatedAt time.Time
}

// ChannelProfile is a read-only projection over the subscription ledger.
type ChannelProfile struct {
	User              User
	SubscriberCount   int64
	SubscribedToCount int64
	IsSubscribed      bool
}
