package repository

import (
	"context"

	"github.com/gofrs/uuid/v5"

	"github.com/vidora/vidora/internal/model"
)

// RelationRepository provides access to the (actor, kind, target) ledger.
// A unique index on the tuple is the only synchronization primitive required;
// InsertIfAbsent and DeleteIfPresent report whether a row was actually
// written so callers can reconcile lost races.
type RelationRepository interface {
	// InsertIfAbsent inserts the tuple unless it already exists.
	InsertIfAbsent(ctx context.Context, actorID uuid.UUID, kind model.RelationKind, targetID uuid.UUID) (bool, error)
	// DeleteIfPresent removes the tuple if it exists.
	DeleteIfPresent(ctx context.Context, actorID uuid.UUID, kind model.RelationKind, targetID uuid.UUID) (bool, error)
	// Exists reports whether the tuple currently holds.
	Exists(ctx context.Context, actorID uuid.UUID, kind model.RelationKind, targetID uuid.UUID) (bool, error)
	// ListTargetsByActor returns the unordered set of targets for an actor and kind.
	ListTargetsByActor(ctx context.Context, actorID uuid.UUID, kind model.RelationKind) ([]uuid.UUID, error)
	// CountByTarget counts rows pointing at a target (e.g. subscribers of a channel).
	CountByTarget(ctx context.Context, kind model.RelationKind, targetID uuid.UUID) (int64, error)
	// CountByActor counts rows created by an actor (e.g. channels subscribed to).
	CountByActor(ctx context.Context, kind model.RelationKind, actorID uuid.UUID) (int64, error)
}
