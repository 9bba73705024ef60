package postgres

import (
	"context"

	"github.com/gofrs/uuid/v5"

	"github.com/vidora/vidora/internal/model"
)

// RelationRepo implements RelationRepository using PostgreSQL. The unique
// index on (actor_id, kind, target_id) is the only concurrency primitive the
// ledger relies on.
type RelationRepo struct{ db *DB }

// NewRelationRepo constructs a relation repository.
func NewRelationRepo(db *DB) *RelationRepo { return &RelationRepo{db: db} }

// InsertIfAbsent inserts the tuple, losing gracefully to a concurrent insert.
func (r *RelationRepo) InsertIfAbsent(ctx context.Context, actorID uuid.UUID, kind model.RelationKind, targetID uuid.UUID) (bool, error) {
	const q = `
INSERT INTO relations (actor_id, kind, target_id)
VALUES ($1, $2, $3)
ON CONFLICT (actor_id, kind, target_id) DO NOTHING`
	tag, err := r.db.Pool.Exec(ctx, q, actorID, string(kind), targetID)
	if err != nil {
		return false, storeErr(err)
	}
	return tag.RowsAffected() == 1, nil
}

// DeleteIfPresent removes the tuple; zero rows affected is not an error.
func (r *RelationRepo) DeleteIfPresent(ctx context.Context, actorID uuid.UUID, kind model.RelationKind, targetID uuid.UUID) (bool, error) {
	const q = `DELETE FROM relations WHERE actor_id=$1 AND kind=$2 AND target_id=$3`
	tag, err := r.db.Pool.Exec(ctx, q, actorID, string(kind), targetID)
	if err != nil {
		return false, storeErr(err)
	}
	return tag.RowsAffected() == 1, nil
}

// Exists reports whether the tuple currently holds.
func (r *RelationRepo) Exists(ctx context.Context, actorID uuid.UUID, kind model.RelationKind, targetID uuid.UUID) (bool, error) {
	const q = `SELECT EXISTS(SELECT 1 FROM relations WHERE actor_id=$1 AND kind=$2 AND target_id=$3)`
	var ok bool
	if err := r.db.Pool.QueryRow(ctx, q, actorID, string(kind), targetID).Scan(&ok); err != nil {
		return false, storeErr(err)
	}
	return ok, nil
}

// ListTargetsByActor returns the target set for an actor and kind.
func (r *RelationRepo) ListTargetsByActor(ctx context.Context, actorID uuid.UUID, kind model.RelationKind) ([]uuid.UUID, error) {
	const q = `SELECT target_id FROM relations WHERE actor_id=$1 AND kind=$2`
	rows, err := r.db.Pool.Query(ctx, q, actorID, string(kind))
	if err != nil {
		return nil, storeErr(err)
	}
	defer rows.Close()

	var out []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, storeErr(err)
		}
		out = append(out, id)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr(err)
	}
	return out, nil
}

// CountByTarget counts rows pointing at a target.
func (r *RelationRepo) CountByTarget(ctx context.Context, kind model.RelationKind, targetID uuid.UUID) (int64, error) {
	const q = `SELECT COUNT(*) FROM relations WHERE kind=$1 AND target_id=$2`
	var n int64
	if err := r.db.Pool.QueryRow(ctx, q, string(kind), targetID).Scan(&n); err != nil {
		return 0, storeErr(err)
	}
	return n, nil
}

// CountByActor counts rows created by an actor.
func (r *RelationRepo) CountByActor(ctx context.Context, kind model.RelationKind, actorID uuid.UUID) (int64, error) {
	const q = `SELECT COUNT(*) FROM relations WHERE kind=$1 AND actor_id=$2`
	var n int64
	if err := r.db.Pool.QueryRow(ctx, q, string(kind), actorID).Scan(&n); err != nil {
		return 0, storeErr(err)
	}
	return n, nil
}
