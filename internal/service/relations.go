package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gofrs/uuid/v5"

	"github.com/vidora/vidora/internal/model"
	"github.com/vidora/vidora/internal/repository"
)

// RelationService owns the idempotent toggle over the (actor, kind, target)
// ledger and the read-only projections built on it.
type RelationService interface {
	// Toggle flips presence of the tuple and reports the post-commit state.
	Toggle(ctx context.Context, actorID uuid.UUID, kind model.RelationKind, targetID uuid.UUID) (present bool, err error)
	// ListByActor returns the unordered target set for an actor and kind.
	ListByActor(ctx context.Context, actorID uuid.UUID, kind model.RelationKind) ([]uuid.UUID, error)
	// ChannelProfile builds the subscription projection for a channel as seen
	// by a viewer.
	ChannelProfile(ctx context.Context, viewerID uuid.UUID, username string) (*model.ChannelProfile, error)
}

type RelationServiceImpl struct {
	relations repository.RelationRepository
	users     repository.UserRepository
}

// NewRelationService constructs RelationService.
func NewRelationService(relations repository.RelationRepository, users repository.UserRepository) *RelationServiceImpl {
	return &RelationServiceImpl{relations: relations, users: users}
}

// Toggle flips presence of the (actor, kind, target) row. The sequence is
// read, insert-if-absent, delete; each step reconciles a lost race instead of
// surfacing it, so a client unsure whether its previous call landed can
// simply call again:
//   - insert lost to a concurrent insert: the relation exists, fall through
//     to the delete as if it had existed all along;
//   - delete affected zero rows: a concurrent delete already produced the
//     "absent" end state, which is the result being reported anyway.
func (s *RelationServiceImpl) Toggle(ctx context.Context, actorID uuid.UUID, kind model.RelationKind, targetID uuid.UUID) (bool, error) {
	if actorID == uuid.Nil || targetID == uuid.Nil {
		return false, errors.New("validation: empty actorID/targetID")
	}
	if !kind.Valid() {
		return false, fmt.Errorf("validation: unknown relation kind %q", kind)
	}

	exists, err := s.relations.Exists(ctx, actorID, kind, targetID)
	if err != nil {
		return false, err
	}
	if !exists {
		inserted, err := s.relations.InsertIfAbsent(ctx, actorID, kind, targetID)
		if err != nil {
			return false, err
		}
		if inserted {
			return true, nil
		}
		// Lost the insert race: treat as pre-existing.
	}
	if _, err := s.relations.DeleteIfPresent(ctx, actorID, kind, targetID); err != nil {
		return false, err
	}
	return false, nil
}

// ListByActor returns target ids for "liked videos" style queries.
func (s *RelationServiceImpl) ListByActor(ctx context.Context, actorID uuid.UUID, kind model.RelationKind) ([]uuid.UUID, error) {
	if actorID == uuid.Nil {
		return nil, errors.New("validation: empty actorID")
	}
	if !kind.Valid() {
		return nil, fmt.Errorf("validation: unknown relation kind %q", kind)
	}
	return s.relations.ListTargetsByActor(ctx, actorID, kind)
}

// ChannelProfile resolves a channel by username and aggregates its
// subscription counts plus whether the viewer subscribes to it. Usernames are
// stored lowercase, so the lookup normalizes the same way registration does.
func (s *RelationServiceImpl) ChannelProfile(ctx context.Context, viewerID uuid.UUID, username string) (*model.ChannelProfile, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" {
		return nil, errors.New("validation: empty username")
	}
	u, err := s.users.GetByIdentifier(ctx, username)
	if err != nil {
		return nil, err
	}

	subs, err := s.relations.CountByTarget(ctx, model.KindSubscription, u.ID)
	if err != nil {
		return nil, err
	}
	subbedTo, err := s.relations.CountByActor(ctx, model.KindSubscription, u.ID)
	if err != nil {
		return nil, err
	}
	isSubbed := false
	if viewerID != uuid.Nil {
		if isSubbed, err = s.relations.Exists(ctx, viewerID, model.KindSubscription, u.ID); err != nil {
			return nil, err
		}
	}
	return &model.ChannelProfile{
		User:              *u,
		SubscriberCount:   subs,
		SubscribedToCount: subbedTo,
		IsSubscribed:      isSubbed,
	}, nil
}
