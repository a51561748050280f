// services/cascade.go
package services

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CascadeService removes a thread together with everything that references
// it. There is no multi-document transaction; instead every step is
// idempotent, so a DeleteThread interrupted partway can simply be retried.
// Dependents go first so a partially deleted thread never looks live with
// dangling references.
type CascadeService struct {
	store Store
}

func NewCascadeService(store Store) *CascadeService {
	return &CascadeService{store: store}
}

// DeleteThread cascades an owner-initiated delete: likes, comments,
// notifications, community membership of the id, then the thread itself.
// Comments are deleted flat by thread id, not by walking the reply tree.
func (s *CascadeService) DeleteThread(ctx context.Context, userID, threadID primitive.ObjectID) error {
	if _, err := requireVerifiedUser(ctx, s.store, userID); err != nil {
		return err
	}

	thread, err := s.store.GetThread(ctx, threadID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrThreadNotFound
		}
		return err
	}
	if thread.OwnerID != userID {
		return ErrNotOwner
	}

	return s.cascade(ctx, threadID)
}

// AdminDeleteCommunityPost deletes a thread posted into a community on
// behalf of one of its admins. This path runs the full cascade so no
// orphaned likes, comments or notifications survive.
func (s *CascadeService) AdminDeleteCommunityPost(ctx context.Context, userID, communityID, postID primitive.ObjectID) error {
	if _, err := s.store.GetThread(ctx, postID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrThreadNotFound
		}
		return err
	}
	if _, err := requireVerifiedUser(ctx, s.store, userID); err != nil {
		return err
	}

	community, err := s.store.GetCommunity(ctx, communityID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrCommunityNotFound
		}
		return err
	}
	if !containsID(community.Admin, userID) {
		return ErrNotAdmin
	}

	return s.cascade(ctx, postID)
}

func (s *CascadeService) cascade(ctx context.Context, threadID primitive.ObjectID) error {
	if _, err := s.store.DeleteLikesByThread(ctx, threadID); err != nil {
		return err
	}
	if _, err := s.store.DeleteCommentsByThread(ctx, threadID); err != nil {
		return err
	}
	if _, err := s.store.DeleteNotificationsByThread(ctx, threadID); err != nil {
		return err
	}
	if _, err := s.store.PullThreadFromCommunities(ctx, threadID); err != nil {
		return err
	}
	return s.store.DeleteThread(ctx, threadID)
}
