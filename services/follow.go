// services/follow.go
package services

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FollowService flips the pairwise follow relation between two users.
type FollowService struct {
	store Store
}

func NewFollowService(store Store) *FollowService {
	return &FollowService{store: store}
}

// ToggleFollow follows targetID if the caller does not already follow them,
// otherwise unfollows. Both documents are updated together: after any call,
// target in caller.following and caller in target.followers either both hold
// or both do not. Returns true when the call resulted in a follow.
func (s *FollowService) ToggleFollow(ctx context.Context, currentID, targetID primitive.ObjectID) (bool, error) {
	current, err := s.store.GetUser(ctx, currentID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, ErrUserNotFound
		}
		return false, err
	}
	if _, err := s.store.GetUser(ctx, targetID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, ErrUserNotFound
		}
		return false, err
	}

	following := containsID(current.Following, targetID)
	if err := s.store.SetFollowState(ctx, currentID, targetID, !following); err != nil {
		return false, err
	}
	return !following, nil
}
