// services/engagement.go
package services

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/threadora/threadora_backend/models"
)

// Notifier receives engagement events and records them for the content
// owner. It is a separate interface so the delivery channel can change
// without touching the engagement logic.
type Notifier interface {
	ThreadLiked(ctx context.Context, actor *models.User, thread *models.Thread, communityID *primitive.ObjectID)
	CommentAdded(ctx context.Context, actor *models.User, thread *models.Thread)
}

// Policy holds the explicit behavioral switches of the engagement rules.
type Policy struct {
	// CountReplies controls whether a reply increments the thread's comment
	// counter. Off by default, only top-level comments count.
	CountReplies bool
}

// EngagementService owns like toggling, comment and reply creation, and the
// thread counters those operations maintain.
type EngagementService struct {
	store    Store
	notifier Notifier
	policy   Policy
}

func NewEngagementService(store Store, notifier Notifier, policy Policy) *EngagementService {
	return &EngagementService{store: store, notifier: notifier, policy: policy}
}

// ToggleLike adds or removes the caller's like on a thread. The returned
// bool is true when a like was added. Only the add branch notifies the
// thread owner; rapid toggling must not spam notifications.
func (s *EngagementService) ToggleLike(ctx context.Context, userID, threadID primitive.ObjectID, communityID *primitive.ObjectID) (*models.Like, bool, error) {
	user, err := requireVerifiedUser(ctx, s.store, userID)
	if err != nil {
		return nil, false, err
	}

	if communityID != nil {
		community, err := s.store.GetCommunity(ctx, *communityID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return nil, false, ErrCommunityNotFound
			}
			return nil, false, err
		}
		if !containsID(community.Members, userID) {
			return nil, false, ErrNotMember
		}
	}

	thread, err := s.store.GetThread(ctx, threadID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, false, ErrThreadNotFound
		}
		return nil, false, err
	}

	existing, err := s.store.FindLike(ctx, userID, threadID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, false, err
	}
	if existing != nil {
		if err := s.store.DeleteLike(ctx, existing.ID); err != nil {
			return nil, false, err
		}
		if err := s.store.IncThreadLikes(ctx, threadID, -1); err != nil {
			return nil, false, err
		}
		return nil, false, nil
	}

	like := &models.Like{
		ID:        primitive.NewObjectID(),
		LikeBy:    userID,
		Thread:    threadID,
		CreatedAt: time.Now(),
	}
	if err := s.store.InsertLike(ctx, like); err != nil {
		if errors.Is(err, ErrDuplicate) {
			// Lost the race against a concurrent like; the other writer owns
			// the counter update.
			return nil, false, nil
		}
		return nil, false, err
	}
	if err := s.store.IncThreadLikes(ctx, threadID, 1); err != nil {
		return nil, false, err
	}

	s.notifier.ThreadLiked(ctx, user, thread, communityID)
	return like, true, nil
}

// LikeCount reads the authoritative count from the likes collection rather
// than the denormalized counter.
func (s *EngagementService) LikeCount(ctx context.Context, threadID primitive.ObjectID) (int64, error) {
	if _, err := s.store.GetThread(ctx, threadID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return 0, ErrThreadNotFound
		}
		return 0, err
	}
	return s.store.CountThreadLikes(ctx, threadID)
}

// AddComment creates a top-level comment, bumps the thread's comment counter
// and notifies the thread owner.
func (s *EngagementService) AddComment(ctx context.Context, userID, threadID primitive.ObjectID, content string) (*models.Comment, error) {
	user, err := requireVerifiedUser(ctx, s.store, userID)
	if err != nil {
		return nil, err
	}

	thread, err := s.store.GetThread(ctx, threadID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrThreadNotFound
		}
		return nil, err
	}

	comment := &models.Comment{
		ID:        primitive.NewObjectID(),
		Content:   content,
		Thread:    threadID,
		Owner:     userID,
		Children:  []primitive.ObjectID{},
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := s.store.InsertComment(ctx, comment); err != nil {
		return nil, err
	}
	if err := s.store.IncThreadComments(ctx, threadID, 1); err != nil {
		return nil, err
	}

	s.notifier.CommentAdded(ctx, user, thread)
	return comment, nil
}

// AddReply creates a nested comment under parentCommentID and appends its id
// to the parent's children list. This is the only write path for either side
// of the parent/child link, which keeps the two in step. Replies do not
// notify, and count toward the thread's comment counter only when the policy
// says so.
func (s *EngagementService) AddReply(ctx context.Context, userID, threadID, parentCommentID primitive.ObjectID, content string) (*models.Comment, error) {
	if _, err := s.store.GetUser(ctx, userID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if _, err := s.store.GetThread(ctx, threadID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrThreadNotFound
		}
		return nil, err
	}
	if _, err := s.store.GetComment(ctx, parentCommentID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, err
	}

	parentID := parentCommentID
	reply := &models.Comment{
		ID:            primitive.NewObjectID(),
		Content:       content,
		Thread:        threadID,
		Owner:         userID,
		ParentComment: &parentID,
		Children:      []primitive.ObjectID{},
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}
	if err := s.store.InsertComment(ctx, reply); err != nil {
		return nil, err
	}
	if err := s.store.AppendCommentChild(ctx, parentCommentID, reply.ID); err != nil {
		return nil, err
	}
	if s.policy.CountReplies {
		if err := s.store.IncThreadComments(ctx, threadID, 1); err != nil {
			return nil, err
		}
	}
	return reply, nil
}

// RecountLikes overwrites the thread's like counter with the count of like
// documents. Repair path for counter drift.
func (s *EngagementService) RecountLikes(ctx context.Context, threadID primitive.ObjectID) (*models.Thread, error) {
	if _, err := s.store.GetThread(ctx, threadID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrThreadNotFound
		}
		return nil, err
	}
	count, err := s.store.CountThreadLikes(ctx, threadID)
	if err != nil {
		return nil, err
	}
	if err := s.store.SetThreadLikes(ctx, threadID, count); err != nil {
		return nil, err
	}
	return s.store.GetThread(ctx, threadID)
}

// LikedThreads lists the threads the user has liked, newest like first.
func (s *EngagementService) LikedThreads(ctx context.Context, userID primitive.ObjectID) ([]models.Thread, error) {
	if _, err := requireVerifiedUser(ctx, s.store, userID); err != nil {
		return nil, err
	}
	likes, err := s.store.ListLikesByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	ids := make([]primitive.ObjectID, 0, len(likes))
	for _, like := range likes {
		ids = append(ids, like.Thread)
	}
	return s.store.ListThreadsByIDs(ctx, ids)
}

func containsID(ids []primitive.ObjectID, id primitive.ObjectID) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}
