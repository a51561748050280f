// services/community.go
package services

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/threadora/threadora_backend/models"
)

// CommunityService owns membership toggling and posting into communities.
type CommunityService struct {
	store   Store
	threads *ThreadService
}

func NewCommunityService(store Store, threads *ThreadService) *CommunityService {
	return &CommunityService{store: store, threads: threads}
}

// ToggleMembership joins the community if the user is not a member,
// otherwise leaves it. Returns true on join.
func (s *CommunityService) ToggleMembership(ctx context.Context, userID, communityID primitive.ObjectID) (bool, error) {
	if _, err := requireVerifiedUser(ctx, s.store, userID); err != nil {
		return false, err
	}
	community, err := s.store.GetCommunity(ctx, communityID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, ErrCommunityNotFound
		}
		return false, err
	}

	member := containsID(community.Members, userID)
	if err := s.store.SetMembership(ctx, communityID, userID, !member); err != nil {
		return false, err
	}
	return !member, nil
}

// AddPost creates a thread and links it into the community's thread list.
func (s *CommunityService) AddPost(ctx context.Context, userID, communityID primitive.ObjectID, description, tagName string, images, videos []string) (*models.Thread, error) {
	if _, err := s.store.GetCommunity(ctx, communityID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrCommunityNotFound
		}
		return nil, err
	}

	thread, err := s.threads.Create(ctx, userID, description, tagName, images, videos)
	if err != nil {
		return nil, err
	}
	if err := s.store.PushCommunityThread(ctx, communityID, thread.ID); err != nil {
		return nil, err
	}
	return thread, nil
}

// AddComment creates a top-level comment on a community thread. Callers
// must be members or admins. Community comments bump the counter but do not
// notify, matching the standalone comment path's asymmetry for replies.
func (s *CommunityService) AddComment(ctx context.Context, userID, communityID, threadID primitive.ObjectID, content string) (*models.Comment, error) {
	community, err := s.store.GetCommunity(ctx, communityID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrCommunityNotFound
		}
		return nil, err
	}
	if _, err := requireVerifiedUser(ctx, s.store, userID); err != nil {
		return nil, err
	}
	if !containsID(community.Members, userID) && !containsID(community.Admin, userID) {
		return nil, ErrNotMember
	}

	if _, err := s.store.GetThread(ctx, threadID); err != nil {
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
	return comment, nil
}

// CommunityThreads returns a page of the community's threads, newest first.
func (s *CommunityService) CommunityThreads(ctx context.Context, communityID primitive.ObjectID, skip, limit int64) ([]models.ThreadView, error) {
	community, err := s.store.GetCommunity(ctx, communityID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrCommunityNotFound
		}
		return nil, err
	}
	threads, err := s.store.ListThreadsByIDs(ctx, community.Threads)
	if err != nil {
		return nil, err
	}
	if skip >= int64(len(threads)) {
		return []models.ThreadView{}, nil
	}
	end := skip + limit
	if end > int64(len(threads)) {
		end = int64(len(threads))
	}
	return s.threads.Decorate(ctx, threads[skip:end])
}
