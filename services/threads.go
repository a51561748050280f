// services/threads.go
package services

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/threadora/threadora_backend/models"
)

// ThreadService creates posts and resolves the views clients render, with
// tag names and owner info attached.
type ThreadService struct {
	store Store
	tags  *TagService
}

func NewThreadService(store Store, tags *TagService) *ThreadService {
	return &ThreadService{store: store, tags: tags}
}

// Create publishes a new thread under the caller, resolving the tag name by
// find-or-create.
func (s *ThreadService) Create(ctx context.Context, ownerID primitive.ObjectID, description, tagName string, images, videos []string) (*models.Thread, error) {
	if _, err := requireVerifiedUser(ctx, s.store, ownerID); err != nil {
		return nil, err
	}

	tagID, err := s.tags.Resolve(ctx, tagName, ownerID)
	if err != nil {
		return nil, err
	}

	if images == nil {
		images = []string{}
	}
	if videos == nil {
		videos = []string{}
	}
	thread := &models.Thread{
		ID:          primitive.NewObjectID(),
		OwnerID:     ownerID,
		Description: description,
		Images:      images,
		Videos:      videos,
		Tag:         tagID,
		IsPublished: true,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	if err := s.store.InsertThread(ctx, thread); err != nil {
		return nil, err
	}
	return thread, nil
}

// Single fetches one thread as a decorated view.
func (s *ThreadService) Single(ctx context.Context, threadID primitive.ObjectID) (*models.ThreadView, error) {
	thread, err := s.store.GetThread(ctx, threadID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrThreadNotFound
		}
		return nil, err
	}
	views, err := s.Decorate(ctx, []models.Thread{*thread})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// UserPosts lists a user's threads, newest first.
func (s *ThreadService) UserPosts(ctx context.Context, ownerID primitive.ObjectID) ([]models.ThreadView, error) {
	if _, err := s.store.GetUser(ctx, ownerID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	threads, err := s.store.ListThreadsByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return s.Decorate(ctx, threads)
}

// Decorate resolves tag and owner references for a batch of threads in two
// lookups instead of one pair per thread.
func (s *ThreadService) Decorate(ctx context.Context, threads []models.Thread) ([]models.ThreadView, error) {
	tagIDs := make([]primitive.ObjectID, 0, len(threads))
	ownerIDs := make([]primitive.ObjectID, 0, len(threads))
	for _, thread := range threads {
		if thread.Tag != primitive.NilObjectID {
			tagIDs = append(tagIDs, thread.Tag)
		}
		ownerIDs = append(ownerIDs, thread.OwnerID)
	}

	tags, err := s.store.ListTagRefs(ctx, tagIDs)
	if err != nil {
		return nil, err
	}
	owners, err := s.store.ListUserRefs(ctx, ownerIDs)
	if err != nil {
		return nil, err
	}

	views := make([]models.ThreadView, 0, len(threads))
	for _, thread := range threads {
		view := models.ThreadView{Thread: thread}
		if tag, ok := tags[thread.Tag]; ok {
			tagCopy := tag
			view.TagInfo = &tagCopy
		}
		if owner, ok := owners[thread.OwnerID]; ok {
			ownerCopy := owner
			view.Owner = &ownerCopy
		}
		views = append(views, view)
	}
	return views, nil
}
