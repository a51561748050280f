// services/saved.go
package services

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/threadora/threadora_backend/models"
)

// SavedService maintains the per-user saved-posts document, created lazily
// on the first save.
type SavedService struct {
	store   Store
	threads *ThreadService
}

func NewSavedService(store Store, threads *ThreadService) *SavedService {
	return &SavedService{store: store, threads: threads}
}

// SavePost adds a thread to the caller's saved list, rejecting duplicates.
func (s *SavedService) SavePost(ctx context.Context, userID, threadID primitive.ObjectID) error {
	if _, err := requireVerifiedUser(ctx, s.store, userID); err != nil {
		return err
	}
	if _, err := s.store.GetThread(ctx, threadID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrThreadNotFound
		}
		return err
	}

	saved, err := s.store.GetSaved(ctx, userID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	if saved != nil && containsID(saved.Saved, threadID) {
		return ErrAlreadySaved
	}
	return s.store.AddSavedThread(ctx, userID, threadID)
}

// ListSaved returns the caller's saved threads as decorated views.
func (s *SavedService) ListSaved(ctx context.Context, userID primitive.ObjectID) ([]models.ThreadView, error) {
	if _, err := requireVerifiedUser(ctx, s.store, userID); err != nil {
		return nil, err
	}
	saved, err := s.store.GetSaved(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return []models.ThreadView{}, nil
		}
		return nil, err
	}
	threads, err := s.store.ListThreadsByIDs(ctx, saved.Saved)
	if err != nil {
		return nil, err
	}
	return s.threads.Decorate(ctx, threads)
}
