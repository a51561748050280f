// services/tags.go
package services

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/threadora/threadora_backend/models"
)

// TagService resolves tags by exact, case-sensitive name. Discovery search
// elsewhere is case-insensitive; identity here is deliberately not.
type TagService struct {
	store Store
}

func NewTagService(store Store) *TagService {
	return &TagService{store: store}
}

// Resolve finds the tag with the given name, creating it when absent. Two
// concurrent creators race on the unique name index; the loser re-reads the
// winner's document.
func (s *TagService) Resolve(ctx context.Context, name string, ownerID primitive.ObjectID) (primitive.ObjectID, error) {
	tag, err := s.store.FindTagByName(ctx, name)
	if err == nil {
		return tag.ID, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return primitive.NilObjectID, err
	}

	fresh := &models.Tag{
		ID:      primitive.NewObjectID(),
		Name:    name,
		OwnerID: ownerID,
	}
	if err := s.store.InsertTag(ctx, fresh); err != nil {
		if errors.Is(err, ErrDuplicate) {
			existing, err := s.store.FindTagByName(ctx, name)
			if err != nil {
				return primitive.NilObjectID, err
			}
			return existing.ID, nil
		}
		return primitive.NilObjectID, err
	}
	return fresh.ID, nil
}
