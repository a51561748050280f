// services/notifications.go
package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/threadora/threadora_backend/models"
)

// notificationWindow bounds both read paths to recent activity.
const notificationWindow = 30 * 24 * time.Hour

// NotificationService writes fan-out records for engagement events and
// serves the two read paths. Fan-out failures are logged, never surfaced:
// a like must not fail because its notification insert did.
type NotificationService struct {
	store Store
}

func NewNotificationService(store Store) *NotificationService {
	return &NotificationService{store: store}
}

// ThreadLiked implements Notifier.
func (s *NotificationService) ThreadLiked(ctx context.Context, actor *models.User, thread *models.Thread, communityID *primitive.ObjectID) {
	notification := &models.Notification{
		ID:          primitive.NewObjectID(),
		UserID:      actor.ID,
		Name:        fmt.Sprintf("%s liked your post", actor.Username),
		OwnerID:     thread.OwnerID,
		ThreadID:    thread.ID,
		CommunityID: communityID,
		CreatedAt:   time.Now(),
	}
	if err := s.store.InsertNotification(ctx, notification); err != nil {
		log.Printf("failed to record like notification for thread %s: %v", thread.ID.Hex(), err)
	}
}

// CommentAdded implements Notifier.
func (s *NotificationService) CommentAdded(ctx context.Context, actor *models.User, thread *models.Thread) {
	notification := &models.Notification{
		ID:        primitive.NewObjectID(),
		UserID:    actor.ID,
		Name:      fmt.Sprintf("%s commented on your post", actor.Username),
		OwnerID:   thread.OwnerID,
		ThreadID:  thread.ID,
		CreatedAt: time.Now(),
	}
	if err := s.store.InsertNotification(ctx, notification); err != nil {
		log.Printf("failed to record comment notification for thread %s: %v", thread.ID.Hex(), err)
	}
}

// ListForUser returns the caller's notifications from the last thirty days.
func (s *NotificationService) ListForUser(ctx context.Context, userID primitive.ObjectID) ([]models.Notification, error) {
	if _, err := requireVerifiedUser(ctx, s.store, userID); err != nil {
		return nil, err
	}
	since := time.Now().Add(-notificationWindow)
	return s.store.ListNotifications(ctx, userID, since)
}

// Search returns recent notifications whose actor is the caller or anyone in
// their follower/following sets, matched case-insensitively on the message.
// Self-authored events are included; filtering them out is the caller's job.
func (s *NotificationService) Search(ctx context.Context, userID primitive.ObjectID, matchText string) ([]models.Notification, error) {
	user, err := requireVerifiedUser(ctx, s.store, userID)
	if err != nil {
		return nil, err
	}
	actorIDs := make([]primitive.ObjectID, 0, 1+len(user.Followers)+len(user.Following))
	actorIDs = append(actorIDs, userID)
	actorIDs = append(actorIDs, user.Followers...)
	actorIDs = append(actorIDs, user.Following...)

	since := time.Now().Add(-notificationWindow)
	return s.store.SearchNotifications(ctx, actorIDs, matchText, since)
}

var _ Notifier = (*NotificationService)(nil)
