package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/threadora/threadora_backend/models"
)

func insertNotification(store *memStore, actor, owner primitive.ObjectID, name string, age time.Duration) {
	store.notifications = append(store.notifications, &models.Notification{
		ID:        primitive.NewObjectID(),
		UserID:    actor,
		Name:      name,
		OwnerID:   owner,
		ThreadID:  primitive.NewObjectID(),
		CreatedAt: time.Now().Add(-age),
	})
}

func TestListForUser_AppliesRecencyWindow(t *testing.T) {
	store := newMemStore()
	alice := seedUser(store, "alice", true)
	bob := seedUser(store, "bob", true)
	svc := NewNotificationService(store)

	insertNotification(store, bob.ID, alice.ID, "bob liked your post", time.Hour)
	insertNotification(store, bob.ID, alice.ID, "bob liked your post", 45*24*time.Hour)

	notifications, err := svc.ListForUser(context.Background(), alice.ID)
	require.NoError(t, err)
	assert.Len(t, notifications, 1)
}

func TestListForUser_OnlyOwn(t *testing.T) {
	store := newMemStore()
	alice := seedUser(store, "alice", true)
	bob := seedUser(store, "bob", true)
	svc := NewNotificationService(store)

	insertNotification(store, alice.ID, bob.ID, "alice liked your post", time.Hour)

	notifications, err := svc.ListForUser(context.Background(), alice.ID)
	require.NoError(t, err)
	assert.Empty(t, notifications)
}

func TestSearch_ScopedToNetworkActors(t *testing.T) {
	store := newMemStore()
	alice := seedUser(store, "alice", true)
	bob := seedUser(store, "bob", true)
	stranger := seedUser(store, "mallory", true)
	alice.Following = append(alice.Following, bob.ID)
	svc := NewNotificationService(store)

	insertNotification(store, bob.ID, stranger.ID, "Bob liked your post", time.Hour)
	insertNotification(store, stranger.ID, bob.ID, "mallory liked your post", time.Hour)

	results, err := svc.Search(context.Background(), alice.ID, "LIKED")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, bob.ID, results[0].UserID)
}

func TestSearch_WindowAndMatchText(t *testing.T) {
	store := newMemStore()
	alice := seedUser(store, "alice", true)
	bob := seedUser(store, "bob", true)
	alice.Followers = append(alice.Followers, bob.ID)
	svc := NewNotificationService(store)

	insertNotification(store, bob.ID, alice.ID, "bob commented on your post", time.Hour)
	insertNotification(store, bob.ID, alice.ID, "bob commented on your post", 60*24*time.Hour)
	insertNotification(store, bob.ID, alice.ID, "bob liked your post", time.Hour)

	results, err := svc.Search(context.Background(), alice.ID, "commented")
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestNotifications_RequireVerifiedCaller(t *testing.T) {
	store := newMemStore()
	alice := seedUser(store, "alice", false)
	svc := NewNotificationService(store)

	_, err := svc.ListForUser(context.Background(), alice.ID)
	assert.ErrorIs(t, err, ErrUserNotVerified)
	_, err = svc.Search(context.Background(), alice.ID, "liked")
	assert.ErrorIs(t, err, ErrUserNotVerified)
}
