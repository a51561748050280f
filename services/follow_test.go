package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestToggleFollow_SymmetricFollowAndUnfollow(t *testing.T) {
	store := newMemStore()
	alice := seedUser(store, "alice", true)
	bob := seedUser(store, "bob", true)
	svc := NewFollowService(store)

	followed, err := svc.ToggleFollow(context.Background(), alice.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, followed)
	assert.Contains(t, store.users[alice.ID].Following, bob.ID)
	assert.Contains(t, store.users[bob.ID].Followers, alice.ID)
	assert.NotContains(t, store.users[bob.ID].Following, alice.ID)

	followed, err = svc.ToggleFollow(context.Background(), alice.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, followed)
	assert.Empty(t, store.users[alice.ID].Following)
	assert.Empty(t, store.users[bob.ID].Followers)
}

func TestToggleFollow_UnknownTarget(t *testing.T) {
	store := newMemStore()
	alice := seedUser(store, "alice", true)
	svc := NewFollowService(store)

	_, err := svc.ToggleFollow(context.Background(), alice.ID, primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.Empty(t, store.users[alice.ID].Following)
}

func TestToggleFollow_IsNotMutual(t *testing.T) {
	store := newMemStore()
	alice := seedUser(store, "alice", true)
	bob := seedUser(store, "bob", true)
	svc := NewFollowService(store)

	_, err := svc.ToggleFollow(context.Background(), alice.ID, bob.ID)
	require.NoError(t, err)
	_, err = svc.ToggleFollow(context.Background(), bob.ID, alice.ID)
	require.NoError(t, err)

	// Two independent edges, each direction toggled on its own.
	followed, err := svc.ToggleFollow(context.Background(), alice.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, followed)
	assert.Contains(t, store.users[bob.ID].Following, alice.ID)
	assert.Contains(t, store.users[alice.ID].Followers, bob.ID)
}
