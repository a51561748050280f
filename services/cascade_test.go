package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type cascadeFixture struct {
	owner     primitive.ObjectID
	engager   primitive.ObjectID
	thread    primitive.ObjectID
	community primitive.ObjectID
}

// seedThreadWithDependents builds a thread carrying a like, a comment with a
// reply, notifications and a community reference, everything the cascade
// has to clean up.
func seedThreadWithDependents(t *testing.T, store *memStore) cascadeFixture {
	t.Helper()
	owner := seedUser(store, "alice", true)
	engager := seedUser(store, "bob", true)
	thread := seedThread(store, owner, "doomed")
	community := seedCommunity(store, "golang", owner, engager)
	community.Threads = append(community.Threads, thread.ID)

	engagement := NewEngagementService(store, NewNotificationService(store), Policy{})

	ctx := context.Background()
	_, _, err := engagement.ToggleLike(ctx, engager.ID, thread.ID, nil)
	require.NoError(t, err)
	parent, err := engagement.AddComment(ctx, engager.ID, thread.ID, "first")
	require.NoError(t, err)
	_, err = engagement.AddReply(ctx, owner.ID, thread.ID, parent.ID, "thanks")
	require.NoError(t, err)

	return cascadeFixture{owner: owner.ID, engager: engager.ID, thread: thread.ID, community: community.ID}
}

func TestDeleteThread_CascadesAllDependents(t *testing.T) {
	store := newMemStore()
	fixture := seedThreadWithDependents(t, store)
	svc := NewCascadeService(store)

	require.NoError(t, svc.DeleteThread(context.Background(), fixture.owner, fixture.thread))

	assert.NotContains(t, store.threads, fixture.thread)
	assert.Len(t, store.likes, 0)
	assert.Len(t, store.comments, 0)
	assert.Len(t, store.notifications, 0)
	assert.NotContains(t, store.communities[fixture.community].Threads, fixture.thread)
}

func TestDeleteThread_RejectsNonOwner(t *testing.T) {
	store := newMemStore()
	fixture := seedThreadWithDependents(t, store)
	svc := NewCascadeService(store)

	err := svc.DeleteThread(context.Background(), fixture.engager, fixture.thread)
	assert.ErrorIs(t, err, ErrNotOwner)
	assert.Contains(t, store.threads, fixture.thread)
	assert.Len(t, store.likes, 1)
}

func TestDeleteThread_MissingThread(t *testing.T) {
	store := newMemStore()
	user := seedUser(store, "alice", true)
	svc := NewCascadeService(store)

	err := svc.DeleteThread(context.Background(), user.ID, primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrThreadNotFound)
}

func TestAdminDeleteCommunityPost_RequiresAdmin(t *testing.T) {
	store := newMemStore()
	fixture := seedThreadWithDependents(t, store)
	svc := NewCascadeService(store)

	err := svc.AdminDeleteCommunityPost(context.Background(), fixture.engager, fixture.community, fixture.thread)
	assert.ErrorIs(t, err, ErrNotAdmin)
	assert.Contains(t, store.threads, fixture.thread)
}

func TestAdminDeleteCommunityPost_FullCascade(t *testing.T) {
	store := newMemStore()
	fixture := seedThreadWithDependents(t, store)
	svc := NewCascadeService(store)

	require.NoError(t, svc.AdminDeleteCommunityPost(context.Background(), fixture.owner, fixture.community, fixture.thread))

	assert.NotContains(t, store.threads, fixture.thread)
	assert.Len(t, store.likes, 0)
	assert.Len(t, store.comments, 0)
	assert.Len(t, store.notifications, 0)
	assert.NotContains(t, store.communities[fixture.community].Threads, fixture.thread)
}
