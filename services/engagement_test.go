package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newEngagementFixture(policy Policy) (*memStore, *EngagementService) {
	store := newMemStore()
	return store, NewEngagementService(store, NewNotificationService(store), policy)
}

func TestToggleLike_AddThenRemove(t *testing.T) {
	store, svc := newEngagementFixture(Policy{})
	owner := seedUser(store, "alice", true)
	liker := seedUser(store, "bob", true)
	thread := seedThread(store, owner, "hello")

	like, added, err := svc.ToggleLike(context.Background(), liker.ID, thread.ID, nil)
	require.NoError(t, err)
	assert.True(t, added)
	require.NotNil(t, like)
	assert.Equal(t, liker.ID, like.LikeBy)
	assert.Equal(t, int64(1), store.threads[thread.ID].Likes)
	assert.Len(t, store.likes, 1)

	like, added, err = svc.ToggleLike(context.Background(), liker.ID, thread.ID, nil)
	require.NoError(t, err)
	assert.False(t, added)
	assert.Nil(t, like)
	assert.Equal(t, int64(0), store.threads[thread.ID].Likes)
	assert.Len(t, store.likes, 0)
}

func TestToggleLike_NotifiesOnlyOnAdd(t *testing.T) {
	store, svc := newEngagementFixture(Policy{})
	owner := seedUser(store, "alice", true)
	liker := seedUser(store, "bob", true)
	thread := seedThread(store, owner, "hello")

	_, _, err := svc.ToggleLike(context.Background(), liker.ID, thread.ID, nil)
	require.NoError(t, err)
	_, _, err = svc.ToggleLike(context.Background(), liker.ID, thread.ID, nil)
	require.NoError(t, err)

	require.Len(t, store.notifications, 1)
	notification := store.notifications[0]
	assert.Equal(t, liker.ID, notification.UserID)
	assert.Equal(t, owner.ID, notification.OwnerID)
	assert.Equal(t, thread.ID, notification.ThreadID)
	assert.Contains(t, notification.Name, "bob liked")
}

func TestToggleLike_UnverifiedUser(t *testing.T) {
	store, svc := newEngagementFixture(Policy{})
	owner := seedUser(store, "alice", true)
	liker := seedUser(store, "bob", false)
	thread := seedThread(store, owner, "hello")

	_, _, err := svc.ToggleLike(context.Background(), liker.ID, thread.ID, nil)
	assert.ErrorIs(t, err, ErrUserNotVerified)
	assert.Len(t, store.likes, 0)
}

func TestToggleLike_MissingThread(t *testing.T) {
	store, svc := newEngagementFixture(Policy{})
	liker := seedUser(store, "bob", true)

	_, _, err := svc.ToggleLike(context.Background(), liker.ID, primitive.NewObjectID(), nil)
	assert.ErrorIs(t, err, ErrThreadNotFound)
}

func TestToggleLike_CommunityRequiresMembership(t *testing.T) {
	store, svc := newEngagementFixture(Policy{})
	admin := seedUser(store, "alice", true)
	outsider := seedUser(store, "bob", true)
	thread := seedThread(store, admin, "community post")
	community := seedCommunity(store, "golang", admin)

	_, _, err := svc.ToggleLike(context.Background(), outsider.ID, thread.ID, &community.ID)
	assert.ErrorIs(t, err, ErrNotMember)

	community.Members = append(community.Members, outsider.ID)
	_, added, err := svc.ToggleLike(context.Background(), outsider.ID, thread.ID, &community.ID)
	require.NoError(t, err)
	assert.True(t, added)
	require.Len(t, store.notifications, 1)
	require.NotNil(t, store.notifications[0].CommunityID)
	assert.Equal(t, community.ID, *store.notifications[0].CommunityID)
}

func TestAddComment_BumpsCounterAndNotifies(t *testing.T) {
	store, svc := newEngagementFixture(Policy{})
	owner := seedUser(store, "alice", true)
	commenter := seedUser(store, "bob", true)
	thread := seedThread(store, owner, "hello")

	comment, err := svc.AddComment(context.Background(), commenter.ID, thread.ID, "nice post")
	require.NoError(t, err)
	assert.Nil(t, comment.ParentComment)
	assert.Equal(t, int64(1), store.threads[thread.ID].Comments)
	require.Len(t, store.notifications, 1)
	assert.Contains(t, store.notifications[0].Name, "commented")
}

func TestAddReply_LinksParentWithoutCounting(t *testing.T) {
	store, svc := newEngagementFixture(Policy{})
	owner := seedUser(store, "alice", true)
	commenter := seedUser(store, "bob", true)
	thread := seedThread(store, owner, "hello")

	parent, err := svc.AddComment(context.Background(), commenter.ID, thread.ID, "first")
	require.NoError(t, err)

	reply, err := svc.AddReply(context.Background(), owner.ID, thread.ID, parent.ID, "thanks")
	require.NoError(t, err)
	require.NotNil(t, reply.ParentComment)
	assert.Equal(t, parent.ID, *reply.ParentComment)
	assert.Contains(t, store.comments[parent.ID].Children, reply.ID)

	// Only the top-level comment counts, and only it notified.
	assert.Equal(t, int64(1), store.threads[thread.ID].Comments)
	assert.Len(t, store.notifications, 1)
}

func TestAddReply_CountsWhenPolicySaysSo(t *testing.T) {
	store, svc := newEngagementFixture(Policy{CountReplies: true})
	owner := seedUser(store, "alice", true)
	thread := seedThread(store, owner, "hello")

	parent, err := svc.AddComment(context.Background(), owner.ID, thread.ID, "first")
	require.NoError(t, err)
	_, err = svc.AddReply(context.Background(), owner.ID, thread.ID, parent.ID, "self reply")
	require.NoError(t, err)

	assert.Equal(t, int64(2), store.threads[thread.ID].Comments)
}

func TestAddReply_MissingParent(t *testing.T) {
	store, svc := newEngagementFixture(Policy{})
	owner := seedUser(store, "alice", true)
	thread := seedThread(store, owner, "hello")

	_, err := svc.AddReply(context.Background(), owner.ID, thread.ID, primitive.NewObjectID(), "orphan")
	assert.ErrorIs(t, err, ErrCommentNotFound)
}

func TestRecountLikes_RepairsDrift(t *testing.T) {
	store, svc := newEngagementFixture(Policy{})
	owner := seedUser(store, "alice", true)
	first := seedUser(store, "bob", true)
	second := seedUser(store, "carol", true)
	thread := seedThread(store, owner, "hello")

	_, _, err := svc.ToggleLike(context.Background(), first.ID, thread.ID, nil)
	require.NoError(t, err)
	_, _, err = svc.ToggleLike(context.Background(), second.ID, thread.ID, nil)
	require.NoError(t, err)

	// Simulate counter drift.
	store.threads[thread.ID].Likes = 17

	repaired, err := svc.RecountLikes(context.Background(), thread.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), repaired.Likes)
	assert.Equal(t, int64(2), store.threads[thread.ID].Likes)
}

func TestLikeCount_ReadsLikeDocuments(t *testing.T) {
	store, svc := newEngagementFixture(Policy{})
	owner := seedUser(store, "alice", true)
	liker := seedUser(store, "bob", true)
	thread := seedThread(store, owner, "hello")

	_, _, err := svc.ToggleLike(context.Background(), liker.ID, thread.ID, nil)
	require.NoError(t, err)

	// The counter is drifted but the authoritative count stays at one.
	store.threads[thread.ID].Likes = 9
	count, err := svc.LikeCount(context.Background(), thread.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestLikedThreads(t *testing.T) {
	store, svc := newEngagementFixture(Policy{})
	owner := seedUser(store, "alice", true)
	liker := seedUser(store, "bob", true)
	liked := seedThread(store, owner, "liked")
	seedThread(store, owner, "not liked")

	_, _, err := svc.ToggleLike(context.Background(), liker.ID, liked.ID, nil)
	require.NoError(t, err)

	threads, err := svc.LikedThreads(context.Background(), liker.ID)
	require.NoError(t, err)
	require.Len(t, threads, 1)
	assert.Equal(t, liked.ID, threads[0].ID)
}

func TestToggleLike_DoubleTapNetsZero(t *testing.T) {
	store, svc := newEngagementFixture(Policy{})
	owner := seedUser(store, "alice", true)
	liker := seedUser(store, "bob", true)
	thread := seedThread(store, owner, "hello")

	for i := 0; i < 4; i++ {
		_, _, err := svc.ToggleLike(context.Background(), liker.ID, thread.ID, nil)
		require.NoError(t, err)
		time.Sleep(time.Millisecond)
	}

	assert.Equal(t, int64(0), store.threads[thread.ID].Likes)
	assert.Len(t, store.likes, 0)
}
