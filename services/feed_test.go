package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newFeedFixture() (*memStore, *FeedService) {
	store := newMemStore()
	threads := NewThreadService(store, NewTagService(store))
	return store, NewFeedService(store, threads)
}

func TestHome_ExcludesCommunityThreads(t *testing.T) {
	store, svc := newFeedFixture()
	alice := seedUser(store, "alice", true)
	public := seedThread(store, alice, "public")
	inCommunity := seedThread(store, alice, "community only")
	community := seedCommunity(store, "golang", alice)
	community.Threads = append(community.Threads, inCommunity.ID)

	feed, err := svc.Home(context.Background())
	require.NoError(t, err)
	require.Len(t, feed, 1)
	assert.Equal(t, public.ID, feed[0].ID)
	require.NotNil(t, feed[0].Owner)
	assert.Equal(t, "alice", feed[0].Owner.Username)
}

func TestFollowing_ErrorsWhenFollowingNobody(t *testing.T) {
	store, svc := newFeedFixture()
	alice := seedUser(store, "alice", true)

	_, err := svc.Following(context.Background(), alice.ID)
	assert.ErrorIs(t, err, ErrNoFollowing)
}

func TestFollowing_ReturnsFollowedAuthorsOnly(t *testing.T) {
	store, svc := newFeedFixture()
	alice := seedUser(store, "alice", true)
	bob := seedUser(store, "bob", true)
	carol := seedUser(store, "carol", true)
	alice.Following = append(alice.Following, bob.ID)
	followed := seedThread(store, bob, "from bob")
	seedThread(store, carol, "from carol")

	feed, err := svc.Following(context.Background(), alice.ID)
	require.NoError(t, err)
	require.Len(t, feed, 1)
	assert.Equal(t, followed.ID, feed[0].ID)
}

func TestFollowing_EmptyWhenFollowedHaveNoPosts(t *testing.T) {
	store, svc := newFeedFixture()
	alice := seedUser(store, "alice", true)
	bob := seedUser(store, "bob", true)
	alice.Following = append(alice.Following, bob.ID)

	feed, err := svc.Following(context.Background(), alice.ID)
	require.NoError(t, err)
	assert.Empty(t, feed)
}

func TestForYou_SurfacesEngagedAuthors(t *testing.T) {
	store, svc := newFeedFixture()
	alice := seedUser(store, "alice", true)
	bob := seedUser(store, "bob", true)
	carol := seedUser(store, "carol", true)
	likedThread := seedThread(store, bob, "bob one")
	otherByBob := seedThread(store, bob, "bob two")
	seedThread(store, carol, "carol untouched")

	engagement := NewEngagementService(store, NewNotificationService(store), Policy{})
	_, _, err := engagement.ToggleLike(context.Background(), alice.ID, likedThread.ID, nil)
	require.NoError(t, err)

	feed, err := svc.ForYou(context.Background(), alice.ID)
	require.NoError(t, err)
	require.Len(t, feed, 2)
	ids := []primitive.ObjectID{feed[0].ID, feed[1].ID}
	assert.Contains(t, ids, likedThread.ID)
	assert.Contains(t, ids, otherByBob.ID)
}

func TestTagTop_RanksByEngagement(t *testing.T) {
	store, svc := newFeedFixture()
	alice := seedUser(store, "alice", true)
	tags := NewTagService(store)
	tagID, err := tags.Resolve(context.Background(), "golang", alice.ID)
	require.NoError(t, err)

	quiet := seedThread(store, alice, "quiet")
	quiet.Tag = tagID
	quiet.CreatedAt = time.Now().Add(-time.Hour)
	busy := seedThread(store, alice, "busy")
	busy.Tag = tagID
	busy.Likes = 5
	busy.Comments = 2
	busy.CreatedAt = time.Now().Add(-2 * time.Hour)

	top, err := svc.TagTop(context.Background(), "golang")
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, busy.ID, top[0].ID)

	recent, err := svc.TagRecent(context.Background(), "golang")
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, quiet.ID, recent[0].ID)
}

func TestTagFeeds_UnknownTag(t *testing.T) {
	_, svc := newFeedFixture()

	_, err := svc.TagRecent(context.Background(), "nosuchtag")
	assert.ErrorIs(t, err, ErrTagNotFound)
}

func TestSearch_MatchesAllCollectionsAndClearsPasswords(t *testing.T) {
	store, svc := newFeedFixture()
	alice := seedUser(store, "golang_fan", true)
	alice.Password = "secret-hash"
	seedCommunity(store, "Golang Brasil", alice)
	tags := NewTagService(store)
	_, err := tags.Resolve(context.Background(), "golang", alice.ID)
	require.NoError(t, err)

	results, err := svc.Search(context.Background(), "GOLANG")
	require.NoError(t, err)
	require.Len(t, results.Users, 1)
	assert.Empty(t, results.Users[0].Password)
	assert.Len(t, results.Tags, 1)
	assert.Len(t, results.Communities, 1)
}

func TestTopCommunities_RanksAndPaginates(t *testing.T) {
	store, svc := newFeedFixture()
	alice := seedUser(store, "alice", true)
	bob := seedUser(store, "bob", true)
	small := seedCommunity(store, "small", alice)
	big := seedCommunity(store, "big", alice, alice, bob)
	busyThread := seedThread(store, alice, "busy")
	busyThread.Likes = 10
	big.Threads = append(big.Threads, busyThread.ID)

	ranks, err := svc.TopCommunities(context.Background(), 0, 9)
	require.NoError(t, err)
	require.Len(t, ranks, 2)
	assert.Equal(t, big.ID, ranks[0].ID)
	assert.Equal(t, int64(2), ranks[0].FollowersCount)
	assert.Equal(t, int64(10), ranks[0].TotalEngagement)
	assert.Equal(t, small.ID, ranks[1].ID)

	page, err := svc.TopCommunities(context.Background(), 1, 9)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, small.ID, page[0].ID)
}

func TestThreadComments_TopLevelWithAuthors(t *testing.T) {
	store, svc := newFeedFixture()
	alice := seedUser(store, "alice", true)
	bob := seedUser(store, "bob", true)
	thread := seedThread(store, alice, "hello")

	engagement := NewEngagementService(store, NewNotificationService(store), Policy{})
	parent, err := engagement.AddComment(context.Background(), bob.ID, thread.ID, "first")
	require.NoError(t, err)
	reply, err := engagement.AddReply(context.Background(), alice.ID, thread.ID, parent.ID, "thanks")
	require.NoError(t, err)

	comments, err := svc.ThreadComments(context.Background(), thread.ID)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, parent.ID, comments[0].ID)
	require.NotNil(t, comments[0].OwnerInfo)
	assert.Equal(t, "bob", comments[0].OwnerInfo.Username)

	replies, err := svc.Replies(context.Background(), parent.ID)
	require.NoError(t, err)
	require.Len(t, replies, 1)
	assert.Equal(t, reply.ID, replies[0].ID)
}

func TestUserReplies_AttachesThreadInfo(t *testing.T) {
	store, svc := newFeedFixture()
	alice := seedUser(store, "alice", true)
	bob := seedUser(store, "bob", true)
	thread := seedThread(store, alice, "hello")

	engagement := NewEngagementService(store, NewNotificationService(store), Policy{})
	comment, err := engagement.AddComment(context.Background(), bob.ID, thread.ID, "nice")
	require.NoError(t, err)

	replies, err := svc.UserReplies(context.Background(), bob.ID)
	require.NoError(t, err)
	require.Len(t, replies, 1)
	assert.Equal(t, comment.ID, replies[0].ID)
	require.NotNil(t, replies[0].ThreadInfo)
	assert.Equal(t, thread.ID, replies[0].ThreadInfo.ID)
	require.NotNil(t, replies[0].ThreadInfo.Owner)
	assert.Equal(t, "alice", replies[0].ThreadInfo.Owner.Username)
}
