package services

import (
	"context"
	"sort"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/threadora/threadora_backend/models"
)

// memStore is an in-memory Store used by the service tests. It mirrors the
// semantics the mongo implementation relies on, including the unique
// (likeBy, thread) index on likes and the unique name index on tags.
type memStore struct {
	users         map[primitive.ObjectID]*models.User
	threads       map[primitive.ObjectID]*models.Thread
	comments      map[primitive.ObjectID]*models.Comment
	likes         map[primitive.ObjectID]*models.Like
	tags          map[primitive.ObjectID]*models.Tag
	communities   map[primitive.ObjectID]*models.Community
	saved         map[primitive.ObjectID]*models.Saved
	notifications []*models.Notification
}

func newMemStore() *memStore {
	return &memStore{
		users:       map[primitive.ObjectID]*models.User{},
		threads:     map[primitive.ObjectID]*models.Thread{},
		comments:    map[primitive.ObjectID]*models.Comment{},
		likes:       map[primitive.ObjectID]*models.Like{},
		tags:        map[primitive.ObjectID]*models.Tag{},
		communities: map[primitive.ObjectID]*models.Community{},
		saved:       map[primitive.ObjectID]*models.Saved{},
	}
}

func containsObjectID(ids []primitive.ObjectID, id primitive.ObjectID) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}

func withoutObjectID(ids []primitive.ObjectID, id primitive.ObjectID) []primitive.ObjectID {
	out := ids[:0]
	for _, candidate := range ids {
		if candidate != id {
			out = append(out, candidate)
		}
	}
	return out
}

// Users

func (m *memStore) GetUser(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	user, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *user
	return &copied, nil
}

func (m *memStore) SetFollowState(ctx context.Context, followerID, targetID primitive.ObjectID, follow bool) error {
	follower, ok := m.users[followerID]
	if !ok {
		return ErrNotFound
	}
	target, ok := m.users[targetID]
	if !ok {
		return ErrNotFound
	}
	if follow {
		if !containsObjectID(follower.Following, targetID) {
			follower.Following = append(follower.Following, targetID)
		}
		if !containsObjectID(target.Followers, followerID) {
			target.Followers = append(target.Followers, followerID)
		}
		return nil
	}
	follower.Following = withoutObjectID(follower.Following, targetID)
	target.Followers = withoutObjectID(target.Followers, followerID)
	return nil
}

func (m *memStore) ListUserRefs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.UserRef, error) {
	refs := make(map[primitive.ObjectID]models.UserRef)
	for _, id := range ids {
		if user, ok := m.users[id]; ok {
			refs[id] = models.UserRef{ID: user.ID, Username: user.Username, FullName: user.FullName, Avatar: user.Avatar}
		}
	}
	return refs, nil
}

func (m *memStore) SearchUsers(ctx context.Context, match string) ([]models.User, error) {
	needle := strings.ToLower(match)
	var out []models.User
	for _, user := range m.users {
		if strings.Contains(strings.ToLower(user.Username), needle) ||
			strings.Contains(strings.ToLower(user.FullName), needle) {
			out = append(out, *user)
		}
	}
	return out, nil
}

// Threads

func (m *memStore) GetThread(ctx context.Context, id primitive.ObjectID) (*models.Thread, error) {
	thread, ok := m.threads[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *thread
	return &copied, nil
}

func (m *memStore) InsertThread(ctx context.Context, thread *models.Thread) error {
	if thread.ID.IsZero() {
		thread.ID = primitive.NewObjectID()
	}
	copied := *thread
	m.threads[thread.ID] = &copied
	return nil
}

func (m *memStore) IncThreadLikes(ctx context.Context, id primitive.ObjectID, delta int64) error {
	if thread, ok := m.threads[id]; ok {
		thread.Likes += delta
	}
	return nil
}

func (m *memStore) IncThreadComments(ctx context.Context, id primitive.ObjectID, delta int64) error {
	if thread, ok := m.threads[id]; ok {
		thread.Comments += delta
	}
	return nil
}

func (m *memStore) SetThreadLikes(ctx context.Context, id primitive.ObjectID, count int64) error {
	if thread, ok := m.threads[id]; ok {
		thread.Likes = count
	}
	return nil
}

func (m *memStore) DeleteThread(ctx context.Context, id primitive.ObjectID) error {
	delete(m.threads, id)
	return nil
}

func sortThreadsNewestFirst(threads []models.Thread) []models.Thread {
	sort.Slice(threads, func(i, j int) bool {
		return threads[i].CreatedAt.After(threads[j].CreatedAt)
	})
	return threads
}

func (m *memStore) ListThreadsByOwner(ctx context.Context, ownerID primitive.ObjectID) ([]models.Thread, error) {
	var out []models.Thread
	for _, thread := range m.threads {
		if thread.OwnerID == ownerID {
			out = append(out, *thread)
		}
	}
	return sortThreadsNewestFirst(out), nil
}

func (m *memStore) ListThreadsByOwners(ctx context.Context, ownerIDs []primitive.ObjectID) ([]models.Thread, error) {
	var out []models.Thread
	for _, thread := range m.threads {
		if containsObjectID(ownerIDs, thread.OwnerID) {
			out = append(out, *thread)
		}
	}
	return sortThreadsNewestFirst(out), nil
}

func (m *memStore) ListThreadsByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Thread, error) {
	var out []models.Thread
	for _, id := range ids {
		if thread, ok := m.threads[id]; ok {
			out = append(out, *thread)
		}
	}
	return sortThreadsNewestFirst(out), nil
}

func (m *memStore) ListThreadsExcluding(ctx context.Context, ids []primitive.ObjectID) ([]models.Thread, error) {
	var out []models.Thread
	for _, thread := range m.threads {
		if !containsObjectID(ids, thread.ID) {
			out = append(out, *thread)
		}
	}
	return sortThreadsNewestFirst(out), nil
}

func (m *memStore) ListThreadsByTag(ctx context.Context, tagID primitive.ObjectID, byEngagement bool) ([]models.Thread, error) {
	var out []models.Thread
	for _, thread := range m.threads {
		if thread.Tag == tagID {
			out = append(out, *thread)
		}
	}
	if byEngagement {
		sort.Slice(out, func(i, j int) bool {
			left := out[i].Likes + out[i].Comments
			right := out[j].Likes + out[j].Comments
			if left != right {
				return left > right
			}
			return out[i].CreatedAt.After(out[j].CreatedAt)
		})
		return out, nil
	}
	return sortThreadsNewestFirst(out), nil
}

// Comments

func (m *memStore) GetComment(ctx context.Context, id primitive.ObjectID) (*models.Comment, error) {
	comment, ok := m.comments[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *comment
	return &copied, nil
}

func (m *memStore) InsertComment(ctx context.Context, comment *models.Comment) error {
	if comment.ID.IsZero() {
		comment.ID = primitive.NewObjectID()
	}
	copied := *comment
	m.comments[comment.ID] = &copied
	return nil
}

func (m *memStore) AppendCommentChild(ctx context.Context, parentID, childID primitive.ObjectID) error {
	parent, ok := m.comments[parentID]
	if !ok {
		return ErrNotFound
	}
	parent.Children = append(parent.Children, childID)
	return nil
}

func (m *memStore) ListTopLevelComments(ctx context.Context, threadID primitive.ObjectID) ([]models.Comment, error) {
	var out []models.Comment
	for _, comment := range m.comments {
		if comment.Thread == threadID && comment.ParentComment == nil {
			out = append(out, *comment)
		}
	}
	return out, nil
}

func (m *memStore) ListReplies(ctx context.Context, parentID primitive.ObjectID) ([]models.Comment, error) {
	var out []models.Comment
	for _, comment := range m.comments {
		if comment.ParentComment != nil && *comment.ParentComment == parentID {
			out = append(out, *comment)
		}
	}
	return out, nil
}

func (m *memStore) ListCommentsByOwner(ctx context.Context, ownerID primitive.ObjectID) ([]models.Comment, error) {
	var out []models.Comment
	for _, comment := range m.comments {
		if comment.Owner == ownerID {
			out = append(out, *comment)
		}
	}
	return out, nil
}

func (m *memStore) DeleteCommentsByThread(ctx context.Context, threadID primitive.ObjectID) (int64, error) {
	var deleted int64
	for id, comment := range m.comments {
		if comment.Thread == threadID {
			delete(m.comments, id)
			deleted++
		}
	}
	return deleted, nil
}

// Likes

func (m *memStore) FindLike(ctx context.Context, userID, threadID primitive.ObjectID) (*models.Like, error) {
	for _, like := range m.likes {
		if like.LikeBy == userID && like.Thread == threadID {
			copied := *like
			return &copied, nil
		}
	}
	return nil, ErrNotFound
}

func (m *memStore) InsertLike(ctx context.Context, like *models.Like) error {
	for _, existing := range m.likes {
		if existing.LikeBy == like.LikeBy && existing.Thread == like.Thread {
			return ErrDuplicate
		}
	}
	if like.ID.IsZero() {
		like.ID = primitive.NewObjectID()
	}
	copied := *like
	m.likes[like.ID] = &copied
	return nil
}

func (m *memStore) DeleteLike(ctx context.Context, id primitive.ObjectID) error {
	delete(m.likes, id)
	return nil
}

func (m *memStore) CountThreadLikes(ctx context.Context, threadID primitive.ObjectID) (int64, error) {
	var count int64
	for _, like := range m.likes {
		if like.Thread == threadID {
			count++
		}
	}
	return count, nil
}

func (m *memStore) ListLikesByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Like, error) {
	var out []models.Like
	for _, like := range m.likes {
		if like.LikeBy == userID && !like.Thread.IsZero() {
			out = append(out, *like)
		}
	}
	return out, nil
}

func (m *memStore) DeleteLikesByThread(ctx context.Context, threadID primitive.ObjectID) (int64, error) {
	var deleted int64
	for id, like := range m.likes {
		if like.Thread == threadID {
			delete(m.likes, id)
			deleted++
		}
	}
	return deleted, nil
}

// Tags

func (m *memStore) FindTagByName(ctx context.Context, name string) (*models.Tag, error) {
	for _, tag := range m.tags {
		if tag.Name == name {
			copied := *tag
			return &copied, nil
		}
	}
	return nil, ErrNotFound
}

func (m *memStore) InsertTag(ctx context.Context, tag *models.Tag) error {
	for _, existing := range m.tags {
		if existing.Name == tag.Name {
			return ErrDuplicate
		}
	}
	if tag.ID.IsZero() {
		tag.ID = primitive.NewObjectID()
	}
	copied := *tag
	m.tags[tag.ID] = &copied
	return nil
}

func (m *memStore) ListTagRefs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.Tag, error) {
	refs := make(map[primitive.ObjectID]models.Tag)
	for _, id := range ids {
		if tag, ok := m.tags[id]; ok {
			refs[id] = *tag
		}
	}
	return refs, nil
}

func (m *memStore) SearchTags(ctx context.Context, match string) ([]models.Tag, error) {
	needle := strings.ToLower(match)
	var out []models.Tag
	for _, tag := range m.tags {
		if strings.Contains(strings.ToLower(tag.Name), needle) {
			out = append(out, *tag)
		}
	}
	return out, nil
}

// Communities

func (m *memStore) GetCommunity(ctx context.Context, id primitive.ObjectID) (*models.Community, error) {
	community, ok := m.communities[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *community
	return &copied, nil
}

func (m *memStore) SetMembership(ctx context.Context, communityID, userID primitive.ObjectID, join bool) error {
	community, ok := m.communities[communityID]
	if !ok {
		return ErrNotFound
	}
	if join {
		if !containsObjectID(community.Members, userID) {
			community.Members = append(community.Members, userID)
		}
		return nil
	}
	community.Members = withoutObjectID(community.Members, userID)
	return nil
}

func (m *memStore) PushCommunityThread(ctx context.Context, communityID, threadID primitive.ObjectID) error {
	community, ok := m.communities[communityID]
	if !ok {
		return ErrNotFound
	}
	if !containsObjectID(community.Threads, threadID) {
		community.Threads = append(community.Threads, threadID)
	}
	return nil
}

func (m *memStore) PullThreadFromCommunities(ctx context.Context, threadID primitive.ObjectID) (int64, error) {
	var modified int64
	for _, community := range m.communities {
		if containsObjectID(community.Threads, threadID) {
			community.Threads = withoutObjectID(community.Threads, threadID)
			modified++
		}
	}
	return modified, nil
}

func (m *memStore) CommunityThreadIDs(ctx context.Context) ([]primitive.ObjectID, error) {
	var ids []primitive.ObjectID
	for _, community := range m.communities {
		ids = append(ids, community.Threads...)
	}
	return ids, nil
}

func (m *memStore) TopCommunities(ctx context.Context, skip, limit int64) ([]models.CommunityRank, error) {
	var ranks []models.CommunityRank
	for _, community := range m.communities {
		rank := models.CommunityRank{Community: *community}
		rank.FollowersCount = int64(len(community.Members))
		rank.TotalPosts = int64(len(community.Threads))
		for _, threadID := range community.Threads {
			if thread, ok := m.threads[threadID]; ok {
				rank.TotalLikes += thread.Likes
				rank.TotalComments += thread.Comments
			}
		}
		rank.TotalEngagement = rank.TotalLikes + rank.TotalComments
		ranks = append(ranks, rank)
	}
	sort.Slice(ranks, func(i, j int) bool {
		if ranks[i].FollowersCount != ranks[j].FollowersCount {
			return ranks[i].FollowersCount > ranks[j].FollowersCount
		}
		if ranks[i].TotalEngagement != ranks[j].TotalEngagement {
			return ranks[i].TotalEngagement > ranks[j].TotalEngagement
		}
		return ranks[i].TotalPosts > ranks[j].TotalPosts
	})
	if skip >= int64(len(ranks)) {
		return []models.CommunityRank{}, nil
	}
	ranks = ranks[skip:]
	if limit < int64(len(ranks)) {
		ranks = ranks[:limit]
	}
	return ranks, nil
}

func (m *memStore) SearchCommunities(ctx context.Context, match string) ([]models.Community, error) {
	needle := strings.ToLower(match)
	var out []models.Community
	for _, community := range m.communities {
		if strings.Contains(strings.ToLower(community.Name), needle) {
			out = append(out, *community)
		}
	}
	return out, nil
}

// Saved

func (m *memStore) GetSaved(ctx context.Context, ownerID primitive.ObjectID) (*models.Saved, error) {
	for _, saved := range m.saved {
		if saved.OwnerID == ownerID {
			copied := *saved
			return &copied, nil
		}
	}
	return nil, ErrNotFound
}

func (m *memStore) AddSavedThread(ctx context.Context, ownerID, threadID primitive.ObjectID) error {
	for _, saved := range m.saved {
		if saved.OwnerID == ownerID {
			if !containsObjectID(saved.Saved, threadID) {
				saved.Saved = append(saved.Saved, threadID)
			}
			saved.UpdatedAt = time.Now()
			return nil
		}
	}
	id := primitive.NewObjectID()
	m.saved[id] = &models.Saved{
		ID:        id,
		OwnerID:   ownerID,
		Saved:     []primitive.ObjectID{threadID},
		Liked:     []primitive.ObjectID{},
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	return nil
}

// Notifications

func (m *memStore) InsertNotification(ctx context.Context, notification *models.Notification) error {
	if notification.ID.IsZero() {
		notification.ID = primitive.NewObjectID()
	}
	copied := *notification
	m.notifications = append(m.notifications, &copied)
	return nil
}

func (m *memStore) ListNotifications(ctx context.Context, ownerID primitive.ObjectID, since time.Time) ([]models.Notification, error) {
	var out []models.Notification
	for _, notification := range m.notifications {
		if notification.OwnerID == ownerID && !notification.CreatedAt.Before(since) {
			out = append(out, *notification)
		}
	}
	return out, nil
}

func (m *memStore) SearchNotifications(ctx context.Context, actorIDs []primitive.ObjectID, match string, since time.Time) ([]models.Notification, error) {
	needle := strings.ToLower(match)
	var out []models.Notification
	for _, notification := range m.notifications {
		if containsObjectID(actorIDs, notification.UserID) &&
			strings.Contains(strings.ToLower(notification.Name), needle) &&
			!notification.CreatedAt.Before(since) {
			out = append(out, *notification)
		}
	}
	return out, nil
}

func (m *memStore) DeleteNotificationsByThread(ctx context.Context, threadID primitive.ObjectID) (int64, error) {
	kept := m.notifications[:0]
	var deleted int64
	for _, notification := range m.notifications {
		if notification.ThreadID == threadID {
			deleted++
			continue
		}
		kept = append(kept, notification)
	}
	m.notifications = kept
	return deleted, nil
}

var _ Store = (*memStore)(nil)

// Fixture helpers shared by the service tests.

func seedUser(store *memStore, username string, verified bool) *models.User {
	user := &models.User{
		ID:         primitive.NewObjectID(),
		FullName:   strings.ToUpper(username[:1]) + username[1:],
		Username:   username,
		Email:      username + "@example.com",
		IsVerified: verified,
		Threads:    []primitive.ObjectID{},
		Followers:  []primitive.ObjectID{},
		Following:  []primitive.ObjectID{},
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}
	store.users[user.ID] = user
	return user
}

func seedThread(store *memStore, owner *models.User, description string) *models.Thread {
	thread := &models.Thread{
		ID:          primitive.NewObjectID(),
		OwnerID:     owner.ID,
		Description: description,
		Images:      []string{},
		Videos:      []string{},
		IsPublished: true,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	store.threads[thread.ID] = thread
	return thread
}

func seedCommunity(store *memStore, name string, admin *models.User, members ...*models.User) *models.Community {
	community := &models.Community{
		ID:        primitive.NewObjectID(),
		Name:      name,
		Members:   []primitive.ObjectID{},
		Admin:     []primitive.ObjectID{admin.ID},
		Threads:   []primitive.ObjectID{},
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	for _, member := range members {
		community.Members = append(community.Members, member.ID)
	}
	store.communities[community.ID] = community
	return community
}
