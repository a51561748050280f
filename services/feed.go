// services/feed.go
package services

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/threadora/threadora_backend/models"
)

// FeedService assembles the three feed variants, tag-scoped listings,
// comment read paths and text search. All listings are newest first unless
// ranked by engagement.
type FeedService struct {
	store   Store
	threads *ThreadService
}

func NewFeedService(store Store, threads *ThreadService) *FeedService {
	return &FeedService{store: store, threads: threads}
}

// Home returns every thread not referenced by any community.
func (s *FeedService) Home(ctx context.Context) ([]models.ThreadView, error) {
	communityThreads, err := s.store.CommunityThreadIDs(ctx)
	if err != nil {
		return nil, err
	}
	threads, err := s.store.ListThreadsExcluding(ctx, communityThreads)
	if err != nil {
		return nil, err
	}
	return s.threads.Decorate(ctx, threads)
}

// Following returns threads authored by users the caller follows. A caller
// who follows nobody gets ErrNoFollowing, a distinct condition from a
// followed set that happens to have no posts.
func (s *FeedService) Following(ctx context.Context, userID primitive.ObjectID) ([]models.ThreadView, error) {
	user, err := requireVerifiedUser(ctx, s.store, userID)
	if err != nil {
		return nil, err
	}
	if len(user.Following) == 0 {
		return nil, ErrNoFollowing
	}
	threads, err := s.store.ListThreadsByOwners(ctx, user.Following)
	if err != nil {
		return nil, err
	}
	return s.threads.Decorate(ctx, threads)
}

// ForYou returns threads by the owners of content the caller has engaged
// with, a "people I've interacted with" heuristic rather than a ranking
// model.
func (s *FeedService) ForYou(ctx context.Context, userID primitive.ObjectID) ([]models.ThreadView, error) {
	if _, err := requireVerifiedUser(ctx, s.store, userID); err != nil {
		return nil, err
	}

	likes, err := s.store.ListLikesByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	comments, err := s.store.ListCommentsByOwner(ctx, userID)
	if err != nil {
		return nil, err
	}

	engagedThreadIDs := make([]primitive.ObjectID, 0, len(likes)+len(comments))
	for _, like := range likes {
		engagedThreadIDs = append(engagedThreadIDs, like.Thread)
	}
	for _, comment := range comments {
		engagedThreadIDs = append(engagedThreadIDs, comment.Thread)
	}

	engaged, err := s.store.ListThreadsByIDs(ctx, engagedThreadIDs)
	if err != nil {
		return nil, err
	}
	seen := make(map[primitive.ObjectID]bool)
	owners := make([]primitive.ObjectID, 0, len(engaged))
	for _, thread := range engaged {
		if !seen[thread.OwnerID] {
			seen[thread.OwnerID] = true
			owners = append(owners, thread.OwnerID)
		}
	}

	threads, err := s.store.ListThreadsByOwners(ctx, owners)
	if err != nil {
		return nil, err
	}
	return s.threads.Decorate(ctx, threads)
}

// TagRecent lists a tag's threads by creation time descending.
func (s *FeedService) TagRecent(ctx context.Context, tagName string) ([]models.ThreadView, error) {
	return s.tagThreads(ctx, tagName, false)
}

// TagTop lists a tag's threads by likes+comments descending, creation time
// descending as the tiebreak.
func (s *FeedService) TagTop(ctx context.Context, tagName string) ([]models.ThreadView, error) {
	return s.tagThreads(ctx, tagName, true)
}

func (s *FeedService) tagThreads(ctx context.Context, tagName string, byEngagement bool) ([]models.ThreadView, error) {
	tag, err := s.store.FindTagByName(ctx, tagName)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrTagNotFound
		}
		return nil, err
	}
	threads, err := s.store.ListThreadsByTag(ctx, tag.ID, byEngagement)
	if err != nil {
		return nil, err
	}
	return s.threads.Decorate(ctx, threads)
}

// Search matches users, tags and communities by case-insensitive substring.
func (s *FeedService) Search(ctx context.Context, searchText string) (*models.SearchResults, error) {
	users, err := s.store.SearchUsers(ctx, searchText)
	if err != nil {
		return nil, err
	}
	tags, err := s.store.SearchTags(ctx, searchText)
	if err != nil {
		return nil, err
	}
	communities, err := s.store.SearchCommunities(ctx, searchText)
	if err != nil {
		return nil, err
	}
	for i := range users {
		users[i].Password = ""
	}
	return &models.SearchResults{Users: users, Tags: tags, Communities: communities}, nil
}

// TopCommunities ranks communities by member count, engagement of their
// threads, then post count, paginated.
func (s *FeedService) TopCommunities(ctx context.Context, skip, limit int64) ([]models.CommunityRank, error) {
	return s.store.TopCommunities(ctx, skip, limit)
}

// ThreadComments returns a thread's top-level comments with their authors
// and one level of replies resolved. Children of replies are never
// traversed.
func (s *FeedService) ThreadComments(ctx context.Context, threadID primitive.ObjectID) ([]models.CommentView, error) {
	if _, err := s.store.GetThread(ctx, threadID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrThreadNotFound
		}
		return nil, err
	}
	comments, err := s.store.ListTopLevelComments(ctx, threadID)
	if err != nil {
		return nil, err
	}
	return s.decorateComments(ctx, comments)
}

// Replies returns the direct children of a comment.
func (s *FeedService) Replies(ctx context.Context, parentCommentID primitive.ObjectID) ([]models.CommentView, error) {
	replies, err := s.store.ListReplies(ctx, parentCommentID)
	if err != nil {
		return nil, err
	}
	return s.decorateComments(ctx, replies)
}

// UserReplies returns comments authored by a user together with the threads
// they were left on.
func (s *FeedService) UserReplies(ctx context.Context, userID primitive.ObjectID) ([]models.CommentView, error) {
	if _, err := requireVerifiedUser(ctx, s.store, userID); err != nil {
		return nil, err
	}
	comments, err := s.store.ListCommentsByOwner(ctx, userID)
	if err != nil {
		return nil, err
	}
	views, err := s.decorateComments(ctx, comments)
	if err != nil {
		return nil, err
	}

	threadIDs := make([]primitive.ObjectID, 0, len(comments))
	for _, comment := range comments {
		threadIDs = append(threadIDs, comment.Thread)
	}
	threads, err := s.store.ListThreadsByIDs(ctx, threadIDs)
	if err != nil {
		return nil, err
	}
	threadViews, err := s.threads.Decorate(ctx, threads)
	if err != nil {
		return nil, err
	}
	byID := make(map[primitive.ObjectID]models.ThreadView, len(threadViews))
	for _, view := range threadViews {
		byID[view.ID] = view
	}
	for i := range views {
		if view, ok := byID[views[i].Thread]; ok {
			viewCopy := view
			views[i].ThreadInfo = &viewCopy
		}
	}
	return views, nil
}

func (s *FeedService) decorateComments(ctx context.Context, comments []models.Comment) ([]models.CommentView, error) {
	ownerIDs := make([]primitive.ObjectID, 0, len(comments))
	for _, comment := range comments {
		ownerIDs = append(ownerIDs, comment.Owner)
	}
	owners, err := s.store.ListUserRefs(ctx, ownerIDs)
	if err != nil {
		return nil, err
	}
	views := make([]models.CommentView, 0, len(comments))
	for _, comment := range comments {
		view := models.CommentView{Comment: comment}
		if owner, ok := owners[comment.Owner]; ok {
			ownerCopy := owner
			view.OwnerInfo = &ownerCopy
		}
		views = append(views, view)
	}
	return views, nil
}
