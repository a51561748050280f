// services/store.go
package services

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/threadora/threadora_backend/models"
)

// Sentinel errors surfaced to controllers, which map them onto the response
// envelope and status codes of the HTTP contract.
var (
	ErrUserNotFound      = errors.New("user does not exist")
	ErrUserNotVerified   = errors.New("user is not verified")
	ErrThreadNotFound    = errors.New("thread does not exist")
	ErrCommentNotFound   = errors.New("comment does not exist")
	ErrCommunityNotFound = errors.New("community does not exist")
	ErrTagNotFound       = errors.New("tag not found")
	ErrNotOwner          = errors.New("user is not the owner")
	ErrNotMember         = errors.New("user is not a member of this community")
	ErrNotAdmin          = errors.New("user is not an admin")
	ErrAlreadySaved      = errors.New("post is already saved")
	ErrNoFollowing       = errors.New("user follows nobody")
	ErrNotFound          = errors.New("not found")
	ErrDuplicate         = errors.New("duplicate document")
)

// Store is the persistence surface the domain services run on. The mongo
// implementation lives in repositories; tests use the in-memory one.
//
// Counter updates are deltas applied atomically by the store, never
// read-modify-write. Delete* and Pull* methods are idempotent so a retried
// cascade is safe.
type Store interface {
	// Users
	GetUser(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	SetFollowState(ctx context.Context, followerID, targetID primitive.ObjectID, follow bool) error
	ListUserRefs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.UserRef, error)
	SearchUsers(ctx context.Context, match string) ([]models.User, error)

	// Threads
	GetThread(ctx context.Context, id primitive.ObjectID) (*models.Thread, error)
	InsertThread(ctx context.Context, thread *models.Thread) error
	IncThreadLikes(ctx context.Context, id primitive.ObjectID, delta int64) error
	IncThreadComments(ctx context.Context, id primitive.ObjectID, delta int64) error
	SetThreadLikes(ctx context.Context, id primitive.ObjectID, count int64) error
	DeleteThread(ctx context.Context, id primitive.ObjectID) error
	ListThreadsByOwner(ctx context.Context, ownerID primitive.ObjectID) ([]models.Thread, error)
	ListThreadsByOwners(ctx context.Context, ownerIDs []primitive.ObjectID) ([]models.Thread, error)
	ListThreadsByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Thread, error)
	ListThreadsExcluding(ctx context.Context, ids []primitive.ObjectID) ([]models.Thread, error)
	ListThreadsByTag(ctx context.Context, tagID primitive.ObjectID, byEngagement bool) ([]models.Thread, error)

	// Comments
	GetComment(ctx context.Context, id primitive.ObjectID) (*models.Comment, error)
	InsertComment(ctx context.Context, comment *models.Comment) error
	AppendCommentChild(ctx context.Context, parentID, childID primitive.ObjectID) error
	ListTopLevelComments(ctx context.Context, threadID primitive.ObjectID) ([]models.Comment, error)
	ListReplies(ctx context.Context, parentID primitive.ObjectID) ([]models.Comment, error)
	ListCommentsByOwner(ctx context.Context, ownerID primitive.ObjectID) ([]models.Comment, error)
	DeleteCommentsByThread(ctx context.Context, threadID primitive.ObjectID) (int64, error)

	// Likes
	FindLike(ctx context.Context, userID, threadID primitive.ObjectID) (*models.Like, error)
	InsertLike(ctx context.Context, like *models.Like) error
	DeleteLike(ctx context.Context, id primitive.ObjectID) error
	CountThreadLikes(ctx context.Context, threadID primitive.ObjectID) (int64, error)
	ListLikesByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Like, error)
	DeleteLikesByThread(ctx context.Context, threadID primitive.ObjectID) (int64, error)

	// Tags
	FindTagByName(ctx context.Context, name string) (*models.Tag, error)
	InsertTag(ctx context.Context, tag *models.Tag) error
	ListTagRefs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.Tag, error)
	SearchTags(ctx context.Context, match string) ([]models.Tag, error)

	// Communities
	GetCommunity(ctx context.Context, id primitive.ObjectID) (*models.Community, error)
	SetMembership(ctx context.Context, communityID, userID primitive.ObjectID, join bool) error
	PushCommunityThread(ctx context.Context, communityID, threadID primitive.ObjectID) error
	PullThreadFromCommunities(ctx context.Context, threadID primitive.ObjectID) (int64, error)
	CommunityThreadIDs(ctx context.Context) ([]primitive.ObjectID, error)
	TopCommunities(ctx context.Context, skip, limit int64) ([]models.CommunityRank, error)
	SearchCommunities(ctx context.Context, match string) ([]models.Community, error)

	// Saved
	GetSaved(ctx context.Context, ownerID primitive.ObjectID) (*models.Saved, error)
	AddSavedThread(ctx context.Context, ownerID, threadID primitive.ObjectID) error

	// Notifications
	InsertNotification(ctx context.Context, notification *models.Notification) error
	ListNotifications(ctx context.Context, ownerID primitive.ObjectID, since time.Time) ([]models.Notification, error)
	SearchNotifications(ctx context.Context, actorIDs []primitive.ObjectID, match string, since time.Time) ([]models.Notification, error)
	DeleteNotificationsByThread(ctx context.Context, threadID primitive.ObjectID) (int64, error)
}

// requireVerifiedUser loads a user and enforces the shared precondition of
// every engagement write: the account exists and has confirmed its code.
func requireVerifiedUser(ctx context.Context, store Store, id primitive.ObjectID) (*models.User, error) {
	user, err := store.GetUser(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if !user.IsVerified {
		return nil, ErrUserNotVerified
	}
	return user, nil
}
