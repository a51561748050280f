// models/community.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Community groups threads and members. A thread id appears in at most one
// community's Threads list; the cascade on thread deletion pulls it out.
type Community struct {
	ID          primitive.ObjectID   `json:"id,omitempty" bson:"_id,omitempty"`
	Name        string               `json:"name" bson:"name"`
	Description string               `json:"description" bson:"description"`
	About       string               `json:"about,omitempty" bson:"about,omitempty"`
	CoverImage  string               `json:"coverImage" bson:"coverImage"`
	Members     []primitive.ObjectID `json:"members" bson:"members"`
	Admin       []primitive.ObjectID `json:"admin" bson:"admin"`
	Threads     []primitive.ObjectID `json:"threads" bson:"threads"`
	CreatedAt   time.Time            `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time            `json:"updatedAt" bson:"updatedAt"`
}

// CommunityRank is a community with the aggregates the top-communities
// listing sorts by. Computed at read time, never stored.
type CommunityRank struct {
	Community       `bson:",inline"`
	FollowersCount  int64 `json:"followersCount" bson:"followersCount"`
	TotalLikes      int64 `json:"totalLikes" bson:"totalLikes"`
	TotalComments   int64 `json:"totalComments" bson:"totalComments"`
	TotalPosts      int64 `json:"totalPosts" bson:"totalPosts"`
	TotalEngagement int64 `json:"totalEngagement" bson:"totalEngagement"`
}

type UpdateCommunityRequest struct {
	Description string `json:"description"`
	About       string `json:"about"`
}

type CommunityCommentRequest struct {
	ThreadID string `json:"threadId" validate:"required"`
	Comment  string `json:"comment" validate:"required"`
}

type CommunityPostDeleteRequest struct {
	CommunityID string `json:"communityId" validate:"required"`
}
