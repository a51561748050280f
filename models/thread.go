// models/thread.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Thread is a user post. Likes and Comments are denormalized counters kept
// in step with the likes/comments collections by atomic $inc updates; the
// recount endpoint exists to repair any drift.
type Thread struct {
	ID          primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	OwnerID     primitive.ObjectID `json:"ownerId" bson:"ownerId"`
	Description string             `json:"description" bson:"description"`
	Images      []string           `json:"images" bson:"images"`
	Videos      []string           `json:"videos" bson:"videos"`
	Tag         primitive.ObjectID `json:"tag,omitempty" bson:"tag,omitempty"`
	IsPublished bool               `json:"isPublished" bson:"isPublished"`
	Likes       int64              `json:"likes" bson:"likes"`
	Comments    int64              `json:"comments" bson:"comments"`
	CreatedAt   time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// Tag is a deduplicated label resolved by exact name on every post write.
type Tag struct {
	ID      primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	OwnerID primitive.ObjectID `json:"ownerId" bson:"ownerId"`
	Name    string             `json:"name" bson:"name"`
}

// ThreadView is a Thread with its tag name and owner resolved for clients.
type ThreadView struct {
	Thread
	TagInfo *Tag     `json:"tagInfo,omitempty"`
	Owner   *UserRef `json:"owner,omitempty"`
}

type UpdatePostRequest struct {
	Tag         string `json:"tag"`
	Description string `json:"description"`
}

type RecountRequest struct {
	ThreadID string `json:"threadId" validate:"required"`
}

type SearchRequest struct {
	SearchText string `json:"searchText" validate:"required"`
}

// SearchResults groups the collections matched by a text search.
type SearchResults struct {
	Users       []User      `json:"users,omitempty"`
	Tags        []Tag       `json:"tags,omitempty"`
	Communities []Community `json:"communities,omitempty"`
}
