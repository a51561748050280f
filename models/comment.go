// models/comment.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Comment belongs to a thread and forms a two-level tree: top-level comments
// have a nil ParentComment, replies point at their parent and appear in its
// Children list. Both sides of that link are written by the reply path only.
type Comment struct {
	ID            primitive.ObjectID   `json:"id,omitempty" bson:"_id,omitempty"`
	Content       string               `json:"content" bson:"content"`
	Thread        primitive.ObjectID   `json:"thread" bson:"thread"`
	Owner         primitive.ObjectID   `json:"owner" bson:"owner"`
	ParentComment *primitive.ObjectID  `json:"parentComment,omitempty" bson:"parentComment,omitempty"`
	Children      []primitive.ObjectID `json:"children" bson:"children"`
	CreatedAt     time.Time            `json:"createdAt" bson:"createdAt"`
	UpdatedAt     time.Time            `json:"updatedAt" bson:"updatedAt"`
}

// CommentView carries a comment with its author resolved, and optionally the
// thread it was left on (used by the per-user replies listing).
type CommentView struct {
	Comment
	OwnerInfo  *UserRef    `json:"ownerInfo,omitempty"`
	ThreadInfo *ThreadView `json:"threadInfo,omitempty"`
}

// Like records one user liking one thread. At most one document may exist
// per (likeBy, thread) pair; a unique index backs that invariant.
type Like struct {
	ID        primitive.ObjectID  `json:"id,omitempty" bson:"_id,omitempty"`
	LikeBy    primitive.ObjectID  `json:"likeBy" bson:"likeBy"`
	Thread    primitive.ObjectID  `json:"thread,omitempty" bson:"thread,omitempty"`
	Comment   *primitive.ObjectID `json:"comment,omitempty" bson:"comment,omitempty"`
	CreatedAt time.Time           `json:"createdAt" bson:"createdAt"`
}

type CommentRequest struct {
	Content string `json:"content" validate:"required"`
}

type ReplyRequest struct {
	ThreadID        string `json:"threadId" validate:"required"`
	ParentCommentID string `json:"parentCommentId" validate:"required"`
	Content         string `json:"content" validate:"required"`
}
