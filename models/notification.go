// models/notification.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notification is an append-only record of another user's action on the
// recipient's content. UserID is the actor, OwnerID the recipient.
type Notification struct {
	ID          primitive.ObjectID  `json:"id,omitempty" bson:"_id,omitempty"`
	UserID      primitive.ObjectID  `json:"userId" bson:"userId"`
	Name        string              `json:"name" bson:"name"`
	OwnerID     primitive.ObjectID  `json:"ownerId" bson:"ownerId"`
	ThreadID    primitive.ObjectID  `json:"threadId,omitempty" bson:"threadId,omitempty"`
	CommunityID *primitive.ObjectID `json:"communityId,omitempty" bson:"communityId,omitempty"`
	CreatedAt   time.Time           `json:"createdAt" bson:"createdAt"`
}

type NotificationSearchRequest struct {
	MatchText string `json:"matchText" validate:"required"`
}
