// models/saved.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Saved holds one document per user, upserted lazily the first time they
// save a post. The Liked list is written by no current flow but kept for
// compatibility with stored documents.
type Saved struct {
	ID        primitive.ObjectID   `json:"id,omitempty" bson:"_id,omitempty"`
	OwnerID   primitive.ObjectID   `json:"ownerId" bson:"ownerId"`
	Saved     []primitive.ObjectID `json:"saved" bson:"saved"`
	Liked     []primitive.ObjectID `json:"liked" bson:"liked"`
	CreatedAt time.Time            `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time            `json:"updatedAt" bson:"updatedAt"`
}
