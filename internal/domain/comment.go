package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Comment is a user-authored note attached to exactly one issue.
type Comment struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Issue     primitive.ObjectID `bson:"issue"`
	Author    primitive.ObjectID `bson:"author"`
	Content   string             `bson:"content"`
	CreatedAt time.Time          `bson:"created_at"`
}
