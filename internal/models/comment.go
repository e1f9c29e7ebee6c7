package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Comment represents a comment on a post.
type Comment struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Content        string             `bson:"content" json:"content"`
	AuthorID       primitive.ObjectID `bson:"author_id" json:"author_id"`
	AuthorUsername string             `bson:"author_username" json:"author_username"`
	PostID         primitive.ObjectID `bson:"post_id" json:"post_id"`
	CreatedAt      time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time          `bson:"updated_at" json:"updated_at"`
}
