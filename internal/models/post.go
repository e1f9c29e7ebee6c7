package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Post represents an entry in the social feed. The author's username is
// denormalized into the document so the feed does not need a lookup per
// post.
type Post struct {
	ID             primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Content        string               `bson:"content" json:"content"`
	AuthorID       primitive.ObjectID   `bson:"author_id" json:"author_id"`
	AuthorUsername string               `bson:"author_username" json:"author_username"`
	ImageURL       string               `bson:"image_url,omitempty" json:"image_url,omitempty"`
	CreatedAt      time.Time            `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time            `bson:"updated_at" json:"updated_at"`
	LikesCount     int                  `bson:"likes_count" json:"likes_count"`
	LikedBy        []primitive.ObjectID `bson:"liked_by" json:"-"`
	CommentsCount  int                  `bson:"comments_count" json:"comments_count"`
}

// LikedByUser reports whether the given user already liked the post.
func (p *Post) LikedByUser(userID primitive.ObjectID) bool {
	for _, id := range p.LikedBy {
		if id == userID {
			return true
		}
	}
	return false
}
