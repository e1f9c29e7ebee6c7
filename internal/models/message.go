package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Message is a chat message addressed to a public room. Messages are
// immutable once inserted.
type Message struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Content        string             `bson:"content" json:"content"`
	SenderID       primitive.ObjectID `bson:"sender_id" json:"sender_id"`
	SenderUsername string             `bson:"sender_username" json:"sender_username"`
	Room           string             `bson:"room" json:"room"`
	CreatedAt      time.Time          `bson:"created_at" json:"created_at"`
}
