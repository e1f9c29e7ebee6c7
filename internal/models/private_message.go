package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PrivateMessage is a chat message between two users. Read is best-effort:
// it flips to true when the receiver fetches the conversation.
type PrivateMessage struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SenderID         primitive.ObjectID `bson:"sender_id" json:"sender_id"`
	SenderUsername   string             `bson:"sender_username" json:"sender_username"`
	ReceiverID       primitive.ObjectID `bson:"receiver_id" json:"receiver_id"`
	ReceiverUsername string             `bson:"receiver_username" json:"receiver_username"`
	Message          string             `bson:"message" json:"message"`
	CreatedAt        time.Time          `bson:"created_at" json:"created_at"`
	Read             bool               `bson:"read" json:"read"`
}
