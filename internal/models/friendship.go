package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FriendshipStatus defines the state of a relationship between two users.
type FriendshipStatus string

const (
	// FriendshipPending means a friend request has been sent but not yet accepted.
	FriendshipPending FriendshipStatus = "pending"

	// FriendshipAccepted means the friend request was accepted, and the users are now friends.
	FriendshipAccepted FriendshipStatus = "accepted"
)

// Friendship represents the relationship between two users. UserID is the
// requester, FriendID the receiver.
type Friendship struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"user_id" json:"user_id"`
	FriendID  primitive.ObjectID `bson:"friend_id" json:"friend_id"`
	Status    FriendshipStatus   `bson:"status" json:"status"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt *time.Time         `bson:"updated_at,omitempty" json:"updated_at,omitempty"`
}
