package store

import (
	"context"
	"errors"

	"drinkbuddies/backend/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// FriendshipStore answers friendship queries for the chat handshake.
type FriendshipStore struct {
	db *mongo.Database
}

func NewFriendshipStore(db *mongo.Database) *FriendshipStore {
	return &FriendshipStore{db: db}
}

// AreFriends reports whether an accepted friendship exists between the two
// users, in either direction.
func (s *FriendshipStore) AreFriends(ctx context.Context, a, b primitive.ObjectID) (bool, error) {
	err := s.db.Collection("friendships").FindOne(ctx, bson.M{"$or": []bson.M{
		{"user_id": a, "friend_id": b, "status": models.FriendshipAccepted},
		{"user_id": b, "friend_id": a, "status": models.FriendshipAccepted},
	}}).Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
