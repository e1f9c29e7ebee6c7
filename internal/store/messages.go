package store

import (
	"context"
	"time"

	"drinkbuddies/backend/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MessageStore persists chat traffic and serves history queries. Every
// message is written before it is fanned out.
type MessageStore struct {
	db *mongo.Database
}

func NewMessageStore(db *mongo.Database) *MessageStore {
	return &MessageStore{db: db}
}

func (s *MessageStore) messages() *mongo.Collection {
	return s.db.Collection("messages")
}

func (s *MessageStore) private() *mongo.Collection {
	return s.db.Collection("private_messages")
}

// SaveRoomMessage inserts a room message and returns it with its assigned
// id and timestamp.
func (s *MessageStore) SaveRoomMessage(ctx context.Context, room string, sender *models.User, content string) (*models.Message, error) {
	msg := &models.Message{
		ID:             primitive.NewObjectID(),
		Content:        content,
		SenderID:       sender.ID,
		SenderUsername: sender.Username,
		Room:           room,
		CreatedAt:      time.Now().UTC(),
	}
	if _, err := s.messages().InsertOne(ctx, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

// SavePrivateMessage inserts a private message between two users.
func (s *MessageStore) SavePrivateMessage(ctx context.Context, sender, receiver *models.User, content string) (*models.PrivateMessage, error) {
	msg := &models.PrivateMessage{
		ID:               primitive.NewObjectID(),
		SenderID:         sender.ID,
		SenderUsername:   sender.Username,
		ReceiverID:       receiver.ID,
		ReceiverUsername: receiver.Username,
		Message:          content,
		CreatedAt:        time.Now().UTC(),
		Read:             false,
	}
	if _, err := s.private().InsertOne(ctx, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

// RoomHistory returns messages for a room, newest first, optionally
// paginated backward from a timestamp.
func (s *MessageStore) RoomHistory(ctx context.Context, room string, limit int64, before *time.Time) ([]models.Message, error) {
	filter := bson.M{"room": room}
	if before != nil {
		filter["created_at"] = bson.M{"$lt": *before}
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(limit)

	cur, err := s.messages().Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	var msgs []models.Message
	if err := cur.All(ctx, &msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}

// Conversation returns the private history between two users, oldest
// first, the order the conversation view renders in.
func (s *MessageStore) Conversation(ctx context.Context, a, b primitive.ObjectID) ([]models.PrivateMessage, error) {
	filter := bson.M{"$or": []bson.M{
		{"sender_id": a, "receiver_id": b},
		{"sender_id": b, "receiver_id": a},
	}}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})

	cur, err := s.private().Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	var msgs []models.PrivateMessage
	if err := cur.All(ctx, &msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}

// MarkConversationRead flags everything the reader received from the other
// user as read. Best-effort; callers may ignore the error.
func (s *MessageStore) MarkConversationRead(ctx context.Context, reader, other primitive.ObjectID) error {
	_, err := s.private().UpdateMany(ctx,
		bson.M{"sender_id": other, "receiver_id": reader, "read": false},
		bson.M{"$set": bson.M{"read": true}})
	return err
}
