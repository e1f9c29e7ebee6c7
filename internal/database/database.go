package database

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	client *mongo.Client

	// DB is the application database handle, set by Connect.
	DB *mongo.Database
)

// Connect initializes the MongoDB connection and creates the indexes the
// query paths rely on.
func Connect(url, name string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var err error
	client, err = mongo.Connect(ctx, options.Client().ApplyURI(url))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	if err := client.Ping(ctx, nil); err != nil {
		log.Fatal().Err(err).Str("url", url).Msg("Database unreachable")
	}
	DB = client.Database(name)

	if err := ensureIndexes(ctx, DB); err != nil {
		log.Fatal().Err(err).Msg("Failed to create indexes")
	}

	log.Info().Str("db", name).Msg("Database connection established")
}

// Disconnect closes the client. Safe to call when Connect never ran.
func Disconnect() {
	if client == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = client.Disconnect(ctx)
}

// Collection accessors keep the collection names in one place.

func Users() *mongo.Collection           { return DB.Collection("users") }
func Posts() *mongo.Collection           { return DB.Collection("posts") }
func Comments() *mongo.Collection        { return DB.Collection("comments") }
func Friendships() *mongo.Collection     { return DB.Collection("friendships") }
func Messages() *mongo.Collection        { return DB.Collection("messages") }
func PrivateMessages() *mongo.Collection { return DB.Collection("private_messages") }

func ensureIndexes(ctx context.Context, db *mongo.Database) error {
	if _, err := db.Collection("users").Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
	}); err != nil {
		return err
	}
	if _, err := db.Collection("posts").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "created_at", Value: -1}},
	}); err != nil {
		return err
	}
	if _, err := db.Collection("comments").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "post_id", Value: 1}, {Key: "created_at", Value: 1}},
	}); err != nil {
		return err
	}
	if _, err := db.Collection("messages").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "room", Value: 1}, {Key: "created_at", Value: -1}},
	}); err != nil {
		return err
	}
	if _, err := db.Collection("private_messages").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "sender_id", Value: 1}, {Key: "receiver_id", Value: 1}, {Key: "created_at", Value: 1}},
	}); err != nil {
		return err
	}
	return nil
}
