package handler

import (
	"net/http"
	"time"

	"drinkbuddies/backend/internal/auth"
	"drinkbuddies/backend/internal/cache"
	"drinkbuddies/backend/internal/database"
	"drinkbuddies/backend/internal/models"
	"drinkbuddies/backend/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// region --- DTOs ---

// FriendRequestInput defines the structure for sending a friend request.
type FriendRequestInput struct {
	FriendUsername string `json:"friend_username" binding:"required"`
}

// FriendRequestResponse defines the structure for a pending request as the
// receiver sees it.
type FriendRequestResponse struct {
	ID             string    `json:"id"`
	SenderID       string    `json:"sender_id"`
	SenderUsername string    `json:"sender_username"`
	CreatedAt      time.Time `json:"created_at"`
}

// FriendResponse defines the structure for an accepted friend.
type FriendResponse struct {
	ID        string     `json:"id"`
	Username  string     `json:"username"`
	Bio       string     `json:"bio,omitempty"`
	SoberDate *time.Time `json:"sober_date,omitempty"`
	DaysSober *int       `json:"days_sober,omitempty"`
	IsOnline  bool       `json:"is_online"`
}

// PrivateMessageInput defines the structure for a REST-sent private
// message.
type PrivateMessageInput struct {
	ReceiverUsername string `json:"receiver_username" binding:"required"`
	Message          string `json:"message" binding:"required,max=2000"`
}

// PrivateMessageResponse defines the structure for a private message.
type PrivateMessageResponse struct {
	ID               string    `json:"id"`
	SenderID         string    `json:"sender_id"`
	SenderUsername   string    `json:"sender_username"`
	ReceiverID       string    `json:"receiver_id"`
	ReceiverUsername string    `json:"receiver_username"`
	Message          string    `json:"message"`
	CreatedAt        time.Time `json:"created_at"`
	Read             bool      `json:"read"`
}

// endregion

func buildPrivateMessageResponse(m *models.PrivateMessage) PrivateMessageResponse {
	return PrivateMessageResponse{
		ID:               m.ID.Hex(),
		SenderID:         m.SenderID.Hex(),
		SenderUsername:   m.SenderUsername,
		ReceiverID:       m.ReceiverID.Hex(),
		ReceiverUsername: m.ReceiverUsername,
		Message:          m.Message,
		CreatedAt:        m.CreatedAt,
		Read:             m.Read,
	}
}

func friendsCacheKey(userID string) string {
	return "friends:" + userID
}

func messageStore() *store.MessageStore {
	return store.NewMessageStore(database.DB)
}

// findUserByUsername fetches an account or writes the 404 itself.
func findUserByUsername(c *gin.Context, username string) (*models.User, bool) {
	var user models.User
	if err := database.Users().FindOne(c.Request.Context(), bson.M{"username": username}).Decode(&user); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return nil, false
	}
	return &user, true
}

// SendFriendRequest creates a pending friendship toward the named user.
// Self-requests and duplicates in either direction are rejected.
func SendFriendRequest(c *gin.Context) {
	user := auth.CurrentUser(c)

	var input FriendRequestInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if input.FriendUsername == user.Username {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot send a friend request to yourself"})
		return
	}

	target, ok := findUserByUsername(c, input.FriendUsername)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	err := database.Friendships().FindOne(ctx, bson.M{"$or": []bson.M{
		{"user_id": user.ID, "friend_id": target.ID},
		{"user_id": target.ID, "friend_id": user.ID},
	}}).Err()
	if err == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Friendship or request already exists"})
		return
	}

	friendship := models.Friendship{
		ID:        primitive.NewObjectID(),
		UserID:    user.ID,
		FriendID:  target.ID,
		Status:    models.FriendshipPending,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := database.Friendships().InsertOne(ctx, &friendship); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send friend request"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Friend request sent", "id": friendship.ID.Hex()})
}

// GetFriendRequests lists pending requests addressed to the authenticated
// user.
func GetFriendRequests(c *gin.Context) {
	user := auth.CurrentUser(c)
	ctx := c.Request.Context()

	cur, err := database.Friendships().Find(ctx, bson.M{
		"friend_id": user.ID,
		"status":    models.FriendshipPending,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch requests"})
		return
	}
	var requests []models.Friendship
	if err := cur.All(ctx, &requests); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch requests"})
		return
	}

	resp := make([]FriendRequestResponse, 0, len(requests))
	for _, r := range requests {
		var sender models.User
		if err := database.Users().FindOne(ctx, bson.M{"_id": r.UserID}).Decode(&sender); err != nil {
			continue
		}
		resp = append(resp, FriendRequestResponse{
			ID:             r.ID.Hex(),
			SenderID:       sender.ID.Hex(),
			SenderUsername: sender.Username,
			CreatedAt:      r.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, resp)
}

// loadPendingRequest fetches the request by id and verifies the caller is
// its receiver.
func loadPendingRequest(c *gin.Context, user *models.User) (*models.Friendship, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request id"})
		return nil, false
	}
	var friendship models.Friendship
	if err := database.Friendships().FindOne(c.Request.Context(), bson.M{
		"_id":    id,
		"status": models.FriendshipPending,
	}).Decode(&friendship); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Friend request not found"})
		return nil, false
	}
	if friendship.FriendID != user.ID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not the receiver of this request"})
		return nil, false
	}
	return &friendship, true
}

// AcceptFriendRequest marks the pending request accepted. Only the
// receiver may accept.
func AcceptFriendRequest(c *gin.Context) {
	user := auth.CurrentUser(c)
	friendship, ok := loadPendingRequest(c, user)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	now := time.Now().UTC()
	if _, err := database.Friendships().UpdateByID(ctx, friendship.ID, bson.M{"$set": bson.M{
		"status":     models.FriendshipAccepted,
		"updated_at": now,
	}}); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to accept request"})
		return
	}

	cache.Invalidate(ctx, friendsCacheKey(user.ID.Hex()), friendsCacheKey(friendship.UserID.Hex()))
	c.JSON(http.StatusOK, gin.H{"message": "Friend request accepted"})
}

// RejectFriendRequest deletes the pending request. Only the receiver may
// reject.
func RejectFriendRequest(c *gin.Context) {
	user := auth.CurrentUser(c)
	friendship, ok := loadPendingRequest(c, user)
	if !ok {
		return
	}

	if _, err := database.Friendships().DeleteOne(c.Request.Context(), bson.M{"_id": friendship.ID}); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reject request"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Friend request rejected"})
}

// GetFriends lists accepted friends with live presence, cached briefly.
func GetFriends(c *gin.Context) {
	user := auth.CurrentUser(c)
	ctx := c.Request.Context()
	key := friendsCacheKey(user.ID.Hex())

	var cached []FriendResponse
	if cache.GetJSON(ctx, key, &cached) {
		c.JSON(http.StatusOK, cached)
		return
	}

	cur, err := database.Friendships().Find(ctx, bson.M{
		"status": models.FriendshipAccepted,
		"$or": []bson.M{
			{"user_id": user.ID},
			{"friend_id": user.ID},
		},
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch friends"})
		return
	}
	var friendships []models.Friendship
	if err := cur.All(ctx, &friendships); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch friends"})
		return
	}

	friendIDs := lo.Map(friendships, func(f models.Friendship, _ int) primitive.ObjectID {
		if f.UserID == user.ID {
			return f.FriendID
		}
		return f.UserID
	})

	resp := make([]FriendResponse, 0, len(friendIDs))
	for _, id := range friendIDs {
		var friend models.User
		if err := database.Users().FindOne(ctx, bson.M{"_id": id}).Decode(&friend); err != nil {
			continue
		}
		resp = append(resp, FriendResponse{
			ID:        friend.ID.Hex(),
			Username:  friend.Username,
			Bio:       friend.Bio,
			SoberDate: friend.SoberDate,
			DaysSober: friend.DaysSober(),
			IsOnline:  cache.IsOnline(ctx, friend.ID.Hex()),
		})
	}

	cache.SetJSON(ctx, key, resp, cache.ListTTL)
	c.JSON(http.StatusOK, resp)
}

// RemoveFriend deletes the accepted friendship with the given user id,
// from either side.
func RemoveFriend(c *gin.Context) {
	user := auth.CurrentUser(c)

	friendID, err := primitive.ObjectIDFromHex(c.Param("friendID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid friend id"})
		return
	}

	ctx := c.Request.Context()
	res, err := database.Friendships().DeleteOne(ctx, bson.M{
		"status": models.FriendshipAccepted,
		"$or": []bson.M{
			{"user_id": user.ID, "friend_id": friendID},
			{"user_id": friendID, "friend_id": user.ID},
		},
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove friend"})
		return
	}
	if res.DeletedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Friendship not found"})
		return
	}

	cache.Invalidate(ctx, friendsCacheKey(user.ID.Hex()), friendsCacheKey(friendID.Hex()))
	c.JSON(http.StatusOK, gin.H{"message": "Friend removed"})
}

// SendPrivateMessage persists a direct message over REST. Only accepted
// friends may message each other.
func SendPrivateMessage(c *gin.Context) {
	user := auth.CurrentUser(c)

	var input PrivateMessageInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	receiver, ok := findUserByUsername(c, input.ReceiverUsername)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	friends, err := store.NewFriendshipStore(database.DB).AreFriends(ctx, user.ID, receiver.ID)
	if err != nil || !friends {
		c.JSON(http.StatusForbidden, gin.H{"error": "You can only message friends"})
		return
	}

	msg, err := messageStore().SavePrivateMessage(ctx, user, receiver, input.Message)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send message"})
		return
	}
	c.JSON(http.StatusCreated, buildPrivateMessageResponse(msg))
}

// GetConversation returns the full direct history with the named friend,
// oldest first, and marks their messages to the caller as read.
func GetConversation(c *gin.Context) {
	user := auth.CurrentUser(c)
	other, ok := findUserByUsername(c, c.Param("username"))
	if !ok {
		return
	}

	ctx := c.Request.Context()
	friends, err := store.NewFriendshipStore(database.DB).AreFriends(ctx, user.ID, other.ID)
	if err != nil || !friends {
		c.JSON(http.StatusForbidden, gin.H{"error": "You can only view conversations with friends"})
		return
	}

	msgs, err := messageStore().Conversation(ctx, user.ID, other.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch conversation"})
		return
	}
	_ = messageStore().MarkConversationRead(ctx, user.ID, other.ID)

	c.JSON(http.StatusOK, lo.Map(msgs, func(m models.PrivateMessage, _ int) PrivateMessageResponse {
		return buildPrivateMessageResponse(&m)
	}))
}
