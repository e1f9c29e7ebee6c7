package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"drinkbuddies/backend/internal/models"
	"drinkbuddies/backend/pkg/jwt"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// authTimeout bounds the handshake: a socket that cannot authenticate
// within it is closed instead of held open.
const authTimeout = 5 * time.Second

// Gateway persists chat traffic before fan-out and serves history.
type Gateway interface {
	SaveRoomMessage(ctx context.Context, room string, sender *models.User, content string) (*models.Message, error)
	SavePrivateMessage(ctx context.Context, sender, receiver *models.User, content string) (*models.PrivateMessage, error)
	RoomHistory(ctx context.Context, room string, limit int64, before *time.Time) ([]models.Message, error)
}

// UserFinder resolves the authenticated account during the handshake.
type UserFinder interface {
	FindByUsername(ctx context.Context, username string) (*models.User, error)
}

// FriendshipChecker guards private conversations.
type FriendshipChecker interface {
	AreFriends(ctx context.Context, a, b primitive.ObjectID) (bool, error)
}

// Handler serves the chat WebSocket endpoints and room history.
type Handler struct {
	relay   *Relay
	gateway Gateway
	users   UserFinder
	friends FriendshipChecker
	secret  string
}

func NewHandler(relay *Relay, gateway Gateway, users UserFinder, friends FriendshipChecker, secret string) *Handler {
	return &Handler{relay: relay, gateway: gateway, users: users, friends: friends, secret: secret}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// inboundFrame is the only shape clients send. Unknown fields are ignored.
type inboundFrame struct {
	Content string `json:"content"`
}

type messageFrame struct {
	Type           string    `json:"type"`
	ID             string    `json:"id,omitempty"`
	Content        string    `json:"content"`
	SenderID       string    `json:"sender_id,omitempty"`
	SenderUsername string    `json:"sender_username,omitempty"`
	Room           string    `json:"room,omitempty"`
	Timestamp      time.Time `json:"timestamp"`
}

type privateFrame struct {
	Type             string    `json:"type"`
	ID               string    `json:"id"`
	Content          string    `json:"content"`
	SenderID         string    `json:"sender_id"`
	SenderUsername   string    `json:"sender_username"`
	ReceiverID       string    `json:"receiver_id"`
	ReceiverUsername string    `json:"receiver_username"`
	Timestamp        time.Time `json:"timestamp"`
	Read             bool      `json:"read"`
}

// RoomWebSocket upgrades the connection and runs a session bound to a
// public room (default "global"). The token comes from the "token" query
// parameter or the bearer header.
func (h *Handler) RoomWebSocket(c *gin.Context) {
	room := c.DefaultQuery("room", DefaultRoom)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), authTimeout)
	user, err := h.authenticate(ctx, c)
	cancel()
	if err != nil {
		closePolicyViolation(conn, err.Error())
		return
	}

	client := newClient(conn, user, roomChannel(room))
	if err := h.relay.Join(context.Background(), client.channel, client); err != nil {
		log.Error().Err(err).Str("channel", client.channel).Msg("bridge subscribe failed")
		_ = conn.Close()
		return
	}
	go client.writePump()

	h.sendSystem(client, fmt.Sprintf("Connected to room '%s'", room))
	log.Info().Str("room", room).Str("user", user.Username).Msg("chat session started")

	h.runSession(client, func(ctx context.Context, content string) ([]byte, error) {
		msg, err := h.gateway.SaveRoomMessage(ctx, room, user, content)
		if err != nil {
			return nil, err
		}
		return json.Marshal(roomMessageFrame(msg))
	})

	log.Info().Str("room", room).Str("user", user.Username).Msg("chat session closed")
}

// PrivateWebSocket upgrades the connection and runs a session on the
// private channel shared with the named friend. Only accepted friends may
// open it.
func (h *Handler) PrivateWebSocket(c *gin.Context) {
	friendUsername := c.Param("username")

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), authTimeout)
	defer cancel()

	user, err := h.authenticate(ctx, c)
	if err != nil {
		closePolicyViolation(conn, err.Error())
		return
	}
	friend, err := h.users.FindByUsername(ctx, friendUsername)
	if err != nil {
		closePolicyViolation(conn, "Friend not found")
		return
	}
	ok, err := h.friends.AreFriends(ctx, user.ID, friend.ID)
	if err != nil || !ok {
		closePolicyViolation(conn, "Not friends")
		return
	}

	client := newClient(conn, user, privateChannel(user.ID, friend.ID))
	if err := h.relay.Join(context.Background(), client.channel, client); err != nil {
		log.Error().Err(err).Str("channel", client.channel).Msg("bridge subscribe failed")
		_ = conn.Close()
		return
	}
	go client.writePump()

	h.sendSystem(client, fmt.Sprintf("Connected to private chat with %s", friend.Username))
	log.Info().Str("user", user.Username).Str("friend", friend.Username).Msg("private chat session started")

	h.runSession(client, func(ctx context.Context, content string) ([]byte, error) {
		msg, err := h.gateway.SavePrivateMessage(ctx, user, friend, content)
		if err != nil {
			return nil, err
		}
		return json.Marshal(privateFrame{
			Type:             "private_message",
			ID:               msg.ID.Hex(),
			Content:          msg.Message,
			SenderID:         msg.SenderID.Hex(),
			SenderUsername:   msg.SenderUsername,
			ReceiverID:       msg.ReceiverID.Hex(),
			ReceiverUsername: msg.ReceiverUsername,
			Timestamp:        msg.CreatedAt,
			Read:             msg.Read,
		})
	})

	log.Info().Str("user", user.Username).Str("friend", friend.Username).Msg("private chat session closed")
}

// RoomHistory returns a room's persisted messages, newest first.
func (h *Handler) RoomHistory(c *gin.Context) {
	room := c.DefaultQuery("room", DefaultRoom)

	limit, err := strconv.ParseInt(c.DefaultQuery("limit", "50"), 10, 64)
	if err != nil || limit < 1 {
		limit = 50
	}
	if limit > 100 {
		limit = 100
	}

	var before *time.Time
	if raw := c.Query("before"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid before timestamp"})
			return
		}
		before = &t
	}

	msgs, err := h.gateway.RoomHistory(c.Request.Context(), room, limit, before)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch history"})
		return
	}

	c.JSON(http.StatusOK, lo.Map(msgs, func(m models.Message, _ int) messageFrame {
		return roomMessageFrame(&m)
	}))
}

// runSession reads inbound frames until the socket breaks, persisting and
// publishing each valid one. Empty and malformed frames are dropped
// without a reply; that tolerance is part of the protocol. Cleanup runs
// exactly once on the way out.
func (h *Handler) runSession(client *Client, persist func(context.Context, string) ([]byte, error)) {
	defer func() {
		h.relay.Leave(client.channel, client)
		client.close()
	}()

	client.conn.SetReadLimit(maxFrameSize)
	_ = client.conn.SetReadDeadline(time.Now().Add(pongWait))
	client.conn.SetPongHandler(func(string) error {
		return client.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := client.conn.ReadMessage()
		if err != nil {
			return
		}

		var in inboundFrame
		if err := json.Unmarshal(data, &in); err != nil {
			continue
		}
		content := strings.TrimSpace(in.Content)
		if content == "" {
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), writeWait)
		payload, err := persist(ctx, content)
		if err != nil {
			cancel()
			log.Error().Err(err).Str("channel", client.channel).Msg("message not persisted, frame dropped")
			continue
		}
		if err := h.relay.Publish(ctx, client.channel, payload); err != nil {
			// The message is already durable; only live fan-out failed.
			log.Error().Err(err).Str("channel", client.channel).Msg("publish failed")
		}
		cancel()
	}
}

func (h *Handler) authenticate(ctx context.Context, c *gin.Context) (*models.User, error) {
	token := c.Query("token")
	if token == "" {
		authz := c.GetHeader("Authorization")
		if len(authz) > 7 && strings.EqualFold(authz[:7], "bearer ") {
			token = strings.TrimSpace(authz[7:])
		}
	}
	if token == "" {
		return nil, errors.New("Missing token")
	}

	username, err := jwt.ParseToken(token, h.secret)
	if err != nil {
		return nil, errors.New("Invalid token")
	}
	user, err := h.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, errors.New("User not found")
	}
	if !user.IsActive {
		return nil, errors.New("Inactive user")
	}
	return user, nil
}

// sendSystem queues a synthetic system frame for this client only. System
// frames are never persisted.
func (h *Handler) sendSystem(client *Client, content string) {
	payload, err := json.Marshal(messageFrame{
		Type:      "system",
		Content:   content,
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		return
	}
	client.Send(payload)
}

func roomMessageFrame(m *models.Message) messageFrame {
	return messageFrame{
		Type:           "message",
		ID:             m.ID.Hex(),
		Content:        m.Content,
		SenderID:       m.SenderID.Hex(),
		SenderUsername: m.SenderUsername,
		Room:           m.Room,
		Timestamp:      m.CreatedAt,
	}
}

func closePolicyViolation(conn *websocket.Conn, reason string) {
	deadline := time.Now().Add(writeWait)
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.ClosePolicyViolation, reason), deadline)
	_ = conn.Close()
}
