package chat

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"drinkbuddies/backend/internal/models"
	"drinkbuddies/backend/pkg/jwt"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const testSecret = "test-secret"

type fakeGateway struct {
	mu           sync.Mutex
	roomSaves    []models.Message
	privateSaves []models.PrivateMessage
	history      []models.Message
}

func (g *fakeGateway) SaveRoomMessage(_ context.Context, room string, sender *models.User, content string) (*models.Message, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	msg := models.Message{
		ID:             primitive.NewObjectID(),
		Content:        content,
		SenderID:       sender.ID,
		SenderUsername: sender.Username,
		Room:           room,
		CreatedAt:      time.Now().UTC(),
	}
	g.roomSaves = append(g.roomSaves, msg)
	return &msg, nil
}

func (g *fakeGateway) SavePrivateMessage(_ context.Context, sender, receiver *models.User, content string) (*models.PrivateMessage, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	msg := models.PrivateMessage{
		ID:               primitive.NewObjectID(),
		SenderID:         sender.ID,
		SenderUsername:   sender.Username,
		ReceiverID:       receiver.ID,
		ReceiverUsername: receiver.Username,
		Message:          content,
		CreatedAt:        time.Now().UTC(),
	}
	g.privateSaves = append(g.privateSaves, msg)
	return &msg, nil
}

func (g *fakeGateway) RoomHistory(_ context.Context, room string, limit int64, _ *time.Time) ([]models.Message, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	var out []models.Message
	for _, m := range g.history {
		if m.Room == room {
			out = append(out, m)
		}
	}
	if int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (g *fakeGateway) roomSaveCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.roomSaves)
}

func (g *fakeGateway) privateSaveCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.privateSaves)
}

type fakeUsers struct {
	byName map[string]*models.User
}

func (f *fakeUsers) FindByUsername(_ context.Context, username string) (*models.User, error) {
	if u, ok := f.byName[username]; ok {
		return u, nil
	}
	return nil, assert.AnError
}

type fakeFriends struct {
	pairs map[string]bool
}

func (f *fakeFriends) AreFriends(_ context.Context, a, b primitive.ObjectID) (bool, error) {
	return f.pairs[privateChannel(a, b)], nil
}

type chatFixture struct {
	server  *httptest.Server
	gateway *fakeGateway
	relay   *Relay
	users   *fakeUsers
	friends *fakeFriends
}

func newChatFixture(t *testing.T) *chatFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	gateway := &fakeGateway{}
	users := &fakeUsers{byName: map[string]*models.User{}}
	friends := &fakeFriends{pairs: map[string]bool{}}
	relay := NewRelay(NewLocalBridge())
	h := NewHandler(relay, gateway, users, friends, testSecret)

	router := gin.New()
	router.GET("/ws", h.RoomWebSocket)
	router.GET("/ws/private/:username", h.PrivateWebSocket)
	router.GET("/messages", h.RoomHistory)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return &chatFixture{server: server, gateway: gateway, relay: relay, users: users, friends: friends}
}

func (f *chatFixture) addUser(t *testing.T, username string) (*models.User, string) {
	t.Helper()
	user := &models.User{ID: primitive.NewObjectID(), Username: username, IsActive: true}
	f.users.byName[username] = user
	token, err := jwt.GenerateToken(username, testSecret, time.Minute)
	require.NoError(t, err)
	return user, token
}

func (f *chatFixture) befriend(a, b *models.User) {
	f.friends.pairs[privateChannel(a.ID, b.ID)] = true
}

func (f *chatFixture) dial(t *testing.T, path string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(f.server.URL, "http") + path
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) messageFrame {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var frame messageFrame
	require.NoError(t, json.Unmarshal(data, &frame))
	return frame
}

func readPrivateFrame(t *testing.T, conn *websocket.Conn) privateFrame {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var frame privateFrame
	require.NoError(t, json.Unmarshal(data, &frame))
	return frame
}

func expectNoFrame(t *testing.T, conn *websocket.Conn) {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(300*time.Millisecond)))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err)
}

func sendContent(t *testing.T, conn *websocket.Conn, content string) {
	t.Helper()
	require.NoError(t, conn.WriteJSON(map[string]string{"content": content}))
}

func TestRoomWebSocketDeliversToRoom(t *testing.T) {
	f := newChatFixture(t)
	alice, aliceToken := f.addUser(t, "alice")
	_, bobToken := f.addUser(t, "bob")

	connA := f.dial(t, "/ws?token="+aliceToken)
	connB := f.dial(t, "/ws?token="+bobToken)

	// The system welcome confirms each session finished joining before we
	// publish anything.
	assert.Equal(t, "system", readFrame(t, connA).Type)
	assert.Equal(t, "system", readFrame(t, connB).Type)

	sendContent(t, connA, "first round is on me")

	for _, conn := range []*websocket.Conn{connA, connB} {
		frame := readFrame(t, conn)
		assert.Equal(t, "message", frame.Type)
		assert.Equal(t, "first round is on me", frame.Content)
		assert.Equal(t, alice.Username, frame.SenderUsername)
		assert.Equal(t, DefaultRoom, frame.Room)
	}
	assert.Equal(t, 1, f.gateway.roomSaveCount())
}

func TestRoomWebSocketDropsInvalidFrames(t *testing.T) {
	f := newChatFixture(t)
	_, token := f.addUser(t, "alice")

	conn := f.dial(t, "/ws?token="+token)
	assert.Equal(t, "system", readFrame(t, conn).Type)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{not json")))
	sendContent(t, conn, "   ")
	sendContent(t, conn, "still alive")

	frame := readFrame(t, conn)
	assert.Equal(t, "still alive", frame.Content)
	assert.Equal(t, 1, f.gateway.roomSaveCount())
}

func TestRoomWebSocketRejectsBadToken(t *testing.T) {
	f := newChatFixture(t)

	conn := f.dial(t, "/ws?token=garbage")
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.ClosePolicyViolation))
	assert.Equal(t, 0, f.relay.registry.Count(roomChannel(DefaultRoom)))
}

func TestRoomWebSocketRejectsMissingToken(t *testing.T) {
	f := newChatFixture(t)

	conn := f.dial(t, "/ws")
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.ClosePolicyViolation))
}

func TestRoomWebSocketRoomIsolation(t *testing.T) {
	f := newChatFixture(t)
	_, aliceToken := f.addUser(t, "alice")
	_, bobToken := f.addUser(t, "bob")

	connGlobal := f.dial(t, "/ws?token="+aliceToken)
	connParty := f.dial(t, "/ws?room=party&token="+bobToken)
	assert.Equal(t, "system", readFrame(t, connGlobal).Type)
	assert.Equal(t, "system", readFrame(t, connParty).Type)

	sendContent(t, connGlobal, "only for global")

	assert.Equal(t, "only for global", readFrame(t, connGlobal).Content)
	expectNoFrame(t, connParty)
}

func TestPrivateWebSocketBetweenFriends(t *testing.T) {
	f := newChatFixture(t)
	alice, aliceToken := f.addUser(t, "alice")
	bob, bobToken := f.addUser(t, "bob")
	f.befriend(alice, bob)

	connA := f.dial(t, "/ws/private/bob?token="+aliceToken)
	connB := f.dial(t, "/ws/private/alice?token="+bobToken)
	assert.Equal(t, "system", readFrame(t, connA).Type)
	assert.Equal(t, "system", readFrame(t, connB).Type)

	sendContent(t, connA, "meet at the usual place")

	for _, conn := range []*websocket.Conn{connA, connB} {
		frame := readPrivateFrame(t, conn)
		assert.Equal(t, "private_message", frame.Type)
		assert.Equal(t, "meet at the usual place", frame.Content)
		assert.Equal(t, "alice", frame.SenderUsername)
		assert.Equal(t, "bob", frame.ReceiverUsername)
		assert.False(t, frame.Read)
	}
	assert.Equal(t, 1, f.gateway.privateSaveCount())
}

func TestPrivateWebSocketRejectsNonFriends(t *testing.T) {
	f := newChatFixture(t)
	f.addUser(t, "alice")
	_, bobToken := f.addUser(t, "bob")

	conn := f.dial(t, "/ws/private/alice?token="+bobToken)
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.ClosePolicyViolation))
}

func TestPrivateWebSocketRejectsUnknownFriend(t *testing.T) {
	f := newChatFixture(t)
	_, token := f.addUser(t, "alice")

	conn := f.dial(t, "/ws/private/nobody?token="+token)
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.ClosePolicyViolation))
}

func TestRoomHistoryEndpoint(t *testing.T) {
	f := newChatFixture(t)
	sender := primitive.NewObjectID()
	for i := 0; i < 3; i++ {
		f.gateway.history = append(f.gateway.history, models.Message{
			ID:             primitive.NewObjectID(),
			Content:        "msg",
			SenderID:       sender,
			SenderUsername: "alice",
			Room:           DefaultRoom,
			CreatedAt:      time.Now().UTC(),
		})
	}

	resp, err := f.server.Client().Get(f.server.URL + "/messages?limit=2")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, 200, resp.StatusCode)

	var frames []messageFrame
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&frames))
	require.Len(t, frames, 2)
	assert.Equal(t, "message", frames[0].Type)
	assert.Equal(t, DefaultRoom, frames[0].Room)
}

func TestRoomHistoryRejectsBadBefore(t *testing.T) {
	f := newChatFixture(t)

	resp, err := f.server.Client().Get(f.server.URL + "/messages?before=yesterday")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, 400, resp.StatusCode)
}
