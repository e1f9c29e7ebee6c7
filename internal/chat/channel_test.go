package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestRoomChannel(t *testing.T) {
	assert.Equal(t, "chat:global", roomChannel("global"))
	assert.Equal(t, "chat:party", roomChannel("party"))
}

func TestPrivateChannelIsDirectionIndependent(t *testing.T) {
	a := primitive.NewObjectID()
	b := primitive.NewObjectID()

	assert.Equal(t, privateChannel(a, b), privateChannel(b, a))
}

func TestPrivateChannelSortsIDs(t *testing.T) {
	a, _ := primitive.ObjectIDFromHex("000000000000000000000001")
	b, _ := primitive.ObjectIDFromHex("000000000000000000000002")

	want := "chat:private:000000000000000000000001:000000000000000000000002"
	assert.Equal(t, want, privateChannel(a, b))
	assert.Equal(t, want, privateChannel(b, a))
}
