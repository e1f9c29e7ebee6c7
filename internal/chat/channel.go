package chat

import "go.mongodb.org/mongo-driver/bson/primitive"

// DefaultRoom is the public room clients land in when they name none.
const DefaultRoom = "global"

// roomChannel names the pub/sub topic for a public room.
func roomChannel(room string) string {
	return "chat:" + room
}

// privateChannel names the topic for a user pair. Sorting the ids makes
// the name direction-independent, so both participants land on the same
// topic.
func privateChannel(a, b primitive.ObjectID) string {
	x, y := a.Hex(), b.Hex()
	if y < x {
		x, y = y, x
	}
	return "chat:private:" + x + ":" + y
}
