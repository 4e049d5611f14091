package transport

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Frame kinds carried on a room bus.
const (
	FrameData  = "data"
	FrameJoin  = "join"
	FrameLeave = "leave"
)

// Frame is the unit published on a room's bus channel. Data frames wrap
// an application payload; join/leave frames carry no payload and only
// signal that the member set changed.
type Frame struct {
	Kind    string          `json:"kind"`
	Sender  string          `json:"sender"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

func EncodeFrame(f Frame) ([]byte, error) {
	b, err := json.Marshal(f)
	if err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	return b, nil
}

func DecodeFrame(b []byte) (Frame, error) {
	var f Frame
	if err := json.Unmarshal(b, &f); err != nil {
		return Frame{}, fmt.Errorf("decode frame: %w", err)
	}
	return f, nil
}

// BusPattern matches every room bus channel, for server-side taps.
const BusPattern = "room:*:bus"

// BusKey is the pub/sub channel carrying a room's frames.
func BusKey(room string) string {
	return "room:" + room + ":bus"
}

// MembersKey is the set holding a room's current member identities.
func MembersKey(room string) string {
	return "room:" + room + ":members"
}

// RoomFromBus extracts the room name from a bus channel name.
func RoomFromBus(channel string) (string, bool) {
	name, ok := strings.CutPrefix(channel, "room:")
	if !ok {
		return "", false
	}
	name, ok = strings.CutSuffix(name, ":bus")
	if !ok || name == "" {
		return "", false
	}
	return name, true
}
