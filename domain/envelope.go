package domain

import (
	"encoding/json"
	"fmt"
)

// EnvelopeChat is the only envelope type the session recognizes.
// Unknown types are ignored so new payloads can ride the same bus.
const EnvelopeChat = "chat"

// Envelope is the JSON payload broadcast on the room bus. The embedded
// Sender is informational only: display identity always comes from the
// transport frame, which authenticates origin.
type Envelope struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Sender  string `json:"sender,omitempty"`
	IsAI    bool   `json:"isAI"`
}

func EncodeEnvelope(e Envelope) ([]byte, error) {
	b, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("encode envelope: %w", err)
	}
	return b, nil
}

func DecodeEnvelope(payload []byte) (Envelope, error) {
	var e Envelope
	if err := json.Unmarshal(payload, &e); err != nil {
		return Envelope{}, fmt.Errorf("decode envelope: %w", err)
	}
	return e, nil
}
