//go:generate go run go.uber.org/mock/mockgen -source=transport.go -destination=../mocks/mock_transport.go -package=mocks

// Package transport defines the broadcast data-plane a session rides on
// and its Redis pub/sub implementation.
//
// The contract is deliberately weak: order-preserving delivery per sender
// to all current room members, no global order across senders, and no
// delivery of a sender's own data frames back to itself. The session
// layer's optimistic local echo depends on that last property.
package transport

import "context"

// Events are the callbacks a connection fires. Both are invoked from a
// single goroutine per connection, so handlers never run concurrently
// with each other.
type Events struct {
	// Data delivers a payload published by another member. The sender
	// identity is supplied by the transport, which authenticated it.
	Data func(sender string, payload []byte)
	// Roster fires after membership changed; the handler should fetch
	// the authoritative member list and rebuild, not diff.
	Roster func(identities []string)
}

// Conn is an established room connection.
type Conn interface {
	// Publish broadcasts a payload to the other members. The reliable
	// flag requests at-least-once delivery where the backend offers a
	// choice of modes.
	Publish(ctx context.Context, payload []byte, reliable bool) error
	// Members returns the authoritative member list.
	Members(ctx context.Context) ([]string, error)
	// Close leaves the room. Idempotent.
	Close() error
}

// Dialer joins rooms on behalf of a token holder.
type Dialer interface {
	Dial(ctx context.Context, room, token string, events Events) (Conn, error)
}
