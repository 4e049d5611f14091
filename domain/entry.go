// Package domain contains core concepts of the room chat system.
// This file defines chat entries and related rules.
// Entries are immutable once appended to a timeline.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Entry represents one line of a room timeline. An entry is created by
// exactly one of three sources: a history load, a local send (optimistic
// echo) or a remote broadcast. The id is assigned by whichever instance
// creates the entry; uniqueness is only guaranteed within one timeline.
type Entry struct {
	ID          uuid.UUID
	Sender      string
	Text        string
	IsAssistant bool
	At          time.Time
}
