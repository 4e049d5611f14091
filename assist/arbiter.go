// Package assist decides when and how the inline assistant is invoked.
//
// The data-plane is a broadcast: every session observes every entry,
// including entries the local instance just sent. Whether "this" instance
// owes a completion call is therefore a pure function of the entry and
// the local identity, derivable independently everywhere without any
// coordination. Exactly one instance (the author's) ever wins.
package assist

import (
	"strings"

	"parlor/domain"
)

// MentionToken marks an inline request for the assistant. Case-sensitive.
const MentionToken = "@AI"

// Identity is the display sender of assistant-authored entries.
const Identity = "AI Assistant"

// FallbackReply is appended locally when the completion service fails.
// Never broadcast: a failed mention is not a room-wide event.
const FallbackReply = "AI unavailable"

// Request is a pending completion call owed by this instance.
type Request struct {
	Prompt string
}

// Evaluate elects whether the local instance must call the completion
// service for an observed entry. All three must hold: the text mentions
// the assistant, the entry is not assistant-authored (no reply loops),
// and the entry's sender is the local identity (author-side election).
func Evaluate(e domain.Entry, localIdentity string) (Request, bool) {
	if e.IsAssistant {
		return Request{}, false
	}
	if !strings.Contains(e.Text, MentionToken) {
		return Request{}, false
	}
	if e.Sender != localIdentity {
		return Request{}, false
	}
	return Request{Prompt: StripMention(e.Text)}, true
}

// StripMention removes every mention token and trims the remainder,
// leaving the prompt actually sent to the completion service.
func StripMention(text string) string {
	return strings.TrimSpace(strings.ReplaceAll(text, MentionToken, ""))
}
