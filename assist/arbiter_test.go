package assist

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"parlor/domain"
)

func TestEvaluate_Only_The_Sender_Triggers(t *testing.T) {
	req := require.New(t)
	e := domain.Entry{
		ID:     uuid.New(),
		Sender: "Alice",
		Text:   "@AI what's the weather",
		At:     time.Now().UTC(),
	}

	// When every participant evaluates the same entry
	identities := []string{"Alice", "Bob", "Clara"}
	triggered := 0
	var request Request
	for _, identity := range identities {
		r, ok := Evaluate(e, identity)
		if ok {
			triggered++
			request = r
		}
	}

	// Then exactly one instance elects itself
	req.Equal(1, triggered)
	req.Equal("what's the weather", request.Prompt)
}

func TestEvaluate_Assistant_Entries_Never_Trigger(t *testing.T) {
	req := require.New(t)
	e := domain.Entry{
		ID:          uuid.New(),
		Sender:      Identity,
		Text:        "mentioning @AI in my own reply",
		IsAssistant: true,
		At:          time.Now().UTC(),
	}

	_, ok := Evaluate(e, Identity)
	req.False(ok)
}

func TestEvaluate_No_Mention_No_Trigger(t *testing.T) {
	req := require.New(t)
	e := domain.Entry{
		ID:     uuid.New(),
		Sender: "Alice",
		Text:   "no mention here",
		At:     time.Now().UTC(),
	}

	_, ok := Evaluate(e, "Alice")
	req.False(ok)
}

func TestStripMention(t *testing.T) {
	req := require.New(t)

	req.Equal("what's the weather", StripMention("@AI what's the weather"))
	req.Equal("tell me  a joke", StripMention("tell me @AI a joke"))
	req.Equal("", StripMention("@AI"))
	req.Equal("plain text", StripMention("plain text"))
}
