package moderation

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestModerator(t *testing.T) *Moderator {
	t.Helper()
	m, err := NewModerator(DefaultWords(), '*')
	require.NoError(t, err)
	return m
}

func Test_Censor_Masks_Word_And_Keeps_Context(t *testing.T) {
	req := require.New(t)
	moderator := newTestModerator(t)

	req.Equal("you *****, listen", moderator.Censor("you idiot, listen"))
}

func Test_Censor_Is_Case_Insensitive(t *testing.T) {
	req := require.New(t)
	moderator := newTestModerator(t)

	req.Equal("You *****!", moderator.Censor("You IDIOT!"))
}

func Test_Censor_Sees_Through_Punctuation(t *testing.T) {
	req := require.New(t)
	moderator := newTestModerator(t)

	// Dots inside the word are part of the masked span
	req.Equal("*********", moderator.Censor("i.d.i.o.t"))
}

func Test_Censor_Leaves_Clean_Text_Alone(t *testing.T) {
	req := require.New(t)
	moderator := newTestModerator(t)

	clean := "what a lovely evening"
	req.Equal(clean, moderator.Censor(clean))
}

func Test_Censor_Empty_Text(t *testing.T) {
	req := require.New(t)
	moderator := newTestModerator(t)

	req.Equal("", moderator.Censor(""))
}

func Test_Censor_Multiple_Words(t *testing.T) {
	req := require.New(t)
	moderator := newTestModerator(t)

	req.Equal("***** and *****", moderator.Censor("moron and loser"))
}

func Test_Default_Words_Skip_Comments(t *testing.T) {
	req := require.New(t)

	words := DefaultWords()
	req.NotEmpty(words)
	req.Contains(words, "idiot")
	for _, w := range words {
		req.NotContains(w, "#")
	}
}
