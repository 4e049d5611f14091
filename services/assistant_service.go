//go:generate go run go.uber.org/mock/mockgen -source=assistant_service.go -destination=../mocks/mock_assistant_service.go -package=mocks
package services

import (
	"context"
	"fmt"
	"strings"

	"parlor/repositories"
)

// ReplyGenerator is the completion backend. *ai.Client satisfies it.
type ReplyGenerator interface {
	Generate(ctx context.Context, memoryContext, userMessage string) (string, error)
}

// AssistantService answers one mention with one reply, seeding the
// completion with the room's recent conversation.
type AssistantService struct {
	generator       ReplyGenerator
	messages        repositories.IMessageRepository
	contextMessages int
}

func NewAssistantService(generator ReplyGenerator, messages repositories.IMessageRepository,
	contextMessages int) *AssistantService {
	return &AssistantService{
		generator:       generator,
		messages:        messages,
		contextMessages: contextMessages,
	}
}

func (s *AssistantService) Reply(ctx context.Context, userID, room, message string) (string, error) {
	return s.generator.Generate(ctx, s.memoryContext(room), message)
}

// memoryContext formats the room's most recent messages for the prompt.
// History being unavailable is not a reason to refuse the reply.
func (s *AssistantService) memoryContext(room string) string {
	messages, _, err := s.messages.GetMessages(room, nil)
	if err != nil || len(messages) == 0 {
		return "No previous conversation in this room."
	}
	if len(messages) > s.contextMessages {
		messages = messages[:s.contextMessages]
	}
	// Storage returns newest first; the prompt reads oldest first.
	lines := make([]string, 0, len(messages)+1)
	lines = append(lines, "Recent conversation:")
	for i := len(messages) - 1; i >= 0; i-- {
		m := messages[i]
		prefix := fmt.Sprintf("[%s]", m.Sender)
		if m.IsAssistant {
			prefix = "[AI]"
		}
		lines = append(lines, fmt.Sprintf("%s %s %s", m.At.Format("15:04:05"), prefix, m.Text))
	}
	return strings.Join(lines, "\n")
}
