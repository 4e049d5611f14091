package services

import (
	"parlor/repositories"
)

// HistoryService exposes a room's recent messages, oldest first, the
// order a timeline is seeded in.
type HistoryService struct {
	messages repositories.IMessageRepository
}

func NewHistoryService(messages repositories.IMessageRepository) *HistoryService {
	return &HistoryService{messages: messages}
}

// History returns the most recent page of a room's messages in ascending
// timestamp order. A room with no history yields an empty slice.
func (s *HistoryService) History(room string) ([]repositories.DiskMessage, error) {
	messages, _, err := s.messages.GetMessages(room, nil)
	if err != nil {
		return nil, err
	}
	// Storage returns newest first; timelines load oldest first.
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}
