package services

import (
	"context"

	"github.com/samber/lo"

	"parlor/repositories"
)

// Presence reports live membership from the transport.
type Presence interface {
	Count(ctx context.Context, room string) (int, error)
	Members(ctx context.Context, room string) ([]string, error)
}

type RoomSummary struct {
	ID              string
	Name            string
	NumParticipants int
}

// RoomService manages room descriptors and enriches listings with the
// transport's live participant counts.
type RoomService struct {
	rooms    repositories.IRoomRepository
	presence Presence
}

func NewRoomService(rooms repositories.IRoomRepository, presence Presence) *RoomService {
	return &RoomService{rooms: rooms, presence: presence}
}

func (s *RoomService) CreateRoom(name string) (repositories.RoomRecord, error) {
	return s.rooms.CreateRoom(name)
}

func (s *RoomService) DeleteRoom(name string) error {
	return s.rooms.DeleteRoom(name)
}

// ListParticipants returns the live member identities of a room.
func (s *RoomService) ListParticipants(ctx context.Context, room string) ([]string, error) {
	return s.presence.Members(ctx, room)
}

func (s *RoomService) ListRooms(ctx context.Context) ([]RoomSummary, error) {
	records, err := s.rooms.ListRooms()
	if err != nil {
		return nil, err
	}
	return lo.Map(records, func(item repositories.RoomRecord, _ int) RoomSummary {
		// A count failure degrades to zero rather than failing the listing.
		count, _ := s.presence.Count(ctx, item.Name)
		return RoomSummary{
			ID:              item.ID.String(),
			Name:            item.Name,
			NumParticipants: count,
		}
	}), nil
}
