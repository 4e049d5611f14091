//go:generate go run go.uber.org/mock/mockgen -source=contracts.go -destination=../../mocks/mock_httpapi.go -package=mocks
package httpapi

import (
	"context"

	"parlor/repositories"
	"parlor/services"
)

// The handlers depend on the service layer through these interfaces so
// the HTTP surface can be tested without badger, redis or a completion
// backend behind it.

type AccessService interface {
	CreateToken(room, identity string) (string, error)
}

type RoomService interface {
	CreateRoom(name string) (repositories.RoomRecord, error)
	DeleteRoom(name string) error
	ListRooms(ctx context.Context) ([]services.RoomSummary, error)
	ListParticipants(ctx context.Context, room string) ([]string, error)
}

type HistoryService interface {
	History(room string) ([]repositories.DiskMessage, error)
}

type AssistantService interface {
	Reply(ctx context.Context, userID, room, message string) (string, error)
}
