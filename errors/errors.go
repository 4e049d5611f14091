package errors

import "fmt"

var (
	ErrTokenRejected        = fmt.Errorf("token rejected by transport")
	ErrRoomExists           = fmt.Errorf("room already exists")
	ErrRoomNotFound         = fmt.Errorf("room not found")
	ErrAssistantUnavailable = fmt.Errorf("assistant unavailable")
	ErrWorkerPanic          = fmt.Errorf("worker panic")
)
