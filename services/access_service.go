package services

import (
	"time"

	"parlor/auth"
)

// AccessService issues room access tokens for the realtime transport.
type AccessService struct {
	secret []byte
	ttl    time.Duration
}

func NewAccessService(secret []byte, ttl time.Duration) *AccessService {
	return &AccessService{secret: secret, ttl: ttl}
}

func (s *AccessService) CreateToken(room, identity string) (string, error) {
	return auth.GenerateRoomToken(s.secret, room, identity, s.ttl)
}
