package transport

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Presence answers "how many members does a room have right now" from
// the transport's membership sets, for server-side room listings.
type Presence struct {
	client *redis.Client
}

func NewPresence(client *redis.Client) *Presence {
	return &Presence{client: client}
}

func (p *Presence) Count(ctx context.Context, room string) (int, error) {
	n, err := p.client.SCard(ctx, MembersKey(room)).Result()
	if err != nil {
		return 0, fmt.Errorf("count members of room %q: %w", room, err)
	}
	return int(n), nil
}

// Members returns a room's current member identities.
func (p *Presence) Members(ctx context.Context, room string) ([]string, error) {
	members, err := p.client.SMembers(ctx, MembersKey(room)).Result()
	if err != nil {
		return nil, fmt.Errorf("list members of room %q: %w", room, err)
	}
	return members, nil
}
