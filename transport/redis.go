package transport

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"parlor/auth"
	"parlor/errors"
)

const memberOpTimeout = 5 * time.Second

// RedisDialer joins rooms over Redis pub/sub. Each room has one bus
// channel for frames and one set for membership. The grant inside the
// access token is verified locally against the shared signing secret
// before anything touches Redis.
type RedisDialer struct {
	client *redis.Client
	secret []byte
	log    *slog.Logger
}

// NewRedisDialer connects to Redis and verifies connectivity.
func NewRedisDialer(redisURL string, secret []byte, log *slog.Logger) (*RedisDialer, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), memberOpTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	return &RedisDialer{client: client, secret: secret, log: log}, nil
}

// NewRedisDialerWithClient wraps an existing client, owned by the caller.
func NewRedisDialerWithClient(client *redis.Client, secret []byte, log *slog.Logger) *RedisDialer {
	return &RedisDialer{client: client, secret: secret, log: log}
}

// Dial validates the token grant, subscribes to the room bus, registers
// membership and announces the join. Events start flowing before Dial
// returns; the initial roster callback is triggered by our own join
// frame arriving on the bus.
func (d *RedisDialer) Dial(ctx context.Context, room, token string, events Events) (Conn, error) {
	claims, err := auth.VerifyRoomToken(token, d.secret)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrTokenRejected, err)
	}
	if claims.Room != room || !claims.CanSubscribe {
		return nil, fmt.Errorf("%w: grant does not cover room %q", errors.ErrTokenRejected, room)
	}

	pubsub := d.client.Subscribe(ctx, BusKey(room))
	// Force the SUBSCRIBE round-trip so no frame is missed after Dial.
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("subscribe room %q: %w", room, err)
	}

	c := &redisConn{
		client:   d.client,
		log:      d.log,
		room:     room,
		identity: claims.Identity,
		pubsub:   pubsub,
	}

	if err := d.client.SAdd(ctx, MembersKey(room), claims.Identity).Err(); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("register member: %w", err)
	}
	if err := c.publishFrame(ctx, Frame{Kind: FrameJoin, Sender: claims.Identity}); err != nil {
		_ = pubsub.Close()
		return nil, err
	}

	go c.loop(events)
	return c, nil
}

type redisConn struct {
	client   *redis.Client
	log      *slog.Logger
	room     string
	identity string
	pubsub   *redis.PubSub
	closed   sync.Once
}

func (c *redisConn) Publish(ctx context.Context, payload []byte, reliable bool) error {
	// The bus has a single delivery mode; the reliable flag is accepted
	// for contract compatibility and does not change behavior here.
	_ = reliable
	return c.publishFrame(ctx, Frame{Kind: FrameData, Sender: c.identity, Payload: payload})
}

func (c *redisConn) publishFrame(ctx context.Context, f Frame) error {
	b, err := EncodeFrame(f)
	if err != nil {
		return err
	}
	if err := c.client.Publish(ctx, BusKey(c.room), b).Err(); err != nil {
		return fmt.Errorf("publish to room %q: %w", c.room, err)
	}
	return nil
}

func (c *redisConn) Members(ctx context.Context) ([]string, error) {
	members, err := c.client.SMembers(ctx, MembersKey(c.room)).Result()
	if err != nil {
		return nil, fmt.Errorf("list members of room %q: %w", c.room, err)
	}
	return members, nil
}

// loop dispatches bus frames to the registered handlers from a single
// goroutine, so handlers never run concurrently within one connection.
func (c *redisConn) loop(events Events) {
	for msg := range c.pubsub.Channel() {
		frame, err := DecodeFrame([]byte(msg.Payload))
		if err != nil {
			c.log.Debug("dropping malformed bus frame", "room", c.room, "error", err)
			continue
		}
		switch frame.Kind {
		case FrameData:
			// Never deliver a sender's own broadcast back: the session
			// already echoed it optimistically.
			if frame.Sender == c.identity {
				continue
			}
			if events.Data != nil {
				events.Data(frame.Sender, frame.Payload)
			}
		case FrameJoin, FrameLeave:
			if events.Roster == nil {
				continue
			}
			ctx, cancel := context.WithTimeout(context.Background(), memberOpTimeout)
			members, err := c.Members(ctx)
			cancel()
			if err != nil {
				c.log.Warn("roster refresh failed", "room", c.room, "error", err)
				continue
			}
			events.Roster(members)
		default:
			c.log.Debug("ignoring unknown frame kind", "kind", frame.Kind)
		}
	}
}

// Close deregisters membership, announces the leave and tears down the
// subscription. Safe to call any number of times.
func (c *redisConn) Close() error {
	var err error
	c.closed.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), memberOpTimeout)
		defer cancel()
		if remErr := c.client.SRem(ctx, MembersKey(c.room), c.identity).Err(); remErr != nil {
			err = fmt.Errorf("deregister member: %w", remErr)
		}
		if pubErr := c.publishFrame(ctx, Frame{Kind: FrameLeave, Sender: c.identity}); pubErr != nil && err == nil {
			err = pubErr
		}
		if closeErr := c.pubsub.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	})
	return err
}
