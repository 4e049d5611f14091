package runtime

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"parlor/assist"
	"parlor/domain"
	"parlor/moderation"
	"parlor/repositories"
	"parlor/transport"
)

// Recorder taps every room bus and persists chat frames so history
// exists for late joiners. Broadcast text is stored after moderation;
// non-chat envelopes and membership frames are ignored.
type Recorder struct {
	client    *redis.Client
	repo      repositories.IMessageRepository
	moderator *moderation.Moderator
	log       *slog.Logger
}

func NewRecorder(client *redis.Client, repo repositories.IMessageRepository,
	moderator *moderation.Moderator, log *slog.Logger) *Recorder {
	return &Recorder{client: client, repo: repo, moderator: moderator, log: log}
}

func (r *Recorder) Run(ctx context.Context) error {
	pubsub := r.client.PSubscribe(ctx, transport.BusPattern)
	defer func() { _ = pubsub.Close() }()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			r.log.Debug("Stopping recorder")
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			r.record(msg.Channel, []byte(msg.Payload))
		}
	}
}

func (r *Recorder) record(channel string, raw []byte) {
	room, ok := transport.RoomFromBus(channel)
	if !ok {
		return
	}
	frame, err := transport.DecodeFrame(raw)
	if err != nil {
		r.log.Debug("dropping malformed frame", "channel", channel, "error", err)
		return
	}
	if frame.Kind != transport.FrameData {
		return
	}
	env, err := domain.DecodeEnvelope(frame.Payload)
	if err != nil {
		r.log.Debug("dropping malformed envelope", "room", room, "error", err)
		return
	}
	if env.Type != domain.EnvelopeChat {
		return
	}

	sender := frame.Sender
	if env.IsAI {
		sender = assist.Identity
	}

	message := repositories.DiskMessage{
		ID:          uuid.New(),
		Room:        room,
		Sender:      sender,
		Text:        r.moderator.Censor(env.Message),
		IsAssistant: env.IsAI,
		At:          time.Now().UTC(),
	}
	if err := r.repo.StoreMessage(message); err != nil {
		r.log.Warn("history store failed", "room", room, "error", err)
	}
}
