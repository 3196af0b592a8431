package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/lusodesk/helpdesk-backend/internal/core/domain"
	"github.com/lusodesk/helpdesk-backend/internal/core/ports"
)

// Bridge relays event envelopes between server instances over a Redis
// pub/sub channel. Every instance publishes its fan-outs and subscribes
// to the same channel; envelopes carry their origin so an instance can
// ignore its own messages. Losing Redis degrades to single-instance
// behavior: local delivery keeps working and remote clients recover
// through the durable store on their next fetch.
type Bridge struct {
	client   *goredis.Client
	channel  string
	registry ports.SessionRegistry
	logger   *slog.Logger
}

var _ ports.EventBridge = (*Bridge)(nil)

// NewBridge creates a bridge on the given pub/sub channel.
func NewBridge(client *goredis.Client, channel string, registry ports.SessionRegistry, logger *slog.Logger) *Bridge {
	return &Bridge{
		client:   client,
		channel:  channel,
		registry: registry,
		logger:   logger.With("component", "event_bridge"),
	}
}

// Publish sends an envelope to every subscribed instance.
func (b *Bridge) Publish(ctx context.Context, envelope domain.EventEnvelope) error {
	payload, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}
	if err := b.client.Publish(ctx, b.channel, payload).Err(); err != nil {
		return fmt.Errorf("publish envelope: %w", err)
	}
	return nil
}

// wireEnvelope keeps the payload raw so relayed events reach clients
// byte-identical to locally delivered ones.
type wireEnvelope struct {
	Origin       string          `json:"origin"`
	Type         domain.EventType `json:"type"`
	RecipientIDs []uuid.UUID     `json:"recipientIds"`
	Payload      json.RawMessage `json:"payload"`
}

// Run subscribes to the channel and delivers relayed envelopes to local
// sessions until the context is canceled. Envelopes published by
// localOrigin are skipped; their recipients were already served.
func (b *Bridge) Run(ctx context.Context, localOrigin string) {
	pubsub := b.client.Subscribe(ctx, b.channel)
	defer func() { _ = pubsub.Close() }()

	b.logger.Info("event bridge subscribed", "channel", b.channel)

	messages := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-messages:
			if !ok {
				return
			}
			b.handle(msg.Payload, localOrigin)
		}
	}
}

func (b *Bridge) handle(raw string, localOrigin string) {
	var envelope wireEnvelope
	if err := json.Unmarshal([]byte(raw), &envelope); err != nil {
		b.logger.Warn("dropping malformed envelope", "error", err)
		return
	}

	if envelope.Origin == localOrigin {
		return
	}

	event := domain.Event{Type: envelope.Type, Payload: envelope.Payload}
	for _, recipientID := range envelope.RecipientIDs {
		for _, session := range b.registry.SessionsFor(recipientID) {
			if err := session.Enqueue(event); err != nil {
				b.logger.Debug("relayed push to session failed",
					"user_id", recipientID,
					"event_type", envelope.Type,
					"error", err,
				)
			}
		}
	}
}
