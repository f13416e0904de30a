package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"quizlet-service/internal/domain"
)

var errNilClient = errors.New("redis client not configured")

// Sink receives encoded events, typically the local websocket hub.
type Sink interface {
	Broadcast(msg []byte)
}

// Relay publishes events on a Redis channel and forwards every message received on that
// channel to the local sink, so clients connected to any instance see every event.
// Messages published while no instance is subscribed are lost.
type Relay struct {
	client  *redis.Client
	channel string
	sink    Sink
	log     logrus.FieldLogger
}

func NewRelay(client *redis.Client, channel string, sink Sink, log logrus.FieldLogger) *Relay {
	return &Relay{
		client:  client,
		channel: channel,
		sink:    sink,
		log:     log.WithField("channel", channel),
	}
}

func (r *Relay) Publish(ctx context.Context, event domain.Event) error {
	if r.client == nil {
		return errNilClient
	}
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	if err := r.client.Publish(ctx, r.channel, data).Err(); err != nil {
		return fmt.Errorf("publish event: %w", err)
	}
	return nil
}

// Run forwards channel messages to the sink until ctx is cancelled.
func (r *Relay) Run(ctx context.Context) error {
	sub := r.client.Subscribe(ctx, r.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe %s: %w", r.channel, err)
	}
	r.log.Info("relay subscribed")

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			r.sink.Broadcast([]byte(msg.Payload))
		}
	}
}
