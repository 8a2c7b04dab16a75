// Package redis publishes domain events on a Redis pub/sub channel.
package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/fastprodman/paygate/internal/events"
	goredis "github.com/redis/go-redis/v9"
)

type Publisher struct {
	client  goredis.UniversalClient
	channel string
}

func New(client goredis.UniversalClient, channel string) *Publisher {
	return &Publisher{client: client, channel: channel}
}

func Encode(e events.Event) ([]byte, error) {
	payload, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}

	return payload, nil
}

func (p *Publisher) Publish(ctx context.Context, e events.Event) error {
	payload, err := Encode(e)
	if err != nil {
		return err
	}

	err = p.client.Publish(ctx, p.channel, payload).Err()
	if err != nil {
		return fmt.Errorf("redis publish %s: %w", e.Name, err)
	}

	return nil
}
