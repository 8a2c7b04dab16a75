// Package events carries the domain events emitted after a payment settles.
package events

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/fastprodman/paygate/internal/infra/metrics"
	"github.com/google/uuid"
)

type Name string

const (
	UserCreditsUpdated Name = "user.credits_updated"
	PaymentCompleted   Name = "payment.completed"
)

type Event struct {
	Name       Name      `json:"name"`
	UserID     uint64    `json:"user_id"`
	PaymentID  uuid.UUID `json:"payment_id,omitzero"`
	OccurredAt time.Time `json:"occurred_at"`
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Multi fans an event out to every publisher and joins their errors.
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, e Event) error {
	var errs []error

	for _, p := range m {
		err := p.Publish(ctx, e)

		result := "ok"
		if err != nil {
			result = "error"
			errs = append(errs, err)
		}

		metrics.EventsPublished.WithLabelValues(string(e.Name), result).Inc()
	}

	return errors.Join(errs...)
}

// LogPublisher writes every event to the structured log.
type LogPublisher struct {
	Log *slog.Logger
}

func (p LogPublisher) Publish(ctx context.Context, e Event) error {
	attrs := []any{"event", string(e.Name), "user_id", e.UserID}
	if e.PaymentID != uuid.Nil {
		attrs = append(attrs, "payment_id", e.PaymentID.String())
	}

	p.Log.InfoContext(ctx, "domain event", attrs...)

	return nil
}
