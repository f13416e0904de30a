package app

import (
	"context"
	"errors"

	"quizlet-service/internal/domain"
)

// Notifier pushes events to connected clients or downstream brokers. Delivery is best effort.
type Notifier interface {
	Publish(ctx context.Context, event domain.Event) error
}

// Notifiers fans an event out to every notifier and joins their errors.
type Notifiers []Notifier

func (n Notifiers) Publish(ctx context.Context, event domain.Event) error {
	var errs []error
	for _, notifier := range n {
		if err := notifier.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
