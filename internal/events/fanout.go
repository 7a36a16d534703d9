package events

import (
	"context"
	"errors"
)

// Fanout publishes every event to each of its publishers in order. A failing
// publisher does not stop delivery to the rest; their errors are joined.
type Fanout []Publisher

func (f Fanout) Publish(ctx context.Context, topic string, event any) error {
	var errs []error
	for _, p := range f {
		if err := p.Publish(ctx, topic, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (f Fanout) Close() error {
	var errs []error
	for _, p := range f {
		if err := p.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// PublisherFunc adapts a function to the Publisher interface. Close is a no-op.
type PublisherFunc func(ctx context.Context, topic string, event any) error

func (fn PublisherFunc) Publish(ctx context.Context, topic string, event any) error {
	return fn(ctx, topic, event)
}

func (fn PublisherFunc) Close() error { return nil }
