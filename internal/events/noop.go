package events

import "context"

// NoopPublisher drops every event. NewCaseGraphServer falls back to it when
// no publisher is given, so handlers publish unconditionally.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, string, any) error { return nil }

func (NoopPublisher) Close() error { return nil }
