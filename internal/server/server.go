package server

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/alfredjeanlab/casegraph/internal/events"
	"github.com/alfredjeanlab/casegraph/internal/store"
	"github.com/alfredjeanlab/casegraph/internal/viewstate"
)

// DefaultLayoutCacheSize is used when the configured cache size is not positive.
const DefaultLayoutCacheSize = 256

// CaseGraphServer serves timeline graphs, layouts and view sessions over
// HTTP and gRPC.
type CaseGraphServer struct {
	store     store.Store
	publisher events.Publisher
	sseHub    *sseHub
	layouts   *layoutCache
	Views     *viewstate.Store

	now func() time.Time
}

// NewCaseGraphServer returns a server backed by the given store and publisher.
func NewCaseGraphServer(s store.Store, p events.Publisher, layoutCacheSize int) (*CaseGraphServer, error) {
	if layoutCacheSize <= 0 {
		layoutCacheSize = DefaultLayoutCacheSize
	}
	cache, err := newLayoutCache(layoutCacheSize)
	if err != nil {
		return nil, err
	}
	if p == nil {
		p = &events.NoopPublisher{}
	}
	return &CaseGraphServer{
		store:     s,
		publisher: p,
		sseHub:    newSSEHub(),
		layouts:   cache,
		Views:     viewstate.New(),
		now:       time.Now,
	}, nil
}

// StartViewReaper expires views idle for longer than idleTimeout and
// publishes a ViewClosed event for each. Call Stop to shut it down.
func (s *CaseGraphServer) StartViewReaper(idleTimeout time.Duration) {
	s.Views.StartReaper(&viewstate.ReaperConfig{
		IdleTimeout: idleTimeout,
		OnExpired: func(v viewstate.View) {
			s.publish(context.Background(), events.TopicViewClosed, events.ViewClosed{
				ViewID: v.ID,
				CaseID: v.CaseID,
				Reason: "expired",
			})
		},
	})
}

// Stop shuts down background work.
func (s *CaseGraphServer) Stop() {
	s.Views.Stop()
}

// publish sends an event to the bus and to SSE clients. Failures are logged
// and never fail the caller.
func (s *CaseGraphServer) publish(ctx context.Context, topic string, event any) {
	if err := s.publisher.Publish(ctx, topic, event); err != nil {
		slog.Warn("failed to publish event", "topic", topic, "err", err)
	}
	s.broadcastEvent(topic, event)
}

// inputError indicates invalid user input.
// Transport layers map this to 400 / InvalidArgument.
type inputError string

func (e inputError) Error() string { return string(e) }

// isNotFound reports whether err means the requested case, position or
// view does not exist.
func isNotFound(err error) bool {
	return errors.Is(err, store.ErrNotFound) || errors.Is(err, viewstate.ErrNotFound)
}
