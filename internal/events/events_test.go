package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/alfredjeanlab/casegraph/internal/model"
	"github.com/google/go-cmp/cmp"
	"github.com/nats-io/nats.go"
)

func TestNoopPublisher(t *testing.T) {
	pub := &NoopPublisher{}
	if err := pub.Publish(context.Background(), TopicSelectionCleared, SelectionCleared{}); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if err := pub.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestPublishersImplementPublisher(t *testing.T) {
	var _ Publisher = (*NoopPublisher)(nil)
	var _ Publisher = (*NATSPublisher)(nil)
	var _ Publisher = Fanout(nil)
	var _ Publisher = PublisherFunc(nil)
}

func TestNATSPublisher_Publish(t *testing.T) {
	url := startTestNATS(t)

	pub, err := NewNATSPublisher(url)
	if err != nil {
		t.Fatalf("creating publisher: %v", err)
	}
	defer pub.Close()

	nc, err := nats.Connect(url)
	if err != nil {
		t.Fatalf("connecting subscriber: %v", err)
	}
	defer nc.Close()

	ch := make(chan *nats.Msg, 1)
	sub, err := nc.ChanSubscribe(TopicOverlayPositionChanged, ch)
	if err != nil {
		t.Fatalf("subscribing: %v", err)
	}
	defer sub.Unsubscribe() //nolint:errcheck
	nc.Flush()

	want := OverlayPositionChanged{
		CaseID:   "case-1",
		ViewID:   "view-abc",
		Position: model.OverlayPosition{Left: 444, Top: 222},
	}
	if err := pub.Publish(context.Background(), TopicOverlayPositionChanged, want); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if err := pub.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	select {
	case msg := <-ch:
		var got OverlayPositionChanged
		if err := json.Unmarshal(msg.Data, &got); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("payload mismatch (-want +got):\n%s", diff)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for published message")
	}
}

func TestNATSPublisher_PublishCancelledContext(t *testing.T) {
	url := startTestNATS(t)

	pub, err := NewNATSPublisher(url)
	if err != nil {
		t.Fatalf("creating publisher: %v", err)
	}
	defer pub.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = pub.Publish(ctx, TopicViewOpened, ViewOpened{ViewID: "view-1"})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Publish error = %v, want context.Canceled", err)
	}
}

func TestNATSPublisher_PublishAllTopics(t *testing.T) {
	url := startTestNATS(t)

	pub, err := NewNATSPublisher(url)
	if err != nil {
		t.Fatalf("creating publisher: %v", err)
	}
	defer pub.Close()

	nc, err := nats.Connect(url)
	if err != nil {
		t.Fatalf("connecting subscriber: %v", err)
	}
	defer nc.Close()

	ch := make(chan *nats.Msg, 8)
	sub, err := nc.ChanSubscribe(TopicAll, ch)
	if err != nil {
		t.Fatalf("subscribing: %v", err)
	}
	defer sub.Unsubscribe() //nolint:errcheck
	nc.Flush()

	cases := []struct {
		topic string
		event any
	}{
		{TopicOverlayPositionChanged, OverlayPositionChanged{CaseID: "case-1"}},
		{TopicOverlayPositionCleared, OverlayPositionCleared{CaseID: "case-1"}},
		{TopicSelectionChanged, SelectionChanged{ViewID: "v", NodeID: "meeting:m1", NodeType: "meeting"}},
		{TopicSelectionCleared, SelectionCleared{ViewID: "v"}},
		{TopicViewOpened, ViewOpened{ViewID: "v", CaseID: "case-1"}},
		{TopicViewClosed, ViewClosed{ViewID: "v", Reason: "expired"}},
		{TopicViewTransformed, ViewTransformed{ViewID: "v", Transform: "translate(0,0) scale(1)", Zoom: 1}},
	}
	for _, tc := range cases {
		if err := pub.Publish(context.Background(), tc.topic, tc.event); err != nil {
			t.Fatalf("Publish(%s): %v", tc.topic, err)
		}
	}
	pub.Flush()

	for i, tc := range cases {
		select {
		case msg := <-ch:
			if msg.Subject != tc.topic {
				t.Errorf("message %d subject = %q, want %q", i, msg.Subject, tc.topic)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for message %d", i)
		}
	}
}

func TestNATSPublisher_Close(t *testing.T) {
	url := startTestNATS(t)

	pub, err := NewNATSPublisher(url)
	if err != nil {
		t.Fatalf("creating publisher: %v", err)
	}
	if err := pub.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if err := pub.Publish(context.Background(), TopicViewOpened, ViewOpened{}); err == nil {
		t.Error("expected error publishing after close")
	}
}

type recordingPublisher struct {
	topics []string
	err    error
	closed bool
}

func (r *recordingPublisher) Publish(_ context.Context, topic string, _ any) error {
	r.topics = append(r.topics, topic)
	return r.err
}

func (r *recordingPublisher) Close() error {
	r.closed = true
	return r.err
}

func TestFanout(t *testing.T) {
	boom := errors.New("boom")
	failing := &recordingPublisher{err: boom}
	ok := &recordingPublisher{}
	f := Fanout{failing, ok}

	err := f.Publish(context.Background(), TopicSelectionCleared, SelectionCleared{})
	if !errors.Is(err, boom) {
		t.Fatalf("Publish error = %v, want boom", err)
	}
	if diff := cmp.Diff([]string{TopicSelectionCleared}, ok.topics); diff != "" {
		t.Errorf("second publisher topics (-want +got):\n%s", diff)
	}

	if err := f.Close(); !errors.Is(err, boom) {
		t.Fatalf("Close error = %v, want boom", err)
	}
	if !failing.closed || !ok.closed {
		t.Error("expected every publisher to be closed")
	}
}

func TestPublisherFunc(t *testing.T) {
	var got string
	p := PublisherFunc(func(_ context.Context, topic string, _ any) error {
		got = topic
		return nil
	})
	if err := p.Publish(context.Background(), TopicViewClosed, ViewClosed{}); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if got != TopicViewClosed {
		t.Errorf("topic = %q, want %q", got, TopicViewClosed)
	}
}

func TestMessageDecode(t *testing.T) {
	msg := Message{Topic: TopicSelectionChanged, Data: []byte(`{"view_id":"v1","node_id":"meeting:m1","node_type":"meeting","anchor_x":10,"anchor_y":20}`)}
	var got SelectionChanged
	if err := msg.Decode(&got); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	want := SelectionChanged{ViewID: "v1", NodeID: "meeting:m1", NodeType: "meeting", AnchorX: 10, AnchorY: 20}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Decode mismatch (-want +got):\n%s", diff)
	}

	if err := (Message{Topic: "x", Data: []byte("{")}).Decode(&got); err == nil {
		t.Error("expected error decoding malformed payload")
	}
}
