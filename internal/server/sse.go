package server

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

const (
	// sseReplaySize is how many recent events are kept for Last-Event-ID replay.
	sseReplaySize = 512

	// sseKeepaliveInterval is how often an idle stream gets a comment line.
	sseKeepaliveInterval = 15 * time.Second

	// sseClientBuffer is the per-client queue length; a full queue drops events.
	sseClientBuffer = 64
)

// sseEvent is one published event as sent on the stream.
type sseEvent struct {
	ID     uint64
	Topic  string
	CaseID string
	Data   []byte
}

// eventRing is a fixed-size buffer of the most recent events.
type eventRing struct {
	mu   sync.RWMutex
	buf  [sseReplaySize]sseEvent
	next int
	size int
}

func (r *eventRing) push(evt sseEvent) {
	r.mu.Lock()
	r.buf[r.next] = evt
	r.next = (r.next + 1) % sseReplaySize
	if r.size < sseReplaySize {
		r.size++
	}
	r.mu.Unlock()
}

// since returns buffered events newer than lastID, oldest first.
func (r *eventRing) since(lastID uint64) []sseEvent {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []sseEvent
	start := (r.next - r.size + sseReplaySize) % sseReplaySize
	for i := 0; i < r.size; i++ {
		evt := r.buf[(start+i)%sseReplaySize]
		if evt.ID > lastID {
			out = append(out, evt)
		}
	}
	return out
}

// sseFilter selects the events a client receives. Zero values match all.
type sseFilter struct {
	topics []string
	caseID string
}

func (f sseFilter) matches(evt sseEvent) bool {
	if f.caseID != "" && evt.CaseID != f.caseID {
		return false
	}
	if len(f.topics) == 0 {
		return true
	}
	for _, pattern := range f.topics {
		if matchTopicPattern(pattern, evt.Topic) {
			return true
		}
	}
	return false
}

// sseHub fans out published events to connected SSE clients.
type sseHub struct {
	mu      sync.RWMutex
	clients map[*sseClient]struct{}
	lastID  atomic.Uint64
	ring    eventRing
}

type sseClient struct {
	filter sseFilter
	ch     chan sseEvent
}

func newSSEHub() *sseHub {
	return &sseHub{clients: make(map[*sseClient]struct{})}
}

// broadcast records an event and queues it for every matching client.
func (h *sseHub) broadcast(topic, caseID string, payload []byte) {
	evt := sseEvent{
		ID:     h.lastID.Add(1),
		Topic:  topic,
		CaseID: caseID,
		Data:   payload,
	}
	h.ring.push(evt)

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		if !c.filter.matches(evt) {
			continue
		}
		select {
		case c.ch <- evt:
		default:
		}
	}
}

func (h *sseHub) subscribe(f sseFilter) *sseClient {
	c := &sseClient{filter: f, ch: make(chan sseEvent, sseClientBuffer)}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	return c
}

func (h *sseHub) unsubscribe(c *sseClient) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
}

func (h *sseHub) clientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// matchTopicPattern matches a dot-separated topic against a NATS-style
// pattern: "*" matches one segment, a trailing ">" one or more.
func matchTopicPattern(pattern, topic string) bool {
	if pattern == topic {
		return true
	}
	patParts := strings.Split(pattern, ".")
	topParts := strings.Split(topic, ".")
	for i, pp := range patParts {
		if pp == ">" {
			return i < len(topParts)
		}
		if i >= len(topParts) {
			return false
		}
		if pp != "*" && pp != topParts[i] {
			return false
		}
	}
	return len(patParts) == len(topParts)
}

// handleEventStream handles GET /v1/events/stream.
// Query: topics=<pattern,...> and case=<id> narrow the stream.
func (s *CaseGraphServer) handleEventStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	q := r.URL.Query()
	f := sseFilter{caseID: q.Get("case")}
	for _, t := range strings.Split(q.Get("topics"), ",") {
		if t = strings.TrimSpace(t); t != "" {
			f.topics = append(f.topics, t)
		}
	}

	client := s.sseHub.subscribe(f)
	defer s.sseHub.unsubscribe(client)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	if lastID, err := strconv.ParseUint(r.Header.Get("Last-Event-ID"), 10, 64); err == nil {
		for _, evt := range s.sseHub.ring.since(lastID) {
			if f.matches(evt) {
				writeSSEEvent(w, evt)
			}
		}
		flusher.Flush()
	}

	keepalive := time.NewTicker(sseKeepaliveInterval)
	defer keepalive.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case evt := <-client.ch:
			writeSSEEvent(w, evt)
			flusher.Flush()
		case <-keepalive.C:
			fmt.Fprint(w, ":keepalive\n\n")
			flusher.Flush()
		}
	}
}

func writeSSEEvent(w http.ResponseWriter, evt sseEvent) {
	fmt.Fprintf(w, "id:%d\nevent:%s\ndata:%s\n\n", evt.ID, evt.Topic, evt.Data)
}

// broadcastEvent encodes an event and hands it to the SSE hub.
func (s *CaseGraphServer) broadcastEvent(topic string, event any) {
	payload, err := json.Marshal(event)
	if err != nil {
		slog.Warn("failed to marshal event for SSE broadcast", "topic", topic, "err", err)
		return
	}
	var scope struct {
		CaseID string `json:"case_id"`
	}
	_ = json.Unmarshal(payload, &scope)
	s.sseHub.broadcast(topic, scope.CaseID, payload)
}
