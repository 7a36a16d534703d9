package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestReadEvents(t *testing.T) {
	stream := ":keepalive\n\n" +
		"id:1\nevent:casegraph.view.opened\ndata:{\"view_id\":\"v1\"}\n\n" +
		"id: 2\nevent: casegraph.selection.cleared\ndata: {\"a\":1}\ndata: {\"b\":2}\n\n" +
		"id:3\nevent:casegraph.view.closed\n\n"

	var got []Event
	err := readEvents(strings.NewReader(stream), func(e Event) error {
		got = append(got, e)
		return nil
	})
	if err != nil {
		t.Fatalf("readEvents: %v", err)
	}
	want := []Event{
		{ID: "1", Topic: "casegraph.view.opened", Data: []byte(`{"view_id":"v1"}`)},
		{ID: "2", Topic: "casegraph.selection.cleared", Data: []byte("{\"a\":1}\n{\"b\":2}")},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("events mismatch (-want +got):\n%s", diff)
	}
}

func TestReadEvents_CallbackError(t *testing.T) {
	stop := errors.New("stop")
	stream := "id:1\nevent:a\ndata:{}\n\nid:2\nevent:b\ndata:{}\n\n"
	calls := 0
	err := readEvents(strings.NewReader(stream), func(Event) error {
		calls++
		return stop
	})
	if !errors.Is(err, stop) || calls != 1 {
		t.Fatalf("err = %v, calls = %d", err, calls)
	}
}

func TestHTTPClient_StreamEvents(t *testing.T) {
	var query, lastID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.RawQuery
		lastID = r.Header.Get("Last-Event-ID")
		w.Header().Set("Content-Type", "text/event-stream")
		for i := 1; i <= 2; i++ {
			fmt.Fprintf(w, "id:%d\nevent:casegraph.view.opened\ndata:{\"n\":%d}\n\n", i, i)
		}
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "")
	var got []string
	err := c.StreamEvents(context.Background(), &StreamRequest{
		Topics:      []string{"casegraph.view.*", "casegraph.overlay.*"},
		CaseID:      "case-1",
		LastEventID: "7",
	}, func(e Event) error {
		got = append(got, e.ID+"="+string(e.Data))
		return nil
	})
	if err != nil {
		t.Fatalf("StreamEvents: %v", err)
	}
	if diff := cmp.Diff([]string{`1={"n":1}`, `2={"n":2}`}, got); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}
	if query != "case=case-1&topics=casegraph.view.%2A%2Ccasegraph.overlay.%2A" {
		t.Errorf("query = %q", query)
	}
	if lastID != "7" {
		t.Errorf("Last-Event-ID = %q", lastID)
	}
}

func TestHTTPClient_StreamEvents_Unauthorized(t *testing.T) {
	h := &testHandler{statusCode: http.StatusUnauthorized, responseBody: `{"error":"missing authorization header"}`}
	c, srv := newTestClient(h)
	defer srv.Close()

	err := c.StreamEvents(context.Background(), nil, func(Event) error { return nil })
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusUnauthorized {
		t.Fatalf("err = %v, want 401 APIError", err)
	}
}

func TestHTTPClient_StreamEvents_Cancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.(http.Flusher).Flush()
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	c := NewHTTPClient(srv.URL, "")
	done := make(chan error, 1)
	go func() {
		done <- c.StreamEvents(ctx, nil, func(Event) error { return nil })
	}()
	cancel()
	if err := <-done; err != nil {
		t.Fatalf("cancelled stream returned %v", err)
	}
}
