package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/alfredjeanlab/casegraph/internal/client"
	"github.com/alfredjeanlab/casegraph/internal/events"
	"github.com/alfredjeanlab/casegraph/internal/ui"
	"github.com/nats-io/nats.go"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:     "watch",
	Short:   "Stream view and overlay events",
	GroupID: "views",
	Long: `Stream view and overlay events as they happen.

Events come from NATS when CASEGRAPH_NATS_URL is set or the active remote has
a NATS URL, otherwise from the server's event stream.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		caseID, _ := cmd.Flags().GetString("case")
		topics, _ := cmd.Flags().GetStringSlice("topics")

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		natsURL := os.Getenv("CASEGRAPH_NATS_URL")
		if natsURL == "" {
			natsURL = activeRemoteNATSURL()
		}
		if natsURL != "" {
			return watchNATS(ctx, natsURL, topics, caseID)
		}

		req := &client.StreamRequest{Topics: topics, CaseID: caseID}
		return cgClient.StreamEvents(ctx, req, func(ev client.Event) error {
			printEvent(os.Stdout, ev.Topic, ev.Data)
			return nil
		})
	},
}

// watchNATS prints events from NATS until ctx is done.
func watchNATS(ctx context.Context, natsURL string, topics []string, caseID string) error {
	sub, err := events.NewNATSSubscriber(natsURL,
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			slog.Warn("nats disconnected", "err", err)
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			slog.Info("nats reconnected", "url", c.ConnectedUrl())
		}),
	)
	if err != nil {
		return fmt.Errorf("connecting to NATS: %w", err)
	}
	defer sub.Close()

	if len(topics) == 0 {
		topics = []string{events.TopicAll}
	}

	merged := make(chan events.Message)
	for _, topic := range topics {
		ch, cancel, err := sub.Subscribe(topic)
		if err != nil {
			return fmt.Errorf("subscribing to %s: %w", topic, err)
		}
		defer cancel()
		go func() {
			for msg := range ch {
				select {
				case merged <- msg:
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg := <-merged:
			if caseID != "" && eventCaseID(msg.Data) != caseID {
				continue
			}
			printEvent(os.Stdout, msg.Topic, msg.Data)
		}
	}
}

// eventCaseID extracts the case id every casegraph payload carries.
func eventCaseID(data []byte) string {
	var p struct {
		CaseID string `json:"case_id"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		return ""
	}
	return p.CaseID
}

func printEvent(w io.Writer, topic string, data []byte) {
	if jsonOutput {
		line, err := json.Marshal(struct {
			Topic string          `json:"topic"`
			Data  json.RawMessage `json:"data"`
		}{topic, data})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error marshaling event: %v\n", err)
			return
		}
		fmt.Fprintln(w, string(line))
		return
	}
	fmt.Fprintf(w, "%s %s %s\n",
		ui.RenderMuted(time.Now().Format("15:04:05")),
		ui.RenderAccent(strings.TrimPrefix(topic, "casegraph.")),
		strings.TrimSpace(string(data)))
}

func init() {
	watchCmd.Flags().String("case", "", "only events for this case")
	watchCmd.Flags().StringSlice("topics", nil, "topics or NATS wildcards to watch (default all)")
}
