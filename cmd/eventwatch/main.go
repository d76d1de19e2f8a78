// Command eventwatch prints a user's reward events as they are published.
package main

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"syscall"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"
)

type message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type rewardEvent struct {
	Name   string `json:"name"`
	Rarity string `json:"rarity"`
	Refund int    `json:"refund"`
}

func main() {
	var (
		server   string
		initData string
	)

	cmd := &cobra.Command{
		Use:   "eventwatch",
		Short: "Stream reward events from a study garden server",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return watch(ctx, server, initData)
		},
	}
	cmd.Flags().StringVar(&server, "server", "ws://localhost:8080", "server base url")
	cmd.Flags().StringVar(&initData, "init-data", "", "Telegram init data used for auth")
	cmd.MarkFlagRequired("init-data")

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func watch(ctx context.Context, server, initData string) error {
	u, err := url.Parse(server)
	if err != nil {
		return err
	}
	u.Path = "/api/v1/events/ws"
	u.RawQuery = url.Values{"auth": {"Telegram " + initData}}.Encode()

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", u.Redacted(), err)
	}
	defer conn.Close()

	go func() {
		<-ctx.Done()
		conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		conn.Close()
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				return nil
			}
			return err
		}

		var m message
		if err := json.Unmarshal(data, &m); err != nil {
			fmt.Fprintf(os.Stderr, "bad frame: %v\n", err)
			continue
		}

		var e rewardEvent
		json.Unmarshal(m.Payload, &e)

		switch m.Type {
		case "subscribed":
			fmt.Println("listening for rewards")
		case "free_award":
			fmt.Printf("free award: %s (%s)\n", e.Name, e.Rarity)
		case "roll_new":
			fmt.Printf("new from roll: %s (%s)\n", e.Name, e.Rarity)
		case "roll_duplicate":
			fmt.Printf("duplicate: %s, refunded %d\n", e.Name, e.Refund)
		default:
			fmt.Println(string(data))
		}
	}
}
