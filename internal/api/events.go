package api

import (
	"net/http"
	"time"

	"study_garden/internal/middleware"
	"study_garden/internal/model"
	"study_garden/pkg/auth"
	"study_garden/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type EventSubscriber interface {
	Subscribe(userID int64) (<-chan model.RewardEvent, func())
}

type Message struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

type eventRoutes struct {
	hub EventSubscriber
	a   *auth.TelegramAuth
}

func NewEventRoutes(handler *gin.RouterGroup, hub EventSubscriber, a *auth.TelegramAuth) {
	r := &eventRoutes{hub: hub, a: a}
	h := handler.Group("/events")
	h.Use(a.TelegramAuthMiddleware(), middleware.RequireUser())
	{
		h.GET("/ws", r.handleWebSocket)
	}
}

// handleWebSocket streams the user's reward events until either side closes.
func (r *eventRoutes) handleWebSocket(c *gin.Context) {
	log := logger.Logger()
	userID := middleware.UserID(c)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	events, cancel := r.hub.Subscribe(userID)
	defer cancel()

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		conn.SetReadLimit(512)
		conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					log.Info("websocket unexpected close", zap.Int64("user_id", userID), zap.Error(err))
				}
				return
			}
		}
	}()

	if err := writeMessage(conn, Message{Type: "subscribed", Payload: gin.H{"user_id": userID}}); err != nil {
		log.Error("failed to send subscription ack", zap.Error(err))
		return
	}

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			if err := writeMessage(conn, Message{Type: string(event.Type), Payload: event}); err != nil {
				log.Error("failed to write reward event",
					zap.Int64("user_id", userID),
					zap.Error(err))
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-closed:
			return
		case <-c.Request.Context().Done():
			return
		}
	}
}

func writeMessage(conn *websocket.Conn, m Message) error {
	data, err := json.Marshal(m)
	if err != nil {
		return err
	}
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteMessage(websocket.TextMessage, data)
}
