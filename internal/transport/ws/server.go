package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/relay-chat/chat-service/internal/domain"
	"github.com/relay-chat/chat-service/internal/hub"

	"github.com/gorilla/websocket"
)

// ChatSvc is what the gateway needs from the broadcast engine.
type ChatSvc interface {
	Join(c hub.Conn, room string) string
	Publish(ctx context.Context, sender, text, room string) (*domain.Message, error)
	Disconnect(c hub.Conn)
}

type Server struct {
	upgrader websocket.Upgrader
	chatSvc  ChatSvc

	pingEvery time.Duration
}

func NewServer(chat ChatSvc) *Server {
	return &Server{
		chatSvc: chat,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		pingEvery: 15 * time.Second,
	}
}

// WS endpoint: GET /ws
func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("ws upgrade failed", "err", err)
		return
	}

	c := newWsConn(conn)
	go s.writeLoop(c)
	s.readLoop(r.Context(), c)

	s.chatSvc.Disconnect(c)
	if err := c.Close(); err != nil {
		slog.Debug("ws close failed", "err", err)
	}
}

func (s *Server) readLoop(ctx context.Context, c *wsConn) {
	defer func() { _ = c.Close() }()

	c.conn.SetReadLimit(1 << 16)
	_ = c.conn.SetReadDeadline(time.Now().Add(2 * s.pingEvery))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(2 * s.pingEvery))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			break
		}
		var ev hub.Event
		if err := json.Unmarshal(data, &ev); err != nil {
			continue
		}

		switch ev.Type {
		case hub.TypeJoin:
			var p hub.JoinPayload
			if decode(ev.Payload, &p) == nil {
				s.chatSvc.Join(c, p.Room)
			}

		case hub.TypeChat:
			var p hub.ChatPayload
			if decode(ev.Payload, &p) != nil {
				continue
			}
			// Обрыв соединения не отменяет уже принятый append.
			pubCtx := context.WithoutCancel(ctx)
			if _, err := s.chatSvc.Publish(pubCtx, p.Sender, p.Text, p.Room); err != nil {
				// Ошибка только отправителю; остальные её не видят.
				slog.Warn("ws publish failed", "err", err)
				_ = c.Send(hub.Event{
					Type:    hub.TypeError,
					Payload: hub.ErrorPayload{Message: "Message failed."},
				})
			}

		default:
			// ignore
		}
	}
}

func (s *Server) writeLoop(c *wsConn) {
	ticker := time.NewTicker(s.pingEvery)
	defer ticker.Stop()

	for {
		select {
		case ev := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
			if err := c.conn.WriteJSON(ev); err != nil {
				_ = c.Close()
				return
			}
		case <-ticker.C:
			_ = c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second))
		case <-c.closed:
			return
		}
	}
}

func decode(payload interface{}, dst interface{}) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	return json.Unmarshal(b, dst)
}
