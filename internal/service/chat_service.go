package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/relay-chat/chat-service/internal/domain"
	"github.com/relay-chat/chat-service/internal/hub"
)

// MessageStore is the durable, ordered per-room append log. Satisfied by the
// postgres and badgerdb repositories.
type MessageStore interface {
	Append(ctx context.Context, sender, text, room string) (*domain.Message, error)
	Recent(ctx context.Context, room string, limit int) ([]domain.Message, error)
	Close() error
}

// ChatService sequences membership changes and message fan-out. It is the
// only component that talks to both the store and the hub.
type ChatService struct {
	store MessageStore
	hub   *hub.Hub

	mu    sync.Mutex
	rooms map[string]*sync.Mutex // room -> ordering lock
}

func NewChatService(store MessageStore, h *hub.Hub) *ChatService {
	return &ChatService{
		store: store,
		hub:   h,
		rooms: make(map[string]*sync.Mutex),
	}
}

// Join moves c into room (leaving a previous room, if any) and confirms with
// a system notice to the joining connection only. Peers are not notified.
// Joining never fails; a missing room name falls back to the default.
func (s *ChatService) Join(c hub.Conn, room string) string {
	room = domain.NormalizeRoom(room)
	s.hub.Join(c, room)

	notice := hub.Event{
		Type:    hub.TypeSystem,
		Payload: hub.SystemPayload{Text: "Joined room: " + room},
	}
	if err := c.Send(notice); err != nil {
		slog.Debug("join notice dropped", "room", room, "err", err)
	}
	return room
}

// Disconnect removes c from its room. No departure notice is emitted. A
// publish already accepted for persistence is unaffected.
func (s *ChatService) Disconnect(c hub.Conn) {
	s.hub.Leave(c)
}

// Publish appends the message durably and fans it out to the room's current
// members. The room ordering lock is held across append and enqueue so every
// member observes messages in durable append order; actual socket writes
// drain from each member's own buffer and never delay the others.
//
// A validation or storage failure persists nothing and broadcasts nothing;
// the error is returned for the gateway to surface to the sender only.
func (s *ChatService) Publish(ctx context.Context, sender, text, room string) (*domain.Message, error) {
	lk := s.roomLock(domain.NormalizeRoom(room))
	lk.Lock()
	defer lk.Unlock()

	msg, err := s.store.Append(ctx, sender, text, room)
	if err != nil {
		return nil, fmt.Errorf("publish: %w", err)
	}

	ev := hub.Event{
		Type: hub.TypeChat,
		Payload: hub.ChatPayload{
			ID:        msg.ID,
			Sender:    msg.Sender,
			Text:      msg.Text,
			Room:      msg.Room,
			CreatedAt: msg.CreatedAt,
		},
	}

	for _, c := range s.hub.Members(msg.Room) {
		// best-effort: медленный получатель теряет только свою копию
		if err := c.Send(ev); err != nil {
			slog.Debug("fanout delivery dropped", "room", msg.Room, "id", msg.ID, "err", err)
		}
	}

	return msg, nil
}

func (s *ChatService) roomLock(room string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	lk, ok := s.rooms[room]
	if !ok {
		lk = &sync.Mutex{}
		s.rooms[room] = lk
	}
	return lk
}
