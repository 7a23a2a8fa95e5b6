package hub

import (
	"sync"
)

// Conn is a live client connection capable of receiving events. The ws
// transport owns the concrete implementation.
type Conn interface {
	Send(e Event) error
	Close() error
}

// Hub tracks which live connections belong to which room. It is the only
// owner of membership state; construct one per process (or per test) and pass
// it by reference, never keep it as package-level state.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]map[Conn]struct{} // room -> set of connections
	conns map[Conn]string              // обратная ссылка conn -> room
}

func New() *Hub {
	return &Hub{
		rooms: make(map[string]map[Conn]struct{}),
		conns: make(map[Conn]string),
	}
}

// Join registers c as a member of room. A connection belongs to at most one
// room, so a previous membership is removed in the same critical section.
// Joining the same room twice is a no-op.
func (h *Hub) Join(c Conn, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if prev, ok := h.conns[c]; ok {
		if prev == room {
			return
		}
		h.removeLocked(c, prev)
	}

	rs, ok := h.rooms[room]
	if !ok {
		rs = make(map[Conn]struct{})
		h.rooms[room] = rs
	}
	rs[c] = struct{}{}
	h.conns[c] = room
}

// Leave removes c from whatever room it belongs to. Idempotent.
func (h *Hub) Leave(c Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if room, ok := h.conns[c]; ok {
		h.removeLocked(c, room)
	}
}

func (h *Hub) removeLocked(c Conn, room string) {
	if rs, ok := h.rooms[room]; ok {
		delete(rs, c)
		if len(rs) == 0 {
			delete(h.rooms, room)
		}
	}
	delete(h.conns, c)
}

// Members returns a snapshot of the current member set of room. The snapshot
// is safe to iterate while joins and leaves proceed concurrently.
func (h *Hub) Members(room string) []Conn {
	h.mu.RLock()
	defer h.mu.RUnlock()

	rs, ok := h.rooms[room]
	if !ok {
		return nil
	}
	out := make([]Conn, 0, len(rs))
	for c := range rs {
		out = append(out, c)
	}
	return out
}

// Room returns the room c currently belongs to, if any.
func (h *Hub) Room(c Conn) (string, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	room, ok := h.conns[c]
	return room, ok
}
