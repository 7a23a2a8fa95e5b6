package domain

import "time"

const (
	// DefaultRoom is used whenever an incoming event omits the room field.
	DefaultRoom = "general"

	MaxSenderLen = 40
	MaxTextLen   = 500

	DefaultHistoryLimit = 50
	MaxHistoryLimit     = 200
)

// Message is immutable once persisted. ID and CreatedAt are assigned by the
// store at append time and never trusted from the client.
type Message struct {
	ID        int64     `db:"id"`
	Sender    string    `db:"sender"`
	Text      string    `db:"text"`
	Room      string    `db:"room"`
	CreatedAt time.Time `db:"created_at"`
}
