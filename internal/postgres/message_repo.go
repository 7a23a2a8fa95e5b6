package postgres

import (
	"context"
	"fmt"

	"github.com/relay-chat/chat-service/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/lo"
)

// MessageRepository is the Postgres-backed message store.
//
// Schema:
//
//	CREATE TABLE messages (
//	    id         BIGSERIAL PRIMARY KEY,
//	    sender     TEXT        NOT NULL,
//	    text       TEXT        NOT NULL,
//	    room       TEXT        NOT NULL DEFAULT 'general',
//	    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
//	);
//	CREATE INDEX messages_room_recent ON messages (room, created_at DESC, id DESC);
type MessageRepository struct {
	db *pgxpool.Pool
}

func NewMessageRepository(db *pgxpool.Pool) *MessageRepository {
	return &MessageRepository{db: db}
}

// Append validates the draft and durably inserts it. The database assigns id
// and created_at; a row is only visible to readers once fully written, so a
// concurrent Recent never observes a partial message.
func (r *MessageRepository) Append(ctx context.Context, sender, text, room string) (*domain.Message, error) {
	d, err := domain.NewDraft(sender, text, room)
	if err != nil {
		return nil, err
	}

	row := r.db.QueryRow(ctx, `
		INSERT INTO messages (sender, text, room)
		VALUES ($1, $2, $3)
		RETURNING id, sender, text, room, created_at
	`, d.Sender, d.Text, d.Room)

	var m domain.Message
	if err := row.Scan(&m.ID, &m.Sender, &m.Text, &m.Room, &m.CreatedAt); err != nil {
		return nil, fmt.Errorf("%w: append: %v", domain.ErrStoreUnavailable, err)
	}
	return &m, nil
}

// Recent returns up to limit (clamped) most recent messages for room,
// oldest-first ordered by (created_at, id).
func (r *MessageRepository) Recent(ctx context.Context, room string, limit int) ([]domain.Message, error) {
	room = domain.NormalizeRoom(room)
	limit = domain.ClampHistoryLimit(limit)

	rows, err := r.db.Query(ctx, `
		SELECT id, sender, text, room, created_at
		FROM messages
		WHERE room = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`, room, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: recent: %v", domain.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	var out []domain.Message
	for rows.Next() {
		var m domain.Message
		if err := rows.Scan(&m.ID, &m.Sender, &m.Text, &m.Room, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: recent scan: %v", domain.ErrStoreUnavailable, err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: recent rows: %v", domain.ErrStoreUnavailable, err)
	}

	// DESC порядок от базы разворачиваем в oldest-first для клиента.
	return lo.Reverse(out), nil
}

func (r *MessageRepository) Close() error { return nil }
