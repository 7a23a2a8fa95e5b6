package service

import (
	"context"
	"fmt"

	"github.com/relay-chat/chat-service/internal/domain"
)

// HistoryService is the read path for catching up on a room. It exists apart
// from ChatService because history is queried outside the live-connection
// lifecycle (initial page load, before any join).
type HistoryService struct {
	store MessageStore
}

func NewHistoryService(store MessageStore) *HistoryService {
	return &HistoryService{store: store}
}

// GetHistory returns up to min(limit, 200) messages for room, oldest-first.
// An unknown room yields an empty slice; a storage outage yields an error so
// callers can tell the two apart.
func (s *HistoryService) GetHistory(ctx context.Context, room string, limit int) ([]domain.Message, error) {
	msgs, err := s.store.Recent(ctx, room, limit)
	if err != nil {
		return nil, fmt.Errorf("history: %w", err)
	}
	return msgs, nil
}
