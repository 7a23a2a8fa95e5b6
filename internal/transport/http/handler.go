package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/relay-chat/chat-service/internal/domain"

	"github.com/samber/lo"
)

type Handler struct {
	historySvc HistorySvc
}

// HistorySvc is the read-only history surface consumed by the HTTP API.
type HistorySvc interface {
	GetHistory(ctx context.Context, room string, limit int) ([]domain.Message, error)
}

func NewHandler(history HistorySvc) *Handler {
	return &Handler{historySvc: history}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// GET /api/messages?room=&limit=
func (h *Handler) GetMessages(w http.ResponseWriter, r *http.Request) {
	room := r.URL.Query().Get("room")
	limit := 0
	if s := r.URL.Query().Get("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			limit = n
		}
	}

	msgs, err := h.historySvc.GetHistory(r.Context(), room, limit)
	if err != nil {
		if errors.Is(err, domain.ErrStoreUnavailable) {
			writeJSON(w, http.StatusServiceUnavailable, ErrorResponse{Error: "store unavailable"})
			return
		}
		slog.Error("handler.GetMessages:", slog.Any("err", err))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	// Пустая комната — это [], а не null и не ошибка.
	items := lo.Map(msgs, func(m domain.Message, _ int) MessageItem {
		return MessageItem{
			ID:        m.ID,
			Sender:    m.Sender,
			Text:      m.Text,
			Room:      m.Room,
			CreatedAt: m.CreatedAt.Truncate(time.Millisecond),
		}
	})
	if items == nil {
		items = []MessageItem{}
	}

	writeJSON(w, http.StatusOK, items)
}

// GET /api/health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		OK:   true,
		Time: time.Now().UTC(),
	})
}
