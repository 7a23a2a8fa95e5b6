package http

import "time"

type MessageItem struct {
	ID        int64     `json:"id"`
	Sender    string    `json:"sender"`
	Text      string    `json:"text"`
	Room      string    `json:"room"`
	CreatedAt time.Time `json:"createdAt"`
}

type HealthResponse struct {
	OK   bool      `json:"ok"`
	Time time.Time `json:"time"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
