package hub

import "time"

// Wire event types and payload keys predate this service and are kept for
// client compatibility. The one deliberate break: message ids are numeric
// "id", not the old document "_id".
const (
	TypeJoin   = "chat:join"    // клиент входит в комнату
	TypeChat   = "chat:message" // чат-сообщение (в обе стороны)
	TypeSystem = "chat:system"  // системное уведомление только адресату
	TypeError  = "chat:error"   // ошибка только отправителю
)

type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

type JoinPayload struct {
	Room string `json:"room"`
}

type ChatPayload struct {
	ID        int64     `json:"id,omitempty"`
	Sender    string    `json:"sender"`
	Text      string    `json:"text"`
	Room      string    `json:"room,omitempty"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
}

type SystemPayload struct {
	Text string `json:"text"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}
