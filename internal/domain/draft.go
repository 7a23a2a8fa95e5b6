package domain

import (
	"strings"
	"unicode/utf8"
)

// Draft is a validated, normalized message candidate. Both store backends run
// incoming publishes through NewDraft before touching disk so validation
// failures can never leave a partial record behind.
type Draft struct {
	Sender string
	Text   string
	Room   string
}

func NewDraft(sender, text, room string) (Draft, error) {
	sender = strings.TrimSpace(sender)
	text = strings.TrimSpace(text)

	switch {
	case sender == "":
		return Draft{}, &ValidationError{Field: "sender", Reason: ErrEmptySender}
	case utf8.RuneCountInString(sender) > MaxSenderLen:
		return Draft{}, &ValidationError{Field: "sender", Reason: ErrSenderTooLong}
	case text == "":
		return Draft{}, &ValidationError{Field: "text", Reason: ErrEmptyText}
	case utf8.RuneCountInString(text) > MaxTextLen:
		return Draft{}, &ValidationError{Field: "text", Reason: ErrTextTooLong}
	}

	return Draft{Sender: sender, Text: text, Room: NormalizeRoom(room)}, nil
}

// NormalizeRoom trims the room name and falls back to DefaultRoom when empty.
func NormalizeRoom(room string) string {
	room = strings.TrimSpace(room)
	if room == "" {
		return DefaultRoom
	}
	return room
}

// ClampHistoryLimit applies the default and hard maximum for history reads.
func ClampHistoryLimit(limit int) int {
	if limit <= 0 {
		return DefaultHistoryLimit
	}
	if limit > MaxHistoryLimit {
		return MaxHistoryLimit
	}
	return limit
}
