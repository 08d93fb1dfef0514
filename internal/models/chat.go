package models

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

const (
	MaxMessageRunes  = 500
	MaxUsernameRunes = 32
)

// ChatMessage is a row of chat_messages. ID and CreatedAt are assigned by
// the store on insert and give the ordering key.
type ChatMessage struct {
	ID        int64     `json:"id"`
	RoomID    uuid.UUID `json:"roomId"`
	UserID    uuid.UUID `json:"userId"`
	Username  string    `json:"username"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewChatMessage trims and bounds the text and display name.
func NewChatMessage(roomID, userID uuid.UUID, username, text string) (*ChatMessage, error) {
	text = strings.TrimSpace(text)
	if text == "" || utf8.RuneCountInString(text) > MaxMessageRunes {
		return nil, ErrMessageInvalid
	}
	username = strings.TrimSpace(username)
	if utf8.RuneCountInString(username) > MaxUsernameRunes {
		username = string([]rune(username)[:MaxUsernameRunes])
	}
	return &ChatMessage{RoomID: roomID, UserID: userID, Username: username, Message: text}, nil
}
