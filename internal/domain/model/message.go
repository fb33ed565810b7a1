package model

import (
	"time"

	"github.com/lestercardoz11/haven/internal/domain/enums"
)

type Message struct {
	ID             int64             `json:"id"`
	ConversationID int64             `json:"conversation_id"`
	SenderID       int64             `json:"sender_id"`
	ReceiverID     int64             `json:"receiver_id"`
	Text           string            `json:"text"`
	Type           enums.MessageType `json:"type"`
	ImageKey       string            `json:"image_key,omitempty"`
	ImageURL       string            `json:"image_url,omitempty"`
	IsRead         bool              `json:"is_read"`
	ReadAt         *time.Time        `json:"read_at"`
	CreatedAt      time.Time         `json:"created_at"`
}
