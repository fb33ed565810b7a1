package dto

import "time"

type ConversationItemResponse struct {
	ID                 int64      `json:"id"`
	OtherUserID        int64      `json:"other_user_id"`
	OtherDisplayName   string     `json:"other_display_name"`
	LastMessageAt      *time.Time `json:"last_message_at"`
	LastMessagePreview string     `json:"last_message_preview"`
	UnreadCount        int        `json:"unread_count"`
	CreatedAt          time.Time  `json:"created_at"`
}

type ConversationsResponse struct {
	Items []ConversationItemResponse `json:"items"`
}

type MessageResponse struct {
	ID             int64      `json:"id"`
	ConversationID int64      `json:"conversation_id"`
	SenderID       int64      `json:"sender_id"`
	ReceiverID     int64      `json:"receiver_id"`
	Text           string     `json:"text,omitempty"`
	Type           string     `json:"type"`
	ImageURL       string     `json:"image_url,omitempty"`
	IsRead         bool       `json:"is_read"`
	ReadAt         *time.Time `json:"read_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

type MessagesResponse struct {
	Items []MessageResponse `json:"items"`
}

type SendMessageRequest struct {
	Text     string `json:"text"`
	ImageKey string `json:"image_key"`
}

type MarkReadResponse struct {
	OK         bool `json:"ok"`
	MarkedRead int  `json:"marked_read"`
}

type UnreadCountResponse struct {
	UnreadCount int `json:"unread_count"`
}
