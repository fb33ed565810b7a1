package dto

import "time"

type SendInterestRequest struct {
	ReceiverID int64  `json:"receiver_id"`
	Message    string `json:"message"`
}

type InterestResponse struct {
	ID          int64      `json:"id"`
	SenderID    int64      `json:"sender_id"`
	ReceiverID  int64      `json:"receiver_id"`
	Status      string     `json:"status"`
	Message     string     `json:"message,omitempty"`
	SentAt      time.Time  `json:"sent_at"`
	RespondedAt *time.Time `json:"responded_at,omitempty"`
}

type RespondInterestRequest struct {
	Accept bool `json:"accept"`
}

type AcceptInterestResponse struct {
	Interest            InterestResponse `json:"interest"`
	ConversationID      int64            `json:"conversation_id"`
	ConversationCreated bool             `json:"conversation_created"`
}

type PassRequest struct {
	TargetUserID int64 `json:"target_user_id"`
}

type OKResponse struct {
	OK bool `json:"ok"`
}
