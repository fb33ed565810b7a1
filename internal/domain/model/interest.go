package model

import (
	"time"

	"github.com/lestercardoz11/haven/internal/domain/enums"
)

type Interest struct {
	ID          int64                `json:"id"`
	SenderID    int64                `json:"sender_id"`
	ReceiverID  int64                `json:"receiver_id"`
	Status      enums.InterestStatus `json:"status"`
	Message     string               `json:"message"`
	SentAt      time.Time            `json:"sent_at"`
	RespondedAt *time.Time           `json:"responded_at"`
}
