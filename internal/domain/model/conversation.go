package model

import "time"

// Conversation participants are stored sorted (Participant1ID < Participant2ID)
// so the unordered pair maps to exactly one row.
type Conversation struct {
	ID                 int64      `json:"id"`
	Participant1ID     int64      `json:"participant_1_id"`
	Participant2ID     int64      `json:"participant_2_id"`
	LastMessageAt      *time.Time `json:"last_message_at"`
	LastMessagePreview string     `json:"last_message_preview"`
	CreatedAt          time.Time  `json:"created_at"`
}

func (c Conversation) HasParticipant(userID int64) bool {
	return c.Participant1ID == userID || c.Participant2ID == userID
}

func (c Conversation) OtherParticipant(userID int64) int64 {
	if c.Participant1ID == userID {
		return c.Participant2ID
	}
	return c.Participant1ID
}

// SortedPair normalizes an unordered user pair to its storage order.
func SortedPair(a, b int64) (int64, int64) {
	if a > b {
		return b, a
	}
	return a, b
}
