package model

import (
	"time"

	"github.com/lestercardoz11/haven/internal/domain/enums"
)

// Match is one direction of a relationship: the viewer's row about a
// candidate. The reverse pair is a distinct row; both flip to connected
// together when an interest is accepted.
type Match struct {
	ID            int64             `json:"id"`
	UserID        int64             `json:"user_id"`
	MatchedUserID int64             `json:"matched_user_id"`
	Score         int               `json:"score"`
	Status        enums.MatchStatus `json:"status"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}
