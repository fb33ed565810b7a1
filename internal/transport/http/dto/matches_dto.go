package dto

import "time"

type MatchItemResponse struct {
	ID            int64     `json:"id"`
	MatchedUserID int64     `json:"matched_user_id"`
	DisplayName   string    `json:"display_name"`
	Denomination  string    `json:"denomination"`
	Age           int       `json:"age"`
	Score         int       `json:"score"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
}

type MatchesResponse struct {
	Items []MatchItemResponse `json:"items"`
}

type BlockRequest struct {
	TargetUserID int64 `json:"target_user_id"`
}

type ReportRequest struct {
	TargetUserID int64  `json:"target_user_id"`
	Reason       string `json:"reason"`
	Details      string `json:"details"`
}

type ReportResponse struct {
	OK       bool  `json:"ok"`
	ReportID int64 `json:"report_id"`
}
