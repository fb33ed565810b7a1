package dto

type CandidateProfileResponse struct {
	UserID           int64    `json:"user_id"`
	DisplayName      string   `json:"display_name"`
	Age              int      `json:"age"`
	Denomination     string   `json:"denomination"`
	ChurchAttendance string   `json:"church_attendance"`
	EducationLevel   string   `json:"education_level"`
	Hobbies          []string `json:"hobbies"`
	Languages        []string `json:"languages"`
}

type CandidateItemResponse struct {
	Profile    CandidateProfileResponse `json:"profile"`
	Score      int                      `json:"score"`
	DistanceKM *float64                 `json:"distance_km,omitempty"`
}

type CandidatesResponse struct {
	Items []CandidateItemResponse `json:"items"`
}

type CandidateDetailResponse struct {
	UserID                 int64    `json:"user_id"`
	DisplayName            string   `json:"display_name"`
	Age                    int      `json:"age"`
	Denomination           string   `json:"denomination"`
	ChurchAttendance       string   `json:"church_attendance"`
	MinistryInvolvement    []string `json:"ministry_involvement"`
	EducationLevel         string   `json:"education_level"`
	Hobbies                []string `json:"hobbies"`
	Languages              []string `json:"languages"`
	PreferredDenominations []string `json:"preferred_denominations"`
	FaithVerified          bool     `json:"faith_verified"`
	MarriageIntentVerified bool     `json:"marriage_intent_verified"`
	Score                  int      `json:"score"`
}

type ProfileViewRequest struct {
	ViewedUserID int64 `json:"viewed_user_id"`
}
