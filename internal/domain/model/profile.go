package model

import "time"

type Profile struct {
	UserID                 int64      `json:"user_id"`
	DisplayName            string     `json:"display_name"`
	Gender                 string     `json:"gender"`
	SeekingGenders         []string   `json:"seeking_genders"`
	Birthdate              *time.Time `json:"birthdate"`
	Lat                    *float64   `json:"lat"`
	Lon                    *float64   `json:"lon"`
	Denomination           string     `json:"denomination"`
	ChurchAttendance       string     `json:"church_attendance"`
	MinistryInvolvement    []string   `json:"ministry_involvement"`
	EducationLevel         string     `json:"education_level"`
	Hobbies                []string   `json:"hobbies"`
	Languages              []string   `json:"languages"`
	PreferredAgeMin        int        `json:"preferred_age_min"`
	PreferredAgeMax        int        `json:"preferred_age_max"`
	PreferredRadiusKM      int        `json:"preferred_radius_km"`
	PreferredDenominations []string   `json:"preferred_denominations"`
	MustShareDenomination  bool       `json:"must_share_denomination"`
	FaithVerified          bool       `json:"faith_verified"`
	MarriageIntentVerified bool       `json:"marriage_intent_verified"`
	Active                 bool       `json:"active"`
	CreatedAt              time.Time  `json:"created_at"`
	UpdatedAt              time.Time  `json:"updated_at"`
}

func (p Profile) HasLocation() bool {
	return p.Lat != nil && p.Lon != nil
}
