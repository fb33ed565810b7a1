package scoring

import (
	"strings"
	"time"

	"github.com/lestercardoz11/haven/internal/domain/model"
	"github.com/lestercardoz11/haven/internal/domain/rules"
)

const (
	denominationExactPoints     = 30
	denominationPreferredPoints = 15
	churchAttendancePoints      = 15
	ministryPointsPerTag        = 2
	ministryPointsCap           = 10
	educationPoints             = 10
	hobbyPointsPerTag           = 2
	hobbyPointsCap              = 10
	languagePointsPerTag        = 3
	languagePointsCap           = 10
	reciprocalAgePoints         = 15

	maxScore = 100
)

// Compatibility computes the 0..100 compatibility score between two
// profiles. Missing optional fields contribute zero to their term, so the
// function is total over partially filled profiles.
func Compatibility(a, b model.Profile, now time.Time) int {
	score := denominationTerm(a, b)
	score += attendanceTerm(a, b)
	score += overlapTerm(a.MinistryInvolvement, b.MinistryInvolvement, ministryPointsPerTag, ministryPointsCap)
	score += educationTerm(a, b)
	score += overlapTerm(a.Hobbies, b.Hobbies, hobbyPointsPerTag, hobbyPointsCap)
	score += overlapTerm(a.Languages, b.Languages, languagePointsPerTag, languagePointsCap)
	score += reciprocalAgeTerm(a, b, now)

	if score > maxScore {
		score = maxScore
	}
	if score < 0 {
		score = 0
	}
	return score
}

func denominationTerm(a, b model.Profile) int {
	da := normalize(a.Denomination)
	db := normalize(b.Denomination)
	if da == "" || db == "" {
		return 0
	}
	if da == db {
		return denominationExactPoints
	}
	if containsNormalized(a.PreferredDenominations, db) || containsNormalized(b.PreferredDenominations, da) {
		return denominationPreferredPoints
	}
	return 0
}

func attendanceTerm(a, b model.Profile) int {
	ca := normalize(a.ChurchAttendance)
	cb := normalize(b.ChurchAttendance)
	if ca == "" || cb == "" || ca != cb {
		return 0
	}
	return churchAttendancePoints
}

func educationTerm(a, b model.Profile) int {
	ea := normalize(a.EducationLevel)
	eb := normalize(b.EducationLevel)
	if ea == "" || eb == "" || ea != eb {
		return 0
	}
	return educationPoints
}

func overlapTerm(a, b []string, perTag, limit int) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	seen := make(map[string]struct{}, len(a))
	for _, tag := range a {
		if t := normalize(tag); t != "" {
			seen[t] = struct{}{}
		}
	}

	shared := 0
	counted := make(map[string]struct{}, len(b))
	for _, tag := range b {
		t := normalize(tag)
		if t == "" {
			continue
		}
		if _, dup := counted[t]; dup {
			continue
		}
		if _, ok := seen[t]; ok {
			shared++
			counted[t] = struct{}{}
		}
	}

	points := shared * perTag
	if points > limit {
		points = limit
	}
	return points
}

// reciprocalAgeTerm awards points only when each profile's age falls inside
// the other's preferred range. Either side missing a birthdate voids the term.
func reciprocalAgeTerm(a, b model.Profile, now time.Time) int {
	if a.Birthdate == nil || b.Birthdate == nil {
		return 0
	}

	ageA := rules.AgeAt(*a.Birthdate, now)
	ageB := rules.AgeAt(*b.Birthdate, now)

	if !withinPreferredRange(ageA, b) || !withinPreferredRange(ageB, a) {
		return 0
	}
	return reciprocalAgePoints
}

func withinPreferredRange(age int, p model.Profile) bool {
	min := p.PreferredAgeMin
	max := p.PreferredAgeMax
	if min <= 0 {
		min = rules.DefaultAgeMin
	}
	if max <= 0 {
		max = rules.DefaultAgeMax
	}
	if min > max {
		min, max = max, min
	}
	return age >= min && age <= max
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func containsNormalized(list []string, target string) bool {
	for _, item := range list {
		if normalize(item) == target {
			return true
		}
	}
	return false
}
