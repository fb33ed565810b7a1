package rules

import "time"

const (
	// Global fallback for the eligibility age window when neither the
	// request nor the viewer's stored preference provides bounds.
	DefaultAgeMin = 21
	DefaultAgeMax = 100
)

// AgeAt returns full calendar years between birthdate and now, counting a
// year only once the birthday has occurred.
func AgeAt(birthdate time.Time, now time.Time) int {
	if birthdate.IsZero() {
		return 0
	}

	b := birthdate.UTC()
	n := now.UTC()

	age := n.Year() - b.Year()
	if n.Month() < b.Month() || (n.Month() == b.Month() && n.Day() < b.Day()) {
		age--
	}
	if age < 0 {
		return 0
	}
	return age
}

// EffectiveAgeRange resolves the candidate age window: explicit filter wins,
// then the viewer preference, then the global default. A crossed range is
// swapped rather than rejected.
func EffectiveAgeRange(filterMin, filterMax, prefMin, prefMax int) (int, int) {
	min := filterMin
	if min <= 0 {
		min = prefMin
	}
	if min <= 0 {
		min = DefaultAgeMin
	}

	max := filterMax
	if max <= 0 {
		max = prefMax
	}
	if max <= 0 {
		max = DefaultAgeMax
	}

	if min > max {
		min, max = max, min
	}
	return min, max
}
