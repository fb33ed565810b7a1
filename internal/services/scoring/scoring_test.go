package scoring

import (
	"testing"
	"time"

	"github.com/lestercardoz11/haven/internal/domain/model"
)

var scoreNow = time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)

func birthdate(age int) *time.Time {
	// Birthday already passed this year, so the derived age is exact.
	t := time.Date(scoreNow.Year()-age, time.January, 10, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestCompatibilityDenominationTerm(t *testing.T) {
	tests := []struct {
		name     string
		a        model.Profile
		b        model.Profile
		expected int
	}{
		{
			name:     "equal denominations score full points",
			a:        model.Profile{Denomination: "Baptist"},
			b:        model.Profile{Denomination: "Baptist"},
			expected: 30,
		},
		{
			name:     "cross listed denomination scores partial points",
			a:        model.Profile{Denomination: "Catholic"},
			b:        model.Profile{Denomination: "Methodist", PreferredDenominations: []string{"Catholic"}},
			expected: 15,
		},
		{
			name:     "unrelated denominations score nothing",
			a:        model.Profile{Denomination: "Catholic"},
			b:        model.Profile{Denomination: "Methodist"},
			expected: 0,
		},
		{
			name:     "empty denominations score nothing",
			a:        model.Profile{},
			b:        model.Profile{Denomination: "Baptist"},
			expected: 0,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Compatibility(tc.a, tc.b, scoreNow); got != tc.expected {
				t.Fatalf("unexpected score: got %d want %d", got, tc.expected)
			}
		})
	}
}

func TestCompatibilityEndToEndExample(t *testing.T) {
	viewer := model.Profile{
		Denomination:        "Baptist",
		Birthdate:           birthdate(30),
		PreferredAgeMin:     25,
		PreferredAgeMax:     35,
		Hobbies:             []string{"hiking", "reading", "chess"},
		MinistryInvolvement: []string{"worship", "youth"},
	}
	candidate := model.Profile{
		Denomination:        "Baptist",
		Birthdate:           birthdate(28),
		PreferredAgeMin:     26,
		PreferredAgeMax:     34,
		Hobbies:             []string{"hiking", "reading"},
		MinistryInvolvement: []string{"worship"},
	}

	// 30 denomination + 15 reciprocal age + 4 hobbies + 2 ministry.
	if got := Compatibility(viewer, candidate, scoreNow); got != 51 {
		t.Fatalf("unexpected score: got %d want %d", got, 51)
	}
}

func TestCompatibilityOverlapCaps(t *testing.T) {
	a := model.Profile{
		Hobbies:             []string{"h1", "h2", "h3", "h4", "h5", "h6", "h7"},
		MinistryInvolvement: []string{"m1", "m2", "m3", "m4", "m5", "m6"},
		Languages:           []string{"l1", "l2", "l3", "l4", "l5"},
	}
	b := model.Profile{
		Hobbies:             a.Hobbies,
		MinistryInvolvement: a.MinistryInvolvement,
		Languages:           a.Languages,
	}

	// Each overlap term caps at 10 regardless of shared count.
	if got := Compatibility(a, b, scoreNow); got != 30 {
		t.Fatalf("unexpected score: got %d want %d", got, 30)
	}
}

func TestCompatibilityLanguagesUseThreePointsPerTag(t *testing.T) {
	a := model.Profile{Languages: []string{"english", "tamil"}}
	b := model.Profile{Languages: []string{"tamil", "english"}}

	if got := Compatibility(a, b, scoreNow); got != 6 {
		t.Fatalf("unexpected score: got %d want %d", got, 6)
	}
}

func TestCompatibilityReciprocalAgeRequiresBothDirections(t *testing.T) {
	a := model.Profile{Birthdate: birthdate(40), PreferredAgeMin: 25, PreferredAgeMax: 45}
	b := model.Profile{Birthdate: birthdate(28), PreferredAgeMin: 25, PreferredAgeMax: 35}

	// B's range excludes A's age, so the term is zero in both directions.
	if got := Compatibility(a, b, scoreNow); got != 0 {
		t.Fatalf("unexpected score: got %d want %d", got, 0)
	}

	b.PreferredAgeMax = 45
	if got := Compatibility(a, b, scoreNow); got != 15 {
		t.Fatalf("unexpected score: got %d want %d", got, 15)
	}
}

func TestCompatibilityAttendanceAndEducation(t *testing.T) {
	a := model.Profile{ChurchAttendance: "weekly", EducationLevel: "masters"}
	b := model.Profile{ChurchAttendance: "weekly", EducationLevel: "masters"}

	if got := Compatibility(a, b, scoreNow); got != 25 {
		t.Fatalf("unexpected score: got %d want %d", got, 25)
	}
}

func TestCompatibilityMissingFieldsContributeZero(t *testing.T) {
	if got := Compatibility(model.Profile{}, model.Profile{}, scoreNow); got != 0 {
		t.Fatalf("unexpected score for empty profiles: got %d want %d", got, 0)
	}
}

func TestCompatibilityStaysWithinBounds(t *testing.T) {
	full := model.Profile{
		Denomination:        "Baptist",
		ChurchAttendance:    "weekly",
		EducationLevel:      "masters",
		Birthdate:           birthdate(30),
		PreferredAgeMin:     21,
		PreferredAgeMax:     45,
		Hobbies:             []string{"h1", "h2", "h3", "h4", "h5", "h6"},
		MinistryInvolvement: []string{"m1", "m2", "m3", "m4", "m5", "m6"},
		Languages:           []string{"l1", "l2", "l3", "l4"},
	}

	got := Compatibility(full, full, scoreNow)
	if got < 0 || got > 100 {
		t.Fatalf("score out of bounds: got %d", got)
	}
	if got != 100 {
		t.Fatalf("unexpected maximal score: got %d want %d", got, 100)
	}
}

func TestCompatibilityNormalizesTagCase(t *testing.T) {
	a := model.Profile{Denomination: " Baptist ", Hobbies: []string{"Hiking"}}
	b := model.Profile{Denomination: "baptist", Hobbies: []string{"hiking "}}

	if got := Compatibility(a, b, scoreNow); got != 32 {
		t.Fatalf("unexpected score: got %d want %d", got, 32)
	}
}
