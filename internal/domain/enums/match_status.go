package enums

type MatchStatus string

const (
	MatchStatusNew        MatchStatus = "new"
	MatchStatusInterested MatchStatus = "interested"
	MatchStatusPassed     MatchStatus = "passed"
	MatchStatusConnected  MatchStatus = "connected"
)

func (s MatchStatus) Valid() bool {
	switch s {
	case MatchStatusNew, MatchStatusInterested, MatchStatusPassed, MatchStatusConnected:
		return true
	default:
		return false
	}
}

// Terminal statuses accept no further transition for their row.
func (s MatchStatus) Terminal() bool {
	return s == MatchStatusPassed || s == MatchStatusConnected
}
