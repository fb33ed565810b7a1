package enums

type InterestStatus string

const (
	InterestStatusPending  InterestStatus = "pending"
	InterestStatusAccepted InterestStatus = "accepted"
	InterestStatusRejected InterestStatus = "rejected"
)

func (s InterestStatus) Valid() bool {
	switch s {
	case InterestStatusPending, InterestStatusAccepted, InterestStatusRejected:
		return true
	default:
		return false
	}
}

func (s InterestStatus) Resolved() bool {
	return s == InterestStatusAccepted || s == InterestStatusRejected
}
