package enums

type ReportReason string

const (
	ReportReasonSpam    ReportReason = "spam"
	ReportReasonFake    ReportReason = "fake"
	ReportReasonAbusive ReportReason = "abusive"
	ReportReasonOther   ReportReason = "other"
	ReportReasonFaith   ReportReason = "faith_misrepresentation"
)

func (r ReportReason) Valid() bool {
	switch r {
	case ReportReasonSpam, ReportReasonFake, ReportReasonAbusive, ReportReasonOther, ReportReasonFaith:
		return true
	default:
		return false
	}
}
