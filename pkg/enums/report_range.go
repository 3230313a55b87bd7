package enums

import "strings"

// ReportRange is the bucket granularity of the sales summary.
type ReportRange string

const (
	ReportRangeDaily   ReportRange = "daily"
	ReportRangeWeekly  ReportRange = "weekly"
	ReportRangeMonthly ReportRange = "monthly"
)

// String implements fmt.Stringer.
func (r ReportRange) String() string {
	return string(r)
}

// ParseReportRange never fails: anything unrecognised means daily.
func ParseReportRange(value string) ReportRange {
	switch ReportRange(strings.ToLower(strings.TrimSpace(value))) {
	case ReportRangeWeekly:
		return ReportRangeWeekly
	case ReportRangeMonthly:
		return ReportRangeMonthly
	default:
		return ReportRangeDaily
	}
}
