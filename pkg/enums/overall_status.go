package enums

// OverallStatus is the headline state surfaced in daily summaries and reports.
type OverallStatus string

const (
	OverallStatusPending    OverallStatus = "pending"
	OverallStatusInProgress OverallStatus = "in_progress"
	OverallStatusSuccess    OverallStatus = "success"
)

// String implements fmt.Stringer.
func (s OverallStatus) String() string {
	return string(s)
}

// IsValid reports whether the value matches a known OverallStatus.
func (s OverallStatus) IsValid() bool {
	switch s {
	case OverallStatusPending, OverallStatusInProgress, OverallStatusSuccess:
		return true
	}
	return false
}
