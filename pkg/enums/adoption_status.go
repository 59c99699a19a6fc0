package enums

import "fmt"

// AdoptionStatus tracks a family member's onboarding onto one external service.
type AdoptionStatus string

const (
	AdoptionStatusNotStarted AdoptionStatus = "not_started"
	AdoptionStatusInvited    AdoptionStatus = "invited"
	AdoptionStatusInstalled  AdoptionStatus = "installed"
	AdoptionStatusConfigured AdoptionStatus = "configured"
)

var orderedAdoptionStatuses = []AdoptionStatus{
	AdoptionStatusNotStarted,
	AdoptionStatusInvited,
	AdoptionStatusInstalled,
	AdoptionStatusConfigured,
}

// AdoptionStatuses returns the statuses in transition order.
func AdoptionStatuses() []AdoptionStatus {
	out := make([]AdoptionStatus, len(orderedAdoptionStatuses))
	copy(out, orderedAdoptionStatuses)
	return out
}

// String implements fmt.Stringer.
func (s AdoptionStatus) String() string {
	return string(s)
}

// IsValid reports whether the value matches a known AdoptionStatus.
func (s AdoptionStatus) IsValid() bool {
	return s.Rank() >= 0
}

// Rank returns the position of the status in the transition order, or -1.
func (s AdoptionStatus) Rank() int {
	for i, candidate := range orderedAdoptionStatuses {
		if candidate == s {
			return i
		}
	}
	return -1
}

// ParseAdoptionStatus converts raw input into an AdoptionStatus.
func ParseAdoptionStatus(value string) (AdoptionStatus, error) {
	for _, candidate := range orderedAdoptionStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid adoption status %q", value)
}
