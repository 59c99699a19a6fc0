package enums

import "fmt"

// TransferStatus captures the lifecycle of a media category or the transfer as a whole.
type TransferStatus string

const (
	TransferStatusNotStarted TransferStatus = "not_started"
	TransferStatusInitiated  TransferStatus = "initiated"
	TransferStatusInProgress TransferStatus = "in_progress"
	TransferStatusCompleted  TransferStatus = "completed"
)

var orderedTransferStatuses = []TransferStatus{
	TransferStatusNotStarted,
	TransferStatusInitiated,
	TransferStatusInProgress,
	TransferStatusCompleted,
}

// String implements fmt.Stringer.
func (s TransferStatus) String() string {
	return string(s)
}

// IsValid reports whether the value matches a known TransferStatus.
func (s TransferStatus) IsValid() bool {
	return s.Rank() >= 0
}

// Rank returns the lifecycle position, or -1 when unknown.
func (s TransferStatus) Rank() int {
	for i, candidate := range orderedTransferStatuses {
		if candidate == s {
			return i
		}
	}
	return -1
}

// Advance returns the later of s and next.
func (s TransferStatus) Advance(next TransferStatus) TransferStatus {
	if next.Rank() > s.Rank() {
		return next
	}
	return s
}

// ParseTransferStatus converts raw input into a TransferStatus.
func ParseTransferStatus(value string) (TransferStatus, error) {
	for _, candidate := range orderedTransferStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid transfer status %q", value)
}
