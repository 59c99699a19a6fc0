package enums

import (
	"fmt"
	"strings"
)

// DetailLevel selects how much a completion report renders.
type DetailLevel string

const (
	DetailLevelSummary DetailLevel = "summary"
	DetailLevelFull    DetailLevel = "full"
)

// String implements fmt.Stringer.
func (d DetailLevel) String() string {
	return string(d)
}

// IsValid reports whether the value matches a known DetailLevel.
func (d DetailLevel) IsValid() bool {
	return d == DetailLevelSummary || d == DetailLevelFull
}

// ParseDetailLevel converts raw input into a DetailLevel; empty input means summary.
func ParseDetailLevel(value string) (DetailLevel, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", string(DetailLevelSummary):
		return DetailLevelSummary, nil
	case string(DetailLevelFull):
		return DetailLevelFull, nil
	}
	return "", fmt.Errorf("invalid detail level %q", value)
}
