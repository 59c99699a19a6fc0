package enums

import "fmt"

// MigrationPhase captures where a migration sits in its journey. Phases are
// totally ordered and never move backwards for the same migration.
type MigrationPhase string

const (
	MigrationPhaseInitialization MigrationPhase = "initialization"
	MigrationPhaseMediaTransfer  MigrationPhase = "media_transfer"
	MigrationPhaseFamilySetup    MigrationPhase = "family_setup"
	MigrationPhaseValidation     MigrationPhase = "validation"
	MigrationPhaseCompleted      MigrationPhase = "completed"
)

var orderedMigrationPhases = []MigrationPhase{
	MigrationPhaseInitialization,
	MigrationPhaseMediaTransfer,
	MigrationPhaseFamilySetup,
	MigrationPhaseValidation,
	MigrationPhaseCompleted,
}

// String implements fmt.Stringer.
func (p MigrationPhase) String() string {
	return string(p)
}

// IsValid reports whether the value matches a known MigrationPhase.
func (p MigrationPhase) IsValid() bool {
	return p.Rank() >= 0
}

// Rank returns the position of the phase in the journey, or -1 when unknown.
func (p MigrationPhase) Rank() int {
	for i, candidate := range orderedMigrationPhases {
		if candidate == p {
			return i
		}
	}
	return -1
}

// Advance returns the later of p and next.
func (p MigrationPhase) Advance(next MigrationPhase) MigrationPhase {
	if next.Rank() > p.Rank() {
		return next
	}
	return p
}

// ParseMigrationPhase converts raw input into a MigrationPhase.
func ParseMigrationPhase(value string) (MigrationPhase, error) {
	for _, candidate := range orderedMigrationPhases {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid migration phase %q", value)
}
