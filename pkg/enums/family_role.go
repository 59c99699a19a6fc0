package enums

import "fmt"

// FamilyRole describes how a family member relates to the migrating household.
type FamilyRole string

const (
	FamilyRolePrimaryAdult   FamilyRole = "primary_adult"
	FamilyRoleSecondaryAdult FamilyRole = "secondary_adult"
	FamilyRoleMinorDependent FamilyRole = "minor_dependent"
)

var validFamilyRoles = []FamilyRole{
	FamilyRolePrimaryAdult,
	FamilyRoleSecondaryAdult,
	FamilyRoleMinorDependent,
}

// String implements fmt.Stringer.
func (r FamilyRole) String() string {
	return string(r)
}

// IsValid reports whether the value is a known FamilyRole.
func (r FamilyRole) IsValid() bool {
	for _, candidate := range validFamilyRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseFamilyRole converts raw input into a FamilyRole.
func ParseFamilyRole(value string) (FamilyRole, error) {
	for _, candidate := range validFamilyRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid family role %q", value)
}
