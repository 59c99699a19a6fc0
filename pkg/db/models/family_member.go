package models

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/devicemove-backend/pkg/enums"
)

// FamilyMember is a household participant; name is unique within a migration.
type FamilyMember struct {
	ID             uuid.UUID        `gorm:"column:id;type:text;primaryKey" json:"id"`
	MigrationID    uuid.UUID        `gorm:"column:migration_id;type:text;not null" json:"migration_id"`
	Name           string           `gorm:"column:name;not null" json:"name"`
	NameKey        string           `gorm:"column:name_key;not null" json:"name_key"`
	Role           enums.FamilyRole `gorm:"column:role;not null" json:"role"`
	Age            *int             `gorm:"column:age" json:"age"`
	ContactAddress string           `gorm:"column:contact_address;not null;default:''" json:"contact_address"`
	Notes          string           `gorm:"column:notes;not null;default:''" json:"notes"`
	CreatedAt      time.Time        `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time        `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (FamilyMember) TableName() string { return "family_members" }

func (FamilyMember) EntityKind() Kind { return KindFamilyMember }

func (m FamilyMember) EntityID() uuid.UUID { return m.ID }

func (m FamilyMember) Parents() []Ref {
	return []Ref{{Kind: KindMigration, ID: m.MigrationID}}
}

// NameKey normalizes a member name for uniqueness and lookups.
func NameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
