package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/devicemove-backend/pkg/enums"
)

// AppAdoption tracks one member's onboarding onto one external service.
type AppAdoption struct {
	ID             uuid.UUID            `gorm:"column:id;type:text;primaryKey" json:"id"`
	MigrationID    uuid.UUID            `gorm:"column:migration_id;type:text;not null" json:"migration_id"`
	MemberID       uuid.UUID            `gorm:"column:member_id;type:text;not null" json:"member_id"`
	Service        string               `gorm:"column:service;not null" json:"service"`
	Status         enums.AdoptionStatus `gorm:"column:status;not null" json:"status"`
	InvitedAt      *time.Time           `gorm:"column:invited_at" json:"invited_at"`
	InstalledAt    *time.Time           `gorm:"column:installed_at" json:"installed_at"`
	ConfiguredAt   *time.Time           `gorm:"column:configured_at" json:"configured_at"`
	LastObservedAt *time.Time           `gorm:"column:last_observed_at" json:"last_observed_at"`
	CreatedAt      time.Time            `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time            `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (AppAdoption) TableName() string { return "app_adoptions" }

func (AppAdoption) EntityKind() Kind { return KindAppAdoption }

func (a AppAdoption) EntityID() uuid.UUID { return a.ID }

func (a AppAdoption) Parents() []Ref {
	return []Ref{
		{Kind: KindMigration, ID: a.MigrationID},
		{Kind: KindFamilyMember, ID: a.MemberID},
	}
}
