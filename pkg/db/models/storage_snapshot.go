package models

import (
	"time"

	"github.com/google/uuid"
)

// StorageSnapshot is an append-only destination capacity reading.
// PercentComplete keeps the raw, un-overridden value.
type StorageSnapshot struct {
	ID              uuid.UUID `gorm:"column:id;type:text;primaryKey" json:"id"`
	MigrationID     uuid.UUID `gorm:"column:migration_id;type:text;not null" json:"migration_id"`
	DayNumber       int       `gorm:"column:day_number;not null" json:"day_number"`
	Sequence        int       `gorm:"column:sequence;not null;default:0" json:"sequence"`
	StorageUsedGB   float64   `gorm:"column:storage_used_gb;not null" json:"storage_used_gb"`
	IsBaseline      bool      `gorm:"column:is_baseline;not null;default:false" json:"is_baseline"`
	GrowthGB        float64   `gorm:"column:growth_gb;not null;default:0" json:"growth_gb"`
	PercentComplete float64   `gorm:"column:percent_complete;not null;default:0" json:"percent_complete"`
	EstimatedPhotos int       `gorm:"column:estimated_photos;not null;default:0" json:"estimated_photos"`
	EstimatedVideos int       `gorm:"column:estimated_videos;not null;default:0" json:"estimated_videos"`
	ObservedAt      time.Time `gorm:"column:observed_at;not null" json:"observed_at"`
}

func (StorageSnapshot) TableName() string { return "storage_snapshots" }

func (StorageSnapshot) EntityKind() Kind { return KindStorageSnapshot }

func (s StorageSnapshot) EntityID() uuid.UUID { return s.ID }

func (s StorageSnapshot) Parents() []Ref {
	return []Ref{{Kind: KindMigration, ID: s.MigrationID}}
}
