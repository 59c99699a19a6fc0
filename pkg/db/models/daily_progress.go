package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/devicemove-backend/pkg/enums"
)

// DailyProgress is the regenerated per-day rollup presented to the controller.
type DailyProgress struct {
	ID                 uuid.UUID           `gorm:"column:id;type:text;primaryKey" json:"id"`
	MigrationID        uuid.UUID           `gorm:"column:migration_id;type:text;not null" json:"migration_id"`
	DayNumber          int                 `gorm:"column:day_number;not null" json:"day_number"`
	RawPercent         float64             `gorm:"column:raw_percent;not null;default:0" json:"raw_percent"`
	ReportedPercent    float64             `gorm:"column:reported_percent;not null;default:0" json:"reported_percent"`
	ExpectedPercent    float64             `gorm:"column:expected_percent;not null;default:0" json:"expected_percent"`
	Overridden         bool                `gorm:"column:overridden;not null;default:false" json:"overridden"`
	PhotosTransferred  int                 `gorm:"column:photos_transferred;not null;default:0" json:"photos_transferred"`
	VideosTransferred  int                 `gorm:"column:videos_transferred;not null;default:0" json:"videos_transferred"`
	StorageUsedGB      float64             `gorm:"column:storage_used_gb;not null;default:0" json:"storage_used_gb"`
	AdoptionConfigured int                 `gorm:"column:adoption_configured;not null;default:0" json:"adoption_configured"`
	AdoptionTotal      int                 `gorm:"column:adoption_total;not null;default:0" json:"adoption_total"`
	Status             enums.OverallStatus `gorm:"column:status;not null" json:"status"`
	Milestone          string              `gorm:"column:milestone;not null;default:''" json:"milestone"`
	GeneratedAt        time.Time           `gorm:"column:generated_at;not null" json:"generated_at"`
}

func (DailyProgress) TableName() string { return "daily_progress" }

func (DailyProgress) EntityKind() Kind { return KindDailyProgress }

func (d DailyProgress) EntityID() uuid.UUID { return d.ID }

func (d DailyProgress) Parents() []Ref {
	return []Ref{{Kind: KindMigration, ID: d.MigrationID}}
}
