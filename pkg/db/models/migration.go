package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/devicemove-backend/pkg/enums"
)

// Migration is the root aggregate: one household moving platforms.
type Migration struct {
	ID                   uuid.UUID            `gorm:"column:id;type:text;primaryKey" json:"id"`
	SubjectName          string               `gorm:"column:subject_name;not null" json:"subject_name"`
	YearsOnPriorPlatform int                  `gorm:"column:years_on_prior_platform;not null;default:0" json:"years_on_prior_platform"`
	StartedAt            time.Time            `gorm:"column:started_at;not null" json:"started_at"`
	CompletedAt          *time.Time           `gorm:"column:completed_at" json:"completed_at"`
	Phase                enums.MigrationPhase `gorm:"column:phase;not null" json:"phase"`
	OverallProgress      float64              `gorm:"column:overall_progress;not null;default:0" json:"overall_progress"`
	DeclaredPhotoCount   int                  `gorm:"column:declared_photo_count;not null;default:0" json:"declared_photo_count"`
	DeclaredVideoCount   int                  `gorm:"column:declared_video_count;not null;default:0" json:"declared_video_count"`
	DeclaredStorageGB    float64              `gorm:"column:declared_storage_gb;not null;default:0" json:"declared_storage_gb"`
	BaselineStorageGB    *float64             `gorm:"column:baseline_storage_gb" json:"baseline_storage_gb"`
	CreatedAt            time.Time            `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt            time.Time            `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Migration) TableName() string { return "migrations" }

func (Migration) EntityKind() Kind { return KindMigration }

func (m Migration) EntityID() uuid.UUID { return m.ID }

func (Migration) Parents() []Ref { return nil }

// IsCompleted reports whether the migration has been closed out.
func (m Migration) IsCompleted() bool {
	return m.CompletedAt != nil
}

// DayNumber returns the 1-based migration day for at, clamped to 1..7.
func (m Migration) DayNumber(at time.Time) int {
	if at.Before(m.StartedAt) {
		return 1
	}
	day := int(at.Sub(m.StartedAt).Hours()/24) + 1
	if day > 7 {
		return 7
	}
	return day
}
