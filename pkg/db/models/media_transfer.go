package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/devicemove-backend/pkg/enums"
)

// MediaTransfer is the single photo/video transfer of a migration.
type MediaTransfer struct {
	ID                    uuid.UUID            `gorm:"column:id;type:text;primaryKey" json:"id"`
	MigrationID           uuid.UUID            `gorm:"column:migration_id;type:text;not null" json:"migration_id"`
	DeclaredPhotos        int                  `gorm:"column:declared_photos;not null;default:0" json:"declared_photos"`
	DeclaredVideos        int                  `gorm:"column:declared_videos;not null;default:0" json:"declared_videos"`
	DeclaredStorageGB     float64              `gorm:"column:declared_storage_gb;not null;default:0" json:"declared_storage_gb"`
	PhotosTransferred     int                  `gorm:"column:photos_transferred;not null;default:0" json:"photos_transferred"`
	VideosTransferred     int                  `gorm:"column:videos_transferred;not null;default:0" json:"videos_transferred"`
	TransferredStorageGB  float64              `gorm:"column:transferred_storage_gb;not null;default:0" json:"transferred_storage_gb"`
	PhotoStatus           enums.TransferStatus `gorm:"column:photo_status;not null" json:"photo_status"`
	VideoStatus           enums.TransferStatus `gorm:"column:video_status;not null" json:"video_status"`
	OverallStatus         enums.TransferStatus `gorm:"column:overall_status;not null" json:"overall_status"`
	StartedAt             *time.Time           `gorm:"column:started_at" json:"started_at"`
	VisibleDay            int                  `gorm:"column:visible_day;not null;default:0" json:"visible_day"`
	ExpectedCompletionDay int                  `gorm:"column:expected_completion_day;not null;default:0" json:"expected_completion_day"`
	CompletedAt           *time.Time           `gorm:"column:completed_at" json:"completed_at"`
	CreatedAt             time.Time            `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt             time.Time            `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (MediaTransfer) TableName() string { return "media_transfers" }

func (MediaTransfer) EntityKind() Kind { return KindMediaTransfer }

func (t MediaTransfer) EntityID() uuid.UUID { return t.ID }

func (t MediaTransfer) Parents() []Ref {
	return []Ref{{Kind: KindMigration, ID: t.MigrationID}}
}

// TotalDeclared returns the declared photo and video count.
func (t MediaTransfer) TotalDeclared() int {
	return t.DeclaredPhotos + t.DeclaredVideos
}
