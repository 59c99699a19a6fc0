// Package reports renders the consolidated view of a migration for the
// orchestrating controller.
package reports

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/devicemove-backend/internal/adoption"
	"github.com/angelmondragon/devicemove-backend/pkg/enums"
)

// Report is the consolidated migration report.
type Report struct {
	MigrationID          uuid.UUID               `json:"migration_id"`
	SubjectName          string                  `json:"subject_name"`
	YearsOnPriorPlatform int                     `json:"years_on_prior_platform"`
	Detail               enums.DetailLevel       `json:"detail"`
	Phase                enums.MigrationPhase    `json:"phase"`
	Status               enums.OverallStatus     `json:"status"`
	Completed            bool                    `json:"completed"`
	CurrentDay           int                     `json:"current_day"`
	Percent              float64                 `json:"percent"`
	StartedAt            time.Time               `json:"started_at"`
	CompletedAt          *time.Time              `json:"completed_at,omitempty"`
	Transfer             TransferSummary         `json:"transfer"`
	Adoption             []adoption.ServiceCount `json:"adoption"`
	Payments             PaymentSummary          `json:"payments"`
	Members              []MemberDetail          `json:"members,omitempty"`
	Snapshots            []SnapshotEntry         `json:"snapshots,omitempty"`
	Lines                []string                `json:"lines"`
	GeneratedAt          time.Time               `json:"generated_at"`
}

// TransferSummary describes the media transfer.
type TransferSummary struct {
	Status            enums.TransferStatus `json:"status"`
	PhotosTransferred int                  `json:"photos_transferred"`
	DeclaredPhotos    int                  `json:"declared_photos"`
	VideosTransferred int                  `json:"videos_transferred"`
	DeclaredVideos    int                  `json:"declared_videos"`
	StorageGB         float64              `json:"storage_gb"`
}

// PaymentSummary counts minor payment setups.
type PaymentSummary struct {
	Total     int `json:"total"`
	Activated int `json:"activated"`
}

// MemberDetail is the per-member breakdown of a full report.
type MemberDetail struct {
	Name     string                   `json:"name"`
	Role     enums.FamilyRole         `json:"role"`
	Age      *int                     `json:"age,omitempty"`
	Services []adoption.ServiceStatus `json:"services"`
	Payment  enums.PaymentEvent       `json:"payment_stage,omitempty"`
}

// SnapshotEntry is one raw capacity reading in the audit trail.
type SnapshotEntry struct {
	Day        int       `json:"day"`
	Sequence   int       `json:"sequence"`
	StorageGB  float64   `json:"storage_gb"`
	Baseline   bool      `json:"baseline"`
	RawPercent float64   `json:"raw_percent"`
	ObservedAt time.Time `json:"observed_at"`
}
