package coordinator

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/devicemove-backend/internal/adoption"
	"github.com/angelmondragon/devicemove-backend/pkg/db/models"
	"github.com/angelmondragon/devicemove-backend/pkg/enums"
)

// InitializeInput starts a migration.
type InitializeInput struct {
	SubjectName          string
	YearsOnPriorPlatform int
}

// InventoryInput carries the source library totals observed by the web agent.
type InventoryInput struct {
	Photos    int
	Videos    int
	StorageGB float64
}

// AddMemberInput registers a family member.
type AddMemberInput struct {
	Name           string
	Role           enums.FamilyRole
	Age            *int
	ContactAddress string
}

// MemberResult is a newly registered member and the records created for it.
type MemberResult struct {
	Member       models.FamilyMember       `json:"member"`
	Adoptions    []models.AppAdoption      `json:"adoptions"`
	PaymentSetup *models.MinorPaymentSetup `json:"payment_setup,omitempty"`
}

// MediaProgressInput is a partial transfer update; nil fields are left as is.
type MediaProgressInput struct {
	DeclaredPhotos       *int
	DeclaredVideos       *int
	DeclaredStorageGB    *float64
	PhotosTransferred    *int
	VideosTransferred    *int
	TransferredStorageGB *float64
}

// SnapshotInput is one destination capacity reading.
type SnapshotInput struct {
	StorageGB float64
	Day       int
	Baseline  bool
}

// SnapshotResult reports the stored reading and whether it was new.
type SnapshotResult struct {
	Snapshot models.StorageSnapshot `json:"snapshot"`
	Created  bool                   `json:"created"`
}

// SnapshotPage is one page of the snapshot audit trail.
type SnapshotPage struct {
	Items      []models.StorageSnapshot `json:"items"`
	NextCursor string                   `json:"next_cursor,omitempty"`
}

// AdoptionResult is the adoption record after an observation.
type AdoptionResult struct {
	Adoption models.AppAdoption `json:"adoption"`
	Changed  bool               `json:"changed"`
}

// PaymentResult is the payment setup after a lifecycle event.
type PaymentResult struct {
	Setup    models.MinorPaymentSetup `json:"setup"`
	Changed  bool                     `json:"changed"`
	Adoption *models.AppAdoption      `json:"adoption,omitempty"`
}

// DailySummary is the day-aware merged view presented to the controller.
type DailySummary struct {
	MigrationID        uuid.UUID               `json:"migration_id"`
	Day                int                     `json:"day"`
	RawPercent         float64                 `json:"raw_percent"`
	ReportedPercent    float64                 `json:"reported_percent"`
	ExpectedPercent    float64                 `json:"expected_percent"`
	Overridden         bool                    `json:"overridden"`
	Status             enums.OverallStatus     `json:"status"`
	Milestone          string                  `json:"milestone"`
	PhotosTransferred  int                     `json:"photos_transferred"`
	VideosTransferred  int                     `json:"videos_transferred"`
	StorageUsedGB      float64                 `json:"storage_used_gb"`
	TransferStatus     enums.TransferStatus    `json:"transfer_status"`
	AdoptionConfigured int                     `json:"adoption_configured"`
	AdoptionTotal      int                     `json:"adoption_total"`
	Adoption           []adoption.ServiceCount `json:"adoption"`
	GeneratedAt        time.Time               `json:"generated_at"`
}

// OverallStatus is the headline state of a migration.
type OverallStatus struct {
	MigrationID     uuid.UUID               `json:"migration_id"`
	SubjectName     string                  `json:"subject_name"`
	Phase           enums.MigrationPhase    `json:"phase"`
	Status          enums.OverallStatus     `json:"status"`
	Completed       bool                    `json:"completed"`
	CurrentDay      int                     `json:"current_day"`
	OverallProgress float64                 `json:"overall_progress"`
	TransferStatus  enums.TransferStatus    `json:"transfer_status"`
	Adoption        []adoption.ServiceCount `json:"adoption"`
	StartedAt       time.Time               `json:"started_at"`
	CompletedAt     *time.Time              `json:"completed_at,omitempty"`
}

// BaselineStatus tells the web agent whether it can stop polling capacity.
type BaselineStatus struct {
	MigrationID       uuid.UUID `json:"migration_id"`
	BaselineGB        *float64  `json:"baseline_gb"`
	TargetGB          float64   `json:"target_gb"`
	LatestGB          *float64  `json:"latest_gb,omitempty"`
	LatestRawPercent  float64   `json:"latest_raw_percent"`
	TransferCompleted bool      `json:"transfer_completed"`
}
