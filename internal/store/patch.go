package store

import (
	"time"

	"github.com/angelmondragon/devicemove-backend/pkg/db/models"
	"github.com/angelmondragon/devicemove-backend/pkg/enums"
)

// Patch is a partial update. Fields returns only the columns the caller
// supplied; omitted columns are never written.
type Patch interface {
	Kind() models.Kind
	Fields() map[string]any
}

// Fields is an untyped patch, validated against the column allow-list.
type Fields struct {
	EntityKind models.Kind
	Values     map[string]any
}

func (f Fields) Kind() models.Kind { return f.EntityKind }

func (f Fields) Fields() map[string]any {
	out := make(map[string]any, len(f.Values))
	for k, v := range f.Values {
		out[k] = v
	}
	return out
}

type fieldSet map[string]any

// MigrationPatch merges into a migrations row.
type MigrationPatch struct {
	CompletedAt        *time.Time
	Phase              *enums.MigrationPhase
	OverallProgress    *float64
	DeclaredPhotoCount *int
	DeclaredVideoCount *int
	DeclaredStorageGB  *float64
	BaselineStorageGB  *float64
}

func (MigrationPatch) Kind() models.Kind { return models.KindMigration }

func (p MigrationPatch) Fields() map[string]any {
	f := fieldSet{}
	if p.CompletedAt != nil {
		f["completed_at"] = *p.CompletedAt
	}
	if p.Phase != nil {
		f["phase"] = string(*p.Phase)
	}
	if p.OverallProgress != nil {
		f["overall_progress"] = *p.OverallProgress
	}
	if p.DeclaredPhotoCount != nil {
		f["declared_photo_count"] = *p.DeclaredPhotoCount
	}
	if p.DeclaredVideoCount != nil {
		f["declared_video_count"] = *p.DeclaredVideoCount
	}
	if p.DeclaredStorageGB != nil {
		f["declared_storage_gb"] = *p.DeclaredStorageGB
	}
	if p.BaselineStorageGB != nil {
		f["baseline_storage_gb"] = *p.BaselineStorageGB
	}
	return f
}

// FamilyMemberPatch only annotates; identity fields are immutable.
type FamilyMemberPatch struct {
	Notes *string
}

func (FamilyMemberPatch) Kind() models.Kind { return models.KindFamilyMember }

func (p FamilyMemberPatch) Fields() map[string]any {
	f := fieldSet{}
	if p.Notes != nil {
		f["notes"] = *p.Notes
	}
	return f
}

// AppAdoptionPatch merges into an app_adoptions row.
type AppAdoptionPatch struct {
	Status         *enums.AdoptionStatus
	InvitedAt      *time.Time
	InstalledAt    *time.Time
	ConfiguredAt   *time.Time
	LastObservedAt *time.Time
}

func (AppAdoptionPatch) Kind() models.Kind { return models.KindAppAdoption }

func (p AppAdoptionPatch) Fields() map[string]any {
	f := fieldSet{}
	if p.Status != nil {
		f["status"] = string(*p.Status)
	}
	putTime(f, "invited_at", p.InvitedAt)
	putTime(f, "installed_at", p.InstalledAt)
	putTime(f, "configured_at", p.ConfiguredAt)
	putTime(f, "last_observed_at", p.LastObservedAt)
	return f
}

// MediaTransferPatch merges into a media_transfers row.
type MediaTransferPatch struct {
	DeclaredPhotos        *int
	DeclaredVideos        *int
	DeclaredStorageGB     *float64
	PhotosTransferred     *int
	VideosTransferred     *int
	TransferredStorageGB  *float64
	PhotoStatus           *enums.TransferStatus
	VideoStatus           *enums.TransferStatus
	OverallStatus         *enums.TransferStatus
	StartedAt             *time.Time
	VisibleDay            *int
	ExpectedCompletionDay *int
	CompletedAt           *time.Time
}

func (MediaTransferPatch) Kind() models.Kind { return models.KindMediaTransfer }

func (p MediaTransferPatch) Fields() map[string]any {
	f := fieldSet{}
	putInt(f, "declared_photos", p.DeclaredPhotos)
	putInt(f, "declared_videos", p.DeclaredVideos)
	putFloat(f, "declared_storage_gb", p.DeclaredStorageGB)
	putInt(f, "photos_transferred", p.PhotosTransferred)
	putInt(f, "videos_transferred", p.VideosTransferred)
	putFloat(f, "transferred_storage_gb", p.TransferredStorageGB)
	if p.PhotoStatus != nil {
		f["photo_status"] = string(*p.PhotoStatus)
	}
	if p.VideoStatus != nil {
		f["video_status"] = string(*p.VideoStatus)
	}
	if p.OverallStatus != nil {
		f["overall_status"] = string(*p.OverallStatus)
	}
	putTime(f, "started_at", p.StartedAt)
	putInt(f, "visible_day", p.VisibleDay)
	putInt(f, "expected_completion_day", p.ExpectedCompletionDay)
	putTime(f, "completed_at", p.CompletedAt)
	return f
}

// MinorPaymentSetupPatch merges into a minor_payment_setups row.
type MinorPaymentSetupPatch struct {
	NeedsAccount     *bool
	AccountCreatedAt *time.Time
	CardOrderedAt    *time.Time
	CardArrivedAt    *time.Time
	ActivatedAt      *time.Time
	CardLastFour     *string
	Completed        *bool
}

func (MinorPaymentSetupPatch) Kind() models.Kind { return models.KindMinorPaymentSetup }

func (p MinorPaymentSetupPatch) Fields() map[string]any {
	f := fieldSet{}
	if p.NeedsAccount != nil {
		f["needs_account"] = *p.NeedsAccount
	}
	putTime(f, "account_created_at", p.AccountCreatedAt)
	putTime(f, "card_ordered_at", p.CardOrderedAt)
	putTime(f, "card_arrived_at", p.CardArrivedAt)
	putTime(f, "activated_at", p.ActivatedAt)
	if p.CardLastFour != nil {
		f["card_last_four"] = *p.CardLastFour
	}
	if p.Completed != nil {
		f["completed"] = *p.Completed
	}
	return f
}

func putTime(f fieldSet, column string, v *time.Time) {
	if v != nil {
		f[column] = *v
	}
}

func putInt(f fieldSet, column string, v *int) {
	if v != nil {
		f[column] = *v
	}
}

func putFloat(f fieldSet, column string, v *float64) {
	if v != nil {
		f[column] = *v
	}
}
