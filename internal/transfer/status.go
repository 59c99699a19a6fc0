// Package transfer derives media transfer statuses from reported counts.
package transfer

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/devicemove-backend/internal/store"
	"github.com/angelmondragon/devicemove-backend/internal/timeline"
	"github.com/angelmondragon/devicemove-backend/pkg/db/models"
	"github.com/angelmondragon/devicemove-backend/pkg/enums"
)

// New returns an untouched transfer record for a migration.
func New(migrationID uuid.UUID) *models.MediaTransfer {
	return &models.MediaTransfer{
		ID:            uuid.New(),
		MigrationID:   migrationID,
		PhotoStatus:   enums.TransferStatusNotStarted,
		VideoStatus:   enums.TransferStatusNotStarted,
		OverallStatus: enums.TransferStatusNotStarted,
	}
}

// CategoryStatus derives one category's status from its counts. A category
// completes only once the source inventory is known; a known total of zero
// completes as soon as the transfer starts.
func CategoryStatus(declared, transferred int, started, inventoryKnown bool) enums.TransferStatus {
	switch {
	case started && inventoryKnown && transferred >= declared:
		return enums.TransferStatusCompleted
	case transferred > 0:
		return enums.TransferStatusInProgress
	case started:
		return enums.TransferStatusInitiated
	}
	return enums.TransferStatusNotStarted
}

// InventoryKnown reports whether source item counts have been declared.
// Zero declared photos and videos reads as not yet known.
func InventoryKnown(t models.MediaTransfer) bool {
	return t.DeclaredPhotos > 0 || t.DeclaredVideos > 0
}

// OverallStatus combines the two category statuses.
func OverallStatus(photo, video enums.TransferStatus) enums.TransferStatus {
	switch {
	case photo == enums.TransferStatusCompleted && video == enums.TransferStatusCompleted:
		return enums.TransferStatusCompleted
	case photo.Rank() >= enums.TransferStatusInProgress.Rank() || video.Rank() >= enums.TransferStatusInProgress.Rank():
		return enums.TransferStatusInProgress
	case photo == enums.TransferStatusInitiated || video == enums.TransferStatusInitiated:
		return enums.TransferStatusInitiated
	}
	return enums.TransferStatusNotStarted
}

// Start marks the transfer initiated and records the milestone days. The
// original start time survives repeated calls.
func Start(t models.MediaTransfer, policy timeline.Policy, at time.Time) store.MediaTransferPatch {
	started := t
	if started.StartedAt == nil {
		stamp := at
		started.StartedAt = &stamp
	}
	patch := Recompute(started, at)
	if t.StartedAt == nil {
		patch.StartedAt = started.StartedAt
	}
	visible := policy.VisibleDay()
	completion := policy.CompletionDay()
	patch.VisibleDay = &visible
	patch.ExpectedCompletionDay = &completion
	return patch
}

// Recompute returns the status columns implied by t's counts. Statuses never
// move backwards; completed_at is stamped the first time both categories
// finish.
func Recompute(t models.MediaTransfer, at time.Time) store.MediaTransferPatch {
	started := t.StartedAt != nil
	known := InventoryKnown(t)
	photo := t.PhotoStatus.Advance(CategoryStatus(t.DeclaredPhotos, t.PhotosTransferred, started, known))
	video := t.VideoStatus.Advance(CategoryStatus(t.DeclaredVideos, t.VideosTransferred, started, known))
	overall := t.OverallStatus.Advance(OverallStatus(photo, video))

	patch := store.MediaTransferPatch{}
	if photo != t.PhotoStatus {
		patch.PhotoStatus = &photo
	}
	if video != t.VideoStatus {
		patch.VideoStatus = &video
	}
	if overall != t.OverallStatus {
		patch.OverallStatus = &overall
	}
	if overall == enums.TransferStatusCompleted && t.CompletedAt == nil {
		stamp := at
		patch.CompletedAt = &stamp
	}
	return patch
}

// Apply overlays the non-nil fields of patch onto t.
func Apply(t models.MediaTransfer, patch store.MediaTransferPatch) models.MediaTransfer {
	if patch.DeclaredPhotos != nil {
		t.DeclaredPhotos = *patch.DeclaredPhotos
	}
	if patch.DeclaredVideos != nil {
		t.DeclaredVideos = *patch.DeclaredVideos
	}
	if patch.DeclaredStorageGB != nil {
		t.DeclaredStorageGB = *patch.DeclaredStorageGB
	}
	if patch.PhotosTransferred != nil {
		t.PhotosTransferred = *patch.PhotosTransferred
	}
	if patch.VideosTransferred != nil {
		t.VideosTransferred = *patch.VideosTransferred
	}
	if patch.TransferredStorageGB != nil {
		t.TransferredStorageGB = *patch.TransferredStorageGB
	}
	if patch.PhotoStatus != nil {
		t.PhotoStatus = *patch.PhotoStatus
	}
	if patch.VideoStatus != nil {
		t.VideoStatus = *patch.VideoStatus
	}
	if patch.OverallStatus != nil {
		t.OverallStatus = *patch.OverallStatus
	}
	if patch.StartedAt != nil {
		t.StartedAt = patch.StartedAt
	}
	if patch.VisibleDay != nil {
		t.VisibleDay = *patch.VisibleDay
	}
	if patch.ExpectedCompletionDay != nil {
		t.ExpectedCompletionDay = *patch.ExpectedCompletionDay
	}
	if patch.CompletedAt != nil {
		t.CompletedAt = patch.CompletedAt
	}
	return t
}

// Merge combines two patches; fields set in later win.
func Merge(base, later store.MediaTransferPatch) store.MediaTransferPatch {
	out := base
	if later.DeclaredPhotos != nil {
		out.DeclaredPhotos = later.DeclaredPhotos
	}
	if later.DeclaredVideos != nil {
		out.DeclaredVideos = later.DeclaredVideos
	}
	if later.DeclaredStorageGB != nil {
		out.DeclaredStorageGB = later.DeclaredStorageGB
	}
	if later.PhotosTransferred != nil {
		out.PhotosTransferred = later.PhotosTransferred
	}
	if later.VideosTransferred != nil {
		out.VideosTransferred = later.VideosTransferred
	}
	if later.TransferredStorageGB != nil {
		out.TransferredStorageGB = later.TransferredStorageGB
	}
	if later.PhotoStatus != nil {
		out.PhotoStatus = later.PhotoStatus
	}
	if later.VideoStatus != nil {
		out.VideoStatus = later.VideoStatus
	}
	if later.OverallStatus != nil {
		out.OverallStatus = later.OverallStatus
	}
	if later.StartedAt != nil {
		out.StartedAt = later.StartedAt
	}
	if later.VisibleDay != nil {
		out.VisibleDay = later.VisibleDay
	}
	if later.ExpectedCompletionDay != nil {
		out.ExpectedCompletionDay = later.ExpectedCompletionDay
	}
	if later.CompletedAt != nil {
		out.CompletedAt = later.CompletedAt
	}
	return out
}
