package coordinator

import (
	"context"

	"github.com/google/uuid"

	"github.com/angelmondragon/devicemove-backend/internal/progress"
	"github.com/angelmondragon/devicemove-backend/internal/store"
	"github.com/angelmondragon/devicemove-backend/internal/timeline"
	"github.com/angelmondragon/devicemove-backend/internal/transfer"
	"github.com/angelmondragon/devicemove-backend/pkg/db/models"
	"github.com/angelmondragon/devicemove-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/devicemove-backend/pkg/errors"
	"github.com/angelmondragon/devicemove-backend/pkg/pagination"
)

func (s *service) RecordTransferStart(ctx context.Context, migrationID uuid.UUID) (_ *models.MediaTransfer, err error) {
	ctx, done := s.begin(ctx, "record_transfer_start", migrationID)
	defer func() { done(err) }()

	var out *models.MediaTransfer
	err = s.write(ctx, migrationID, func(tx *store.Store, m *models.Migration) error {
		t, err := s.transferFor(ctx, tx, m.ID)
		if err != nil {
			return err
		}
		if out, err = s.applyTransfer(ctx, tx, t, transfer.Start(*t, s.policy, s.timestamp())); err != nil {
			return err
		}
		return s.advancePhase(ctx, tx, m, enums.MigrationPhaseMediaTransfer)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *service) UpdateMediaProgress(ctx context.Context, migrationID uuid.UUID, input MediaProgressInput) (_ *models.MediaTransfer, err error) {
	ctx, done := s.begin(ctx, "update_media_progress", migrationID)
	defer func() { done(err) }()

	if err := validateMediaProgress(input); err != nil {
		return nil, err
	}

	var out *models.MediaTransfer
	err = s.write(ctx, migrationID, func(tx *store.Store, m *models.Migration) error {
		declared := store.MigrationPatch{
			DeclaredPhotoCount: input.DeclaredPhotos,
			DeclaredVideoCount: input.DeclaredVideos,
			DeclaredStorageGB:  input.DeclaredStorageGB,
		}
		if len(declared.Fields()) > 0 {
			if err := tx.MergeUpdate(ctx, ref(m), declared); err != nil {
				return err
			}
		}
		var err error
		out, err = s.mergeTransfer(ctx, tx, m.ID, store.MediaTransferPatch{
			DeclaredPhotos:       input.DeclaredPhotos,
			DeclaredVideos:       input.DeclaredVideos,
			DeclaredStorageGB:    input.DeclaredStorageGB,
			PhotosTransferred:    input.PhotosTransferred,
			VideosTransferred:    input.VideosTransferred,
			TransferredStorageGB: input.TransferredStorageGB,
		})
		if err != nil {
			return err
		}
		if out.OverallStatus == enums.TransferStatusCompleted {
			return s.advancePhase(ctx, tx, m, enums.MigrationPhaseValidation)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func validateMediaProgress(input MediaProgressInput) error {
	ints := map[string]*int{
		"declared_photos":    input.DeclaredPhotos,
		"declared_videos":    input.DeclaredVideos,
		"photos_transferred": input.PhotosTransferred,
		"videos_transferred": input.VideosTransferred,
	}
	for field, v := range ints {
		if v != nil && *v < 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, field+" must be non-negative").WithDetails(map[string]any{"field": field})
		}
	}
	floats := map[string]*float64{
		"declared_storage_gb":    input.DeclaredStorageGB,
		"transferred_storage_gb": input.TransferredStorageGB,
	}
	for field, v := range floats {
		if v != nil && *v < 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, field+" must be non-negative").WithDetails(map[string]any{"field": field})
		}
	}
	return nil
}

func (s *service) transferFor(ctx context.Context, tx *store.Store, migrationID uuid.UUID) (*models.MediaTransfer, error) {
	t, err := tx.Transfer(ctx, migrationID)
	if pkgerrors.Is(err, pkgerrors.CodeNotFound) {
		t = transfer.New(migrationID)
		err = tx.Create(ctx, t)
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

// mergeTransfer applies patch and the statuses it implies in one merge.
func (s *service) mergeTransfer(ctx context.Context, tx *store.Store, migrationID uuid.UUID, patch store.MediaTransferPatch) (*models.MediaTransfer, error) {
	t, err := s.transferFor(ctx, tx, migrationID)
	if err != nil {
		return nil, err
	}
	return s.applyTransfer(ctx, tx, t, patch)
}

func (s *service) applyTransfer(ctx context.Context, tx *store.Store, t *models.MediaTransfer, patch store.MediaTransferPatch) (*models.MediaTransfer, error) {
	status := transfer.Recompute(transfer.Apply(*t, patch), s.timestamp())
	if err := tx.MergeUpdate(ctx, ref(t), transfer.Merge(patch, status)); err != nil {
		return nil, err
	}
	return tx.Transfer(ctx, t.MigrationID)
}

func (s *service) RecordStorageSnapshot(ctx context.Context, migrationID uuid.UUID, input SnapshotInput) (_ *SnapshotResult, err error) {
	ctx, done := s.begin(ctx, "record_storage_snapshot", migrationID)
	defer func() { done(err) }()

	if err := progress.Validate(input.StorageGB); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid storage reading")
	}
	if err := timeline.ValidateDay(input.Day); err != nil {
		return nil, err
	}

	var result *SnapshotResult
	err = s.write(ctx, migrationID, func(tx *store.Store, m *models.Migration) error {
		snaps, err := tx.Snapshots(ctx, m.ID)
		if err != nil {
			return err
		}
		if input.Baseline {
			result, err = s.recordBaseline(ctx, tx, m, snaps, input)
		} else {
			result, err = s.recordReading(ctx, tx, m, snaps, input)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *service) recordBaseline(ctx context.Context, tx *store.Store, m *models.Migration, snaps []models.StorageSnapshot, input SnapshotInput) (*SnapshotResult, error) {
	for _, snap := range snaps {
		if !snap.IsBaseline {
			continue
		}
		if snap.StorageUsedGB == input.StorageGB {
			return &SnapshotResult{Snapshot: snap}, nil
		}
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "baseline already recorded with a different capacity").
			WithDetails(map[string]any{"baseline_gb": snap.StorageUsedGB, "requested_gb": input.StorageGB})
	}

	snap := &models.StorageSnapshot{
		ID:            uuid.New(),
		MigrationID:   m.ID,
		DayNumber:     input.Day,
		Sequence:      nextSequence(snaps, input.Day),
		StorageUsedGB: input.StorageGB,
		IsBaseline:    true,
		ObservedAt:    s.timestamp(),
	}
	if err := tx.Create(ctx, snap); err != nil {
		return nil, err
	}
	baseline := input.StorageGB
	if err := tx.MergeUpdate(ctx, ref(m), store.MigrationPatch{BaselineStorageGB: &baseline}); err != nil {
		return nil, err
	}
	return &SnapshotResult{Snapshot: *snap, Created: true}, nil
}

func (s *service) recordReading(ctx context.Context, tx *store.Store, m *models.Migration, snaps []models.StorageSnapshot, input SnapshotInput) (*SnapshotResult, error) {
	if m.BaselineStorageGB == nil {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "baseline capacity must be recorded before progress readings")
	}
	if m.DeclaredStorageGB <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "declared source storage must be recorded before progress readings")
	}

	if last := lastReadingOfDay(snaps, input.Day); last != nil && last.StorageUsedGB == input.StorageGB {
		return &SnapshotResult{Snapshot: *last}, nil
	}

	baseline := *m.BaselineStorageGB
	pct := progress.Percent(baseline, input.StorageGB, m.DeclaredStorageGB)
	est := progress.EstimateItems(m.DeclaredPhotoCount, m.DeclaredVideoCount, pct)
	snap := &models.StorageSnapshot{
		ID:              uuid.New(),
		MigrationID:     m.ID,
		DayNumber:       input.Day,
		Sequence:        nextSequence(snaps, input.Day),
		StorageUsedGB:   input.StorageGB,
		GrowthGB:        progress.Growth(baseline, input.StorageGB),
		PercentComplete: pct,
		EstimatedPhotos: est.Photos,
		EstimatedVideos: est.Videos,
		ObservedAt:      s.timestamp(),
	}
	if err := tx.Create(ctx, snap); err != nil {
		return nil, err
	}

	if pct > m.OverallProgress {
		if err := tx.MergeUpdate(ctx, ref(m), store.MigrationPatch{OverallProgress: &pct}); err != nil {
			return nil, err
		}
	}
	if snap.Sequence > 0 {
		s.logg.Info(s.logg.WithFields(ctx, map[string]any{"day": input.Day, "sequence": snap.Sequence}), "storage reading corrected")
	}
	return &SnapshotResult{Snapshot: *snap, Created: true}, nil
}

func (s *service) ListSnapshots(ctx context.Context, migrationID uuid.UUID, params pagination.Params) (_ *SnapshotPage, err error) {
	ctx, done := s.begin(ctx, "list_snapshots", migrationID)
	defer func() { done(err) }()

	if _, err := s.migration(ctx, migrationID); err != nil {
		return nil, err
	}
	items, next, err := s.store.SnapshotPage(ctx, migrationID, params)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []models.StorageSnapshot{}
	}
	return &SnapshotPage{Items: items, NextCursor: next}, nil
}

func nextSequence(snaps []models.StorageSnapshot, day int) int {
	next := 0
	for _, snap := range snaps {
		if snap.DayNumber == day && snap.Sequence >= next {
			next = snap.Sequence + 1
		}
	}
	return next
}

func lastReadingOfDay(snaps []models.StorageSnapshot, day int) *models.StorageSnapshot {
	var last *models.StorageSnapshot
	for i := range snaps {
		snap := &snaps[i]
		if snap.IsBaseline || snap.DayNumber != day {
			continue
		}
		if last == nil || snap.Sequence > last.Sequence {
			last = snap
		}
	}
	return last
}

// latestReading returns the highest (day, sequence) non-baseline reading on
// or before day.
func latestReading(snaps []models.StorageSnapshot, day int) *models.StorageSnapshot {
	var latest *models.StorageSnapshot
	for i := range snaps {
		snap := &snaps[i]
		if snap.IsBaseline || snap.DayNumber > day {
			continue
		}
		if latest == nil || snap.DayNumber > latest.DayNumber ||
			(snap.DayNumber == latest.DayNumber && snap.Sequence > latest.Sequence) {
			latest = snap
		}
	}
	return latest
}

// rawPercent is the running maximum of raw readings on or before day.
func rawPercent(snaps []models.StorageSnapshot, day int) float64 {
	raw := 0.0
	for _, snap := range snaps {
		if !snap.IsBaseline && snap.DayNumber <= day && snap.PercentComplete > raw {
			raw = snap.PercentComplete
		}
	}
	return raw
}
