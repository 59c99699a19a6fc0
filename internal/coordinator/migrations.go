package coordinator

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/angelmondragon/devicemove-backend/internal/adoption"
	"github.com/angelmondragon/devicemove-backend/internal/locks"
	"github.com/angelmondragon/devicemove-backend/internal/reports"
	"github.com/angelmondragon/devicemove-backend/internal/store"
	"github.com/angelmondragon/devicemove-backend/internal/timeline"
	"github.com/angelmondragon/devicemove-backend/internal/transfer"
	"github.com/angelmondragon/devicemove-backend/pkg/db/models"
	"github.com/angelmondragon/devicemove-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/devicemove-backend/pkg/errors"
)

func (s *service) InitializeMigration(ctx context.Context, input InitializeInput) (_ *models.Migration, err error) {
	ctx, done := s.begin(ctx, "initialize_migration", uuid.Nil)
	defer func() { done(err) }()

	subject := strings.TrimSpace(input.SubjectName)
	if subject == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "subject name is required")
	}
	if input.YearsOnPriorPlatform < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "years on prior platform must be non-negative")
	}

	release, err := s.locker.Acquire(ctx, locks.GlobalKey)
	if err != nil {
		return nil, err
	}
	defer release()

	m := &models.Migration{
		ID:                   uuid.New(),
		SubjectName:          subject,
		YearsOnPriorPlatform: input.YearsOnPriorPlatform,
		StartedAt:            s.timestamp(),
		Phase:                enums.MigrationPhaseInitialization,
	}
	err = s.store.WithTx(ctx, func(tx *store.Store) error {
		active, err := tx.IncompleteMigrations(ctx)
		if err != nil {
			return err
		}
		if len(active) > 0 {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "another migration is already active").
				WithDetails(map[string]any{"active_migration_id": active[0].ID.String()})
		}
		if err := tx.Create(ctx, m); err != nil {
			return err
		}
		return tx.Create(ctx, transfer.New(m.ID))
	})
	if err != nil {
		return nil, err
	}

	s.logg.Info(s.logg.WithMigrationID(ctx, m.ID.String()), "migration initialized")
	return s.store.Migration(ctx, m.ID)
}

func (s *service) MostRecentIncomplete(ctx context.Context) (_ *models.Migration, err error) {
	ctx, done := s.begin(ctx, "most_recent_incomplete", uuid.Nil)
	defer func() { done(err) }()
	return s.store.MostRecentIncomplete(ctx)
}

func (s *service) RecordSourceInventory(ctx context.Context, migrationID uuid.UUID, input InventoryInput) (_ *models.Migration, err error) {
	ctx, done := s.begin(ctx, "record_source_inventory", migrationID)
	defer func() { done(err) }()

	if input.Photos < 0 || input.Videos < 0 || input.StorageGB < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "inventory counts and storage must be non-negative").
			WithDetails(map[string]any{"photos": input.Photos, "videos": input.Videos, "storage_gb": input.StorageGB})
	}

	err = s.write(ctx, migrationID, func(tx *store.Store, m *models.Migration) error {
		photos, videos, storage := input.Photos, input.Videos, input.StorageGB
		if err := tx.MergeUpdate(ctx, ref(m), store.MigrationPatch{
			DeclaredPhotoCount: &photos,
			DeclaredVideoCount: &videos,
			DeclaredStorageGB:  &storage,
		}); err != nil {
			return err
		}
		_, err := s.mergeTransfer(ctx, tx, m.ID, store.MediaTransferPatch{
			DeclaredPhotos:    &photos,
			DeclaredVideos:    &videos,
			DeclaredStorageGB: &storage,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.store.Migration(ctx, migrationID)
}

func (s *service) GetOverallStatus(ctx context.Context, migrationID uuid.UUID) (_ *OverallStatus, err error) {
	ctx, done := s.begin(ctx, "get_overall_status", migrationID)
	defer func() { done(err) }()

	m, err := s.migration(ctx, migrationID)
	if err != nil {
		return nil, err
	}
	return s.overallStatus(ctx, s.store, m)
}

func (s *service) overallStatus(ctx context.Context, st *store.Store, m *models.Migration) (*OverallStatus, error) {
	rows, err := st.Adoptions(ctx, m.ID)
	if err != nil {
		return nil, err
	}
	transferStatus := enums.TransferStatusNotStarted
	t, err := st.Transfer(ctx, m.ID)
	switch {
	case err == nil:
		transferStatus = t.OverallStatus
	case !pkgerrors.Is(err, pkgerrors.CodeNotFound):
		return nil, err
	}

	out := &OverallStatus{
		MigrationID:     m.ID,
		SubjectName:     m.SubjectName,
		Phase:           m.Phase,
		Completed:       m.IsCompleted(),
		CurrentDay:      m.DayNumber(s.timestamp()),
		OverallProgress: m.OverallProgress,
		TransferStatus:  transferStatus,
		Adoption:        adoption.Counts(rows, s.services),
		StartedAt:       m.StartedAt,
		CompletedAt:     m.CompletedAt,
	}
	switch {
	case out.Completed:
		out.Status = enums.OverallStatusSuccess
		out.OverallProgress = 100
		out.TransferStatus = enums.TransferStatusCompleted
		for i := range out.Adoption {
			out.Adoption[i].Configured = out.Adoption[i].Total
		}
	case m.OverallProgress > 0:
		out.Status = enums.OverallStatusInProgress
	default:
		out.Status = enums.OverallStatusPending
	}
	return out, nil
}

func (s *service) CompleteMigration(ctx context.Context, migrationID uuid.UUID) (_ *OverallStatus, err error) {
	ctx, done := s.begin(ctx, "complete_migration", migrationID)
	defer func() { done(err) }()

	err = s.write(ctx, migrationID, func(tx *store.Store, m *models.Migration) error {
		at := s.timestamp()
		phase := enums.MigrationPhaseCompleted
		full := 100.0
		if err := tx.MergeUpdate(ctx, ref(m), store.MigrationPatch{
			CompletedAt:     &at,
			Phase:           &phase,
			OverallProgress: &full,
		}); err != nil {
			return err
		}
		_, err := s.regenerateRollup(ctx, tx, m, timeline.FinalDay, true)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logg.Info(ctx, "migration completed")
	m, err := s.store.Migration(ctx, migrationID)
	if err != nil {
		return nil, err
	}
	return s.overallStatus(ctx, s.store, m)
}

func (s *service) Baseline(ctx context.Context, migrationID uuid.UUID) (_ *BaselineStatus, err error) {
	ctx, done := s.begin(ctx, "baseline", migrationID)
	defer func() { done(err) }()

	m, err := s.migration(ctx, migrationID)
	if err != nil {
		return nil, err
	}
	snaps, err := s.store.Snapshots(ctx, migrationID)
	if err != nil {
		return nil, err
	}

	out := &BaselineStatus{
		MigrationID: m.ID,
		BaselineGB:  m.BaselineStorageGB,
		TargetGB:    m.DeclaredStorageGB,
	}
	if latest := latestReading(snaps, timeline.FinalDay); latest != nil {
		gb := latest.StorageUsedGB
		out.LatestGB = &gb
		out.LatestRawPercent = latest.PercentComplete
	}
	t, err := s.store.Transfer(ctx, migrationID)
	switch {
	case err == nil:
		out.TransferCompleted = t.OverallStatus == enums.TransferStatusCompleted
	case !pkgerrors.Is(err, pkgerrors.CodeNotFound):
		return nil, err
	}
	if m.IsCompleted() || out.LatestRawPercent >= 100 {
		out.TransferCompleted = true
	}
	return out, nil
}

func (s *service) GenerateReport(ctx context.Context, migrationID uuid.UUID, detail enums.DetailLevel) (_ *reports.Report, err error) {
	ctx, done := s.begin(ctx, "generate_report", migrationID)
	defer func() { done(err) }()

	if migrationID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "migration id is required")
	}
	return s.reports.Generate(ctx, migrationID, detail)
}

func normalizeService(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
