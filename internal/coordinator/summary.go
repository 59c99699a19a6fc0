package coordinator

import (
	"context"
	"strconv"

	"github.com/google/uuid"

	"github.com/angelmondragon/devicemove-backend/internal/adoption"
	"github.com/angelmondragon/devicemove-backend/internal/store"
	"github.com/angelmondragon/devicemove-backend/internal/timeline"
	"github.com/angelmondragon/devicemove-backend/pkg/db/models"
	"github.com/angelmondragon/devicemove-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/devicemove-backend/pkg/errors"
)

// GetDailySummary regenerates and returns the rollup for day. Completed
// migrations stay readable.
func (s *service) GetDailySummary(ctx context.Context, migrationID uuid.UUID, day int) (_ *DailySummary, err error) {
	ctx, done := s.begin(ctx, "get_daily_summary", migrationID)
	defer func() { done(err) }()

	if err := timeline.ValidateDay(day); err != nil {
		return nil, err
	}
	if migrationID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "migration id is required")
	}

	release, err := s.locker.Acquire(ctx, migrationID.String())
	if err != nil {
		return nil, err
	}
	defer release()

	var summary *DailySummary
	err = s.store.WithTx(ctx, func(tx *store.Store) error {
		m, err := tx.Migration(ctx, migrationID)
		if err != nil {
			return err
		}
		summary, err = s.regenerateRollup(ctx, tx, m, day, m.IsCompleted() && day == timeline.FinalDay)
		return err
	})
	if err != nil {
		return nil, err
	}
	return summary, nil
}

// regenerateRollup upserts the rollup for day, then refreshes any later
// stored rollup that would otherwise report less than an earlier day.
// closing forces the completion outcome regardless of measurements.
func (s *service) regenerateRollup(ctx context.Context, tx *store.Store, m *models.Migration, day int, closing bool) (*DailySummary, error) {
	summary, err := s.rollupDay(ctx, tx, m, day, closing)
	if err != nil {
		return nil, err
	}
	rollups, err := tx.DailyRollups(ctx, m.ID)
	if err != nil {
		return nil, err
	}
	floor := summary.ReportedPercent
	for _, r := range rollups {
		if r.DayNumber <= day {
			continue
		}
		if r.ReportedPercent >= floor {
			floor = r.ReportedPercent
			continue
		}
		refreshed, err := s.rollupDay(ctx, tx, m, r.DayNumber, m.IsCompleted() && r.DayNumber == timeline.FinalDay)
		if err != nil {
			return nil, err
		}
		floor = refreshed.ReportedPercent
	}
	return summary, nil
}

func (s *service) rollupDay(ctx context.Context, tx *store.Store, m *models.Migration, day int, closing bool) (*DailySummary, error) {
	snaps, err := tx.Snapshots(ctx, m.ID)
	if err != nil {
		return nil, err
	}
	rollups, err := tx.DailyRollups(ctx, m.ID)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Adoptions(ctx, m.ID)
	if err != nil {
		return nil, err
	}
	var t *models.MediaTransfer
	switch loaded, err := tx.Transfer(ctx, m.ID); {
	case err == nil:
		t = loaded
	case !pkgerrors.Is(err, pkgerrors.CodeNotFound):
		return nil, err
	}

	raw := rawPercent(snaps, day)
	previous := 0.0
	for _, r := range rollups {
		if r.DayNumber < day && r.ReportedPercent > previous {
			previous = r.ReportedPercent
		}
	}

	var outcome timeline.Outcome
	if closing {
		outcome = timeline.Completed(raw)
	} else if outcome, err = s.policy.Report(day, raw, previous); err != nil {
		return nil, err
	}

	summary := &DailySummary{
		MigrationID:     m.ID,
		Day:             day,
		RawPercent:      outcome.Raw,
		ReportedPercent: outcome.Reported,
		ExpectedPercent: outcome.Expected,
		Overridden:      outcome.Overridden,
		Status:          outcome.Status,
		TransferStatus:  enums.TransferStatusNotStarted,
		Adoption:        adoption.Counts(rows, s.services),
		GeneratedAt:     s.timestamp(),
	}
	summary.AdoptionConfigured, summary.AdoptionTotal = adoption.Totals(rows)

	latest := latestReading(snaps, day)
	if latest != nil {
		summary.StorageUsedGB = latest.StorageUsedGB
		summary.PhotosTransferred = latest.EstimatedPhotos
		summary.VideosTransferred = latest.EstimatedVideos
	}
	if t != nil {
		summary.TransferStatus = t.OverallStatus
		if t.PhotosTransferred > summary.PhotosTransferred {
			summary.PhotosTransferred = t.PhotosTransferred
		}
		if t.VideosTransferred > summary.VideosTransferred {
			summary.VideosTransferred = t.VideosTransferred
		}
	}
	if outcome.Status == enums.OverallStatusSuccess {
		summary.TransferStatus = enums.TransferStatusCompleted
		summary.PhotosTransferred = m.DeclaredPhotoCount
		summary.VideosTransferred = m.DeclaredVideoCount
	}

	summary.Milestone, err = s.policy.Milestone(day, timeline.Facts{
		Percent:            outcome.Reported,
		TransferStarted:    t != nil && t.StartedAt != nil,
		PhotosTransferred:  summary.PhotosTransferred,
		VideosTransferred:  summary.VideosTransferred,
		AdoptionConfigured: summary.AdoptionConfigured,
		AdoptionTotal:      summary.AdoptionTotal,
	})
	if err != nil {
		return nil, err
	}

	if _, err := tx.UpsertDailyProgress(ctx, &models.DailyProgress{
		MigrationID:        m.ID,
		DayNumber:          day,
		RawPercent:         summary.RawPercent,
		ReportedPercent:    summary.ReportedPercent,
		ExpectedPercent:    summary.ExpectedPercent,
		Overridden:         summary.Overridden,
		PhotosTransferred:  summary.PhotosTransferred,
		VideosTransferred:  summary.VideosTransferred,
		StorageUsedGB:      summary.StorageUsedGB,
		AdoptionConfigured: summary.AdoptionConfigured,
		AdoptionTotal:      summary.AdoptionTotal,
		Status:             summary.Status,
		Milestone:          summary.Milestone,
		GeneratedAt:        summary.GeneratedAt,
	}); err != nil {
		return nil, err
	}

	if !m.IsCompleted() && summary.ReportedPercent > m.OverallProgress {
		reported := summary.ReportedPercent
		if err := tx.MergeUpdate(ctx, ref(m), store.MigrationPatch{OverallProgress: &reported}); err != nil {
			return nil, err
		}
		m.OverallProgress = reported
	}
	s.metrics.SetReportedPercent(strconv.Itoa(day), summary.ReportedPercent)
	return summary, nil
}
