package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/angelmondragon/devicemove-backend/internal/coordinator"
	"github.com/angelmondragon/devicemove-backend/pkg/db/models"
	"github.com/angelmondragon/devicemove-backend/pkg/logger"
)

type activeMigrations interface {
	IncompleteMigrations(ctx context.Context) ([]models.Migration, error)
}

type summarizer interface {
	GetDailySummary(ctx context.Context, migrationID uuid.UUID, day int) (*coordinator.DailySummary, error)
}

// DailyRollupJobParams wire the rollup job.
type DailyRollupJobParams struct {
	Logger     *logger.Logger
	Migrations activeMigrations
	Summaries  summarizer
	Now        func() time.Time
}

// NewDailyRollupJob regenerates the daily rollups of every open migration
// up to its current day.
func NewDailyRollupJob(params DailyRollupJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Migrations == nil {
		return nil, fmt.Errorf("migration lister required")
	}
	if params.Summaries == nil {
		return nil, fmt.Errorf("summary source required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &dailyRollupJob{
		logg:       params.Logger,
		migrations: params.Migrations,
		summaries:  params.Summaries,
		now:        now,
	}, nil
}

type dailyRollupJob struct {
	logg       *logger.Logger
	migrations activeMigrations
	summaries  summarizer
	now        func() time.Time
}

func (j *dailyRollupJob) Name() string { return "daily-rollup" }

func (j *dailyRollupJob) Run(ctx context.Context) error {
	active, err := j.migrations.IncompleteMigrations(ctx)
	if err != nil {
		return fmt.Errorf("list open migrations: %w", err)
	}

	now := j.now()
	var errs error
	regenerated := 0
	for _, m := range active {
		mctx := j.logg.WithMigrationID(ctx, m.ID.String())
		current := m.DayNumber(now)
		for day := 1; day <= current; day++ {
			if _, err := j.summaries.GetDailySummary(mctx, m.ID, day); err != nil {
				errs = multierr.Append(errs, fmt.Errorf("migration %s day %d: %w", m.ID, day, err))
				continue
			}
			regenerated++
		}
	}

	j.logg.Info(j.logg.WithFields(ctx, map[string]any{
		"migrations": len(active),
		"rollups":    regenerated,
	}), "daily rollups regenerated")
	return errs
}
