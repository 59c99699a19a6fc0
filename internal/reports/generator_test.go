package reports_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/devicemove-backend/internal/reports"
	"github.com/angelmondragon/devicemove-backend/internal/store"
	"github.com/angelmondragon/devicemove-backend/internal/store/storetest"
	"github.com/angelmondragon/devicemove-backend/internal/timeline"
	"github.com/angelmondragon/devicemove-backend/pkg/config"
	"github.com/angelmondragon/devicemove-backend/pkg/db/models"
	"github.com/angelmondragon/devicemove-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/devicemove-backend/pkg/errors"
)

var start = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

type fixture struct {
	store     *store.Store
	migration *models.Migration
	teen      *models.FamilyMember
}

func seed(t *testing.T) fixture {
	t.Helper()
	ctx := context.Background()
	s := storetest.New(t)

	m := &models.Migration{
		ID:                   uuid.New(),
		SubjectName:          "Ana",
		YearsOnPriorPlatform: 12,
		StartedAt:            start,
		Phase:                enums.MigrationPhaseFamilySetup,
		DeclaredPhotoCount:   38000,
		DeclaredVideoCount:   2000,
	}
	require.NoError(t, s.Create(ctx, m))

	age := 15
	teen := &models.FamilyMember{ID: uuid.New(), MigrationID: m.ID, Name: "Leo", NameKey: "leo", Role: enums.FamilyRoleMinorDependent, Age: &age}
	require.NoError(t, s.Create(ctx, teen))
	for _, svc := range []string{"whatsapp", "venmo"} {
		require.NoError(t, s.Create(ctx, &models.AppAdoption{
			ID: uuid.New(), MigrationID: m.ID, MemberID: teen.ID, Service: svc, Status: enums.AdoptionStatusInvited,
		}))
	}
	require.NoError(t, s.Create(ctx, &models.MinorPaymentSetup{ID: uuid.New(), MigrationID: m.ID, MemberID: teen.ID, NeedsAccount: true}))
	require.NoError(t, s.Create(ctx, &models.MediaTransfer{
		ID: uuid.New(), MigrationID: m.ID,
		DeclaredPhotos: 38000, DeclaredVideos: 2000, PhotosTransferred: 10644, VideosTransferred: 560,
		PhotoStatus: enums.TransferStatusInProgress, VideoStatus: enums.TransferStatusInProgress, OverallStatus: enums.TransferStatusInProgress,
	}))
	for i, gb := range []float64{14, 121} {
		require.NoError(t, s.Create(ctx, &models.StorageSnapshot{
			ID: uuid.New(), MigrationID: m.ID, DayNumber: 1 + 3*i, StorageUsedGB: gb, IsBaseline: i == 0,
			PercentComplete: []float64{0, 28.01}[i], ObservedAt: start.Add(time.Duration(i) * 72 * time.Hour),
		}))
	}
	_, err := s.UpsertDailyProgress(ctx, &models.DailyProgress{
		MigrationID: m.ID, DayNumber: 4, RawPercent: 28.01, ReportedPercent: 28.01, ExpectedPercent: 25,
		Status: enums.OverallStatusInProgress, GeneratedAt: start.Add(72 * time.Hour),
	})
	require.NoError(t, err)

	return fixture{store: s, migration: m, teen: teen}
}

func newGenerator(t *testing.T, s *store.Store, now time.Time) *reports.Generator {
	t.Helper()
	g, err := reports.NewGenerator(s, config.DefaultPolicy(), func() time.Time { return now })
	require.NoError(t, err)
	return g
}

func TestGenerateSummaryInFlight(t *testing.T) {
	f := seed(t)
	g := newGenerator(t, f.store, start.Add(80*time.Hour))

	r, err := g.Generate(context.Background(), f.migration.ID, enums.DetailLevelSummary)
	require.NoError(t, err)

	assert.False(t, r.Completed)
	assert.Equal(t, 4, r.CurrentDay)
	assert.InDelta(t, 28.01, r.Percent, 0.001)
	assert.Equal(t, enums.OverallStatusInProgress, r.Status)
	assert.Equal(t, enums.TransferStatusInProgress, r.Transfer.Status)
	assert.Equal(t, 10644, r.Transfer.PhotosTransferred)
	assert.Equal(t, 1, r.Payments.Total)
	assert.Zero(t, r.Payments.Activated)
	require.Len(t, r.Adoption, 3)
	assert.Equal(t, "whatsapp", r.Adoption[0].Service)
	assert.Equal(t, 1, r.Adoption[0].Total)
	assert.Zero(t, r.Adoption[0].Configured)
	assert.Empty(t, r.Members)
	assert.Empty(t, r.Snapshots)
	assert.NotEmpty(t, r.Lines)
}

func TestGenerateCompletedRendersFullSuccess(t *testing.T) {
	f := seed(t)
	ctx := context.Background()
	done := start.Add(150 * time.Hour)
	phase := enums.MigrationPhaseCompleted
	require.NoError(t, f.store.MergeUpdate(ctx, models.Ref{Kind: models.KindMigration, ID: f.migration.ID},
		store.MigrationPatch{CompletedAt: &done, Phase: &phase}))

	g := newGenerator(t, f.store, done)
	r, err := g.Generate(ctx, f.migration.ID, enums.DetailLevelFull)
	require.NoError(t, err)

	assert.True(t, r.Completed)
	assert.Equal(t, 100.0, r.Percent)
	assert.Equal(t, timeline.FinalDay, r.CurrentDay)
	assert.Equal(t, enums.OverallStatusSuccess, r.Status)
	assert.Equal(t, enums.TransferStatusCompleted, r.Transfer.Status)
	assert.Equal(t, 38000, r.Transfer.PhotosTransferred)
	assert.Equal(t, 2000, r.Transfer.VideosTransferred)
	for _, c := range r.Adoption {
		assert.Equal(t, c.Total, c.Configured, c.Service)
	}
	assert.Equal(t, r.Payments.Total, r.Payments.Activated)

	require.Len(t, r.Members, 1)
	assert.Equal(t, enums.PaymentEventActivated, r.Members[0].Payment)
	for _, s := range r.Members[0].Services {
		assert.Equal(t, enums.AdoptionStatusConfigured, s.Status)
	}

	require.Len(t, r.Snapshots, 2)
	assert.True(t, r.Snapshots[0].Baseline)
	assert.InDelta(t, 28.01, r.Snapshots[1].RawPercent, 0.001, "audit trail keeps raw values")
	assert.Contains(t, r.Lines[0], "100% success")
}

func TestGenerateErrors(t *testing.T) {
	f := seed(t)
	g := newGenerator(t, f.store, start)

	_, err := g.Generate(context.Background(), uuid.New(), enums.DetailLevelSummary)
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeNotFound))

	_, err = g.Generate(context.Background(), f.migration.ID, enums.DetailLevel("verbose"))
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeValidation))

	_, err = reports.NewGenerator(nil, config.DefaultPolicy(), nil)
	assert.Error(t, err)
}
