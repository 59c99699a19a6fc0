package transfer

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/devicemove-backend/internal/store"
	"github.com/angelmondragon/devicemove-backend/internal/timeline"
	"github.com/angelmondragon/devicemove-backend/pkg/config"
	"github.com/angelmondragon/devicemove-backend/pkg/enums"
)

var now = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func TestCategoryStatus(t *testing.T) {
	assert.Equal(t, enums.TransferStatusNotStarted, CategoryStatus(100, 0, false, true))
	assert.Equal(t, enums.TransferStatusInitiated, CategoryStatus(100, 0, true, true))
	assert.Equal(t, enums.TransferStatusInProgress, CategoryStatus(100, 40, true, true))
	assert.Equal(t, enums.TransferStatusCompleted, CategoryStatus(100, 100, true, true))
	assert.Equal(t, enums.TransferStatusCompleted, CategoryStatus(100, 120, true, true))
	assert.Equal(t, enums.TransferStatusNotStarted, CategoryStatus(0, 0, false, true))
}

func TestCategoryStatusWithUnknownInventory(t *testing.T) {
	assert.Equal(t, enums.TransferStatusInitiated, CategoryStatus(0, 0, true, false))
	assert.Equal(t, enums.TransferStatusInProgress, CategoryStatus(0, 10, true, false))
	assert.Equal(t, enums.TransferStatusCompleted, CategoryStatus(0, 0, true, true), "known empty category completes on start")
}

func TestRecomputeWaitsForDeclaredInventory(t *testing.T) {
	started := now
	record := *New(uuid.New())
	record.StartedAt = &started
	record.PhotoStatus = enums.TransferStatusInitiated
	record.VideoStatus = enums.TransferStatusInitiated
	record.OverallStatus = enums.TransferStatusInitiated
	record.PhotosTransferred = 10
	record.VideosTransferred = 1

	early := Apply(record, Recompute(record, now))
	assert.Equal(t, enums.TransferStatusInProgress, early.PhotoStatus)
	assert.Equal(t, enums.TransferStatusInProgress, early.VideoStatus)
	assert.Equal(t, enums.TransferStatusInProgress, early.OverallStatus)
	assert.Nil(t, early.CompletedAt)

	early.DeclaredPhotos = 38000
	early.DeclaredVideos = 2000
	declared := Apply(early, Recompute(early, now))
	assert.Equal(t, enums.TransferStatusInProgress, declared.OverallStatus)
	assert.Nil(t, declared.CompletedAt)
}

func TestRecomputeCompletesEmptyCategory(t *testing.T) {
	started := now
	record := *New(uuid.New())
	record.StartedAt = &started
	record.DeclaredPhotos = 100
	record.PhotosTransferred = 100

	done := Apply(record, Recompute(record, now))
	assert.Equal(t, enums.TransferStatusCompleted, done.PhotoStatus)
	assert.Equal(t, enums.TransferStatusCompleted, done.VideoStatus)
	assert.Equal(t, enums.TransferStatusCompleted, done.OverallStatus)
	require.NotNil(t, done.CompletedAt)
}

func TestOverallStatus(t *testing.T) {
	assert.Equal(t, enums.TransferStatusCompleted, OverallStatus(enums.TransferStatusCompleted, enums.TransferStatusCompleted))
	assert.Equal(t, enums.TransferStatusInProgress, OverallStatus(enums.TransferStatusCompleted, enums.TransferStatusInitiated))
	assert.Equal(t, enums.TransferStatusInitiated, OverallStatus(enums.TransferStatusInitiated, enums.TransferStatusNotStarted))
	assert.Equal(t, enums.TransferStatusNotStarted, OverallStatus(enums.TransferStatusNotStarted, enums.TransferStatusNotStarted))
}

func TestStartSetsMilestonesOnce(t *testing.T) {
	policy := timeline.New(config.DefaultPolicy())
	record := New(uuid.New())
	record.DeclaredPhotos = 38000
	record.DeclaredVideos = 2000

	patch := Start(*record, policy, now)
	require.NotNil(t, patch.StartedAt)
	assert.Equal(t, now, *patch.StartedAt)
	assert.Equal(t, 4, *patch.VisibleDay)
	assert.Equal(t, 7, *patch.ExpectedCompletionDay)
	assert.Equal(t, enums.TransferStatusInitiated, *patch.OverallStatus)

	started := Apply(*record, patch)
	again := Start(started, policy, now.Add(time.Hour))
	assert.Nil(t, again.StartedAt, "start time is never rewritten")
	assert.Nil(t, again.OverallStatus)
}

func TestRecomputeCompletesAndNeverRegresses(t *testing.T) {
	started := now
	record := *New(uuid.New())
	record.StartedAt = &started
	record.DeclaredPhotos = 10
	record.DeclaredVideos = 2
	record.PhotosTransferred = 10
	record.VideosTransferred = 2

	patch := Recompute(record, now)
	require.NotNil(t, patch.OverallStatus)
	assert.Equal(t, enums.TransferStatusCompleted, *patch.OverallStatus)
	require.NotNil(t, patch.CompletedAt)

	done := Apply(record, patch)
	done.PhotosTransferred = 3
	assert.Empty(t, Recompute(done, now).Fields(), "lower counts never regress statuses")
}

func TestMerge(t *testing.T) {
	photos := 5
	videos := 6
	status := enums.TransferStatusInProgress
	merged := Merge(store.MediaTransferPatch{PhotosTransferred: &photos}, store.MediaTransferPatch{VideosTransferred: &videos, OverallStatus: &status})
	assert.Equal(t, 5, *merged.PhotosTransferred)
	assert.Equal(t, 6, *merged.VideosTransferred)
	assert.Equal(t, status, *merged.OverallStatus)
}
