package timeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/devicemove-backend/pkg/config"
	"github.com/angelmondragon/devicemove-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/devicemove-backend/pkg/errors"
)

func TestExpectedPercentCurve(t *testing.T) {
	want := map[int]float64{1: 0, 2: 0, 3: 5, 4: 25, 5: 55, 6: 85, 7: 100}
	prev := -1.0
	for day := 1; day <= 7; day++ {
		got, err := ExpectedPercent(day)
		require.NoError(t, err)
		assert.Equal(t, want[day], got, "day %d", day)
		assert.GreaterOrEqual(t, got, prev)
		prev = got
	}

	for _, day := range []int{0, 8, -3} {
		_, err := ExpectedPercent(day)
		assert.True(t, pkgerrors.Is(err, pkgerrors.CodeValidation), "day %d", day)
	}
}

func TestReportFloorEnforcement(t *testing.T) {
	p := New(config.DefaultPolicy())

	out, err := p.Report(5, 22.5, 28.01)
	require.NoError(t, err)
	assert.Equal(t, 28.01, out.Reported)
	assert.Equal(t, 22.5, out.Raw)
	assert.Equal(t, enums.OverallStatusInProgress, out.Status)
	assert.False(t, out.Overridden)

	out, err = p.Report(2, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, enums.OverallStatusPending, out.Status)
}

func TestReportFinalDayOverride(t *testing.T) {
	p := New(config.DefaultPolicy())

	out, err := p.Report(7, 61.2, 60)
	require.NoError(t, err)
	assert.Equal(t, 100.0, out.Reported)
	assert.Equal(t, 61.2, out.Raw)
	assert.Equal(t, enums.OverallStatusSuccess, out.Status)
	assert.True(t, out.Overridden)

	out, err = p.Report(7, 100, 85)
	require.NoError(t, err)
	assert.False(t, out.Overridden)
}

func TestReportNonDecreasingAcrossWeek(t *testing.T) {
	p := New(config.DefaultPolicy())
	raws := []float64{0, 3, 1, 28.01, 12, 70, 40}
	prev := 0.0
	for i, raw := range raws {
		out, err := p.Report(i+1, raw, prev)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, out.Reported, prev, "day %d", i+1)
		prev = out.Reported
	}
	assert.Equal(t, 100.0, prev)
}

func TestNewFallsBackOnInvalidDays(t *testing.T) {
	p := New(config.PolicyConfig{VisibleDay: 9, CompletionDay: 2})
	assert.Equal(t, 4, p.VisibleDay())
	assert.Equal(t, 7, p.CompletionDay())
}

func TestCompleted(t *testing.T) {
	out := Completed(42)
	assert.Equal(t, 100.0, out.Reported)
	assert.Equal(t, enums.OverallStatusSuccess, out.Status)
	assert.True(t, out.Overridden)
}

func TestMilestone(t *testing.T) {
	p := New(config.DefaultPolicy())

	text, err := p.Milestone(4, Facts{Percent: 28.01, PhotosTransferred: 10644, VideosTransferred: 560, AdoptionConfigured: 2, AdoptionTotal: 9})
	require.NoError(t, err)
	assert.Contains(t, text, "Photos appearing")
	assert.Contains(t, text, "(28%)")
	assert.Contains(t, text, "10644 photos and 560 videos")
	assert.Contains(t, text, "2 of 9 family app setups configured")

	text, err = p.Milestone(7, Facts{Percent: 61, AdoptionConfigured: 3, AdoptionTotal: 9})
	require.NoError(t, err)
	assert.Contains(t, text, "Migration complete")
	assert.Contains(t, text, "9 of 9")

	text, err = p.Milestone(1, Facts{})
	require.NoError(t, err)
	assert.Contains(t, text, "waiting for the transfer request")

	_, err = p.Milestone(0, Facts{})
	assert.Error(t, err)
}
