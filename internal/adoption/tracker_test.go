package adoption

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/devicemove-backend/pkg/db/models"
	"github.com/angelmondragon/devicemove-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/devicemove-backend/pkg/errors"
	"github.com/angelmondragon/devicemove-backend/pkg/logger"
)

var observedAt = time.Date(2026, 3, 3, 12, 0, 0, 0, time.UTC)

func TestTransitionForwardJumpStampsSkippedSteps(t *testing.T) {
	rec := models.AppAdoption{Service: "whatsapp", Status: enums.AdoptionStatusNotStarted}

	patch, changed, err := Transition(rec, enums.AdoptionStatusConfigured, observedAt)
	require.NoError(t, err)
	require.True(t, changed)
	assert.Equal(t, enums.AdoptionStatusConfigured, *patch.Status)
	require.NotNil(t, patch.InvitedAt)
	require.NotNil(t, patch.InstalledAt)
	require.NotNil(t, patch.ConfiguredAt)
	assert.Equal(t, observedAt, *patch.ConfiguredAt)
}

func TestTransitionKeepsEarlierStamps(t *testing.T) {
	invited := observedAt.Add(-48 * time.Hour)
	rec := models.AppAdoption{Service: "venmo", Status: enums.AdoptionStatusInvited, InvitedAt: &invited}

	patch, changed, err := Transition(rec, enums.AdoptionStatusInstalled, observedAt)
	require.NoError(t, err)
	require.True(t, changed)
	assert.Nil(t, patch.InvitedAt)
	require.NotNil(t, patch.InstalledAt)
	assert.Nil(t, patch.ConfiguredAt)
}

func TestTransitionRepeatIsNoop(t *testing.T) {
	rec := models.AppAdoption{Status: enums.AdoptionStatusInstalled}
	patch, changed, err := Transition(rec, enums.AdoptionStatusInstalled, observedAt)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Empty(t, patch.Fields())
}

func TestTransitionRegressionIsIllegal(t *testing.T) {
	rec := models.AppAdoption{Service: "whatsapp", Status: enums.AdoptionStatusConfigured}
	_, changed, err := Transition(rec, enums.AdoptionStatusInvited, observedAt)
	assert.False(t, changed)
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeIllegalTransition))

	_, _, err = Transition(rec, enums.AdoptionStatus("deleted"), observedAt)
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeValidation))
}

func TestObserveLogsAndSwallowsRegression(t *testing.T) {
	buf := &bytes.Buffer{}
	tracker := NewTracker(logger.New(logger.Options{ServiceName: "test", Output: buf}))
	rec := models.AppAdoption{Service: "whatsapp", Status: enums.AdoptionStatusConfigured}

	_, changed, err := tracker.Observe(context.Background(), rec, enums.AdoptionStatusNotStarted, observedAt)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Contains(t, buf.String(), "ignoring adoption status regression")
	assert.Contains(t, buf.String(), `"from":"configured"`)
}

func TestCountsAndPending(t *testing.T) {
	ana := models.FamilyMember{ID: uuid.New(), Name: "Ana", Role: enums.FamilyRolePrimaryAdult}
	leo := models.FamilyMember{ID: uuid.New(), Name: "Leo", Role: enums.FamilyRoleMinorDependent}
	rows := []models.AppAdoption{
		{MemberID: ana.ID, Service: "whatsapp", Status: enums.AdoptionStatusConfigured},
		{MemberID: ana.ID, Service: "venmo", Status: enums.AdoptionStatusConfigured},
		{MemberID: leo.ID, Service: "whatsapp", Status: enums.AdoptionStatusInvited},
		{MemberID: leo.ID, Service: "venmo", Status: enums.AdoptionStatusConfigured},
	}

	counts := Counts(rows, []string{"whatsapp", "google_maps", "venmo"})
	require.Len(t, counts, 3)
	assert.Equal(t, ServiceCount{Service: "whatsapp", Configured: 1, Total: 2}, counts[0])
	assert.Equal(t, ServiceCount{Service: "google_maps"}, counts[1])
	assert.Equal(t, ServiceCount{Service: "venmo", Configured: 2, Total: 2}, counts[2])

	configured, total := Totals(rows)
	assert.Equal(t, 3, configured)
	assert.Equal(t, 4, total)

	pending := Pending([]models.FamilyMember{ana, leo}, rows)
	require.Len(t, pending, 1)
	assert.Equal(t, "Leo", pending[0].Name)
	assert.Equal(t, []ServiceStatus{{Service: "whatsapp", Status: enums.AdoptionStatusInvited}}, pending[0].Services)
}
