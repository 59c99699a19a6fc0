// Package adoption advances the per-member, per-service onboarding state
// machine and derives live completion counters.
package adoption

import (
	"context"
	"fmt"
	"time"

	"github.com/angelmondragon/devicemove-backend/internal/store"
	"github.com/angelmondragon/devicemove-backend/pkg/db/models"
	"github.com/angelmondragon/devicemove-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/devicemove-backend/pkg/errors"
	"github.com/angelmondragon/devicemove-backend/pkg/logger"
)

// Tracker applies observations; regressions are logged and ignored.
type Tracker struct {
	logg *logger.Logger
}

// NewTracker constructs a Tracker.
func NewTracker(logg *logger.Logger) *Tracker {
	if logg == nil {
		logg = logger.Nop()
	}
	return &Tracker{logg: logg}
}

// Transition computes the patch moving rec to observed. Forward jumps stamp
// every skipped step with at. Repeats return changed=false; regressions
// return an ILLEGAL_TRANSITION error.
func Transition(rec models.AppAdoption, observed enums.AdoptionStatus, at time.Time) (store.AppAdoptionPatch, bool, error) {
	if !observed.IsValid() {
		return store.AppAdoptionPatch{}, false, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid adoption status %q", observed))
	}
	current := rec.Status
	if observed.Rank() == current.Rank() {
		return store.AppAdoptionPatch{}, false, nil
	}
	if observed.Rank() < current.Rank() {
		return store.AppAdoptionPatch{}, false, pkgerrors.New(pkgerrors.CodeIllegalTransition,
			fmt.Sprintf("%s cannot move from %s back to %s", rec.Service, current, observed)).
			WithDetails(map[string]any{"from": current, "to": observed, "service": rec.Service})
	}

	stamp := at
	patch := store.AppAdoptionPatch{Status: &observed, LastObservedAt: &stamp}
	reached := func(status enums.AdoptionStatus) bool {
		return current.Rank() < status.Rank() && observed.Rank() >= status.Rank()
	}
	if reached(enums.AdoptionStatusInvited) && rec.InvitedAt == nil {
		patch.InvitedAt = &stamp
	}
	if reached(enums.AdoptionStatusInstalled) && rec.InstalledAt == nil {
		patch.InstalledAt = &stamp
	}
	if reached(enums.AdoptionStatusConfigured) && rec.ConfiguredAt == nil {
		patch.ConfiguredAt = &stamp
	}
	return patch, true, nil
}

// Observe is Transition with regressions downgraded to a warning.
func (t *Tracker) Observe(ctx context.Context, rec models.AppAdoption, observed enums.AdoptionStatus, at time.Time) (store.AppAdoptionPatch, bool, error) {
	patch, changed, err := Transition(rec, observed, at)
	if pkgerrors.Is(err, pkgerrors.CodeIllegalTransition) {
		ctx = t.logg.WithFields(ctx, map[string]any{
			"service": rec.Service,
			"from":    rec.Status.String(),
			"to":      observed.String(),
		})
		t.logg.Warn(ctx, "ignoring adoption status regression")
		return store.AppAdoptionPatch{}, false, nil
	}
	return patch, changed, err
}
