// Package payments tracks the payment-card lifecycle of minor family members.
package payments

import (
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/devicemove-backend/internal/store"
	"github.com/angelmondragon/devicemove-backend/pkg/config"
	"github.com/angelmondragon/devicemove-backend/pkg/db/models"
	"github.com/angelmondragon/devicemove-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/devicemove-backend/pkg/errors"
)

var lastFourRe = regexp.MustCompile(`^[0-9]{4}$`)

// Eligibility decides which members get a payment setup.
type Eligibility struct {
	MinAge int
	MaxAge int
}

// NewEligibility reads the age band from configuration.
func NewEligibility(cfg config.PolicyConfig) Eligibility {
	return Eligibility{MinAge: cfg.MinorMinAge, MaxAge: cfg.MinorMaxAge}
}

// Eligible reports whether age falls inside the band; unknown ages never do.
func (e Eligibility) Eligible(age *int) bool {
	if age == nil {
		return false
	}
	return *age >= e.MinAge && *age <= e.MaxAge
}

// NewSetup returns a fresh setup that still needs an account.
func NewSetup(migrationID, memberID uuid.UUID) *models.MinorPaymentSetup {
	return &models.MinorPaymentSetup{
		ID:           uuid.New(),
		MigrationID:  migrationID,
		MemberID:     memberID,
		NeedsAccount: true,
	}
}

// ValidateLastFour checks a card identifier suffix.
func ValidateLastFour(lastFour string) error {
	if !lastFourRe.MatchString(lastFour) {
		return pkgerrors.New(pkgerrors.CodeValidation, "card suffix must be exactly four digits")
	}
	return nil
}

// Advance computes the patch for an observed lifecycle event. Steps only move
// forward; skipped steps are stamped with at. Repeats and stale events are
// no-ops. Activation goes through Activate.
func Advance(setup models.MinorPaymentSetup, event enums.PaymentEvent, at time.Time) (store.MinorPaymentSetupPatch, bool, error) {
	if !event.IsValid() {
		return store.MinorPaymentSetupPatch{}, false, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid payment event %q", event))
	}
	if event == enums.PaymentEventActivated {
		return store.MinorPaymentSetupPatch{}, false, pkgerrors.New(pkgerrors.CodeValidation, "activation requires a card suffix")
	}
	return advanceTo(setup, event, at)
}

// Activate completes the lifecycle with the card suffix. Re-activating with
// the same suffix is a no-op; a different suffix conflicts.
func Activate(setup models.MinorPaymentSetup, lastFour string, at time.Time) (store.MinorPaymentSetupPatch, bool, error) {
	if err := ValidateLastFour(lastFour); err != nil {
		return store.MinorPaymentSetupPatch{}, false, err
	}
	if setup.ActivatedAt != nil {
		if setup.CardLastFour == lastFour {
			return store.MinorPaymentSetupPatch{}, false, nil
		}
		return store.MinorPaymentSetupPatch{}, false, pkgerrors.New(pkgerrors.CodeStateConflict, "payment card already activated with a different suffix")
	}

	patch, _, err := advanceTo(setup, enums.PaymentEventActivated, at)
	if err != nil {
		return patch, false, err
	}
	suffix := lastFour
	completed := true
	patch.CardLastFour = &suffix
	patch.Completed = &completed
	return patch, true, nil
}

func advanceTo(setup models.MinorPaymentSetup, event enums.PaymentEvent, at time.Time) (store.MinorPaymentSetupPatch, bool, error) {
	current := setup.Stage()
	if event.Rank() <= current.Rank() {
		return store.MinorPaymentSetupPatch{}, false, nil
	}

	stamp := at
	patch := store.MinorPaymentSetupPatch{}
	reached := func(step enums.PaymentEvent) bool {
		return current.Rank() < step.Rank() && event.Rank() >= step.Rank()
	}
	if reached(enums.PaymentEventAccountCreated) && setup.AccountCreatedAt == nil {
		patch.AccountCreatedAt = &stamp
		needsAccount := false
		patch.NeedsAccount = &needsAccount
	}
	if reached(enums.PaymentEventCardOrdered) && setup.CardOrderedAt == nil {
		patch.CardOrderedAt = &stamp
	}
	if reached(enums.PaymentEventCardArrived) && setup.CardArrivedAt == nil {
		patch.CardArrivedAt = &stamp
	}
	if reached(enums.PaymentEventActivated) && setup.ActivatedAt == nil {
		patch.ActivatedAt = &stamp
	}
	return patch, true, nil
}
