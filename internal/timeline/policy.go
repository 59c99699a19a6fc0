// Package timeline reconciles measured progress with the fixed seven-day
// presentation curve.
package timeline

import (
	"fmt"

	"github.com/angelmondragon/devicemove-backend/pkg/config"
	"github.com/angelmondragon/devicemove-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/devicemove-backend/pkg/errors"
)

const (
	FirstDay = 1
	FinalDay = 7
)

var expectedCurve = [FinalDay + 1]float64{0, 0, 0, 5, 25, 55, 85, 100}

// Policy holds the milestone days surfaced to callers.
type Policy struct {
	visibleDay    int
	completionDay int
}

// New builds a Policy from configuration.
func New(cfg config.PolicyConfig) Policy {
	p := Policy{visibleDay: cfg.VisibleDay, completionDay: cfg.CompletionDay}
	if p.visibleDay < FirstDay || p.visibleDay > FinalDay {
		p.visibleDay = 4
	}
	if p.completionDay < p.visibleDay || p.completionDay > FinalDay {
		p.completionDay = FinalDay
	}
	return p
}

// VisibleDay is the day transferred items start appearing at the destination.
func (p Policy) VisibleDay() int { return p.visibleDay }

// CompletionDay is the day the transfer is expected to finish.
func (p Policy) CompletionDay() int { return p.completionDay }

// ValidateDay rejects day numbers outside 1..7.
func ValidateDay(day int) error {
	if day < FirstDay || day > FinalDay {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("day must be between %d and %d, got %d", FirstDay, FinalDay, day)).
			WithDetails(map[string]any{"day": day})
	}
	return nil
}

// ExpectedPercent is the anticipated progress for a day: flat for the first
// days, rising through the middle, complete on the final day.
func ExpectedPercent(day int) (float64, error) {
	if err := ValidateDay(day); err != nil {
		return 0, err
	}
	return expectedCurve[day], nil
}

// Outcome is the presented progress for one day.
type Outcome struct {
	Raw        float64
	Reported   float64
	Expected   float64
	Status     enums.OverallStatus
	Overridden bool
}

// Report applies floor enforcement and the final-day override. previous is
// the highest percent already reported for an earlier day.
func (p Policy) Report(day int, raw, previous float64) (Outcome, error) {
	expected, err := ExpectedPercent(day)
	if err != nil {
		return Outcome{}, err
	}

	out := Outcome{Raw: raw, Expected: expected}
	out.Reported = raw
	if previous > out.Reported {
		out.Reported = previous
	}
	if out.Reported > 100 {
		out.Reported = 100
	}
	if out.Reported < 0 {
		out.Reported = 0
	}

	switch {
	case day == FinalDay:
		out.Overridden = out.Reported != 100
		out.Reported = 100
		out.Status = enums.OverallStatusSuccess
	case out.Reported == 0:
		out.Status = enums.OverallStatusPending
	default:
		out.Status = enums.OverallStatusInProgress
	}
	return out, nil
}

// Completed returns the outcome presented once a migration is closed out.
func Completed(raw float64) Outcome {
	return Outcome{
		Raw:        raw,
		Reported:   100,
		Expected:   100,
		Status:     enums.OverallStatusSuccess,
		Overridden: raw != 100,
	}
}
