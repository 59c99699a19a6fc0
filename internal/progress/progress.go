// Package progress turns destination capacity readings into completion
// percentages and item estimates.
package progress

import (
	"fmt"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Percent maps current capacity onto [0, 100] relative to the baseline and
// the expected final capacity, rounded to two decimals. A target that does
// not exceed the baseline reports 100; readings below the baseline report 0.
func Percent(baselineGB, currentGB, targetGB float64) float64 {
	b := decimal.NewFromFloat(baselineGB)
	c := decimal.NewFromFloat(currentGB)
	t := decimal.NewFromFloat(targetGB)

	if t.LessThanOrEqual(b) {
		return 100
	}
	if c.LessThanOrEqual(b) {
		return 0
	}

	pct := c.Sub(b).Div(t.Sub(b)).Mul(hundred)
	return clamp(pct).Round(2).InexactFloat64()
}

// Growth returns current minus baseline, never negative.
func Growth(baselineGB, currentGB float64) float64 {
	g := decimal.NewFromFloat(currentGB).Sub(decimal.NewFromFloat(baselineGB))
	if g.IsNegative() {
		return 0
	}
	return g.Round(3).InexactFloat64()
}

// Estimate splits the items implied by percent between photos and videos in
// proportion to the declared totals.
type Estimate struct {
	Photos int
	Videos int
}

// Total returns the combined estimate.
func (e Estimate) Total() int {
	return e.Photos + e.Videos
}

// EstimateItems returns round(total × percent/100), divided proportionally.
func EstimateItems(declaredPhotos, declaredVideos int, percent float64) Estimate {
	if declaredPhotos < 0 || declaredVideos < 0 {
		return Estimate{}
	}
	total := declaredPhotos + declaredVideos
	if total == 0 {
		return Estimate{}
	}

	share := clamp(decimal.NewFromFloat(percent)).Div(hundred)
	items := decimal.NewFromInt(int64(total)).Mul(share).Round(0)

	photos := items.Mul(decimal.NewFromInt(int64(declaredPhotos))).
		Div(decimal.NewFromInt(int64(total))).
		Round(0)
	if photos.GreaterThan(decimal.NewFromInt(int64(declaredPhotos))) {
		photos = decimal.NewFromInt(int64(declaredPhotos))
	}
	videos := items.Sub(photos)
	if videos.GreaterThan(decimal.NewFromInt(int64(declaredVideos))) {
		videos = decimal.NewFromInt(int64(declaredVideos))
	}

	return Estimate{Photos: int(photos.IntPart()), Videos: int(videos.IntPart())}
}

// Validate reports whether a capacity reading is usable.
func Validate(storageGB float64) error {
	if storageGB < 0 {
		return fmt.Errorf("storage must be non-negative, got %v", storageGB)
	}
	return nil
}

func clamp(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	if d.GreaterThan(hundred) {
		return hundred
	}
	return d
}
