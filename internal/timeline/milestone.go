package timeline

import (
	"fmt"
	"strings"
)

// Facts feeds the milestone text for a day.
type Facts struct {
	Percent            float64
	TransferStarted    bool
	PhotosTransferred  int
	VideosTransferred  int
	AdoptionConfigured int
	AdoptionTotal      int
}

// Milestone renders the human-readable milestone for a day.
func (p Policy) Milestone(day int, facts Facts) (string, error) {
	if err := ValidateDay(day); err != nil {
		return "", err
	}

	var headline string
	switch {
	case day == FinalDay:
		headline = "Migration complete: photos, videos and family apps are all in place"
	case day == FirstDay:
		if facts.TransferStarted {
			headline = "Transfer requested; source library inventoried"
		} else {
			headline = "Migration started; waiting for the transfer request"
		}
	case day < p.visibleDay:
		headline = "Transfer processing on the source side; nothing visible yet"
	case day == p.visibleDay:
		headline = fmt.Sprintf("Photos appearing in the destination library (%.0f%%)", facts.Percent)
	case day < p.completionDay:
		headline = fmt.Sprintf("Transfer well underway (%.0f%%)", facts.Percent)
	default:
		headline = fmt.Sprintf("Transfer finishing up (%.0f%%)", facts.Percent)
	}

	parts := []string{headline}
	if day != FinalDay && facts.PhotosTransferred+facts.VideosTransferred > 0 {
		parts = append(parts, fmt.Sprintf("%d photos and %d videos transferred", facts.PhotosTransferred, facts.VideosTransferred))
	}
	if facts.AdoptionTotal > 0 {
		configured := facts.AdoptionConfigured
		if day == FinalDay {
			configured = facts.AdoptionTotal
		}
		parts = append(parts, fmt.Sprintf("%d of %d family app setups configured", configured, facts.AdoptionTotal))
	}
	return strings.Join(parts, "; "), nil
}
