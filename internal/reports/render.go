package reports

import (
	"fmt"
	"strings"

	"github.com/angelmondragon/devicemove-backend/pkg/enums"
)

func renderLines(r *Report) []string {
	lines := []string{}
	if r.Completed {
		lines = append(lines, fmt.Sprintf("Migration for %s is complete: 100%% success.", r.SubjectName))
	} else {
		lines = append(lines, fmt.Sprintf("Migration for %s: day %d of 7, %.2f%% (%s), phase %s.",
			r.SubjectName, r.CurrentDay, r.Percent, r.Status, r.Phase))
	}

	t := r.Transfer
	lines = append(lines, fmt.Sprintf("Media transfer %s: %d of %d photos, %d of %d videos.",
		t.Status, t.PhotosTransferred, t.DeclaredPhotos, t.VideosTransferred, t.DeclaredVideos))

	for _, c := range r.Adoption {
		lines = append(lines, fmt.Sprintf("%s: %d of %d family members configured.", c.Service, c.Configured, c.Total))
	}
	if r.Payments.Total > 0 {
		lines = append(lines, fmt.Sprintf("Minor payment cards: %d of %d activated.", r.Payments.Activated, r.Payments.Total))
	}

	for _, m := range r.Members {
		parts := make([]string, 0, len(m.Services))
		for _, s := range m.Services {
			parts = append(parts, fmt.Sprintf("%s=%s", s.Service, s.Status))
		}
		line := fmt.Sprintf("%s (%s): %s", m.Name, m.Role, strings.Join(parts, ", "))
		if m.Payment != "" {
			line += fmt.Sprintf("; payment %s", m.Payment)
		}
		lines = append(lines, line)
	}

	for _, s := range r.Snapshots {
		kind := "reading"
		if s.Baseline {
			kind = "baseline"
		}
		lines = append(lines, fmt.Sprintf("Day %d #%d %s: %.2f GB, raw %.2f%%.", s.Day, s.Sequence, kind, s.StorageGB, s.RawPercent))
	}

	if r.Status == enums.OverallStatusSuccess && !r.Completed {
		lines = append(lines, "All milestones reached.")
	}
	return lines
}
