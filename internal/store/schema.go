package store

import (
	"github.com/angelmondragon/devicemove-backend/pkg/db/models"
)

// columns lists every queryable column per kind.
var columns = map[models.Kind][]string{
	models.KindMigration: {
		"id", "subject_name", "years_on_prior_platform", "started_at", "completed_at", "phase",
		"overall_progress", "declared_photo_count", "declared_video_count", "declared_storage_gb",
		"baseline_storage_gb", "created_at", "updated_at",
	},
	models.KindFamilyMember: {
		"id", "migration_id", "name", "name_key", "role", "age", "contact_address", "notes",
		"created_at", "updated_at",
	},
	models.KindAppAdoption: {
		"id", "migration_id", "member_id", "service", "status", "invited_at", "installed_at",
		"configured_at", "last_observed_at", "created_at", "updated_at",
	},
	models.KindMediaTransfer: {
		"id", "migration_id", "declared_photos", "declared_videos", "declared_storage_gb",
		"photos_transferred", "videos_transferred", "transferred_storage_gb", "photo_status",
		"video_status", "overall_status", "started_at", "visible_day", "expected_completion_day",
		"completed_at", "created_at", "updated_at",
	},
	models.KindStorageSnapshot: {
		"id", "migration_id", "day_number", "sequence", "storage_used_gb", "is_baseline", "growth_gb",
		"percent_complete", "estimated_photos", "estimated_videos", "observed_at",
	},
	models.KindMinorPaymentSetup: {
		"id", "migration_id", "member_id", "needs_account", "account_created_at", "card_ordered_at",
		"card_arrived_at", "activated_at", "card_last_four", "completed", "created_at", "updated_at",
	},
	models.KindDailyProgress: {
		"id", "migration_id", "day_number", "raw_percent", "reported_percent", "expected_percent",
		"overridden", "photos_transferred", "videos_transferred", "storage_used_gb",
		"adoption_configured", "adoption_total", "status", "milestone", "generated_at",
	},
}

// mergeable lists the columns a merge-update may touch. Identity and parent
// references are absent on purpose; kinds missing here reject merges.
var mergeable = map[models.Kind][]string{
	models.KindMigration: {
		"completed_at", "phase", "overall_progress", "declared_photo_count", "declared_video_count",
		"declared_storage_gb", "baseline_storage_gb",
	},
	models.KindFamilyMember: {"notes"},
	models.KindAppAdoption: {
		"status", "invited_at", "installed_at", "configured_at", "last_observed_at",
	},
	models.KindMediaTransfer: {
		"declared_photos", "declared_videos", "declared_storage_gb", "photos_transferred",
		"videos_transferred", "transferred_storage_gb", "photo_status", "video_status",
		"overall_status", "started_at", "visible_day", "expected_completion_day", "completed_at",
	},
	models.KindMinorPaymentSetup: {
		"needs_account", "account_created_at", "card_ordered_at", "card_arrived_at", "activated_at",
		"card_last_four", "completed",
	},
}

// dailyProgressUpsertColumns are rewritten when a day's rollup is regenerated.
var dailyProgressUpsertColumns = []string{
	"raw_percent", "reported_percent", "expected_percent", "overridden", "photos_transferred",
	"videos_transferred", "storage_used_gb", "adoption_configured", "adoption_total", "status",
	"milestone", "generated_at",
}

func hasColumn(set []string, column string) bool {
	for _, candidate := range set {
		if candidate == column {
			return true
		}
	}
	return false
}

func newModel(kind models.Kind) any {
	switch kind {
	case models.KindMigration:
		return &models.Migration{}
	case models.KindFamilyMember:
		return &models.FamilyMember{}
	case models.KindAppAdoption:
		return &models.AppAdoption{}
	case models.KindMediaTransfer:
		return &models.MediaTransfer{}
	case models.KindStorageSnapshot:
		return &models.StorageSnapshot{}
	case models.KindMinorPaymentSetup:
		return &models.MinorPaymentSetup{}
	case models.KindDailyProgress:
		return &models.DailyProgress{}
	}
	return nil
}
