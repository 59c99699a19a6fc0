package controllers

import (
	"net/http"

	"github.com/angelmondragon/devicemove-backend/api/responses"
	"github.com/angelmondragon/devicemove-backend/api/validators"
	"github.com/angelmondragon/devicemove-backend/internal/coordinator"
	"github.com/angelmondragon/devicemove-backend/internal/timeline"
	"github.com/angelmondragon/devicemove-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/devicemove-backend/pkg/errors"
	"github.com/angelmondragon/devicemove-backend/pkg/logger"
)

const maxSubjectName = 120

type initializeRequest struct {
	SubjectName          string `json:"subject_name" validate:"required,max=120"`
	YearsOnPriorPlatform int    `json:"years_on_prior_platform" validate:"gte=0,lte=100"`
}

type inventoryRequest struct {
	Photos    int     `json:"photos" validate:"gte=0"`
	Videos    int     `json:"videos" validate:"gte=0"`
	StorageGB float64 `json:"storage_gb" validate:"gte=0"`
}

// InitializeMigration starts a new migration.
func InitializeMigration(svc coordinator.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req initializeRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		m, err := svc.InitializeMigration(r.Context(), coordinator.InitializeInput{
			SubjectName:          validators.SanitizeString(req.SubjectName, maxSubjectName),
			YearsOnPriorPlatform: req.YearsOnPriorPlatform,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, m)
	}
}

// ActiveMigration returns the most recent incomplete migration.
func ActiveMigration(svc coordinator.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m, err := svc.MostRecentIncomplete(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, m)
	}
}

func RecordSourceInventory(svc coordinator.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseUUIDParam(r, "migrationId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req inventoryRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		m, err := svc.RecordSourceInventory(r.Context(), id, coordinator.InventoryInput{
			Photos:    req.Photos,
			Videos:    req.Videos,
			StorageGB: req.StorageGB,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, m)
	}
}

func OverallStatus(svc coordinator.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseUUIDParam(r, "migrationId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		status, err := svc.GetOverallStatus(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, status)
	}
}

// CompleteMigration closes the migration and returns its final status.
func CompleteMigration(svc coordinator.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseUUIDParam(r, "migrationId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		status, err := svc.CompleteMigration(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, status)
	}
}

// DailySummary returns the reconciled progress view for one day.
func DailySummary(svc coordinator.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseUUIDParam(r, "migrationId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		day, err := validators.ParseIntParam(r, "day", timeline.FirstDay, timeline.FinalDay)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		summary, err := svc.GetDailySummary(r.Context(), id, day)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, summary)
	}
}

// Report renders the migration report; detail is summary or full.
func Report(svc coordinator.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseUUIDParam(r, "migrationId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		detail, err := enums.ParseDetailLevel(r.URL.Query().Get("detail"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid detail").WithDetails(map[string]any{"field": "detail"}))
			return
		}
		report, err := svc.GenerateReport(r.Context(), id, detail)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, report)
	}
}
