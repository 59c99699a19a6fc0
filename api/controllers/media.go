package controllers

import (
	"net/http"

	"github.com/angelmondragon/devicemove-backend/api/responses"
	"github.com/angelmondragon/devicemove-backend/api/validators"
	"github.com/angelmondragon/devicemove-backend/internal/coordinator"
	"github.com/angelmondragon/devicemove-backend/pkg/logger"
)

type mediaProgressRequest struct {
	DeclaredPhotos       *int     `json:"declared_photos" validate:"omitempty,gte=0"`
	DeclaredVideos       *int     `json:"declared_videos" validate:"omitempty,gte=0"`
	DeclaredStorageGB    *float64 `json:"declared_storage_gb" validate:"omitempty,gte=0"`
	PhotosTransferred    *int     `json:"photos_transferred" validate:"omitempty,gte=0"`
	VideosTransferred    *int     `json:"videos_transferred" validate:"omitempty,gte=0"`
	TransferredStorageGB *float64 `json:"transferred_storage_gb" validate:"omitempty,gte=0"`
}

type snapshotRequest struct {
	StorageGB float64 `json:"storage_gb" validate:"gte=0"`
	Day       int     `json:"day" validate:"gte=1,lte=7"`
	Baseline  bool    `json:"baseline"`
}

func RecordTransferStart(svc coordinator.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseUUIDParam(r, "migrationId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		transfer, err := svc.RecordTransferStart(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, transfer)
	}
}

// UpdateMediaProgress merges a partial transfer update; omitted fields keep
// their stored values.
func UpdateMediaProgress(svc coordinator.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseUUIDParam(r, "migrationId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req mediaProgressRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		transfer, err := svc.UpdateMediaProgress(r.Context(), id, coordinator.MediaProgressInput{
			DeclaredPhotos:       req.DeclaredPhotos,
			DeclaredVideos:       req.DeclaredVideos,
			DeclaredStorageGB:    req.DeclaredStorageGB,
			PhotosTransferred:    req.PhotosTransferred,
			VideosTransferred:    req.VideosTransferred,
			TransferredStorageGB: req.TransferredStorageGB,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, transfer)
	}
}

// RecordStorageSnapshot appends a capacity reading. Replays of the same
// reading answer 200 instead of 201.
func RecordStorageSnapshot(svc coordinator.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseUUIDParam(r, "migrationId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req snapshotRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.RecordStorageSnapshot(r.Context(), id, coordinator.SnapshotInput{
			StorageGB: req.StorageGB,
			Day:       req.Day,
			Baseline:  req.Baseline,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		status := http.StatusOK
		if result.Created {
			status = http.StatusCreated
		}
		responses.WriteSuccessStatus(w, status, result)
	}
}

func ListSnapshots(svc coordinator.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseUUIDParam(r, "migrationId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		page, err := svc.ListSnapshots(r.Context(), id, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

// Baseline reports the capacity baseline and whether polling can stop.
func Baseline(svc coordinator.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseUUIDParam(r, "migrationId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		status, err := svc.Baseline(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, status)
	}
}
