package controllers

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/angelmondragon/devicemove-backend/api/responses"
	"github.com/angelmondragon/devicemove-backend/api/validators"
	"github.com/angelmondragon/devicemove-backend/internal/coordinator"
	"github.com/angelmondragon/devicemove-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/devicemove-backend/pkg/errors"
	"github.com/angelmondragon/devicemove-backend/pkg/logger"
)

const maxMemberName = 80

type addMemberRequest struct {
	Name           string `json:"name" validate:"required,max=80"`
	Role           string `json:"role" validate:"required,oneof=primary_adult secondary_adult minor_dependent"`
	Age            *int   `json:"age" validate:"omitempty,gte=0,lte=130"`
	ContactAddress string `json:"contact_address" validate:"omitempty,max=254"`
}

type adoptionRequest struct {
	Service string `json:"service" validate:"required,max=64"`
	Status  string `json:"status" validate:"required,oneof=not_started invited installed configured"`
}

type paymentEventRequest struct {
	Event string `json:"event" validate:"required,oneof=account_created card_ordered card_arrived activated"`
}

type activatePaymentRequest struct {
	LastFour string `json:"last_four" validate:"required,len=4,numeric"`
}

func AddFamilyMember(svc coordinator.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseUUIDParam(r, "migrationId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req addMemberRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.AddFamilyMember(r.Context(), id, coordinator.AddMemberInput{
			Name:           validators.SanitizeString(req.Name, maxMemberName),
			Role:           enums.FamilyRole(req.Role),
			Age:            req.Age,
			ContactAddress: strings.TrimSpace(req.ContactAddress),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

// PendingActions lists members with services still to configure.
func PendingActions(svc coordinator.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseUUIDParam(r, "migrationId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		pending, err := svc.PendingActions(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, pending)
	}
}

// UpdateAdoptionStatus records an observed app status for a member.
func UpdateAdoptionStatus(svc coordinator.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, name, err := memberParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req adoptionRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.UpdateAdoptionStatus(r.Context(), id, name, strings.TrimSpace(req.Service), enums.AdoptionStatus(req.Status))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func RecordPaymentEvent(svc coordinator.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, name, err := memberParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req paymentEventRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.RecordPaymentEvent(r.Context(), id, name, enums.PaymentEvent(req.Event))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func ActivateMinorPayment(svc coordinator.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, name, err := memberParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req activatePaymentRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.ActivateMinorPayment(r.Context(), id, name, req.LastFour)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func memberParams(r *http.Request) (uuid.UUID, string, error) {
	migrationID, err := validators.ParseUUIDParam(r, "migrationId")
	if err != nil {
		return uuid.Nil, "", err
	}
	raw := chi.URLParam(r, "memberName")
	if decoded, err := url.PathUnescape(raw); err == nil {
		raw = decoded
	}
	name := validators.SanitizeString(raw, maxMemberName)
	if name == "" {
		return migrationID, "", pkgerrors.New(pkgerrors.CodeValidation, "member name is required").WithDetails(map[string]any{"field": "memberName"})
	}
	return migrationID, name, nil
}
