package controllers

import (
	"net/http"
	"strings"

	"github.com/schoolbridge/schoolbridge-backend/api/middleware"
	"github.com/schoolbridge/schoolbridge-backend/api/responses"
	"github.com/schoolbridge/schoolbridge-backend/api/validators"
	"github.com/schoolbridge/schoolbridge-backend/internal/complaints"
	"github.com/schoolbridge/schoolbridge-backend/pkg/enums"
	pkgerrors "github.com/schoolbridge/schoolbridge-backend/pkg/errors"
	"github.com/schoolbridge/schoolbridge-backend/pkg/logger"
)

// FileComplaint opens a legal complaint against a supplier.
func FileComplaint(svc complaints.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "complaints service unavailable"))
			return
		}

		filerID, err := actorUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body complaints.FileInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.File(r.Context(), filerID, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, dto)
	}
}

// ListComplaints returns the complaints visible to the caller: schools see
// complaints they filed, suppliers see complaints filed against them.
func ListComplaints(svc complaints.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "complaints service unavailable"))
			return
		}

		userID, err := actorUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var items []complaints.ComplaintDTO
		switch enums.UserRole(middleware.RoleFromContext(r.Context())) {
		case enums.UserRoleSupplier:
			supplierID, err := actorSupplierID(r)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			items, err = svc.ListBySupplier(r.Context(), supplierID)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		default:
			items, err = svc.ListByFiler(r.Context(), userID)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}

		responses.WriteSuccess(w, map[string][]complaints.ComplaintDTO{
			"complaints": items,
		})
	}
}

// AdminListComplaints pages complaints for the review queue, optionally
// filtered by status.
func AdminListComplaints(svc complaints.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "complaints service unavailable"))
			return
		}

		params, err := queryPagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := complaints.AdminListInput{Pagination: params}
		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			status, err := enums.ParseComplaintStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter"))
				return
			}
			input.Status = &status
		}

		result, err := svc.AdminList(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

type complaintStatusRequest struct {
	Status     string  `json:"status" validate:"required"`
	Resolution *string `json:"resolution,omitempty"`
}

// AdminTransitionComplaint moves a complaint through the review workflow.
func AdminTransitionComplaint(svc complaints.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "complaints service unavailable"))
			return
		}

		adminID, err := actorUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		complaintID, err := pathUUID(r, "complaintId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body complaintStatusRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.Transition(r.Context(), complaints.TransitionInput{
			ComplaintID: complaintID,
			Status:      body.Status,
			Resolution:  body.Resolution,
			AdminUserID: adminID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}
