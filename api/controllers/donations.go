package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/givebridge/givebridge-backend/api/middleware"
	"github.com/givebridge/givebridge-backend/api/responses"
	"github.com/givebridge/givebridge-backend/api/validators"
	"github.com/givebridge/givebridge-backend/internal/donations"
	"github.com/givebridge/givebridge-backend/pkg/enums"
	pkgerrors "github.com/givebridge/givebridge-backend/pkg/errors"
	"github.com/givebridge/givebridge-backend/pkg/logger"
	"github.com/givebridge/givebridge-backend/pkg/pagination"
)

type createIntentRequest struct {
	Amount  string  `json:"amount" validate:"required"`
	CauseID *string `json:"cause_id" validate:"omitempty,uuid4"`
}

type confirmDonationRequest struct {
	DonationID      string `json:"donation_id" validate:"required,uuid4"`
	PaymentIntentID string `json:"payment_intent_id" validate:"omitempty,max=255"`
	ReportedStatus  string `json:"reported_status" validate:"omitempty,oneof=success failed"`
	FailureReason   string `json:"failure_reason" validate:"omitempty,max=500"`
}

// DonationsCreateIntent opens a pending donation and returns the gateway
// client secret for the browser to complete the charge.
func DonationsCreateIntent(svc donations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "donations service unavailable"))
			return
		}

		donorID, err := requesterID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body createIntentRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		amount, err := decimal.NewFromString(body.Amount)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid amount"))
			return
		}

		var causeID *uuid.UUID
		if body.CauseID != nil {
			parsed, err := uuid.Parse(*body.CauseID)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid cause id"))
				return
			}
			causeID = &parsed
		}

		result, err := svc.CreateIntent(r.Context(), donations.CreateIntentInput{
			DonorID: donorID,
			CauseID: causeID,
			Amount:  amount,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

// DonationsConfirm settles a pending donation after the browser flow
// finishes. Success claims are verified against the gateway.
func DonationsConfirm(svc donations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "donations service unavailable"))
			return
		}

		var body confirmDonationRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		donationID, err := uuid.Parse(body.DonationID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid donation id"))
			return
		}

		donation, err := svc.Confirm(r.Context(), donations.ConfirmInput{
			DonationID:     donationID,
			ExternalRef:    body.PaymentIntentID,
			ReportedStatus: body.ReportedStatus,
			FailureReason:  body.FailureReason,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, donation)
	}
}

// DonationsList pages through the caller's own donations, newest first.
func DonationsList(svc donations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "donations service unavailable"))
			return
		}

		donorID, err := requesterID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.ListByDonor(r.Context(), donorID, pagination.Params{
			Limit:  limit,
			Cursor: r.URL.Query().Get("cursor"),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, list)
	}
}

// DonationsGet returns a single donation. Donors only see their own rows.
func DonationsGet(svc donations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "donations service unavailable"))
			return
		}

		userID, err := requesterID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		donationID, err := uuid.Parse(chi.URLParam(r, "donationId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid donation id"))
			return
		}

		role := enums.UserRole(middleware.RoleFromContext(r.Context()))

		donation, err := svc.Get(r.Context(), userID, role, donationID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, donation)
	}
}
