package controllers

import (
	"context"
	"net/http"

	"github.com/givebridge/givebridge-backend/api/responses"
	"github.com/givebridge/givebridge-backend/internal/aggregation"
	"github.com/givebridge/givebridge-backend/internal/users"
	"github.com/givebridge/givebridge-backend/pkg/db/models"
	"github.com/givebridge/givebridge-backend/pkg/enums"
	pkgerrors "github.com/givebridge/givebridge-backend/pkg/errors"
	"github.com/givebridge/givebridge-backend/pkg/logger"
)

type donorLister interface {
	ListByRole(ctx context.Context, role enums.UserRole) ([]models.User, error)
}

// UsersMe returns the caller's account together with their donation
// history and running total.
func UsersMe(svc aggregation.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "aggregation service unavailable"))
			return
		}

		userID, err := requesterID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		summary, err := svc.UserSummary(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, summary)
	}
}

// AdminDonations returns the full donation ledger with system-wide stats.
func AdminDonations(svc aggregation.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "aggregation service unavailable"))
			return
		}

		summary, err := svc.SystemSummary(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, summary)
	}
}

// AdminDonors lists every donor account, newest registration first.
func AdminDonors(repo donorLister, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if repo == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "users repository unavailable"))
			return
		}

		donors, err := repo.ListByRole(r.Context(), enums.UserRoleDonor)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := make([]users.UserDTO, 0, len(donors))
		for i := range donors {
			out = append(out, *users.FromModel(&donors[i]))
		}
		responses.WriteSuccess(w, out)
	}
}
