package donations

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v84"
	"gorm.io/gorm"

	"github.com/givebridge/givebridge-backend/pkg/config"
	"github.com/givebridge/givebridge-backend/pkg/db/models"
	"github.com/givebridge/givebridge-backend/pkg/enums"
	pkgerrors "github.com/givebridge/givebridge-backend/pkg/errors"
	"github.com/givebridge/givebridge-backend/pkg/logger"
	"github.com/givebridge/givebridge-backend/pkg/metrics"
	"github.com/givebridge/givebridge-backend/pkg/pagination"
)

const (
	defaultPaymentMethod = "card"
	defaultCauseName     = "General Fund"

	// Default reasons when neither the client nor the gateway supplied one.
	reasonClientDeclined = "Payment declined"
	reasonGatewayFailed  = "Payment failed"

	sourceConfirm = "confirm"
	sourceWebhook = "webhook"
)

// Service owns the donation payment lifecycle: intent creation, status
// reconciliation, and history reads.
type Service interface {
	CreateIntent(ctx context.Context, input CreateIntentInput) (*IntentResult, error)
	Confirm(ctx context.Context, input ConfirmInput) (*DonationDTO, error)
	ApplyGatewayOutcome(ctx context.Context, externalRef string, succeeded bool, failureReason string) (*DonationDTO, bool, error)
	ListByDonor(ctx context.Context, donorID uuid.UUID, params pagination.Params) (*DonationList, error)
	Get(ctx context.Context, requesterID uuid.UUID, role enums.UserRole, id uuid.UUID) (*DonationDTO, error)
}

type repository interface {
	Create(ctx context.Context, donation *models.Donation) (*models.Donation, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Donation, error)
	FindByPaymentIntentID(ctx context.Context, ref string) (*models.Donation, error)
	ListByDonor(ctx context.Context, donorID uuid.UUID, params pagination.Params) ([]models.Donation, error)
	ResolveTerminal(ctx context.Context, id uuid.UUID, target enums.DonationStatus, failureReason *string) (*models.Donation, bool, error)
}

type userFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type causeFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Cause, error)
}

// Notifier delivers outcome emails. Calls are fire-and-forget: delivery
// failures are logged by the implementation and never affect the donation.
type Notifier interface {
	DonationReceipt(ctx context.Context, donor *models.User, donation DonationDTO)
	DonationFailed(ctx context.Context, donor *models.User, donation DonationDTO)
}

type service struct {
	repo     repository
	users    userFinder
	causes   causeFinder
	gateway  PaymentGateway
	notifier Notifier
	metrics  *metrics.DonationMetrics
	logg     *logger.Logger

	currency       string
	minimumAmount  decimal.Decimal
	gatewayTimeout time.Duration
}

// ServiceParams bundles the dependencies required to build a donation service.
type ServiceParams struct {
	Repo     repository
	Users    userFinder
	Causes   causeFinder
	Gateway  PaymentGateway
	Notifier Notifier
	Metrics  *metrics.DonationMetrics
	Logger   *logger.Logger
	Config   config.DonationConfig
}

// NewService constructs a donation service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("donations repository is required")
	}
	if params.Users == nil {
		return nil, fmt.Errorf("users repository is required")
	}
	if params.Causes == nil {
		return nil, fmt.Errorf("causes repository is required")
	}
	if params.Gateway == nil {
		return nil, fmt.Errorf("payment gateway is required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	minimum, err := decimal.NewFromString(params.Config.MinimumAmount)
	if err != nil {
		return nil, fmt.Errorf("invalid minimum donation amount %q: %w", params.Config.MinimumAmount, err)
	}
	currency := params.Config.Currency
	if currency == "" {
		currency = "usd"
	}
	timeout := params.Config.GatewayTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &service{
		repo:           params.Repo,
		users:          params.Users,
		causes:         params.Causes,
		gateway:        params.Gateway,
		notifier:       params.Notifier,
		metrics:        params.Metrics,
		logg:           params.Logger,
		currency:       currency,
		minimumAmount:  minimum,
		gatewayTimeout: timeout,
	}, nil
}

// CreateIntent validates the request, registers a payment intent with the
// gateway, and records the pending donation. The row is written only after
// the gateway accepted the intent, so a gateway outage leaves no ledger
// entry behind.
func (s *service) CreateIntent(ctx context.Context, input CreateIntentInput) (*IntentResult, error) {
	if input.Amount.LessThan(s.minimumAmount) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("minimum donation amount is $%s", s.minimumAmount.StringFixed(2)))
	}

	donor, err := s.users.FindByID(ctx, input.DonorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "donor not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup donor")
	}

	causeName := defaultCauseName
	if input.CauseID != nil {
		cause, err := s.causes.FindByID(ctx, *input.CauseID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cause not found")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup cause")
		}
		causeName = cause.Name
	}

	// Stripe amounts are integer cents; half-up rounding matches how the
	// client renders the charge.
	cents := input.Amount.Shift(2).Round(0).IntPart()

	params := &stripe.PaymentIntentParams{
		Amount:             stripe.Int64(cents),
		Currency:           stripe.String(s.currency),
		PaymentMethodTypes: stripe.StringSlice([]string{defaultPaymentMethod}),
	}
	params.AddMetadata("donor_id", donor.ID.String())
	params.AddMetadata("donor_name", donor.Name)
	params.AddMetadata("donor_email", donor.Email)
	params.AddMetadata("cause_name", causeName)
	if input.CauseID != nil {
		params.AddMetadata("cause_id", input.CauseID.String())
	}

	gctx, cancel := context.WithTimeout(ctx, s.gatewayTimeout)
	defer cancel()

	start := time.Now()
	intent, err := s.gateway.CreatePaymentIntent(gctx, params)
	s.metrics.ObserveGatewayDuration("create_payment_intent", time.Since(start))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "payment gateway unavailable")
	}

	donation, err := s.repo.Create(ctx, &models.Donation{
		DonorID:               donor.ID,
		CauseID:               input.CauseID,
		CauseName:             causeName,
		Amount:                input.Amount.Round(2),
		Currency:              s.currency,
		Status:                enums.DonationStatusPending,
		PaymentMethod:         defaultPaymentMethod,
		StripePaymentIntentID: intent.ID,
	})
	if err != nil {
		// The gateway intent exists but was never linked; it expires on its
		// own, so record the reference for manual follow-up.
		lctx := s.logg.WithField(ctx, "payment_intent_id", intent.ID)
		s.logg.Error(lctx, "donation.intent.orphaned", err)
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "record donation")
	}

	lctx := s.logg.WithDonationID(ctx, donation.ID.String())
	s.logg.Info(s.logg.WithField(lctx, "amount", donation.Amount.StringFixed(2)), "donation.intent.created")

	return &IntentResult{
		DonationID:   donation.ID,
		ExternalRef:  intent.ID,
		ClientSecret: intent.ClientSecret,
	}, nil
}

// Confirm reconciles a client-reported payment outcome. A client may only
// report failure directly; any claim of success is checked against the
// gateway before the donation leaves pending.
func (s *service) Confirm(ctx context.Context, input ConfirmInput) (*DonationDTO, error) {
	donation, err := s.repo.FindByID(ctx, input.DonationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "donation not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup donation")
	}

	if donation.Status.IsTerminal() {
		dto := FromModel(donation)
		return &dto, nil
	}

	if input.ReportedStatus == string(enums.DonationStatusFailed) {
		reason := input.FailureReason
		if reason == "" {
			reason = reasonClientDeclined
		}
		dto, _, err := s.resolve(ctx, donation.ID, enums.DonationStatusFailed, &reason, sourceConfirm)
		return dto, err
	}

	ref := input.ExternalRef
	if ref == "" {
		ref = donation.StripePaymentIntentID
	}

	gctx, cancel := context.WithTimeout(ctx, s.gatewayTimeout)
	defer cancel()

	start := time.Now()
	intent, err := s.gateway.RetrievePaymentIntent(gctx, ref)
	s.metrics.ObserveGatewayDuration("retrieve_payment_intent", time.Since(start))
	if err != nil {
		// The donation stays pending; the client retries once the gateway
		// is reachable again.
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "payment gateway unavailable")
	}

	switch intent.Status {
	case stripe.PaymentIntentStatusSucceeded:
		dto, _, err := s.resolve(ctx, donation.ID, enums.DonationStatusSuccess, nil, sourceConfirm)
		return dto, err
	case stripe.PaymentIntentStatusRequiresPaymentMethod,
		stripe.PaymentIntentStatusRequiresConfirmation,
		stripe.PaymentIntentStatusRequiresAction,
		stripe.PaymentIntentStatusRequiresCapture,
		stripe.PaymentIntentStatusProcessing:
		// Still in flight on the gateway side.
		dto := FromModel(donation)
		return &dto, nil
	default:
		reason := gatewayFailureReason(intent)
		dto, _, err := s.resolve(ctx, donation.ID, enums.DonationStatusFailed, &reason, sourceConfirm)
		return dto, err
	}
}

// ApplyGatewayOutcome lands a webhook-delivered outcome. An unknown reference
// returns (nil, false, nil) so the caller can acknowledge and drop the event.
func (s *service) ApplyGatewayOutcome(ctx context.Context, externalRef string, succeeded bool, failureReason string) (*DonationDTO, bool, error) {
	donation, err := s.repo.FindByPaymentIntentID(ctx, externalRef)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, nil
		}
		return nil, false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup donation")
	}

	if donation.Status.IsTerminal() {
		dto := FromModel(donation)
		return &dto, false, nil
	}

	target := enums.DonationStatusFailed
	var reason *string
	if succeeded {
		target = enums.DonationStatusSuccess
	} else {
		value := failureReason
		if value == "" {
			value = reasonGatewayFailed
		}
		reason = &value
	}

	return s.resolve(ctx, donation.ID, target, reason, sourceWebhook)
}

// ListByDonor returns a page of the donor's history, newest first.
func (s *service) ListByDonor(ctx context.Context, donorID uuid.UUID, params pagination.Params) (*DonationList, error) {
	rows, err := s.repo.ListByDonor(ctx, donorID, params)
	if err != nil {
		if errors.Is(err, pagination.ErrInvalidCursor) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid cursor")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list donations")
	}

	limit := pagination.NormalizeLimit(params.Limit)
	next := ""
	if len(rows) > limit {
		rows = rows[:limit]
		last := rows[len(rows)-1]
		next = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}

	return &DonationList{Donations: FromModels(rows), NextCursor: next}, nil
}

// Get loads a single donation. Donors only see their own rows; admins see all.
func (s *service) Get(ctx context.Context, requesterID uuid.UUID, role enums.UserRole, id uuid.UUID) (*DonationDTO, error) {
	donation, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "donation not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup donation")
	}
	if role != enums.UserRoleAdmin && donation.DonorID != requesterID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "donation not found")
	}
	dto := FromModel(donation)
	return &dto, nil
}

// resolve runs the shared terminal transition and emits the side effects
// (metrics, notification) only when this call actually applied it.
func (s *service) resolve(ctx context.Context, id uuid.UUID, target enums.DonationStatus, reason *string, source string) (*DonationDTO, bool, error) {
	donation, applied, err := s.repo.ResolveTerminal(ctx, id, target, reason)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, pkgerrors.New(pkgerrors.CodeNotFound, "donation not found")
		}
		return nil, false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "resolve donation")
	}

	dto := FromModel(donation)
	if applied {
		s.metrics.IncTransition(string(dto.Status), source)
		lctx := s.logg.WithDonationID(ctx, dto.ID.String())
		s.logg.Info(s.logg.WithFields(lctx, map[string]any{
			"status": string(dto.Status),
			"source": source,
		}), "donation.resolved")
		s.notifyOutcome(ctx, dto)
	}
	return &dto, applied, nil
}

func (s *service) notifyOutcome(ctx context.Context, donation DonationDTO) {
	if s.notifier == nil {
		return
	}
	donor, err := s.users.FindByID(ctx, donation.DonorID)
	if err != nil {
		s.logg.Error(ctx, "donation.notify.lookup_donor", err)
		return
	}

	detached := context.WithoutCancel(ctx)
	go func() {
		if donation.Status == enums.DonationStatusSuccess {
			s.notifier.DonationReceipt(detached, donor, donation)
			return
		}
		s.notifier.DonationFailed(detached, donor, donation)
	}()
}

func gatewayFailureReason(intent *stripe.PaymentIntent) string {
	if intent == nil || intent.LastPaymentError == nil {
		return reasonGatewayFailed
	}
	if intent.LastPaymentError.Msg != "" {
		return intent.LastPaymentError.Msg
	}
	if intent.LastPaymentError.Code != "" {
		return string(intent.LastPaymentError.Code)
	}
	return reasonGatewayFailed
}
