package stripewebhook

import (
	"context"
	"encoding/json"

	"github.com/stripe/stripe-go/v84"

	"github.com/givebridge/givebridge-backend/internal/donations"
	pkgerrors "github.com/givebridge/givebridge-backend/pkg/errors"
	"github.com/givebridge/givebridge-backend/pkg/logger"
	"github.com/givebridge/givebridge-backend/pkg/metrics"
)

const (
	outcomeApplied    = "applied"
	outcomeDuplicate  = "duplicate"
	outcomeUnknownRef = "unknown_ref"
	outcomeIgnored    = "ignored"
)

type reconciler interface {
	ApplyGatewayOutcome(ctx context.Context, externalRef string, succeeded bool, failureReason string) (*donations.DonationDTO, bool, error)
}

// ServiceParams bundles the dependencies required to build the webhook service.
type ServiceParams struct {
	Reconciler reconciler
	Metrics    *metrics.DonationMetrics
	Logger     *logger.Logger
}

// Service lands Stripe payment outcomes on the donation ledger. Events for
// unknown payment intents and event types outside the payment lifecycle are
// acknowledged and dropped; returning an error makes Stripe redeliver.
type Service struct {
	reconciler reconciler
	metrics    *metrics.DonationMetrics
	logg       *logger.Logger
}

// NewService constructs the webhook service.
func NewService(params ServiceParams) (*Service, error) {
	if params.Reconciler == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "reconciler required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "logger required")
	}
	return &Service{
		reconciler: params.Reconciler,
		metrics:    params.Metrics,
		logg:       params.Logger,
	}, nil
}

// HandleEvent dispatches a verified Stripe event to the reconciler.
func (s *Service) HandleEvent(ctx context.Context, event *stripe.Event) error {
	if event == nil || event.Data == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "stripe event data required")
	}

	switch event.Type {
	case stripe.EventTypePaymentIntentSucceeded:
		return s.applyOutcome(ctx, event, true)
	case stripe.EventTypePaymentIntentPaymentFailed:
		return s.applyOutcome(ctx, event, false)
	default:
		s.metrics.IncWebhookEvent(string(event.Type), outcomeIgnored)
		return nil
	}
}

func (s *Service) applyOutcome(ctx context.Context, event *stripe.Event, succeeded bool) error {
	var intent stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decode payment intent event")
	}
	if intent.ID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "payment intent id missing")
	}

	reason := ""
	if !succeeded {
		reason = failureReasonFromIntent(&intent)
	}

	dto, applied, err := s.reconciler.ApplyGatewayOutcome(ctx, intent.ID, succeeded, reason)
	if err != nil {
		return err
	}

	lctx := s.logg.WithFields(ctx, map[string]any{
		"event_id":          event.ID,
		"event_type":        string(event.Type),
		"payment_intent_id": intent.ID,
	})
	switch {
	case dto == nil:
		// No donation carries this reference; acknowledge so Stripe stops
		// redelivering.
		s.metrics.IncWebhookEvent(string(event.Type), outcomeUnknownRef)
		s.logg.Warn(lctx, "stripe.webhook.unknown_ref")
	case applied:
		s.metrics.IncWebhookEvent(string(event.Type), outcomeApplied)
		s.logg.Info(s.logg.WithDonationID(lctx, dto.ID.String()), "stripe.webhook.applied")
	default:
		s.metrics.IncWebhookEvent(string(event.Type), outcomeDuplicate)
		s.logg.Info(s.logg.WithDonationID(lctx, dto.ID.String()), "stripe.webhook.duplicate")
	}
	return nil
}

func failureReasonFromIntent(intent *stripe.PaymentIntent) string {
	if intent.LastPaymentError == nil {
		return ""
	}
	if intent.LastPaymentError.Msg != "" {
		return intent.LastPaymentError.Msg
	}
	return string(intent.LastPaymentError.Code)
}
