package donations

import (
	"context"

	"github.com/stripe/stripe-go/v84"
	"github.com/stripe/stripe-go/v84/paymentintent"

	pkgstripe "github.com/givebridge/givebridge-backend/pkg/stripe"
)

// PaymentGateway exposes the subset of Stripe operations required by the
// donation service.
type PaymentGateway interface {
	CreatePaymentIntent(ctx context.Context, params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
	RetrievePaymentIntent(ctx context.Context, id string) (*stripe.PaymentIntent, error)
}

type stripeGatewayWrapper struct{}

// NewStripeGateway wraps the configured Stripe client so the donation service
// can be tested against a fake gateway.
func NewStripeGateway(api *pkgstripe.Client) PaymentGateway {
	if api == nil {
		return nil
	}
	return &stripeGatewayWrapper{}
}

func (w *stripeGatewayWrapper) CreatePaymentIntent(ctx context.Context, params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error) {
	if params != nil {
		params.Context = ctx
	}
	return paymentintent.New(params)
}

func (w *stripeGatewayWrapper) RetrievePaymentIntent(ctx context.Context, id string) (*stripe.PaymentIntent, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx
	return paymentintent.Get(id, params)
}
