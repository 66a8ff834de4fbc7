package payments

import (
	"context"
	"fmt"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

// Charger collects the plan price before a subscription row is written.
type Charger interface {
	Charge(ctx context.Context, amount int64, paymentMethod, description string) (ref string, err error)
}

type StripeCharger struct {
	api *client.API
}

func NewStripeCharger(secretKey string) *StripeCharger {
	api := &client.API{}
	api.Init(secretKey, nil)
	return &StripeCharger{api: api}
}

func (c *StripeCharger) Charge(ctx context.Context, amount int64, paymentMethod, description string) (string, error) {
	params := &stripe.PaymentIntentParams{
		Amount:        stripe.Int64(amount),
		Currency:      stripe.String(string(stripe.CurrencyUSD)),
		PaymentMethod: stripe.String(paymentMethod),
		Description:   stripe.String(description),
		Confirm:       stripe.Bool(true),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled:        stripe.Bool(true),
			AllowRedirects: stripe.String("never"),
		},
	}
	params.Context = ctx

	pi, err := c.api.PaymentIntents.New(params)
	if err != nil {
		return "", fmt.Errorf("stripe charge failed: %w", err)
	}
	return pi.ID, nil
}

// NoopCharger is used in sandbox mode when no Stripe key is configured.
type NoopCharger struct{}

func (NoopCharger) Charge(ctx context.Context, amount int64, paymentMethod, description string) (string, error) {
	return "sandbox-" + description, nil
}
