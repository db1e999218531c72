// AngelaMos | 2026
// stripe.go

package billing

import (
	"context"
	"errors"
	"fmt"

	stripe "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"

	"github.com/carterperez-dev/biolink/internal/config"
	"github.com/carterperez-dev/biolink/internal/core"
)

// Provider is the payment-provider surface the subscription bridge
// needs. The stripe-go implementation is the production one; tests
// substitute a fake.
type Provider interface {
	CreateCustomer(ctx context.Context, email, name string) (string, error)
	EnsurePrice(ctx context.Context) (string, error)
	CreateSubscription(
		ctx context.Context,
		customerID, priceID string,
	) (subscriptionID, clientSecret string, err error)
	GetSubscriptionSecret(
		ctx context.Context,
		subscriptionID string,
	) (clientSecret string, err error)
}

type stripeProvider struct {
	api *client.API
	cfg config.StripeConfig
}

func NewStripeProvider(cfg config.StripeConfig) Provider {
	api := &client.API{}
	api.Init(cfg.SecretKey, nil)

	return &stripeProvider{api: api, cfg: cfg}
}

func (p *stripeProvider) CreateCustomer(
	ctx context.Context,
	email, name string,
) (string, error) {
	params := &stripe.CustomerParams{
		Params: stripe.Params{Context: ctx},
		Email:  stripe.String(email),
		Name:   stripe.String(name),
	}

	customer, err := p.api.Customers.New(params)
	if err != nil {
		return "", wrapStripeError("create customer", err)
	}

	return customer.ID, nil
}

// EnsurePrice returns the configured price id, creating a product and
// recurring monthly price on the fly when none is configured.
func (p *stripeProvider) EnsurePrice(ctx context.Context) (string, error) {
	if p.cfg.PriceID != "" {
		return p.cfg.PriceID, nil
	}

	params := &stripe.PriceParams{
		Params:     stripe.Params{Context: ctx},
		UnitAmount: stripe.Int64(p.cfg.PriceAmount),
		Currency:   stripe.String(p.cfg.Currency),
		Recurring: &stripe.PriceRecurringParams{
			Interval: stripe.String(string(stripe.PriceRecurringIntervalMonth)),
		},
		ProductData: &stripe.PriceProductDataParams{
			Name: stripe.String(p.cfg.ProductName),
		},
	}

	price, err := p.api.Prices.New(params)
	if err != nil {
		return "", wrapStripeError("create price", err)
	}

	return price.ID, nil
}

// CreateSubscription starts an incomplete subscription and returns the
// client secret the frontend needs to confirm the first payment.
func (p *stripeProvider) CreateSubscription(
	ctx context.Context,
	customerID, priceID string,
) (string, string, error) {
	params := &stripe.SubscriptionParams{
		Params:   stripe.Params{Context: ctx},
		Customer: stripe.String(customerID),
		Items: []*stripe.SubscriptionItemsParams{
			{Price: stripe.String(priceID)},
		},
		PaymentBehavior: stripe.String("default_incomplete"),
	}
	params.AddExpand("latest_invoice.confirmation_secret")

	sub, err := p.api.Subscriptions.New(params)
	if err != nil {
		return "", "", wrapStripeError("create subscription", err)
	}

	return sub.ID, extractClientSecret(sub), nil
}

// GetSubscriptionSecret re-fetches an existing subscription's pending
// payment secret so a second checkout attempt reuses the same
// subscription instead of creating a duplicate.
func (p *stripeProvider) GetSubscriptionSecret(
	ctx context.Context,
	subscriptionID string,
) (string, error) {
	params := &stripe.SubscriptionParams{
		Params: stripe.Params{Context: ctx},
	}
	params.AddExpand("latest_invoice.confirmation_secret")

	sub, err := p.api.Subscriptions.Get(subscriptionID, params)
	if err != nil {
		return "", wrapStripeError("get subscription", err)
	}

	return extractClientSecret(sub), nil
}

func extractClientSecret(sub *stripe.Subscription) string {
	if sub == nil || sub.LatestInvoice == nil ||
		sub.LatestInvoice.ConfirmationSecret == nil {
		return ""
	}
	return sub.LatestInvoice.ConfirmationSecret.ClientSecret
}

// wrapStripeError surfaces the provider's own message to the client;
// declined cards and misconfigured keys both come back as provider
// failures, not internal errors.
func wrapStripeError(op string, err error) error {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) && stripeErr.Msg != "" {
		return core.UpstreamError(stripeErr.Msg)
	}
	return core.UpstreamError(fmt.Sprintf("%s failed", op))
}
