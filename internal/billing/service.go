// AngelaMos | 2026
// service.go

package billing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/carterperez-dev/biolink/internal/user"
)

var ErrNoEmail = errors.New("account has no email for billing")

type Service struct {
	provider Provider
	users    *user.Service
	logger   *slog.Logger
}

func NewService(
	provider Provider,
	users *user.Service,
	logger *slog.Logger,
) *Service {
	return &Service{
		provider: provider,
		users:    users,
		logger:   logger,
	}
}

// GetOrCreateSubscription is idempotent per user. An account that
// already holds a subscription gets the same subscription id back with
// a fresh payment secret; nothing new is created at the provider.
// Otherwise customer, price, and subscription are created and both
// provider ids are persisted together with the paid flag in a single
// statement, so no partial linkage can survive a crash.
func (s *Service) GetOrCreateSubscription(
	ctx context.Context,
	userID string,
) (*SubscriptionResponse, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}

	if u.Email == "" {
		return nil, ErrNoEmail
	}

	if u.StripeSubscriptionID != nil && *u.StripeSubscriptionID != "" {
		secret, err := s.provider.GetSubscriptionSecret(
			ctx,
			*u.StripeSubscriptionID,
		)
		if err != nil {
			return nil, err
		}

		return &SubscriptionResponse{
			SubscriptionID: *u.StripeSubscriptionID,
			ClientSecret:   secret,
		}, nil
	}

	customerID, err := s.provider.CreateCustomer(ctx, u.Email, u.FullName())
	if err != nil {
		return nil, err
	}

	priceID, err := s.provider.EnsurePrice(ctx)
	if err != nil {
		return nil, err
	}

	subscriptionID, secret, err := s.provider.CreateSubscription(
		ctx,
		customerID,
		priceID,
	)
	if err != nil {
		return nil, err
	}

	if _, err := s.users.UpdateSubscriptionInfo(
		ctx,
		userID,
		customerID,
		subscriptionID,
	); err != nil {
		// Subscription exists at the provider but the account lost the
		// link. Surface loudly; the next call would create a duplicate.
		s.logger.Error(
			"subscription created but not persisted",
			"user_id", userID,
			"subscription_id", subscriptionID,
			"error", err,
		)
		return nil, fmt.Errorf("persist subscription: %w", err)
	}

	return &SubscriptionResponse{
		SubscriptionID: subscriptionID,
		ClientSecret:   secret,
	}, nil
}

// EnableDemoMode grants paid features without touching the payment
// provider. The demo flag is separate from is_paid so a later real
// subscription does not collide with it.
func (s *Service) EnableDemoMode(
	ctx context.Context,
	userID string,
) (*user.User, error) {
	return s.users.EnableDemoMode(ctx, userID)
}

func (s *Service) Status(
	ctx context.Context,
	userID string,
) (*StatusResponse, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	hasSub := u.StripeSubscriptionID != nil && *u.StripeSubscriptionID != ""

	return &StatusResponse{
		IsPaid:             u.IsPaid,
		IsDemoMode:         u.IsDemoMode,
		HasSubscription:    hasSub,
		SubscriptionEndsAt: u.SubscriptionEndsAt,
	}, nil
}
