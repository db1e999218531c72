// AngelaMos | 2026
// entity.go

package user

import (
	"time"
)

// User is one account. PasswordHash is nil for OAuth-only accounts and
// Username stays nil until the user claims one.
type User struct {
	ID                    string     `db:"id"`
	Email                 string     `db:"email"`
	PasswordHash          *string    `db:"password_hash"`
	FirstName             string     `db:"first_name"`
	LastName              string     `db:"last_name"`
	ProfileImageURL       *string    `db:"profile_image_url"`
	Username              *string    `db:"username"`
	IsPaid                bool       `db:"is_paid"`
	SubscriptionEndsAt    *time.Time `db:"subscription_ends_at"`
	IsDemoMode            bool       `db:"is_demo_mode"`
	GoogleID              *string    `db:"google_id"`
	EmailVerified         bool       `db:"email_verified"`
	VerificationTokenHash *string    `db:"verification_token_hash"`
	VerificationExpiresAt *time.Time `db:"verification_expires_at"`
	ResetTokenHash        *string    `db:"reset_token_hash"`
	ResetExpiresAt        *time.Time `db:"reset_expires_at"`
	StripeCustomerID      *string    `db:"stripe_customer_id"`
	StripeSubscriptionID  *string    `db:"stripe_subscription_id"`
	CreatedAt             time.Time  `db:"created_at"`
	UpdatedAt             time.Time  `db:"updated_at"`
}

// HasPaidAccess reports whether entitlement-gated features are unlocked.
// Demo mode counts, but is tracked separately from the billing state.
func (u *User) HasPaidAccess() bool {
	return u.IsPaid || u.IsDemoMode
}

func (u *User) HasPassword() bool {
	return u.PasswordHash != nil && *u.PasswordHash != ""
}

func (u *User) HasUsername() bool {
	return u.Username != nil && *u.Username != ""
}

func (u *User) FullName() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	default:
		return u.LastName
	}
}
