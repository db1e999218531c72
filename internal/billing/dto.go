// AngelaMos | 2026
// dto.go

package billing

import (
	"time"
)

type SubscriptionResponse struct {
	SubscriptionID string `json:"subscription_id"`
	ClientSecret   string `json:"client_secret,omitempty"`
}

type StatusResponse struct {
	IsPaid             bool       `json:"is_paid"`
	IsDemoMode         bool       `json:"is_demo_mode"`
	HasSubscription    bool       `json:"has_subscription"`
	SubscriptionEndsAt *time.Time `json:"subscription_ends_at,omitempty"`
}
