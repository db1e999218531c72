// AngelaMos | 2026
// dto.go

package user

import (
	"time"
)

type UpdateUserRequest struct {
	FirstName       *string `json:"first_name,omitempty"        validate:"omitempty,max=100"`
	LastName        *string `json:"last_name,omitempty"         validate:"omitempty,max=100"`
	ProfileImageURL *string `json:"profile_image_url,omitempty" validate:"omitempty,url,max=2048"`
}

type SetUsernameRequest struct {
	Username string `json:"username" validate:"required,min=3,max=30"`
}

type UserResponse struct {
	ID                 string     `json:"id"`
	Email              string     `json:"email"`
	FirstName          string     `json:"first_name"`
	LastName           string     `json:"last_name"`
	ProfileImageURL    *string    `json:"profile_image_url,omitempty"`
	Username           *string    `json:"username,omitempty"`
	IsPaid             bool       `json:"is_paid"`
	IsDemoMode         bool       `json:"is_demo_mode"`
	SubscriptionEndsAt *time.Time `json:"subscription_ends_at,omitempty"`
	EmailVerified      bool       `json:"email_verified"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

type UsernameAvailableResponse struct {
	Username  string `json:"username"`
	Available bool   `json:"available"`
}

// ToUserResponse strips credential and token fields from the entity.
func ToUserResponse(u *User) UserResponse {
	return UserResponse{
		ID:                 u.ID,
		Email:              u.Email,
		FirstName:          u.FirstName,
		LastName:           u.LastName,
		ProfileImageURL:    u.ProfileImageURL,
		Username:           u.Username,
		IsPaid:             u.IsPaid,
		IsDemoMode:         u.IsDemoMode,
		SubscriptionEndsAt: u.SubscriptionEndsAt,
		EmailVerified:      u.EmailVerified,
		CreatedAt:          u.CreatedAt,
		UpdatedAt:          u.UpdatedAt,
	}
}
