// AngelaMos | 2026
// dto.go

package auth

import (
	"github.com/carterperez-dev/biolink/internal/user"
)

type RegisterRequest struct {
	Email     string `json:"email"      validate:"required,email,max=255"`
	Password  string `json:"password"   validate:"required,min=6,max=128"`
	FirstName string `json:"first_name" validate:"required,min=1,max=100"`
	LastName  string `json:"last_name"  validate:"required,min=1,max=100"`
}

// LoginRequest carries no password length rule: a short password is
// just a wrong password, and wrong passwords come back 401 from the
// verify step, not 400 from validation.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,max=128"`
}

type ResendVerificationRequest struct {
	Email string `json:"email" validate:"required,email,max=255"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email,max=255"`
}

type ResetPasswordRequest struct {
	Token       string `json:"token"        validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=6,max=128"`
}

type RegisterResponse struct {
	User                 user.UserResponse `json:"user"`
	RequiresVerification bool              `json:"requires_verification"`
}

type LoginResponse struct {
	User user.UserResponse `json:"user"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
