// AngelaMos | 2026
// service.go

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/carterperez-dev/biolink/internal/core"
	"github.com/carterperez-dev/biolink/internal/user"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailExists        = errors.New("email already registered")
	ErrEmailNotVerified   = errors.New("email not verified")
)

// Mailer abstracts the SMTP dispatcher. Sends report delivery as a bool;
// registration decides its own fallback when mail is down.
type Mailer interface {
	SendVerificationEmail(to, firstName, token string) bool
	SendPasswordResetEmail(to, firstName, token string) bool
	SendWelcomeEmail(to, firstName string) bool
}

type Service struct {
	users  *user.Service
	mailer Mailer
	logger *slog.Logger
}

func NewService(
	users *user.Service,
	mailer Mailer,
	logger *slog.Logger,
) *Service {
	return &Service{
		users:  users,
		mailer: mailer,
		logger: logger,
	}
}

type RegisterResult struct {
	User                 *user.User
	RequiresVerification bool
}

// Register creates a local-credential account and starts email
// verification. When the verification email cannot be delivered the
// account is verified immediately rather than stranding the user behind
// a mail outage.
func (s *Service) Register(
	ctx context.Context,
	req RegisterRequest,
) (*RegisterResult, error) {
	passwordHash, err := core.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u, err := s.users.CreateLocal(
		ctx,
		req.Email,
		passwordHash,
		strings.TrimSpace(req.FirstName),
		strings.TrimSpace(req.LastName),
	)
	if err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	token, err := core.IssueToken()
	if err != nil {
		return nil, fmt.Errorf("issue verification token: %w", err)
	}

	err = s.users.SetVerificationToken(
		ctx,
		u.ID,
		core.HashToken(token),
		core.TokenExpiry(core.TokenKindVerification),
	)
	if err != nil {
		return nil, fmt.Errorf("store verification token: %w", err)
	}

	if !s.mailer.SendVerificationEmail(u.Email, u.FirstName, token) {
		s.logger.Warn(
			"verification email not delivered, auto-verifying",
			"user_id", u.ID,
		)

		if err := s.users.MarkEmailVerified(ctx, u.ID); err != nil {
			return nil, fmt.Errorf("auto-verify email: %w", err)
		}
		u.EmailVerified = true

		s.mailer.SendWelcomeEmail(u.Email, u.FirstName)

		return &RegisterResult{User: u, RequiresVerification: false}, nil
	}

	return &RegisterResult{User: u, RequiresVerification: true}, nil
}

// Login verifies credentials in constant time regardless of whether the
// email exists or the account has a password at all.
func (s *Service) Login(
	ctx context.Context,
	req LoginRequest,
) (*user.User, error) {
	u, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil && !errors.Is(err, core.ErrNotFound) {
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	var passwordHash *string
	if u != nil {
		passwordHash = u.PasswordHash
	}

	valid, newHash, err := core.VerifyPasswordTimingSafe(
		req.Password,
		passwordHash,
	)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !valid || u == nil {
		return nil, ErrInvalidCredentials
	}

	if !u.EmailVerified {
		return nil, ErrEmailNotVerified
	}

	if newHash != "" {
		if err := s.users.UpdatePassword(ctx, u.ID, newHash); err != nil {
			s.logger.Warn("password rehash failed", "user_id", u.ID, "error", err)
		}
	}

	return u, nil
}

// VerifyEmail consumes a verification token. Consumption is atomic in
// the store, so a token observed as absent, already used, or expired is
// rejected identically.
func (s *Service) VerifyEmail(
	ctx context.Context,
	token string,
) (*user.User, error) {
	if token == "" {
		return nil, core.ErrTokenInvalid
	}

	u, err := s.users.ConsumeVerificationToken(ctx, core.HashToken(token))
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, core.ErrTokenInvalid
		}
		return nil, fmt.Errorf("consume verification token: %w", err)
	}

	s.mailer.SendWelcomeEmail(u.Email, u.FirstName)

	return u, nil
}

// ResendVerification issues a fresh token for an unverified account.
// The response never reveals whether the email exists or its state.
func (s *Service) ResendVerification(ctx context.Context, email string) error {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("lookup user: %w", err)
	}

	if u.EmailVerified {
		return nil
	}

	token, err := core.IssueToken()
	if err != nil {
		return fmt.Errorf("issue verification token: %w", err)
	}

	err = s.users.SetVerificationToken(
		ctx,
		u.ID,
		core.HashToken(token),
		core.TokenExpiry(core.TokenKindVerification),
	)
	if err != nil {
		return fmt.Errorf("store verification token: %w", err)
	}

	s.mailer.SendVerificationEmail(u.Email, u.FirstName, token)

	return nil
}

// ForgotPassword starts a password reset. Like ResendVerification it is
// deliberately silent about unknown emails.
func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("lookup user: %w", err)
	}

	token, err := core.IssueToken()
	if err != nil {
		return fmt.Errorf("issue reset token: %w", err)
	}

	err = s.users.SetResetToken(
		ctx,
		u.ID,
		core.HashToken(token),
		core.TokenExpiry(core.TokenKindPasswordReset),
	)
	if err != nil {
		return fmt.Errorf("store reset token: %w", err)
	}

	s.mailer.SendPasswordResetEmail(u.Email, u.FirstName, token)

	return nil
}

// ResetPassword consumes a reset token and installs the new password
// hash in the same statement.
func (s *Service) ResetPassword(
	ctx context.Context,
	token, newPassword string,
) (*user.User, error) {
	if token == "" {
		return nil, core.ErrTokenInvalid
	}

	passwordHash, err := core.HashPassword(newPassword)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u, err := s.users.ConsumeResetToken(ctx, core.HashToken(token), passwordHash)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, core.ErrTokenInvalid
		}
		return nil, fmt.Errorf("consume reset token: %w", err)
	}

	return u, nil
}
