// AngelaMos | 2026
// service.go

package user

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/carterperez-dev/biolink/internal/core"
)

var (
	ErrUsernameTaken   = errors.New("username already taken")
	ErrUsernameInvalid = errors.New("username format invalid")
)

// Letters, digits, hyphen, underscore; 3-30 characters. Stored lowercase.
var usernamePattern = regexp.MustCompile(`^[a-z0-9_-]{3,30}$`)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) GetByID(ctx context.Context, id string) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetByEmail(
	ctx context.Context,
	email string,
) (*User, error) {
	return s.repo.GetByEmail(ctx, strings.ToLower(email))
}

func (s *Service) GetByUsername(
	ctx context.Context,
	username string,
) (*User, error) {
	return s.repo.GetByUsername(ctx, strings.ToLower(username))
}

func (s *Service) GetByGoogleID(
	ctx context.Context,
	googleID string,
) (*User, error) {
	return s.repo.GetByGoogleID(ctx, googleID)
}

func (s *Service) CreateLocal(
	ctx context.Context,
	email, passwordHash, firstName, lastName string,
) (*User, error) {
	u := &User{
		ID:           uuid.New().String(),
		Email:        strings.ToLower(email),
		PasswordHash: &passwordHash,
		FirstName:    firstName,
		LastName:     lastName,
	}

	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}

	return u, nil
}

// CreateFederated creates an account from a trusted identity provider
// profile. Federated emails arrive pre-verified.
func (s *Service) CreateFederated(
	ctx context.Context,
	googleID, email, firstName, lastName string,
	avatarURL *string,
) (*User, error) {
	u := &User{
		ID:              uuid.New().String(),
		Email:           strings.ToLower(email),
		FirstName:       firstName,
		LastName:        lastName,
		ProfileImageURL: avatarURL,
		GoogleID:        &googleID,
		EmailVerified:   true,
	}

	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}

	return u, nil
}

func (s *Service) LinkGoogleID(
	ctx context.Context,
	userID, googleID string,
) error {
	return s.repo.LinkGoogleID(ctx, userID, googleID)
}

func (s *Service) UpdateMe(
	ctx context.Context,
	userID string,
	req UpdateUserRequest,
) (*User, error) {
	if userID == "" {
		return nil, fmt.Errorf("update me: %w", core.ErrUnauthorized)
	}

	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.FirstName != nil {
		u.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		u.LastName = *req.LastName
	}
	if req.ProfileImageURL != nil {
		u.ProfileImageURL = req.ProfileImageURL
	}

	if err := s.repo.Update(ctx, u); err != nil {
		return nil, err
	}

	return u, nil
}

func (s *Service) SetUsername(
	ctx context.Context,
	userID, username string,
) (*User, error) {
	if userID == "" {
		return nil, fmt.Errorf("set username: %w", core.ErrUnauthorized)
	}

	normalized := strings.ToLower(strings.TrimSpace(username))
	if !usernamePattern.MatchString(normalized) {
		return nil, fmt.Errorf("set username %q: %w", username, ErrUsernameInvalid)
	}

	u, err := s.repo.UpdateUsername(ctx, userID, normalized)
	if err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}

	return u, nil
}

func (s *Service) UsernameAvailable(
	ctx context.Context,
	username string,
) (bool, error) {
	normalized := strings.ToLower(strings.TrimSpace(username))
	if !usernamePattern.MatchString(normalized) {
		return false, fmt.Errorf(
			"check username %q: %w",
			username,
			ErrUsernameInvalid,
		)
	}

	exists, err := s.repo.ExistsByUsername(ctx, normalized)
	if err != nil {
		return false, err
	}

	return !exists, nil
}

func (s *Service) UpdatePassword(
	ctx context.Context,
	userID, passwordHash string,
) error {
	return s.repo.UpdatePassword(ctx, userID, passwordHash)
}

func (s *Service) SetVerificationToken(
	ctx context.Context,
	userID, tokenHash string,
	expiresAt time.Time,
) error {
	return s.repo.SetVerificationToken(ctx, userID, tokenHash, expiresAt)
}

func (s *Service) ConsumeVerificationToken(
	ctx context.Context,
	tokenHash string,
) (*User, error) {
	return s.repo.ConsumeVerificationToken(ctx, tokenHash)
}

func (s *Service) MarkEmailVerified(ctx context.Context, userID string) error {
	return s.repo.MarkEmailVerified(ctx, userID)
}

func (s *Service) SetResetToken(
	ctx context.Context,
	userID, tokenHash string,
	expiresAt time.Time,
) error {
	return s.repo.SetResetToken(ctx, userID, tokenHash, expiresAt)
}

func (s *Service) ConsumeResetToken(
	ctx context.Context,
	tokenHash, newPasswordHash string,
) (*User, error) {
	return s.repo.ConsumeResetToken(ctx, tokenHash, newPasswordHash)
}

func (s *Service) UpdateSubscriptionInfo(
	ctx context.Context,
	userID, customerID, subscriptionID string,
) (*User, error) {
	return s.repo.UpdateSubscriptionInfo(ctx, userID, customerID, subscriptionID)
}

func (s *Service) EnableDemoMode(
	ctx context.Context,
	userID string,
) (*User, error) {
	return s.repo.SetDemoMode(ctx, userID)
}

// DeleteAccount removes the user and cascades to the owned bio.
func (s *Service) DeleteAccount(ctx context.Context, userID string) error {
	if userID == "" {
		return fmt.Errorf("delete account: %w", core.ErrUnauthorized)
	}

	return s.repo.Delete(ctx, userID)
}

func (s *Service) EmailExists(
	ctx context.Context,
	email string,
) (bool, error) {
	return s.repo.ExistsByEmail(ctx, strings.ToLower(email))
}

// IsPaid satisfies middleware.PaidChecker. Lookup failures count as free;
// rate limiting must not turn into an availability problem.
func (s *Service) IsPaid(ctx context.Context, userID string) bool {
	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return false
	}
	return u.HasPaidAccess()
}
