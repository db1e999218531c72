// AngelaMos | 2026
// memory.go

package user

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/carterperez-dev/biolink/internal/core"
)

// MemoryRepository is a map-backed Repository with the same uniqueness
// and token-consumption semantics as the postgres one. Used by tests
// across packages; never wired in production.
type MemoryRepository struct {
	mu    sync.Mutex
	users map[string]*User
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{users: make(map[string]*User)}
}

var _ Repository = (*MemoryRepository)(nil)

func clone(u *User) *User {
	c := *u
	return &c
}

func (r *MemoryRepository) violatesUnique(candidate *User) bool {
	for _, u := range r.users {
		if u.ID == candidate.ID {
			continue
		}
		if u.Email == candidate.Email {
			return true
		}
		if candidate.Username != nil && u.Username != nil &&
			*u.Username == *candidate.Username {
			return true
		}
		if candidate.GoogleID != nil && u.GoogleID != nil &&
			*u.GoogleID == *candidate.GoogleID {
			return true
		}
	}
	return false
}

func (r *MemoryRepository) Create(ctx context.Context, user *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[user.ID]; ok || r.violatesUnique(user) {
		return fmt.Errorf("create user: %w", core.ErrDuplicateKey)
	}

	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	r.users[user.ID] = clone(user)
	return nil
}

func (r *MemoryRepository) Upsert(ctx context.Context, user *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.violatesUnique(user) {
		return fmt.Errorf("upsert user: %w", core.ErrDuplicateKey)
	}

	if existing, ok := r.users[user.ID]; ok {
		user.CreatedAt = existing.CreatedAt
	} else {
		user.CreatedAt = time.Now()
	}
	user.UpdatedAt = time.Now()
	r.users[user.ID] = clone(user)
	return nil
}

func (r *MemoryRepository) getWhere(
	op string,
	match func(*User) bool,
) (*User, error) {
	for _, u := range r.users {
		if match(u) {
			return clone(u), nil
		}
	}
	return nil, fmt.Errorf("%s: %w", op, core.ErrNotFound)
}

func (r *MemoryRepository) GetByID(
	ctx context.Context,
	id string,
) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.getWhere("get user", func(u *User) bool { return u.ID == id })
}

func (r *MemoryRepository) GetByEmail(
	ctx context.Context,
	email string,
) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.getWhere("get user", func(u *User) bool {
		return u.Email == email
	})
}

func (r *MemoryRepository) GetByUsername(
	ctx context.Context,
	username string,
) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.getWhere("get user", func(u *User) bool {
		return u.Username != nil && *u.Username == username
	})
}

func (r *MemoryRepository) GetByGoogleID(
	ctx context.Context,
	googleID string,
) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.getWhere("get user", func(u *User) bool {
		return u.GoogleID != nil && *u.GoogleID == googleID
	})
}

func (r *MemoryRepository) Update(ctx context.Context, user *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.users[user.ID]
	if !ok {
		return fmt.Errorf("update user: %w", core.ErrNotFound)
	}

	existing.FirstName = user.FirstName
	existing.LastName = user.LastName
	existing.ProfileImageURL = user.ProfileImageURL
	existing.UpdatedAt = time.Now()
	user.UpdatedAt = existing.UpdatedAt
	return nil
}

func (r *MemoryRepository) UpdateUsername(
	ctx context.Context,
	id, username string,
) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return nil, fmt.Errorf("update username: %w", core.ErrNotFound)
	}

	for _, other := range r.users {
		if other.ID != id && other.Username != nil &&
			*other.Username == username {
			return nil, fmt.Errorf(
				"update username: %w",
				core.ErrDuplicateKey,
			)
		}
	}

	u.Username = &username
	u.UpdatedAt = time.Now()
	return clone(u), nil
}

func (r *MemoryRepository) UpdatePassword(
	ctx context.Context,
	id, passwordHash string,
) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return fmt.Errorf("update password: %w", core.ErrNotFound)
	}

	u.PasswordHash = &passwordHash
	u.UpdatedAt = time.Now()
	return nil
}

func (r *MemoryRepository) SetVerificationToken(
	ctx context.Context,
	id, tokenHash string,
	expiresAt time.Time,
) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return fmt.Errorf("set verification token: %w", core.ErrNotFound)
	}

	u.VerificationTokenHash = &tokenHash
	u.VerificationExpiresAt = &expiresAt
	return nil
}

func (r *MemoryRepository) ConsumeVerificationToken(
	ctx context.Context,
	tokenHash string,
) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.VerificationTokenHash != nil &&
			*u.VerificationTokenHash == tokenHash &&
			u.VerificationExpiresAt != nil &&
			u.VerificationExpiresAt.After(time.Now()) {
			u.EmailVerified = true
			u.VerificationTokenHash = nil
			u.VerificationExpiresAt = nil
			u.UpdatedAt = time.Now()
			return clone(u), nil
		}
	}

	return nil, fmt.Errorf("consume verification token: %w", core.ErrNotFound)
}

func (r *MemoryRepository) MarkEmailVerified(
	ctx context.Context,
	id string,
) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return fmt.Errorf("mark email verified: %w", core.ErrNotFound)
	}

	u.EmailVerified = true
	u.VerificationTokenHash = nil
	u.VerificationExpiresAt = nil
	return nil
}

func (r *MemoryRepository) SetResetToken(
	ctx context.Context,
	id, tokenHash string,
	expiresAt time.Time,
) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return fmt.Errorf("set reset token: %w", core.ErrNotFound)
	}

	u.ResetTokenHash = &tokenHash
	u.ResetExpiresAt = &expiresAt
	return nil
}

func (r *MemoryRepository) ConsumeResetToken(
	ctx context.Context,
	tokenHash, newPasswordHash string,
) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.ResetTokenHash != nil && *u.ResetTokenHash == tokenHash &&
			u.ResetExpiresAt != nil &&
			u.ResetExpiresAt.After(time.Now()) {
			u.PasswordHash = &newPasswordHash
			u.ResetTokenHash = nil
			u.ResetExpiresAt = nil
			u.UpdatedAt = time.Now()
			return clone(u), nil
		}
	}

	return nil, fmt.Errorf("consume reset token: %w", core.ErrNotFound)
}

func (r *MemoryRepository) LinkGoogleID(
	ctx context.Context,
	id, googleID string,
) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return fmt.Errorf("link google id: %w", core.ErrNotFound)
	}

	for _, other := range r.users {
		if other.ID != id && other.GoogleID != nil &&
			*other.GoogleID == googleID {
			return fmt.Errorf("link google id: %w", core.ErrDuplicateKey)
		}
	}

	u.GoogleID = &googleID
	return nil
}

func (r *MemoryRepository) UpdateSubscriptionInfo(
	ctx context.Context,
	id, customerID, subscriptionID string,
) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return nil, fmt.Errorf("update subscription info: %w", core.ErrNotFound)
	}

	u.StripeCustomerID = &customerID
	u.StripeSubscriptionID = &subscriptionID
	u.IsPaid = true
	u.UpdatedAt = time.Now()
	return clone(u), nil
}

func (r *MemoryRepository) SetDemoMode(
	ctx context.Context,
	id string,
) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return nil, fmt.Errorf("set demo mode: %w", core.ErrNotFound)
	}

	u.IsDemoMode = true
	u.UpdatedAt = time.Now()
	return clone(u), nil
}

func (r *MemoryRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[id]; !ok {
		return fmt.Errorf("delete user: %w", core.ErrNotFound)
	}

	delete(r.users, id)
	return nil
}

func (r *MemoryRepository) ExistsByEmail(
	ctx context.Context,
	email string,
) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (r *MemoryRepository) ExistsByUsername(
	ctx context.Context,
	username string,
) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Username != nil && *u.Username == username {
			return true, nil
		}
	}
	return false, nil
}
