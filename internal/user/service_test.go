// AngelaMos | 2026
// service_test.go

package user

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/biolink/internal/core"
)

func newTestService(t *testing.T) (*Service, *MemoryRepository) {
	t.Helper()
	repo := NewMemoryRepository()
	return NewService(repo), repo
}

func createUser(t *testing.T, s *Service, email string) *User {
	t.Helper()
	u, err := s.CreateLocal(context.Background(), email, "hash", "Ada", "Lovelace")
	require.NoError(t, err)
	return u
}

func TestCreateLocalNormalizesEmail(t *testing.T) {
	s, _ := newTestService(t)

	u := createUser(t, s, "Ada@Example.COM")
	assert.Equal(t, "ada@example.com", u.Email)
	assert.False(t, u.EmailVerified)
	assert.True(t, u.HasPassword())
}

func TestCreateLocalDuplicateEmail(t *testing.T) {
	s, _ := newTestService(t)
	createUser(t, s, "ada@example.com")

	_, err := s.CreateLocal(
		context.Background(),
		"ADA@example.com",
		"hash",
		"A",
		"B",
	)
	assert.ErrorIs(t, err, core.ErrDuplicateKey)
}

func TestCreateFederatedIsPreVerified(t *testing.T) {
	s, _ := newTestService(t)

	u, err := s.CreateFederated(
		context.Background(),
		"google-123",
		"fed@example.com",
		"Fed",
		"User",
		nil,
	)
	require.NoError(t, err)
	assert.True(t, u.EmailVerified)
	assert.False(t, u.HasPassword())
	require.NotNil(t, u.GoogleID)
	assert.Equal(t, "google-123", *u.GoogleID)
}

func TestSetUsername(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr error
	}{
		{"simple", "ada", "ada", nil},
		{"uppercase normalized", "  Ada_Lovelace ", "ada_lovelace", nil},
		{"hyphens allowed", "ada-l", "ada-l", nil},
		{"too short", "ab", "", ErrUsernameInvalid},
		{"too long", "abcdefghijklmnopqrstuvwxyz01234", "", ErrUsernameInvalid},
		{"illegal characters", "ada!@", "", ErrUsernameInvalid},
		{"spaces inside", "ada lovelace", "", ErrUsernameInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newTestService(t)
			u := createUser(t, s, tt.name+"@example.com")

			updated, err := s.SetUsername(context.Background(), u.ID, tt.input)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, updated.Username)
			assert.Equal(t, tt.want, *updated.Username)
		})
	}
}

func TestSetUsernameTaken(t *testing.T) {
	s, _ := newTestService(t)
	first := createUser(t, s, "first@example.com")
	second := createUser(t, s, "second@example.com")

	_, err := s.SetUsername(context.Background(), first.ID, "shared")
	require.NoError(t, err)

	_, err = s.SetUsername(context.Background(), second.ID, "Shared")
	assert.ErrorIs(t, err, ErrUsernameTaken)
}

func TestUsernameAvailable(t *testing.T) {
	s, _ := newTestService(t)
	u := createUser(t, s, "taken@example.com")

	_, err := s.SetUsername(context.Background(), u.ID, "claimed")
	require.NoError(t, err)

	available, err := s.UsernameAvailable(context.Background(), "Claimed")
	require.NoError(t, err)
	assert.False(t, available)

	available, err = s.UsernameAvailable(context.Background(), "free-name")
	require.NoError(t, err)
	assert.True(t, available)

	_, err = s.UsernameAvailable(context.Background(), "x")
	assert.ErrorIs(t, err, ErrUsernameInvalid)
}

func TestIsPaid(t *testing.T) {
	s, repo := newTestService(t)
	u := createUser(t, s, "paid@example.com")

	assert.False(t, s.IsPaid(context.Background(), u.ID))
	assert.False(t, s.IsPaid(context.Background(), "no-such-user"))

	_, err := repo.UpdateSubscriptionInfo(
		context.Background(),
		u.ID,
		"cus_1",
		"sub_1",
	)
	require.NoError(t, err)
	assert.True(t, s.IsPaid(context.Background(), u.ID))
}

func TestDemoModeGrantsPaidAccess(t *testing.T) {
	s, _ := newTestService(t)
	u := createUser(t, s, "demo@example.com")

	updated, err := s.EnableDemoMode(context.Background(), u.ID)
	require.NoError(t, err)
	assert.True(t, updated.IsDemoMode)
	assert.False(t, updated.IsPaid)
	assert.True(t, updated.HasPaidAccess())
}

func TestDeleteAccount(t *testing.T) {
	s, _ := newTestService(t)
	u := createUser(t, s, "gone@example.com")

	require.NoError(t, s.DeleteAccount(context.Background(), u.ID))

	_, err := s.GetByID(context.Background(), u.ID)
	assert.ErrorIs(t, err, core.ErrNotFound)

	err = s.DeleteAccount(context.Background(), u.ID)
	assert.ErrorIs(t, err, core.ErrNotFound)
}
