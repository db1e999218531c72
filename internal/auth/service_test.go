// AngelaMos | 2026
// service_test.go

package auth

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/biolink/internal/core"
	"github.com/carterperez-dev/biolink/internal/user"
)

type fakeMailer struct {
	deliverable bool

	verificationTokens []string
	resetTokens        []string
	welcomeCount       int
}

func (m *fakeMailer) SendVerificationEmail(to, firstName, token string) bool {
	if !m.deliverable {
		return false
	}
	m.verificationTokens = append(m.verificationTokens, token)
	return true
}

func (m *fakeMailer) SendPasswordResetEmail(to, firstName, token string) bool {
	if !m.deliverable {
		return false
	}
	m.resetTokens = append(m.resetTokens, token)
	return true
}

func (m *fakeMailer) SendWelcomeEmail(to, firstName string) bool {
	m.welcomeCount++
	return m.deliverable
}

func newTestService(
	t *testing.T,
	deliverable bool,
) (*Service, *user.Service, *fakeMailer) {
	t.Helper()

	users := user.NewService(user.NewMemoryRepository())
	mailer := &fakeMailer{deliverable: deliverable}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return NewService(users, mailer, logger), users, mailer
}

func registerReq(email string) RegisterRequest {
	return RegisterRequest{
		Email:     email,
		Password:  "hunter2hunter2",
		FirstName: "Ada",
		LastName:  "Lovelace",
	}
}

func TestRegisterWithWorkingMail(t *testing.T) {
	svc, users, mailer := newTestService(t, true)

	result, err := svc.Register(context.Background(), registerReq("a@b.com"))
	require.NoError(t, err)

	assert.True(t, result.RequiresVerification)
	assert.False(t, result.User.EmailVerified)
	require.Len(t, mailer.verificationTokens, 1)
	assert.Zero(t, mailer.welcomeCount)

	// The stored hash must never equal the raw token from the email.
	stored, err := users.GetByID(context.Background(), result.User.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.VerificationTokenHash)
	assert.NotEqual(t, mailer.verificationTokens[0], *stored.VerificationTokenHash)
}

func TestRegisterMailOutageAutoVerifies(t *testing.T) {
	svc, users, mailer := newTestService(t, false)

	result, err := svc.Register(context.Background(), registerReq("a@b.com"))
	require.NoError(t, err)

	assert.False(t, result.RequiresVerification)
	assert.True(t, result.User.EmailVerified)
	assert.Equal(t, 1, mailer.welcomeCount)

	stored, err := users.GetByID(context.Background(), result.User.ID)
	require.NoError(t, err)
	assert.True(t, stored.EmailVerified)
	assert.Nil(t, stored.VerificationTokenHash)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _, _ := newTestService(t, true)

	_, err := svc.Register(context.Background(), registerReq("dup@b.com"))
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), registerReq("dup@b.com"))
	assert.ErrorIs(t, err, ErrEmailExists)
}

func TestLogin(t *testing.T) {
	svc, _, mailer := newTestService(t, true)

	result, err := svc.Register(context.Background(), registerReq("a@b.com"))
	require.NoError(t, err)

	// Unverified accounts cannot log in even with the right password.
	_, err = svc.Login(context.Background(), LoginRequest{
		Email:    "a@b.com",
		Password: "hunter2hunter2",
	})
	assert.ErrorIs(t, err, ErrEmailNotVerified)

	_, err = svc.VerifyEmail(context.Background(), mailer.verificationTokens[0])
	require.NoError(t, err)

	u, err := svc.Login(context.Background(), LoginRequest{
		Email:    "A@B.com",
		Password: "hunter2hunter2",
	})
	require.NoError(t, err)
	assert.Equal(t, result.User.ID, u.ID)

	_, err = svc.Login(context.Background(), LoginRequest{
		Email:    "a@b.com",
		Password: "wrong password",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	// Unknown accounts get the same error as bad passwords.
	_, err = svc.Login(context.Background(), LoginRequest{
		Email:    "nobody@b.com",
		Password: "hunter2hunter2",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestVerifyEmailSingleUse(t *testing.T) {
	svc, _, mailer := newTestService(t, true)

	_, err := svc.Register(context.Background(), registerReq("a@b.com"))
	require.NoError(t, err)

	token := mailer.verificationTokens[0]

	u, err := svc.VerifyEmail(context.Background(), token)
	require.NoError(t, err)
	assert.True(t, u.EmailVerified)
	assert.Equal(t, 1, mailer.welcomeCount)

	_, err = svc.VerifyEmail(context.Background(), token)
	assert.ErrorIs(t, err, core.ErrTokenInvalid)
}

func TestVerifyEmailRejectsGarbage(t *testing.T) {
	svc, _, _ := newTestService(t, true)

	_, err := svc.VerifyEmail(context.Background(), "")
	assert.ErrorIs(t, err, core.ErrTokenInvalid)

	_, err = svc.VerifyEmail(context.Background(), "never-issued")
	assert.ErrorIs(t, err, core.ErrTokenInvalid)
}

func TestResendVerification(t *testing.T) {
	svc, _, mailer := newTestService(t, true)

	_, err := svc.Register(context.Background(), registerReq("a@b.com"))
	require.NoError(t, err)
	require.Len(t, mailer.verificationTokens, 1)

	require.NoError(
		t,
		svc.ResendVerification(context.Background(), "a@b.com"),
	)
	require.Len(t, mailer.verificationTokens, 2)

	// The old token is superseded by the new one.
	_, err = svc.VerifyEmail(context.Background(), mailer.verificationTokens[0])
	assert.ErrorIs(t, err, core.ErrTokenInvalid)

	_, err = svc.VerifyEmail(context.Background(), mailer.verificationTokens[1])
	require.NoError(t, err)

	// Already verified and unknown emails are both silent no-ops.
	require.NoError(
		t,
		svc.ResendVerification(context.Background(), "a@b.com"),
	)
	require.NoError(
		t,
		svc.ResendVerification(context.Background(), "ghost@b.com"),
	)
	assert.Len(t, mailer.verificationTokens, 2)
}

func TestPasswordResetFlow(t *testing.T) {
	svc, _, mailer := newTestService(t, true)

	_, err := svc.Register(context.Background(), registerReq("a@b.com"))
	require.NoError(t, err)
	_, err = svc.VerifyEmail(context.Background(), mailer.verificationTokens[0])
	require.NoError(t, err)

	// Unknown email is silent.
	require.NoError(t, svc.ForgotPassword(context.Background(), "ghost@b.com"))
	assert.Empty(t, mailer.resetTokens)

	require.NoError(t, svc.ForgotPassword(context.Background(), "a@b.com"))
	require.Len(t, mailer.resetTokens, 1)

	_, err = svc.ResetPassword(
		context.Background(),
		mailer.resetTokens[0],
		"brand-new-password",
	)
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), LoginRequest{
		Email:    "a@b.com",
		Password: "hunter2hunter2",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), LoginRequest{
		Email:    "a@b.com",
		Password: "brand-new-password",
	})
	require.NoError(t, err)

	// Reset tokens are single-use.
	_, err = svc.ResetPassword(
		context.Background(),
		mailer.resetTokens[0],
		"another-password",
	)
	assert.ErrorIs(t, err, core.ErrTokenInvalid)
}
