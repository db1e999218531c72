// AngelaMos | 2026
// dispatcher_test.go

package mail

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/biolink/internal/config"
)

func TestUnconfiguredDispatcherReportsFailure(t *testing.T) {
	d := NewDispatcher(
		config.SMTPConfig{},
		"http://localhost:3000",
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)

	assert.False(t, d.Enabled())
	assert.False(t, d.SendVerificationEmail("a@b.com", "Ada", "tok"))
	assert.False(t, d.SendPasswordResetEmail("a@b.com", "Ada", "tok"))
	assert.False(t, d.SendWelcomeEmail("a@b.com", "Ada"))
}

func TestRenderTemplatesEscapeAndLink(t *testing.T) {
	body, err := renderTemplate(verificationTemplate, emailData{
		FirstName: "<script>Ada</script>",
		Link:      "http://localhost:3000/verify-email?token=abc",
	})
	require.NoError(t, err)

	assert.Contains(t, body, "verify-email?token=abc")
	assert.NotContains(t, body, "<script>Ada</script>")

	body, err = renderTemplate(passwordResetTemplate, emailData{
		FirstName: "Ada",
		Link:      "http://localhost:3000/reset-password?token=xyz",
	})
	require.NoError(t, err)
	assert.Contains(t, body, "reset-password?token=xyz")
}

func TestBuildMessageHeaders(t *testing.T) {
	msg := buildMessage("from@b.com", "to@b.com", "Hello", "<p>hi</p>")

	assert.Contains(t, msg, "From: from@b.com\r\n")
	assert.Contains(t, msg, "To: to@b.com\r\n")
	assert.Contains(t, msg, "Subject: Hello\r\n")
	assert.Contains(t, msg, "Content-Type: text/html")
	assert.Contains(t, msg, "\r\n\r\n<p>hi</p>")
}
