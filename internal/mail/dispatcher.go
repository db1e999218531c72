// AngelaMos | 2026
// dispatcher.go

package mail

import (
	"crypto/tls"
	"fmt"
	"html/template"
	"log/slog"
	"net/smtp"
	"net/url"
	"strings"

	"github.com/carterperez-dev/biolink/internal/config"
)

// Dispatcher sends transactional email over SMTP. Every send reports
// success as a bool rather than an error: callers treat delivery as
// best-effort and decide their own fallback when the transport is down
// or unconfigured.
type Dispatcher struct {
	cfg     config.SMTPConfig
	baseURL string
	logger  *slog.Logger
}

func NewDispatcher(
	cfg config.SMTPConfig,
	baseURL string,
	logger *slog.Logger,
) *Dispatcher {
	return &Dispatcher{
		cfg:     cfg,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
	}
}

func (d *Dispatcher) Enabled() bool {
	return d.cfg.Enabled()
}

// SendVerificationEmail mails the single-use verification link. The raw
// token goes in the link; only its hash is ever stored.
func (d *Dispatcher) SendVerificationEmail(to, firstName, token string) bool {
	link := fmt.Sprintf(
		"%s/verify-email?token=%s",
		d.baseURL,
		url.QueryEscape(token),
	)

	body, err := renderTemplate(verificationTemplate, emailData{
		FirstName: firstName,
		Link:      link,
	})
	if err != nil {
		d.logger.Error("render verification email", "error", err)
		return false
	}

	return d.send(to, "Verify your email", body)
}

func (d *Dispatcher) SendPasswordResetEmail(to, firstName, token string) bool {
	link := fmt.Sprintf(
		"%s/reset-password?token=%s",
		d.baseURL,
		url.QueryEscape(token),
	)

	body, err := renderTemplate(passwordResetTemplate, emailData{
		FirstName: firstName,
		Link:      link,
	})
	if err != nil {
		d.logger.Error("render password reset email", "error", err)
		return false
	}

	return d.send(to, "Reset your password", body)
}

func (d *Dispatcher) SendWelcomeEmail(to, firstName string) bool {
	body, err := renderTemplate(welcomeTemplate, emailData{
		FirstName: firstName,
		Link:      d.baseURL,
	})
	if err != nil {
		d.logger.Error("render welcome email", "error", err)
		return false
	}

	return d.send(to, "Welcome to Biolink", body)
}

// send dials the SMTP host over implicit TLS, authenticates, and writes
// one MIME message. Any failure is logged and reported as false.
func (d *Dispatcher) send(to, subject, htmlBody string) bool {
	if !d.cfg.Enabled() {
		d.logger.Warn("smtp not configured, skipping send", "to", to)
		return false
	}

	addr := fmt.Sprintf("%s:%d", d.cfg.Host, d.cfg.Port)

	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: d.cfg.Host})
	if err != nil {
		d.logger.Error("smtp dial", "error", err, "addr", addr)
		return false
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, d.cfg.Host)
	if err != nil {
		d.logger.Error("smtp client", "error", err)
		return false
	}
	defer client.Quit()

	if d.cfg.Username != "" {
		auth := smtp.PlainAuth(
			"",
			d.cfg.Username,
			d.cfg.Password,
			d.cfg.Host,
		)
		if err := client.Auth(auth); err != nil {
			d.logger.Error("smtp auth", "error", err)
			return false
		}
	}

	if err := client.Mail(d.cfg.From); err != nil {
		d.logger.Error("smtp mail from", "error", err)
		return false
	}
	if err := client.Rcpt(to); err != nil {
		d.logger.Error("smtp rcpt", "error", err, "to", to)
		return false
	}

	w, err := client.Data()
	if err != nil {
		d.logger.Error("smtp data", "error", err)
		return false
	}

	msg := buildMessage(d.cfg.From, to, subject, htmlBody)
	if _, err := w.Write([]byte(msg)); err != nil {
		d.logger.Error("smtp write", "error", err)
		return false
	}
	if err := w.Close(); err != nil {
		d.logger.Error("smtp close data", "error", err)
		return false
	}

	d.logger.Info("email sent", "to", to, "subject", subject)
	return true
}

func buildMessage(from, to, subject, htmlBody string) string {
	var b strings.Builder

	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + to + "\r\n")
	b.WriteString("Subject: " + subject + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(htmlBody)

	return b.String()
}

type emailData struct {
	FirstName string
	Link      string
}

func renderTemplate(tmpl *template.Template, data emailData) (string, error) {
	var b strings.Builder
	if err := tmpl.Execute(&b, data); err != nil {
		return "", fmt.Errorf("execute email template: %w", err)
	}
	return b.String(), nil
}

var verificationTemplate = template.Must(
	template.New("verification").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: sans-serif; max-width: 560px; margin: 0 auto;">
	<h2>Verify your email</h2>
	<p>Hi {{.FirstName}},</p>
	<p>Confirm your email address to activate your Biolink account.
	This link is valid for 24 hours and can be used once.</p>
	<p><a href="{{.Link}}">Verify email</a></p>
	<p>If you did not create an account, you can ignore this message.</p>
</body>
</html>`),
)

var passwordResetTemplate = template.Must(
	template.New("password_reset").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: sans-serif; max-width: 560px; margin: 0 auto;">
	<h2>Reset your password</h2>
	<p>Hi {{.FirstName}},</p>
	<p>We received a request to reset your password. This link is valid
	for 1 hour and can be used once.</p>
	<p><a href="{{.Link}}">Reset password</a></p>
	<p>If you did not request this, your password is unchanged.</p>
</body>
</html>`),
)

var welcomeTemplate = template.Must(
	template.New("welcome").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: sans-serif; max-width: 560px; margin: 0 auto;">
	<h2>Welcome, {{.FirstName}}!</h2>
	<p>Your email is verified and your Biolink account is ready.</p>
	<p>Pick a username and start building your page:</p>
	<p><a href="{{.Link}}">Open Biolink</a></p>
</body>
</html>`),
)
