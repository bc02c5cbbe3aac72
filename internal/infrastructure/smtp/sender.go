package smtp

import (
	"context"
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"

	"github.com/go-user-registration/internal/config"
	"github.com/go-user-registration/internal/domain"
)

// sendFunc matches net/smtp.SendMail.
type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// Sender delivers registration confirmations over SMTP.
type Sender struct {
	host     string
	port     string
	from     string
	username string
	password string
	subject  string
	send     sendFunc
}

func NewSender(cfg *config.Config) *Sender {
	return &Sender{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		from:     cfg.SMTPFrom,
		username: cfg.SMTPUsername,
		password: cfg.SMTPPassword,
		subject:  cfg.RegistrationSubject,
		send:     smtp.SendMail,
	}
}

// SendEmail sends a plain-text message. headers are written after From/To/Subject.
func (s *Sender) SendEmail(to, subject, body string, headers map[string]string) error {
	addr := fmt.Sprintf("%s:%s", s.host, s.port)

	var auth smtp.Auth
	if s.username != "" {
		auth = smtp.PlainAuth("", s.username, s.password, s.host)
	}

	return s.send(addr, auth, s.from, []string{to}, buildMessage(s.from, to, subject, body, headers))
}

// SendRegistrationEmail reports a rejected or failed SMTP exchange as false.
func (s *Sender) SendRegistrationEmail(ctx context.Context, msg domain.RegistrationEmail) (bool, error) {
	to := msg.DestinationEmailAddress
	if to == "" {
		return false, fmt.Errorf("smtp: %w", domain.ErrMissingDestination)
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}
	headers := map[string]string{"Message-ID": fmt.Sprintf("<%s@%s>", msg.MessageID, s.host)}
	if err := s.SendEmail(to, s.subject, registrationBody(to), headers); err != nil {
		slog.Warn("registration email not delivered", "to", to, "message_id", msg.MessageID, "err", err)
		return false, nil
	}
	slog.Info("registration email sent", "to", to, "message_id", msg.MessageID)
	return true, nil
}

func registrationBody(to string) string {
	return "Thanks for registering. This address (" + to + ") is now pending confirmation."
}

func buildMessage(from, to, subject, body string, headers map[string]string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\nTo: %s\r\nSubject: %s\r\n", from, to, subject)
	for k, v := range headers {
		fmt.Fprintf(&b, "%s: %s\r\n", k, v)
	}
	b.WriteString("\r\n")
	b.WriteString(body)
	return []byte(b.String())
}
