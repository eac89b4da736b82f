package email

import (
	"context"
	"fmt"
	"log"
	"net/smtp"
	"strings"

	"github.com/Dp0603/E-Advertisement-Deployed/internal/config"
)

// Sender delivers notification emails. Implementations must be safe for
// concurrent use; the background worker calls Send from multiple goroutines.
type Sender interface {
	Send(ctx context.Context, to []string, subject, body string) error
}

// NewSender picks an implementation from configuration: SMTP when a host is
// configured, otherwise a logging sender so development setups still show
// what would have been sent.
func NewSender(cfg *config.Config) Sender {
	if cfg.SmtpHost == "" {
		log.Println("SMTP host not configured, using logging email sender")
		return &LoggingSender{from: cfg.SmtpFromAddress}
	}
	return &SMTPSender{
		from: cfg.SmtpFromAddress,
		addr: fmt.Sprintf("%s:%d", cfg.SmtpHost, cfg.SmtpPort),
		auth: smtp.PlainAuth("", cfg.SmtpUsername, cfg.SmtpPassword, cfg.SmtpHost),
	}
}

// SMTPSender delivers via net/smtp.
type SMTPSender struct {
	from string
	addr string
	auth smtp.Auth
}

func (s *SMTPSender) Send(ctx context.Context, to []string, subject, body string) error {
	msg := buildMessage(s.from, to, subject, body)
	if err := smtp.SendMail(s.addr, s.auth, s.from, to, msg); err != nil {
		return fmt.Errorf("smtp delivery to %v failed: %w", to, err)
	}
	log.Printf("Email sent to %v (subject: %s)", to, subject)
	return nil
}

// buildMessage assembles a minimal RFC 5322 plain-text message.
func buildMessage(from string, to []string, subject, body string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(to, ", "))
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)
	return []byte(b.String())
}

// LoggingSender logs instead of delivering. Used when SMTP is not configured.
type LoggingSender struct {
	from string
}

func (s *LoggingSender) Send(ctx context.Context, to []string, subject, body string) error {
	log.Printf("--- Email (logged, not sent) ---")
	log.Printf("From: %s", s.from)
	log.Printf("To: %v", to)
	log.Printf("Subject: %s", subject)
	log.Println(body)
	log.Printf("--- End email ---")
	return nil
}
