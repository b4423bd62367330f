package services

import (
	"fmt"
	"log"
	"net/smtp"

	"github.com/przhiin/OAKSLAND/internal/config"
)

// Mailer delivers outbound mail. Flows treat a send failure as fatal to the
// triggering request, so implementations must not swallow errors.
type Mailer interface {
	Send(to, subject, body string) error
}

// MailService sends mail through a plain SMTP relay.
type MailService struct {
	host     string
	port     string
	username string
	password string
	from     string
}

// NewMailService creates a MailService from configuration.
func NewMailService(cfg *config.Config) *MailService {
	return &MailService{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		username: cfg.SMTPUsername,
		password: cfg.SMTPPassword,
		from:     cfg.SMTPFrom,
	}
}

// Send delivers a single plain-text message.
func (s *MailService) Send(to, subject, body string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n", s.from, to, subject, body)

	var auth smtp.Auth
	if s.username != "" {
		auth = smtp.PlainAuth("", s.username, s.password, s.host)
	}

	addr := s.host + ":" + s.port
	if err := smtp.SendMail(addr, auth, s.from, []string{to}, []byte(msg)); err != nil {
		log.Printf("[Mail] Failed to send to %s: %v", to, err)
		return err
	}

	return nil
}

// OTPMessage renders the standard verification-code mail body.
func OTPMessage(code string) string {
	return fmt.Sprintf("Your verification code is: %s. It is valid for 10 minutes.", code)
}
