package mail

import (
	"crypto/tls"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/ticketflow/ticketflow/internal/config"
)

// Message is a plain-text email. From is optional; the sender substitutes
// the configured support address when it is empty.
type Message struct {
	To      string
	Subject string
	Body    string
	From    string
}

// Sender delivers mail. Implemented over SMTP; tests substitute fakes.
type Sender interface {
	Send(msg Message) error
}

// SMTPSender delivers mail through a plain SMTP server with optional
// STARTTLS and PLAIN auth.
type SMTPSender struct {
	cfg  config.SMTPConfig
	auth smtp.Auth
}

// NewSMTPSender builds the sender from config.
func NewSMTPSender(cfg config.SMTPConfig) *SMTPSender {
	var auth smtp.Auth
	if cfg.Username != "" && cfg.Password != "" {
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}
	return &SMTPSender{cfg: cfg, auth: auth}
}

// Send delivers one message.
func (s *SMTPSender) Send(msg Message) error {
	if s.cfg.Host == "" {
		return fmt.Errorf("smtp host not configured")
	}
	if msg.To == "" {
		return fmt.Errorf("no recipient specified")
	}

	from := msg.From
	if from == "" {
		from = s.cfg.SupportEmail
	}

	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	client, err := smtp.Dial(addr)
	if err != nil {
		return fmt.Errorf("connect to smtp server: %w", err)
	}
	defer client.Close()

	if s.cfg.UseTLS {
		if err := client.StartTLS(&tls.Config{ServerName: s.cfg.Host}); err != nil {
			return fmt.Errorf("start tls: %w", err)
		}
	}
	if s.auth != nil {
		if err := client.Auth(s.auth); err != nil {
			return fmt.Errorf("smtp auth: %w", err)
		}
	}

	if err := client.Mail(from); err != nil {
		return fmt.Errorf("set sender: %w", err)
	}
	if err := client.Rcpt(msg.To); err != nil {
		return fmt.Errorf("set recipient: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("open data writer: %w", err)
	}
	if _, err := w.Write(s.buildMessage(from, msg)); err != nil {
		return fmt.Errorf("write message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close writer: %w", err)
	}
	return client.Quit()
}

func (s *SMTPSender) buildMessage(from string, msg Message) []byte {
	headers := []string{
		fmt.Sprintf("From: %s <%s>", s.cfg.SenderName, from),
		fmt.Sprintf("To: %s", msg.To),
		fmt.Sprintf("Subject: %s", msg.Subject),
		"MIME-version: 1.0;",
		"Content-Type: text/plain; charset=UTF-8",
		"",
	}
	return []byte(strings.Join(headers, "\r\n") + "\r\n" + msg.Body)
}
