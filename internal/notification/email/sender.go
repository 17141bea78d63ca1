package email

import (
	"fmt"
	"net/smtp"
	"strings"
)

// Sender delivers one email to a set of blind-carbon recipients. Recipients
// appear only in the SMTP envelope, never in the headers, so subscribers
// cannot see each other's addresses.
type Sender interface {
	Send(from string, bcc []string, subject, body string) error
}

type SMTPSender struct {
	addr     string
	username string
	password string
}

func NewSMTPSender(addr, username, password string) *SMTPSender {
	return &SMTPSender{
		addr:     addr,
		username: username,
		password: password,
	}
}

func (s *SMTPSender) Send(from string, bcc []string, subject, body string) error {
	var auth smtp.Auth
	if s.username != "" {
		host := s.addr
		if idx := strings.LastIndex(host, ":"); idx != -1 {
			host = host[:idx]
		}
		auth = smtp.PlainAuth("", s.username, s.password, host)
	}

	msg := buildMessage(from, subject, body)
	if err := smtp.SendMail(s.addr, auth, from, bcc, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

func buildMessage(from, subject, body string) []byte {
	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: undisclosed-recipients:;\r\n")
	b.WriteString("Subject: " + subject + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"utf-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)
	return []byte(b.String())
}
