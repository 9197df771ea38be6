package mail

import (
	"context"
	"fmt"
	"net/smtp"

	"go.uber.org/zap"
)

// SMTP sends plain-text mail through a single authenticated relay (the
// original deployment used a Gmail app password).
type SMTP struct {
	host string
	port string
	user string
	pass string
}

func NewSMTP(host, port, user, pass string) *SMTP {
	return &SMTP{host: host, port: port, user: user, pass: pass}
}

func (m *SMTP) Send(_ context.Context, to, subject, body string) error {
	msg := fmt.Sprintf("From: Game Support <%s>\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n",
		m.user, to, subject, body)
	auth := smtp.PlainAuth("", m.user, m.pass, m.host)
	if err := smtp.SendMail(m.host+":"+m.port, auth, m.user, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	return nil
}

// Log is the dev fallback when no SMTP relay is configured; it only records
// that a mail would have gone out, never the code itself.
type Log struct {
	log *zap.Logger
}

func NewLog(log *zap.Logger) *Log {
	return &Log{log: log}
}

func (m *Log) Send(_ context.Context, to, subject, _ string) error {
	m.log.Info("mail suppressed (no SMTP configured)",
		zap.String("to", to),
		zap.String("subject", subject))
	return nil
}
