// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package mail delivers transactional email over SMTP.
package mail

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	gomail "gopkg.in/mail.v2"
)

// ErrNotConfigured is returned by Disabled.
var ErrNotConfigured = errors.New("mail: no SMTP server configured")

// SMTPConfig holds the SMTP server settings.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPSender sends HTML email through an SMTP server. Port 465 uses
// implicit TLS; every other port requires STARTTLS.
type SMTPSender struct {
	dialer *gomail.Dialer
	from   string
	log    *zap.Logger
}

// NewSMTPSender creates an SMTP sender.
func NewSMTPSender(cfg SMTPConfig, log *zap.Logger) *SMTPSender {
	d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	d.Timeout = 20 * time.Second
	if cfg.Port == 465 {
		d.SSL = true
	} else {
		d.StartTLSPolicy = gomail.MandatoryStartTLS
	}
	return &SMTPSender{dialer: d, from: cfg.From, log: log}
}

// Send delivers one HTML message.
func (s *SMTPSender) Send(ctx context.Context, to, subject, htmlBody string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", htmlBody)

	if err := s.dialer.DialAndSend(m); err != nil {
		s.log.Error("send email failed", zap.String("to", to), zap.Error(err))
		return fmt.Errorf("send email: %w", err)
	}

	s.log.Info("email sent", zap.String("to", to), zap.String("subject", subject))
	return nil
}

// Disabled is the sender used when no SMTP server is configured. Every
// send fails, so flows that depend on delivery surface the problem.
type Disabled struct {
	Log *zap.Logger
}

// Send always returns ErrNotConfigured.
func (d Disabled) Send(_ context.Context, to, subject, _ string) error {
	if d.Log != nil {
		d.Log.Warn("email not sent: SMTP disabled", zap.String("to", to), zap.String("subject", subject))
	}
	return ErrNotConfigured
}
