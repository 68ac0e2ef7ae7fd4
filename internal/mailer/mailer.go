// Package mailer delivers transactional mail over SMTP. When no SMTP host is
// configured the mailer degrades to logging the message, which keeps local
// development working without a relay.
package mailer

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"

	"wayfarer/config"
	"wayfarer/internal/logs"
	"wayfarer/internal/models"
)

type Mailer struct {
	host string
	port int
	user string
	pass string
	from string
}

func New(cfg *config.Config) *Mailer {
	return &Mailer{
		host: cfg.SMTP.Host,
		port: cfg.SMTP.Port,
		user: cfg.SMTP.Username,
		pass: cfg.SMTP.Password,
		from: cfg.SMTP.From,
	}
}

func (m *Mailer) send(to, subject, htmlBody string) error {
	if m.host == "" {
		logs.Logger.Infof("mailer (no smtp host): to=%s subject=%q", to, subject)
		return nil
	}
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)

	d := gomail.NewDialer(m.host, m.port, m.user, m.pass)
	if err := d.DialAndSend(msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

func (m *Mailer) SendWelcome(_ context.Context, u *models.User, url string) error {
	body := fmt.Sprintf(
		`<p>Hi %s,</p><p>Welcome to Wayfarer, we're glad to have you!</p>
<p>Manage your account at <a href="%s">%s</a>.</p>`,
		u.Name, url, url)
	return m.send(u.Email, "Welcome to the Wayfarer family!", body)
}

func (m *Mailer) SendPasswordReset(_ context.Context, u *models.User, resetURL string) error {
	body := fmt.Sprintf(
		`<p>Hi %s,</p><p>Forgot your password? Submit a PATCH request with your new
password to <a href="%s">%s</a>.</p>
<p>The link is valid for 10 minutes. If you didn't request a reset, ignore this mail.</p>`,
		u.Name, resetURL, resetURL)
	return m.send(u.Email, "Your password reset token (valid for 10 minutes)", body)
}
