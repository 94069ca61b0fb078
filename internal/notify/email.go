// Package notify holds the outbound side channels: email, SMS and push.
// Failures here are logged by callers and never retried; the triggering
// request continues when the side effect is non-critical.
package notify

import (
	"fmt"

	"gopkg.in/gomail.v2"

	"buy-bye-api-server/config"
)

type Mailer struct {
	cfg     config.EmailConfig
	baseURL string
}

func NewMailer(cfg config.EmailConfig, baseURL string) *Mailer {
	return &Mailer{cfg: cfg, baseURL: baseURL}
}

func (m *Mailer) send(to, subject, htmlBody string) error {
	msg := gomail.NewMessage()
	msg.SetAddressHeader("From", m.cfg.From, m.cfg.FromName)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)

	d := gomail.NewDialer(m.cfg.Host, m.cfg.Port, m.cfg.Username, m.cfg.Password)
	return d.DialAndSend(msg)
}

// SendVerificationEmail mails the account-activation link. audience is the
// API segment the verify route lives under ("customers" or "vendors").
func (m *Mailer) SendVerificationEmail(to, token, name, audience string) error {
	verificationURL := fmt.Sprintf("%s/api/%s/verify-email/%s", m.baseURL, audience, token)

	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
		  <h2>Hello %s,</h2>
		  <p>Thank you for registering with our platform. Please verify your email address by clicking the link below:</p>
		  <p><a href="%s">Verify Email Address</a></p>
		  <p>Or copy and paste this link in your browser:</p>
		  <p>%s</p>
		  <p>This verification link will expire in 24 hours.</p>
		  <p>If you did not create an account, please ignore this email.</p>
		  <p>Best regards,<br/>The Team</p>
		</div>`, name, verificationURL, verificationURL)

	return m.send(to, "Please verify your email address", body)
}

// SendPasswordResetEmail mails a reset link.
func (m *Mailer) SendPasswordResetEmail(to, token, name string) error {
	resetURL := fmt.Sprintf("%s/reset-password/%s", m.baseURL, token)

	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
		  <h2>Hello %s,</h2>
		  <p>You requested a password reset. Please open the link below to set a new password:</p>
		  <p><a href="%s">Reset Password</a></p>
		  <p>This password reset link will expire in 1 hour.</p>
		  <p>If you did not request a password reset, please ignore this email.</p>
		  <p>Best regards,<br/>The Team</p>
		</div>`, name, resetURL)

	return m.send(to, "Password Reset Request", body)
}
