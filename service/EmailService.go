package service

import (
	"crypto/tls"
	"fmt"
	"html"

	"gopkg.in/gomail.v2"

	"batterymart/util"
)

// Mailer delivers a single HTML email.
type Mailer interface {
	Send(to, subject, htmlBody string) error
}

type EmailService struct {
	dialer *gomail.Dialer
	sender string
}

func NewEmailService(cfg util.SMTPConfig) *EmailService {
	dialer := gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Pass)
	dialer.TLSConfig = &tls.Config{ServerName: cfg.Host, MinVersion: tls.VersionTLS12}

	return &EmailService{
		dialer: dialer,
		sender: cfg.SenderName,
	}
}

func (s *EmailService) Send(to, subject, htmlBody string) error {
	m := gomail.NewMessage()

	// Example: "BatteryMart <no-reply@batterymart.ng>"
	m.SetHeader("From", fmt.Sprintf("%s <%s>", s.sender, s.dialer.Username))
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", htmlBody)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("send email to %s: %w", to, err)
	}
	return nil
}

func renderNotificationEmail(title, message, link string) string {
	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px;">
			<h2>%s</h2>
			<p>%s</p>`, html.EscapeString(title), html.EscapeString(message))
	if link != "" {
		body += fmt.Sprintf(`
			<p><a href="%s" style="color: #2d89ef;">View details</a></p>`, html.EscapeString(link))
	}
	return body + `
		</div>
	`
}
