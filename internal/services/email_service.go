package services

import (
	"fmt"

	"gopkg.in/gomail.v2"
)

type EmailService interface {
	SendDeadlineEmail(to, subject, htmlBody, taskTitle string) error
	SendWelcomeEmail(email, name string) error
}

type emailService struct {
	dialer *gomail.Dialer
	from   string
}

func NewEmailService(smtpHost string, smtpPort int, smtpUser, smtpPassword, fromEmail string) EmailService {
	dialer := gomail.NewDialer(smtpHost, smtpPort, smtpUser, smtpPassword)
	return &emailService{
		dialer: dialer,
		from:   fromEmail,
	}
}

// SendDeadlineEmail delivers one deadline alert. One attempt, no retry; the
// caller decides what a failure means.
func (s *emailService) SendDeadlineEmail(to, subject, htmlBody, taskTitle string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetHeader("X-Planboard-Task", taskTitle)

	body := fmt.Sprintf(`
		<h3>Deadline approaching</h3>
		<p>%s</p>
		<p>Task: <strong>%s</strong></p>
		<p>— Planboard</p>
	`, htmlBody, taskTitle)

	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send deadline email: %w", err)
	}

	return nil
}

func (s *emailService) SendWelcomeEmail(email, name string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", email)
	m.SetHeader("Subject", "Welcome to Planboard!")

	body := fmt.Sprintf(`
		<h2>Welcome to Planboard, %s!</h2>
		<p>Your account has been successfully created.</p>
		<p>You will receive reminders here when your task deadlines approach.</p>
		<p>Best regards,<br>The Planboard Team</p>
	`, name)

	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send welcome email: %w", err)
	}

	return nil
}
