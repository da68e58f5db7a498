package service

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"community-backend/internal/domain"
	"community-backend/internal/logger"
)

// notifyBestEffort runs an email send and logs failures at warn severity.
// Email is never allowed to fail the calling operation.
func notifyBestEffort(what string, send func() error) {
	if err := send(); err != nil {
		logger.Warn("email notification failed", "notification", what, "error", err)
	}
}

type sendGridEmailService struct {
	apiKey    string
	fromEmail string
	fromName  string
}

func NewEmailService(apiKey, fromEmail, fromName string) EmailService {
	return &sendGridEmailService{
		apiKey:    apiKey,
		fromEmail: fromEmail,
		fromName:  fromName,
	}
}

func (s *sendGridEmailService) send(ctx context.Context, toEmail, toName, subject, body string) error {
	logger.ExternalServiceCall("sendgrid", "send", "to", toEmail, "subject", subject)

	from := mail.NewEmail(s.fromName, s.fromEmail)
	recipient := mail.NewEmail(toName, toEmail)
	message := mail.NewSingleEmail(from, subject, recipient, body, body)

	client := sendgrid.NewSendClient(s.apiKey)
	response, err := client.SendWithContext(ctx, message)
	if err == nil && response.StatusCode >= 400 {
		err = fmt.Errorf("sendgrid error: status %d, body: %s", response.StatusCode, response.Body)
	}
	logger.ExternalServiceResult("sendgrid", "send", err, "to", toEmail)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

func (s *sendGridEmailService) SendApplicationReceived(ctx context.Context, email, name string) error {
	body := fmt.Sprintf("Hello %s,\n\nWe received your vetting application. The vetting team will review it and get back to you.\n\nBest regards,\nThe Community Team", name)
	return s.send(ctx, email, name, "Vetting Application Received", body)
}

func (s *sendGridEmailService) SendVettingStatusNotification(ctx context.Context, email, name string, status domain.ApplicationStatus, reasoning string) error {
	body := fmt.Sprintf("Hello %s,\n\nYour vetting application status has been updated to: %s.", name, status.Code().Label())
	switch status {
	case domain.ApplicationStatusApproved:
		body += "\n\nWelcome! You now have vetted member access."
	case domain.ApplicationStatusDenied, domain.ApplicationStatusOnHold:
		if reasoning != "" {
			body += fmt.Sprintf("\n\nReviewer note: %s", reasoning)
		}
	}
	body += "\n\nBest regards,\nThe Community Team"
	return s.send(ctx, email, name, "Vetting Application Update", body)
}

func (s *sendGridEmailService) SendAccountStatusNotification(ctx context.Context, email, name string, isActive bool, reason string) error {
	body := fmt.Sprintf("Hello %s,\n\nYour account has been marked %s.", name, statusWord(isActive))
	if reason != "" {
		body += fmt.Sprintf("\n\nReason: %s", reason)
	}
	body += "\n\nBest regards,\nThe Community Team"
	return s.send(ctx, email, name, "Account Status Update", body)
}

func (s *sendGridEmailService) SendStaleReviewReminder(ctx context.Context, email, name string, pendingCount int) error {
	body := fmt.Sprintf("Hello %s,\n\nThere are %d vetting applications that have been waiting on review for a while. Please take a look when you can.\n\nBest regards,\nThe Community Team", name, pendingCount)
	return s.send(ctx, email, name, "Vetting Applications Awaiting Review", body)
}
