package email

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"doorstep-clean/internal/models"
)

// ServiceInterface defines the contract for outbound email.
type ServiceInterface interface {
	SendBookingConfirmation(ctx context.Context, order *models.Order) error
	SendContactMessage(ctx context.Context, req models.ContactRequest) error
}

// DisabledService drops all mail. It stands in for the SES client when the
// AWS credential chain cannot be loaded, so email stays best-effort instead
// of blocking startup.
type DisabledService struct {
	logger *slog.Logger
}

// NewDisabledService creates a sender that logs and discards every message.
func NewDisabledService(logger *slog.Logger) *DisabledService {
	return &DisabledService{logger: logger.With("component", "email")}
}

func (s *DisabledService) SendBookingConfirmation(ctx context.Context, order *models.Order) error {
	s.logger.WarnContext(ctx, "email disabled, dropping booking confirmation", "orderNumber", order.OrderNumber)
	return nil
}

func (s *DisabledService) SendContactMessage(ctx context.Context, req models.ContactRequest) error {
	s.logger.WarnContext(ctx, "email disabled, dropping contact message", "from", req.Email)
	return nil
}

// SESService sends transactional email through Amazon SES.
type SESService struct {
	client        *sesv2.Client
	senderEmail   string
	businessEmail string
}

// NewSESService builds the SES client from the default AWS credential chain.
func NewSESService(ctx context.Context, region, senderEmail, businessEmail string) (*SESService, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return &SESService{
		client:        sesv2.NewFromConfig(cfg),
		senderEmail:   senderEmail,
		businessEmail: businessEmail,
	}, nil
}

func (s *SESService) send(ctx context.Context, to []string, subject, body string) error {
	html := "<pre>" + body + "</pre>"
	_, err := s.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(s.senderEmail),
		Destination:      &types.Destination{ToAddresses: to},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(subject)},
				Body: &types.Body{
					Text: &types.Content{Data: aws.String(body)},
					Html: &types.Content{Data: aws.String(html)},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// SendBookingConfirmation emails the customer a summary of their booking and
// copies the business inbox.
func (s *SESService) SendBookingConfirmation(ctx context.Context, order *models.Order) error {
	subject := fmt.Sprintf("Booking confirmed: %s", order.OrderNumber)
	body := fmt.Sprintf(
		"Hi %s,\n\nYour laundry booking %s has been received.\n\nItems:\n",
		order.Customer.Name, order.OrderNumber,
	)
	for _, item := range order.Items {
		body += fmt.Sprintf("  - %s x%d (%.2f)\n", item.Name, item.Quantity, item.Price)
	}
	body += fmt.Sprintf("\nTotal: %.2f\n\nTrack your order anytime with its number %s.\n",
		order.TotalAmount, order.OrderNumber)

	to := []string{s.businessEmail}
	if order.Customer.Email != "" {
		to = append([]string{order.Customer.Email}, to...)
	}
	return s.send(ctx, to, subject, body)
}

// SendContactMessage forwards a contact-form submission to the business
// inbox.
func (s *SESService) SendContactMessage(ctx context.Context, req models.ContactRequest) error {
	subject := "Contact form: " + req.Name
	body := fmt.Sprintf("From: %s <%s>\nPhone: %s\n\n%s\n", req.Name, req.Email, req.Phone, req.Message)
	return s.send(ctx, []string{s.businessEmail}, subject, body)
}
