package payment

import (
	"context"
	"fmt"

	qrcode "github.com/skip2/go-qrcode"
	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/paymentlink"
	"github.com/stripe/stripe-go/v74/price"
)

// ServiceInterface defines the contract for the payment-link service.
type ServiceInterface interface {
	CreatePaymentLink(ctx context.Context, amount float64, orderNumber string) (string, []byte, error)
}

// StripeService builds Stripe payment links and companion QR codes for
// collect-on-delivery riders.
type StripeService struct {
	currency string
}

// NewStripeService configures the global Stripe client key.
func NewStripeService(apiKey, currency string) *StripeService {
	stripe.Key = apiKey
	if currency == "" {
		currency = "myr"
	}
	return &StripeService{currency: currency}
}

// CreatePaymentLink creates a one-off price for the order total, wraps it in
// a payment link, and renders the link as a QR PNG for the rider to show.
func (s *StripeService) CreatePaymentLink(ctx context.Context, amount float64, orderNumber string) (string, []byte, error) {
	if amount <= 0 {
		return "", nil, fmt.Errorf("invalid payment amount %.2f", amount)
	}

	p, err := price.New(&stripe.PriceParams{
		Currency:   stripe.String(s.currency),
		UnitAmount: stripe.Int64(int64(amount * 100)),
		ProductData: &stripe.PriceProductDataParams{
			Name: stripe.String("Laundry order " + orderNumber),
		},
	})
	if err != nil {
		return "", nil, fmt.Errorf("failed to create price: %w", err)
	}

	link, err := paymentlink.New(&stripe.PaymentLinkParams{
		LineItems: []*stripe.PaymentLinkLineItemParams{
			{Price: stripe.String(p.ID), Quantity: stripe.Int64(1)},
		},
		Params: stripe.Params{
			Metadata: map[string]string{"orderNumber": orderNumber},
		},
	})
	if err != nil {
		return "", nil, fmt.Errorf("failed to create payment link: %w", err)
	}

	png, err := qrcode.Encode(link.URL, qrcode.Medium, 256)
	if err != nil {
		return "", nil, fmt.Errorf("failed to render QR code: %w", err)
	}
	return link.URL, png, nil
}
