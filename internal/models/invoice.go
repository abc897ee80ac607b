package models

import "time"

// Invoice statuses.
const (
	InvoiceDraft = "draft"
	InvoiceSent  = "sent"
	InvoicePaid  = "paid"
)

// InvoiceItem is one billed line with its computed total.
type InvoiceItem struct {
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
	Total    float64 `json:"total"`
}

// Invoice is a billing record, created manually by an admin or generated
// automatically when an order reaches DELIVERED.
type Invoice struct {
	ID            string        `json:"id"`
	InvoiceNumber string        `json:"invoiceNumber"`
	Customer      CustomerInfo  `json:"customer"`
	Items         []InvoiceItem `json:"items"`
	Subtotal      float64       `json:"subtotal"`
	Tax           float64       `json:"tax"`
	Discount      float64       `json:"discount"`
	Total         float64       `json:"total"`
	Status        string        `json:"status"`
	OrderID       *string       `json:"orderId,omitempty"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}

// CreateInvoiceRequest is the admin manual-invoice body.
type CreateInvoiceRequest struct {
	Customer CustomerInfo  `json:"customer"`
	Items    []InvoiceItem `json:"items" validate:"required,min=1,dive"`
	Tax      float64       `json:"tax" validate:"gte=0"`
	Discount float64       `json:"discount" validate:"gte=0"`
	OrderID  *string       `json:"orderId,omitempty"`
}

// RevenueSummary is the aggregate returned by the revenue report: total
// invoiced amount per invoice status.
type RevenueSummary struct {
	Status string  `json:"status"`
	Count  int     `json:"count"`
	Total  float64 `json:"total"`
}
