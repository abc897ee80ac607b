package models

import "time"

// Order statuses, in lifecycle order. The lifecycle is linear but transitions
// are not adjacency-checked: an authorized actor may set any target status.
const (
	StatusCreated        = "CREATED"
	StatusPickupSchedule = "PICKUP_SCHEDULED"
	StatusPickedUp       = "PICKED_UP"
	StatusInLaundry      = "IN_LAUNDRY"
	StatusReady          = "READY"
	StatusOutForDelivery = "OUT_FOR_DELIVERY"
	StatusDelivered      = "DELIVERED"
)

// OrderStatuses lists every valid status in lifecycle order.
var OrderStatuses = []string{
	StatusCreated,
	StatusPickupSchedule,
	StatusPickedUp,
	StatusInLaundry,
	StatusReady,
	StatusOutForDelivery,
	StatusDelivered,
}

// IsValidOrderStatus reports whether s is one of the seven lifecycle statuses.
func IsValidOrderStatus(s string) bool {
	for _, v := range OrderStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// CustomerInfo is the contact/address snapshot denormalized onto an order at
// booking time. It does not change when the user record changes.
type CustomerInfo struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Email   string `json:"email,omitempty"`
	Address string `json:"address"`
}

// ServiceItem is one ordered line item copied from the catalog.
type ServiceItem struct {
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

// StatusEntry is one record in an order's append-only status history.
type StatusEntry struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	UpdatedBy string    `json:"updatedBy"`
	Note      string    `json:"note,omitempty"`
}

// Order represents one laundry job from booking to delivery.
type Order struct {
	ID            string        `json:"id"`
	OrderNumber   string        `json:"orderNumber"`
	Customer      CustomerInfo  `json:"customer"`
	Items         []ServiceItem `json:"items"`
	Status        string        `json:"status"`
	StatusHistory []StatusEntry `json:"statusHistory"`
	PickupDate    time.Time     `json:"pickupDate"`
	PickupSlot    string        `json:"pickupSlot,omitempty"`
	DeliveryDate  *time.Time    `json:"deliveryDate,omitempty"`
	AssignedStaff *string       `json:"assignedStaff,omitempty"`
	AssignedRider *string       `json:"assignedRider,omitempty"`
	TotalAmount   float64       `json:"totalAmount"`
	Notes         string        `json:"notes,omitempty"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}

// TotalFromItems computes the line-item total (price x quantity summed).
// The persisted TotalAmount starts as this value but may be overridden later
// by an admin without touching the items.
func (o *Order) TotalFromItems() float64 {
	var total float64
	for _, it := range o.Items {
		total += it.Price * float64(it.Quantity)
	}
	return total
}

// CreateOrderRequest is the public booking submission.
type CreateOrderRequest struct {
	Customer   CustomerInfo  `json:"customer"`
	Items      []ServiceItem `json:"items" validate:"required,min=1,dive"`
	PickupDate time.Time     `json:"pickupDate" validate:"required"`
	PickupSlot string        `json:"pickupSlot,omitempty"`
	Notes      string        `json:"notes,omitempty"`
}

// UpdateOrderRequest is the PATCH body for the transition/update operation.
// Every field is optional; a status change appends to the history, the rest
// are applied in the same request whether or not the status changed.
type UpdateOrderRequest struct {
	Status        *string    `json:"status,omitempty" validate:"omitempty,oneof=CREATED PICKUP_SCHEDULED PICKED_UP IN_LAUNDRY READY OUT_FOR_DELIVERY DELIVERED"`
	StatusNote    *string    `json:"statusNote,omitempty"`
	DeliveryDate  *time.Time `json:"deliveryDate,omitempty"`
	AssignedStaff *string    `json:"assignedStaff,omitempty"`
	AssignedRider *string    `json:"assignedRider,omitempty"`
	TotalAmount   *float64   `json:"totalAmount,omitempty" validate:"omitempty,gte=0"`
	Notes         *string    `json:"notes,omitempty"`
}

// OrderSummary is the public tracking view of an order. It deliberately
// omits customer management fields.
type OrderSummary struct {
	OrderNumber   string        `json:"orderNumber"`
	Status        string        `json:"status"`
	StatusHistory []StatusEntry `json:"statusHistory"`
	PickupDate    time.Time     `json:"pickupDate"`
	DeliveryDate  *time.Time    `json:"deliveryDate,omitempty"`
	TotalAmount   float64       `json:"totalAmount"`
}

// Summary projects an order into its public tracking view.
func (o *Order) Summary() OrderSummary {
	return OrderSummary{
		OrderNumber:   o.OrderNumber,
		Status:        o.Status,
		StatusHistory: o.StatusHistory,
		PickupDate:    o.PickupDate,
		DeliveryDate:  o.DeliveryDate,
		TotalAmount:   o.TotalAmount,
	}
}
