package models

import "time"

// Service is a catalog entry consumed when building order line items.
// Static reference data, admin-managed.
type Service struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Category  string    `json:"category"`
	Price     float64   `json:"price"`
	Unit      string    `json:"unit"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CreateServiceRequest adds a catalog entry.
type CreateServiceRequest struct {
	Name     string  `json:"name" validate:"required"`
	Category string  `json:"category" validate:"required"`
	Price    float64 `json:"price" validate:"required,gt=0"`
	Unit     string  `json:"unit" validate:"required"`
}

// UpdateServiceRequest edits a catalog entry; all fields optional.
type UpdateServiceRequest struct {
	Name     *string  `json:"name,omitempty"`
	Category *string  `json:"category,omitempty"`
	Price    *float64 `json:"price,omitempty" validate:"omitempty,gt=0"`
	Unit     *string  `json:"unit,omitempty"`
	Active   *bool    `json:"active,omitempty"`
}
