package models

import "time"

// User roles.
const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
	RoleStaff    = "staff"
	RoleRider    = "rider"
)

// User is an identity used for authentication and authorization. It is not
// a workflow entity; orders snapshot customer contact details instead of
// referencing users.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
}

// RegisterRequest creates a customer account via the public sign-up form.
type RegisterRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// LoginRequest authenticates with email and password.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// GoogleLoginRequest carries the OAuth authorization code from the client.
type GoogleLoginRequest struct {
	Code string `json:"code" validate:"required"`
}

// CreateUserRequest lets an admin provision staff and rider accounts.
type CreateUserRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role" validate:"required,oneof=admin staff rider customer"`
}

// AuthResponse is returned by login/register/oauth with the signed token.
type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}
