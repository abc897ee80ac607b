package models

import "errors"

var ErrNotFound = errors.New("requested resource not found")
var ErrForbidden = errors.New("user does not have permission to access this resource")
var ErrConflict = errors.New("resource conflict, item already exists")
var ErrInvalidToken = errors.New("token not found or expired")
var ErrInvalidCredentials = errors.New("invalid credentials") // email or password provided does not match database record
var ErrEmailTaken = errors.New("email already registered")
var ErrInvalidStatus = errors.New("invalid order status")

// ErrMissingCustomerFields carries the exact message the public booking form
// shows when required contact fields are absent.
var ErrMissingCustomerFields = errors.New("Customer name, phone, and address are required")

// ErrAnalysisFailed is returned when the image-classification payload cannot
// be parsed; the customer falls back to manual booking.
var ErrAnalysisFailed = errors.New("could not analyze the uploaded image")

// ErrorResponse is the JSON body for every error status. Internal details are
// logged server-side and never returned to the client.
type ErrorResponse struct {
	Message string `json:"message"`
}
