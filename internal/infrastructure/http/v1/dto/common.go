// Package dto provides Data Transfer Objects for API requests/responses.
package dto

// IDResponse returns created entity ID.
type IDResponse struct {
	ID string `json:"id"`
}

// SuccessResponse is a generic success payload.
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// ErrorResponse is the error payload shape produced by the error
// handler middleware. Declared here for API documentation and tests.
type ErrorResponse struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}
