// Package apierror provides standardized error response structures for the API
// together with the domain error kinds the services return.
// All errors returned to clients go through this package to ensure consistency
// and to prevent leaking internal details (stack traces, DB errors, etc.).
package apierror

// APIError is the canonical error envelope for all 4xx/5xx HTTP responses.
type APIError struct {
	Detail string `json:"detail"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// FieldsError wraps multiple field errors from request validation.
type FieldsError struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewFields(fields map[string]string) *FieldsError {
	return &FieldsError{Detail: "Dữ liệu không hợp lệ", Fields: fields}
}
