// Package apierror defines the JSON error envelope shared by every non-2xx
// response of the API, so register clients always parse the same shape and
// internals (SQL errors, stack traces) never leak.
package apierror

// APIError carries a single operator-readable message in Spanish.
type APIError struct {
	Detail string `json:"detail"`
}

func (e *APIError) Error() string { return e.Detail }

func New(msg string) *APIError { return &APIError{Detail: msg} }

// ValidationError adds per-field messages from request binding on top of the
// base envelope.
type ValidationError struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "solicitud inválida", Fields: fields}
}
