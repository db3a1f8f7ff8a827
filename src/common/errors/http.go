package errors

import "errors"

// Response represents a standard error response for HTTP APIs
type Response struct {
	// Error contains the error code (domain.code format)
	Error string `json:"error"`

	// Message contains a human-readable error message
	Message string `json:"message"`

	// Details contains optional additional error details
	Details map[string]any `json:"details,omitempty"`
}

// ToResponse converts an Error to an HTTP response structure
func (e *Error) ToResponse() Response {
	return Response{
		Error:   string(e.Domain) + "." + string(e.Code),
		Message: e.Message,
	}
}

// ToResponseWithDetails converts an Error to an HTTP response with additional details
func (e *Error) ToResponseWithDetails(details map[string]any) Response {
	r := e.ToResponse()
	r.Details = details
	return r
}

// NewResponse creates a response from any error. Wrapped *Error values keep
// their domain and code; anything else becomes a generic internal error.
func NewResponse(err error) Response {
	var e *Error
	if errors.As(err, &e) {
		return e.ToResponse()
	}

	return ErrInternal.ToResponse()
}
