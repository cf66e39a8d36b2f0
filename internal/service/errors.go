package service

import (
	"fmt"
)

// APIError carries the HTTP status of a non-2xx response that had no usable error field.
type APIError struct {
	StatusCode int
	RequestID  string
	Body       string
}

func (e *APIError) Error() string {
	if e.RequestID != "" {
		return fmt.Sprintf("api error: status=%d request_id=%s body=%s", e.StatusCode, e.RequestID, e.Body)
	}
	return fmt.Sprintf("api error: status=%d body=%s", e.StatusCode, e.Body)
}

// ServiceError is an error the analysis service reported in its response body.
// The message is meant to be shown to the user verbatim.
type ServiceError struct {
	Message    string
	StatusCode int
	RequestID  string
}

func (e *ServiceError) Error() string { return e.Message }

// TransportError means the exchange did not complete with a usable response:
// the request failed, or the body was not JSON of the expected shape.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	if e == nil {
		return "transport error"
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }
