// Package apperr defines the error taxonomy shared by the data-service
// client, the contact store and the adapters.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrTransport  = errors.New("transport error")
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
)

// ServiceError describes a non-success response from the contacts data
// service. It unwraps to one of the sentinels above.
type ServiceError struct {
	Op      string
	Status  int
	Message string
	Kind    error
}

func (e *ServiceError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s (HTTP %d): %s", e.Op, e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: %s (HTTP %d)", e.Op, e.Kind, e.Status)
}

func (e *ServiceError) Unwrap() error { return e.Kind }

// FromStatus classifies an HTTP status. It returns nil for 2xx; any status
// that is neither validation nor not-found is a transport failure.
func FromStatus(op string, status int, msg string) error {
	if status >= 200 && status < 300 {
		return nil
	}
	kind := ErrTransport
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		kind = ErrValidation
	case http.StatusNotFound:
		kind = ErrNotFound
	}
	return &ServiceError{Op: op, Status: status, Message: msg, Kind: kind}
}

// Transport wraps a low-level failure (dial, read, decode) as ErrTransport.
func Transport(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrTransport, err)
}
