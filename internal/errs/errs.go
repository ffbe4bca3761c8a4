// Package errs defines the error kinds shared by the referral and fleet
// services. All of them are recoverable: handlers surface them to the caller
// and no operation leaves partially committed state behind.
package errs

import (
	"errors"
	"fmt"
)

// ValidationError reports missing or contradictory input.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

// Validationf builds a ValidationError from a format string.
func Validationf(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// NotFoundError reports a referenced entity id that does not exist.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

// NotFound builds a NotFoundError for the given entity kind and id.
func NotFound(kind, id string) error {
	return &NotFoundError{Kind: kind, ID: id}
}

// InvalidStateError reports an operation attempted in a state that does not
// permit it. State carries the offending current state so callers can show it.
type InvalidStateError struct {
	Kind   string
	ID     string
	State  string
	Action string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("cannot %s %s %s in state %q", e.Action, e.Kind, e.ID, e.State)
}

// InvalidState builds an InvalidStateError.
func InvalidState(kind, id, state, action string) error {
	return &InvalidStateError{Kind: kind, ID: id, State: state, Action: action}
}

// AmbulanceUnavailableError is the dispatch specialization of
// InvalidStateError: the ambulance exists but is not Available.
type AmbulanceUnavailableError struct {
	AmbulanceID string
	Status      string
}

func (e *AmbulanceUnavailableError) Error() string {
	return fmt.Sprintf("ambulance %s is not available (status %q)", e.AmbulanceID, e.Status)
}

// AmbulanceUnavailable builds an AmbulanceUnavailableError.
func AmbulanceUnavailable(ambulanceID, status string) error {
	return &AmbulanceUnavailableError{AmbulanceID: ambulanceID, Status: status}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsNotFound reports whether err is (or wraps) a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsInvalidState reports whether err is an InvalidStateError or its
// AmbulanceUnavailableError specialization.
func IsInvalidState(err error) bool {
	var is *InvalidStateError
	if errors.As(err, &is) {
		return true
	}
	var au *AmbulanceUnavailableError
	return errors.As(err, &au)
}

// IsAmbulanceUnavailable reports whether err is (or wraps) an
// AmbulanceUnavailableError.
func IsAmbulanceUnavailable(err error) bool {
	var au *AmbulanceUnavailableError
	return errors.As(err, &au)
}
