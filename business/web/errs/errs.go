// Package errs provides types and support related to web v1 functionality.
package errs

import (
	"errors"
	"net/http"

	"github.com/ardanlabs/mining/foundation/mining/ledger"
	"github.com/ardanlabs/mining/foundation/mining/schedule"
	"github.com/ardanlabs/mining/foundation/mining/state"
)

// Response is the form used for API responses from failures in the API.
type Response struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// Trusted is used to pass an error during the request through the
// application with web specific context.
type Trusted struct {
	Err    error
	Status int
}

// NewTrusted wraps a provided error with an HTTP status code. This
// function should be used when handlers encounter expected errors.
func NewTrusted(err error, status int) error {
	return &Trusted{err, status}
}

// Error implements the error interface. It uses the default message of the
// wrapped error. This is what will be shown in the services' logs.
func (te *Trusted) Error() string {
	return te.Err.Error()
}

// Unwrap provides access to the wrapped error.
func (te *Trusted) Unwrap() error {
	return te.Err
}

// IsTrusted checks if an error of type Trusted exists.
func IsTrusted(err error) bool {
	var te *Trusted
	return errors.As(err, &te)
}

// GetTrusted returns a copy of the Trusted pointer.
func GetTrusted(err error) *Trusted {
	var te *Trusted
	if !errors.As(err, &te) {
		return nil
	}
	return te
}

// =============================================================================

// statuses maps the errors of the mining packages to the status returned to
// the client. The first match wins.
var statuses = []struct {
	err    error
	status int
}{
	{schedule.ErrUnauthorized, http.StatusUnauthorized},
	{schedule.ErrInvalidAddress, http.StatusBadRequest},
	{schedule.ErrTooEarly, http.StatusConflict},
	{schedule.ErrTransferFailed, http.StatusUnprocessableEntity},
	{schedule.ErrOverflow, http.StatusUnprocessableEntity},
	{ledger.ErrInsufficientFunds, http.StatusUnprocessableEntity},
	{ledger.ErrNonce, http.StatusBadRequest},
	{state.ErrChainID, http.StatusBadRequest},
	{state.ErrInvalidSignature, http.StatusBadRequest},
	{state.ErrInvalidValue, http.StatusBadRequest},
	{state.ErrUnknownMethod, http.StatusBadRequest},
	{state.ErrUnknownContract, http.StatusNotFound},
}

// FromMining converts an error returned by the mining packages into a
// trusted error. Errors that are not known are returned as is and result in
// an internal server error.
func FromMining(err error) error {
	for _, s := range statuses {
		if errors.Is(err, s.err) {
			return NewTrusted(err, s.status)
		}
	}
	return err
}
