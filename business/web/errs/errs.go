// Package errs provides types and support related to web v1 functionality.
package errs

import (
	"errors"
	"net/http"

	"github.com/ardanlabs/powledger/foundation/blockchain/chain"
	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ardanlabs/powledger/foundation/blockchain/genesis"
	"github.com/ardanlabs/powledger/foundation/blockchain/merkle"
	"github.com/ardanlabs/powledger/foundation/blockchain/pow"
	"github.com/ardanlabs/powledger/foundation/blockchain/state"
	"github.com/ardanlabs/powledger/foundation/web"
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

// Unwrap returns the wrapped error.
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

// FromLedger classifies an error returned by the ledger. Expected errors
// are returned as trusted errors with the status the client should see. An
// empty chain means the ledger is corrupt and the service must shut down.
// Anything else is returned unchanged.
func FromLedger(err error) error {
	switch {
	case err == nil:
		return nil

	case errors.Is(err, chain.ErrEmptyChain):
		return web.NewShutdownError(err.Error())

	case errors.Is(err, database.ErrUnverifiedTransaction),
		errors.Is(err, database.ErrInvalidAccountID),
		errors.Is(err, database.ErrInvalidKeyState),
		errors.Is(err, genesis.ErrInvalidGenesis):
		return NewTrusted(err, http.StatusBadRequest)

	case errors.Is(err, chain.ErrBlockNotFound),
		errors.Is(err, state.ErrTxNotFound),
		errors.Is(err, merkle.ErrNotFound):
		return NewTrusted(err, http.StatusNotFound)

	case errors.Is(err, pow.ErrCancelled):
		return NewTrusted(err, http.StatusServiceUnavailable)
	}

	return err
}
