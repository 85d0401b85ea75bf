package domain

import (
	"errors"
	"fmt"
)

// ErrorKind tags every error the payout flow can produce so the HTTP and CLI
// boundaries can switch on it instead of inspecting messages.
type ErrorKind string

const (
	KindValidation ErrorKind = "validation"
	KindAuth       ErrorKind = "auth"
	KindPayout     ErrorKind = "payout"
	KindStatus     ErrorKind = "status"
)

// ErrMissingCredentials is returned when neither the session nor configuration
// provides a complete client id / secret pair.
var ErrMissingCredentials = &ValidationError{
	Field:   "credentials",
	Message: "provide PayPal client id/secret in the request or set PAYPAL_CLIENT_ID and PAYPAL_CLIENT_SECRET",
}

// ValidationError reports bad or missing user input. No remote call is made once one is raised.
type ValidationError struct {
	Field   string
	Message string
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Kind() ErrorKind { return KindValidation }

// remoteError holds what the provider (or the transport) told us.
type remoteError struct {
	op         string
	StatusCode int
	Body       string
	Err        error
}

func (e *remoteError) Error() string {
	switch {
	case e.StatusCode != 0:
		return fmt.Sprintf("%s: HTTP %d %s", e.op, e.StatusCode, e.Body)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.op, e.Err)
	default:
		return e.op
	}
}

func (e *remoteError) Unwrap() error {
	return e.Err
}

// AuthError means the token exchange failed.
type AuthError struct{ remoteError }

func NewAuthError(status int, body string, err error) *AuthError {
	return &AuthError{remoteError{op: "failed to obtain PayPal access token", StatusCode: status, Body: body, Err: err}}
}

func (e *AuthError) Kind() ErrorKind { return KindAuth }

// PayoutError means the batch submission failed or came back non-2xx.
type PayoutError struct{ remoteError }

func NewPayoutError(status int, body string, err error) *PayoutError {
	return &PayoutError{remoteError{op: "PayPal payout failed", StatusCode: status, Body: body, Err: err}}
}

func (e *PayoutError) Kind() ErrorKind { return KindPayout }

// StatusError means the batch status fetch failed.
type StatusError struct{ remoteError }

func NewStatusError(status int, body string, err error) *StatusError {
	return &StatusError{remoteError{op: "fetch payout status failed", StatusCode: status, Body: body, Err: err}}
}

func (e *StatusError) Kind() ErrorKind { return KindStatus }

type kinded interface {
	Kind() ErrorKind
}

// KindOf returns the kind of the first tagged error in err's chain.
func KindOf(err error) (ErrorKind, bool) {
	var k kinded
	if errors.As(err, &k) {
		return k.Kind(), true
	}
	return "", false
}

// RemoteStatus returns the provider HTTP status carried by err, or 0.
func RemoteStatus(err error) int {
	var authErr *AuthError
	var payoutErr *PayoutError
	var statusErr *StatusError
	switch {
	case errors.As(err, &authErr):
		return authErr.StatusCode
	case errors.As(err, &payoutErr):
		return payoutErr.StatusCode
	case errors.As(err, &statusErr):
		return statusErr.StatusCode
	}
	return 0
}
