package pocket

import (
	"fmt"
	"net/http"
)

const (
	// Code reported when Pocket answers 200 without the expected field.
	CodeMissingField = http.StatusInternalServerError
	// Code reported when Pocket can't be reached at all.
	CodeUnreachable = http.StatusBadGateway
)

// AuthError is a rejected or malformed answer during the token handshake.
type AuthError struct {
	Code int
	Err  error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("pocket: auth failed with code %d: %v", e.Code, e.Err)
	}
	return fmt.Sprintf("pocket: auth failed with code %d", e.Code)
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// FetchError is a failed listing or archiving call.
type FetchError struct {
	Op   string
	Code int
	Err  error
}

func (e *FetchError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("pocket: %s failed: %v", e.Op, e.Err)
	default:
		return fmt.Sprintf("pocket: %s failed with code %d", e.Op, e.Code)
	}
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
