package oauth

import "errors"

var (
	// ErrAlreadyAuthenticated is returned by BeginLogin when the user holds an
	// access token. The user has to log out first.
	ErrAlreadyAuthenticated = errors.New("already authenticated")

	// ErrNotAuthenticated is returned by Logout when there is nothing to clear.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrUnknownFlow is returned by CompleteLogin when the correlation token
	// was never issued, was superseded, or was already consumed.
	ErrUnknownFlow = errors.New("unknown login flow")
)
