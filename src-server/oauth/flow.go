// Package oauth drives the three-legged Pocket login:
//
//	Unauthenticated --BeginLogin--> Pending --CompleteLogin--> Authenticated
//	Authenticated --Logout--> Unauthenticated
//
// A new BeginLogin while Pending issues a fresh correlation token and the
// previous one stops resolving.
package oauth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"pocketbot/src-server/metric"
	"pocketbot/src-server/model"
	"pocketbot/src-server/pocket"

	"github.com/google/uuid"
)

type State int

const (
	StateUnauthenticated State = iota
	StatePending
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unauthenticated"
	}
}

// StateOf derives the login state of a user row; nil means never seen.
func StateOf(u *model.User) State {
	switch {
	case u.IsAuthenticated():
		return StateAuthenticated
	case u.IsPending():
		return StatePending
	default:
		return StateUnauthenticated
	}
}

type CredentialStore interface {
	GetUserByID(ctx context.Context, userID string) (*model.User, error)
	GetUserByRequestState(ctx context.Context, state string) (*model.User, error)
	UpsertPending(ctx context.Context, userID, roomID, requestToken, requestState string) error
	SetAccessToken(ctx context.Context, userID, token string) error
}

type Remote interface {
	ObtainRequestToken(ctx context.Context, redirectURI, state string) (string, error)
	Authorize(ctx context.Context, requestToken string) (pocket.AccessToken, error)
	AuthorizeURL(requestToken, redirectURI string) string
}

// Notifier posts a notice into the room a login was started from.
type Notifier interface {
	SendNotice(ctx context.Context, roomID, content string) error
}

type Flow struct {
	store         CredentialStore
	remote        Remote
	notifier      Notifier
	webappURL     string
	commandPrefix string
	newState      func() string
}

type FlowOption func(*Flow)

// WithCommandPrefix sets the prefix used when notices mention a command.
func WithCommandPrefix(prefix string) FlowOption {
	return func(f *Flow) {
		f.commandPrefix = prefix
	}
}

// NewFlow builds a Flow. webappURL is the public base URL the callback route
// is served under.
func NewFlow(store CredentialStore, remote Remote, notifier Notifier, webappURL string, opts ...FlowOption) *Flow {
	f := &Flow{
		store:         store,
		remote:        remote,
		notifier:      notifier,
		webappURL:     strings.TrimSuffix(webappURL, "/"),
		commandPrefix: "!",
		newState:      uuid.NewString,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// CallbackURL is where Pocket redirects the user after approval.
func (f *Flow) CallbackURL(requestState string) string {
	return f.webappURL + "/authorize/" + url.PathEscape(requestState)
}

// User returns the stored row and its derived state.
func (f *Flow) User(ctx context.Context, userID string) (*model.User, State, error) {
	userModel, err := f.store.GetUserByID(ctx, userID)
	if err != nil {
		return nil, StateUnauthenticated, fmt.Errorf("User: %w", err)
	}
	return userModel, StateOf(userModel), nil
}

// BeginLogin asks Pocket for a request token, records the pending login and
// returns the URL the user has to visit. Nothing is stored when Pocket
// refuses.
func (f *Flow) BeginLogin(ctx context.Context, userID, roomID string) (string, error) {
	_, state, err := f.User(ctx, userID)
	if err != nil {
		metric.LoginTransitions.WithLabelValues("begin", "storage_error").Inc()
		return "", fmt.Errorf("BeginLogin: %w", err)
	}
	if state == StateAuthenticated {
		metric.LoginTransitions.WithLabelValues("begin", "already_authenticated").Inc()
		return "", ErrAlreadyAuthenticated
	}

	requestState := f.newState()
	callbackURL := f.CallbackURL(requestState)
	requestToken, err := f.remote.ObtainRequestToken(ctx, callbackURL, requestState)
	if err != nil {
		metric.LoginTransitions.WithLabelValues("begin", "remote_error").Inc()
		return "", fmt.Errorf("BeginLogin: %w", err)
	}

	if err := f.store.UpsertPending(ctx, userID, roomID, requestToken, requestState); err != nil {
		metric.LoginTransitions.WithLabelValues("begin", "storage_error").Inc()
		return "", fmt.Errorf("BeginLogin: %w", err)
	}

	metric.LoginTransitions.WithLabelValues("begin", "ok").Inc()
	slog.Debug("login started", "user", userID, "previous_state", state)
	return f.remote.AuthorizeURL(requestToken, callbackURL), nil
}

// CompleteLogin handles the callback for requestState. On a Pocket or
// database failure the pending fields stay as they are and the room gets a
// notice; the user can start over with a new login.
func (f *Flow) CompleteLogin(ctx context.Context, requestState string) error {
	userModel, err := f.store.GetUserByRequestState(ctx, requestState)
	switch {
	case err != nil:
		metric.LoginTransitions.WithLabelValues("complete", "storage_error").Inc()
		return fmt.Errorf("CompleteLogin: %w", err)
	case userModel == nil:
		metric.LoginTransitions.WithLabelValues("complete", "unknown_flow").Inc()
		return ErrUnknownFlow
	}

	accessToken, err := f.remote.Authorize(ctx, userModel.RequestToken)
	if err != nil {
		metric.LoginTransitions.WithLabelValues("complete", "remote_error").Inc()
		var authErr *pocket.AuthError
		code := pocket.CodeMissingField
		if errors.As(err, &authErr) {
			code = authErr.Code
		}
		slog.Warn("got error from pocket authorization", "user", userModel.UserID, "error", err)
		f.notify(ctx, userModel.RequestRoom, fmt.Sprintf("Failed to connect to Pocket, response code: %d", code))
		return fmt.Errorf("CompleteLogin: %w", err)
	}

	if err := f.store.SetAccessToken(ctx, userModel.UserID, accessToken.Token); err != nil {
		metric.LoginTransitions.WithLabelValues("complete", "storage_error").Inc()
		slog.Error("can't store access token", "user", userModel.UserID, "error", err)
		f.notify(ctx, userModel.RequestRoom, "Failed to connect to Pocket due to database error. Please try again.")
		return fmt.Errorf("CompleteLogin: %w", err)
	}

	metric.LoginTransitions.WithLabelValues("complete", "ok").Inc()
	slog.Info("user connected to pocket", "user", userModel.UserID, "pocket_username", accessToken.Username)
	f.notify(ctx, userModel.RequestRoom, fmt.Sprintf("Successfully connected to Pocket! Use `%spocket` to get a random article.", f.commandPrefix))
	return nil
}

// Logout clears the access token but keeps the user row.
func (f *Flow) Logout(ctx context.Context, userID string) error {
	_, state, err := f.User(ctx, userID)
	if err != nil {
		metric.LoginTransitions.WithLabelValues("logout", "storage_error").Inc()
		return fmt.Errorf("Logout: %w", err)
	}
	if state != StateAuthenticated {
		metric.LoginTransitions.WithLabelValues("logout", "not_authenticated").Inc()
		return ErrNotAuthenticated
	}
	if err := f.store.SetAccessToken(ctx, userID, ""); err != nil {
		metric.LoginTransitions.WithLabelValues("logout", "storage_error").Inc()
		return fmt.Errorf("Logout: %w", err)
	}
	metric.LoginTransitions.WithLabelValues("logout", "ok").Inc()
	return nil
}

func (f *Flow) notify(ctx context.Context, roomID, content string) {
	if roomID == "" {
		return
	}
	if err := f.notifier.SendNotice(ctx, roomID, content); err != nil {
		slog.Warn("can't send login notice", "room", roomID, "error", err)
	}
}
