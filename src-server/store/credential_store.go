package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"pocketbot/src-server/model"

	"github.com/uptrace/bun"
)

// CredentialStore maps chat identities to Pocket credentials and to the
// state of an in-flight login.
type CredentialStore struct {
	db  bun.IDB
	now func() time.Time
}

func NewCredentialStore(db bun.IDB) *CredentialStore {
	return &CredentialStore{
		db:  db,
		now: func() time.Time { return time.Now().UTC() },
	}
}

// GetUserByID returns nil when the chat identity has never logged in.
func (c *CredentialStore) GetUserByID(ctx context.Context, userID string) (*model.User, error) {
	return c.getUser(ctx, "GetUserByID", "user_id = ?", userID)
}

// GetUserByRequestState resolves a login callback. Empty state never
// matches, even though every settled user row carries an empty state.
func (c *CredentialStore) GetUserByRequestState(ctx context.Context, state string) (*model.User, error) {
	if state == "" {
		return nil, nil
	}
	return c.getUser(ctx, "GetUserByRequestState", "request_state = ?", state)
}

func (c *CredentialStore) getUser(ctx context.Context, op, where string, arg string) (*model.User, error) {
	userModel := new(model.User)
	err := c.db.NewSelect().
		Model(userModel).
		Where(where, arg).
		Limit(1).
		Scan(ctx)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, nil
	case err != nil:
		return nil, storageError(op, err)
	}
	return userModel, nil
}

// UpsertPending records a new pending login. A missing row is inserted with
// an empty access token; an existing row has its request fields replaced
// and keeps its access token. Two racing first logins for the same user
// both succeed and the later write wins.
func (c *CredentialStore) UpsertPending(ctx context.Context, userID, roomID, requestToken, requestState string) error {
	if _, err := c.db.NewInsert().
		Model(&model.User{
			UserID:           userID,
			RequestRoom:      roomID,
			RequestToken:     requestToken,
			RequestTokenDate: c.now(),
			RequestState:     requestState,
		}).
		On("CONFLICT (user_id) DO UPDATE").
		Set("request_room = EXCLUDED.request_room").
		Set("request_token = EXCLUDED.request_token").
		Set("request_token_date = EXCLUDED.request_token_date").
		Set("request_state = EXCLUDED.request_state").
		Exec(ctx); err != nil {
		return storageError("UpsertPending", err)
	}
	return nil
}

// SetAccessToken stores token and clears every request field in one
// statement. Logout passes an empty token.
func (c *CredentialStore) SetAccessToken(ctx context.Context, userID, token string) error {
	if _, err := c.db.NewUpdate().
		Model((*model.User)(nil)).
		Set("access_token = ?", token).
		Set("request_room = ''").
		Set("request_token = ''").
		Set("request_token_date = NULL").
		Set("request_state = ''").
		Where("user_id = ?", userID).
		Exec(ctx); err != nil {
		return storageError("SetAccessToken", err)
	}
	return nil
}
