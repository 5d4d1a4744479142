package oauth_test

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"testing"

	"pocketbot/src-server/model"
	"pocketbot/src-server/oauth"
	"pocketbot/src-server/pocket"
	"pocketbot/src-server/store"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const webappURL = "https://bot.example"

type fakeRemote struct {
	mu           sync.Mutex
	issued       int
	states       []string
	redirectURIs []string
	exchanged    []string
	obtainErr    error
	authorizeErr error
	accessToken  string
}

func (f *fakeRemote) ObtainRequestToken(_ context.Context, redirectURI, state string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.obtainErr != nil {
		return "", f.obtainErr
	}
	f.issued++
	f.states = append(f.states, state)
	f.redirectURIs = append(f.redirectURIs, redirectURI)
	return fmt.Sprintf("T%d", f.issued), nil
}

func (f *fakeRemote) Authorize(_ context.Context, requestToken string) (pocket.AccessToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.exchanged = append(f.exchanged, requestToken)
	if f.authorizeErr != nil {
		return pocket.AccessToken{}, f.authorizeErr
	}
	return pocket.AccessToken{Token: f.accessToken, Username: "alice"}, nil
}

func (f *fakeRemote) AuthorizeURL(requestToken, redirectURI string) string {
	return pocket.NewClient("consumer").AuthorizeURL(requestToken, redirectURI)
}

type notice struct {
	roomID  string
	content string
}

type fakeNotifier struct {
	mu      sync.Mutex
	notices []notice
}

func (f *fakeNotifier) SendNotice(_ context.Context, roomID, content string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.notices = append(f.notices, notice{roomID: roomID, content: content})
	return nil
}

// failingStore fails SetAccessToken while fail is set and UpsertPending
// while failUpsert is set.
type failingStore struct {
	*store.CredentialStore
	fail       bool
	failUpsert bool
}

func (f *failingStore) UpsertPending(ctx context.Context, userID, roomID, requestToken, requestState string) error {
	if f.failUpsert {
		return &store.StorageError{Op: "UpsertPending", Err: errors.New("disk full")}
	}
	return f.CredentialStore.UpsertPending(ctx, userID, roomID, requestToken, requestState)
}

func (f *failingStore) SetAccessToken(ctx context.Context, userID, token string) error {
	if f.fail {
		return &store.StorageError{Op: "SetAccessToken", Err: errors.New("disk full")}
	}
	return f.CredentialStore.SetAccessToken(ctx, userID, token)
}

type testFlow struct {
	flow     *oauth.Flow
	store    *failingStore
	remote   *fakeRemote
	notifier *fakeNotifier
}

func setupFlow(t *testing.T) *testFlow {
	t.Helper()
	db, err := model.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, model.CreateSchema(context.Background(), db))

	tf := &testFlow{
		store:    &failingStore{CredentialStore: store.NewCredentialStore(db)},
		remote:   &fakeRemote{accessToken: "A1"},
		notifier: &fakeNotifier{},
	}
	tf.flow = oauth.NewFlow(tf.store, tf.remote, tf.notifier, webappURL+"/")
	return tf
}

func (tf *testFlow) lastState() string {
	return tf.remote.states[len(tf.remote.states)-1]
}

func TestFlow_LoginScenario(t *testing.T) {
	ctx := context.Background()
	tf := setupFlow(t)

	authorizeURL, err := tf.flow.BeginLogin(ctx, "@u", "!room")
	require.NoError(t, err)

	state := tf.lastState()
	callback := webappURL + "/authorize/" + state
	assert.Equal(t, callback, tf.remote.redirectURIs[0])
	assert.Contains(t, authorizeURL, "request_token=T1")
	assert.Contains(t, authorizeURL, url.QueryEscape(callback))

	pending, err := tf.store.GetUserByID(ctx, "@u")
	require.NoError(t, err)
	assert.Equal(t, oauth.StatePending, oauth.StateOf(pending))
	assert.Equal(t, "T1", pending.RequestToken)
	assert.Equal(t, state, pending.RequestState)
	assert.Equal(t, "!room", pending.RequestRoom)

	require.NoError(t, tf.flow.CompleteLogin(ctx, state))
	assert.Equal(t, []string{"T1"}, tf.remote.exchanged)

	user, err := tf.store.GetUserByID(ctx, "@u")
	require.NoError(t, err)
	assert.Equal(t, "A1", user.AccessToken)
	assert.Empty(t, user.RequestState)
	assert.Equal(t, oauth.StateAuthenticated, oauth.StateOf(user))

	require.Len(t, tf.notifier.notices, 1)
	assert.Equal(t, "!room", tf.notifier.notices[0].roomID)
	assert.Contains(t, tf.notifier.notices[0].content, "Successfully connected to Pocket")

	// consumed token no longer resolves
	assert.ErrorIs(t, tf.flow.CompleteLogin(ctx, state), oauth.ErrUnknownFlow)
}

func TestFlow_BeginLoginTwice(t *testing.T) {
	ctx := context.Background()
	tf := setupFlow(t)

	_, err := tf.flow.BeginLogin(ctx, "@u", "!room")
	require.NoError(t, err)
	first := tf.lastState()
	_, err = tf.flow.BeginLogin(ctx, "@u", "!room")
	require.NoError(t, err)
	second := tf.lastState()
	require.NotEqual(t, first, second)

	assert.ErrorIs(t, tf.flow.CompleteLogin(ctx, first), oauth.ErrUnknownFlow)
	require.NoError(t, tf.flow.CompleteLogin(ctx, second))
	assert.Equal(t, []string{"T2"}, tf.remote.exchanged)

	user, err := tf.store.GetUserByID(ctx, "@u")
	require.NoError(t, err)
	assert.Equal(t, "A1", user.AccessToken)
	assert.ErrorIs(t, tf.flow.CompleteLogin(ctx, first), oauth.ErrUnknownFlow)
}

func TestFlow_CompleteLogin_UnknownFlow(t *testing.T) {
	tf := setupFlow(t)

	for _, state := range []string{"never-issued", ""} {
		assert.ErrorIs(t, tf.flow.CompleteLogin(context.Background(), state), oauth.ErrUnknownFlow)
	}
	assert.Empty(t, tf.remote.exchanged)
	assert.Empty(t, tf.notifier.notices)
}

func TestFlow_BeginLogin_AlreadyAuthenticated(t *testing.T) {
	ctx := context.Background()
	tf := setupFlow(t)

	_, err := tf.flow.BeginLogin(ctx, "@u", "!room")
	require.NoError(t, err)
	require.NoError(t, tf.flow.CompleteLogin(ctx, tf.lastState()))
	before, err := tf.store.GetUserByID(ctx, "@u")
	require.NoError(t, err)

	_, err = tf.flow.BeginLogin(ctx, "@u", "!other-room")
	assert.ErrorIs(t, err, oauth.ErrAlreadyAuthenticated)
	assert.Equal(t, 1, tf.remote.issued)

	after, err := tf.store.GetUserByID(ctx, "@u")
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestFlow_BeginLogin_RemoteError(t *testing.T) {
	ctx := context.Background()
	tf := setupFlow(t)
	tf.remote.obtainErr = &pocket.AuthError{Code: 403}

	_, err := tf.flow.BeginLogin(ctx, "@u", "!room")
	var authErr *pocket.AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, 403, authErr.Code)

	user, err := tf.store.GetUserByID(ctx, "@u")
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestFlow_BeginLogin_StorageError(t *testing.T) {
	ctx := context.Background()
	tf := setupFlow(t)
	tf.store.failUpsert = true

	authorizeURL, err := tf.flow.BeginLogin(ctx, "@u", "!room")
	var storageErr *store.StorageError
	require.ErrorAs(t, err, &storageErr)
	assert.Equal(t, "UpsertPending", storageErr.Op)
	assert.Empty(t, authorizeURL)
	assert.Len(t, tf.remote.states, 1, "request token was obtained before the write")

	user, err := tf.store.GetUserByID(ctx, "@u")
	require.NoError(t, err)
	assert.Nil(t, user)
	assert.Equal(t, oauth.StateUnauthenticated, oauth.StateOf(user))
}

func TestFlow_CompleteLogin_RemoteError(t *testing.T) {
	ctx := context.Background()
	tf := setupFlow(t)

	_, err := tf.flow.BeginLogin(ctx, "@u", "!room")
	require.NoError(t, err)
	state := tf.lastState()
	tf.remote.authorizeErr = &pocket.AuthError{Code: 403}

	err = tf.flow.CompleteLogin(ctx, state)
	var authErr *pocket.AuthError
	require.ErrorAs(t, err, &authErr)

	require.Len(t, tf.notifier.notices, 1)
	assert.Equal(t, "Failed to connect to Pocket, response code: 403", tf.notifier.notices[0].content)

	user, err := tf.store.GetUserByID(ctx, "@u")
	require.NoError(t, err)
	assert.Equal(t, oauth.StatePending, oauth.StateOf(user))
	assert.Equal(t, state, user.RequestState)
}

func TestFlow_CompleteLogin_StorageError(t *testing.T) {
	ctx := context.Background()
	tf := setupFlow(t)

	_, err := tf.flow.BeginLogin(ctx, "@u", "!room")
	require.NoError(t, err)
	state := tf.lastState()

	tf.store.fail = true
	err = tf.flow.CompleteLogin(ctx, state)
	var storageErr *store.StorageError
	require.ErrorAs(t, err, &storageErr)
	require.Len(t, tf.notifier.notices, 1)
	assert.True(t, strings.Contains(tf.notifier.notices[0].content, "database error"))

	// pending fields are left for a retried callback
	user, err := tf.store.GetUserByID(ctx, "@u")
	require.NoError(t, err)
	assert.Equal(t, state, user.RequestState)

	tf.store.fail = false
	require.NoError(t, tf.flow.CompleteLogin(ctx, state))
}

func TestFlow_Logout(t *testing.T) {
	ctx := context.Background()
	tf := setupFlow(t)

	assert.ErrorIs(t, tf.flow.Logout(ctx, "@u"), oauth.ErrNotAuthenticated)

	_, err := tf.flow.BeginLogin(ctx, "@u", "!room")
	require.NoError(t, err)
	assert.ErrorIs(t, tf.flow.Logout(ctx, "@u"), oauth.ErrNotAuthenticated)

	require.NoError(t, tf.flow.CompleteLogin(ctx, tf.lastState()))
	require.NoError(t, tf.flow.Logout(ctx, "@u"))

	user, state, err := tf.flow.User(ctx, "@u")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Empty(t, user.AccessToken)
	assert.Equal(t, oauth.StateUnauthenticated, state)

	// logged out users can log in again
	_, err = tf.flow.BeginLogin(ctx, "@u", "!room")
	require.NoError(t, err)
}

func TestStateOf(t *testing.T) {
	tests := []struct {
		name string
		user *model.User
		want oauth.State
	}{
		{name: "never seen", user: nil, want: oauth.StateUnauthenticated},
		{name: "logged out", user: &model.User{UserID: "@u"}, want: oauth.StateUnauthenticated},
		{name: "pending", user: &model.User{UserID: "@u", RequestState: "s"}, want: oauth.StatePending},
		{name: "authenticated", user: &model.User{UserID: "@u", AccessToken: "a"}, want: oauth.StateAuthenticated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, oauth.StateOf(tt.user))
		})
	}
}
