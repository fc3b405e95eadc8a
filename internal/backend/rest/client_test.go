package rest_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"tasktrackr/internal/api"
	"tasktrackr/internal/backend/rest"
	"tasktrackr/internal/service"
	"tasktrackr/internal/session"
	"tasktrackr/internal/testutil"
)

type fixture struct {
	fake    *testutil.FakeBackend
	backend *rest.Backend
	sess    *session.Session
	store   *session.MemoryStore
	manager *session.Manager
}

// newFixture starts a stub backend. seed may add accounts and returns the
// token to place in the store before the session is opened.
func newFixture(t *testing.T, seed func(*testutil.FakeBackend) string) *fixture {
	t.Helper()
	fake := testutil.NewFakeBackend(t)

	var stored *oauth2.Token
	if seed != nil {
		if token := seed(fake); token != "" {
			stored = &oauth2.Token{AccessToken: token, TokenType: "Bearer"}
		}
	}
	store := session.NewMemoryStore(stored)
	sess := session.Open(store, nil)
	client := api.New(sess, api.WithUnauthorizedHandler(sess.Invalidate))
	backend := rest.New(client, fake.Config(t.TempDir()))

	return &fixture{
		fake:    fake,
		backend: backend,
		sess:    sess,
		store:   store,
		manager: session.NewManager(sess, backend, nil),
	}
}

// loggedIn returns a fixture whose session was restored for a seeded user.
func loggedIn(t *testing.T) *fixture {
	t.Helper()
	f := newFixture(t, func(b *testutil.FakeBackend) string {
		return b.AddUser("Alice", "alice@example.com", "secret")
	})
	require.True(t, f.manager.Restore(context.Background()))
	return f
}

func TestList_NoTokenMakesNoCall(t *testing.T) {
	f := newFixture(t, nil)

	_, err := f.backend.List(context.Background())
	assert.ErrorIs(t, err, api.ErrUnauthenticated)
	assert.Equal(t, 0, f.fake.Calls())
}

func TestLoginThenList(t *testing.T) {
	f := newFixture(t, nil)
	f.fake.AddUser("Alice", "alice@example.com", "secret")
	f.fake.AddTask("alice@example.com", service.Task{Title: "First", Status: service.StatusTodo})
	f.fake.AddTask("alice@example.com", service.Task{Title: "Second", Status: service.StatusDone})

	require.NoError(t, f.manager.Login(context.Background(), session.Credentials{Email: " alice@example.com ", Password: "secret"}))
	assert.Equal(t, session.Authenticated, f.sess.Snapshot().State)
	assert.Equal(t, "Alice", f.sess.User().Name)

	tasks, err := f.backend.List(context.Background())
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, "First", tasks[0].Title)
	assert.Equal(t, "Second", tasks[1].Title)
	assert.NotEmpty(t, tasks[0].ID)
}

func TestLogin_WrongPassword(t *testing.T) {
	f := newFixture(t, nil)
	f.fake.AddUser("Alice", "alice@example.com", "secret")

	err := f.manager.Login(context.Background(), session.Credentials{Email: "alice@example.com", Password: "nope"})
	require.Error(t, err)
	assert.Equal(t, "invalid credentials", err.Error())
	assert.Equal(t, session.Anonymous, f.sess.Snapshot().State)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	f := newFixture(t, nil)

	reg := session.Registration{Name: "Bob", Email: "bob@example.com", Password: "pw"}
	require.NoError(t, f.manager.Register(context.Background(), reg))
	f.manager.Logout()

	err := f.manager.Register(context.Background(), reg)
	require.Error(t, err)
	assert.Equal(t, "email already registered", err.Error())
	assert.Equal(t, http.StatusConflict, api.StatusCode(err))
}

func TestCreate_TitleValidation(t *testing.T) {
	f := loggedIn(t)
	before := f.fake.Calls()

	_, err := f.backend.Create(context.Background(), service.TaskInput{Title: "ab"})
	assert.ErrorIs(t, err, service.ErrTitleTooShort)
	assert.Equal(t, before, f.fake.Calls())

	task, err := f.backend.Create(context.Background(), service.TaskInput{Title: "abc"})
	require.NoError(t, err)
	assert.Equal(t, "abc", task.Title)
	assert.Equal(t, before+1, f.fake.Calls())
}

func TestCreate_DueDateOmittedWhenEmpty(t *testing.T) {
	f := loggedIn(t)

	_, err := f.backend.Create(context.Background(), service.TaskInput{Title: "Buy milk"})
	require.NoError(t, err)
	assert.NotContains(t, f.fake.LastBody(), "dueDate")

	_, err = f.backend.Create(context.Background(), service.TaskInput{Title: "X with date", DueDate: "2025-01-01"})
	require.NoError(t, err)
	assert.Equal(t, "2025-01-01", f.fake.LastBody()["dueDate"])
}

func TestUpdateThenList(t *testing.T) {
	f := loggedIn(t)
	id := f.fake.AddTask("alice@example.com", service.Task{Title: "Write report", Status: service.StatusTodo})

	require.NoError(t, f.backend.Update(context.Background(), id, service.StatusPatch(service.StatusDone)))
	assert.Equal(t, map[string]any{"status": "done"}, f.fake.LastBody())

	tasks, err := f.backend.List(context.Background())
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, service.StatusDone, tasks[0].Status)
}

func TestUpdateAndReload(t *testing.T) {
	f := loggedIn(t)
	id := f.fake.AddTask("alice@example.com", service.Task{Title: "Write report"})

	tasks, err := f.backend.UpdateAndReload(context.Background(), id, service.StatusPatch(service.StatusInProgress))
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, service.StatusInProgress, tasks[0].Status)
}

func TestDeleteAndReload(t *testing.T) {
	f := loggedIn(t)
	keep := f.fake.AddTask("alice@example.com", service.Task{Title: "Keep me"})
	drop := f.fake.AddTask("alice@example.com", service.Task{Title: "Drop me"})

	tasks, err := f.backend.DeleteAndReload(context.Background(), drop)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, keep, tasks[0].ID)
}

func TestDelete_UnknownTask(t *testing.T) {
	f := loggedIn(t)

	err := f.backend.Delete(context.Background(), "missing")
	assert.ErrorIs(t, err, api.ErrNotFound)
	assert.Equal(t, session.Authenticated, f.sess.Snapshot().State)
}

func TestUnauthorizedForcesLogout(t *testing.T) {
	f := loggedIn(t)
	f.fake.RevokeTokens()

	_, err := f.backend.List(context.Background())
	assert.ErrorIs(t, err, api.ErrUnauthorized)
	assert.Equal(t, session.Anonymous, f.sess.Snapshot().State)

	stored, _ := f.store.Load()
	assert.Nil(t, stored)

	// The next call fails locally.
	calls := f.fake.Calls()
	_, err = f.backend.List(context.Background())
	assert.ErrorIs(t, err, api.ErrUnauthenticated)
	assert.Equal(t, calls, f.fake.Calls())
}

func TestRestore_RejectedTokenIsRemoved(t *testing.T) {
	f := newFixture(t, func(*testutil.FakeBackend) string { return "not-a-jwt" })

	assert.False(t, f.manager.Restore(context.Background()))
	assert.Equal(t, session.Anonymous, f.sess.Snapshot().State)
	stored, _ := f.store.Load()
	assert.Nil(t, stored)
}

func TestRestore_SlowBackendKeepsToken(t *testing.T) {
	f := newFixture(t, func(b *testutil.FakeBackend) string {
		return b.AddUser("Alice", "alice@example.com", "secret")
	})
	f.fake.SetDelay(300 * time.Millisecond)

	assert.True(t, f.manager.Restore(context.Background()))
	assert.Equal(t, session.Authenticated, f.sess.Snapshot().State)
	stored, _ := f.store.Load()
	require.NotNil(t, stored)
	assert.NotEmpty(t, stored.AccessToken)
}

func TestList_ServerErrorPropagates(t *testing.T) {
	f := loggedIn(t)
	f.fake.FailNextTaskRequests(1)

	_, err := f.backend.List(context.Background())
	require.Error(t, err)
	assert.Equal(t, "database unavailable", err.Error())
	assert.Equal(t, http.StatusInternalServerError, api.StatusCode(err))
	assert.Equal(t, session.Authenticated, f.sess.Snapshot().State)
}
