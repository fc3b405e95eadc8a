package app_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"tasktrackr/internal/app"
	"tasktrackr/internal/service"
	"tasktrackr/internal/session"
	"tasktrackr/internal/stats"
	"tasktrackr/internal/testutil"
)

type recordingView struct {
	sessions []session.Snapshot
	loads    [][]service.Task
	stats    []stats.Stats
	errors   map[string]error
}

func newRecordingView() *recordingView {
	return &recordingView{errors: make(map[string]error)}
}

func (v *recordingView) OnSessionChanged(snap session.Snapshot) {
	v.sessions = append(v.sessions, snap)
}

func (v *recordingView) OnTasksLoaded(tasks []service.Task, s stats.Stats) {
	v.loads = append(v.loads, tasks)
	v.stats = append(v.stats, s)
}

func (v *recordingView) OnError(context string, err error) {
	v.errors[context] = err
}

func (v *recordingView) lastLoad() []service.Task {
	if len(v.loads) == 0 {
		return nil
	}
	return v.loads[len(v.loads)-1]
}

func newApp(t *testing.T, svc *testutil.FakeService, token *oauth2.Token) (*app.App, *recordingView, *session.MemoryStore) {
	t.Helper()
	store := session.NewMemoryStore(token)
	sess := session.Open(store, nil)
	view := newRecordingView()
	a := app.New(session.NewManager(sess, svc, nil), svc, view, nil)
	return a, view, store
}

func start(t *testing.T, a *app.App) {
	t.Helper()
	ok, err := a.Start(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
}

func TestStart_ReloadErrorReported(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddUser("Alice", "alice@example.com", "pw")
	svc.ListErr = errors.New("database unavailable")
	a, view, _ := newApp(t, svc, &oauth2.Token{AccessToken: "saved"})

	ok, err := a.Start(context.Background())
	assert.True(t, ok)
	assert.EqualError(t, err, "database unavailable")
	assert.Equal(t, err, view.errors[app.IntentReload])
	assert.Equal(t, session.Authenticated, a.Session().State)
}

func TestSubmitLogin_ReloadsOnce(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddUser("Alice", "alice@example.com", "pw")
	svc.AddTask("t1", "Read chapter", service.StatusTodo)
	a, view, store := newApp(t, svc, nil)

	require.NoError(t, a.SubmitLogin(context.Background(), session.Credentials{Email: "alice@example.com", Password: "pw"}))

	assert.Equal(t, 1, svc.ListCalls)
	assert.Equal(t, session.Authenticated, a.Session().State)
	assert.Equal(t, "Alice", a.Session().User.Name)
	require.NotEmpty(t, view.sessions)
	assert.Equal(t, session.Authenticated, view.sessions[len(view.sessions)-1].State)
	assert.Len(t, view.lastLoad(), 1)

	stored, _ := store.Load()
	require.NotNil(t, stored)
	assert.Equal(t, "token-u-alice", stored.AccessToken)
}

func TestSubmitLogin_FailureReportsError(t *testing.T) {
	svc := testutil.NewFakeService()
	a, view, _ := newApp(t, svc, nil)

	err := a.SubmitLogin(context.Background(), session.Credentials{Email: "nobody@example.com", Password: "x"})
	require.Error(t, err)
	assert.Equal(t, err, view.errors[app.IntentLogin])
	assert.Equal(t, 0, svc.ListCalls)
	assert.Equal(t, session.Anonymous, a.Session().State)
}

func TestSubmitRegister(t *testing.T) {
	svc := testutil.NewFakeService()
	a, _, _ := newApp(t, svc, nil)

	require.NoError(t, a.SubmitRegister(context.Background(), session.Registration{Name: "Bob", Email: "bob@example.com", Password: "pw"}))
	assert.Equal(t, session.Authenticated, a.Session().State)
	assert.Equal(t, 1, svc.ListCalls)
}

func TestStart_RestoresAndReloads(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddUser("Alice", "alice@example.com", "pw")
	svc.AddTask("t1", "Read chapter", service.StatusDone)
	a, view, _ := newApp(t, svc, &oauth2.Token{AccessToken: "saved"})

	ok, err := a.Start(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, svc.ListCalls)
	assert.Len(t, a.Current(), 1)
	assert.Equal(t, 1, view.stats[len(view.stats)-1].ByStatus.Done)
}

func TestStart_FailureIsSilent(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.MeErr = errors.New("expired")
	a, view, store := newApp(t, svc, &oauth2.Token{AccessToken: "saved"})

	ok, err := a.Start(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, view.errors)
	assert.Equal(t, 0, svc.ListCalls)
	stored, _ := store.Load()
	assert.Nil(t, stored)
}

func TestSubmitNewTask(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddUser("Alice", "alice@example.com", "pw")
	a, view, _ := newApp(t, svc, &oauth2.Token{AccessToken: "saved"})
	start(t, a)

	task, err := a.SubmitNewTask(context.Background(), service.TaskInput{Title: "Buy milk"})
	require.NoError(t, err)
	assert.Equal(t, "Buy milk", task.Title)
	assert.Len(t, view.lastLoad(), 1)

	_, err = a.SubmitNewTask(context.Background(), service.TaskInput{Title: "ab"})
	assert.ErrorIs(t, err, service.ErrTitleTooShort)
	assert.ErrorIs(t, view.errors[app.IntentCreate], service.ErrTitleTooShort)
}

func TestMarkDone_RendersReloadedList(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddUser("Alice", "alice@example.com", "pw")
	svc.AddTask("t1", "Write report", service.StatusTodo)
	a, view, _ := newApp(t, svc, &oauth2.Token{AccessToken: "saved"})
	start(t, a)

	require.NoError(t, a.MarkDone(context.Background(), "t1"))
	require.Len(t, view.lastLoad(), 1)
	assert.Equal(t, service.StatusDone, view.lastLoad()[0].Status)
	assert.Equal(t, 2, svc.ListCalls)
}

func TestDeleteTask_Error(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddUser("Alice", "alice@example.com", "pw")
	a, view, _ := newApp(t, svc, &oauth2.Token{AccessToken: "saved"})
	start(t, a)

	err := a.DeleteTask(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, err, view.errors[app.IntentDelete])
}

func TestRequestReload_AnonymousResetsView(t *testing.T) {
	svc := testutil.NewFakeService()
	a, view, _ := newApp(t, svc, nil)

	require.NoError(t, a.RequestReload(context.Background()))
	assert.Equal(t, 0, svc.ListCalls)
	require.Len(t, view.loads, 1)
	assert.Empty(t, view.lastLoad())
	assert.Equal(t, stats.Stats{}, view.stats[0])
}

func TestLogout_ResetsView(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddUser("Alice", "alice@example.com", "pw")
	svc.AddTask("t1", "Write report", service.StatusTodo)
	a, view, _ := newApp(t, svc, &oauth2.Token{AccessToken: "saved"})
	start(t, a)

	a.Logout()
	assert.Equal(t, session.Anonymous, a.Session().State)
	assert.Empty(t, view.lastLoad())
}
