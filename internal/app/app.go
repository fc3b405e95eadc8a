// Package app is the core controller. It receives user intents, drives the
// session manager and the task repository, and notifies the view of results.
package app

import (
	"context"
	"log/slog"
	"sync"

	"tasktrackr/internal/service"
	"tasktrackr/internal/session"
	"tasktrackr/internal/stats"
)

// View is the presentation side of the client.
type View interface {
	// OnSessionChanged is called after every session transition.
	OnSessionChanged(snap session.Snapshot)

	// OnTasksLoaded is called after every reload with the fresh list and its stats.
	OnTasksLoaded(tasks []service.Task, s stats.Stats)

	// OnError reports a failed intent. context names the intent.
	OnError(context string, err error)
}

// Intent names passed to View.OnError.
const (
	IntentLogin    = "login"
	IntentRegister = "register"
	IntentCreate   = "create"
	IntentUpdate   = "update"
	IntentDelete   = "delete"
	IntentReload   = "reload"
)

// App wires the session manager and the task repository to a view.
type App struct {
	auth  *session.Manager
	tasks service.Service
	view  View
	log   *slog.Logger

	mu      sync.Mutex
	current []service.Task
}

// New creates an App and subscribes view to session changes.
func New(auth *session.Manager, tasks service.Service, view View, log *slog.Logger) *App {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	a := &App{auth: auth, tasks: tasks, view: view, log: log}
	auth.Session().Subscribe(a.sessionChanged)
	return a
}

// Session returns the current session state.
func (a *App) Session() session.Snapshot {
	return a.auth.Session().Snapshot()
}

// HasStoredToken reports whether a token was restored from storage.
func (a *App) HasStoredToken() bool {
	return a.auth.Session().HasToken()
}

// Start restores a persisted session and loads the task list. It reports
// whether the session was restored; the error is that of the initial reload.
// Restore failures are not reported to the view.
func (a *App) Start(ctx context.Context) (bool, error) {
	if !a.auth.Restore(ctx) {
		return false, nil
	}
	if err := a.RequestReload(ctx); err != nil {
		a.log.Warn("initial reload failed", "err", err)
		return true, err
	}
	return true, nil
}

// SubmitLogin signs in and loads the task list once.
func (a *App) SubmitLogin(ctx context.Context, c session.Credentials) error {
	if err := a.auth.Login(ctx, c); err != nil {
		a.view.OnError(IntentLogin, err)
		return err
	}
	return a.RequestReload(ctx)
}

// SubmitRegister creates an account, signs in and loads the task list once.
func (a *App) SubmitRegister(ctx context.Context, r session.Registration) error {
	if err := a.auth.Register(ctx, r); err != nil {
		a.view.OnError(IntentRegister, err)
		return err
	}
	return a.RequestReload(ctx)
}

// Logout drops the session.
func (a *App) Logout() {
	a.auth.Logout()
}

// SubmitNewTask creates a task and reloads the list.
func (a *App) SubmitNewTask(ctx context.Context, in service.TaskInput) (service.Task, error) {
	task, err := a.tasks.Create(ctx, in)
	if err != nil {
		a.view.OnError(IntentCreate, err)
		return service.Task{}, err
	}
	return task, a.RequestReload(ctx)
}

// MarkDone sets a task's status to done and renders the reloaded list.
func (a *App) MarkDone(ctx context.Context, id string) error {
	return a.UpdateTask(ctx, id, service.StatusPatch(service.StatusDone))
}

// UpdateTask applies patch and renders the reloaded list.
func (a *App) UpdateTask(ctx context.Context, id string, patch service.TaskPatch) error {
	tasks, err := a.tasks.UpdateAndReload(ctx, id, patch)
	if err != nil {
		a.view.OnError(IntentUpdate, err)
		return err
	}
	a.render(tasks)
	return nil
}

// DeleteTask removes a task and renders the reloaded list.
func (a *App) DeleteTask(ctx context.Context, id string) error {
	tasks, err := a.tasks.DeleteAndReload(ctx, id)
	if err != nil {
		a.view.OnError(IntentDelete, err)
		return err
	}
	a.render(tasks)
	return nil
}

// RequestReload fetches the task list and renders it. Without an
// authenticated session the view is reset to an empty list instead.
func (a *App) RequestReload(ctx context.Context) error {
	if a.Session().State != session.Authenticated {
		a.render(nil)
		return nil
	}
	tasks, err := a.tasks.List(ctx)
	if err != nil {
		a.view.OnError(IntentReload, err)
		return err
	}
	a.render(tasks)
	return nil
}

// Current returns the most recently rendered task list.
func (a *App) Current() []service.Task {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.current
}

func (a *App) render(tasks []service.Task) {
	a.mu.Lock()
	a.current = tasks
	a.mu.Unlock()
	a.view.OnTasksLoaded(tasks, stats.Compute(tasks))
}

func (a *App) sessionChanged(snap session.Snapshot) {
	a.log.Debug("session changed", "state", snap.State)
	a.view.OnSessionChanged(snap)
	if snap.State == session.Anonymous {
		a.render(nil)
	}
}
