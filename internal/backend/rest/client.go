// Package rest implements service.Service and session.Authenticator against
// the tasktrackr REST backend.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"tasktrackr/internal/api"
	"tasktrackr/internal/config"
	"tasktrackr/internal/service"
	"tasktrackr/internal/session"
)

// Backend talks to the auth and tasks endpoints through an api.Client.
type Backend struct {
	api      *api.Client
	authURL  string
	tasksURL string
}

// New creates a backend using the endpoint URLs of cfg.
func New(client *api.Client, cfg *config.Config) *Backend {
	return &Backend{
		api:      client,
		authURL:  cfg.AuthURL(),
		tasksURL: cfg.TasksURL(),
	}
}

// Register implements session.Authenticator.
func (b *Backend) Register(ctx context.Context, r session.Registration) (session.AuthResult, error) {
	return b.authenticate(ctx, "/register", r)
}

// Login implements session.Authenticator.
func (b *Backend) Login(ctx context.Context, c session.Credentials) (session.AuthResult, error) {
	return b.authenticate(ctx, "/login", c)
}

func (b *Backend) authenticate(ctx context.Context, path string, payload any) (session.AuthResult, error) {
	raw, err := b.api.Request(ctx, http.MethodPost, b.authURL+path, payload, api.WithoutAuth())
	if err != nil {
		return session.AuthResult{}, err
	}
	var res session.AuthResult
	if err := json.Unmarshal(raw, &res); err != nil {
		return session.AuthResult{}, fmt.Errorf("decode auth response: %w", err)
	}
	return res, nil
}

// Me implements session.Authenticator.
func (b *Backend) Me(ctx context.Context) (service.User, error) {
	raw, err := b.api.Request(ctx, http.MethodGet, b.authURL+"/me", nil)
	if err != nil {
		return service.User{}, err
	}
	var body struct {
		User *service.User `json:"user"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return service.User{}, fmt.Errorf("decode profile: %w", err)
	}
	if body.User == nil {
		return service.User{}, fmt.Errorf("profile response did not include a user")
	}
	return *body.User, nil
}

// List returns tasks in server order. A body that is not an array yields no tasks.
func (b *Backend) List(ctx context.Context) ([]service.Task, error) {
	raw, err := b.api.Request(ctx, http.MethodGet, b.tasksURL, nil)
	if err != nil {
		return nil, err
	}
	if !bytes.HasPrefix(raw, []byte("[")) {
		return []service.Task{}, nil
	}
	var tasks []service.Task
	if err := json.Unmarshal(raw, &tasks); err != nil {
		return nil, fmt.Errorf("decode tasks: %w", err)
	}
	return tasks, nil
}

// Create validates in before sending it.
func (b *Backend) Create(ctx context.Context, in service.TaskInput) (service.Task, error) {
	if err := in.Validate(); err != nil {
		return service.Task{}, err
	}
	raw, err := b.api.Request(ctx, http.MethodPost, b.tasksURL, in)
	if err != nil {
		return service.Task{}, err
	}
	var task service.Task
	if err := json.Unmarshal(raw, &task); err != nil {
		return service.Task{}, fmt.Errorf("decode created task: %w", err)
	}
	return task, nil
}

// Update sends a partial update. The response body is not used.
func (b *Backend) Update(ctx context.Context, id string, patch service.TaskPatch) error {
	_, err := b.api.Request(ctx, http.MethodPut, b.taskURL(id), patch)
	return err
}

// Delete removes a task.
func (b *Backend) Delete(ctx context.Context, id string) error {
	_, err := b.api.Request(ctx, http.MethodDelete, b.taskURL(id), nil)
	return err
}

// UpdateAndReload updates a task, then fetches the full list.
func (b *Backend) UpdateAndReload(ctx context.Context, id string, patch service.TaskPatch) ([]service.Task, error) {
	if err := b.Update(ctx, id, patch); err != nil {
		return nil, err
	}
	return b.List(ctx)
}

// DeleteAndReload deletes a task, then fetches the full list.
func (b *Backend) DeleteAndReload(ctx context.Context, id string) ([]service.Task, error) {
	if err := b.Delete(ctx, id); err != nil {
		return nil, err
	}
	return b.List(ctx)
}

func (b *Backend) taskURL(id string) string {
	return b.tasksURL + "/" + url.PathEscape(id)
}
