// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"tasktrackr/internal/api"
	"tasktrackr/internal/service"
	"tasktrackr/internal/session"
)

// ErrNotFound is returned when a task is not found.
var ErrNotFound = &api.Error{Status: 404, Message: "task not found"}

// FakeService is an in-memory implementation of service.Service and
// session.Authenticator for testing.
type FakeService struct {
	mu     sync.RWMutex
	tasks  []service.Task
	users  map[string]fakeAccount // email -> account
	nextID int

	// Call counters
	ListCalls int

	// Error injection for testing
	ListErr     error
	CreateErr   error
	UpdateErr   error
	DeleteErr   error
	LoginErr    error
	RegisterErr error
	MeErr       error
}

type fakeAccount struct {
	user     service.User
	password string
}

// NewFakeService creates an empty FakeService.
func NewFakeService() *FakeService {
	return &FakeService{users: make(map[string]fakeAccount)}
}

// AddUser adds an account that can log in.
func (f *FakeService) AddUser(name, email, password string) service.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	u := service.User{ID: "u-" + strings.ToLower(name), Name: name, Email: email}
	f.users[email] = fakeAccount{user: u, password: password}
	return u
}

// AddTask appends a task with the given id and title.
func (f *FakeService) AddTask(id, title string, status service.Status) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tasks = append(f.tasks, service.Task{ID: id, Title: title, Status: status})
}

// Put appends a fully specified task.
func (f *FakeService) Put(t service.Task) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tasks = append(f.tasks, t)
}

// Tasks returns a copy of the stored tasks.
func (f *FakeService) Tasks() []service.Task {
	f.mu.RLock()
	defer f.mu.RUnlock()
	result := make([]service.Task, len(f.tasks))
	copy(result, f.tasks)
	return result
}

// Register implements session.Authenticator.
func (f *FakeService) Register(ctx context.Context, r session.Registration) (session.AuthResult, error) {
	if f.RegisterErr != nil {
		return session.AuthResult{}, f.RegisterErr
	}
	if _, exists := f.users[r.Email]; exists {
		return session.AuthResult{}, &api.Error{Status: 409, Message: "email already registered"}
	}
	u := f.AddUser(r.Name, r.Email, r.Password)
	return session.AuthResult{Token: "token-" + u.ID, User: u}, nil
}

// Login implements session.Authenticator.
func (f *FakeService) Login(ctx context.Context, c session.Credentials) (session.AuthResult, error) {
	if f.LoginErr != nil {
		return session.AuthResult{}, f.LoginErr
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	acct, ok := f.users[c.Email]
	if !ok || acct.password != c.Password {
		return session.AuthResult{}, &api.Error{Status: 401, Message: "invalid credentials"}
	}
	return session.AuthResult{Token: "token-" + acct.user.ID, User: acct.user}, nil
}

// Me implements session.Authenticator. It returns the first account.
func (f *FakeService) Me(ctx context.Context) (service.User, error) {
	if f.MeErr != nil {
		return service.User{}, f.MeErr
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	for _, acct := range f.users {
		return acct.user, nil
	}
	return service.User{}, &api.Error{Status: 401, Message: "invalid token"}
}

// List implements service.Service.
func (f *FakeService) List(ctx context.Context) ([]service.Task, error) {
	f.mu.Lock()
	f.ListCalls++
	f.mu.Unlock()
	if f.ListErr != nil {
		return nil, f.ListErr
	}
	return f.Tasks(), nil
}

// Create implements service.Service.
func (f *FakeService) Create(ctx context.Context, in service.TaskInput) (service.Task, error) {
	if err := in.Validate(); err != nil {
		return service.Task{}, err
	}
	if f.CreateErr != nil {
		return service.Task{}, f.CreateErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	f.nextID++
	status := in.Status
	if status == "" {
		status = service.StatusTodo
	}
	t := service.Task{
		ID:          fmt.Sprintf("t%d", f.nextID),
		Title:       in.Title,
		Description: in.Description,
		Status:      status,
		Category:    in.Category,
		DueDate:     in.DueDate,
	}
	f.tasks = append(f.tasks, t)
	return t, nil
}

// Update implements service.Service.
func (f *FakeService) Update(ctx context.Context, id string, patch service.TaskPatch) error {
	if f.UpdateErr != nil {
		return f.UpdateErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	for i := range f.tasks {
		if f.tasks[i].ID != id {
			continue
		}
		t := &f.tasks[i]
		if patch.Title != nil {
			t.Title = *patch.Title
		}
		if patch.Description != nil {
			t.Description = *patch.Description
		}
		if patch.Status != nil {
			t.Status = *patch.Status
		}
		if patch.Category != nil {
			t.Category = *patch.Category
		}
		if patch.DueDate != nil {
			t.DueDate = *patch.DueDate
		}
		return nil
	}
	return ErrNotFound
}

// Delete implements service.Service.
func (f *FakeService) Delete(ctx context.Context, id string) error {
	if f.DeleteErr != nil {
		return f.DeleteErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	for i, t := range f.tasks {
		if t.ID == id {
			f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

// UpdateAndReload implements service.Service.
func (f *FakeService) UpdateAndReload(ctx context.Context, id string, patch service.TaskPatch) ([]service.Task, error) {
	if err := f.Update(ctx, id, patch); err != nil {
		return nil, err
	}
	return f.List(ctx)
}

// DeleteAndReload implements service.Service.
func (f *FakeService) DeleteAndReload(ctx context.Context, id string) ([]service.Task, error) {
	if err := f.Delete(ctx, id); err != nil {
		return nil, err
	}
	return f.List(ctx)
}

