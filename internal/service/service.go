// Package service defines the backend-agnostic contract for task operations.
package service

import "context"

// Service defines the task repository.
// All task calls go through this interface; commands never talk HTTP directly.
// Every operation requires an authenticated session.
type Service interface {
	// List returns the user's tasks in server order (no client-side sorting).
	List(ctx context.Context) ([]Task, error)

	// Create validates and creates a task, returning the stored copy.
	Create(ctx context.Context, in TaskInput) (Task, error)

	// Update applies a partial update to a task.
	Update(ctx context.Context, id string, patch TaskPatch) error

	// Delete removes a task.
	Delete(ctx context.Context, id string) error

	// UpdateAndReload updates a task and then fetches the full list.
	UpdateAndReload(ctx context.Context, id string, patch TaskPatch) ([]Task, error)

	// DeleteAndReload deletes a task and then fetches the full list.
	DeleteAndReload(ctx context.Context, id string) ([]Task, error)
}
