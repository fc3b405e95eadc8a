// Package stats derives display counters from a task list.
package stats

import (
	"encoding/json"

	"tasktrackr/internal/service"
)

// Counts holds per-status counters. Only the known statuses are counted.
type Counts struct {
	Todo       int `json:"todo"`
	InProgress int `json:"in-progress"`
	Done       int `json:"done"`
}

// Sum returns the number of tasks counted across the known statuses.
func (c Counts) Sum() int {
	return c.Todo + c.InProgress + c.Done
}

// Get returns the counter for s, or 0 for an unknown status.
func (c Counts) Get(s service.Status) int {
	switch s {
	case service.StatusTodo:
		return c.Todo
	case service.StatusInProgress:
		return c.InProgress
	case service.StatusDone:
		return c.Done
	}
	return 0
}

func (c *Counts) add(s service.Status) {
	switch s {
	case service.StatusTodo:
		c.Todo++
	case service.StatusInProgress:
		c.InProgress++
	case service.StatusDone:
		c.Done++
	}
}

// Bucket is an aggregation group used for display only.
type Bucket struct {
	Total int `json:"total"`
	Counts
}

// Categories splits tasks into study work and everything else.
type Categories struct {
	Study   Bucket `json:"study"`
	Project Bucket `json:"project"`
}

// Stats is recomputed from the current task list on every render.
type Stats struct {
	Total      int        `json:"total"`
	ByStatus   Counts     `json:"byStatus"`
	WithoutDue int        `json:"withoutDue"`
	Categories Categories `json:"categories"`
}

// Compute aggregates tasks. A missing status counts as todo and a missing
// category counts as study; neither default is written back to the tasks.
func Compute(tasks []service.Task) Stats {
	var s Stats
	s.Total = len(tasks)

	for _, t := range tasks {
		status := t.Status
		if status == "" {
			status = service.StatusTodo
		}
		category := t.Category
		if category == "" {
			category = service.CategoryStudy
		}

		s.ByStatus.add(status)

		if !t.HasDueDate() {
			s.WithoutDue++
		}

		bucket := &s.Categories.Project
		if category == service.CategoryStudy {
			bucket = &s.Categories.Study
		}
		bucket.Total++
		bucket.add(status)
	}

	return s
}

// FromJSON aggregates a raw task list. Anything other than a JSON array of
// tasks is treated as an empty list.
func FromJSON(raw []byte) Stats {
	var tasks []service.Task
	if err := json.Unmarshal(raw, &tasks); err != nil {
		return Compute(nil)
	}
	return Compute(tasks)
}
