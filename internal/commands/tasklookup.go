package commands

import (
	"errors"
	"fmt"

	"tasktrackr/internal/service"
)

// errTaskNotFound wraps lookup failures so callers can tell them apart from
// backend errors.
var errTaskNotFound = errors.New("task not found")

// findTask resolves ref against the list as last rendered. Row numbers
// index that list; ids must match exactly.
func findTask(tasks []service.Task, ref TaskRef) (service.Task, error) {
	if ref.ID == "" {
		if ref.Num < 1 || ref.Num > len(tasks) {
			return service.Task{}, fmt.Errorf("%w: task number out of range: %d", errTaskNotFound, ref.Num)
		}
		return tasks[ref.Num-1], nil
	}

	for _, t := range tasks {
		if t.ID == ref.ID {
			return t, nil
		}
	}
	return service.Task{}, fmt.Errorf("%w: %s", errTaskNotFound, ref.ID)
}

// findTasks resolves every ref before anything is changed, so row numbers
// keep pointing at the rows the user saw.
func findTasks(tasks []service.Task, refs []TaskRef) ([]service.Task, error) {
	found := make([]service.Task, 0, len(refs))
	seen := make(map[string]bool)
	for _, ref := range refs {
		t, err := findTask(tasks, ref)
		if err != nil {
			return nil, err
		}
		if seen[t.ID] {
			continue
		}
		seen[t.ID] = true
		found = append(found, t)
	}
	return found, nil
}
