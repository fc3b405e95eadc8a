package stats_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"tasktrackr/internal/service"
	"tasktrackr/internal/stats"
)

func TestCompute_Empty(t *testing.T) {
	assert.Equal(t, stats.Stats{}, stats.Compute(nil))
	assert.Equal(t, stats.Stats{}, stats.Compute([]service.Task{}))
}

func TestCompute_Mixed(t *testing.T) {
	tasks := []service.Task{
		{ID: "1", Title: "Read chapter", Status: service.StatusTodo, Category: service.CategoryStudy, DueDate: "2025-01-01"},
		{ID: "2", Title: "Write report", Status: service.StatusInProgress, Category: service.CategoryWork},
		{ID: "3", Title: "Gym", Status: service.StatusDone, Category: service.CategoryPersonal},
		{ID: "4", Title: "No status"},
		{ID: "5", Title: "Odd status", Status: "blocked", Category: service.CategoryPractice, DueDate: "2025-02-01"},
	}

	s := stats.Compute(tasks)

	assert.Equal(t, 5, s.Total)
	assert.Equal(t, stats.Counts{Todo: 2, InProgress: 1, Done: 1}, s.ByStatus)
	assert.Equal(t, 3, s.WithoutDue)

	// Missing category defaults to study, missing status to todo.
	assert.Equal(t, stats.Bucket{Total: 2, Counts: stats.Counts{Todo: 2}}, s.Categories.Study)
	assert.Equal(t, stats.Bucket{Total: 3, Counts: stats.Counts{InProgress: 1, Done: 1}}, s.Categories.Project)
}

func TestCompute_Invariants(t *testing.T) {
	lists := [][]service.Task{
		nil,
		{{Status: service.StatusDone}},
		{{Status: "archived"}, {Status: service.StatusTodo, Category: service.CategoryWork}},
		{{Category: service.CategoryStudy}, {Category: service.CategoryPractice}, {Status: "?"}},
	}

	for _, tasks := range lists {
		s := stats.Compute(tasks)
		assert.LessOrEqual(t, s.ByStatus.Sum(), s.Total)
		assert.Equal(t, s.Total, s.Categories.Study.Total+s.Categories.Project.Total)
	}
}

func TestCompute_AllKnownStatusesSumToTotal(t *testing.T) {
	tasks := []service.Task{
		{Status: service.StatusTodo},
		{Status: service.StatusInProgress},
		{Status: service.StatusDone},
		{},
	}
	s := stats.Compute(tasks)
	assert.Equal(t, s.Total, s.ByStatus.Sum())
}

func TestCompute_Deterministic(t *testing.T) {
	tasks := []service.Task{
		{Status: service.StatusDone, Category: service.CategoryWork},
		{Status: service.StatusTodo},
	}
	reversed := []service.Task{tasks[1], tasks[0]}
	assert.Equal(t, stats.Compute(tasks), stats.Compute(reversed))
}

func TestFromJSON_NonArray(t *testing.T) {
	assert.Equal(t, stats.Stats{}, stats.FromJSON([]byte(`{}`)))
	assert.Equal(t, stats.Stats{}, stats.FromJSON([]byte(`not json`)))

	s := stats.FromJSON([]byte(`[{"_id":"a","title":"abc","status":"done"}]`))
	assert.Equal(t, 1, s.Total)
	assert.Equal(t, 1, s.ByStatus.Done)
}

func TestCounts_Get(t *testing.T) {
	c := stats.Counts{Todo: 1, InProgress: 2, Done: 3}
	assert.Equal(t, 2, c.Get(service.StatusInProgress))
	assert.Equal(t, 0, c.Get("blocked"))
}
