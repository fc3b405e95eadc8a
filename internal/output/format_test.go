package output

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tasktrackr/internal/service"
	"tasktrackr/internal/session"
	"tasktrackr/internal/stats"
	"tasktrackr/internal/testutil"
)

func sampleTasks() []service.Task {
	return []service.Task{
		{ID: "a1", Title: "Read chapter 4", Status: service.StatusTodo, Category: service.CategoryStudy, DueDate: "2025-03-01T00:00:00.000Z"},
		{ID: "b2", Title: "Ship release", Status: service.StatusInProgress, Category: service.CategoryWork},
		{ID: "c3", Title: "", Status: service.StatusDone, Category: service.CategoryPractice, DueDate: "2025-02-10"},
		{ID: "d4", Title: "Line one\nline two", Status: "blocked"},
	}
}

func TestFormatTable(t *testing.T) {
	var buf bytes.Buffer
	FormatTable(&buf, sampleTasks())
	testutil.Golden(t, "table", buf.Bytes())
}

func TestFormatTable_Empty(t *testing.T) {
	var buf bytes.Buffer
	FormatTable(&buf, nil)
	assert.Equal(t, "no tasks found\n", buf.String())
}

func TestFormatStats(t *testing.T) {
	var buf bytes.Buffer
	FormatStats(&buf, stats.Compute(sampleTasks()))
	testutil.Golden(t, "stats", buf.Bytes())
}

func TestFormatDate(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", Placeholder},
		{"2025-03-01", "2025-03-01"},
		{"2025-03-01T10:00:00.000Z", "2025-03-01"},
		{"someday", "someday"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatDate(tt.in))
		})
	}
}

func TestLabels(t *testing.T) {
	assert.Equal(t, "To do", StatusLabel(service.StatusTodo))
	assert.Equal(t, "In progress", StatusLabel(service.StatusInProgress))
	assert.Equal(t, "Done", StatusLabel(service.StatusDone))
	assert.Equal(t, "Unknown", StatusLabel("blocked"))
	assert.Equal(t, "Personal", CategoryLabel(service.CategoryPersonal))
	assert.Equal(t, "None", CategoryLabel(""))
}

func TestFormatDetail_Text(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, FormatDetail(&buf, sampleTasks()[0], DetailText))
	testutil.Golden(t, "detail_text", buf.Bytes())
}

func TestFormatDetail_JSON(t *testing.T) {
	task := sampleTasks()[1]
	task.CreatedAt = time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

	var buf bytes.Buffer
	require.NoError(t, FormatDetail(&buf, task, DetailJSON))
	assert.JSONEq(t, `{
		"id": "b2",
		"title": "Ship release",
		"status": "in-progress",
		"category": "work",
		"createdAt": "2025-01-02T03:04:05Z"
	}`, buf.String())
}

func TestFormatDetail_XMLEscapes(t *testing.T) {
	task := service.Task{ID: "x", Title: "Fish & <chips>", Status: service.StatusTodo}

	var buf bytes.Buffer
	require.NoError(t, FormatDetail(&buf, task, DetailXML))
	assert.Equal(t,
		"<task><id>x</id><title>Fish &amp; &lt;chips&gt;</title><status>todo</status><category></category><dueDate></dueDate></task>\n",
		buf.String())
}

func TestFormatDetail_UnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	assert.EqualError(t, FormatDetail(&buf, service.Task{}, "yaml"), "unknown format: yaml")
}

func TestRenderer_FlushWritesLastFrame(t *testing.T) {
	var out, errOut bytes.Buffer
	r := NewRenderer(&out, &errOut, nil)

	r.Flush()
	assert.Empty(t, out.String())

	r.OnTasksLoaded(sampleTasks()[:1], stats.Compute(sampleTasks()[:1]))
	r.OnTasksLoaded(sampleTasks()[1:2], stats.Compute(sampleTasks()[1:2]))
	assert.Empty(t, out.String())

	r.Flush()
	assert.Contains(t, out.String(), "Ship release")
	assert.NotContains(t, out.String(), "Read chapter")
}

func TestRenderer_Layouts(t *testing.T) {
	tasks := sampleTasks()
	s := stats.Compute(tasks)

	tests := []struct {
		layout      Layout
		wantTable   bool
		wantStats   bool
		wantNothing bool
	}{
		{LayoutNone, false, false, true},
		{LayoutTable, true, false, false},
		{LayoutStats, false, true, false},
		{LayoutFull, true, true, false},
	}
	for _, tt := range tests {
		var out bytes.Buffer
		r := NewRenderer(&out, &out, nil)
		r.SetLayout(tt.layout)
		r.OnTasksLoaded(tasks, s)
		r.Flush()

		got := out.String()
		if tt.wantNothing {
			assert.Empty(t, got)
			continue
		}
		assert.Equal(t, tt.wantTable, strings.Contains(got, "Ship release"), "layout %d table", tt.layout)
		assert.Equal(t, tt.wantStats, strings.Contains(got, "without due:"), "layout %d stats", tt.layout)
	}
}

func TestRenderer_LiveSeparatesFrames(t *testing.T) {
	var out, errOut bytes.Buffer
	r := NewRenderer(&out, &errOut, nil)
	r.SetLive(true)

	r.OnTasksLoaded(nil, stats.Stats{})
	r.OnTasksLoaded(sampleTasks()[:1], stats.Compute(sampleTasks()[:1]))
	r.OnError("reload", assert.AnError)

	assert.Equal(t, 1, strings.Count(out.String(), FrameSeparator))
	assert.True(t, strings.HasPrefix(out.String(), "no tasks found\n"+FrameSeparator+"\n"))
	assert.Contains(t, errOut.String(), "error: reload: ")
}

func TestRenderer_TracksSession(t *testing.T) {
	r := NewRenderer(&bytes.Buffer{}, &bytes.Buffer{}, nil)
	r.OnSessionChanged(session.Snapshot{State: session.Authenticated, User: &service.User{Name: "Alice"}})
	assert.Equal(t, "Alice", r.Session().User.Name)
}

func TestRenderer_QuietEmptyList(t *testing.T) {
	var out bytes.Buffer
	r := NewRenderer(&out, &out, nil)
	r.SetQuiet(true)
	r.OnTasksLoaded(nil, stats.Stats{})
	r.Flush()
	assert.Empty(t, out.String())
}
