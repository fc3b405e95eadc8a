// Package output provides formatters for CLI output.
package output

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
	"time"

	"tasktrackr/internal/service"
	"tasktrackr/internal/stats"
)

const (
	// FrameSeparator separates consecutive renders in watch mode.
	FrameSeparator = "------------"

	// Placeholder stands in for missing values.
	Placeholder = "—"

	dateLayout = "2006-01-02"
)

// StatusLabel returns the display label of a status.
func StatusLabel(s service.Status) string {
	switch s {
	case service.StatusTodo:
		return "To do"
	case service.StatusInProgress:
		return "In progress"
	case service.StatusDone:
		return "Done"
	default:
		return "Unknown"
	}
}

// CategoryLabel returns the display label of a category.
func CategoryLabel(c service.Category) string {
	switch c {
	case service.CategoryStudy:
		return "Study"
	case service.CategoryWork:
		return "Work"
	case service.CategoryPractice:
		return "Practice"
	case service.CategoryPersonal:
		return "Personal"
	default:
		return "None"
	}
}

// FormatDate renders a due date as YYYY-MM-DD, or the placeholder when empty.
// Values that are not dates are shown as-is.
func FormatDate(s string) string {
	if s == "" {
		return Placeholder
	}
	if len(s) >= len(dateLayout) {
		if d, err := time.Parse(dateLayout, s[:len(dateLayout)]); err == nil {
			return d.Format(dateLayout)
		}
	}
	return s
}

// FormatTask formats a task row.
// Format: "{N:>4}  {STATUS:<11}  {CATEGORY:<8}  {DUE:<10}  {TITLE}\n"
func FormatTask(w io.Writer, num int, task service.Task) {
	fmt.Fprintf(w, "%4d  %-11s  %-8s  %-10s  %s\n",
		num,
		StatusLabel(task.Status),
		CategoryLabel(task.Category),
		FormatDate(task.DueDate),
		normalizeTitle(task.Title),
	)
}

// FormatTable formats every task, numbered from 1, or "no tasks found".
func FormatTable(w io.Writer, tasks []service.Task) {
	if len(tasks) == 0 {
		fmt.Fprintln(w, "no tasks found")
		return
	}
	for i, task := range tasks {
		FormatTask(w, i+1, task)
	}
}

// FormatStats formats the aggregate counters.
func FormatStats(w io.Writer, s stats.Stats) {
	fmt.Fprintf(w, "total:        %d\n", s.Total)
	fmt.Fprintf(w, "to do:        %d\n", s.ByStatus.Todo)
	fmt.Fprintf(w, "in progress:  %d\n", s.ByStatus.InProgress)
	fmt.Fprintf(w, "done:         %d\n", s.ByStatus.Done)
	fmt.Fprintf(w, "without due:  %d\n", s.WithoutDue)
	formatBucket(w, "study", s.Categories.Study)
	formatBucket(w, "project", s.Categories.Project)
}

func formatBucket(w io.Writer, name string, b stats.Bucket) {
	fmt.Fprintf(w, "%-13s %d (to do %d, in progress %d, done %d)\n",
		name+":", b.Total, b.Todo, b.InProgress, b.Done)
}

// Detail formats accepted by FormatDetail.
const (
	DetailText = "text"
	DetailJSON = "json"
	DetailXML  = "xml"
)

type compactTask struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Status      string     `json:"status,omitempty"`
	Category    string     `json:"category,omitempty"`
	DueDate     string     `json:"dueDate,omitempty"`
	CreatedAt   *time.Time `json:"createdAt,omitempty"`
	UpdatedAt   *time.Time `json:"updatedAt,omitempty"`
}

type xmlTask struct {
	XMLName  xml.Name `xml:"task"`
	ID       string   `xml:"id"`
	Title    string   `xml:"title"`
	Status   string   `xml:"status"`
	Category string   `xml:"category"`
	DueDate  string   `xml:"dueDate"`
}

// FormatDetail writes a single task in the given format.
func FormatDetail(w io.Writer, task service.Task, format string) error {
	switch format {
	case "", DetailText:
		fmt.Fprintf(w, "Title:       %s\n", normalizeTitle(task.Title))
		fmt.Fprintf(w, "Category:    %s\n", CategoryLabel(task.Category))
		fmt.Fprintf(w, "Status:      %s\n", StatusLabel(task.Status))
		fmt.Fprintf(w, "Due:         %s\n", FormatDate(task.DueDate))
		fmt.Fprintf(w, "Description: %s\n", orPlaceholder(task.Description))
		return nil

	case DetailJSON:
		c := compactTask{
			ID:          task.ID,
			Title:       task.Title,
			Description: task.Description,
			Status:      string(task.Status),
			Category:    string(task.Category),
			DueDate:     task.DueDate,
			CreatedAt:   timeOrNil(task.CreatedAt),
			UpdatedAt:   timeOrNil(task.UpdatedAt),
		}
		data, err := json.MarshalIndent(c, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(w, string(data))
		return nil

	case DetailXML:
		data, err := xml.Marshal(xmlTask{
			ID:       task.ID,
			Title:    task.Title,
			Status:   string(task.Status),
			Category: string(task.Category),
			DueDate:  task.DueDate,
		})
		if err != nil {
			return err
		}
		fmt.Fprintln(w, string(data))
		return nil
	}
	return fmt.Errorf("unknown format: %s", format)
}

// normalizeTitle normalizes a task title for display.
// - Empty or whitespace-only titles become "(untitled)"
// - Newlines are replaced with spaces
func normalizeTitle(title string) string {
	title = strings.ReplaceAll(title, "\r", " ")
	title = strings.ReplaceAll(title, "\n", " ")

	if strings.TrimSpace(title) == "" {
		return "(untitled)"
	}
	return title
}

func orPlaceholder(s string) string {
	if strings.TrimSpace(s) == "" {
		return Placeholder
	}
	return s
}

func timeOrNil(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
