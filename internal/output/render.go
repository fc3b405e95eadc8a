package output

import (
	"fmt"
	"io"
	"log/slog"
	"sync"

	"tasktrackr/internal/service"
	"tasktrackr/internal/session"
	"tasktrackr/internal/stats"
)

// Layout selects what a frame shows.
type Layout int

const (
	// LayoutNone renders nothing.
	LayoutNone Layout = iota
	// LayoutTable renders the numbered task table.
	LayoutTable
	// LayoutStats renders the aggregate counters.
	LayoutStats
	// LayoutFull renders the table followed by the counters.
	LayoutFull
)

// Renderer is the terminal view. It keeps the most recent task frame and
// writes it on Flush. In live mode every frame is written as it arrives.
type Renderer struct {
	mu      sync.Mutex
	out     io.Writer
	errOut  io.Writer
	log     *slog.Logger
	layout  Layout
	live    bool
	quiet   bool
	written int

	snap   session.Snapshot
	tasks  []service.Task
	stats  stats.Stats
	loaded bool
}

// NewRenderer creates a Renderer writing frames to out and live errors to errOut.
func NewRenderer(out, errOut io.Writer, log *slog.Logger) *Renderer {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Renderer{out: out, errOut: errOut, log: log, layout: LayoutTable}
}

// SetLayout sets the layout used for subsequent frames.
func (r *Renderer) SetLayout(l Layout) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.layout = l
}

// SetQuiet suppresses the "no tasks found" line for empty lists.
func (r *Renderer) SetQuiet(quiet bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.quiet = quiet
}

// SetLive switches live mode on or off.
func (r *Renderer) SetLive(live bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.live = live
}

// OnSessionChanged records the latest session snapshot.
func (r *Renderer) OnSessionChanged(snap session.Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snap = snap
}

// OnTasksLoaded stores the frame, writing it immediately in live mode.
func (r *Renderer) OnTasksLoaded(tasks []service.Task, s stats.Stats) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tasks = tasks
	r.stats = s
	r.loaded = true
	if r.live {
		r.writeFrame()
	}
}

// OnError logs the failure. In live mode it is also written to errOut,
// since no command is waiting to report it.
func (r *Renderer) OnError(intent string, err error) {
	r.log.Debug("intent failed", "intent", intent, "err", err)
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.live {
		fmt.Fprintf(r.errOut, "error: %s: %v\n", intent, err)
	}
}

// Session returns the last snapshot seen.
func (r *Renderer) Session() session.Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snap
}

// Flush writes the last frame, if any.
func (r *Renderer) Flush() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.loaded {
		r.writeFrame()
	}
}

func (r *Renderer) writeFrame() {
	if r.layout == LayoutNone {
		return
	}
	if r.written > 0 {
		fmt.Fprintln(r.out, FrameSeparator)
	}
	r.written++

	switch r.layout {
	case LayoutTable:
		r.writeTable()
	case LayoutStats:
		FormatStats(r.out, r.stats)
	case LayoutFull:
		r.writeTable()
		fmt.Fprintln(r.out)
		FormatStats(r.out, r.stats)
	}
}

func (r *Renderer) writeTable() {
	if len(r.tasks) == 0 && r.quiet {
		return
	}
	FormatTable(r.out, r.tasks)
}
