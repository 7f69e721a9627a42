package store

import (
	"sync"
	"time"

	"gantry/internal/chart"
	"gantry/internal/swimlane"
	"gantry/internal/task"
)

// ChangeKind names one kind of chart edit.
type ChangeKind string

const (
	ChangeDates             ChangeKind = "dates"
	ChangeProgress          ChangeKind = "progress"
	ChangeSwimlanes         ChangeKind = "swimlanes"
	ChangeCreated           ChangeKind = "created"
	ChangeDependencyAdded   ChangeKind = "dependency-added"
	ChangeDependencyRemoved ChangeKind = "dependency-removed"
	ChangeSwimlaneResized   ChangeKind = "swimlane-resized"
	ChangeRowResized        ChangeKind = "row-resized"
)

// Change is one edit reported by the chart.
type Change struct {
	Kind ChangeKind `json:"kind"`
	// TaskID is the edited task, or the dependent task for dependency
	// changes.
	TaskID string `json:"taskId,omitempty"`
	// OtherID is the task depended on.
	OtherID string `json:"otherId,omitempty"`
	// Index and Size describe swimlane column and row resizes.
	Index int        `json:"index,omitempty"`
	Size  float64    `json:"size,omitempty"`
	Task  *task.Task `json:"task,omitempty"`
	At    time.Time  `json:"at"`
}

// Recorder collects chart edits until the host drains them into a store.
type Recorder struct {
	mu      sync.Mutex
	now     func() time.Time
	changes []Change
}

// NewRecorder returns an empty recorder. now defaults to time.Now.
func NewRecorder(now func() time.Time) *Recorder {
	if now == nil {
		now = time.Now
	}
	return &Recorder{now: now}
}

func (r *Recorder) record(c Change) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c.At = r.now()
	r.changes = append(r.changes, c)
}

func (r *Recorder) recordTask(kind ChangeKind, t task.Task) {
	t = t.Clone()
	r.record(Change{Kind: kind, TaskID: t.ID, Task: &t})
}

// Pending is the number of changes not yet drained.
func (r *Recorder) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.changes)
}

// Drain returns the recorded changes and forgets them.
func (r *Recorder) Drain() []Change {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.changes
	r.changes = nil
	return out
}

// Wrap returns callbacks that record every edit and then call next.
// Scroll and detail notifications pass straight through.
func (r *Recorder) Wrap(next chart.Callbacks) chart.Callbacks {
	out := next
	out.TaskDatesChanged = func(t task.Task) {
		r.recordTask(ChangeDates, t)
		call(next.TaskDatesChanged, t)
	}
	out.TaskProgressChanged = func(t task.Task) {
		r.recordTask(ChangeProgress, t)
		call(next.TaskProgressChanged, t)
	}
	out.TaskSwimlanesChanged = func(t task.Task) {
		r.recordTask(ChangeSwimlanes, t)
		call(next.TaskSwimlanesChanged, t)
	}
	out.TaskCreated = func(t task.Task) {
		r.recordTask(ChangeCreated, t)
		call(next.TaskCreated, t)
	}
	out.DependencyAdded = func(from, to task.Task) {
		r.record(Change{Kind: ChangeDependencyAdded, TaskID: from.ID, OtherID: to.ID})
		if next.DependencyAdded != nil {
			next.DependencyAdded(from, to)
		}
	}
	out.DependencyRemoved = func(from, to task.Task) {
		r.record(Change{Kind: ChangeDependencyRemoved, TaskID: from.ID, OtherID: to.ID})
		if next.DependencyRemoved != nil {
			next.DependencyRemoved(from, to)
		}
	}
	out.SwimlaneResized = func(index int, width float64) {
		r.record(Change{Kind: ChangeSwimlaneResized, Index: index, Size: width})
		if next.SwimlaneResized != nil {
			next.SwimlaneResized(index, width)
		}
	}
	out.RowResized = func(index int, height float64) {
		r.record(Change{Kind: ChangeRowResized, Index: index, Size: height})
		if next.RowResized != nil {
			next.RowResized(index, height)
		}
	}
	return out
}

func call(fn func(task.Task), t task.Task) {
	if fn != nil {
		fn(t)
	}
}

// ApplySwimlaneWidths copies recorded column widths into infos, growing the
// slice when a resized column has no descriptor yet.
func ApplySwimlaneWidths(infos []swimlane.Info, changes []Change) []swimlane.Info {
	out := append([]swimlane.Info(nil), infos...)
	for _, c := range changes {
		if c.Kind != ChangeSwimlaneResized || c.Index < 0 {
			continue
		}
		for len(out) <= c.Index {
			out = append(out, swimlane.Info{})
		}
		out[c.Index].Width = c.Size
	}
	return out
}
