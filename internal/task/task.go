// Package task holds the chart's task model: raw tasks as supplied by the
// host, the derived internal tasks with parsed dates and resolved
// dependency edges, and change detection between task lists.
package task

import (
	"fmt"
	"strings"
)

// SwimlaneKind selects how a swimlane cell is drawn.
type SwimlaneKind int

const (
	KindText SwimlaneKind = iota
	KindCheckbox
	KindAvatar
)

func (k SwimlaneKind) String() string {
	switch k {
	case KindCheckbox:
		return "checkbox"
	case KindAvatar:
		return "avatar"
	default:
		return "text"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k SwimlaneKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *SwimlaneKind) UnmarshalText(text []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(text))) {
	case "", "text":
		*k = KindText
	case "checkbox":
		*k = KindCheckbox
	case "avatar":
		*k = KindAvatar
	default:
		return fmt.Errorf("unknown swimlane type %q", string(text))
	}
	return nil
}

// Swimlane is one grouping value of a task, together with how its cell is
// displayed.
type Swimlane struct {
	Kind           SwimlaneKind `json:"type,omitempty" yaml:"type,omitempty"`
	Value          string       `json:"value,omitempty" yaml:"value,omitempty"`
	Title          string       `json:"title,omitempty" yaml:"title,omitempty"`
	Background     string       `json:"background,omitempty" yaml:"background,omitempty"`
	TextColor      string       `json:"textColor,omitempty" yaml:"textColor,omitempty"`
	TextBackground string       `json:"textBackground,omitempty" yaml:"textBackground,omitempty"`
	AvatarURL      string       `json:"avatarUrl,omitempty" yaml:"avatarUrl,omitempty"`
	Checked        bool         `json:"checked,omitempty" yaml:"checked,omitempty"`
}

// Key is the grouping key: the value when set, otherwise the title.
func (s Swimlane) Key() string {
	if s.Value != "" {
		return s.Value
	}
	return s.Title
}

// IsZero reports whether the descriptor carries nothing at all.
func (s Swimlane) IsZero() bool {
	return s == Swimlane{}
}

// Label is the text shown in the swimlane cell.
func (s Swimlane) Label() string {
	if s.Title != "" {
		return s.Title
	}
	return s.Value
}

// Milestone marks a sub-interval of a task ending at End.
type Milestone struct {
	End       string `json:"end" yaml:"end"`
	Color     string `json:"color,omitempty" yaml:"color,omitempty"`
	Draggable bool   `json:"draggable,omitempty" yaml:"draggable,omitempty"`
}

// Task is a task as the host supplies it. Dates are strings in the
// configured date format; dependency lists hold external task ids.
type Task struct {
	ID                  string         `json:"id" yaml:"id"`
	Name                string         `json:"name" yaml:"name"`
	Start               string         `json:"start" yaml:"start"`
	End                 string         `json:"end" yaml:"end"`
	Progress            float64        `json:"progress,omitempty" yaml:"progress,omitempty"`
	MinProgress         *float64       `json:"minProgress,omitempty" yaml:"minProgress,omitempty"`
	MaxProgress         *float64       `json:"maxProgress,omitempty" yaml:"maxProgress,omitempty"`
	Swimlanes           []Swimlane     `json:"swimlanes,omitempty" yaml:"swimlanes,omitempty"`
	Milestones          []Milestone    `json:"milestones,omitempty" yaml:"milestones,omitempty"`
	Dependencies        []string       `json:"dependencies,omitempty" yaml:"dependencies,omitempty"`
	AllowedDependencies []string       `json:"allowedDependencies,omitempty" yaml:"allowedDependencies,omitempty"`
	BarColor            string         `json:"barColor,omitempty" yaml:"barColor,omitempty"`
	ProgressColor       string         `json:"progressColor,omitempty" yaml:"progressColor,omitempty"`
	TextColor           string         `json:"textColor,omitempty" yaml:"textColor,omitempty"`
	Draggable           bool           `json:"draggable,omitempty" yaml:"draggable,omitempty"`
	StartDrag           bool           `json:"startDrag,omitempty" yaml:"startDrag,omitempty"`
	EndDrag             bool           `json:"endDrag,omitempty" yaml:"endDrag,omitempty"`
	ProgressDrag        bool           `json:"progressDrag,omitempty" yaml:"progressDrag,omitempty"`
	Editable            bool           `json:"editable,omitempty" yaml:"editable,omitempty"`
	Metadata            map[string]any `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// HasSwimlanes reports whether any swimlane descriptor is set.
func (t Task) HasSwimlanes() bool {
	for _, s := range t.Swimlanes {
		if !s.IsZero() {
			return true
		}
	}
	return false
}

// Clone returns a copy that shares no slices or pointers with t. Metadata
// is copied shallowly.
func (t Task) Clone() Task {
	out := t
	out.MinProgress = clonePtr(t.MinProgress)
	out.MaxProgress = clonePtr(t.MaxProgress)
	out.Swimlanes = append([]Swimlane(nil), t.Swimlanes...)
	out.Milestones = append([]Milestone(nil), t.Milestones...)
	out.Dependencies = append([]string(nil), t.Dependencies...)
	out.AllowedDependencies = append([]string(nil), t.AllowedDependencies...)
	if t.Metadata != nil {
		out.Metadata = make(map[string]any, len(t.Metadata))
		for k, v := range t.Metadata {
			out.Metadata[k] = v
		}
	}
	return out
}

func clonePtr(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
