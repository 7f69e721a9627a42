// Package swimlane groups tasks into nested rows by their ordered swimlane
// descriptors and flattens the grouping into render lines.
package swimlane

import (
	"github.com/google/uuid"

	"gantry/internal/task"
)

// MinLines is the number of lines a chart always shows, padding with empty
// lines when there is less data.
const MinLines = 5

// Info configures one swimlane depth.
type Info struct {
	Title      string  `mapstructure:"title" json:"title" yaml:"title"`
	Width      float64 `mapstructure:"width" json:"width,omitempty" yaml:"width,omitempty"`
	Background string  `mapstructure:"background" json:"background,omitempty" yaml:"background,omitempty"`
	Color      string  `mapstructure:"color" json:"color,omitempty" yaml:"color,omitempty"`
	// Static depths never merge tasks by key; every task gets its own cell.
	Static bool `mapstructure:"static" json:"static,omitempty" yaml:"static,omitempty"`
}

// IDGenerator returns a node id for a grouping key.
type IDGenerator func(key string) string

// DefaultIDGenerator appends a random uuid to the key.
func DefaultIDGenerator(key string) string {
	return key + "_" + uuid.NewString()
}

// Node is one grouping at one depth.
type Node struct {
	ID  string
	Key string
	// Swimlane holds the merged display properties of every task sharing
	// this node, first non-empty value wins.
	Swimlane task.Swimlane

	Children []*Node
	Tasks    []*task.GanttTask
}

func newNode(s task.Swimlane, newID IDGenerator) *Node {
	n := &Node{ID: newID(s.Key()), Key: s.Key(), Swimlane: s}
	n.Swimlane.Value = n.Key
	return n
}

func (n *Node) merge(s task.Swimlane) {
	if n.Swimlane.TextBackground == "" {
		n.Swimlane.TextBackground = s.TextBackground
	}
	if n.Swimlane.TextColor == "" {
		n.Swimlane.TextColor = s.TextColor
	}
	if n.Swimlane.AvatarURL == "" {
		n.Swimlane.AvatarURL = s.AvatarURL
	}
	if n.Swimlane.Background == "" {
		n.Swimlane.Background = s.Background
	}
	if n.Swimlane.Kind == task.KindText {
		n.Swimlane.Kind = s.Kind
	}
}

func (n *Node) child(key string) *Node {
	for _, c := range n.Children {
		if c.Key == key {
			return c
		}
	}
	return nil
}

// Tree is the grouping of a task list.
type Tree struct {
	Roots     []*Node
	Ungrouped []*task.GanttTask
	// MaxLevel is the deepest swimlane path over all grouped tasks.
	MaxLevel int
}

// Build groups tasks. A task without any non-zero swimlane descriptor is
// ungrouped. Otherwise each descriptor selects or creates a node one level
// deeper, and the task is attached to the node of its last descriptor.
func Build(tasks []*task.GanttTask, infos []Info, newID IDGenerator) Tree {
	if newID == nil {
		newID = DefaultIDGenerator
	}
	static := func(depth int) bool {
		return depth < len(infos) && infos[depth].Static
	}

	var tree Tree
	for _, t := range tasks {
		lanes := t.Raw.Swimlanes
		if !t.Raw.HasSwimlanes() {
			tree.Ungrouped = append(tree.Ungrouped, t)
			continue
		}

		var parent *Node
		if !static(0) {
			for _, root := range tree.Roots {
				if root.Key == lanes[0].Key() {
					parent = root
					break
				}
			}
		}
		if parent == nil {
			parent = newNode(lanes[0], newID)
			tree.Roots = append(tree.Roots, parent)
		} else {
			parent.merge(lanes[0])
		}

		for depth := 1; depth < len(lanes); depth++ {
			var next *Node
			if !static(depth) {
				next = parent.child(lanes[depth].Key())
			}
			if next == nil {
				next = newNode(lanes[depth], newID)
				parent.Children = append(parent.Children, next)
			} else {
				next.merge(lanes[depth])
			}
			parent = next
		}
		parent.Tasks = append(parent.Tasks, t)

		if len(lanes) > tree.MaxLevel {
			tree.MaxLevel = len(lanes)
		}
	}
	return tree
}

// Line is one render row: a swimlane path with nil entries for missing
// depths, and the tasks occupying the row.
type Line struct {
	Swimlanes []*Node
	Tasks     []*task.GanttTask
}

// IsEmpty reports whether no depth of the line carries a grouping value.
func (l Line) IsEmpty() bool {
	for _, n := range l.Swimlanes {
		if n != nil && n.Key != "" {
			return false
		}
	}
	return true
}

// At returns the node at depth, or nil.
func (l Line) At(depth int) *Node {
	if depth < 0 || depth >= len(l.Swimlanes) {
		return nil
	}
	return l.Swimlanes[depth]
}

// SameNode reports whether a and b share the node at depth.
func SameNode(a, b Line, depth int) bool {
	na, nb := a.At(depth), b.At(depth)
	return na != nil && nb != nil && na.ID == nb.ID
}

// Lines flattens the grouping of tasks into render lines. Without grouped
// tasks every ungrouped task gets its own line. Otherwise nodes are emitted
// depth first, children before the node's own tasks, followed by a single
// line holding all ungrouped tasks. The result is padded to MinLines.
func Lines(tasks []*task.GanttTask, infos []Info, newID IDGenerator) []Line {
	tree := Build(tasks, infos, newID)
	return tree.Lines()
}

// Lines flattens the tree.
func (tr Tree) Lines() []Line {
	var lines []Line
	if len(tr.Roots) == 0 {
		for _, t := range tr.Ungrouped {
			lines = append(lines, Line{Tasks: []*task.GanttTask{t}})
		}
		return pad(lines, 0)
	}

	for _, root := range tr.Roots {
		lines = flatten(root, nil, tr.MaxLevel, lines)
	}
	if len(tr.Ungrouped) > 0 {
		lines = append(lines, Line{
			Swimlanes: make([]*Node, tr.MaxLevel),
			Tasks:     tr.Ungrouped,
		})
	}
	return pad(lines, tr.MaxLevel)
}

func flatten(n *Node, path []*Node, maxLevel int, out []Line) []Line {
	path = append(path[:len(path):len(path)], n)
	for _, c := range n.Children {
		out = flatten(c, path, maxLevel, out)
	}
	if len(n.Tasks) > 0 {
		padded := make([]*Node, maxLevel)
		copy(padded, path)
		out = append(out, Line{Swimlanes: padded, Tasks: n.Tasks})
	}
	return out
}

func pad(lines []Line, width int) []Line {
	for len(lines) < MinLines {
		lines = append(lines, Line{Swimlanes: make([]*Node, width)})
	}
	return lines
}
