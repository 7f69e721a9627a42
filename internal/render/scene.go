package render

import (
	"math"
	"slices"

	"github.com/charmbracelet/x/ansi"
)

// Default text metrics. A character cell is CharWidth by LineHeight chart
// units, so the terminal painter maps text one rune per cell.
const (
	CharWidth  = 7
	LineHeight = 14
)

// hitSlop is how far from a path a point may be and still hit it.
const hitSlop = 4

// TextMeasurer measures text for a class.
type TextMeasurer func(text, class string) Size

// MonospaceMeasurer measures by display width in terminal cells.
func MonospaceMeasurer(text, _ string) Size {
	return Size{Width: float64(ansi.StringWidth(text)) * CharWidth, Height: LineHeight}
}

type node struct {
	prim     Primitive
	parent   ID
	children []ID
	hidden   bool
}

// Scene is a retained primitive tree implementing Backend.
type Scene struct {
	nodes   map[ID]*node
	next    ID
	measure TextMeasurer
}

// SceneOption configures a Scene.
type SceneOption func(*Scene)

// WithTextMeasurer replaces the monospace measurer.
func WithTextMeasurer(m TextMeasurer) SceneOption {
	return func(s *Scene) {
		if m != nil {
			s.measure = m
		}
	}
}

// NewScene returns an empty scene holding only the root group.
func NewScene(opts ...SceneOption) *Scene {
	s := &Scene{measure: MonospaceMeasurer}
	for _, opt := range opts {
		opt(s)
	}
	s.Clear()
	return s
}

// Clear removes every primitive.
func (s *Scene) Clear() {
	s.nodes = map[ID]*node{Root: {prim: Primitive{Kind: KindGroup}, parent: -1}}
	s.next = Root + 1
}

func (s *Scene) Create(parent ID, p Primitive) ID {
	pn, ok := s.nodes[parent]
	if !ok {
		pn, parent = s.nodes[Root], Root
	}
	id := s.next
	s.next++
	p.Class = slices.Clone(p.Class)
	p.Points = slices.Clone(p.Points)
	s.nodes[id] = &node{prim: p, parent: parent}
	pn.children = append(pn.children, id)
	return id
}

func (s *Scene) Set(id ID, attrs ...Attr) {
	if n, ok := s.nodes[id]; ok {
		n.prim.Apply(attrs...)
	}
}

func (s *Scene) Remove(id ID) {
	n, ok := s.nodes[id]
	if !ok || id == Root {
		return
	}
	if pn, ok := s.nodes[n.parent]; ok {
		pn.children = slices.DeleteFunc(pn.children, func(c ID) bool { return c == id })
	}
	s.drop(id)
}

func (s *Scene) drop(id ID) {
	n := s.nodes[id]
	for _, c := range n.children {
		s.drop(c)
	}
	delete(s.nodes, id)
}

func (s *Scene) SetVisible(id ID, visible bool) {
	if n, ok := s.nodes[id]; ok {
		n.hidden = !visible
	}
}

func (s *Scene) Bounds(id ID) Rect {
	n, ok := s.nodes[id]
	if !ok {
		return Rect{}
	}
	if n.prim.Kind != KindGroup {
		return s.bounds(n.prim)
	}
	var r Rect
	for _, c := range n.children {
		if cn := s.nodes[c]; cn.hidden {
			continue
		}
		r = r.Union(s.Bounds(c))
	}
	return r
}

func (s *Scene) bounds(p Primitive) Rect {
	switch p.Kind {
	case KindLine:
		x, y := math.Min(p.X, p.X2), math.Min(p.Y, p.Y2)
		return Rect{X: x, Y: y, Width: math.Abs(p.X2 - p.X), Height: math.Abs(p.Y2 - p.Y)}
	case KindCircle:
		return Rect{X: p.X - p.Radius, Y: p.Y - p.Radius, Width: 2 * p.Radius, Height: 2 * p.Radius}
	case KindPath, KindPolygon:
		if len(p.Points) == 0 {
			return Rect{}
		}
		minX, minY := p.Points[0].X, p.Points[0].Y
		maxX, maxY := minX, minY
		for _, pt := range p.Points[1:] {
			minX, maxX = math.Min(minX, pt.X), math.Max(maxX, pt.X)
			minY, maxY = math.Min(minY, pt.Y), math.Max(maxY, pt.Y)
		}
		return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
	case KindText:
		size := s.measure(p.Text, firstClass(p.Class))
		x := p.X
		switch p.Anchor {
		case AnchorMiddle:
			x -= size.Width / 2
		case AnchorEnd:
			x -= size.Width
		}
		return Rect{X: x, Y: p.Y - size.Height/2, Width: size.Width, Height: size.Height}
	default:
		return Rect{X: p.X, Y: p.Y, Width: p.Width, Height: p.Height}
	}
}

func firstClass(classes []string) string {
	if len(classes) == 0 {
		return ""
	}
	return classes[0]
}

func (s *Scene) MeasureText(text, class string) Size {
	return s.measure(text, class)
}

// Get returns a copy of a primitive.
func (s *Scene) Get(id ID) (Primitive, bool) {
	n, ok := s.nodes[id]
	if !ok {
		return Primitive{}, false
	}
	return n.prim, true
}

// Children returns the child ids of id in paint order.
func (s *Scene) Children(id ID) []ID {
	if n, ok := s.nodes[id]; ok {
		return slices.Clone(n.children)
	}
	return nil
}

// Len is the number of primitives, root excluded.
func (s *Scene) Len() int {
	return len(s.nodes) - 1
}

// Visible reports whether id and all its ancestors are shown.
func (s *Scene) Visible(id ID) bool {
	for id >= Root {
		n, ok := s.nodes[id]
		if !ok || n.hidden {
			return false
		}
		id = n.parent
	}
	return true
}

// Walk calls fn for every visible primitive under root in paint order,
// parents before children. Returning false from fn skips the children.
func (s *Scene) Walk(root ID, fn func(id ID, p Primitive, depth int) bool) {
	s.walk(root, 0, fn)
}

func (s *Scene) walk(id ID, depth int, fn func(ID, Primitive, int) bool) {
	n, ok := s.nodes[id]
	if !ok || n.hidden {
		return
	}
	if id != Root && !fn(id, n.prim, depth) {
		return
	}
	for _, c := range n.children {
		s.walk(c, depth+1, fn)
	}
}

// FindByClass returns the ids of every primitive carrying class, in paint
// order, hidden ones included.
func (s *Scene) FindByClass(class string) []ID {
	var out []ID
	var visit func(ID)
	visit = func(id ID) {
		n := s.nodes[id]
		if n.prim.HasClass(class) {
			out = append(out, id)
		}
		for _, c := range n.children {
			visit(c)
		}
	}
	visit(Root)
	return out
}

// HitTest returns the topmost visible interactive primitive under the
// point, or false.
func (s *Scene) HitTest(root ID, x, y float64) (ID, bool) {
	hit, found := ID(0), false
	s.Walk(root, func(id ID, p Primitive, _ int) bool {
		if p.Interactive && s.hits(p, x, y) {
			hit, found = id, true
		}
		return true
	})
	return hit, found
}

func (s *Scene) hits(p Primitive, x, y float64) bool {
	switch p.Kind {
	case KindPath:
		for i := 0; i+1 < len(p.Points); i += 2 {
			if segmentDistance(p.Points[i], p.Points[i+1], x, y) <= hitSlop {
				return true
			}
		}
		return false
	case KindLine:
		return segmentDistance(Point{p.X, p.Y}, Point{p.X2, p.Y2}, x, y) <= hitSlop
	case KindCircle:
		return math.Hypot(x-p.X, y-p.Y) <= p.Radius
	default:
		return s.bounds(p).Contains(x, y)
	}
}

func segmentDistance(a, b Point, x, y float64) float64 {
	dx, dy := b.X-a.X, b.Y-a.Y
	if dx == 0 && dy == 0 {
		return math.Hypot(x-a.X, y-a.Y)
	}
	t := ((x-a.X)*dx + (y-a.Y)*dy) / (dx*dx + dy*dy)
	t = math.Max(0, math.Min(1, t))
	return math.Hypot(x-(a.X+t*dx), y-(a.Y+t*dy))
}
