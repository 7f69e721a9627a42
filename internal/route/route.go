// Package route computes dependency arrow paths between two bars.
package route

import (
	"strconv"
	"strings"
)

// ChevronSize is the half-size of the arrowhead drawn at the path end.
const ChevronSize = 5

// Endpoints is the geometry of a bar relevant to routing: its top and
// height, and the centres of its start and end endpoint circles.
type Endpoints struct {
	Y      float64
	Height float64
	StartX float64
	EndX   float64
}

// CY is the vertical centre of the endpoints.
func (e Endpoints) CY() float64 {
	return e.Y + e.Height/2
}

// Op is a path command letter; lower case ops are relative.
type Op byte

const (
	MoveTo      Op = 'M'
	LineTo      Op = 'L'
	Horizontal  Op = 'H'
	Vertical    Op = 'V'
	RelVertical Op = 'v'
	RelArc      Op = 'a'
	RelMoveTo   Op = 'm'
	RelLineTo   Op = 'l'
)

// Command is one path segment.
type Command struct {
	Op   Op
	Args []float64
}

// Path is an ordered list of commands.
type Path []Command

// Point is a vertex of a flattened path.
type Point struct {
	X, Y float64
}

// DrawsFromEnd reports whether an arrow starts at the from-bar's end
// endpoint, which happens when that endpoint precedes the to-bar's start.
func DrawsFromEnd(from, to Endpoints) bool {
	return from.EndX < to.StartX
}

// Compute routes an arrow from one bar to the start endpoint of another.
// Bars on the same line are joined directly when the arrow runs forward;
// otherwise the path bends with quarter circles of radius curve, turning
// clockwise when the from-bar sits at or below the to-bar.
func Compute(from, to Endpoints, curve, barHeight, padding float64) Path {
	fromIsBelow := from.Y >= to.Y
	sameLine := from.Y == to.Y
	fromEnd := DrawsFromEnd(from, to)

	startX := from.StartX
	if fromEnd {
		startX = from.EndX
	}
	startY := from.CY()
	endX, endY := to.StartX, to.CY()

	var sweep float64
	curveY := curve
	if fromIsBelow {
		sweep = 1
		curveY = -curve
	}
	down := to.Y + to.Height/2 - curveY

	var p Path
	p = p.add(MoveTo, startX, startY)
	switch {
	case fromEnd && sameLine:
		p = p.add(LineTo, endX, endY)
	case fromEnd:
		p = p.add(Vertical, down)
		p = p.add(RelArc, curve, curve, 0, 0, sweep, curve, curveY)
		p = p.add(LineTo, endX, endY)
	case sameLine:
		up := barHeight/2 + padding/4 - curve
		left := to.StartX - curve*2
		down := to.Y + to.Height/2 - curve
		p = p.add(RelVertical, -up)
		p = p.add(RelArc, curve, curve, 1, 0, 0, -curve, -curve)
		p = p.add(Horizontal, left)
		p = p.add(RelArc, curve, curve, 0, 0, 0, -curve, curve)
		p = p.add(Vertical, down)
		p = p.add(RelArc, curve, curve, 0, 0, 0, curve, curve)
		p = p.add(LineTo, endX, endY)
	default:
		h := min(to.StartX-curve*2, from.StartX-curve*2)
		p = p.add(Horizontal, h)
		p = p.add(RelArc, curve, curve, 0, 0, sweep, -curve, curveY)
		p = p.add(Vertical, down)
		p = p.add(RelArc, curve, curve, 0, 0, sweep, curve, curveY)
		p = p.add(LineTo, endX, endY)
	}
	return p.chevron()
}

// Line is a straight preview path, used while an arrow is being drawn.
func Line(x1, y1, x2, y2 float64) Path {
	var p Path
	return p.add(MoveTo, x1, y1).add(LineTo, x2, y2)
}

func (p Path) add(op Op, args ...float64) Path {
	return append(p, Command{Op: op, Args: args})
}

func (p Path) chevron() Path {
	return p.add(RelMoveTo, -ChevronSize, -ChevronSize).
		add(RelLineTo, ChevronSize, ChevronSize).
		add(RelLineTo, -ChevronSize, ChevronSize)
}

// String renders the path as SVG path data.
func (p Path) String() string {
	var b strings.Builder
	for i, c := range p {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteByte(byte(c.Op))
		for _, a := range c.Args {
			b.WriteByte(' ')
			b.WriteString(strconv.FormatFloat(a, 'f', -1, 64))
		}
	}
	return b.String()
}

// End is the point the last drawing command before the arrowhead reaches,
// which is the to-bar's start endpoint for computed routes.
func (p Path) End() Point {
	pts := p.Vertices()
	for i := len(p) - 1; i >= 0; i-- {
		if p[i].Op != RelMoveTo && p[i].Op != RelLineTo {
			return pts[i]
		}
	}
	return Point{}
}

// Vertices flattens the path to the point reached after each command.
// Arcs contribute their end point only.
func (p Path) Vertices() []Point {
	out := make([]Point, 0, len(p))
	var cur Point
	for _, c := range p {
		switch c.Op {
		case MoveTo, LineTo:
			cur = Point{c.Args[0], c.Args[1]}
		case Horizontal:
			cur.X = c.Args[0]
		case Vertical:
			cur.Y = c.Args[0]
		case RelVertical:
			cur.Y += c.Args[0]
		case RelArc:
			cur.X += c.Args[5]
			cur.Y += c.Args[6]
		case RelMoveTo, RelLineTo:
			cur.X += c.Args[0]
			cur.Y += c.Args[1]
		}
		out = append(out, cur)
	}
	return out
}

// Segments returns the drawn segments of the path; moves start a new
// segment without drawing.
func (p Path) Segments() [][2]Point {
	pts := p.Vertices()
	var out [][2]Point
	for i := 1; i < len(p); i++ {
		if p[i].Op == MoveTo || p[i].Op == RelMoveTo {
			continue
		}
		out = append(out, [2]Point{pts[i-1], pts[i]})
	}
	return out
}
