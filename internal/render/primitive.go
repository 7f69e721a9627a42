// Package render defines the drawing contract the chart engine draws
// through, a retained in-memory scene implementing it, and an SVG writer
// for scenes.
package render

import (
	"math"
	"slices"
)

// ID addresses a primitive in a back end. Root is the implicit top-level
// parent every chart layer is created under.
type ID int

const Root ID = 0

// Kind is the shape of a primitive.
type Kind int

const (
	KindGroup Kind = iota
	KindRect
	KindLine
	KindCircle
	KindPath
	KindPolygon
	KindText
	KindImage
	KindCheckbox
)

var kindNames = [...]string{"g", "rect", "line", "circle", "path", "polygon", "text", "image", "checkbox"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Anchor is the horizontal alignment of text relative to its X.
type Anchor int

const (
	AnchorStart Anchor = iota
	AnchorMiddle
	AnchorEnd
)

// Point is a position in chart coordinates.
type Point struct {
	X, Y float64
}

// Size is a width and height.
type Size struct {
	Width, Height float64
}

// Rect is an axis-aligned box.
type Rect struct {
	X, Y, Width, Height float64
}

func (r Rect) Right() float64  { return r.X + r.Width }
func (r Rect) Bottom() float64 { return r.Y + r.Height }

// Contains reports whether the point lies inside r, edges included.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.Right() && y >= r.Y && y <= r.Bottom()
}

// Union returns the smallest box covering r and o. A zero rect is the
// identity.
func (r Rect) Union(o Rect) Rect {
	if r == (Rect{}) {
		return o
	}
	if o == (Rect{}) {
		return r
	}
	x, y := math.Min(r.X, o.X), math.Min(r.Y, o.Y)
	return Rect{X: x, Y: y, Width: math.Max(r.Right(), o.Right()) - x, Height: math.Max(r.Bottom(), o.Bottom()) - y}
}

// Primitive is one drawable element. Which fields matter depends on Kind:
// rects, images and checkboxes use X/Y/Width/Height; lines X/Y to X2/Y2;
// circles X/Y as centre with Radius; paths D with Points as their drawn
// segments in pairs; polygons Points; text X/Y as anchor point with Y the
// vertical centre.
type Primitive struct {
	Kind Kind

	X, Y          float64
	Width, Height float64
	X2, Y2        float64
	Radius        float64
	CornerRadius  float64
	Points        []Point
	D             string

	Class     []string
	Fill      string
	Stroke    string
	TextColor string
	Opacity   float64
	Anchor    Anchor

	Text    string
	Href    string
	Checked bool

	// Interactive primitives take part in hit testing.
	Interactive bool
}

// HasClass reports whether class is in the class list.
func (p Primitive) HasClass(class string) bool {
	return slices.Contains(p.Class, class)
}

// Attr mutates a primitive in place.
type Attr func(*Primitive)

// Apply runs attrs against p.
func (p *Primitive) Apply(attrs ...Attr) {
	for _, a := range attrs {
		a(p)
	}
}

// Box sets position and size.
func Box(x, y, w, h float64) Attr {
	return func(p *Primitive) {
		p.X, p.Y, p.Width, p.Height = x, y, w, h
	}
}

// Pos sets the position only.
func Pos(x, y float64) Attr {
	return func(p *Primitive) {
		p.X, p.Y = x, y
	}
}

// X sets the x coordinate only.
func X(x float64) Attr {
	return func(p *Primitive) { p.X = x }
}

// Y sets the y coordinate only.
func Y(y float64) Attr {
	return func(p *Primitive) { p.Y = y }
}

// Width sets the width only.
func Width(w float64) Attr {
	return func(p *Primitive) { p.Width = w }
}

// Height sets the height only.
func Height(h float64) Attr {
	return func(p *Primitive) { p.Height = h }
}

// Ends sets both ends of a line.
func Ends(x1, y1, x2, y2 float64) Attr {
	return func(p *Primitive) {
		p.X, p.Y, p.X2, p.Y2 = x1, y1, x2, y2
	}
}

// Circle sets centre and radius.
func Circle(cx, cy, r float64) Attr {
	return func(p *Primitive) {
		p.X, p.Y, p.Radius = cx, cy, r
	}
}

// Path sets path data and its drawn segments.
func Path(d string, segments [][2]Point) Attr {
	return func(p *Primitive) {
		p.D = d
		p.Points = nil
		for _, s := range segments {
			p.Points = append(p.Points, s[0], s[1])
		}
	}
}

// Polygon sets polygon vertices.
func Polygon(points ...Point) Attr {
	return func(p *Primitive) {
		p.Points = append([]Point(nil), points...)
	}
}

// Text sets the text content.
func Text(text string) Attr {
	return func(p *Primitive) { p.Text = text }
}

// Classes replaces the class list.
func Classes(classes ...string) Attr {
	return func(p *Primitive) {
		p.Class = append([]string(nil), classes...)
	}
}

// AddClass adds class unless present.
func AddClass(class string) Attr {
	return func(p *Primitive) {
		if !p.HasClass(class) {
			p.Class = append(p.Class, class)
		}
	}
}

// RemoveClass drops class.
func RemoveClass(class string) Attr {
	return func(p *Primitive) {
		p.Class = slices.DeleteFunc(slices.Clone(p.Class), func(c string) bool { return c == class })
	}
}

// Fill sets the fill colour.
func Fill(color string) Attr {
	return func(p *Primitive) { p.Fill = color }
}

// Opacity sets the opacity; zero means fully opaque.
func Opacity(o float64) Attr {
	return func(p *Primitive) { p.Opacity = o }
}

// Checked sets checkbox state.
func Checked(v bool) Attr {
	return func(p *Primitive) { p.Checked = v }
}

// Anchored sets the text anchor.
func Anchored(a Anchor) Attr {
	return func(p *Primitive) { p.Anchor = a }
}

// TextColor sets the text fill.
func TextColor(color string) Attr {
	return func(p *Primitive) { p.TextColor = color }
}

// Interactive switches hit testing for a primitive.
func Interactive(v bool) Attr {
	return func(p *Primitive) { p.Interactive = v }
}

// D sets path data without drawn segments.
func D(d string) Attr {
	return func(p *Primitive) {
		p.D = d
		p.Points = nil
	}
}
