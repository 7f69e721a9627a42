// Package layout packs horizontal spans into the fewest non-overlapping
// sub-lines of a row and converts between sub-lines and y positions.
package layout

import "math"

// Span is a closed horizontal interval.
type Span struct {
	Start, End float64
}

// Overlaps reports whether two closed intervals intersect, touching
// endpoints included.
func Overlaps(a, b Span) bool {
	return (a.Start >= b.Start && a.Start <= b.End) ||
		(a.End >= b.Start && a.End <= b.End) ||
		(b.Start >= a.Start && b.Start <= a.End) ||
		(b.End >= a.Start && b.End <= a.End)
}

// Lines is a sub-line matrix. A nil entry is an unused sub-line that still
// counts towards the row height.
type Lines[T any] [][]T

// Len is the number of sub-lines.
func (l Lines[T]) Len() int { return len(l) }

// Items returns every item, line by line.
func (l Lines[T]) Items() []T {
	var out []T
	for _, line := range l {
		out = append(out, line...)
	}
	return out
}

// Place appends v to sub-line line, growing the matrix as needed.
func (l Lines[T]) Place(line int, v T) Lines[T] {
	for len(l) <= line {
		l = append(l, nil)
	}
	l[line] = append(l[line], v)
	return l
}

// Find returns the sub-line holding an item matching match, or -1.
func (l Lines[T]) Find(match func(T) bool) int {
	for i, line := range l {
		for _, v := range line {
			if match(v) {
				return i
			}
		}
	}
	return -1
}

// Without returns a copy with every item matching match removed. The
// number of sub-lines is kept.
func (l Lines[T]) Without(match func(T) bool) Lines[T] {
	out := make(Lines[T], len(l))
	for i, line := range l {
		for _, v := range line {
			if !match(v) {
				out[i] = append(out[i], v)
			}
		}
	}
	return out
}

// Clone copies the matrix; items are shared.
func (l Lines[T]) Clone() Lines[T] {
	if l == nil {
		return nil
	}
	out := make(Lines[T], len(l))
	for i, line := range l {
		if line != nil {
			out[i] = append([]T(nil), line...)
		}
	}
	return out
}

// FreeLine returns the first sub-line at or after minLine where s overlaps
// no item, or the next new sub-line.
func FreeLine[T any](lines Lines[T], span func(T) Span, s Span, minLine int) int {
	if len(lines) == 0 {
		return minLine
	}
	for i := minLine; i < len(lines); i++ {
		if !OverlapsAny(lines[i], span, s) {
			return i
		}
	}
	return max(minLine, len(lines))
}

// OverlapsAny reports whether s overlaps any item of line.
func OverlapsAny[T any](line []T, span func(T) Span, s Span) bool {
	for _, v := range line {
		if Overlaps(span(v), s) {
			return true
		}
	}
	return false
}

// Pack places items in order, each on the first free sub-line.
func Pack[T any](items []T, span func(T) Span) Lines[T] {
	var lines Lines[T]
	for _, v := range items {
		lines = lines.Place(FreeLine(lines, span, span(v), 0), v)
	}
	return lines
}

// Metrics holds the bar height and padding rows are measured with.
type Metrics struct {
	BarHeight float64
	Padding   float64
}

// LineY is the y of a bar on sub-line line of a row starting at rowY.
func (m Metrics) LineY(rowY float64, line int) float64 {
	return rowY + float64(line)*m.BarHeight + float64(line+1)*m.Padding/2
}

// LineForY is the sub-line a bar at y belongs to.
func (m Metrics) LineForY(rowY, y float64) int {
	line := math.Round((y - rowY - m.Padding - 2) / (m.BarHeight + m.Padding/2))
	return max(int(line), 0)
}

// Height of a row with n sub-lines; an empty row is as high as one line.
func (m Metrics) Height(n int) float64 {
	n = max(n, 1)
	return float64(n)*m.BarHeight + float64(n+1)*m.Padding/2
}
