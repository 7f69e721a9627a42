package chart

import (
	"slices"
	"time"

	"gantry/internal/scale"
	"gantry/internal/task"
)

// Settings are the derived layout values of one render pass. They are
// rebuilt whenever tasks or options change; only row heights change in
// between.
type Settings struct {
	*scale.Axis

	HeaderHeight     float64
	DefaultRowHeight float64
	RowHeights       []float64
	RowWidth         float64
	TableWidth       float64
}

func newSettings(opts Options, model *task.Model, rows int, now time.Time) Settings {
	start, end := model.Span()
	min, max := scale.Range(opts.ViewMode, start, end, now)
	axis := scale.NewAxis(opts.ViewMode, opts.ColumnWidth, min, max)
	return Settings{
		Axis:             axis,
		HeaderHeight:     opts.HeaderHeight + opts.Padding,
		DefaultRowHeight: opts.BarHeight + opts.Padding,
		RowHeights:       make([]float64, rows),
		RowWidth:         axis.RowWidth(),
		TableWidth:       axis.RowWidth(),
	}
}

// RowsHeight is the summed height of every row.
func (s Settings) RowsHeight() float64 {
	var h float64
	for _, rh := range s.RowHeights {
		h += rh
	}
	return h
}

// TableHeight is the header plus all rows.
func (s Settings) TableHeight() float64 {
	return s.HeaderHeight + s.RowsHeight()
}

// RowY is the top of row i.
func (s Settings) RowY(i int) float64 {
	y := s.HeaderHeight
	for _, rh := range s.RowHeights[:min(i, len(s.RowHeights))] {
		y += rh
	}
	return y
}

func (s Settings) clone() Settings {
	s.RowHeights = slices.Clone(s.RowHeights)
	return s
}
