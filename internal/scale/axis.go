package scale

import (
	"sort"
	"time"
)

// Tick is a snap point on the time axis.
type Tick struct {
	Date time.Time
	X    float64
}

// Axis is the time axis of one layout pass: the visible range split into
// columns (Dates) and finer snap points (Ticks). It is rebuilt whenever
// tasks or options change and never patched.
type Axis struct {
	Mode      ViewMode
	Base      float64
	Min       time.Time
	Max       time.Time
	HoursStep float64
	Dates     []time.Time
	Ticks     []Tick

	// columnX[i] is the left edge of Dates[i]; the final entry is the row width.
	columnX []float64
}

// NewAxis builds the axis columns and ticks between min and max.
func NewAxis(mode ViewMode, base float64, min, max time.Time) *Axis {
	a := &Axis{
		Mode:      mode,
		Base:      base,
		Min:       min.UTC(),
		Max:       max.UTC(),
		HoursStep: HoursPerStep(mode),
	}

	a.Dates = []time.Time{a.Min}
	for current := a.Min; current.Before(a.Max); {
		current = a.advance(current)
		a.Dates = append(a.Dates, current)
	}

	a.columnX = make([]float64, 0, len(a.Dates)+1)
	x := 0.0
	for _, date := range a.Dates {
		a.columnX = append(a.columnX, x)
		width := a.ColumnWidth(date)
		divider := a.tickDivider(date)
		tickWidth := width / float64(divider)
		for i := 0; i < divider; i++ {
			a.Ticks = append(a.Ticks, Tick{Date: a.tickDate(date, i), X: x + float64(i)*tickWidth})
		}
		x += width
	}
	a.columnX = append(a.columnX, x)
	return a
}

func (a *Axis) advance(t time.Time) time.Time {
	switch a.Mode {
	case Year:
		return t.AddDate(1, 0, 0)
	case Month:
		return t.AddDate(0, 1, 0)
	default:
		return AddHours(t, a.HoursStep)
	}
}

func (a *Axis) tickDivider(date time.Time) int {
	switch a.Mode {
	case Week:
		return 7
	case Year:
		return 12
	case Month:
		return DaysInMonth(date)
	default:
		return 1
	}
}

func (a *Axis) tickDate(date time.Time, i int) time.Time {
	if i == 0 {
		return date
	}
	if a.Mode == Year {
		return date.AddDate(0, i, 0)
	}
	return date.AddDate(0, 0, i)
}

// ColumnWidth is the pixel width of the column starting at date.
func (a *Axis) ColumnWidth(date time.Time) float64 {
	return ColumnWidth(a.Mode, a.Base, date)
}

// ColumnX returns the left edge of column i.
func (a *Axis) ColumnX(i int) float64 {
	if i < 0 {
		return 0
	}
	if i >= len(a.columnX) {
		return a.RowWidth()
	}
	return a.columnX[i]
}

// RowWidth is the total width of all columns.
func (a *Axis) RowWidth() float64 {
	if len(a.columnX) == 0 {
		return 0
	}
	return a.columnX[len(a.columnX)-1]
}

// DistanceFromStart maps a date to its x position. Month mode interpolates
// within the month column containing the date because months differ in
// width; every other mode is linear in hours.
func (a *Axis) DistanceFromStart(date time.Time) float64 {
	if a.Mode != Month {
		return HoursBetween(a.Min, date) / a.HoursStep * ColumnWidth(a.Mode, a.Base, time.Time{})
	}
	i := a.monthColumnForDate(date)
	start := a.Dates[i]
	span := HoursBetween(start, start.AddDate(0, 1, 0))
	return a.columnX[i] + HoursBetween(start, date)/span*a.ColumnWidth(start)
}

// DateFromPosition is the inverse of DistanceFromStart.
func (a *Axis) DateFromPosition(x float64) time.Time {
	if a.Mode != Month {
		hours := x / ColumnWidth(a.Mode, a.Base, time.Time{}) * a.HoursStep
		return AddHours(a.Min, hours)
	}
	i := a.monthColumnForX(x)
	start := a.Dates[i]
	span := HoursBetween(start, start.AddDate(0, 1, 0))
	return AddHours(start, (x-a.columnX[i])/a.ColumnWidth(start)*span)
}

// monthColumnForDate finds the last column starting at or before date,
// clamped to the first column for dates before the range.
func (a *Axis) monthColumnForDate(date time.Time) int {
	i := sort.Search(len(a.Dates), func(i int) bool { return a.Dates[i].After(date) })
	if i == 0 {
		return 0
	}
	return i - 1
}

func (a *Axis) monthColumnForX(x float64) int {
	n := len(a.Dates)
	i := sort.Search(n, func(i int) bool { return a.columnX[i] > x })
	if i == 0 {
		return 0
	}
	return i - 1
}

// NearestTick returns the tick closest to x. When x is equidistant from two
// ticks the right one wins.
func (a *Axis) NearestTick(x float64) Tick {
	ticks := a.Ticks
	if len(ticks) == 0 {
		return Tick{Date: a.DateFromPosition(x), X: x}
	}
	left, right := 0, len(ticks)-1
	for right-left > 1 {
		middle := left + (right-left)/2
		if ticks[middle].X < x {
			left = middle
		} else {
			right = middle
		}
	}
	if abs(ticks[left].X-x) < abs(ticks[right].X-x) {
		return ticks[left]
	}
	return ticks[right]
}

// TodayHighlight returns the x and width of the band marking today's date.
// The band is never narrower than minWidth.
func (a *Axis) TodayHighlight(today time.Time, minWidth float64) (float64, float64) {
	start := StartOfToday(today)
	x := a.DistanceFromStart(start)
	width := a.DistanceFromStart(start.AddDate(0, 0, 1)) - x
	if width < minWidth {
		x -= (minWidth - width) / 2
		width = minWidth
	}
	return x, width
}

// RangeUnit is the calendar unit task ranges are floored to in mode.
func RangeUnit(mode ViewMode) Unit {
	switch mode {
	case Week, Month:
		return UnitMonth
	case Year:
		return UnitYear
	default:
		return UnitDay
	}
}

// RangePadding is the margin added on both sides of the task range.
func RangePadding(mode ViewMode) (int, Unit) {
	switch mode {
	case QuarterDay, HalfDay:
		return 1, UnitMonth
	case Month:
		return 1, UnitYear
	case Year:
		return 2, UnitYear
	default:
		return 2, UnitMonth
	}
}

// Range computes the visible min and max dates for a task span. A zero
// start or end means there are no tasks; the range then covers a year from
// today.
func Range(mode ViewMode, start, end, now time.Time) (time.Time, time.Time) {
	unit := RangeUnit(mode)
	var min, max time.Time
	if start.IsZero() || end.IsZero() {
		min = StartOf(StartOfToday(now), unit)
		max = min.AddDate(1, 0, 0)
	} else {
		min = StartOf(start, unit)
		max = StartOf(end, unit)
	}
	value, padUnit := RangePadding(mode)
	return Add(min, -value, padUnit), Add(max, value, padUnit)
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
