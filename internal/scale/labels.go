package scale

import "time"

// Label is one header text placed at an absolute position.
type Label struct {
	Text string
	X    float64
	Y    float64
}

// DateLabels holds the lower (per column) and optional upper (grouping)
// header labels for one axis column.
type DateLabels struct {
	Lower Label
	Upper *Label
}

// Labels computes header labels for every axis column. headerHeight is the
// full header band height, padding the chart padding.
func (a *Axis) Labels(headerHeight, padding float64) []DateLabels {
	lowerY := headerHeight - padding/2
	upperY := headerHeight/2 - padding/2

	out := make([]DateLabels, 0, len(a.Dates))
	var previous time.Time
	for i, date := range a.Dates {
		width := a.ColumnWidth(date)
		lowerFormat, upperFormat, lowerOffset, upperOffset := a.labelFormats(date, previous, i, width)

		labels := DateLabels{Lower: Label{X: a.columnX[i] + lowerOffset, Y: lowerY}}
		if lowerFormat != "" {
			labels.Lower.Text = FormatDate(date, lowerFormat)
		}
		if upperFormat != "" {
			labels.Upper = &Label{Text: FormatDate(date, upperFormat), X: a.columnX[i] + upperOffset, Y: upperY}
		}
		out = append(out, labels)
		previous = date
	}
	return out
}

func (a *Axis) labelFormats(date, previous time.Time, index int, width float64) (lower, upper string, lowerOffset, upperOffset float64) {
	dayChanged := previous.IsZero() || date.Day() != previous.Day()
	monthChanged := previous.IsZero() || date.Month() != previous.Month()

	switch a.Mode {
	case QuarterDay:
		lower = "HH"
		if dayChanged {
			upper = "D MMM"
			if index%16 == 0 {
				upper = "D MMM YYYY"
			}
		}
		if index == 0 {
			lowerOffset = width / 4
		}
		upperOffset = width * 2
	case HalfDay:
		lower = "HH"
		if dayChanged {
			upper = "D MMM"
			if index%8 == 0 {
				upper = "D MMM YYYY"
			}
		}
		if index == 0 {
			lowerOffset = width / 4
		}
		upperOffset = width
	case Hour, Day:
		lower = "D"
		if monthChanged {
			upper = "MMMM YYYY"
		}
		lowerOffset = width / 2
		upperOffset = width * float64(DaysInMonth(date)-2) / 2
	case Week:
		lower = "D"
		if monthChanged {
			lower = "D MMM"
			upper = "MMMM YYYY"
		}
		if index == 0 {
			lowerOffset = width / 8
		}
		upperOffset = width * 2
	case Month:
		lower = "MMMM"
		if index%3 == 0 {
			upper = "YYYY"
		}
		lowerOffset = width / 2
		upperOffset = width / 2
	case Year:
		lower = "YYYY"
		lowerOffset = width / 2
	}
	return lower, upper, lowerOffset, upperOffset
}
