// Package scale maps calendar time to horizontal pixel positions for every
// chart view mode and generates the axis columns and snap ticks.
package scale

import (
	"fmt"
	"strings"
	"time"

	appErrors "gantry/internal/errors"
)

// ViewMode is the active time-scale granularity.
type ViewMode int

const (
	Hour ViewMode = iota
	QuarterDay
	HalfDay
	Day
	Week
	Month
	Year
)

var modeNames = map[ViewMode]string{
	Hour:       "Hour",
	QuarterDay: "Quarter Day",
	HalfDay:    "Half Day",
	Day:        "Day",
	Week:       "Week",
	Month:      "Month",
	Year:       "Year",
}

// Modes lists every view mode from finest to coarsest.
func Modes() []ViewMode {
	return []ViewMode{Hour, QuarterDay, HalfDay, Day, Week, Month, Year}
}

func (m ViewMode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("ViewMode(%d)", int(m))
}

// Valid reports whether m is one of the known modes.
func (m ViewMode) Valid() bool {
	_, ok := modeNames[m]
	return ok
}

// Next returns the next coarser mode, wrapping from Year back to Hour.
func (m ViewMode) Next() ViewMode {
	if m >= Year || m < Hour {
		return Hour
	}
	return m + 1
}

// Prev returns the next finer mode, wrapping from Hour to Year.
func (m ViewMode) Prev() ViewMode {
	if m <= Hour || m > Year {
		return Year
	}
	return m - 1
}

// ParseViewMode accepts a mode name case-insensitively, with or without the
// inner space ("Quarter Day", "quarterday", "quarter-day").
func ParseViewMode(s string) (ViewMode, error) {
	key := normalizeModeName(s)
	for mode, name := range modeNames {
		if normalizeModeName(name) == key {
			return mode, nil
		}
	}
	return Day, appErrors.New(appErrors.CodeInvalidOption, fmt.Sprintf("unknown view mode %q", s), nil)
}

func normalizeModeName(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer(" ", "", "-", "", "_", "").Replace(s)
}

// StepMultiplier is the number of days one axis column spans.
func StepMultiplier(mode ViewMode) float64 {
	switch mode {
	case QuarterDay:
		return 1.0 / 4
	case HalfDay:
		return 1.0 / 2
	case Week:
		return 7
	case Month:
		return 30
	case Year:
		return 365
	default:
		return 1
	}
}

// HoursPerStep is the nominal number of hours one axis column advances.
func HoursPerStep(mode ViewMode) float64 {
	return 24 * StepMultiplier(mode)
}

func columnWidthMultiplier(mode ViewMode) float64 {
	switch mode {
	case Week, Month:
		return 4
	case Year:
		return 12
	default:
		return 1
	}
}

// ColumnWidth returns the pixel width of one axis column. In Month mode a
// non-zero date scales the width by the number of days in that month.
func ColumnWidth(mode ViewMode, base float64, date time.Time) float64 {
	width := base * columnWidthMultiplier(mode)
	if mode == Month && !date.IsZero() {
		return width / StepMultiplier(mode) * float64(DaysInMonth(date))
	}
	return width
}

// IsThickTick reports whether the grid line at the start of date's column is
// drawn emphasized: day starts, week starts, first weeks of a month, or
// quarter starts depending on mode.
func IsThickTick(mode ViewMode, date time.Time) bool {
	date = date.UTC()
	switch mode {
	case Hour, QuarterDay:
		return date.Hour() == 0
	case HalfDay, Day:
		return date.Weekday() == time.Sunday && date.Hour() == 0
	case Week:
		return date.Day() >= 1 && date.Day() < 8
	case Month:
		return (int(date.Month())-1)%3 == 0
	default:
		return false
	}
}
