package scale

import (
	"testing"
	"time"

	appErrors "gantry/internal/errors"
)

func TestGoLayout(t *testing.T) {
	tests := map[string]string{
		"YYYY-MM-DD HH":      "2006-01-02 15",
		"D MMM YYYY":         "2 Jan 2006",
		"MMMM YYYY":          "January 2006",
		"DD.MM.YY HH:mm:ss":  "02.01.06 15:04:05",
		"YYYY-MM-DD[T]HH:mm": "2006-01-02T15:04",
	}
	for format, want := range tests {
		if got := GoLayout(format); got != want {
			t.Errorf("GoLayout(%q) = %q, want %q", format, got, want)
		}
	}
}

func TestParseDateWithFormat(t *testing.T) {
	got, ok := ParseDate("2024-03-10 06", DefaultDateFormat)
	if !ok {
		t.Fatalf("expected date to parse")
	}
	if want := utc(2024, time.March, 10, 6); !got.Equal(want) {
		t.Fatalf("expected %s, got %s", want, got)
	}
}

func TestParseDateFallbacks(t *testing.T) {
	tests := []struct {
		value string
		want  time.Time
	}{
		{"2024-03-10", utc(2024, time.March, 10, 0)},
		{"2024-03-10 06:30", time.Date(2024, time.March, 10, 6, 30, 0, 0, time.UTC)},
		{"2024-03-10T06:00:00Z", utc(2024, time.March, 10, 6)},
		{"2024-03-10T08:00:00+02:00", utc(2024, time.March, 10, 6)},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			got, ok := ParseDate(tt.value, DefaultDateFormat)
			if !ok {
				t.Fatalf("expected %q to parse", tt.value)
			}
			if !got.Equal(tt.want) {
				t.Fatalf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestParseDateRejectsGarbage(t *testing.T) {
	for _, value := range []string{"", "   ", "tomorrow", "2024-13-45"} {
		if _, ok := ParseDate(value, DefaultDateFormat); ok {
			t.Errorf("expected %q to be rejected", value)
		}
	}
}

func TestFormatDate(t *testing.T) {
	date := time.Date(2024, time.March, 5, 7, 8, 9, 0, time.UTC)
	tests := map[string]string{
		"YYYY-MM-DD HH":     "2024-03-05 07",
		"D MMM":             "5 Mar",
		"MMMM YYYY":         "March 2024",
		"H:mm:ss":           "7:08:09",
		"DD/M/YY":           "05/3/24",
		"[week of] D MMM":   "week of 5 Mar",
	}
	for format, want := range tests {
		if got := FormatDate(date, format); got != want {
			t.Errorf("FormatDate(%q) = %q, want %q", format, got, want)
		}
	}
}

func TestFormatParseRoundTrip(t *testing.T) {
	date := utc(2024, time.December, 31, 23)
	text := FormatDate(date, DefaultDateFormat)
	back, ok := ParseDate(text, DefaultDateFormat)
	if !ok || !back.Equal(date) {
		t.Fatalf("expected %s back, got %s (ok=%v)", date, back, ok)
	}
}

func TestCalendarHelpers(t *testing.T) {
	if got := DaysInMonth(utc(2024, time.February, 10, 0)); got != 29 {
		t.Fatalf("expected 29 days in Feb 2024, got %d", got)
	}
	if got := DaysInMonth(utc(2023, time.February, 10, 0)); got != 28 {
		t.Fatalf("expected 28 days in Feb 2023, got %d", got)
	}
	date := time.Date(2024, time.May, 17, 13, 45, 0, 0, time.UTC)
	if got := StartOf(date, UnitMonth); !got.Equal(utc(2024, time.May, 1, 0)) {
		t.Fatalf("unexpected month start %s", got)
	}
	if got := StartOf(date, UnitYear); !got.Equal(utc(2024, time.January, 1, 0)) {
		t.Fatalf("unexpected year start %s", got)
	}
	if got := AddHours(date, 1.5); !got.Equal(date.Add(90 * time.Minute)) {
		t.Fatalf("unexpected AddHours result %s", got)
	}
}

func TestParseViewMode(t *testing.T) {
	tests := map[string]ViewMode{
		"Quarter Day": QuarterDay,
		"quarterday":  QuarterDay,
		"half-day":    HalfDay,
		"WEEK":        Week,
		" month ":     Month,
		"Hour":        Hour,
	}
	for input, want := range tests {
		got, err := ParseViewMode(input)
		if err != nil {
			t.Fatalf("ParseViewMode(%q) returned error: %v", input, err)
		}
		if got != want {
			t.Errorf("ParseViewMode(%q) = %s, want %s", input, got, want)
		}
	}

	_, err := ParseViewMode("fortnight")
	if !appErrors.IsCode(err, appErrors.CodeInvalidOption) {
		t.Fatalf("expected invalid option error, got %v", err)
	}
}

func TestViewModeCycle(t *testing.T) {
	if Year.Next() != Hour || Hour.Prev() != Year {
		t.Fatalf("expected modes to wrap")
	}
	if Day.Next() != Week || Day.Prev() != HalfDay {
		t.Fatalf("unexpected neighbours of Day")
	}
	if got := HoursPerStep(QuarterDay); got != 6 {
		t.Fatalf("expected 6 hours per Quarter Day step, got %f", got)
	}
	if got := HoursPerStep(Hour); got != 24 {
		t.Fatalf("expected 24 hours per Hour step, got %f", got)
	}
	if got := HoursPerStep(Month); got != 720 {
		t.Fatalf("expected 720 hours per Month step, got %f", got)
	}
}
