package scale

import (
	"strconv"
	"strings"
	"time"
)

// DefaultDateFormat is the moment-style format task dates use unless
// configured otherwise.
const DefaultDateFormat = "YYYY-MM-DD HH"

// Unit is a calendar unit used for flooring and padding ranges.
type Unit int

const (
	UnitDay Unit = iota
	UnitMonth
	UnitYear
)

// token is one piece of a parsed moment-style format: either a field
// placeholder or literal text.
type token struct {
	field   string
	literal string
}

// fields in match order: longer placeholders first.
var formatFields = []string{"YYYY", "YY", "MMMM", "MMM", "MM", "M", "DD", "D", "HH", "H", "mm", "m", "ss", "s"}

var goLayoutFor = map[string]string{
	"YYYY": "2006",
	"YY":   "06",
	"MMMM": "January",
	"MMM":  "Jan",
	"MM":   "01",
	"M":    "1",
	"DD":   "02",
	"D":    "2",
	"HH":   "15",
	"H":    "15",
	"mm":   "04",
	"m":    "4",
	"ss":   "05",
	"s":    "5",
}

// fallback layouts tried after the configured format fails.
var fallbackLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02 15",
	"2006-01-02",
}

func tokenize(format string) []token {
	var tokens []token
	var lit strings.Builder
	flush := func() {
		if lit.Len() > 0 {
			tokens = append(tokens, token{literal: lit.String()})
			lit.Reset()
		}
	}
	for i := 0; i < len(format); {
		if format[i] == '[' {
			if end := strings.IndexByte(format[i+1:], ']'); end >= 0 {
				lit.WriteString(format[i+1 : i+1+end])
				i += end + 2
				continue
			}
		}
		matched := ""
		for _, f := range formatFields {
			if strings.HasPrefix(format[i:], f) {
				matched = f
				break
			}
		}
		if matched == "" {
			lit.WriteByte(format[i])
			i++
			continue
		}
		flush()
		tokens = append(tokens, token{field: matched})
		i += len(matched)
	}
	flush()
	return tokens
}

// GoLayout converts a moment-style format ("YYYY-MM-DD HH") into a Go
// reference layout ("2006-01-02 15").
func GoLayout(format string) string {
	var b strings.Builder
	for _, tok := range tokenize(format) {
		if tok.field != "" {
			b.WriteString(goLayoutFor[tok.field])
			continue
		}
		b.WriteString(tok.literal)
	}
	return b.String()
}

// ParseDate parses value as UTC using the moment-style format. When the
// format does not match it falls back to common ISO layouts so that dates
// written with more or less precision than the format still load.
func ParseDate(value, format string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	if format == "" {
		format = DefaultDateFormat
	}
	if t, err := time.ParseInLocation(GoLayout(format), value, time.UTC); err == nil {
		return t.UTC(), true
	}
	for _, layout := range fallbackLayouts {
		if t, err := time.ParseInLocation(layout, value, time.UTC); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// FormatDate renders t in UTC using the moment-style format.
func FormatDate(t time.Time, format string) string {
	if format == "" {
		format = DefaultDateFormat
	}
	t = t.UTC()
	var b strings.Builder
	for _, tok := range tokenize(format) {
		switch tok.field {
		case "":
			b.WriteString(tok.literal)
		case "YYYY":
			b.WriteString(strconv.Itoa(t.Year()))
		case "YY":
			b.WriteString(pad2(t.Year() % 100))
		case "MMMM":
			b.WriteString(t.Month().String())
		case "MMM":
			b.WriteString(t.Month().String()[:3])
		case "MM":
			b.WriteString(pad2(int(t.Month())))
		case "M":
			b.WriteString(strconv.Itoa(int(t.Month())))
		case "DD":
			b.WriteString(pad2(t.Day()))
		case "D":
			b.WriteString(strconv.Itoa(t.Day()))
		case "HH":
			b.WriteString(pad2(t.Hour()))
		case "H":
			b.WriteString(strconv.Itoa(t.Hour()))
		case "mm":
			b.WriteString(pad2(t.Minute()))
		case "m":
			b.WriteString(strconv.Itoa(t.Minute()))
		case "ss":
			b.WriteString(pad2(t.Second()))
		case "s":
			b.WriteString(strconv.Itoa(t.Second()))
		}
	}
	return b.String()
}

func pad2(n int) string {
	if n < 10 && n >= 0 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}

// DaysInMonth returns the number of days in t's month.
func DaysInMonth(t time.Time) int {
	t = t.UTC()
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// StartOf floors t to the start of its day, month or year.
func StartOf(t time.Time, unit Unit) time.Time {
	t = t.UTC()
	switch unit {
	case UnitYear:
		return time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	case UnitMonth:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	default:
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	}
}

// Add moves t by n calendar units.
func Add(t time.Time, n int, unit Unit) time.Time {
	switch unit {
	case UnitYear:
		return t.AddDate(n, 0, 0)
	case UnitMonth:
		return t.AddDate(0, n, 0)
	default:
		return t.AddDate(0, 0, n)
	}
}

// AddHours adds a possibly fractional number of hours, rounded to the second.
func AddHours(t time.Time, hours float64) time.Time {
	return t.Add(time.Duration(hours * float64(time.Hour))).Round(time.Second)
}

// HoursBetween returns b-a in fractional hours.
func HoursBetween(a, b time.Time) float64 {
	return b.Sub(a).Hours()
}

// StartOfToday returns midnight UTC of now's date.
func StartOfToday(now time.Time) time.Time {
	return StartOf(now, UnitDay)
}
