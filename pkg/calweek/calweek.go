package calweek

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	ErrMalformedLabel = errors.New("malformed day label")
	ErrUnknownMonth   = errors.New("unknown month name")
)

// DayLabel is a weekday name with its display date, e.g. {"Lundi", "15 avril"}.
// The date string carries no year; use ResolveDateFromLabel with an anchor
// year to get the concrete date back.
type DayLabel struct {
	Day  string
	Date string
}

// WeekNumber identifies a calendar week by its ISO-8601 year and week number.
type WeekNumber struct {
	Year int
	Week int
}

var weekdayNames = [5]string{"Lundi", "Mardi", "Mercredi", "Jeudi", "Vendredi"}

var monthNames = [12]string{
	"janvier", "février", "mars", "avril", "mai", "juin",
	"juillet", "août", "septembre", "octobre", "novembre", "décembre",
}

// Weekdays returns the five weekday names, Monday first.
func Weekdays() [5]string {
	return weekdayNames
}

// MondayOfWeek returns the Monday of the week containing reference, shifted
// by weekOffset weeks. Weeks start on Monday; a Sunday reference belongs to
// the week that ends on it. The result is normalized to midnight so that
// adding whole days never drifts across DST changes.
func MondayOfWeek(reference time.Time, weekOffset int) time.Time {
	delta := (int(reference.Weekday()) + 6) % 7
	monday := reference.AddDate(0, 0, -delta+weekOffset*7)
	return time.Date(monday.Year(), monday.Month(), monday.Day(), 0, 0, 0, 0, reference.Location())
}

// WeekOf returns the ISO-8601 week identifier of the week containing the
// given Monday. This is the only week-numbering algorithm in the codebase:
// every stored week key comes from here.
func WeekOf(monday time.Time) WeekNumber {
	year, week := monday.ISOWeek()
	return WeekNumber{Year: year, Week: week}
}

// WeekDays returns the five weekday labels (Monday through Friday) for the
// week starting at monday, each with its French display date.
func WeekDays(monday time.Time) [5]DayLabel {
	var days [5]DayLabel
	for i := 0; i < 5; i++ {
		date := monday.AddDate(0, 0, i)
		days[i] = DayLabel{Day: weekdayNames[i], Date: FormatDayDate(date)}
	}
	return days
}

// FormatDayDate renders a date as its French display form, e.g. "15 avril".
func FormatDayDate(t time.Time) string {
	return fmt.Sprintf("%d %s", t.Day(), monthNames[int(t.Month())-1])
}

// ResolveDateFromLabel reconstructs a concrete date from a display date such
// as "15 avril". The label alone is ambiguous across years, so the caller
// must supply the anchor year. The result is at midnight UTC.
func ResolveDateFromLabel(dateLabel string, anchorYear int) (time.Time, error) {
	parts := strings.Fields(dateLabel)
	if len(parts) != 2 {
		return time.Time{}, fmt.Errorf("%w: %q", ErrMalformedLabel, dateLabel)
	}
	day, err := strconv.Atoi(parts[0])
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrMalformedLabel, dateLabel)
	}
	month := 0
	for i, name := range monthNames {
		if strings.EqualFold(parts[1], name) {
			month = i + 1
			break
		}
	}
	if month == 0 {
		return time.Time{}, fmt.Errorf("%w: %q", ErrUnknownMonth, parts[1])
	}
	return time.Date(anchorYear, time.Month(month), day, 0, 0, 0, 0, time.UTC), nil
}

// WeekNumberFromString parses the ISO 8601 week format, e.g. "2025-W03".
func WeekNumberFromString(isoWeekString string) (WeekNumber, error) {
	parts := strings.Split(isoWeekString, "-")
	if len(parts) != 2 || len(parts[1]) < 2 || parts[1][0] != 'W' {
		return WeekNumber{}, fmt.Errorf("invalid ISO week format: %s", isoWeekString)
	}
	year, err := strconv.Atoi(parts[0])
	if err != nil {
		return WeekNumber{}, fmt.Errorf("invalid year: %w", err)
	}
	week, err := strconv.Atoi(parts[1][1:])
	if err != nil {
		return WeekNumber{}, fmt.Errorf("invalid week: %w", err)
	}
	return WeekNumber{Year: year, Week: week}, nil
}

// Equal returns true when both the year and week match.
func (w WeekNumber) Equal(other WeekNumber) bool {
	return w.Year == other.Year && w.Week == other.Week
}

// Before reports whether w refers to a week that occurs before other.
func (w WeekNumber) Before(other WeekNumber) bool {
	if w.Year != other.Year {
		return w.Year < other.Year
	}
	return w.Week < other.Week
}

// After reports whether w refers to a week that occurs after other.
func (w WeekNumber) After(other WeekNumber) bool {
	if w.Year != other.Year {
		return w.Year > other.Year
	}
	return w.Week > other.Week
}

// String returns the ISO week format ISO 8601 e.g. "2025-W03"
func (w WeekNumber) String() string {
	return fmt.Sprintf("%04d-W%02d", w.Year, w.Week)
}
