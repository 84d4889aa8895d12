package holiday

import "time"

// Holiday is a closed day of the cantine. Recurring holidays match on day
// and month every year; non-recurring holidays match one exact date only.
type Holiday struct {
	Id        string
	Name      string
	Date      time.Time
	Recurring bool
}

// Matches reports whether the given date falls on this holiday.
func (h Holiday) Matches(date time.Time) bool {
	if h.Date.Day() != date.Day() || h.Date.Month() != date.Month() {
		return false
	}
	return h.Recurring || h.Date.Year() == date.Year()
}

// IsHoliday reports whether date falls on any of the given holidays.
func IsHoliday(date time.Time, holidays []Holiday) bool {
	_, ok := FirstMatch(date, holidays)
	return ok
}

// FirstMatch returns the first holiday in slice order that matches date.
// When a recurring and a one-off holiday both fall on the same date the
// earlier entry wins; the set is assumed to contain no same-day conflicts.
func FirstMatch(date time.Time, holidays []Holiday) (Holiday, bool) {
	for _, h := range holidays {
		if h.Matches(date) {
			return h, true
		}
	}
	return Holiday{}, false
}

// EasterSunday computes the date of Easter Sunday for the given year using
// the anonymous Gregorian algorithm (Meeus/Jones/Butcher). Exact for any
// year from 1583 on.
func EasterSunday(year int) time.Time {
	a := year % 19
	b := year / 100
	c := year % 100
	d := b / 4
	e := b % 4
	f := (b + 8) / 25
	g := (b - f + 1) / 3
	h := (19*a + b - d - g + 15) % 30
	i := c / 4
	k := c % 4
	l := (32 + 2*e + 2*i - h - k) % 7
	m := (a + 11*h + 22*l) / 451
	month := (h + l - 7*m + 114) / 31
	day := (h+l-7*m+114)%31 + 1

	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}

// NationalHolidays returns the French national holidays for a year. Fixed
// holidays are recurring; the Easter-relative ones are not, since their day
// and month shift from year to year.
func NationalHolidays(year int) []Holiday {
	date := func(month time.Month, day int) time.Time {
		return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	}

	easter := EasterSunday(year)

	return []Holiday{
		{Name: "Jour de l'An", Date: date(time.January, 1), Recurring: true},
		{Name: "Fête du Travail", Date: date(time.May, 1), Recurring: true},
		{Name: "Victoire 1945", Date: date(time.May, 8), Recurring: true},
		{Name: "Fête Nationale", Date: date(time.July, 14), Recurring: true},
		{Name: "Assomption", Date: date(time.August, 15), Recurring: true},
		{Name: "Toussaint", Date: date(time.November, 1), Recurring: true},
		{Name: "Armistice 1918", Date: date(time.November, 11), Recurring: true},
		{Name: "Noël", Date: date(time.December, 25), Recurring: true},
		{Name: "Lundi de Pâques", Date: easter.AddDate(0, 0, 1), Recurring: false},
		{Name: "Ascension", Date: easter.AddDate(0, 0, 39), Recurring: false},
		{Name: "Lundi de Pentecôte", Date: easter.AddDate(0, 0, 50), Recurring: false},
	}
}
