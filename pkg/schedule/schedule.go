package schedule

import (
	"time"

	"github.com/cantine/cantine/pkg/calweek"
)

// MealSnapshot is a copy of a catalog meal taken at assignment time. Catalog
// edits do not show up here until PropagateMealEdit rewrites the snapshot.
type MealSnapshot struct {
	Id          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ScheduledDay is one weekday of a stored weekly schedule. Date is the
// French display form ("15 avril"); ISODate carries the unambiguous
// YYYY-MM-DD date. Rows written before ISODate existed have it empty, in
// which case the date has to be reconstructed from the display label.
type ScheduledDay struct {
	Day         string         `json:"day"`
	Date        string         `json:"date"`
	ISODate     string         `json:"isoDate,omitempty"`
	Meals       []MealSnapshot `json:"meals"`
	IsHoliday   bool           `json:"isHoliday,omitempty"`
	HolidayName string         `json:"holidayName,omitempty"`
}

// ResolvedDate returns the day's concrete date. It prefers the structured
// ISODate and falls back to parsing the display label with the supplied
// anchor year for rows that predate ISODate.
func (d ScheduledDay) ResolvedDate(anchorYear int) (time.Time, error) {
	if d.ISODate != "" {
		return time.Parse("2006-01-02", d.ISODate)
	}
	return calweek.ResolveDateFromLabel(d.Date, anchorYear)
}

// WeeklySchedule holds the five weekdays of one calendar week.
type WeeklySchedule struct {
	Week calweek.WeekNumber `json:"week"`
	Days []ScheduledDay     `json:"days"`
}

// Day returns the schedule's day with the given weekday name.
func (s WeeklySchedule) Day(dayName string) (ScheduledDay, bool) {
	for _, d := range s.Days {
		if d.Day == dayName {
			return d, true
		}
	}
	return ScheduledDay{}, false
}
