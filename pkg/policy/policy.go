// Package policy decides whether a scheduled day may currently be edited.
// All functions are pure: the caller supplies the resolved day date and
// "today", so decisions are reproducible in tests. Holiday closures are not
// known here; callers combine the day's holiday flag with these rules.
package policy

import (
	"time"

	"github.com/cantine/cantine/pkg/calweek"
	"github.com/cantine/cantine/pkg/user"
)

const (
	MsgEditable         = "Vous pouvez sélectionner ou modifier ce repas"
	MsgEditableNextWeek = "Vous pouvez sélectionner ce repas pour la semaine prochaine"
	MsgTodayClosed      = "Les sélections pour aujourd'hui sont fermées"
	MsgOpensThursday    = "Les sélections pour la semaine prochaine seront disponibles à partir de jeudi"
	MsgDayPast          = "Ce jour est passé, les sélections sont fermées"
	MsgWeekPast         = "Cette semaine est passée, les modifications sont fermées"
)

// ThursdayOrLater reports whether today's weekday is Thursday, Friday,
// Saturday or Sunday, the window during which next week opens for regular
// users.
func ThursdayOrLater(today time.Time) bool {
	switch today.Weekday() {
	case time.Thursday, time.Friday, time.Saturday, time.Sunday:
		return true
	default:
		return false
	}
}

// IsNextWeek reports whether date falls in the 7-day window starting the
// Monday after today's week.
func IsNextWeek(date time.Time, today time.Time) bool {
	nextMonday := calweek.MondayOfWeek(today, 1)
	d := midnight(date)
	return !d.Before(nextMonday) && d.Before(nextMonday.AddDate(0, 0, 7))
}

// EditableForAdmin reports whether an admin may change a day's meals. Past
// weeks are entirely read-only, and within the current or a future week only
// days strictly after today are open.
func EditableForAdmin(date time.Time, today time.Time, weekOffset int) bool {
	if weekOffset < 0 {
		return false
	}
	return midnight(date).After(midnight(today))
}

// EditableForUser reports whether a regular user may change their selection
// for a day. Days in next week open on Thursday of the current week; all
// other days are open when strictly in the future. There is no weekOffset
// lower bound for users.
func EditableForUser(date time.Time, today time.Time) bool {
	if IsNextWeek(date, today) {
		return ThursdayOrLater(today)
	}
	return midnight(date).After(midnight(today))
}

// Editable dispatches to the role-specific rule.
func Editable(date time.Time, today time.Time, role user.Role, weekOffset int) bool {
	if role == user.RoleAdmin {
		return EditableForAdmin(date, today, weekOffset)
	}
	return EditableForUser(date, today)
}

// AvailabilityMessage explains the Editable decision in user-facing terms.
func AvailabilityMessage(date time.Time, today time.Time, role user.Role, weekOffset int) string {
	if role == user.RoleAdmin {
		return availabilityMessageForAdmin(date, today, weekOffset)
	}
	return availabilityMessageForUser(date, today)
}

func availabilityMessageForAdmin(date time.Time, today time.Time, weekOffset int) string {
	if weekOffset < 0 {
		return MsgWeekPast
	}
	if EditableForAdmin(date, today, weekOffset) {
		return MsgEditable
	}
	if sameDay(date, today) {
		return MsgTodayClosed
	}
	return MsgDayPast
}

func availabilityMessageForUser(date time.Time, today time.Time) string {
	if EditableForUser(date, today) {
		if IsNextWeek(date, today) && ThursdayOrLater(today) {
			return MsgEditableNextWeek
		}
		return MsgEditable
	}
	if sameDay(date, today) {
		return MsgTodayClosed
	}
	if IsNextWeek(date, today) && !ThursdayOrLater(today) {
		return MsgOpensThursday
	}
	return MsgDayPast
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}
