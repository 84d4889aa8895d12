package policy

import (
	"testing"
	"time"

	"github.com/cantine/cantine/pkg/user"
	"github.com/stretchr/testify/assert"
)

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// 2025-06-10 is a Tuesday.
var tuesday = date(2025, time.June, 10)

func TestEditableForAdmin(t *testing.T) {
	assert.False(t, EditableForAdmin(date(2025, time.June, 10), tuesday, 0), "same day is locked")
	assert.False(t, EditableForAdmin(date(2025, time.June, 9), tuesday, 0), "past day is locked")
	assert.True(t, EditableForAdmin(date(2025, time.June, 11), tuesday, 0), "tomorrow is open")
	assert.True(t, EditableForAdmin(date(2025, time.June, 13), tuesday, 0))
	assert.True(t, EditableForAdmin(date(2025, time.June, 17), tuesday, 1))
}

func TestEditableForAdminPastWeekIsReadOnly(t *testing.T) {
	for day := 2; day <= 6; day++ {
		assert.False(t, EditableForAdmin(date(2025, time.June, day), tuesday, -1))
	}
	// A negative offset locks the week even if its days were somehow future.
	assert.False(t, EditableForAdmin(date(2025, time.June, 20), tuesday, -1))
}

func TestEditableForAdminIgnoresTimeOfDay(t *testing.T) {
	lateToday := time.Date(2025, time.June, 10, 23, 45, 0, 0, time.UTC)
	assert.True(t, EditableForAdmin(date(2025, time.June, 11), lateToday, 0))
	assert.False(t, EditableForAdmin(date(2025, time.June, 10), lateToday, 0))
}

func TestEditableForUser(t *testing.T) {
	assert.False(t, EditableForUser(date(2025, time.June, 10), tuesday), "same day is locked")
	assert.False(t, EditableForUser(date(2025, time.June, 9), tuesday), "past day is locked")
	assert.True(t, EditableForUser(date(2025, time.June, 11), tuesday), "rest of the current week is open")
	assert.True(t, EditableForUser(date(2025, time.June, 13), tuesday))
}

func TestEditableForUserNextWeekOpensOnThursday(t *testing.T) {
	nextMonday := date(2025, time.June, 16)

	wednesday := date(2025, time.June, 11)
	assert.False(t, EditableForUser(nextMonday, wednesday), "next week is still closed on Wednesday")

	thursday := date(2025, time.June, 12)
	assert.True(t, EditableForUser(nextMonday, thursday), "next week opens on Thursday")
	assert.True(t, EditableForUser(date(2025, time.June, 20), thursday), "next Friday too")

	sunday := date(2025, time.June, 15)
	assert.True(t, EditableForUser(nextMonday, sunday), "still open over the weekend")
}

func TestIsNextWeek(t *testing.T) {
	assert.False(t, IsNextWeek(date(2025, time.June, 13), tuesday), "current week Friday")
	assert.True(t, IsNextWeek(date(2025, time.June, 16), tuesday), "next Monday")
	assert.True(t, IsNextWeek(date(2025, time.June, 22), tuesday), "next Sunday")
	assert.False(t, IsNextWeek(date(2025, time.June, 23), tuesday), "the week after")
	assert.False(t, IsNextWeek(date(2025, time.June, 9), tuesday), "past Monday")
}

func TestThursdayOrLater(t *testing.T) {
	assert.False(t, ThursdayOrLater(date(2025, time.June, 9)), "Monday")
	assert.False(t, ThursdayOrLater(date(2025, time.June, 11)), "Wednesday")
	assert.True(t, ThursdayOrLater(date(2025, time.June, 12)), "Thursday")
	assert.True(t, ThursdayOrLater(date(2025, time.June, 14)), "Saturday")
	assert.True(t, ThursdayOrLater(date(2025, time.June, 15)), "Sunday")
}

func TestEditableDispatchesOnRole(t *testing.T) {
	nextMonday := date(2025, time.June, 16)
	assert.True(t, Editable(nextMonday, tuesday, user.RoleAdmin, 1))
	assert.False(t, Editable(nextMonday, tuesday, user.RoleUser, 1), "user waits for Thursday")
	assert.False(t, Editable(date(2025, time.June, 5), tuesday, user.RoleAdmin, -1))
}

func TestAvailabilityMessageForAdmin(t *testing.T) {
	assert.Equal(t, MsgWeekPast, AvailabilityMessage(date(2025, time.June, 5), tuesday, user.RoleAdmin, -1))
	assert.Equal(t, MsgEditable, AvailabilityMessage(date(2025, time.June, 11), tuesday, user.RoleAdmin, 0))
	assert.Equal(t, MsgTodayClosed, AvailabilityMessage(date(2025, time.June, 10), tuesday, user.RoleAdmin, 0))
	assert.Equal(t, MsgDayPast, AvailabilityMessage(date(2025, time.June, 9), tuesday, user.RoleAdmin, 0))
}

func TestAvailabilityMessageForUser(t *testing.T) {
	wednesday := date(2025, time.June, 11)
	thursday := date(2025, time.June, 12)
	nextMonday := date(2025, time.June, 16)

	assert.Equal(t, MsgEditable, AvailabilityMessage(date(2025, time.June, 12), wednesday, user.RoleUser, 0))
	assert.Equal(t, MsgTodayClosed, AvailabilityMessage(wednesday, wednesday, user.RoleUser, 0))
	assert.Equal(t, MsgDayPast, AvailabilityMessage(date(2025, time.June, 10), wednesday, user.RoleUser, 0))
	assert.Equal(t, MsgOpensThursday, AvailabilityMessage(nextMonday, wednesday, user.RoleUser, 1))
	assert.Equal(t, MsgEditableNextWeek, AvailabilityMessage(nextMonday, thursday, user.RoleUser, 1))
}
