package event_bus

import "time"

const (
	HolidayCreatedEvent EventType = "holiday.created"
	HolidayDeletedEvent EventType = "holiday.deleted"
	MealUpdatedEvent    EventType = "meal.updated"
)

// HolidayCreated is published after a holiday has been persisted. The weekly
// schedule service reacts by flagging matching days in every stored week.
type HolidayCreated struct {
	Id        string
	Name      string
	Date      time.Time
	Recurring bool
}

// HolidayDeleted is published after a holiday has been removed. It carries
// the full holiday so subscribers can still match against its date and name.
type HolidayDeleted struct {
	Id        string
	Name      string
	Date      time.Time
	Recurring bool
}

// MealUpdated is published after a catalog meal has been renamed or its
// description changed. Schedules keep snapshot copies of meals, so the
// schedule service rewrites every snapshot referencing the meal.
type MealUpdated struct {
	Id          int
	Name        string
	Description string
}
