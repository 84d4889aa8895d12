package selection

// Selection records one user's meal choice for a day of a week. At most one
// selection exists per (user, week, day); picking another meal overwrites
// the previous choice.
type Selection struct {
	Id      int
	UserId  int
	WeekKey string
	DayName string
	MealId  int
}

// SelectionDetails is a selection joined with its user and meal names, used
// by the admin overview and the CSV export.
type SelectionDetails struct {
	Selection
	UserName string
	MealName string
}
