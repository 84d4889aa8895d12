package meal

// Meal is a catalog entry. Schedules and selections reference it by id;
// scheduled days additionally keep a snapshot of name and description taken
// at assignment time.
type Meal struct {
	Id          int
	Name        string
	Description string
}
