package schedule

import (
	"context"
	"testing"
	"time"

	"github.com/cantine/cantine/internal/event_bus"
	"github.com/cantine/cantine/internal/utils"
	"github.com/cantine/cantine/pkg/calweek"
	"github.com/cantine/cantine/pkg/holiday"
	"github.com/cantine/cantine/pkg/meal"
	"github.com/cantine/cantine/pkg/policy"
	"github.com/cantine/cantine/pkg/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type replaceCall struct {
	weekKey   string
	dayName   string
	oldMealId int
	newMealId int
}

type deleteCall struct {
	weekKey string
	dayName string
	mealId  int
}

type selectionWriterStub struct {
	replaced []replaceCall
	deleted  []deleteCall
}

func (s *selectionWriterStub) ReplaceMeal(ctx context.Context, weekKey string, dayName string, oldMealId int, newMealId int) error {
	s.replaced = append(s.replaced, replaceCall{weekKey, dayName, oldMealId, newMealId})
	return nil
}

func (s *selectionWriterStub) DeleteForMeal(ctx context.Context, weekKey string, dayName string, mealId int) error {
	s.deleted = append(s.deleted, deleteCall{weekKey, dayName, mealId})
	return nil
}

type fixture struct {
	service    Service
	repo       *RepositoryStub
	meals      *meal.RepositoryStub
	holidays   *holiday.RepositoryStub
	selections *selectionWriterStub
	clock      *utils.MockClock
	bus        *event_bus.EventBus
}

// 2025-06-10 is a Tuesday; its week is 2025-W24 (Monday 2025-06-09).
var tuesday = time.Date(2025, time.June, 10, 9, 0, 0, 0, time.UTC)

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		repo:       NewRepositoryStub(),
		meals:      meal.NewRepositoryStub(),
		holidays:   holiday.NewRepositoryStub(),
		selections: &selectionWriterStub{},
		clock:      &utils.MockClock{FixedNow: tuesday},
		bus:        event_bus.NewEventBus(),
	}
	for _, name := range []string{"Poulet rôti", "Gratin dauphinois", "Poisson pané", "Lasagnes"} {
		_, err := f.meals.Create(context.Background(), meal.Meal{Name: name})
		require.NoError(t, err)
	}
	f.service = NewService(f.repo, f.meals, f.holidays, f.selections, f.clock, f.bus)
	return f
}

func adminCtx() context.Context {
	return user.WithUser(context.Background(), user.User{Id: 1, Name: "Chef", Role: user.RoleAdmin, Status: user.StatusApproved})
}

func userCtx() context.Context {
	return user.WithUser(context.Background(), user.User{Id: 2, Name: "Jean", Role: user.RoleUser, Status: user.StatusApproved})
}

func TestGetOrCreateGeneratesDeterministically(t *testing.T) {
	f := newFixture(t)

	schedule, err := f.service.GetOrCreate(adminCtx(), 0)
	require.NoError(t, err)

	assert.Equal(t, "2025-W24", schedule.Week.String())
	require.Len(t, schedule.Days, 5)
	assert.Equal(t, "Lundi", schedule.Days[0].Day)
	assert.Equal(t, "9 juin", schedule.Days[0].Date)
	assert.Equal(t, "2025-06-09", schedule.Days[0].ISODate)
	assert.Equal(t, "Vendredi", schedule.Days[4].Day)
	assert.Equal(t, "13 juin", schedule.Days[4].Date)

	// Round-robin over 4 meals, shifted by day index, 3 per day.
	ids := func(day ScheduledDay) []int {
		var out []int
		for _, m := range day.Meals {
			out = append(out, m.Id)
		}
		return out
	}
	assert.Equal(t, []int{1, 2, 3}, ids(schedule.Days[0]))
	assert.Equal(t, []int{2, 3, 4}, ids(schedule.Days[1]))
	assert.Equal(t, []int{3, 4, 1}, ids(schedule.Days[2]))
	assert.Equal(t, []int{4, 1, 2}, ids(schedule.Days[3]))
	assert.Equal(t, []int{1, 2, 3}, ids(schedule.Days[4]))
}

func TestGetOrCreateReturnsPersistedSchedule(t *testing.T) {
	f := newFixture(t)

	first, err := f.service.GetOrCreate(adminCtx(), 0)
	require.NoError(t, err)
	second, err := f.service.GetOrCreate(adminCtx(), 0)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	// A stored mutation survives later accesses: generation only happens
	// for never-seen weeks.
	first.Days[3].Meals = first.Days[3].Meals[:1]
	require.NoError(t, f.repo.Update(context.Background(), first))
	third, err := f.service.GetOrCreate(adminCtx(), 0)
	require.NoError(t, err)
	assert.Len(t, third.Days[3].Meals, 1)
}

func TestGetOrCreateSmallCatalog(t *testing.T) {
	f := newFixture(t)
	f.meals.Reset()
	_, err := f.meals.Create(context.Background(), meal.Meal{Name: "Plat unique"})
	require.NoError(t, err)

	schedule, err := f.service.GetOrCreate(adminCtx(), 0)
	require.NoError(t, err)
	for _, day := range schedule.Days {
		assert.Len(t, day.Meals, 1, "a day never lists the same meal twice")
	}
}

func TestGetOrCreateDecoratesHolidays(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.holidays.Create(context.Background(), holiday.Holiday{
		Id: "h1", Name: "Pont de juin", Date: time.Date(2025, time.June, 11, 0, 0, 0, 0, time.UTC),
	}))

	schedule, err := f.service.GetOrCreate(adminCtx(), 0)
	require.NoError(t, err)

	assert.True(t, schedule.Days[2].IsHoliday)
	assert.Equal(t, "Pont de juin", schedule.Days[2].HolidayName)
	for i, day := range schedule.Days {
		if i != 2 {
			assert.False(t, day.IsHoliday)
		}
	}
}

func TestAddMealToDay(t *testing.T) {
	f := newFixture(t)

	// Jeudi 2025-06-12 offers meals 4, 1, 2; meal 3 is free to add.
	schedule, err := f.service.AddMealToDay(adminCtx(), 0, "Jeudi", 3)
	require.NoError(t, err)

	day, ok := schedule.Day("Jeudi")
	require.True(t, ok)
	require.Len(t, day.Meals, 4)
	assert.Equal(t, MealSnapshot{Id: 3, Name: "Poisson pané"}, day.Meals[3])

	persisted, err := f.repo.Get(context.Background(), "2025-W24")
	require.NoError(t, err)
	assert.Equal(t, schedule.Days, persisted.Days)
}

func TestAddMealAlreadyPlanned(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.AddMealToDay(adminCtx(), 0, "Jeudi", 4)
	assert.ErrorIs(t, err, ErrMealAlreadyPlanned)
}

func TestAddMealUnknownDay(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.AddMealToDay(adminCtx(), 0, "Dimanche", 1)
	assert.ErrorIs(t, err, ErrDayNotFound)
}

func TestMutationRefusedOnPastDay(t *testing.T) {
	f := newFixture(t)

	// Lundi 2025-06-09 is already over on Tuesday.
	_, err := f.service.AddMealToDay(adminCtx(), 0, "Lundi", 4)
	require.ErrorIs(t, err, ErrDayNotEditable)
	assert.Equal(t, policy.MsgDayPast, err.Error())

	// Same day is locked too, with its own message.
	_, err = f.service.AddMealToDay(adminCtx(), 0, "Mardi", 4)
	require.ErrorIs(t, err, ErrDayNotEditable)
	assert.Equal(t, policy.MsgTodayClosed, err.Error())
}

func TestMutationRefusedOnPastWeek(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.AddMealToDay(adminCtx(), -1, "Jeudi", 1)
	require.ErrorIs(t, err, ErrDayNotEditable)
	assert.Equal(t, policy.MsgWeekPast, err.Error())
}

func TestMutationRefusedOnHoliday(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.holidays.Create(context.Background(), holiday.Holiday{
		Id: "h1", Name: "Pont de juin", Date: time.Date(2025, time.June, 12, 0, 0, 0, 0, time.UTC),
	}))

	_, err := f.service.AddMealToDay(adminCtx(), 0, "Jeudi", 3)
	require.ErrorIs(t, err, ErrDayNotEditable)
	assert.Contains(t, err.Error(), "Jour férié")
	assert.Contains(t, err.Error(), "Pont de juin")
}

func TestUserNextWeekOpensOnThursday(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.AddMealToDay(userCtx(), 1, "Lundi", 4)
	require.ErrorIs(t, err, ErrDayNotEditable)
	assert.Equal(t, policy.MsgOpensThursday, err.Error())

	f.clock.SetNow(time.Date(2025, time.June, 12, 9, 0, 0, 0, time.UTC))
	_, err = f.service.AddMealToDay(userCtx(), 1, "Lundi", 4)
	assert.NoError(t, err)
}

func TestReplaceMealRewritesSelections(t *testing.T) {
	f := newFixture(t)

	schedule, err := f.service.ReplaceMealInDay(adminCtx(), 0, "Jeudi", 1, 3)
	require.NoError(t, err)

	day, ok := schedule.Day("Jeudi")
	require.True(t, ok)
	ids := []int{day.Meals[0].Id, day.Meals[1].Id, day.Meals[2].Id}
	assert.Equal(t, []int{4, 3, 2}, ids, "the replacement takes the old meal's slot")

	require.Len(t, f.selections.replaced, 1)
	assert.Equal(t, replaceCall{"2025-W24", "Jeudi", 1, 3}, f.selections.replaced[0])
}

func TestReplaceMealNotPlanned(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.ReplaceMealInDay(adminCtx(), 0, "Jeudi", 3, 1)
	assert.ErrorIs(t, err, ErrMealNotPlanned)
	assert.Empty(t, f.selections.replaced)
}

func TestRemoveMealCascadesToSelections(t *testing.T) {
	f := newFixture(t)

	schedule, err := f.service.RemoveMealFromDay(adminCtx(), 0, "Jeudi", 1)
	require.NoError(t, err)

	day, ok := schedule.Day("Jeudi")
	require.True(t, ok)
	require.Len(t, day.Meals, 2)
	assert.Equal(t, 4, day.Meals[0].Id)
	assert.Equal(t, 2, day.Meals[1].Id)

	require.Len(t, f.selections.deleted, 1)
	assert.Equal(t, deleteCall{"2025-W24", "Jeudi", 1}, f.selections.deleted[0])
}

func christmasWeeks() (WeeklySchedule, WeeklySchedule) {
	// A row written before ISODate existed: display label only.
	legacy := WeeklySchedule{
		Week: calweek.WeekNumber{Year: 2024, Week: 52},
		Days: []ScheduledDay{
			{Day: "Lundi", Date: "23 décembre", Meals: []MealSnapshot{}},
			{Day: "Mardi", Date: "24 décembre", Meals: []MealSnapshot{}},
			{Day: "Mercredi", Date: "25 décembre", Meals: []MealSnapshot{{Id: 1, Name: "Poulet rôti"}}},
			{Day: "Jeudi", Date: "26 décembre", Meals: []MealSnapshot{}},
			{Day: "Vendredi", Date: "27 décembre", Meals: []MealSnapshot{}},
		},
	}
	structured := WeeklySchedule{
		Week: calweek.WeekNumber{Year: 2025, Week: 52},
		Days: []ScheduledDay{
			{Day: "Lundi", Date: "22 décembre", ISODate: "2025-12-22", Meals: []MealSnapshot{}},
			{Day: "Mardi", Date: "23 décembre", ISODate: "2025-12-23", Meals: []MealSnapshot{}},
			{Day: "Mercredi", Date: "24 décembre", ISODate: "2025-12-24", Meals: []MealSnapshot{}},
			{Day: "Jeudi", Date: "25 décembre", ISODate: "2025-12-25", Meals: []MealSnapshot{}},
			{Day: "Vendredi", Date: "26 décembre", ISODate: "2025-12-26", Meals: []MealSnapshot{}},
		},
	}
	return legacy, structured
}

func TestHolidayCreatedFlagsMatchingDaysAcrossYears(t *testing.T) {
	f := newFixture(t)
	legacy, structured := christmasWeeks()
	f.repo.Seed(legacy)
	f.repo.Seed(structured)

	noel := event_bus.HolidayCreated{
		Id: "h1", Name: "Noël",
		Date:      time.Date(2024, time.December, 25, 0, 0, 0, 0, time.UTC),
		Recurring: true,
	}
	require.NoError(t, f.bus.Publish(event_bus.NewEvent(adminCtx(), event_bus.HolidayCreatedEvent, noel)))

	got2024, err := f.repo.Get(context.Background(), "2024-W52")
	require.NoError(t, err)
	assert.True(t, got2024.Days[2].IsHoliday, "legacy label-only row matched via the anchor year")
	assert.Equal(t, "Noël", got2024.Days[2].HolidayName)

	got2025, err := f.repo.Get(context.Background(), "2025-W52")
	require.NoError(t, err)
	assert.True(t, got2025.Days[3].IsHoliday, "structured row matched in a different year")
	assert.Equal(t, "Noël", got2025.Days[3].HolidayName)

	for _, schedule := range []WeeklySchedule{got2024, got2025} {
		flagged := 0
		for _, day := range schedule.Days {
			if day.IsHoliday {
				flagged++
			}
		}
		assert.Equal(t, 1, flagged, "only the 25 décembre day is flagged")
	}
}

func TestApplyHolidayCreatedIsIdempotent(t *testing.T) {
	f := newFixture(t)
	legacy, _ := christmasWeeks()
	f.repo.Seed(legacy)

	noel := holiday.Holiday{
		Id: "h1", Name: "Noël",
		Date:      time.Date(2024, time.December, 25, 0, 0, 0, 0, time.UTC),
		Recurring: true,
	}
	require.NoError(t, f.service.ApplyHolidayCreated(adminCtx(), noel))
	once, err := f.repo.Get(context.Background(), "2024-W52")
	require.NoError(t, err)

	require.NoError(t, f.service.ApplyHolidayCreated(adminCtx(), noel))
	twice, err := f.repo.Get(context.Background(), "2024-W52")
	require.NoError(t, err)
	assert.Equal(t, once, twice)
}

func TestHolidayRemovedClearsOnlyItsOwnFlags(t *testing.T) {
	f := newFixture(t)
	legacy, structured := christmasWeeks()
	legacy.Days[2].IsHoliday = true
	legacy.Days[2].HolidayName = "Noël"
	structured.Days[3].IsHoliday = true
	structured.Days[3].HolidayName = "Noël"
	structured.Days[4].IsHoliday = true
	structured.Days[4].HolidayName = "Fermeture annuelle"
	f.repo.Seed(legacy)
	f.repo.Seed(structured)

	deleted := event_bus.HolidayDeleted{
		Id: "h1", Name: "Noël",
		Date:      time.Date(2024, time.December, 25, 0, 0, 0, 0, time.UTC),
		Recurring: true,
	}
	require.NoError(t, f.bus.Publish(event_bus.NewEvent(adminCtx(), event_bus.HolidayDeletedEvent, deleted)))

	got2024, err := f.repo.Get(context.Background(), "2024-W52")
	require.NoError(t, err)
	assert.False(t, got2024.Days[2].IsHoliday)
	assert.Empty(t, got2024.Days[2].HolidayName)

	got2025, err := f.repo.Get(context.Background(), "2025-W52")
	require.NoError(t, err)
	assert.False(t, got2025.Days[3].IsHoliday)
	assert.True(t, got2025.Days[4].IsHoliday, "an unrelated holiday keeps its flag")
	assert.Equal(t, "Fermeture annuelle", got2025.Days[4].HolidayName)
}

func TestMealEditPropagatesToSnapshots(t *testing.T) {
	f := newFixture(t)
	_, err := f.service.GetOrCreate(adminCtx(), 0)
	require.NoError(t, err)
	_, err = f.service.GetOrCreate(adminCtx(), 1)
	require.NoError(t, err)

	edit := event_bus.MealUpdated{Id: 1, Name: "Poulet basquaise", Description: "Riz blanc"}
	require.NoError(t, f.bus.Publish(event_bus.NewEvent(adminCtx(), event_bus.MealUpdatedEvent, edit)))

	schedules, err := f.repo.GetAll(context.Background())
	require.NoError(t, err)
	require.Len(t, schedules, 2)
	seen := 0
	for _, schedule := range schedules {
		for _, day := range schedule.Days {
			for _, snapshot := range day.Meals {
				if snapshot.Id == 1 {
					seen++
					assert.Equal(t, "Poulet basquaise", snapshot.Name)
					assert.Equal(t, "Riz blanc", snapshot.Description)
				}
			}
		}
	}
	assert.Greater(t, seen, 0)
}

func TestGetDay(t *testing.T) {
	f := newFixture(t)

	day, date, err := f.service.GetDay(adminCtx(), 0, "Mercredi")
	require.NoError(t, err)
	assert.Equal(t, "Mercredi", day.Day)
	assert.Equal(t, "11 juin", day.Date)
	assert.Equal(t, time.Date(2025, time.June, 11, 0, 0, 0, 0, time.UTC), date)

	_, _, err = f.service.GetDay(adminCtx(), 0, "Samedi")
	assert.ErrorIs(t, err, ErrDayNotFound)
}
