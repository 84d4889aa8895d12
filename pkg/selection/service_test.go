package selection

import (
	"context"
	"testing"
	"time"

	"github.com/cantine/cantine/internal/utils"
	"github.com/cantine/cantine/pkg/policy"
	"github.com/cantine/cantine/pkg/schedule"
	"github.com/cantine/cantine/pkg/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 2025-06-10 is a Tuesday; its week is 2025-W24.
var tuesday = time.Date(2025, time.June, 10, 9, 0, 0, 0, time.UTC)

type dayReaderStub struct {
	days  map[string]schedule.ScheduledDay
	dates map[string]time.Time
}

func (d *dayReaderStub) GetDay(ctx context.Context, weekOffset int, dayName string) (schedule.ScheduledDay, time.Time, error) {
	day, ok := d.days[dayName]
	if !ok {
		return schedule.ScheduledDay{}, time.Time{}, schedule.ErrDayNotFound
	}
	return day, d.dates[dayName], nil
}

type fixture struct {
	service *ServiceImpl
	repo    *RepositoryStub
	days    *dayReaderStub
	clock   *utils.MockClock
}

func newFixture() *fixture {
	days := &dayReaderStub{
		days: map[string]schedule.ScheduledDay{
			"Lundi": {Day: "Lundi", Date: "9 juin", ISODate: "2025-06-09",
				Meals: []schedule.MealSnapshot{{Id: 1, Name: "Poulet rôti"}}},
			"Mercredi": {Day: "Mercredi", Date: "11 juin", ISODate: "2025-06-11",
				Meals: []schedule.MealSnapshot{{Id: 1, Name: "Poulet rôti"}, {Id: 2, Name: "Gratin dauphinois"}}},
			"Jeudi": {Day: "Jeudi", Date: "12 juin", ISODate: "2025-06-12",
				IsHoliday: true, HolidayName: "Pont de juin",
				Meals: []schedule.MealSnapshot{{Id: 1, Name: "Poulet rôti"}}},
		},
		dates: map[string]time.Time{
			"Lundi":    time.Date(2025, time.June, 9, 0, 0, 0, 0, time.UTC),
			"Mercredi": time.Date(2025, time.June, 11, 0, 0, 0, 0, time.UTC),
			"Jeudi":    time.Date(2025, time.June, 12, 0, 0, 0, 0, time.UTC),
		},
	}
	repo := NewRepositoryStub()
	clock := &utils.MockClock{FixedNow: tuesday}
	return &fixture{
		service: NewService(repo, days, clock),
		repo:    repo,
		days:    days,
		clock:   clock,
	}
}

func userCtx(id int) context.Context {
	return user.WithUser(context.Background(), user.User{Id: id, Name: "Jean", Role: user.RoleUser, Status: user.StatusApproved})
}

func TestSelectMeal(t *testing.T) {
	f := newFixture()

	selection, err := f.service.Select(userCtx(2), 0, "Mercredi", 1)
	require.NoError(t, err)
	assert.Equal(t, Selection{Id: 1, UserId: 2, WeekKey: "2025-W24", DayName: "Mercredi", MealId: 1}, selection)
}

func TestSelectMealOverwritesPreviousChoice(t *testing.T) {
	f := newFixture()

	first, err := f.service.Select(userCtx(2), 0, "Mercredi", 1)
	require.NoError(t, err)
	second, err := f.service.Select(userCtx(2), 0, "Mercredi", 2)
	require.NoError(t, err)
	assert.Equal(t, first.Id, second.Id, "the choice is replaced, not duplicated")

	selections, err := f.service.ListForCurrentUser(userCtx(2), 0)
	require.NoError(t, err)
	require.Len(t, selections, 1)
	assert.Equal(t, 2, selections[0].MealId)
}

func TestSelectMealNotOffered(t *testing.T) {
	f := newFixture()

	_, err := f.service.Select(userCtx(2), 0, "Mercredi", 99)
	assert.ErrorIs(t, err, ErrMealNotOffered)
}

func TestSelectOnHoliday(t *testing.T) {
	f := newFixture()

	_, err := f.service.Select(userCtx(2), 0, "Jeudi", 1)
	require.ErrorIs(t, err, schedule.ErrDayNotEditable)
	assert.Contains(t, err.Error(), "Jour férié")
	assert.Contains(t, err.Error(), "Pont de juin")
}

func TestSelectOnPastDay(t *testing.T) {
	f := newFixture()

	_, err := f.service.Select(userCtx(2), 0, "Lundi", 1)
	require.ErrorIs(t, err, schedule.ErrDayNotEditable)
	assert.Equal(t, policy.MsgDayPast, err.Error())
}

func TestSelectWithoutUser(t *testing.T) {
	f := newFixture()

	_, err := f.service.Select(context.Background(), 0, "Mercredi", 1)
	assert.ErrorIs(t, err, user.ErrNoUser)
}

func TestUnselectMeal(t *testing.T) {
	f := newFixture()

	_, err := f.service.Select(userCtx(2), 0, "Mercredi", 1)
	require.NoError(t, err)

	require.NoError(t, f.service.Unselect(userCtx(2), 0, "Mercredi"))

	selections, err := f.service.ListForCurrentUser(userCtx(2), 0)
	require.NoError(t, err)
	assert.Empty(t, selections)
}

func TestUnselectWithoutSelection(t *testing.T) {
	f := newFixture()

	err := f.service.Unselect(userCtx(2), 0, "Mercredi")
	assert.ErrorIs(t, err, ErrSelectionNotFound)
}

func TestListForCurrentUserIsScopedToUser(t *testing.T) {
	f := newFixture()

	_, err := f.service.Select(userCtx(2), 0, "Mercredi", 1)
	require.NoError(t, err)
	_, err = f.service.Select(userCtx(3), 0, "Mercredi", 2)
	require.NoError(t, err)

	selections, err := f.service.ListForCurrentUser(userCtx(2), 0)
	require.NoError(t, err)
	require.Len(t, selections, 1)
	assert.Equal(t, 2, selections[0].UserId)
}

func TestExportWeekCSV(t *testing.T) {
	f := newFixture()
	f.repo.SetNames(
		map[int]string{2: "Jean", 3: "Amélie"},
		map[int]string{1: "Poulet rôti", 2: "Gratin dauphinois"},
	)

	_, err := f.service.Select(userCtx(2), 0, "Mercredi", 1)
	require.NoError(t, err)
	_, err = f.service.Select(userCtx(3), 0, "Mercredi", 2)
	require.NoError(t, err)

	csvData, err := f.service.ExportWeekCSV(userCtx(2), 0)
	require.NoError(t, err)

	expected := "Semaine 2025-W24,Lundi,Mardi,Mercredi,Jeudi,Vendredi\n" +
		"Amélie,,,Gratin dauphinois,,\n" +
		"Jean,,,Poulet rôti,,\n"
	assert.Equal(t, expected, csvData)
}
