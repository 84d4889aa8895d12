package schedule

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cantine/cantine/internal/event_bus"
	"github.com/cantine/cantine/internal/utils"
	"github.com/cantine/cantine/pkg/calweek"
	"github.com/cantine/cantine/pkg/holiday"
	"github.com/cantine/cantine/pkg/meal"
	"github.com/cantine/cantine/pkg/policy"
	"github.com/cantine/cantine/pkg/user"
	log "github.com/sirupsen/logrus"
)

var ErrDayNotFound = errors.New("day not found in schedule")
var ErrMealNotPlanned = errors.New("meal is not planned for this day")
var ErrMealAlreadyPlanned = errors.New("meal is already planned for this day")
var ErrDayNotEditable = errors.New("day is not editable")

// NotEditableError rejects a mutation against a locked day. Reason carries
// the user-facing explanation; errors.Is(err, ErrDayNotEditable) matches it.
type NotEditableError struct {
	Reason string
}

func (e *NotEditableError) Error() string {
	return e.Reason
}

func (e *NotEditableError) Is(target error) bool {
	return target == ErrDayNotEditable
}

// mealsPerDay is how many catalog meals a generated day offers.
const mealsPerDay = 3

type Service interface {
	// GetOrCreate returns the schedule for the week at the given offset
	// from the current week, generating and persisting a default one on
	// first access.
	GetOrCreate(ctx context.Context, weekOffset int) (WeeklySchedule, error)
	// GetDay returns one day of the week at the given offset along with
	// its resolved calendar date.
	GetDay(ctx context.Context, weekOffset int, dayName string) (ScheduledDay, time.Time, error)
	AddMealToDay(ctx context.Context, weekOffset int, dayName string, mealId int) (WeeklySchedule, error)
	// ReplaceMealInDay swaps a planned meal for another one and rewrites
	// user selections pointing at the old meal so they follow the swap.
	ReplaceMealInDay(ctx context.Context, weekOffset int, dayName string, oldMealId int, newMealId int) (WeeklySchedule, error)
	// RemoveMealFromDay removes a planned meal and deletes user selections
	// referencing it for that day and week.
	RemoveMealFromDay(ctx context.Context, weekOffset int, dayName string, mealId int) (WeeklySchedule, error)
	ApplyHolidayCreated(ctx context.Context, h holiday.Holiday) error
	ApplyHolidayRemoved(ctx context.Context, holidayName string) error
	PropagateMealEdit(ctx context.Context, mealId int, name string, description string) error
}

// MealCatalog is the slice of the meal service the scheduler needs.
type MealCatalog interface {
	List(ctx context.Context) ([]meal.Meal, error)
	Get(ctx context.Context, id int) (meal.Meal, error)
}

// HolidayReader provides the holiday set used to decorate generated days.
type HolidayReader interface {
	List(ctx context.Context) ([]holiday.Holiday, error)
}

// SelectionWriter is implemented by the selection repository. The scheduler
// calls it to keep selections consistent with plan mutations.
type SelectionWriter interface {
	ReplaceMeal(ctx context.Context, weekKey string, dayName string, oldMealId int, newMealId int) error
	DeleteForMeal(ctx context.Context, weekKey string, dayName string, mealId int) error
}

type ServiceImpl struct {
	repo       Repository
	catalog    MealCatalog
	holidays   HolidayReader
	selections SelectionWriter
	clock      utils.Clock
	eventBus   *event_bus.EventBus
}

func NewService(
	repo Repository,
	catalog MealCatalog,
	holidays HolidayReader,
	selections SelectionWriter,
	clock utils.Clock,
	eventBus *event_bus.EventBus,
) Service {
	service := &ServiceImpl{repo, catalog, holidays, selections, clock, eventBus}
	event_bus.SubscribeTyped[event_bus.HolidayCreated](
		eventBus,
		event_bus.HolidayCreatedEvent,
		func(e event_bus.EventT[event_bus.HolidayCreated]) error {
			log.Debugf("received holiday created event: %v", e)
			return service.ApplyHolidayCreated(e.Context(), holiday.Holiday{
				Id:        e.Data.Id,
				Name:      e.Data.Name,
				Date:      e.Data.Date,
				Recurring: e.Data.Recurring,
			})
		},
	)
	event_bus.SubscribeTyped[event_bus.HolidayDeleted](
		eventBus,
		event_bus.HolidayDeletedEvent,
		func(e event_bus.EventT[event_bus.HolidayDeleted]) error {
			log.Debugf("received holiday deleted event: %v", e)
			return service.ApplyHolidayRemoved(e.Context(), e.Data.Name)
		},
	)
	event_bus.SubscribeTyped[event_bus.MealUpdated](
		eventBus,
		event_bus.MealUpdatedEvent,
		func(e event_bus.EventT[event_bus.MealUpdated]) error {
			log.Debugf("received meal updated event: %v", e)
			return service.PropagateMealEdit(e.Context(), e.Data.Id, e.Data.Name, e.Data.Description)
		},
	)
	return service
}

func (s *ServiceImpl) GetOrCreate(ctx context.Context, weekOffset int) (WeeklySchedule, error) {
	monday := calweek.MondayOfWeek(s.clock.Now(), weekOffset)
	week := calweek.WeekOf(monday)

	existing, err := s.repo.Get(ctx, week.String())
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, ErrWeekNotFound) {
		log.Errorf("failed to get schedule for week %s: %v", week, err)
		return WeeklySchedule{}, fmt.Errorf("failed to get schedule: %w", err)
	}

	generated, err := s.generate(ctx, monday, week)
	if err != nil {
		return WeeklySchedule{}, err
	}
	if err := s.repo.Upsert(ctx, generated); err != nil {
		log.Errorf("failed to store generated schedule for week %s: %v", week, err)
		return WeeklySchedule{}, fmt.Errorf("failed to store schedule: %w", err)
	}

	// Two concurrent first accesses may both generate; the upsert makes the
	// last write win, so return what actually got persisted.
	persisted, err := s.repo.Get(ctx, week.String())
	if err != nil {
		return WeeklySchedule{}, fmt.Errorf("failed to re-read schedule: %w", err)
	}
	return persisted, nil
}

// generate builds the default schedule for a week: each day offers a
// round-robin slice of the catalog shifted by the day index, so repeated
// generation for the same week and catalog is identical.
func (s *ServiceImpl) generate(ctx context.Context, monday time.Time, week calweek.WeekNumber) (WeeklySchedule, error) {
	meals, err := s.catalog.List(ctx)
	if err != nil {
		return WeeklySchedule{}, fmt.Errorf("failed to list meals: %w", err)
	}
	holidays, err := s.holidays.List(ctx)
	if err != nil {
		return WeeklySchedule{}, fmt.Errorf("failed to list holidays: %w", err)
	}

	labels := calweek.WeekDays(monday)
	days := make([]ScheduledDay, 0, len(labels))
	for i, label := range labels {
		date := monday.AddDate(0, 0, i)
		day := ScheduledDay{
			Day:     label.Day,
			Date:    label.Date,
			ISODate: date.Format("2006-01-02"),
			Meals:   []MealSnapshot{},
		}
		for j := 0; j < mealsPerDay && j < len(meals); j++ {
			m := meals[(i+j)%len(meals)]
			day.Meals = append(day.Meals, MealSnapshot{Id: m.Id, Name: m.Name, Description: m.Description})
		}
		if h, ok := holiday.FirstMatch(date, holidays); ok {
			day.IsHoliday = true
			day.HolidayName = h.Name
		}
		days = append(days, day)
	}
	return WeeklySchedule{Week: week, Days: days}, nil
}

func (s *ServiceImpl) GetDay(ctx context.Context, weekOffset int, dayName string) (ScheduledDay, time.Time, error) {
	schedule, err := s.GetOrCreate(ctx, weekOffset)
	if err != nil {
		return ScheduledDay{}, time.Time{}, err
	}
	monday := calweek.MondayOfWeek(s.clock.Now(), weekOffset)
	idx, ok := dayIndex(dayName)
	if !ok {
		return ScheduledDay{}, time.Time{}, ErrDayNotFound
	}
	day, ok := schedule.Day(dayName)
	if !ok {
		return ScheduledDay{}, time.Time{}, ErrDayNotFound
	}
	return day, monday.AddDate(0, 0, idx), nil
}

func (s *ServiceImpl) AddMealToDay(ctx context.Context, weekOffset int, dayName string, mealId int) (WeeklySchedule, error) {
	schedule, idx, err := s.editableDay(ctx, weekOffset, dayName)
	if err != nil {
		return WeeklySchedule{}, err
	}
	for _, snapshot := range schedule.Days[idx].Meals {
		if snapshot.Id == mealId {
			return WeeklySchedule{}, ErrMealAlreadyPlanned
		}
	}
	m, err := s.catalog.Get(ctx, mealId)
	if err != nil {
		return WeeklySchedule{}, err
	}

	schedule.Days[idx].Meals = append(schedule.Days[idx].Meals, MealSnapshot{
		Id:          m.Id,
		Name:        m.Name,
		Description: m.Description,
	})
	if err := s.repo.Update(ctx, schedule); err != nil {
		log.Errorf("failed to add meal %d to %s of week %s: %v", mealId, dayName, schedule.Week, err)
		return WeeklySchedule{}, fmt.Errorf("failed to update schedule: %w", err)
	}
	return schedule, nil
}

func (s *ServiceImpl) ReplaceMealInDay(ctx context.Context, weekOffset int, dayName string, oldMealId int, newMealId int) (WeeklySchedule, error) {
	schedule, idx, err := s.editableDay(ctx, weekOffset, dayName)
	if err != nil {
		return WeeklySchedule{}, err
	}
	slot := -1
	for i, snapshot := range schedule.Days[idx].Meals {
		if snapshot.Id == oldMealId {
			slot = i
			break
		}
	}
	if slot == -1 {
		return WeeklySchedule{}, ErrMealNotPlanned
	}
	replacement, err := s.catalog.Get(ctx, newMealId)
	if err != nil {
		return WeeklySchedule{}, err
	}

	schedule.Days[idx].Meals[slot] = MealSnapshot{
		Id:          replacement.Id,
		Name:        replacement.Name,
		Description: replacement.Description,
	}
	if err := s.repo.Update(ctx, schedule); err != nil {
		log.Errorf("failed to replace meal %d on %s of week %s: %v", oldMealId, dayName, schedule.Week, err)
		return WeeklySchedule{}, fmt.Errorf("failed to update schedule: %w", err)
	}
	if err := s.selections.ReplaceMeal(ctx, schedule.Week.String(), dayName, oldMealId, newMealId); err != nil {
		log.Errorf("failed to move selections from meal %d to %d: %v", oldMealId, newMealId, err)
		return WeeklySchedule{}, fmt.Errorf("failed to move selections: %w", err)
	}
	return schedule, nil
}

func (s *ServiceImpl) RemoveMealFromDay(ctx context.Context, weekOffset int, dayName string, mealId int) (WeeklySchedule, error) {
	schedule, idx, err := s.editableDay(ctx, weekOffset, dayName)
	if err != nil {
		return WeeklySchedule{}, err
	}
	slot := -1
	for i, snapshot := range schedule.Days[idx].Meals {
		if snapshot.Id == mealId {
			slot = i
			break
		}
	}
	if slot == -1 {
		return WeeklySchedule{}, ErrMealNotPlanned
	}

	day := &schedule.Days[idx]
	day.Meals = append(day.Meals[:slot], day.Meals[slot+1:]...)
	if err := s.repo.Update(ctx, schedule); err != nil {
		log.Errorf("failed to remove meal %d from %s of week %s: %v", mealId, dayName, schedule.Week, err)
		return WeeklySchedule{}, fmt.Errorf("failed to update schedule: %w", err)
	}
	if err := s.selections.DeleteForMeal(ctx, schedule.Week.String(), dayName, mealId); err != nil {
		log.Errorf("failed to delete selections of meal %d: %v", mealId, err)
		return WeeklySchedule{}, fmt.Errorf("failed to delete selections: %w", err)
	}
	return schedule, nil
}

// editableDay loads the week's schedule and checks that the requested day
// accepts mutations for the current user. Editability is enforced here, not
// only in the UI, so a direct API call cannot bypass it.
func (s *ServiceImpl) editableDay(ctx context.Context, weekOffset int, dayName string) (WeeklySchedule, int, error) {
	idx, ok := dayIndex(dayName)
	if !ok {
		return WeeklySchedule{}, 0, ErrDayNotFound
	}
	schedule, err := s.GetOrCreate(ctx, weekOffset)
	if err != nil {
		return WeeklySchedule{}, 0, err
	}
	if idx >= len(schedule.Days) {
		return WeeklySchedule{}, 0, ErrDayNotFound
	}
	day := schedule.Days[idx]
	if day.IsHoliday {
		return WeeklySchedule{}, 0, &NotEditableError{
			Reason: fmt.Sprintf("Jour férié : %s, les sélections sont fermées", day.HolidayName),
		}
	}

	currentUser, err := user.CurrentUser(ctx)
	if err != nil {
		return WeeklySchedule{}, 0, fmt.Errorf("failed to get current user: %w", err)
	}
	today := s.clock.Now()
	date := calweek.MondayOfWeek(today, weekOffset).AddDate(0, 0, idx)
	if !policy.Editable(date, today, currentUser.Role, weekOffset) {
		return WeeklySchedule{}, 0, &NotEditableError{
			Reason: policy.AvailabilityMessage(date, today, currentUser.Role, weekOffset),
		}
	}
	return schedule, idx, nil
}

func (s *ServiceImpl) ApplyHolidayCreated(ctx context.Context, h holiday.Holiday) error {
	schedules, err := s.repo.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to list schedules: %w", err)
	}
	for _, schedule := range schedules {
		changed := false
		for i, day := range schedule.Days {
			date, err := day.ResolvedDate(h.Date.Year())
			if err != nil {
				log.Warnf("skipping day %q of week %s: %v", day.Day, schedule.Week, err)
				continue
			}
			if !h.Matches(date) {
				continue
			}
			if day.IsHoliday && day.HolidayName == h.Name {
				continue
			}
			schedule.Days[i].IsHoliday = true
			schedule.Days[i].HolidayName = h.Name
			changed = true
		}
		if changed {
			if err := s.repo.Update(ctx, schedule); err != nil {
				return fmt.Errorf("failed to flag week %s: %w", schedule.Week, err)
			}
		}
	}
	return nil
}

func (s *ServiceImpl) ApplyHolidayRemoved(ctx context.Context, holidayName string) error {
	schedules, err := s.repo.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to list schedules: %w", err)
	}
	for _, schedule := range schedules {
		changed := false
		for i, day := range schedule.Days {
			// Only clear days flagged by this holiday; a coinciding one
			// keeps its flag.
			if !day.IsHoliday || day.HolidayName != holidayName {
				continue
			}
			schedule.Days[i].IsHoliday = false
			schedule.Days[i].HolidayName = ""
			changed = true
		}
		if changed {
			if err := s.repo.Update(ctx, schedule); err != nil {
				return fmt.Errorf("failed to unflag week %s: %w", schedule.Week, err)
			}
		}
	}
	return nil
}

func (s *ServiceImpl) PropagateMealEdit(ctx context.Context, mealId int, name string, description string) error {
	schedules, err := s.repo.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to list schedules: %w", err)
	}
	for _, schedule := range schedules {
		changed := false
		for i, day := range schedule.Days {
			for j, snapshot := range day.Meals {
				if snapshot.Id != mealId {
					continue
				}
				schedule.Days[i].Meals[j].Name = name
				schedule.Days[i].Meals[j].Description = description
				changed = true
			}
		}
		if changed {
			if err := s.repo.Update(ctx, schedule); err != nil {
				return fmt.Errorf("failed to rewrite snapshots in week %s: %w", schedule.Week, err)
			}
		}
	}
	return nil
}

func dayIndex(dayName string) (int, bool) {
	for i, name := range calweek.Weekdays() {
		if name == dayName {
			return i, true
		}
	}
	return 0, false
}
