package selection

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cantine/cantine/internal/utils"
	"github.com/cantine/cantine/pkg/calweek"
	"github.com/cantine/cantine/pkg/policy"
	"github.com/cantine/cantine/pkg/schedule"
	"github.com/cantine/cantine/pkg/user"
	log "github.com/sirupsen/logrus"
)

var ErrMealNotOffered = errors.New("meal is not offered on this day")
var ErrSelectionNotFound = errors.New("selection not found")

// DayReader is the slice of the schedule service the selection flow needs.
type DayReader interface {
	GetDay(ctx context.Context, weekOffset int, dayName string) (schedule.ScheduledDay, time.Time, error)
}

type Service interface {
	// Select records the current user's meal choice for a day, replacing
	// any previous choice for that day.
	Select(ctx context.Context, weekOffset int, dayName string, mealId int) (Selection, error)
	// Unselect removes the current user's choice for a day.
	Unselect(ctx context.Context, weekOffset int, dayName string) error
	// ListForCurrentUser returns the current user's selections for a week.
	ListForCurrentUser(ctx context.Context, weekOffset int) ([]Selection, error)
	// ListForWeek returns every selection of a week with user and meal
	// names, for the admin overview.
	ListForWeek(ctx context.Context, weekOffset int) ([]SelectionDetails, error)
	// ExportWeekCSV renders a week's selections as a CSV document.
	ExportWeekCSV(ctx context.Context, weekOffset int) (string, error)
}

type ServiceImpl struct {
	repo     Repository
	days     DayReader
	clock    utils.Clock
	renderer *CsvRenderer
}

func NewService(repo Repository, days DayReader, clock utils.Clock) *ServiceImpl {
	return &ServiceImpl{repo: repo, days: days, clock: clock, renderer: NewCsvRenderer()}
}

func (s *ServiceImpl) Select(ctx context.Context, weekOffset int, dayName string, mealId int) (Selection, error) {
	currentUser, err := user.CurrentUser(ctx)
	if err != nil {
		return Selection{}, fmt.Errorf("failed to get current user: %w", err)
	}
	day, date, err := s.days.GetDay(ctx, weekOffset, dayName)
	if err != nil {
		return Selection{}, err
	}
	if err := s.ensureEditable(day, date, currentUser.Role, weekOffset); err != nil {
		return Selection{}, err
	}

	offered := false
	for _, snapshot := range day.Meals {
		if snapshot.Id == mealId {
			offered = true
			break
		}
	}
	if !offered {
		return Selection{}, ErrMealNotOffered
	}

	selection := Selection{
		UserId:  currentUser.Id,
		WeekKey: s.weekKey(weekOffset),
		DayName: dayName,
		MealId:  mealId,
	}
	stored, err := s.repo.Upsert(ctx, selection)
	if err != nil {
		log.Errorf("failed to store selection of user %d: %v", currentUser.Id, err)
		return Selection{}, fmt.Errorf("failed to store selection: %w", err)
	}
	return stored, nil
}

func (s *ServiceImpl) Unselect(ctx context.Context, weekOffset int, dayName string) error {
	currentUser, err := user.CurrentUser(ctx)
	if err != nil {
		return fmt.Errorf("failed to get current user: %w", err)
	}
	day, date, err := s.days.GetDay(ctx, weekOffset, dayName)
	if err != nil {
		return err
	}
	if err := s.ensureEditable(day, date, currentUser.Role, weekOffset); err != nil {
		return err
	}
	return s.repo.DeleteForUserDay(ctx, currentUser.Id, s.weekKey(weekOffset), dayName)
}

func (s *ServiceImpl) ListForCurrentUser(ctx context.Context, weekOffset int) ([]Selection, error) {
	currentUser, err := user.CurrentUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	selections, err := s.repo.ListForUserWeek(ctx, currentUser.Id, s.weekKey(weekOffset))
	if err != nil {
		log.Errorf("failed to list selections of user %d: %v", currentUser.Id, err)
		return nil, fmt.Errorf("failed to list selections: %w", err)
	}
	return selections, nil
}

func (s *ServiceImpl) ListForWeek(ctx context.Context, weekOffset int) ([]SelectionDetails, error) {
	details, err := s.repo.ListForWeek(ctx, s.weekKey(weekOffset))
	if err != nil {
		log.Errorf("failed to list selections for week offset %d: %v", weekOffset, err)
		return nil, fmt.Errorf("failed to list selections: %w", err)
	}
	return details, nil
}

func (s *ServiceImpl) ExportWeekCSV(ctx context.Context, weekOffset int) (string, error) {
	details, err := s.ListForWeek(ctx, weekOffset)
	if err != nil {
		return "", err
	}
	return s.renderer.Render(s.weekKey(weekOffset), details)
}

func (s *ServiceImpl) ensureEditable(day schedule.ScheduledDay, date time.Time, role user.Role, weekOffset int) error {
	if day.IsHoliday {
		return &schedule.NotEditableError{
			Reason: fmt.Sprintf("Jour férié : %s, les sélections sont fermées", day.HolidayName),
		}
	}
	today := s.clock.Now()
	if !policy.Editable(date, today, role, weekOffset) {
		return &schedule.NotEditableError{
			Reason: policy.AvailabilityMessage(date, today, role, weekOffset),
		}
	}
	return nil
}

func (s *ServiceImpl) weekKey(weekOffset int) string {
	return calweek.WeekOf(calweek.MondayOfWeek(s.clock.Now(), weekOffset)).String()
}
