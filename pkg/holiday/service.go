package holiday

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cantine/cantine/internal/event_bus"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

var ErrHolidayExists = errors.New("a holiday already exists on this date")
var ErrHolidayNotFound = errors.New("holiday not found")

type Service interface {
	List(ctx context.Context) ([]Holiday, error)
	Create(ctx context.Context, name string, date time.Time, recurring bool) (Holiday, error)
	Delete(ctx context.Context, id string) error
	// ImportNational inserts the French national holiday set for a year,
	// skipping dates on which a holiday already exists.
	ImportNational(ctx context.Context, year int) ([]Holiday, error)
}

type ServiceImpl struct {
	repo     Repository
	eventBus *event_bus.EventBus
}

func NewService(repo Repository, eventBus *event_bus.EventBus) *ServiceImpl {
	return &ServiceImpl{repo: repo, eventBus: eventBus}
}

func (s *ServiceImpl) List(ctx context.Context) ([]Holiday, error) {
	holidays, err := s.repo.List(ctx)
	if err != nil {
		log.Errorf("failed to list holidays: %v", err)
		return nil, fmt.Errorf("failed to list holidays: %w", err)
	}
	return holidays, nil
}

func (s *ServiceImpl) Create(ctx context.Context, name string, date time.Time, recurring bool) (Holiday, error) {
	exists, err := s.repo.ExistsOnDate(ctx, date)
	if err != nil {
		return Holiday{}, fmt.Errorf("failed to check for existing holiday: %w", err)
	}
	if exists {
		return Holiday{}, ErrHolidayExists
	}

	h := Holiday{
		Id:        uuid.NewString(),
		Name:      name,
		Date:      time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC),
		Recurring: recurring,
	}
	if err := s.repo.Create(ctx, h); err != nil {
		log.Errorf("failed to create holiday %q: %v", name, err)
		return Holiday{}, fmt.Errorf("failed to create holiday: %w", err)
	}

	err = s.eventBus.Publish(event_bus.NewEvent(ctx, event_bus.HolidayCreatedEvent, event_bus.HolidayCreated{
		Id:        h.Id,
		Name:      h.Name,
		Date:      h.Date,
		Recurring: h.Recurring,
	}))
	if err != nil {
		log.Errorf("failed to reconcile schedules after creating holiday %q: %v", name, err)
		return Holiday{}, err
	}
	return h, nil
}

func (s *ServiceImpl) Delete(ctx context.Context, id string) error {
	h, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrHolidayNotFound) {
			return ErrHolidayNotFound
		}
		return fmt.Errorf("failed to get holiday: %w", err)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		log.Errorf("failed to delete holiday %s: %v", id, err)
		return fmt.Errorf("failed to delete holiday: %w", err)
	}

	err = s.eventBus.Publish(event_bus.NewEvent(ctx, event_bus.HolidayDeletedEvent, event_bus.HolidayDeleted{
		Id:        h.Id,
		Name:      h.Name,
		Date:      h.Date,
		Recurring: h.Recurring,
	}))
	if err != nil {
		log.Errorf("failed to reconcile schedules after deleting holiday %q: %v", h.Name, err)
		return err
	}
	return nil
}

func (s *ServiceImpl) ImportNational(ctx context.Context, year int) ([]Holiday, error) {
	var imported []Holiday
	for _, h := range NationalHolidays(year) {
		created, err := s.Create(ctx, h.Name, h.Date, h.Recurring)
		if err != nil {
			if errors.Is(err, ErrHolidayExists) {
				log.Debugf("skipping national holiday %q: date already taken", h.Name)
				continue
			}
			return imported, err
		}
		imported = append(imported, created)
	}
	return imported, nil
}
