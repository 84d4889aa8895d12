package meal

import (
	"context"
	"errors"
	"fmt"

	"github.com/cantine/cantine/internal/event_bus"
	log "github.com/sirupsen/logrus"
)

var ErrMealNotFound = errors.New("meal not found")
var ErrMealInUse = errors.New("meal is referenced by a schedule or a selection")

// UsageChecker reports whether a meal is still referenced somewhere. The
// schedule and selection repositories implement it; the service refuses to
// delete a meal any checker still knows about.
type UsageChecker interface {
	MealInUse(ctx context.Context, mealId int) (bool, error)
}

type Service interface {
	List(ctx context.Context) ([]Meal, error)
	Get(ctx context.Context, id int) (Meal, error)
	Create(ctx context.Context, name string, description string) (Meal, error)
	// Update changes a catalog entry and triggers a snapshot rewrite in
	// every stored schedule referencing it.
	Update(ctx context.Context, m Meal) (Meal, error)
	Delete(ctx context.Context, id int) error
}

type ServiceImpl struct {
	repo     Repository
	checkers []UsageChecker
	eventBus *event_bus.EventBus
}

func NewService(repo Repository, checkers []UsageChecker, eventBus *event_bus.EventBus) *ServiceImpl {
	return &ServiceImpl{repo: repo, checkers: checkers, eventBus: eventBus}
}

func (s *ServiceImpl) List(ctx context.Context) ([]Meal, error) {
	meals, err := s.repo.List(ctx)
	if err != nil {
		log.Errorf("failed to list meals: %v", err)
		return nil, fmt.Errorf("failed to list meals: %w", err)
	}
	return meals, nil
}

func (s *ServiceImpl) Get(ctx context.Context, id int) (Meal, error) {
	return s.repo.Get(ctx, id)
}

func (s *ServiceImpl) Create(ctx context.Context, name string, description string) (Meal, error) {
	created, err := s.repo.Create(ctx, Meal{Name: name, Description: description})
	if err != nil {
		log.Errorf("failed to create meal %q: %v", name, err)
		return Meal{}, fmt.Errorf("failed to create meal: %w", err)
	}
	return created, nil
}

func (s *ServiceImpl) Update(ctx context.Context, m Meal) (Meal, error) {
	if _, err := s.repo.Get(ctx, m.Id); err != nil {
		return Meal{}, err
	}
	if err := s.repo.Update(ctx, m); err != nil {
		log.Errorf("failed to update meal %d: %v", m.Id, err)
		return Meal{}, fmt.Errorf("failed to update meal: %w", err)
	}

	err := s.eventBus.Publish(event_bus.NewEvent(ctx, event_bus.MealUpdatedEvent, event_bus.MealUpdated{
		Id:          m.Id,
		Name:        m.Name,
		Description: m.Description,
	}))
	if err != nil {
		log.Errorf("failed to propagate edit of meal %d: %v", m.Id, err)
		return Meal{}, err
	}
	return m, nil
}

func (s *ServiceImpl) Delete(ctx context.Context, id int) error {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return err
	}
	for _, checker := range s.checkers {
		inUse, err := checker.MealInUse(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to check meal usage: %w", err)
		}
		if inUse {
			return ErrMealInUse
		}
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		log.Errorf("failed to delete meal %d: %v", id, err)
		return fmt.Errorf("failed to delete meal: %w", err)
	}
	return nil
}
