package meal

import (
	"context"
	"testing"

	"github.com/cantine/cantine/internal/event_bus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type usageCheckerStub struct {
	inUse map[int]bool
}

func (c *usageCheckerStub) MealInUse(ctx context.Context, mealId int) (bool, error) {
	return c.inUse[mealId], nil
}

func TestCreateAndListMeals(t *testing.T) {
	service := NewService(NewRepositoryStub(), nil, event_bus.NewEventBus())
	ctx := context.Background()

	first, err := service.Create(ctx, "Poulet rôti", "Avec pommes de terre")
	require.NoError(t, err)
	second, err := service.Create(ctx, "Gratin dauphinois", "")
	require.NoError(t, err)

	assert.NotEqual(t, first.Id, second.Id)

	meals, err := service.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []Meal{first, second}, meals)
}

func TestUpdateMealPublishesEvent(t *testing.T) {
	bus := event_bus.NewEventBus()
	service := NewService(NewRepositoryStub(), nil, bus)
	ctx := context.Background()

	var updates []event_bus.MealUpdated
	event_bus.SubscribeTyped(bus, event_bus.MealUpdatedEvent, func(e event_bus.EventT[event_bus.MealUpdated]) error {
		updates = append(updates, e.Data)
		return nil
	})

	created, err := service.Create(ctx, "Poulet rôti", "")
	require.NoError(t, err)

	updated, err := service.Update(ctx, Meal{Id: created.Id, Name: "Poulet basquaise", Description: "Riz blanc"})
	require.NoError(t, err)
	assert.Equal(t, "Poulet basquaise", updated.Name)

	got, err := service.Get(ctx, created.Id)
	require.NoError(t, err)
	assert.Equal(t, updated, got)

	require.Len(t, updates, 1)
	assert.Equal(t, event_bus.MealUpdated{Id: created.Id, Name: "Poulet basquaise", Description: "Riz blanc"}, updates[0])
}

func TestUpdateMissingMeal(t *testing.T) {
	service := NewService(NewRepositoryStub(), nil, event_bus.NewEventBus())

	_, err := service.Update(context.Background(), Meal{Id: 42, Name: "Fantôme"})
	assert.ErrorIs(t, err, ErrMealNotFound)
}

func TestDeleteMeal(t *testing.T) {
	checker := &usageCheckerStub{inUse: map[int]bool{}}
	service := NewService(NewRepositoryStub(), []UsageChecker{checker}, event_bus.NewEventBus())
	ctx := context.Background()

	created, err := service.Create(ctx, "Poulet rôti", "")
	require.NoError(t, err)

	require.NoError(t, service.Delete(ctx, created.Id))

	_, err = service.Get(ctx, created.Id)
	assert.ErrorIs(t, err, ErrMealNotFound)
}

func TestDeleteMealStillReferenced(t *testing.T) {
	checker := &usageCheckerStub{inUse: map[int]bool{}}
	service := NewService(NewRepositoryStub(), []UsageChecker{checker}, event_bus.NewEventBus())
	ctx := context.Background()

	created, err := service.Create(ctx, "Poulet rôti", "")
	require.NoError(t, err)
	checker.inUse[created.Id] = true

	err = service.Delete(ctx, created.Id)
	assert.ErrorIs(t, err, ErrMealInUse)

	_, err = service.Get(ctx, created.Id)
	assert.NoError(t, err, "the meal stays in the catalog")
}

func TestDeleteMissingMeal(t *testing.T) {
	service := NewService(NewRepositoryStub(), nil, event_bus.NewEventBus())
	assert.ErrorIs(t, service.Delete(context.Background(), 42), ErrMealNotFound)
}
