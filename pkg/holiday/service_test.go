package holiday

import (
	"context"
	"testing"
	"time"

	"github.com/cantine/cantine/internal/event_bus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServiceFixture() (*ServiceImpl, *RepositoryStub, *event_bus.EventBus) {
	repo := NewRepositoryStub()
	bus := event_bus.NewEventBus()
	return NewService(repo, bus), repo, bus
}

func TestCreateHoliday(t *testing.T) {
	service, _, bus := newServiceFixture()
	ctx := context.Background()

	var published []event_bus.HolidayCreated
	event_bus.SubscribeTyped(bus, event_bus.HolidayCreatedEvent, func(e event_bus.EventT[event_bus.HolidayCreated]) error {
		published = append(published, e.Data)
		return nil
	})

	created, err := service.Create(ctx, "Noël", date(2025, time.December, 25), true)
	require.NoError(t, err)
	assert.NotEmpty(t, created.Id)
	assert.Equal(t, "Noël", created.Name)
	assert.True(t, created.Recurring)

	holidays, err := service.List(ctx)
	require.NoError(t, err)
	require.Len(t, holidays, 1)
	assert.Equal(t, created, holidays[0])

	require.Len(t, published, 1)
	assert.Equal(t, created.Id, published[0].Id)
	assert.Equal(t, date(2025, time.December, 25), published[0].Date)
}

func TestCreateHolidayOnTakenDate(t *testing.T) {
	service, _, _ := newServiceFixture()
	ctx := context.Background()

	_, err := service.Create(ctx, "Noël", date(2025, time.December, 25), false)
	require.NoError(t, err)

	_, err = service.Create(ctx, "Fermeture", date(2025, time.December, 25), false)
	assert.ErrorIs(t, err, ErrHolidayExists)

	holidays, err := service.List(ctx)
	require.NoError(t, err)
	assert.Len(t, holidays, 1)
}

func TestDeleteHoliday(t *testing.T) {
	service, _, bus := newServiceFixture()
	ctx := context.Background()

	var deleted []event_bus.HolidayDeleted
	event_bus.SubscribeTyped(bus, event_bus.HolidayDeletedEvent, func(e event_bus.EventT[event_bus.HolidayDeleted]) error {
		deleted = append(deleted, e.Data)
		return nil
	})

	created, err := service.Create(ctx, "Ascension", date(2025, time.May, 29), false)
	require.NoError(t, err)

	require.NoError(t, service.Delete(ctx, created.Id))

	holidays, err := service.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, holidays)

	require.Len(t, deleted, 1)
	assert.Equal(t, created.Id, deleted[0].Id)
	assert.Equal(t, "Ascension", deleted[0].Name)
	assert.Equal(t, date(2025, time.May, 29), deleted[0].Date)
}

func TestDeleteMissingHoliday(t *testing.T) {
	service, _, _ := newServiceFixture()

	err := service.Delete(context.Background(), "no-such-id")
	assert.ErrorIs(t, err, ErrHolidayNotFound)
}

func TestImportNational(t *testing.T) {
	service, _, bus := newServiceFixture()
	ctx := context.Background()

	var created int
	bus.Subscribe(event_bus.HolidayCreatedEvent, func(event_bus.Event) error {
		created++
		return nil
	})

	imported, err := service.ImportNational(ctx, 2025)
	require.NoError(t, err)
	assert.Len(t, imported, 11)
	assert.Equal(t, 11, created)

	holidays, err := service.List(ctx)
	require.NoError(t, err)
	assert.Len(t, holidays, 11)
}

func TestImportNationalSkipsConfiguredDates(t *testing.T) {
	service, _, _ := newServiceFixture()
	ctx := context.Background()

	_, err := service.Create(ctx, "Fermeture annuelle", date(2025, time.December, 25), false)
	require.NoError(t, err)

	imported, err := service.ImportNational(ctx, 2025)
	require.NoError(t, err)
	assert.Len(t, imported, 10, "dates already configured are skipped")

	for _, h := range imported {
		assert.NotEqual(t, "Noël", h.Name)
	}

	holidays, err := service.List(ctx)
	require.NoError(t, err)
	assert.Len(t, holidays, 11)
}
