package holiday

import (
	"context"
	"sync"
	"time"
)

type RepositoryStub struct {
	mu       sync.RWMutex
	holidays []Holiday
}

func NewRepositoryStub() *RepositoryStub {
	return &RepositoryStub{}
}

func (r *RepositoryStub) List(ctx context.Context) ([]Holiday, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Holiday, len(r.holidays))
	copy(result, r.holidays)
	return result, nil
}

func (r *RepositoryStub) Get(ctx context.Context, id string) (Holiday, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, h := range r.holidays {
		if h.Id == id {
			return h, nil
		}
	}
	return Holiday{}, ErrHolidayNotFound
}

func (r *RepositoryStub) ExistsOnDate(ctx context.Context, date time.Time) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, h := range r.holidays {
		if h.Date.Equal(date) || (h.Date.Year() == date.Year() && h.Date.YearDay() == date.YearDay()) {
			return true, nil
		}
	}
	return false, nil
}

func (r *RepositoryStub) Create(ctx context.Context, holiday Holiday) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.holidays = append(r.holidays, holiday)
	return nil
}

func (r *RepositoryStub) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, h := range r.holidays {
		if h.Id == id {
			r.holidays = append(r.holidays[:i], r.holidays[i+1:]...)
			return nil
		}
	}
	return ErrHolidayNotFound
}

// Reset clears the stub between tests.
func (r *RepositoryStub) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.holidays = nil
}
