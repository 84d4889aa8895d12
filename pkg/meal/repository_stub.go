package meal

import (
	"context"
	"sync"
)

type RepositoryStub struct {
	mu     sync.RWMutex
	nextId int
	meals  []Meal
}

func NewRepositoryStub() *RepositoryStub {
	return &RepositoryStub{nextId: 1}
}

func (r *RepositoryStub) List(ctx context.Context) ([]Meal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Meal, len(r.meals))
	copy(result, r.meals)
	return result, nil
}

func (r *RepositoryStub) Get(ctx context.Context, id int) (Meal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, m := range r.meals {
		if m.Id == id {
			return m, nil
		}
	}
	return Meal{}, ErrMealNotFound
}

func (r *RepositoryStub) Create(ctx context.Context, m Meal) (Meal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m.Id = r.nextId
	r.nextId++
	r.meals = append(r.meals, m)
	return m, nil
}

func (r *RepositoryStub) Update(ctx context.Context, m Meal) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.meals {
		if r.meals[i].Id == m.Id {
			r.meals[i] = m
			return nil
		}
	}
	return ErrMealNotFound
}

func (r *RepositoryStub) Delete(ctx context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, m := range r.meals {
		if m.Id == id {
			r.meals = append(r.meals[:i], r.meals[i+1:]...)
			return nil
		}
	}
	return ErrMealNotFound
}

// Reset clears the stub between tests.
func (r *RepositoryStub) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.meals = nil
	r.nextId = 1
}
