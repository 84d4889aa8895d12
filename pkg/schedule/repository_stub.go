package schedule

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
)

// RepositoryStub stores schedules in memory. Days go through a JSON round
// trip on write so tests observe the same value semantics as the jsonb
// column.
type RepositoryStub struct {
	mu        sync.RWMutex
	schedules map[string]WeeklySchedule
}

func NewRepositoryStub() *RepositoryStub {
	return &RepositoryStub{schedules: make(map[string]WeeklySchedule)}
}

func (r *RepositoryStub) Get(ctx context.Context, weekKey string) (WeeklySchedule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	schedule, ok := r.schedules[weekKey]
	if !ok {
		return WeeklySchedule{}, ErrWeekNotFound
	}
	return schedule, nil
}

func (r *RepositoryStub) GetAll(ctx context.Context) ([]WeeklySchedule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	keys := make([]string, 0, len(r.schedules))
	for key := range r.schedules {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	schedules := make([]WeeklySchedule, 0, len(keys))
	for _, key := range keys {
		schedules = append(schedules, r.schedules[key])
	}
	return schedules, nil
}

func (r *RepositoryStub) Upsert(ctx context.Context, s WeeklySchedule) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.store(s)
}

func (r *RepositoryStub) Update(ctx context.Context, s WeeklySchedule) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.schedules[s.Week.String()]; !ok {
		return ErrWeekNotFound
	}
	return r.store(s)
}

func (r *RepositoryStub) MealInUse(ctx context.Context, mealId int) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, schedule := range r.schedules {
		for _, day := range schedule.Days {
			for _, snapshot := range day.Meals {
				if snapshot.Id == mealId {
					return true, nil
				}
			}
		}
	}
	return false, nil
}

func (r *RepositoryStub) store(s WeeklySchedule) error {
	encoded, err := json.Marshal(s.Days)
	if err != nil {
		return err
	}
	var days []ScheduledDay
	if err := json.Unmarshal(encoded, &days); err != nil {
		return err
	}
	r.schedules[s.Week.String()] = WeeklySchedule{Week: s.Week, Days: days}
	return nil
}

// Seed inserts a schedule directly, bypassing the JSON round trip checks.
func (r *RepositoryStub) Seed(s WeeklySchedule) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.schedules[s.Week.String()] = s
}

// Reset clears the stub between tests.
func (r *RepositoryStub) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.schedules = make(map[string]WeeklySchedule)
}
