package selection

import (
	"context"
	"sort"
	"sync"
)

type RepositoryStub struct {
	mu         sync.RWMutex
	nextId     int
	selections []Selection
	userNames  map[int]string
	mealNames  map[int]string
}

func NewRepositoryStub() *RepositoryStub {
	return &RepositoryStub{
		nextId:    1,
		userNames: make(map[int]string),
		mealNames: make(map[int]string),
	}
}

// SetNames seeds the user and meal names used by ListForWeek joins.
func (r *RepositoryStub) SetNames(userNames map[int]string, mealNames map[int]string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.userNames = userNames
	r.mealNames = mealNames
}

func (r *RepositoryStub) Upsert(ctx context.Context, s Selection) (Selection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, existing := range r.selections {
		if existing.UserId == s.UserId && existing.WeekKey == s.WeekKey && existing.DayName == s.DayName {
			s.Id = existing.Id
			r.selections[i] = s
			return s, nil
		}
	}
	s.Id = r.nextId
	r.nextId++
	r.selections = append(r.selections, s)
	return s, nil
}

func (r *RepositoryStub) DeleteForUserDay(ctx context.Context, userId int, weekKey string, dayName string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, s := range r.selections {
		if s.UserId == userId && s.WeekKey == weekKey && s.DayName == dayName {
			r.selections = append(r.selections[:i], r.selections[i+1:]...)
			return nil
		}
	}
	return ErrSelectionNotFound
}

func (r *RepositoryStub) ListForUserWeek(ctx context.Context, userId int, weekKey string) ([]Selection, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []Selection
	for _, s := range r.selections {
		if s.UserId == userId && s.WeekKey == weekKey {
			result = append(result, s)
		}
	}
	return result, nil
}

func (r *RepositoryStub) ListForWeek(ctx context.Context, weekKey string) ([]SelectionDetails, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var details []SelectionDetails
	for _, s := range r.selections {
		if s.WeekKey == weekKey {
			details = append(details, SelectionDetails{
				Selection: s,
				UserName:  r.userNames[s.UserId],
				MealName:  r.mealNames[s.MealId],
			})
		}
	}
	sort.Slice(details, func(i, j int) bool {
		if details[i].UserName != details[j].UserName {
			return details[i].UserName < details[j].UserName
		}
		return details[i].DayName < details[j].DayName
	})
	return details, nil
}

func (r *RepositoryStub) ReplaceMeal(ctx context.Context, weekKey string, dayName string, oldMealId int, newMealId int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, s := range r.selections {
		if s.WeekKey == weekKey && s.DayName == dayName && s.MealId == oldMealId {
			r.selections[i].MealId = newMealId
		}
	}
	return nil
}

func (r *RepositoryStub) DeleteForMeal(ctx context.Context, weekKey string, dayName string, mealId int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.selections[:0]
	for _, s := range r.selections {
		if s.WeekKey == weekKey && s.DayName == dayName && s.MealId == mealId {
			continue
		}
		kept = append(kept, s)
	}
	r.selections = kept
	return nil
}

func (r *RepositoryStub) DeleteForUser(ctx context.Context, userId int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.selections[:0]
	for _, s := range r.selections {
		if s.UserId == userId {
			continue
		}
		kept = append(kept, s)
	}
	r.selections = kept
	return nil
}

func (r *RepositoryStub) MealInUse(ctx context.Context, mealId int) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, s := range r.selections {
		if s.MealId == mealId {
			return true, nil
		}
	}
	return false, nil
}

// Reset clears the stub between tests.
func (r *RepositoryStub) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.selections = nil
	r.nextId = 1
}
