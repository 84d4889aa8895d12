package selection

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	// Upsert stores a selection, overwriting the user's previous choice
	// for the same week and day.
	Upsert(ctx context.Context, s Selection) (Selection, error)
	DeleteForUserDay(ctx context.Context, userId int, weekKey string, dayName string) error
	ListForUserWeek(ctx context.Context, userId int, weekKey string) ([]Selection, error)
	ListForWeek(ctx context.Context, weekKey string) ([]SelectionDetails, error)
	// ReplaceMeal moves selections from one meal to another when an admin
	// swaps a planned meal.
	ReplaceMeal(ctx context.Context, weekKey string, dayName string, oldMealId int, newMealId int) error
	// DeleteForMeal removes selections of a meal withdrawn from a day.
	DeleteForMeal(ctx context.Context, weekKey string, dayName string, mealId int) error
	// DeleteForUser removes every selection of a deleted account.
	DeleteForUser(ctx context.Context, userId int) error
	MealInUse(ctx context.Context, mealId int) (bool, error)
}

type RepositoryImpl struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

func (r *RepositoryImpl) Upsert(ctx context.Context, s Selection) (Selection, error) {
	query := `INSERT INTO user_selection (user_id, week_key, day_name, meal_id) VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, week_key, day_name) DO UPDATE SET meal_id = EXCLUDED.meal_id
		RETURNING id`
	err := r.db.QueryRow(ctx, query, s.UserId, s.WeekKey, s.DayName, s.MealId).Scan(&s.Id)
	if err != nil {
		return Selection{}, err
	}
	return s, nil
}

func (r *RepositoryImpl) DeleteForUserDay(ctx context.Context, userId int, weekKey string, dayName string) error {
	query := `DELETE FROM user_selection WHERE user_id = $1 AND week_key = $2 AND day_name = $3`
	tag, err := r.db.Exec(ctx, query, userId, weekKey, dayName)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrSelectionNotFound
	}
	return nil
}

func (r *RepositoryImpl) ListForUserWeek(ctx context.Context, userId int, weekKey string) ([]Selection, error) {
	query := `SELECT id, user_id, week_key, day_name, meal_id FROM user_selection
		WHERE user_id = $1 AND week_key = $2 ORDER BY day_name`
	rows, err := r.db.Query(ctx, query, userId, weekKey)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSelections(rows)
}

func (r *RepositoryImpl) ListForWeek(ctx context.Context, weekKey string) ([]SelectionDetails, error) {
	query := `SELECT s.id, s.user_id, s.week_key, s.day_name, s.meal_id, u.name, m.name
		FROM user_selection s
		JOIN app_user u ON u.id = s.user_id
		JOIN meal m ON m.id = s.meal_id
		WHERE s.week_key = $1
		ORDER BY u.name, s.day_name`
	rows, err := r.db.Query(ctx, query, weekKey)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var details []SelectionDetails
	for rows.Next() {
		var d SelectionDetails
		if err := rows.Scan(&d.Id, &d.UserId, &d.WeekKey, &d.DayName, &d.MealId, &d.UserName, &d.MealName); err != nil {
			return nil, err
		}
		details = append(details, d)
	}
	return details, rows.Err()
}

func (r *RepositoryImpl) ReplaceMeal(ctx context.Context, weekKey string, dayName string, oldMealId int, newMealId int) error {
	query := `UPDATE user_selection SET meal_id = $4 WHERE week_key = $1 AND day_name = $2 AND meal_id = $3`
	_, err := r.db.Exec(ctx, query, weekKey, dayName, oldMealId, newMealId)
	return err
}

func (r *RepositoryImpl) DeleteForMeal(ctx context.Context, weekKey string, dayName string, mealId int) error {
	query := `DELETE FROM user_selection WHERE week_key = $1 AND day_name = $2 AND meal_id = $3`
	_, err := r.db.Exec(ctx, query, weekKey, dayName, mealId)
	return err
}

func (r *RepositoryImpl) DeleteForUser(ctx context.Context, userId int) error {
	query := `DELETE FROM user_selection WHERE user_id = $1`
	_, err := r.db.Exec(ctx, query, userId)
	return err
}

func (r *RepositoryImpl) MealInUse(ctx context.Context, mealId int) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM user_selection WHERE meal_id = $1)`
	var inUse bool
	if err := r.db.QueryRow(ctx, query, mealId).Scan(&inUse); err != nil {
		return false, err
	}
	return inUse, nil
}

func scanSelections(rows pgx.Rows) ([]Selection, error) {
	var selections []Selection
	for rows.Next() {
		var s Selection
		if err := rows.Scan(&s.Id, &s.UserId, &s.WeekKey, &s.DayName, &s.MealId); err != nil {
			return nil, err
		}
		selections = append(selections, s)
	}
	return selections, rows.Err()
}
