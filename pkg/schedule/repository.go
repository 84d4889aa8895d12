package schedule

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cantine/cantine/pkg/calweek"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrWeekNotFound = errors.New("weekly schedule not found")

type Repository interface {
	Get(ctx context.Context, weekKey string) (WeeklySchedule, error)
	GetAll(ctx context.Context) ([]WeeklySchedule, error)
	// Upsert inserts the schedule, replacing an existing row for the same
	// week. Concurrent first accesses race on the insert; last write wins.
	Upsert(ctx context.Context, s WeeklySchedule) error
	Update(ctx context.Context, s WeeklySchedule) error
	MealInUse(ctx context.Context, mealId int) (bool, error)
}

type RepositoryImpl struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

func (r *RepositoryImpl) Get(ctx context.Context, weekKey string) (WeeklySchedule, error) {
	query := `SELECT week_key, days FROM weekly_schedule WHERE week_key = $1`
	var key string
	var daysJSON []byte
	err := r.db.QueryRow(ctx, query, weekKey).Scan(&key, &daysJSON)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return WeeklySchedule{}, ErrWeekNotFound
		}
		return WeeklySchedule{}, err
	}
	return rowToSchedule(key, daysJSON)
}

func (r *RepositoryImpl) GetAll(ctx context.Context) ([]WeeklySchedule, error) {
	query := `SELECT week_key, days FROM weekly_schedule ORDER BY week_key`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var schedules []WeeklySchedule
	for rows.Next() {
		var key string
		var daysJSON []byte
		if err := rows.Scan(&key, &daysJSON); err != nil {
			return nil, err
		}
		schedule, err := rowToSchedule(key, daysJSON)
		if err != nil {
			return nil, err
		}
		schedules = append(schedules, schedule)
	}
	return schedules, rows.Err()
}

func (r *RepositoryImpl) Upsert(ctx context.Context, s WeeklySchedule) error {
	daysJSON, err := json.Marshal(s.Days)
	if err != nil {
		return fmt.Errorf("failed to encode days: %w", err)
	}
	query := `INSERT INTO weekly_schedule (week_key, days) VALUES ($1, $2)
		ON CONFLICT (week_key) DO UPDATE SET days = EXCLUDED.days`
	_, err = r.db.Exec(ctx, query, s.Week.String(), daysJSON)
	return err
}

func (r *RepositoryImpl) Update(ctx context.Context, s WeeklySchedule) error {
	daysJSON, err := json.Marshal(s.Days)
	if err != nil {
		return fmt.Errorf("failed to encode days: %w", err)
	}
	query := `UPDATE weekly_schedule SET days = $2 WHERE week_key = $1`
	tag, err := r.db.Exec(ctx, query, s.Week.String(), daysJSON)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrWeekNotFound
	}
	return nil
}

// MealInUse reports whether any stored day still snapshots the meal. It lets
// the meal service refuse to delete a meal a schedule references.
func (r *RepositoryImpl) MealInUse(ctx context.Context, mealId int) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM weekly_schedule WHERE days @> $1::jsonb)`
	needle := fmt.Sprintf(`[{"meals":[{"id":%d}]}]`, mealId)
	var inUse bool
	if err := r.db.QueryRow(ctx, query, needle).Scan(&inUse); err != nil {
		return false, err
	}
	return inUse, nil
}

func rowToSchedule(weekKey string, daysJSON []byte) (WeeklySchedule, error) {
	week, err := calweek.WeekNumberFromString(weekKey)
	if err != nil {
		return WeeklySchedule{}, fmt.Errorf("corrupt week key %q: %w", weekKey, err)
	}
	var days []ScheduledDay
	if err := json.Unmarshal(daysJSON, &days); err != nil {
		return WeeklySchedule{}, fmt.Errorf("corrupt days for week %s: %w", weekKey, err)
	}
	return WeeklySchedule{Week: week, Days: days}, nil
}
