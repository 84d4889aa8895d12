package holiday

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	List(ctx context.Context) ([]Holiday, error)
	Get(ctx context.Context, id string) (Holiday, error)
	// ExistsOnDate reports whether a holiday is stored for the exact date.
	ExistsOnDate(ctx context.Context, date time.Time) (bool, error)
	Create(ctx context.Context, holiday Holiday) error
	Delete(ctx context.Context, id string) error
}

type RepositoryImpl struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

func (r *RepositoryImpl) List(ctx context.Context) ([]Holiday, error) {
	query := `SELECT id, name, date, recurring FROM holiday ORDER BY created_at`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var holidays []Holiday
	for rows.Next() {
		var h Holiday
		if err := rows.Scan(&h.Id, &h.Name, &h.Date, &h.Recurring); err != nil {
			return nil, err
		}
		holidays = append(holidays, h)
	}
	return holidays, rows.Err()
}

func (r *RepositoryImpl) Get(ctx context.Context, id string) (Holiday, error) {
	query := `SELECT id, name, date, recurring FROM holiday WHERE id = $1`
	var h Holiday
	err := r.db.QueryRow(ctx, query, id).Scan(&h.Id, &h.Name, &h.Date, &h.Recurring)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Holiday{}, ErrHolidayNotFound
		}
		return Holiday{}, err
	}
	return h, nil
}

func (r *RepositoryImpl) ExistsOnDate(ctx context.Context, date time.Time) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM holiday WHERE date = $1)`
	var exists bool
	err := r.db.QueryRow(ctx, query, date).Scan(&exists)
	return exists, err
}

func (r *RepositoryImpl) Create(ctx context.Context, holiday Holiday) error {
	query := `INSERT INTO holiday (id, name, date, recurring) VALUES ($1, $2, $3, $4)`
	_, err := r.db.Exec(ctx, query, holiday.Id, holiday.Name, holiday.Date, holiday.Recurring)
	return err
}

func (r *RepositoryImpl) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM holiday WHERE id = $1`
	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrHolidayNotFound
	}
	return nil
}
