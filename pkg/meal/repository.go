package meal

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	List(ctx context.Context) ([]Meal, error)
	Get(ctx context.Context, id int) (Meal, error)
	Create(ctx context.Context, m Meal) (Meal, error)
	Update(ctx context.Context, m Meal) error
	Delete(ctx context.Context, id int) error
}

type RepositoryImpl struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

func (r *RepositoryImpl) List(ctx context.Context) ([]Meal, error) {
	query := `SELECT id, name, description FROM meal ORDER BY id`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var meals []Meal
	for rows.Next() {
		var m Meal
		if err := rows.Scan(&m.Id, &m.Name, &m.Description); err != nil {
			return nil, err
		}
		meals = append(meals, m)
	}
	return meals, rows.Err()
}

func (r *RepositoryImpl) Get(ctx context.Context, id int) (Meal, error) {
	query := `SELECT id, name, description FROM meal WHERE id = $1`
	var m Meal
	err := r.db.QueryRow(ctx, query, id).Scan(&m.Id, &m.Name, &m.Description)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Meal{}, ErrMealNotFound
		}
		return Meal{}, err
	}
	return m, nil
}

func (r *RepositoryImpl) Create(ctx context.Context, m Meal) (Meal, error) {
	query := `INSERT INTO meal (name, description) VALUES ($1, $2) RETURNING id`
	if err := r.db.QueryRow(ctx, query, m.Name, m.Description).Scan(&m.Id); err != nil {
		return Meal{}, err
	}
	return m, nil
}

func (r *RepositoryImpl) Update(ctx context.Context, m Meal) error {
	query := `UPDATE meal SET name = $2, description = $3 WHERE id = $1`
	tag, err := r.db.Exec(ctx, query, m.Id, m.Name, m.Description)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrMealNotFound
	}
	return nil
}

func (r *RepositoryImpl) Delete(ctx context.Context, id int) error {
	query := `DELETE FROM meal WHERE id = $1`
	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrMealNotFound
	}
	return nil
}
