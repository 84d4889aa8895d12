package user

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo interface {
	CreateUser(ctx context.Context, user User) (int, error)
	GetUser(ctx context.Context, id int) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
	GetAllUsers(ctx context.Context) ([]User, error)
	ListByStatus(ctx context.Context, status Status) ([]User, error)
	UpdateUser(ctx context.Context, user User) (User, error)
	DeleteUser(ctx context.Context, id int) error
	CountAdmins(ctx context.Context) (int, error)
}

type UserRepoImpl struct {
	db *pgxpool.Pool
}

func NewUserRepo(db *pgxpool.Pool) *UserRepoImpl {
	return &UserRepoImpl{db: db}
}

func (u *UserRepoImpl) CreateUser(ctx context.Context, user User) (int, error) {
	query := `INSERT INTO app_user (name, email, role, status) VALUES ($1, $2, $3, $4) RETURNING id`
	var id int
	err := u.db.QueryRow(ctx, query, user.Name, user.Email, string(user.Role), string(user.Status)).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (u *UserRepoImpl) GetUser(ctx context.Context, id int) (User, error) {
	query := `SELECT id, name, email, role, status FROM app_user WHERE id = $1`
	return u.scanUser(u.db.QueryRow(ctx, query, id))
}

func (u *UserRepoImpl) GetUserByEmail(ctx context.Context, email string) (User, error) {
	query := `SELECT id, name, email, role, status FROM app_user WHERE email = $1`
	return u.scanUser(u.db.QueryRow(ctx, query, email))
}

func (u *UserRepoImpl) GetAllUsers(ctx context.Context) ([]User, error) {
	query := `SELECT id, name, email, role, status FROM app_user ORDER BY name`
	return u.queryUsers(ctx, query)
}

func (u *UserRepoImpl) ListByStatus(ctx context.Context, status Status) ([]User, error) {
	query := `SELECT id, name, email, role, status FROM app_user WHERE status = $1 ORDER BY id`
	return u.queryUsers(ctx, query, string(status))
}

func (u *UserRepoImpl) UpdateUser(ctx context.Context, user User) (User, error) {
	query := `UPDATE app_user SET name = $2, email = $3, role = $4, status = $5 WHERE id = $1`
	tag, err := u.db.Exec(ctx, query, user.Id, user.Name, user.Email, string(user.Role), string(user.Status))
	if err != nil {
		return User{}, err
	}
	if tag.RowsAffected() == 0 {
		return User{}, ErrUserNotFound
	}
	return user, nil
}

func (u *UserRepoImpl) DeleteUser(ctx context.Context, id int) error {
	query := `DELETE FROM app_user WHERE id = $1`
	tag, err := u.db.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (u *UserRepoImpl) CountAdmins(ctx context.Context) (int, error) {
	query := `SELECT COUNT(*) FROM app_user WHERE role = 'admin' AND status = 'approved'`
	var count int
	if err := u.db.QueryRow(ctx, query).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (u *UserRepoImpl) queryUsers(ctx context.Context, query string, args ...any) ([]User, error) {
	rows, err := u.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		var usr User
		var role, status string
		if err := rows.Scan(&usr.Id, &usr.Name, &usr.Email, &role, &status); err != nil {
			return nil, err
		}
		usr.Role = Role(role)
		usr.Status = Status(status)
		users = append(users, usr)
	}
	return users, rows.Err()
}

func (u *UserRepoImpl) scanUser(row pgx.Row) (User, error) {
	var usr User
	var role, status string
	err := row.Scan(&usr.Id, &usr.Name, &usr.Email, &role, &status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrUserNotFound
		}
		return User{}, err
	}
	usr.Role = Role(role)
	usr.Status = Status(status)
	return usr, nil
}
