package user

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"
)

var ErrUserNotFound = errors.New("user not found")
var ErrEmailTaken = errors.New("email address is already registered")
var ErrUserNotPending = errors.New("user is not awaiting approval")
var ErrLastAdmin = errors.New("the last admin account cannot be removed or demoted")

// Mailer notifies accounts about approval lifecycle changes. Delivery
// failures are logged, never surfaced: mail is best-effort.
type Mailer interface {
	SignupReceived(ctx context.Context, userName string, userEmail string) error
	AccountApproved(ctx context.Context, userName string, userEmail string) error
	AccountRejected(ctx context.Context, userName string, userEmail string) error
}

// SelectionRemover is implemented by the selection repository. Deleting an
// account cascades to its stored selections.
type SelectionRemover interface {
	DeleteForUser(ctx context.Context, userId int) error
}

type Service interface {
	GetCurrentUser(ctx context.Context) (User, error)
	// Signup registers a pending account; an admin has to approve it
	// before it can be used.
	Signup(ctx context.Context, name string, email string) (User, error)
	Approve(ctx context.Context, id int) (User, error)
	Reject(ctx context.Context, id int) (User, error)
	ListPending(ctx context.Context) ([]User, error)
	GetUser(ctx context.Context, id int) (User, error)
	GetAllUsers(ctx context.Context) ([]User, error)
	UpdateUser(ctx context.Context, user User) (User, error)
	DeleteUser(ctx context.Context, id int) error
}

type UserServiceImpl struct {
	repo       Repo
	mailer     Mailer
	selections SelectionRemover
}

func NewUserService(repo Repo, mailer Mailer, selections SelectionRemover) *UserServiceImpl {
	return &UserServiceImpl{repo: repo, mailer: mailer, selections: selections}
}

func (u *UserServiceImpl) GetCurrentUser(ctx context.Context) (User, error) {
	userId, err := CurrentId(ctx)
	if err != nil {
		return User{}, fmt.Errorf("failed to get current user: %w", err)
	}
	return u.GetUser(ctx, userId)
}

func (u *UserServiceImpl) Signup(ctx context.Context, name string, email string) (User, error) {
	_, err := u.repo.GetUserByEmail(ctx, email)
	if err == nil {
		return User{}, ErrEmailTaken
	}
	if !errors.Is(err, ErrUserNotFound) {
		return User{}, fmt.Errorf("failed to check email: %w", err)
	}

	newUser := User{Name: name, Email: email, Role: RoleUser, Status: StatusPending}
	userId, err := u.repo.CreateUser(ctx, newUser)
	if err != nil {
		log.Errorf("failed to create user %q: %v", email, err)
		return User{}, fmt.Errorf("failed to create user: %w", err)
	}
	newUser.Id = userId

	if err := u.mailer.SignupReceived(ctx, name, email); err != nil {
		log.Warnf("failed to notify admin about signup of %q: %v", email, err)
	}
	return newUser, nil
}

func (u *UserServiceImpl) Approve(ctx context.Context, id int) (User, error) {
	return u.resolvePending(ctx, id, StatusApproved)
}

func (u *UserServiceImpl) Reject(ctx context.Context, id int) (User, error) {
	return u.resolvePending(ctx, id, StatusRejected)
}

func (u *UserServiceImpl) resolvePending(ctx context.Context, id int, status Status) (User, error) {
	pending, err := u.repo.GetUser(ctx, id)
	if err != nil {
		return User{}, err
	}
	if pending.Status != StatusPending {
		return User{}, ErrUserNotPending
	}

	pending.Status = status
	updated, err := u.repo.UpdateUser(ctx, pending)
	if err != nil {
		log.Errorf("failed to update user %d: %v", id, err)
		return User{}, fmt.Errorf("failed to update user: %w", err)
	}

	var notify func(context.Context, string, string) error
	if status == StatusApproved {
		notify = u.mailer.AccountApproved
	} else {
		notify = u.mailer.AccountRejected
	}
	if err := notify(ctx, updated.Name, updated.Email); err != nil {
		log.Warnf("failed to notify %q about account status: %v", updated.Email, err)
	}
	return updated, nil
}

func (u *UserServiceImpl) ListPending(ctx context.Context) ([]User, error) {
	return u.repo.ListByStatus(ctx, StatusPending)
}

func (u *UserServiceImpl) GetUser(ctx context.Context, id int) (User, error) {
	return u.repo.GetUser(ctx, id)
}

func (u *UserServiceImpl) GetAllUsers(ctx context.Context) ([]User, error) {
	return u.repo.GetAllUsers(ctx)
}

func (u *UserServiceImpl) UpdateUser(ctx context.Context, user User) (User, error) {
	existing, err := u.repo.GetUser(ctx, user.Id)
	if err != nil {
		return User{}, err
	}
	if user.Email != existing.Email {
		if _, err := u.repo.GetUserByEmail(ctx, user.Email); err == nil {
			return User{}, ErrEmailTaken
		} else if !errors.Is(err, ErrUserNotFound) {
			return User{}, fmt.Errorf("failed to check email: %w", err)
		}
	}
	if existing.Role == RoleAdmin && user.Role != RoleAdmin {
		if err := u.ensureNotLastAdmin(ctx); err != nil {
			return User{}, err
		}
	}
	return u.repo.UpdateUser(ctx, user)
}

func (u *UserServiceImpl) DeleteUser(ctx context.Context, id int) error {
	existing, err := u.repo.GetUser(ctx, id)
	if err != nil {
		return err
	}
	if existing.Role == RoleAdmin {
		if err := u.ensureNotLastAdmin(ctx); err != nil {
			return err
		}
	}
	if err := u.repo.DeleteUser(ctx, id); err != nil {
		log.Errorf("failed to delete user %d: %v", id, err)
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if err := u.selections.DeleteForUser(ctx, id); err != nil {
		log.Errorf("failed to delete selections of user %d: %v", id, err)
		return fmt.Errorf("failed to delete selections: %w", err)
	}
	return nil
}

func (u *UserServiceImpl) ensureNotLastAdmin(ctx context.Context) error {
	admins, err := u.repo.CountAdmins(ctx)
	if err != nil {
		return fmt.Errorf("failed to count admins: %w", err)
	}
	if admins <= 1 {
		return ErrLastAdmin
	}
	return nil
}
