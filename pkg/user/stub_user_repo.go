package user

import (
	"context"
	"sync"
)

type StubUserRepo struct {
	mu     sync.RWMutex
	nextId int
	users  []User
}

func NewStubUserRepo() *StubUserRepo {
	return &StubUserRepo{nextId: 1}
}

func (r *StubUserRepo) CreateUser(ctx context.Context, user User) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user.Id = r.nextId
	r.nextId++
	r.users = append(r.users, user)
	return user.Id, nil
}

func (r *StubUserRepo) GetUser(ctx context.Context, id int) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.Id == id {
			return u, nil
		}
	}
	return User{}, ErrUserNotFound
}

func (r *StubUserRepo) GetUserByEmail(ctx context.Context, email string) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return User{}, ErrUserNotFound
}

func (r *StubUserRepo) GetAllUsers(ctx context.Context) ([]User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]User, len(r.users))
	copy(result, r.users)
	return result, nil
}

func (r *StubUserRepo) ListByStatus(ctx context.Context, status Status) ([]User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []User
	for _, u := range r.users {
		if u.Status == status {
			result = append(result, u)
		}
	}
	return result, nil
}

func (r *StubUserRepo) UpdateUser(ctx context.Context, user User) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.users {
		if r.users[i].Id == user.Id {
			r.users[i] = user
			return user, nil
		}
	}
	return User{}, ErrUserNotFound
}

func (r *StubUserRepo) DeleteUser(ctx context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, u := range r.users {
		if u.Id == id {
			r.users = append(r.users[:i], r.users[i+1:]...)
			return nil
		}
	}
	return ErrUserNotFound
}

func (r *StubUserRepo) CountAdmins(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, u := range r.users {
		if u.Role == RoleAdmin && u.Status == StatusApproved {
			count++
		}
	}
	return count, nil
}

// Reset clears the stub between tests.
func (r *StubUserRepo) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users = nil
	r.nextId = 1
}
