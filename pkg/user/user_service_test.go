package user

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mailerStub struct {
	signups    []string
	approvals  []string
	rejections []string
}

func (m *mailerStub) SignupReceived(ctx context.Context, userName string, userEmail string) error {
	m.signups = append(m.signups, userEmail)
	return nil
}

func (m *mailerStub) AccountApproved(ctx context.Context, userName string, userEmail string) error {
	m.approvals = append(m.approvals, userEmail)
	return nil
}

func (m *mailerStub) AccountRejected(ctx context.Context, userName string, userEmail string) error {
	m.rejections = append(m.rejections, userEmail)
	return nil
}

type selectionRemoverStub struct {
	removed []int
}

func (s *selectionRemoverStub) DeleteForUser(ctx context.Context, userId int) error {
	s.removed = append(s.removed, userId)
	return nil
}

type fixture struct {
	service    *UserServiceImpl
	repo       *StubUserRepo
	mailer     *mailerStub
	selections *selectionRemoverStub
}

func newFixture() *fixture {
	repo := NewStubUserRepo()
	mailer := &mailerStub{}
	selections := &selectionRemoverStub{}
	return &fixture{
		service:    NewUserService(repo, mailer, selections),
		repo:       repo,
		mailer:     mailer,
		selections: selections,
	}
}

func (f *fixture) seedAdmin(t *testing.T, email string) User {
	t.Helper()
	admin := User{Name: "Chef", Email: email, Role: RoleAdmin, Status: StatusApproved}
	id, err := f.repo.CreateUser(context.Background(), admin)
	require.NoError(t, err)
	admin.Id = id
	return admin
}

func TestSignup(t *testing.T) {
	f := newFixture()

	created, err := f.service.Signup(context.Background(), "Jean", "jean@example.com")
	require.NoError(t, err)

	assert.NotZero(t, created.Id)
	assert.Equal(t, RoleUser, created.Role)
	assert.Equal(t, StatusPending, created.Status)
	assert.Equal(t, []string{"jean@example.com"}, f.mailer.signups)
}

func TestSignupWithTakenEmail(t *testing.T) {
	f := newFixture()

	_, err := f.service.Signup(context.Background(), "Jean", "jean@example.com")
	require.NoError(t, err)

	_, err = f.service.Signup(context.Background(), "Jeanne", "jean@example.com")
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestApprove(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	created, err := f.service.Signup(ctx, "Jean", "jean@example.com")
	require.NoError(t, err)

	approved, err := f.service.Approve(ctx, created.Id)
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, approved.Status)
	assert.Equal(t, []string{"jean@example.com"}, f.mailer.approvals)

	pending, err := f.service.ListPending(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestReject(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	created, err := f.service.Signup(ctx, "Jean", "jean@example.com")
	require.NoError(t, err)

	rejected, err := f.service.Reject(ctx, created.Id)
	require.NoError(t, err)
	assert.Equal(t, StatusRejected, rejected.Status)
	assert.Equal(t, []string{"jean@example.com"}, f.mailer.rejections)
}

func TestApproveNonPendingUser(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	created, err := f.service.Signup(ctx, "Jean", "jean@example.com")
	require.NoError(t, err)
	_, err = f.service.Approve(ctx, created.Id)
	require.NoError(t, err)

	_, err = f.service.Approve(ctx, created.Id)
	assert.ErrorIs(t, err, ErrUserNotPending)
}

func TestApproveMissingUser(t *testing.T) {
	f := newFixture()

	_, err := f.service.Approve(context.Background(), 42)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestDeleteUserCascadesToSelections(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	created, err := f.service.Signup(ctx, "Jean", "jean@example.com")
	require.NoError(t, err)

	require.NoError(t, f.service.DeleteUser(ctx, created.Id))

	_, err = f.service.GetUser(ctx, created.Id)
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.Equal(t, []int{created.Id}, f.selections.removed)
}

func TestDeleteLastAdmin(t *testing.T) {
	f := newFixture()
	admin := f.seedAdmin(t, "chef@example.com")

	err := f.service.DeleteUser(context.Background(), admin.Id)
	assert.ErrorIs(t, err, ErrLastAdmin)
}

func TestDeleteAdminWithAnotherRemaining(t *testing.T) {
	f := newFixture()
	first := f.seedAdmin(t, "chef@example.com")
	f.seedAdmin(t, "sous-chef@example.com")

	assert.NoError(t, f.service.DeleteUser(context.Background(), first.Id))
}

func TestDemoteLastAdmin(t *testing.T) {
	f := newFixture()
	admin := f.seedAdmin(t, "chef@example.com")

	admin.Role = RoleUser
	_, err := f.service.UpdateUser(context.Background(), admin)
	assert.ErrorIs(t, err, ErrLastAdmin)
}

func TestUpdateUserEmailConflict(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	first, err := f.service.Signup(ctx, "Jean", "jean@example.com")
	require.NoError(t, err)
	_, err = f.service.Signup(ctx, "Jeanne", "jeanne@example.com")
	require.NoError(t, err)

	first.Email = "jeanne@example.com"
	_, err = f.service.UpdateUser(ctx, first)
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestUpdateUserKeepingOwnEmail(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	created, err := f.service.Signup(ctx, "Jean", "jean@example.com")
	require.NoError(t, err)

	created.Name = "Jean-Pierre"
	updated, err := f.service.UpdateUser(ctx, created)
	require.NoError(t, err)
	assert.Equal(t, "Jean-Pierre", updated.Name)
}

func TestGetCurrentUser(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	created, err := f.service.Signup(ctx, "Jean", "jean@example.com")
	require.NoError(t, err)

	current, err := f.service.GetCurrentUser(WithUser(ctx, created))
	require.NoError(t, err)
	assert.Equal(t, created, current)

	_, err = f.service.GetCurrentUser(ctx)
	assert.ErrorIs(t, err, ErrNoUser)
}
