package services

import (
	"context"
	"errors"
	"testing"

	"task-management-api/internal/models"
	"task-management-api/internal/testutil"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type bcryptHasher struct{}

func (bcryptHasher) Hash(pw string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.MinCost)
	return string(b), err
}

func (bcryptHasher) Verify(hash, pw string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	return err == nil, err
}

func newUserService(t *testing.T) *UserService {
	t.Helper()
	return NewUserService(testutil.MustDB(t), bcryptHasher{})
}

func register(t *testing.T, svc *UserService, email string) *models.User {
	t.Helper()
	u, err := svc.Register(context.Background(), RegisterInput{
		Name: "Alice", Email: email, Password: "secret", Role: "dev", Title: "Engineer",
	})
	require.NoError(t, err)
	return u
}

func TestRegister(t *testing.T) {
	svc := newUserService(t)
	ctx := context.Background()

	u := register(t, svc, "  Alice@Example.com ")
	require.Equal(t, "alice@example.com", u.Email)
	require.True(t, u.IsActive)
	require.NotEqual(t, "secret", u.Password)

	_, err := svc.Register(ctx, RegisterInput{Name: "Other", Email: "ALICE@example.com", Password: "x"})
	require.ErrorIs(t, err, ErrConflict)
	require.EqualError(t, err, "User already exists")

	_, err = svc.Register(ctx, RegisterInput{Name: "", Email: "b@example.com", Password: "x"})
	require.ErrorIs(t, err, ErrValidation)
}

func TestAuthenticate(t *testing.T) {
	svc := newUserService(t)
	ctx := context.Background()
	u := register(t, svc, "alice@example.com")

	got, err := svc.Authenticate(ctx, "ALICE@example.com", "secret")
	require.NoError(t, err)
	require.Equal(t, u.ID, got.ID)

	_, err = svc.Authenticate(ctx, "alice@example.com", "wrong")
	require.ErrorIs(t, err, ErrAuth)
	require.EqualError(t, err, msgInvalidCredentials)

	_, err = svc.Authenticate(ctx, "nobody@example.com", "secret")
	require.ErrorIs(t, err, ErrAuth)
	require.EqualError(t, err, msgInvalidCredentials)

	require.NoError(t, svc.SetActive(ctx, u.ID, false))
	_, err = svc.Authenticate(ctx, "alice@example.com", "secret")
	require.ErrorIs(t, err, ErrAuth)
	require.EqualError(t, err, msgDeactivated)

	require.NoError(t, svc.SetActive(ctx, u.ID, true))
	_, err = svc.Authenticate(ctx, "alice@example.com", "secret")
	require.NoError(t, err)
}

func TestUpdateProfileAndPassword(t *testing.T) {
	svc := newUserService(t)
	ctx := context.Background()
	u := register(t, svc, "alice@example.com")

	updated, err := svc.UpdateProfile(ctx, u.ID, ProfileInput{Title: "Lead"})
	require.NoError(t, err)
	require.Equal(t, "Alice", updated.Name)
	require.Equal(t, "Lead", updated.Title)

	stored, err := svc.Get(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, "Lead", stored.Title)
	require.Equal(t, "dev", stored.Role)

	require.ErrorIs(t, svc.ChangePassword(ctx, u.ID, ""), ErrValidation)
	require.NoError(t, svc.ChangePassword(ctx, u.ID, "fresh"))
	_, err = svc.Authenticate(ctx, "alice@example.com", "fresh")
	require.NoError(t, err)

	_, err = svc.UpdateProfile(ctx, "missing", ProfileInput{Name: "x"})
	require.ErrorIs(t, err, ErrNotFound)
	require.ErrorIs(t, svc.SetActive(ctx, "missing", true), ErrNotFound)
}

func TestDeleteUser_RemovesMemberships(t *testing.T) {
	db := testutil.MustDB(t)
	users := NewUserService(db, bcryptHasher{})
	tasks := NewTaskService(db, nil)
	ctx := context.Background()
	alice := testutil.SeedUser(t, db, "Alice")
	bob := testutil.SeedUser(t, db, "Bob")

	task := createTask(t, tasks, []string{alice.ID, bob.ID}, "Launch")

	require.NoError(t, users.Delete(ctx, bob.ID))
	require.ErrorIs(t, users.Delete(ctx, bob.ID), ErrNotFound)

	stored, err := tasks.Get(ctx, task.ID)
	require.NoError(t, err)
	require.Len(t, stored.Team, 1)
	require.Equal(t, alice.ID, stored.Team[0].ID)

	var links int64
	require.NoError(t, db.Table("notice_team").Where("user_id = ?", bob.ID).Count(&links).Error)
	require.Zero(t, links)

	team, err := users.ListTeam(ctx)
	require.NoError(t, err)
	require.Len(t, team, 1)
}
