package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/neetrino-com/neetrino-academy-sub005/internal/dto"
	"github.com/neetrino-com/neetrino-academy-sub005/internal/models"
	appErrors "github.com/neetrino-com/neetrino-academy-sub005/pkg/errors"
)

type stubUserRepo struct {
	users   map[string]models.User
	updates int
}

func (s *stubUserRepo) List(_ context.Context, _ models.UserFilter) ([]models.User, int, error) {
	var out []models.User
	for _, u := range s.users {
		out = append(out, u)
	}
	return out, len(out), nil
}

func (s *stubUserRepo) FindByID(_ context.Context, id string) (*models.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &u, nil
}

func (s *stubUserRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *stubUserRepo) Create(_ context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = "u-new"
	}
	s.users[user.ID] = *user
	return nil
}

func (s *stubUserRepo) Update(_ context.Context, user *models.User) error {
	s.users[user.ID] = *user
	s.updates++
	return nil
}

func newUserFixture(users ...models.User) (*UserService, *stubUserRepo) {
	repo := &stubUserRepo{users: map[string]models.User{}}
	for _, u := range users {
		repo.users[u.ID] = u
	}
	return NewUserService(repo, nil, zap.NewNop()), repo
}

func TestUserDeleteDeactivates(t *testing.T) {
	svc, repo := newUserFixture(models.User{
		ID: "u1", Email: "a@b.c", FullName: "Ada", Role: models.RoleStudent, Active: true,
	})

	require.NoError(t, svc.Delete(context.Background(), "u1"))
	assert.False(t, repo.users["u1"].Active)
	assert.Equal(t, 1, repo.updates)

	// Deleting an already inactive account is a no-op.
	require.NoError(t, svc.Delete(context.Background(), "u1"))
	assert.Equal(t, 1, repo.updates)
}

func TestUserDeleteUnknownUser(t *testing.T) {
	svc, _ := newUserFixture()

	err := svc.Delete(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestUserCreateRejectsDuplicateEmail(t *testing.T) {
	svc, _ := newUserFixture(models.User{
		ID: "u1", Email: "a@b.c", FullName: "Ada", Role: models.RoleStudent, Active: true,
	})

	_, err := svc.Create(context.Background(), dto.CreateUserRequest{
		Email: "a@b.c", Password: "secret1", FullName: "Ada Again", Role: "STUDENT",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}
