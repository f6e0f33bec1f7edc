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

type stubGroupRepo struct {
	groups  map[string]models.Group
	members map[string][]string
	updates int
}

func (s *stubGroupRepo) List(_ context.Context, _ models.GroupFilter) ([]models.Group, int, error) {
	var out []models.Group
	for _, g := range s.groups {
		out = append(out, g)
	}
	return out, len(out), nil
}

func (s *stubGroupRepo) FindByID(_ context.Context, id string) (*models.Group, error) {
	g, ok := s.groups[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &g, nil
}

func (s *stubGroupRepo) Create(_ context.Context, group *models.Group) error {
	if group.ID == "" {
		group.ID = "g-new"
	}
	s.groups[group.ID] = *group
	return nil
}

func (s *stubGroupRepo) Update(_ context.Context, group *models.Group) error {
	s.groups[group.ID] = *group
	s.updates++
	return nil
}

func (s *stubGroupRepo) AddMember(_ context.Context, groupID, userID string) error {
	s.members[groupID] = append(s.members[groupID], userID)
	return nil
}

func (s *stubGroupRepo) RemoveMember(_ context.Context, groupID, userID string) error {
	kept := s.members[groupID][:0]
	for _, id := range s.members[groupID] {
		if id != userID {
			kept = append(kept, id)
		}
	}
	s.members[groupID] = kept
	return nil
}

func (s *stubGroupRepo) ListMemberIDs(_ context.Context, groupID string) ([]string, error) {
	return s.members[groupID], nil
}

func (s *stubGroupRepo) IsMember(_ context.Context, groupID, userID string) (bool, error) {
	for _, id := range s.members[groupID] {
		if id == userID {
			return true, nil
		}
	}
	return false, nil
}

type stubGroupUsers struct {
	users map[string]models.User
}

func (s *stubGroupUsers) FindByID(_ context.Context, id string) (*models.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &u, nil
}

func newGroupFixture(groups ...models.Group) (*GroupService, *stubGroupRepo, *stubGroupUsers) {
	repo := &stubGroupRepo{groups: map[string]models.Group{}, members: map[string][]string{}}
	for _, g := range groups {
		repo.groups[g.ID] = g
	}
	users := &stubGroupUsers{users: map[string]models.User{}}
	return NewGroupService(repo, users, nil, zap.NewNop()), repo, users
}

func TestGroupDeleteDeactivates(t *testing.T) {
	svc, repo, _ := newGroupFixture(models.Group{ID: "g1", Name: "Go Basics", Active: true})

	require.NoError(t, svc.Delete(context.Background(), "g1"))
	assert.False(t, repo.groups["g1"].Active)
	assert.Equal(t, 1, repo.updates)

	// A second delete leaves the row untouched.
	require.NoError(t, svc.Delete(context.Background(), "g1"))
	assert.Equal(t, 1, repo.updates)
}

func TestGroupDeleteUnknownGroup(t *testing.T) {
	svc, _, _ := newGroupFixture()

	err := svc.Delete(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestGroupAddMemberRequiresExistingUser(t *testing.T) {
	svc, repo, users := newGroupFixture(models.Group{ID: "g1", Name: "Go Basics", Active: true})

	err := svc.AddMember(context.Background(), "g1", dto.AddGroupMemberRequest{UserID: "u1"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)

	users.users["u1"] = models.User{ID: "u1", Role: models.RoleStudent, Active: true}
	require.NoError(t, svc.AddMember(context.Background(), "g1", dto.AddGroupMemberRequest{UserID: "u1"}))
	assert.Equal(t, []string{"u1"}, repo.members["g1"])
}
