package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/neetrino-com/neetrino-academy-sub005/internal/dto"
	"github.com/neetrino-com/neetrino-academy-sub005/internal/models"
	appErrors "github.com/neetrino-com/neetrino-academy-sub005/pkg/errors"
)

type groupRepository interface {
	List(ctx context.Context, filter models.GroupFilter) ([]models.Group, int, error)
	FindByID(ctx context.Context, id string) (*models.Group, error)
	Create(ctx context.Context, group *models.Group) error
	Update(ctx context.Context, group *models.Group) error
	AddMember(ctx context.Context, groupID, userID string) error
	RemoveMember(ctx context.Context, groupID, userID string) error
	ListMemberIDs(ctx context.Context, groupID string) ([]string, error)
	IsMember(ctx context.Context, groupID, userID string) (bool, error)
}

type groupUserLookup interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

// GroupService manages student groups and their membership.
type GroupService struct {
	repo      groupRepository
	users     groupUserLookup
	validator *validator.Validate
	logger    *zap.Logger
}

// NewGroupService constructs a GroupService.
func NewGroupService(repo groupRepository, users groupUserLookup, validate *validator.Validate, logger *zap.Logger) *GroupService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &GroupService{repo: repo, users: users, validator: validate, logger: logger}
}

// List returns groups matching the filter.
func (s *GroupService) List(ctx context.Context, filter models.GroupFilter) ([]models.Group, int, error) {
	groups, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list groups")
	}
	return groups, total, nil
}

// Get loads a group.
func (s *GroupService) Get(ctx context.Context, id string) (*models.Group, error) {
	group, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "group not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load group")
	}
	return group, nil
}

// Create stores a new group.
func (s *GroupService) Create(ctx context.Context, req dto.CreateGroupRequest) (*models.Group, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid group payload")
	}

	group := models.Group{
		Name:      req.Name,
		CourseID:  req.CourseID,
		TeacherID: req.TeacherID,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		Active:    true,
	}
	if err := s.repo.Create(ctx, &group); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create group")
	}
	return &group, nil
}

// Update applies a partial update to a group.
func (s *GroupService) Update(ctx context.Context, id string, req dto.UpdateGroupRequest) (*models.Group, error) {
	group, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		group.Name = *req.Name
	}
	if req.CourseID != nil {
		group.CourseID = req.CourseID
	}
	if req.TeacherID != nil {
		group.TeacherID = req.TeacherID
	}
	if req.StartDate != nil {
		group.StartDate = req.StartDate
	}
	if req.EndDate != nil {
		group.EndDate = req.EndDate
	}
	if req.Active != nil {
		group.Active = *req.Active
	}

	if err := s.repo.Update(ctx, group); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update group")
	}
	return group, nil
}

// Delete deactivates a group. Its events, rules and chat history stay in
// place; listings and membership checks treat the group as gone.
func (s *GroupService) Delete(ctx context.Context, id string) error {
	group, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if !group.Active {
		return nil
	}

	group.Active = false
	if err := s.repo.Update(ctx, group); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to deactivate group")
	}
	s.logger.Info("group deactivated", zap.String("group_id", id))
	return nil
}

// AddMember enrolls a student into a group.
func (s *GroupService) AddMember(ctx context.Context, groupID string, req dto.AddGroupMemberRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid member payload")
	}

	if _, err := s.Get(ctx, groupID); err != nil {
		return err
	}
	if _, err := s.users.FindByID(ctx, req.UserID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}

	if err := s.repo.AddMember(ctx, groupID, req.UserID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to add member")
	}
	s.logger.Info("group member added", zap.String("group_id", groupID), zap.String("user_id", req.UserID))
	return nil
}

// RemoveMember removes a student from a group.
func (s *GroupService) RemoveMember(ctx context.Context, groupID, userID string) error {
	if _, err := s.Get(ctx, groupID); err != nil {
		return err
	}
	if err := s.repo.RemoveMember(ctx, groupID, userID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to remove member")
	}
	return nil
}

// ListMembers returns the user ids enrolled in a group.
func (s *GroupService) ListMembers(ctx context.Context, groupID string) ([]string, error) {
	if _, err := s.Get(ctx, groupID); err != nil {
		return nil, err
	}
	ids, err := s.repo.ListMemberIDs(ctx, groupID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list members")
	}
	return ids, nil
}
