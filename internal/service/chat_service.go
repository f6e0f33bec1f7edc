package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/neetrino-com/neetrino-academy-sub005/internal/dto"
	"github.com/neetrino-com/neetrino-academy-sub005/internal/models"
	appErrors "github.com/neetrino-com/neetrino-academy-sub005/pkg/errors"
)

type chatRepository interface {
	Create(ctx context.Context, message *models.ChatMessage) error
	ListByGroup(ctx context.Context, groupID string, page, pageSize int) ([]models.ChatMessage, int, error)
}

// ChatService handles group chat. Only group members may read or post;
// admins bypass the membership check.
type ChatService struct {
	repo      chatRepository
	members   membershipChecker
	validator *validator.Validate
	logger    *zap.Logger
}

// NewChatService constructs a ChatService.
func NewChatService(repo chatRepository, members membershipChecker, validate *validator.Validate, logger *zap.Logger) *ChatService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &ChatService{repo: repo, members: members, validator: validate, logger: logger}
}

func (s *ChatService) authorize(ctx context.Context, groupID, userID string, role models.UserRole) error {
	if role == models.RoleAdmin {
		return nil
	}
	member, err := s.members.IsMember(ctx, groupID, userID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check membership")
	}
	if !member {
		return appErrors.Clone(appErrors.ErrNotGroupMember, "user is not a member of this group")
	}
	return nil
}

// Post publishes a message to a group's chat.
func (s *ChatService) Post(ctx context.Context, groupID, authorID string, role models.UserRole, req dto.PostChatMessageRequest) (*models.ChatMessage, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid message payload")
	}
	if err := s.authorize(ctx, groupID, authorID, role); err != nil {
		return nil, err
	}

	message := models.ChatMessage{GroupID: groupID, AuthorID: authorID, Body: req.Body}
	if err := s.repo.Create(ctx, &message); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to post message")
	}
	return &message, nil
}

// List returns a group's chat history, newest first.
func (s *ChatService) List(ctx context.Context, groupID, userID string, role models.UserRole, page, pageSize int) ([]models.ChatMessage, int, error) {
	if err := s.authorize(ctx, groupID, userID, role); err != nil {
		return nil, 0, err
	}
	messages, total, err := s.repo.ListByGroup(ctx, groupID, page, pageSize)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list messages")
	}
	return messages, total, nil
}
