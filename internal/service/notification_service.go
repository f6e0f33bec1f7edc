package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/neetrino-com/neetrino-academy-sub005/internal/dto"
	"github.com/neetrino-com/neetrino-academy-sub005/internal/models"
	appErrors "github.com/neetrino-com/neetrino-academy-sub005/pkg/errors"
	"github.com/neetrino-com/neetrino-academy-sub005/pkg/jobs"
)

type notificationRepository interface {
	CreateBatch(ctx context.Context, notifications []models.Notification) error
	ListByUser(ctx context.Context, userID string, page, pageSize int) ([]models.Notification, int, error)
	CountUnread(ctx context.Context, userID string) (int, error)
	MarkRead(ctx context.Context, id, userID string) error
}

type memberLister interface {
	ListMemberIDs(ctx context.Context, groupID string) ([]string, error)
}

type unreadCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

const unreadCountTTL = time.Minute

type fanoutPayload struct {
	GroupID string
	Kind    string
	Title   string
	Body    string
}

// NotificationService delivers per-user notifications. Group fan-out runs on
// a background worker queue so writers never block on recipient count.
type NotificationService struct {
	repo      notificationRepository
	groups    memberLister
	cache     unreadCache
	metrics   *MetricsService
	queue     *jobs.Queue
	validator *validator.Validate
	logger    *zap.Logger
}

// NewNotificationService constructs a NotificationService. Call Start before
// enqueueing fan-outs and Stop on shutdown.
func NewNotificationService(repo notificationRepository, groups memberLister, cache unreadCache, metrics *MetricsService, queueCfg jobs.QueueConfig, validate *validator.Validate, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	s := &NotificationService{
		repo:      repo,
		groups:    groups,
		cache:     cache,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
	}
	queueCfg.Logger = logger
	s.queue = jobs.NewQueue("notifications", s.handleFanout, queueCfg)
	return s
}

// Start launches the fan-out workers.
func (s *NotificationService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains the fan-out workers.
func (s *NotificationService) Stop() {
	s.queue.Stop()
}

// NotifyGroup enqueues a fan-out of one message to every member of a group.
// Delivery is asynchronous; failures are retried by the queue.
func (s *NotificationService) NotifyGroup(groupID, kind, title, body string) {
	err := s.queue.Enqueue(jobs.Job{
		ID:      uuid.NewString(),
		Type:    "group_fanout",
		Payload: fanoutPayload{GroupID: groupID, Kind: kind, Title: title, Body: body},
	})
	if err != nil {
		s.logger.Error("failed to enqueue notification fan-out",
			zap.String("group_id", groupID), zap.Error(err))
	}
}

// Broadcast validates and enqueues an explicit fan-out request.
func (s *NotificationService) Broadcast(req dto.BroadcastNotificationRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid broadcast payload")
	}
	s.NotifyGroup(req.GroupID, models.NotificationKindBroadcast, req.Title, req.Body)
	return nil
}

func (s *NotificationService) handleFanout(ctx context.Context, job jobs.Job) error {
	payload, ok := job.Payload.(fanoutPayload)
	if !ok {
		s.logger.Error("dropping fan-out job with unexpected payload", zap.String("job_id", job.ID))
		return nil
	}

	memberIDs, err := s.groups.ListMemberIDs(ctx, payload.GroupID)
	if err != nil {
		return fmt.Errorf("list recipients for group %s: %w", payload.GroupID, err)
	}
	if len(memberIDs) == 0 {
		return nil
	}

	notifications := make([]models.Notification, 0, len(memberIDs))
	keys := make([]string, 0, len(memberIDs))
	for _, userID := range memberIDs {
		notifications = append(notifications, models.Notification{
			UserID: userID,
			Kind:   payload.Kind,
			Title:  payload.Title,
			Body:   payload.Body,
		})
		keys = append(keys, unreadCountKey(userID))
	}

	if err := s.repo.CreateBatch(ctx, notifications); err != nil {
		return fmt.Errorf("store notifications for group %s: %w", payload.GroupID, err)
	}

	if s.cache != nil {
		if err := s.cache.Delete(ctx, keys...); err != nil {
			s.logger.Warn("failed to invalidate unread counters", zap.Error(err))
		}
	}

	s.metrics.ObserveFanout(len(memberIDs))
	s.logger.Info("notification fan-out delivered",
		zap.String("group_id", payload.GroupID),
		zap.String("kind", payload.Kind),
		zap.Int("recipients", len(memberIDs)))
	return nil
}

func unreadCountKey(userID string) string {
	return "notifications:unread:" + userID
}

// List returns a user's notifications, newest first.
func (s *NotificationService) List(ctx context.Context, userID string, page, pageSize int) ([]models.Notification, int, error) {
	notifications, total, err := s.repo.ListByUser(ctx, userID, page, pageSize)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list notifications")
	}
	return notifications, total, nil
}

// CountUnread returns the user's unread counter, cached briefly in redis.
func (s *NotificationService) CountUnread(ctx context.Context, userID string) (int, error) {
	key := unreadCountKey(userID)
	if s.cache != nil {
		var cached int
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			return cached, nil
		}
	}

	count, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count unread notifications")
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, count, unreadCountTTL); err != nil {
			s.logger.Warn("failed to cache unread counter", zap.Error(err))
		}
	}
	return count, nil
}

// MarkRead stamps a notification read and drops the cached counter.
func (s *NotificationService) MarkRead(ctx context.Context, id, userID string) error {
	if err := s.repo.MarkRead(ctx, id, userID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to mark notification read")
	}
	if s.cache != nil {
		if err := s.cache.Delete(ctx, unreadCountKey(userID)); err != nil {
			s.logger.Warn("failed to invalidate unread counter", zap.Error(err))
		}
	}
	return nil
}
