package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/neetrino-com/neetrino-academy-sub005/internal/dto"
	"github.com/neetrino-com/neetrino-academy-sub005/internal/models"
	"github.com/neetrino-com/neetrino-academy-sub005/internal/repository"
	appErrors "github.com/neetrino-com/neetrino-academy-sub005/pkg/errors"
)

const dateLayout = "2006-01-02"

// ScheduleRuleReader provides access to a group's weekly rules.
type ScheduleRuleReader interface {
	ListByGroup(ctx context.Context, groupID string) ([]models.ScheduleRule, error)
	ListActiveByGroup(ctx context.Context, groupID string) ([]models.ScheduleRule, error)
	FindByID(ctx context.Context, id string) (*models.ScheduleRule, error)
	Create(ctx context.Context, rule *models.ScheduleRule) error
	SetActive(ctx context.Context, id string, active bool) error
}

// EventStore provides calendar event persistence for the expander.
type EventStore interface {
	FindOverlapping(ctx context.Context, start, end time.Time, teacherID string, location *string) ([]models.Event, error)
	Create(ctx context.Context, event *models.Event) error
	List(ctx context.Context, filter models.EventFilter) ([]models.Event, int, error)
	FindByID(ctx context.Context, id string) (*models.Event, error)
	Update(ctx context.Context, event *models.Event) error
	Delete(ctx context.Context, id string) error
}

// GroupReader resolves the group an expansion targets.
type GroupReader interface {
	FindByID(ctx context.Context, id string) (*models.Group, error)
}

// GroupNotifier fans a message out to every member of a group.
type GroupNotifier interface {
	NotifyGroup(groupID, kind, title, body string)
}

// ScheduleService expands weekly recurrence rules into concrete calendar
// events and manages rules and events directly.
type ScheduleService struct {
	rules    ScheduleRuleReader
	events   EventStore
	groups   GroupReader
	notifier GroupNotifier
	validate *validator.Validate
	logger   *zap.Logger
}

// NewScheduleService wires a schedule service.
func NewScheduleService(rules ScheduleRuleReader, events EventStore, groups GroupReader, notifier GroupNotifier, logger *zap.Logger) *ScheduleService {
	return &ScheduleService{
		rules:    rules,
		events:   events,
		groups:   groups,
		notifier: notifier,
		validate: validator.New(),
		logger:   logger,
	}
}

// Expand materialises all of a group's active weekly rules over the requested
// date window. Candidates that collide with existing events are reported, not
// persisted; every non-colliding candidate is inserted individually, so a
// partial batch is a normal outcome rather than an error.
func (s *ScheduleService) Expand(ctx context.Context, groupID string, req dto.GenerateScheduleRequest, invokerID string) (*dto.GenerateScheduleResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "startDate and endDate are required")
	}

	windowStart, err := time.ParseInLocation(dateLayout, req.StartDate, time.Local)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "startDate must be YYYY-MM-DD")
	}
	windowEnd, err := time.ParseInLocation(dateLayout, req.EndDate, time.Local)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "endDate must be YYYY-MM-DD")
	}
	if windowEnd.Before(windowStart) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "endDate is before startDate")
	}

	group, err := s.groups.FindByID(ctx, groupID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "group not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load group")
	}

	// A group that has ended stops generating events: the effective window
	// never extends past the group's end date.
	if group.EndDate != nil && group.EndDate.Before(windowEnd) {
		windowEnd = *group.EndDate
		s.logger.Info("clamping expansion window to group end date",
			zap.String("group_id", groupID),
			zap.Time("end_date", *group.EndDate))
	}

	rules, err := s.rules.ListActiveByGroup(ctx, groupID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule rules")
	}
	if len(rules) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "group has no active schedule rules")
	}

	title := req.Title
	if title == "" {
		title = group.Name
	}

	result := &dto.GenerateScheduleResponse{
		Conflicts:     []dto.ScheduleConflict{},
		CreatedEvents: []models.Event{},
	}

	for _, rule := range rules {
		startHour, startMinute, ok := parseClock(rule.StartTime)
		if !ok {
			s.logger.Warn("skipping schedule rule with malformed start time",
				zap.String("rule_id", rule.ID), zap.String("start_time", rule.StartTime))
			continue
		}
		endHour, endMinute, ok := parseClock(rule.EndTime)
		if !ok {
			s.logger.Warn("skipping schedule rule with malformed end time",
				zap.String("rule_id", rule.ID), zap.String("end_time", rule.EndTime))
			continue
		}
		if endHour*60+endMinute <= startHour*60+startMinute {
			s.logger.Warn("skipping schedule rule whose end does not follow its start",
				zap.String("rule_id", rule.ID), zap.String("start_time", rule.StartTime), zap.String("end_time", rule.EndTime))
			continue
		}

		teacherID := invokerID
		if rule.TeacherID != nil && *rule.TeacherID != "" {
			teacherID = *rule.TeacherID
		}

		// Align to the first occurrence of the rule's weekday inside the
		// window; the window start itself counts when the weekday matches.
		offset := (rule.DayOfWeek - int(windowStart.Weekday()) + 7) % 7
		for day := windowStart.AddDate(0, 0, offset); !day.After(windowEnd); day = day.AddDate(0, 0, 7) {
			startsAt := time.Date(day.Year(), day.Month(), day.Day(), startHour, startMinute, 0, 0, day.Location())
			endsAt := time.Date(day.Year(), day.Month(), day.Day(), endHour, endMinute, 0, 0, day.Location())

			colliding, err := s.events.FindOverlapping(ctx, startsAt, endsAt, teacherID, req.Location)
			if err != nil {
				return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check for conflicting events")
			}
			if len(colliding) > 0 {
				result.Conflicts = append(result.Conflicts, dto.ScheduleConflict{
					RuleID:       rule.ID,
					TeacherID:    teacherID,
					Location:     req.Location,
					StartsAt:     startsAt,
					EndsAt:       endsAt,
					CollidedWith: colliding,
				})
				continue
			}

			ruleID := rule.ID
			event := models.Event{
				GroupID:              groupID,
				TeacherID:            teacherID,
				Title:                title,
				StartsAt:             startsAt,
				EndsAt:               endsAt,
				Location:             req.Location,
				IsAttendanceRequired: req.IsAttendanceRequired,
				IsActive:             true,
				RuleID:               &ruleID,
				CreatedBy:            invokerID,
			}
			if err := s.events.Create(ctx, &event); err != nil {
				if repository.IsSlotTaken(err) {
					// Another writer took the slot between the overlap check
					// and the insert; report it like any other conflict.
					colliding, _ := s.events.FindOverlapping(ctx, startsAt, endsAt, teacherID, req.Location)
					result.Conflicts = append(result.Conflicts, dto.ScheduleConflict{
						RuleID:       rule.ID,
						TeacherID:    teacherID,
						Location:     req.Location,
						StartsAt:     startsAt,
						EndsAt:       endsAt,
						CollidedWith: colliding,
					})
					continue
				}
				return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create event")
			}
			result.CreatedEvents = append(result.CreatedEvents, event)
			result.Created++
		}
	}

	result.ConflictCount = len(result.Conflicts)
	result.Success = true

	s.logger.Info("schedule expansion finished",
		zap.String("group_id", groupID),
		zap.Int("created", result.Created),
		zap.Int("conflicts", result.ConflictCount))

	if s.notifier != nil && result.Created > 0 {
		s.notifier.NotifyGroup(groupID, models.NotificationKindSchedule,
			"Schedule updated",
			fmt.Sprintf("%d new events were added between %s and %s", result.Created, req.StartDate, req.EndDate))
	}

	return result, nil
}

// parseClock parses a strict "HH:MM" wall-clock value.
func parseClock(value string) (hour, minute int, ok bool) {
	if len(value) != 5 || value[2] != ':' {
		return 0, 0, false
	}
	for _, i := range []int{0, 1, 3, 4} {
		if value[i] < '0' || value[i] > '9' {
			return 0, 0, false
		}
	}
	hour = int(value[0]-'0')*10 + int(value[1]-'0')
	minute = int(value[3]-'0')*10 + int(value[4]-'0')
	if hour > 23 || minute > 59 {
		return 0, 0, false
	}
	return hour, minute, true
}

// CreateRule declares a new weekly slot for a group.
func (s *ScheduleService) CreateRule(ctx context.Context, groupID string, req dto.CreateScheduleRuleRequest) (*models.ScheduleRule, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid schedule rule")
	}
	if _, _, ok := parseClock(req.StartTime); !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "startTime must be HH:MM")
	}
	if _, _, ok := parseClock(req.EndTime); !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "endTime must be HH:MM")
	}
	if req.EndTime <= req.StartTime {
		return nil, appErrors.Clone(appErrors.ErrValidation, "endTime must be after startTime")
	}

	if _, err := s.groups.FindByID(ctx, groupID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "group not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load group")
	}

	rule := models.ScheduleRule{
		GroupID:   groupID,
		DayOfWeek: req.DayOfWeek,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		TeacherID: req.TeacherID,
		IsActive:  true,
	}
	if err := s.rules.Create(ctx, &rule); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create schedule rule")
	}
	return &rule, nil
}

// ListRules returns every rule declared for a group.
func (s *ScheduleService) ListRules(ctx context.Context, groupID string) ([]models.ScheduleRule, error) {
	rules, err := s.rules.ListByGroup(ctx, groupID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list schedule rules")
	}
	return rules, nil
}

// DeactivateRule switches a rule off without touching events already created
// from it.
func (s *ScheduleService) DeactivateRule(ctx context.Context, id string) error {
	if _, err := s.rules.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "schedule rule not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule rule")
	}
	if err := s.rules.SetActive(ctx, id, false); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to deactivate schedule rule")
	}
	return nil
}

// ListEvents returns calendar events matching the filter.
func (s *ScheduleService) ListEvents(ctx context.Context, filter models.EventFilter) ([]models.Event, int, error) {
	events, total, err := s.events.List(ctx, filter)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list events")
	}
	return events, total, nil
}

// GetEvent loads one event.
func (s *ScheduleService) GetEvent(ctx context.Context, id string) (*models.Event, error) {
	event, err := s.events.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "event not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load event")
	}
	return event, nil
}

// CreateEvent creates a manual calendar event, applying the same conflict
// rules the expander uses.
func (s *ScheduleService) CreateEvent(ctx context.Context, req dto.CreateEventRequest, invokerID string) (*models.Event, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid event")
	}
	if !req.EndsAt.After(req.StartsAt) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "endsAt must be after startsAt")
	}

	colliding, err := s.events.FindOverlapping(ctx, req.StartsAt, req.EndsAt, req.TeacherID, req.Location)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check for conflicting events")
	}
	if len(colliding) > 0 {
		return nil, appErrors.Clone(appErrors.ErrConflict, "event overlaps an existing event")
	}

	event := models.Event{
		GroupID:              req.GroupID,
		TeacherID:            req.TeacherID,
		Title:                req.Title,
		StartsAt:             req.StartsAt,
		EndsAt:               req.EndsAt,
		Location:             req.Location,
		IsAttendanceRequired: req.IsAttendanceRequired,
		IsActive:             true,
		CreatedBy:            invokerID,
	}
	if err := s.events.Create(ctx, &event); err != nil {
		if repository.IsSlotTaken(err) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "event overlaps an existing event")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create event")
	}
	return &event, nil
}

// UpdateEvent applies a partial update to an event.
func (s *ScheduleService) UpdateEvent(ctx context.Context, id string, req dto.UpdateEventRequest) (*models.Event, error) {
	event, err := s.GetEvent(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		event.Title = *req.Title
	}
	if req.StartsAt != nil {
		event.StartsAt = *req.StartsAt
	}
	if req.EndsAt != nil {
		event.EndsAt = *req.EndsAt
	}
	if req.Location != nil {
		event.Location = req.Location
	}
	if req.TeacherID != nil {
		event.TeacherID = *req.TeacherID
	}
	if req.IsAttendanceRequired != nil {
		event.IsAttendanceRequired = *req.IsAttendanceRequired
	}
	if req.IsActive != nil {
		event.IsActive = *req.IsActive
	}
	if !event.EndsAt.After(event.StartsAt) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "endsAt must be after startsAt")
	}

	if err := s.events.Update(ctx, event); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update event")
	}
	return event, nil
}

// DeleteEvent removes an event.
func (s *ScheduleService) DeleteEvent(ctx context.Context, id string) error {
	if _, err := s.GetEvent(ctx, id); err != nil {
		return err
	}
	if err := s.events.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete event")
	}
	return nil
}
