package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/neetrino-com/neetrino-academy-sub005/internal/dto"
	"github.com/neetrino-com/neetrino-academy-sub005/internal/models"
	appErrors "github.com/neetrino-com/neetrino-academy-sub005/pkg/errors"
)

type stubRuleStore struct {
	rules []models.ScheduleRule
}

func (s *stubRuleStore) ListByGroup(_ context.Context, groupID string) ([]models.ScheduleRule, error) {
	var out []models.ScheduleRule
	for _, r := range s.rules {
		if r.GroupID == groupID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *stubRuleStore) ListActiveByGroup(_ context.Context, groupID string) ([]models.ScheduleRule, error) {
	var out []models.ScheduleRule
	for _, r := range s.rules {
		if r.GroupID == groupID && r.IsActive {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *stubRuleStore) FindByID(_ context.Context, id string) (*models.ScheduleRule, error) {
	for i := range s.rules {
		if s.rules[i].ID == id {
			return &s.rules[i], nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *stubRuleStore) Create(_ context.Context, rule *models.ScheduleRule) error {
	if rule.ID == "" {
		rule.ID = uuid.NewString()
	}
	s.rules = append(s.rules, *rule)
	return nil
}

func (s *stubRuleStore) SetActive(_ context.Context, id string, active bool) error {
	for i := range s.rules {
		if s.rules[i].ID == id {
			s.rules[i].IsActive = active
			return nil
		}
	}
	return sql.ErrNoRows
}

type stubEventStore struct {
	events    []models.Event
	createErr error
	failOnce  bool
}

func (s *stubEventStore) FindOverlapping(_ context.Context, start, end time.Time, teacherID string, location *string) ([]models.Event, error) {
	var out []models.Event
	for _, e := range s.events {
		if !e.IsActive || !e.StartsAt.Before(end) || !e.EndsAt.After(start) {
			continue
		}
		sameTeacher := e.TeacherID == teacherID
		sameLocation := location != nil && e.Location != nil && *e.Location == *location
		if sameTeacher || sameLocation {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *stubEventStore) Create(_ context.Context, event *models.Event) error {
	if s.createErr != nil {
		err := s.createErr
		if s.failOnce {
			s.createErr = nil
		}
		return err
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	s.events = append(s.events, *event)
	return nil
}

func (s *stubEventStore) List(_ context.Context, _ models.EventFilter) ([]models.Event, int, error) {
	return s.events, len(s.events), nil
}

func (s *stubEventStore) FindByID(_ context.Context, id string) (*models.Event, error) {
	for i := range s.events {
		if s.events[i].ID == id {
			return &s.events[i], nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *stubEventStore) Update(_ context.Context, event *models.Event) error {
	for i := range s.events {
		if s.events[i].ID == event.ID {
			s.events[i] = *event
			return nil
		}
	}
	return sql.ErrNoRows
}

func (s *stubEventStore) Delete(_ context.Context, id string) error {
	for i := range s.events {
		if s.events[i].ID == id {
			s.events = append(s.events[:i], s.events[i+1:]...)
			return nil
		}
	}
	return nil
}

type stubGroupStore struct {
	groups map[string]models.Group
}

func (s *stubGroupStore) FindByID(_ context.Context, id string) (*models.Group, error) {
	g, ok := s.groups[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &g, nil
}

type stubNotifier struct {
	calls int
}

func (s *stubNotifier) NotifyGroup(_, _, _, _ string) {
	s.calls++
}

func newScheduleFixture(rules []models.ScheduleRule, events []models.Event) (*ScheduleService, *stubEventStore, *stubNotifier) {
	eventStore := &stubEventStore{events: events}
	notifier := &stubNotifier{}
	svc := NewScheduleService(
		&stubRuleStore{rules: rules},
		eventStore,
		&stubGroupStore{groups: map[string]models.Group{"g1": {ID: "g1", Name: "Algebra A"}}},
		notifier,
		zap.NewNop(),
	)
	return svc, eventStore, notifier
}

func strPtr(s string) *string { return &s }

func TestExpandMondayRuleOverFourWeeks(t *testing.T) {
	teacher := "t1"
	rules := []models.ScheduleRule{{
		ID: "r1", GroupID: "g1", DayOfWeek: 1, StartTime: "09:00", EndTime: "10:30",
		TeacherID: &teacher, IsActive: true,
	}}
	svc, store, notifier := newScheduleFixture(rules, nil)

	// 2024-01-01 is a Monday, so the window start itself is a candidate.
	res, err := svc.Expand(context.Background(), "g1", dto.GenerateScheduleRequest{
		StartDate: "2024-01-01", EndDate: "2024-01-22", Title: "Lecture",
	}, "admin-1")
	require.NoError(t, err)

	assert.True(t, res.Success)
	assert.Equal(t, 4, res.Created)
	assert.Equal(t, 0, res.ConflictCount)
	require.Len(t, store.events, 4)

	wantDays := []int{1, 8, 15, 22}
	for i, e := range store.events {
		assert.Equal(t, wantDays[i], e.StartsAt.Day())
		assert.Equal(t, time.Monday, e.StartsAt.Weekday())
		assert.Equal(t, 9, e.StartsAt.Hour())
		assert.Equal(t, 0, e.StartsAt.Minute())
		assert.Equal(t, 10, e.EndsAt.Hour())
		assert.Equal(t, 30, e.EndsAt.Minute())
		assert.Equal(t, "t1", e.TeacherID)
		assert.Equal(t, "Lecture", e.Title)
		require.NotNil(t, e.RuleID)
		assert.Equal(t, "r1", *e.RuleID)
	}
	assert.Equal(t, 1, notifier.calls)
}

func TestExpandStaysInsideWindow(t *testing.T) {
	rules := []models.ScheduleRule{
		{ID: "r1", GroupID: "g1", DayOfWeek: 2, StartTime: "10:00", EndTime: "11:00", IsActive: true},
		{ID: "r2", GroupID: "g1", DayOfWeek: 5, StartTime: "14:00", EndTime: "15:30", IsActive: true},
	}
	svc, store, _ := newScheduleFixture(rules, nil)

	res, err := svc.Expand(context.Background(), "g1", dto.GenerateScheduleRequest{
		StartDate: "2024-03-04", EndDate: "2024-03-31",
	}, "admin-1")
	require.NoError(t, err)
	require.NotZero(t, res.Created)

	windowStart := time.Date(2024, 3, 4, 0, 0, 0, 0, time.Local)
	windowEnd := time.Date(2024, 3, 31, 23, 59, 59, 0, time.Local)
	for _, e := range store.events {
		assert.False(t, e.StartsAt.Before(windowStart), "event %s starts before the window", e.StartsAt)
		assert.False(t, e.StartsAt.After(windowEnd), "event %s starts after the window", e.StartsAt)
	}
}

func TestExpandReportsTeacherConflict(t *testing.T) {
	teacher := "t1"
	rules := []models.ScheduleRule{{
		ID: "r1", GroupID: "g1", DayOfWeek: 1, StartTime: "09:00", EndTime: "10:30",
		TeacherID: &teacher, IsActive: true,
	}}
	existing := []models.Event{{
		ID: "e-existing", GroupID: "g2", TeacherID: "t1", Title: "Other group",
		StartsAt: time.Date(2024, 1, 8, 10, 0, 0, 0, time.Local),
		EndsAt:   time.Date(2024, 1, 8, 11, 0, 0, 0, time.Local),
		IsActive: true,
	}}
	svc, store, _ := newScheduleFixture(rules, existing)

	res, err := svc.Expand(context.Background(), "g1", dto.GenerateScheduleRequest{
		StartDate: "2024-01-01", EndDate: "2024-01-22",
	}, "admin-1")
	require.NoError(t, err)

	assert.True(t, res.Success)
	assert.Equal(t, 3, res.Created)
	assert.Equal(t, 1, res.ConflictCount)
	require.Len(t, res.Conflicts, 1)

	conflict := res.Conflicts[0]
	assert.Equal(t, "r1", conflict.RuleID)
	assert.Equal(t, "t1", conflict.TeacherID)
	assert.Equal(t, 8, conflict.StartsAt.Day())
	require.Len(t, conflict.CollidedWith, 1)
	assert.Equal(t, "e-existing", conflict.CollidedWith[0].ID)

	// The colliding candidate was reported, never persisted.
	require.Len(t, store.events, 4)
	for _, e := range store.events {
		if e.ID != "e-existing" {
			assert.NotEqual(t, 8, e.StartsAt.Day())
		}
	}
}

func TestExpandReportsLocationConflict(t *testing.T) {
	rules := []models.ScheduleRule{{
		ID: "r1", GroupID: "g1", DayOfWeek: 1, StartTime: "09:00", EndTime: "10:30", IsActive: true,
	}}
	existing := []models.Event{{
		ID: "e-room", GroupID: "g2", TeacherID: "someone-else", Title: "Other group",
		StartsAt: time.Date(2024, 1, 1, 9, 30, 0, 0, time.Local),
		EndsAt:   time.Date(2024, 1, 1, 10, 0, 0, 0, time.Local),
		Location: strPtr("Room 4"),
		IsActive: true,
	}}
	svc, _, _ := newScheduleFixture(rules, existing)

	res, err := svc.Expand(context.Background(), "g1", dto.GenerateScheduleRequest{
		StartDate: "2024-01-01", EndDate: "2024-01-07", Location: strPtr("Room 4"),
	}, "admin-1")
	require.NoError(t, err)

	assert.Equal(t, 0, res.Created)
	assert.Equal(t, 1, res.ConflictCount)
}

func TestExpandSkipsMalformedRules(t *testing.T) {
	rules := []models.ScheduleRule{
		{ID: "bad-clock", GroupID: "g1", DayOfWeek: 1, StartTime: "25:99", EndTime: "26:00", IsActive: true},
		{ID: "inverted", GroupID: "g1", DayOfWeek: 1, StartTime: "10:00", EndTime: "09:00", IsActive: true},
		{ID: "ok", GroupID: "g1", DayOfWeek: 1, StartTime: "09:00", EndTime: "10:00", IsActive: true},
	}
	svc, store, _ := newScheduleFixture(rules, nil)

	res, err := svc.Expand(context.Background(), "g1", dto.GenerateScheduleRequest{
		StartDate: "2024-01-01", EndDate: "2024-01-07",
	}, "admin-1")
	require.NoError(t, err)

	assert.Equal(t, 1, res.Created)
	require.Len(t, store.events, 1)
	require.NotNil(t, store.events[0].RuleID)
	assert.Equal(t, "ok", *store.events[0].RuleID)
}

func TestExpandNoMatchingWeekdayInWindow(t *testing.T) {
	rules := []models.ScheduleRule{{
		ID: "r1", GroupID: "g1", DayOfWeek: 3, StartTime: "09:00", EndTime: "10:00", IsActive: true,
	}}
	svc, store, notifier := newScheduleFixture(rules, nil)

	// 2024-01-05 is a Friday; a Wednesday rule never fires in a one-day window.
	res, err := svc.Expand(context.Background(), "g1", dto.GenerateScheduleRequest{
		StartDate: "2024-01-05", EndDate: "2024-01-05",
	}, "admin-1")
	require.NoError(t, err)

	assert.True(t, res.Success)
	assert.Equal(t, 0, res.Created)
	assert.Equal(t, 0, res.ConflictCount)
	assert.Empty(t, store.events)
	assert.Zero(t, notifier.calls)
}

func TestExpandStopsAtGroupEndDate(t *testing.T) {
	endDate := time.Date(2024, 1, 10, 0, 0, 0, 0, time.Local)
	rules := []models.ScheduleRule{{
		ID: "r1", GroupID: "g-ended", DayOfWeek: 1, StartTime: "09:00", EndTime: "10:00", IsActive: true,
	}}
	store := &stubEventStore{}
	notifier := &stubNotifier{}
	svc := NewScheduleService(
		&stubRuleStore{rules: rules},
		store,
		&stubGroupStore{groups: map[string]models.Group{
			"g-ended": {ID: "g-ended", Name: "Winter term", EndDate: &endDate},
		}},
		notifier,
		zap.NewNop(),
	)

	// The window runs to Jan 22 but the group ends Jan 10: only the Mondays
	// on or before the end date may produce events.
	res, err := svc.Expand(context.Background(), "g-ended", dto.GenerateScheduleRequest{
		StartDate: "2024-01-01", EndDate: "2024-01-22",
	}, "admin-1")
	require.NoError(t, err)

	assert.True(t, res.Success)
	assert.Equal(t, 2, res.Created)
	require.Len(t, store.events, 2)
	for _, e := range store.events {
		assert.False(t, e.StartsAt.After(endDate.Add(24*time.Hour)), "event %s past group end date", e.StartsAt)
	}
	assert.Equal(t, []int{1, 8}, []int{store.events[0].StartsAt.Day(), store.events[1].StartsAt.Day()})
}

func TestExpandGroupEndedBeforeWindow(t *testing.T) {
	endDate := time.Date(2023, 12, 31, 0, 0, 0, 0, time.Local)
	rules := []models.ScheduleRule{{
		ID: "r1", GroupID: "g-ended", DayOfWeek: 1, StartTime: "09:00", EndTime: "10:00", IsActive: true,
	}}
	store := &stubEventStore{}
	notifier := &stubNotifier{}
	svc := NewScheduleService(
		&stubRuleStore{rules: rules},
		store,
		&stubGroupStore{groups: map[string]models.Group{
			"g-ended": {ID: "g-ended", Name: "Autumn term", EndDate: &endDate},
		}},
		notifier,
		zap.NewNop(),
	)

	res, err := svc.Expand(context.Background(), "g-ended", dto.GenerateScheduleRequest{
		StartDate: "2024-01-01", EndDate: "2024-01-22",
	}, "admin-1")
	require.NoError(t, err)

	assert.True(t, res.Success)
	assert.Equal(t, 0, res.Created)
	assert.Empty(t, store.events)
	assert.Zero(t, notifier.calls)
}

func TestExpandFallsBackToInvokerTeacher(t *testing.T) {
	rules := []models.ScheduleRule{{
		ID: "r1", GroupID: "g1", DayOfWeek: 1, StartTime: "09:00", EndTime: "10:00", IsActive: true,
	}}
	svc, store, _ := newScheduleFixture(rules, nil)

	_, err := svc.Expand(context.Background(), "g1", dto.GenerateScheduleRequest{
		StartDate: "2024-01-01", EndDate: "2024-01-07",
	}, "invoker-9")
	require.NoError(t, err)

	require.Len(t, store.events, 1)
	assert.Equal(t, "invoker-9", store.events[0].TeacherID)
	assert.Equal(t, "invoker-9", store.events[0].CreatedBy)
}

func TestExpandDefaultsTitleToGroupName(t *testing.T) {
	rules := []models.ScheduleRule{{
		ID: "r1", GroupID: "g1", DayOfWeek: 1, StartTime: "09:00", EndTime: "10:00", IsActive: true,
	}}
	svc, store, _ := newScheduleFixture(rules, nil)

	_, err := svc.Expand(context.Background(), "g1", dto.GenerateScheduleRequest{
		StartDate: "2024-01-01", EndDate: "2024-01-07",
	}, "admin-1")
	require.NoError(t, err)

	require.Len(t, store.events, 1)
	assert.Equal(t, "Algebra A", store.events[0].Title)
}

func TestExpandTreatsUniqueViolationAsConflict(t *testing.T) {
	rules := []models.ScheduleRule{{
		ID: "r1", GroupID: "g1", DayOfWeek: 1, StartTime: "09:00", EndTime: "10:00", IsActive: true,
	}}
	svc, store, _ := newScheduleFixture(rules, nil)
	store.createErr = &pq.Error{Code: "23505"}
	store.failOnce = true

	res, err := svc.Expand(context.Background(), "g1", dto.GenerateScheduleRequest{
		StartDate: "2024-01-01", EndDate: "2024-01-14",
	}, "admin-1")
	require.NoError(t, err)

	assert.Equal(t, 1, res.Created)
	assert.Equal(t, 1, res.ConflictCount)
}

func TestExpandRejectsInvertedWindow(t *testing.T) {
	svc, _, _ := newScheduleFixture(nil, nil)

	_, err := svc.Expand(context.Background(), "g1", dto.GenerateScheduleRequest{
		StartDate: "2024-02-01", EndDate: "2024-01-01",
	}, "admin-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestExpandRejectsMalformedDates(t *testing.T) {
	svc, _, _ := newScheduleFixture(nil, nil)

	_, err := svc.Expand(context.Background(), "g1", dto.GenerateScheduleRequest{
		StartDate: "01/02/2024", EndDate: "2024-02-15",
	}, "admin-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestExpandUnknownGroup(t *testing.T) {
	svc, _, _ := newScheduleFixture(nil, nil)

	_, err := svc.Expand(context.Background(), "missing", dto.GenerateScheduleRequest{
		StartDate: "2024-01-01", EndDate: "2024-01-07",
	}, "admin-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestExpandNoActiveRules(t *testing.T) {
	rules := []models.ScheduleRule{{
		ID: "r1", GroupID: "g1", DayOfWeek: 1, StartTime: "09:00", EndTime: "10:00", IsActive: false,
	}}
	svc, _, _ := newScheduleFixture(rules, nil)

	_, err := svc.Expand(context.Background(), "g1", dto.GenerateScheduleRequest{
		StartDate: "2024-01-01", EndDate: "2024-01-07",
	}, "admin-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestParseClock(t *testing.T) {
	cases := []struct {
		in     string
		hour   int
		minute int
		ok     bool
	}{
		{"09:00", 9, 0, true},
		{"23:59", 23, 59, true},
		{"00:00", 0, 0, true},
		{"24:00", 0, 0, false},
		{"12:60", 0, 0, false},
		{"25:99", 0, 0, false},
		{"9:00", 0, 0, false},
		{"09-00", 0, 0, false},
		{"ab:cd", 0, 0, false},
		{"", 0, 0, false},
	}
	for _, tc := range cases {
		hour, minute, ok := parseClock(tc.in)
		assert.Equal(t, tc.ok, ok, "parseClock(%q)", tc.in)
		if tc.ok {
			assert.Equal(t, tc.hour, hour)
			assert.Equal(t, tc.minute, minute)
		}
	}
}

func TestCreateRuleValidation(t *testing.T) {
	svc, _, _ := newScheduleFixture(nil, nil)

	_, err := svc.CreateRule(context.Background(), "g1", dto.CreateScheduleRuleRequest{
		DayOfWeek: 1, StartTime: "10:00", EndTime: "09:00",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	rule, err := svc.CreateRule(context.Background(), "g1", dto.CreateScheduleRuleRequest{
		DayOfWeek: 1, StartTime: "09:00", EndTime: "10:30",
	})
	require.NoError(t, err)
	assert.True(t, rule.IsActive)
	assert.Equal(t, "g1", rule.GroupID)
}
