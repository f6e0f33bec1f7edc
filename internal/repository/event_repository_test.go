package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neetrino-com/neetrino-academy-sub005/internal/models"
)

func newMockEventRepo(t *testing.T) (*EventRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewEventRepository(sqlx.NewDb(db, "postgres")), mock
}

func eventRows(t *testing.T, ids ...string) *sqlmock.Rows {
	t.Helper()
	rows := sqlmock.NewRows([]string{
		"id", "group_id", "teacher_id", "title", "starts_at", "ends_at",
		"location", "is_attendance_required", "is_active", "rule_id",
		"created_by", "created_at", "updated_at",
	})
	now := time.Now().UTC()
	for _, id := range ids {
		rows.AddRow(id, "g1", "t1", "Algebra", now, now.Add(time.Hour),
			nil, false, true, nil, "u1", now, now)
	}
	return rows
}

func TestFindOverlappingQueriesTeacherAndLocation(t *testing.T) {
	repo, mock := newMockEventRepo(t)

	start := time.Date(2024, 1, 8, 9, 0, 0, 0, time.UTC)
	end := start.Add(90 * time.Minute)

	mock.ExpectQuery(`SELECT .+ FROM events\s+WHERE is_active = TRUE AND starts_at < \$1 AND ends_at > \$2`).
		WithArgs(end, start, "t1", nil).
		WillReturnRows(eventRows(t, "e1"))

	events, err := repo.FindOverlapping(context.Background(), start, end, "t1", nil)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "e1", events[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindOverlappingNoMatches(t *testing.T) {
	repo, mock := newMockEventRepo(t)

	start := time.Date(2024, 1, 8, 9, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)
	location := "Room 4"

	mock.ExpectQuery(`SELECT .+ FROM events`).
		WithArgs(end, start, "t1", location).
		WillReturnRows(eventRows(t))

	events, err := repo.FindOverlapping(context.Background(), start, end, "t1", &location)
	require.NoError(t, err)
	assert.Empty(t, events)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListAppliesFilters(t *testing.T) {
	repo, mock := newMockEventRepo(t)

	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT .+ FROM events WHERE is_active = TRUE AND group_id = \$1 AND ends_at >= \$2 AND starts_at <= \$3 ORDER BY starts_at ASC`).
		WithArgs("g1", from, to).
		WillReturnRows(eventRows(t, "e1", "e2"))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM events WHERE is_active = TRUE AND group_id = \$1`).
		WithArgs("g1", from, to).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	events, total, err := repo.List(context.Background(), models.EventFilter{
		GroupID: "g1",
		From:    &from,
		To:      &to,
	})
	require.NoError(t, err)
	assert.Len(t, events, 2)
	assert.Equal(t, 2, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateSurfacesUniqueViolationAsSlotTaken(t *testing.T) {
	repo, mock := newMockEventRepo(t)

	mock.ExpectExec(`INSERT INTO events`).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "events_teacher_slot_key"})

	err := repo.Create(context.Background(), &models.Event{
		GroupID:   "g1",
		TeacherID: "t1",
		Title:     "Algebra",
		StartsAt:  time.Now().UTC(),
		EndsAt:    time.Now().UTC().Add(time.Hour),
		CreatedBy: "u1",
		IsActive:  true,
	})
	require.Error(t, err)
	assert.True(t, IsSlotTaken(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateAssignsIDAndTimestamps(t *testing.T) {
	repo, mock := newMockEventRepo(t)

	mock.ExpectExec(`INSERT INTO events`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	event := &models.Event{
		GroupID:   "g1",
		TeacherID: "t1",
		Title:     "Algebra",
		StartsAt:  time.Now().UTC(),
		EndsAt:    time.Now().UTC().Add(time.Hour),
		CreatedBy: "u1",
	}
	require.NoError(t, repo.Create(context.Background(), event))
	assert.NotEmpty(t, event.ID)
	assert.False(t, event.CreatedAt.IsZero())
	assert.False(t, event.UpdatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIsSlotTaken(t *testing.T) {
	assert.True(t, IsSlotTaken(&pq.Error{Code: "23505"}))
	assert.True(t, IsSlotTaken(fmt.Errorf("create event: %w", &pq.Error{Code: "23505"})))
	assert.False(t, IsSlotTaken(&pq.Error{Code: "23503"}))
	assert.False(t, IsSlotTaken(errors.New("plain")))
	assert.False(t, IsSlotTaken(nil))
}
