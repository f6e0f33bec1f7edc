package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/neetrino-com/neetrino-academy-sub005/internal/models"
)

// EventRepository persists calendar events.
type EventRepository struct {
	db *sqlx.DB
}

// NewEventRepository constructs an event repository.
func NewEventRepository(db *sqlx.DB) *EventRepository {
	return &EventRepository{db: db}
}

const eventColumns = `id, group_id, teacher_id, title, starts_at, ends_at, location, is_attendance_required, is_active, rule_id, created_by, created_at, updated_at`

// FindOverlapping returns active events whose [starts_at, ends_at) interval
// overlaps the candidate interval AND which share the candidate's teacher or,
// when a location is given, its location.
func (r *EventRepository) FindOverlapping(ctx context.Context, start, end time.Time, teacherID string, location *string) ([]models.Event, error) {
	query := fmt.Sprintf(`SELECT %s FROM events
WHERE is_active = TRUE AND starts_at < $1 AND ends_at > $2 AND (teacher_id = $3 OR ($4::text IS NOT NULL AND location = $4))
ORDER BY starts_at ASC`, eventColumns)
	var events []models.Event
	if err := r.db.SelectContext(ctx, &events, query, end, start, teacherID, location); err != nil {
		return nil, fmt.Errorf("find overlapping events: %w", err)
	}
	return events, nil
}

// List returns events matching the filter, ordered chronologically.
func (r *EventRepository) List(ctx context.Context, filter models.EventFilter) ([]models.Event, int, error) {
	base := "FROM events WHERE is_active = TRUE"
	var conditions []string
	var args []interface{}

	if filter.GroupID != "" {
		conditions = append(conditions, fmt.Sprintf("group_id = $%d", len(args)+1))
		args = append(args, filter.GroupID)
	}
	if filter.TeacherID != "" {
		conditions = append(conditions, fmt.Sprintf("teacher_id = $%d", len(args)+1))
		args = append(args, filter.TeacherID)
	}
	if filter.From != nil {
		conditions = append(conditions, fmt.Sprintf("ends_at >= $%d", len(args)+1))
		args = append(args, *filter.From)
	}
	if filter.To != nil {
		conditions = append(conditions, fmt.Sprintf("starts_at <= $%d", len(args)+1))
		args = append(args, *filter.To)
	}
	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 200 {
		size = 50
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY starts_at ASC LIMIT %d OFFSET %d", eventColumns, base, size, offset)
	var events []models.Event
	if err := r.db.SelectContext(ctx, &events, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list events: %w", err)
	}

	countQuery := "SELECT COUNT(*) " + base
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count events: %w", err)
	}
	return events, total, nil
}

// FindByID loads an event.
func (r *EventRepository) FindByID(ctx context.Context, id string) (*models.Event, error) {
	query := fmt.Sprintf("SELECT %s FROM events WHERE id = $1", eventColumns)
	var event models.Event
	if err := r.db.GetContext(ctx, &event, query, id); err != nil {
		return nil, err
	}
	return &event, nil
}

// Create inserts a single event. The events table carries uniqueness
// constraints on (teacher_id, starts_at, ends_at) and
// (location, starts_at, ends_at); violations surface through
// IsSlotTaken so callers can treat them as conflicts instead of failures.
func (r *EventRepository) Create(ctx context.Context, event *models.Event) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if event.CreatedAt.IsZero() {
		event.CreatedAt = now
	}
	event.UpdatedAt = now

	const query = `INSERT INTO events (id, group_id, teacher_id, title, starts_at, ends_at, location, is_attendance_required, is_active, rule_id, created_by, created_at, updated_at)
VALUES (:id, :group_id, :teacher_id, :title, :starts_at, :ends_at, :location, :is_attendance_required, :is_active, :rule_id, :created_by, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, event); err != nil {
		return fmt.Errorf("create event: %w", err)
	}
	return nil
}

// Update modifies an event.
func (r *EventRepository) Update(ctx context.Context, event *models.Event) error {
	event.UpdatedAt = time.Now().UTC()
	const query = `UPDATE events SET group_id = :group_id, teacher_id = :teacher_id, title = :title, starts_at = :starts_at,
ends_at = :ends_at, location = :location, is_attendance_required = :is_attendance_required, is_active = :is_active, updated_at = :updated_at
WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, event); err != nil {
		return fmt.Errorf("update event: %w", err)
	}
	return nil
}

// Delete removes an event.
func (r *EventRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM events WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	return nil
}

// IsSlotTaken reports whether err is a unique-constraint violation on one of
// the event slot indexes, i.e. another writer claimed the same teacher or
// location slot between the overlap check and the insert.
func IsSlotTaken(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	return pqErr.Code == "23505"
}
