package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/neetrino-com/neetrino-academy-sub005/internal/models"
)

// GroupRepository provides persistence for groups and memberships.
type GroupRepository struct {
	db *sqlx.DB
}

// NewGroupRepository creates a new group repository.
func NewGroupRepository(db *sqlx.DB) *GroupRepository {
	return &GroupRepository{db: db}
}

const groupColumns = `id, name, course_id, teacher_id, start_date, end_date, active, created_at, updated_at`

// List returns groups matching the filter.
func (r *GroupRepository) List(ctx context.Context, filter models.GroupFilter) ([]models.Group, int, error) {
	base := "FROM groups WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.CourseID != "" {
		conditions = append(conditions, fmt.Sprintf("course_id = $%d", len(args)+1))
		args = append(args, filter.CourseID)
	}
	if filter.TeacherID != "" {
		conditions = append(conditions, fmt.Sprintf("teacher_id = $%d", len(args)+1))
		args = append(args, filter.TeacherID)
	}
	if filter.Active != nil {
		conditions = append(conditions, fmt.Sprintf("active = $%d", len(args)+1))
		args = append(args, *filter.Active)
	}
	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY created_at DESC LIMIT %d OFFSET %d", groupColumns, base, size, offset)
	var groups []models.Group
	if err := r.db.SelectContext(ctx, &groups, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list groups: %w", err)
	}

	countQuery := "SELECT COUNT(*) " + base
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count groups: %w", err)
	}
	return groups, total, nil
}

// FindByID loads a group.
func (r *GroupRepository) FindByID(ctx context.Context, id string) (*models.Group, error) {
	query := fmt.Sprintf("SELECT %s FROM groups WHERE id = $1", groupColumns)
	var group models.Group
	if err := r.db.GetContext(ctx, &group, query, id); err != nil {
		return nil, err
	}
	return &group, nil
}

// Create stores a new group.
func (r *GroupRepository) Create(ctx context.Context, group *models.Group) error {
	if group.ID == "" {
		group.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if group.CreatedAt.IsZero() {
		group.CreatedAt = now
	}
	group.UpdatedAt = now

	const query = `INSERT INTO groups (id, name, course_id, teacher_id, start_date, end_date, active, created_at, updated_at)
VALUES (:id, :name, :course_id, :teacher_id, :start_date, :end_date, :active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, group); err != nil {
		return fmt.Errorf("create group: %w", err)
	}
	return nil
}

// Update modifies a group.
func (r *GroupRepository) Update(ctx context.Context, group *models.Group) error {
	group.UpdatedAt = time.Now().UTC()
	const query = `UPDATE groups SET name = :name, course_id = :course_id, teacher_id = :teacher_id,
start_date = :start_date, end_date = :end_date, active = :active, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, group); err != nil {
		return fmt.Errorf("update group: %w", err)
	}
	return nil
}

// AddMember enrolls a user into a group; repeated enrollment is a no-op.
func (r *GroupRepository) AddMember(ctx context.Context, groupID, userID string) error {
	const query = `INSERT INTO group_members (group_id, user_id, joined_at) VALUES ($1, $2, $3)
ON CONFLICT (group_id, user_id) DO NOTHING`
	if _, err := r.db.ExecContext(ctx, query, groupID, userID, time.Now().UTC()); err != nil {
		return fmt.Errorf("add group member: %w", err)
	}
	return nil
}

// RemoveMember removes a user from a group.
func (r *GroupRepository) RemoveMember(ctx context.Context, groupID, userID string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM group_members WHERE group_id = $1 AND user_id = $2", groupID, userID); err != nil {
		return fmt.Errorf("remove group member: %w", err)
	}
	return nil
}

// ListMemberIDs returns the user ids enrolled in a group.
func (r *GroupRepository) ListMemberIDs(ctx context.Context, groupID string) ([]string, error) {
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, "SELECT user_id FROM group_members WHERE group_id = $1 ORDER BY joined_at ASC", groupID); err != nil {
		return nil, fmt.Errorf("list group member ids: %w", err)
	}
	return ids, nil
}

// IsMember reports whether a user belongs to a group.
func (r *GroupRepository) IsMember(ctx context.Context, groupID, userID string) (bool, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM group_members WHERE group_id = $1 AND user_id = $2", groupID, userID); err != nil {
		return false, fmt.Errorf("check group membership: %w", err)
	}
	return count > 0, nil
}
