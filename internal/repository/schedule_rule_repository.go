package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/neetrino-com/neetrino-academy-sub005/internal/models"
)

// ScheduleRuleRepository persists weekly recurrence rules.
type ScheduleRuleRepository struct {
	db *sqlx.DB
}

// NewScheduleRuleRepository constructs a schedule rule repository.
func NewScheduleRuleRepository(db *sqlx.DB) *ScheduleRuleRepository {
	return &ScheduleRuleRepository{db: db}
}

// ListByGroup returns rules for a group, ordered by day and start time.
func (r *ScheduleRuleRepository) ListByGroup(ctx context.Context, groupID string) ([]models.ScheduleRule, error) {
	const query = `SELECT id, group_id, day_of_week, start_time, end_time, teacher_id, is_active, created_at, updated_at
FROM schedule_rules WHERE group_id = $1 ORDER BY day_of_week ASC, start_time ASC`
	var rules []models.ScheduleRule
	if err := r.db.SelectContext(ctx, &rules, query, groupID); err != nil {
		return nil, fmt.Errorf("list schedule rules: %w", err)
	}
	return rules, nil
}

// ListActiveByGroup returns only active rules for a group.
func (r *ScheduleRuleRepository) ListActiveByGroup(ctx context.Context, groupID string) ([]models.ScheduleRule, error) {
	const query = `SELECT id, group_id, day_of_week, start_time, end_time, teacher_id, is_active, created_at, updated_at
FROM schedule_rules WHERE group_id = $1 AND is_active = TRUE ORDER BY day_of_week ASC, start_time ASC`
	var rules []models.ScheduleRule
	if err := r.db.SelectContext(ctx, &rules, query, groupID); err != nil {
		return nil, fmt.Errorf("list active schedule rules: %w", err)
	}
	return rules, nil
}

// FindByID loads a rule.
func (r *ScheduleRuleRepository) FindByID(ctx context.Context, id string) (*models.ScheduleRule, error) {
	const query = `SELECT id, group_id, day_of_week, start_time, end_time, teacher_id, is_active, created_at, updated_at
FROM schedule_rules WHERE id = $1`
	var rule models.ScheduleRule
	if err := r.db.GetContext(ctx, &rule, query, id); err != nil {
		return nil, err
	}
	return &rule, nil
}

// Create stores a new rule.
func (r *ScheduleRuleRepository) Create(ctx context.Context, rule *models.ScheduleRule) error {
	if rule.ID == "" {
		rule.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if rule.CreatedAt.IsZero() {
		rule.CreatedAt = now
	}
	rule.UpdatedAt = now

	const query = `INSERT INTO schedule_rules (id, group_id, day_of_week, start_time, end_time, teacher_id, is_active, created_at, updated_at)
VALUES (:id, :group_id, :day_of_week, :start_time, :end_time, :teacher_id, :is_active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, rule); err != nil {
		return fmt.Errorf("create schedule rule: %w", err)
	}
	return nil
}

// SetActive toggles a rule without deleting its history.
func (r *ScheduleRuleRepository) SetActive(ctx context.Context, id string, active bool) error {
	const query = `UPDATE schedule_rules SET is_active = $2, updated_at = $3 WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id, active, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("set schedule rule active: %w", err)
	}
	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return fmt.Errorf("schedule rule %s not found", id)
	}
	return nil
}
