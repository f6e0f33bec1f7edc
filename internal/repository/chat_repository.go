package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/neetrino-com/neetrino-academy-sub005/internal/models"
)

// ChatRepository persists group chat messages.
type ChatRepository struct {
	db *sqlx.DB
}

// NewChatRepository creates a new chat repository.
func NewChatRepository(db *sqlx.DB) *ChatRepository {
	return &ChatRepository{db: db}
}

// Create stores a message.
func (r *ChatRepository) Create(ctx context.Context, message *models.ChatMessage) error {
	if message.ID == "" {
		message.ID = uuid.NewString()
	}
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO chat_messages (id, group_id, author_id, body, created_at)
VALUES (:id, :group_id, :author_id, :body, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, message); err != nil {
		return fmt.Errorf("create chat message: %w", err)
	}
	return nil
}

// ListByGroup returns messages for a group, newest first, paginated.
func (r *ChatRepository) ListByGroup(ctx context.Context, groupID string, page, pageSize int) ([]models.ChatMessage, int, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 200 {
		pageSize = 50
	}
	offset := (page - 1) * pageSize

	query := fmt.Sprintf(`SELECT id, group_id, author_id, body, created_at FROM chat_messages
WHERE group_id = $1 ORDER BY created_at DESC LIMIT %d OFFSET %d`, pageSize, offset)
	var messages []models.ChatMessage
	if err := r.db.SelectContext(ctx, &messages, query, groupID); err != nil {
		return nil, 0, fmt.Errorf("list chat messages: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM chat_messages WHERE group_id = $1", groupID); err != nil {
		return nil, 0, fmt.Errorf("count chat messages: %w", err)
	}
	return messages, total, nil
}
