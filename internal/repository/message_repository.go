package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/educ8/educ8-api/internal/models"
)

// MessageRepository manages persistence for direct messages.
type MessageRepository struct {
	db *sqlx.DB
}

// NewMessageRepository constructs a MessageRepository.
func NewMessageRepository(db *sqlx.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

const messageSelect = `SELECT m.id, m.sender_id, m.recipient_id, m.subject, m.content, m.read, m.created_at,
        s.full_name AS sender_name, r.full_name AS recipient_name
        FROM messages m
        JOIN profiles s ON s.id = m.sender_id
        JOIN profiles r ON r.id = m.recipient_id`

// ListBox returns a user's inbox or sent messages, newest first.
func (r *MessageRepository) ListBox(ctx context.Context, userID string, box models.MessageBox) ([]models.MessageDetail, error) {
	column := "m.recipient_id"
	if box == models.MessageBoxSent {
		column = "m.sender_id"
	}
	query := fmt.Sprintf("%s WHERE %s = $1 ORDER BY m.created_at DESC", messageSelect, column)
	var messages []models.MessageDetail
	if err := r.db.SelectContext(ctx, &messages, query, userID); err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return messages, nil
}

// FindByID fetches a message by ID.
func (r *MessageRepository) FindByID(ctx context.Context, id string) (*models.MessageDetail, error) {
	query := messageSelect + " WHERE m.id = $1"
	var message models.MessageDetail
	if err := r.db.GetContext(ctx, &message, query, id); err != nil {
		return nil, err
	}
	return &message, nil
}

// Create inserts a new message.
func (r *MessageRepository) Create(ctx context.Context, message *models.Message) error {
	if message.ID == "" {
		message.ID = uuid.NewString()
	}
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO messages (id, sender_id, recipient_id, subject, content, read, created_at)
        VALUES (:id, :sender_id, :recipient_id, :subject, :content, :read, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, message); err != nil {
		return fmt.Errorf("create message: %w", err)
	}
	return nil
}

// MarkRead marks a message as read.
func (r *MessageRepository) MarkRead(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "UPDATE messages SET read = true WHERE id = $1", id); err != nil {
		return fmt.Errorf("mark message read: %w", err)
	}
	return nil
}

// UnreadCount counts unread inbox messages for a user.
func (r *MessageRepository) UnreadCount(ctx context.Context, userID string) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM messages WHERE recipient_id = $1 AND read = false", userID); err != nil {
		return 0, fmt.Errorf("count unread messages: %w", err)
	}
	return total, nil
}

// Stats summarises a user's inbox and sent counts.
func (r *MessageRepository) Stats(ctx context.Context, userID string) (*models.MessageStats, error) {
	const query = `SELECT
        COUNT(*) FILTER (WHERE recipient_id = $1) AS total,
        COUNT(*) FILTER (WHERE recipient_id = $1 AND read = false) AS unread,
        COUNT(*) FILTER (WHERE sender_id = $1) AS sent
        FROM messages WHERE recipient_id = $1 OR sender_id = $1`
	var stats models.MessageStats
	if err := r.db.GetContext(ctx, &stats, query, userID); err != nil {
		return nil, fmt.Errorf("message stats: %w", err)
	}
	return &stats, nil
}
