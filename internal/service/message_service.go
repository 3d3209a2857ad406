package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/educ8/educ8-api/internal/models"
	appErrors "github.com/educ8/educ8-api/pkg/errors"
)

type messageRepository interface {
	ListBox(ctx context.Context, userID string, box models.MessageBox) ([]models.MessageDetail, error)
	FindByID(ctx context.Context, id string) (*models.MessageDetail, error)
	Create(ctx context.Context, message *models.Message) error
	MarkRead(ctx context.Context, id string) error
	Stats(ctx context.Context, userID string) (*models.MessageStats, error)
}

type messageProfileReader interface {
	FindByID(ctx context.Context, id string) (*models.Profile, error)
}

// SendMessageRequest is the payload for sending a direct message.
type SendMessageRequest struct {
	RecipientID string `json:"recipient_id" validate:"required"`
	Subject     string `json:"subject" validate:"required"`
	Content     string `json:"content" validate:"required"`
}

// MessageService provides direct messaging between profiles.
type MessageService struct {
	repo      messageRepository
	profiles  messageProfileReader
	validator *validator.Validate
	logger    *zap.Logger
}

// NewMessageService constructs a MessageService instance.
func NewMessageService(repo messageRepository, profiles messageProfileReader, validate *validator.Validate, logger *zap.Logger) *MessageService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &MessageService{repo: repo, profiles: profiles, validator: validate, logger: logger}
}

// ListBox returns the caller's inbox or sent messages.
func (s *MessageService) ListBox(ctx context.Context, userID string, box models.MessageBox) ([]models.MessageDetail, error) {
	if box != models.MessageBoxInbox && box != models.MessageBoxSent {
		box = models.MessageBoxInbox
	}
	messages, err := s.repo.ListBox(ctx, userID, box)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list messages")
	}
	return messages, nil
}

// Send validates the recipient and persists the message.
func (s *MessageService) Send(ctx context.Context, senderID string, req SendMessageRequest) (*models.Message, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid message payload")
	}
	if req.RecipientID == senderID {
		return nil, appErrors.Clone(appErrors.ErrValidation, "cannot send a message to yourself")
	}

	recipient, err := s.profiles.FindByID(ctx, req.RecipientID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "recipient not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load recipient")
	}
	if !recipient.Active {
		return nil, appErrors.Clone(appErrors.ErrValidation, "recipient account is inactive")
	}

	message := &models.Message{
		SenderID:    senderID,
		RecipientID: req.RecipientID,
		Subject:     req.Subject,
		Content:     req.Content,
	}
	if err := s.repo.Create(ctx, message); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to send message")
	}
	s.logger.Info("message sent", zap.String("message_id", message.ID), zap.String("recipient_id", message.RecipientID))
	return message, nil
}

// Read returns a message and marks it read when the recipient opens it.
func (s *MessageService) Read(ctx context.Context, userID, id string) (*models.MessageDetail, error) {
	message, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "message not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load message")
	}
	if message.SenderID != userID && message.RecipientID != userID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "message belongs to another conversation")
	}

	if message.RecipientID == userID && !message.Read {
		if err := s.repo.MarkRead(ctx, id); err != nil {
			s.logger.Warn("failed to mark message read", zap.String("message_id", id), zap.Error(err))
		} else {
			message.Read = true
		}
	}
	return message, nil
}

// Stats summarises the caller's inbox and sent counts.
func (s *MessageService) Stats(ctx context.Context, userID string) (*models.MessageStats, error) {
	stats, err := s.repo.Stats(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load message stats")
	}
	return stats, nil
}
