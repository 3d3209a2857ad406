package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/educ8/educ8-api/internal/models"
)

type mockMessageRepo struct {
	messages map[string]*models.MessageDetail
	nextID   int
}

func newMockMessageRepo() *mockMessageRepo {
	return &mockMessageRepo{messages: map[string]*models.MessageDetail{}}
}

func (m *mockMessageRepo) ListBox(ctx context.Context, userID string, box models.MessageBox) ([]models.MessageDetail, error) {
	out := []models.MessageDetail{}
	for _, msg := range m.messages {
		if box == models.MessageBoxSent && msg.SenderID == userID {
			out = append(out, *msg)
		}
		if box == models.MessageBoxInbox && msg.RecipientID == userID {
			out = append(out, *msg)
		}
	}
	return out, nil
}

func (m *mockMessageRepo) FindByID(ctx context.Context, id string) (*models.MessageDetail, error) {
	if msg, ok := m.messages[id]; ok {
		return msg, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockMessageRepo) Create(ctx context.Context, message *models.Message) error {
	m.nextID++
	message.ID = "m" + string(rune('0'+m.nextID))
	m.messages[message.ID] = &models.MessageDetail{Message: *message}
	return nil
}

func (m *mockMessageRepo) MarkRead(ctx context.Context, id string) error {
	if msg, ok := m.messages[id]; ok {
		msg.Read = true
	}
	return nil
}

func (m *mockMessageRepo) Stats(ctx context.Context, userID string) (*models.MessageStats, error) {
	stats := &models.MessageStats{}
	for _, msg := range m.messages {
		if msg.RecipientID == userID {
			stats.Total++
			if !msg.Read {
				stats.Unread++
			}
		}
		if msg.SenderID == userID {
			stats.Sent++
		}
	}
	return stats, nil
}

type mockProfileReader struct {
	profiles map[string]*models.Profile
}

func (m *mockProfileReader) FindByID(ctx context.Context, id string) (*models.Profile, error) {
	if p, ok := m.profiles[id]; ok {
		return p, nil
	}
	return nil, sql.ErrNoRows
}

func newMessageFixture() (*MessageService, *mockMessageRepo) {
	repo := newMockMessageRepo()
	profiles := &mockProfileReader{profiles: map[string]*models.Profile{
		"u1": {ID: "u1", FullName: "Ada Student", Active: true},
		"u2": {ID: "u2", FullName: "Tom Teacher", Active: true},
		"u3": {ID: "u3", FullName: "Gone User", Active: false},
	}}
	return NewMessageService(repo, profiles, validator.New(), zap.NewNop()), repo
}

func TestMessageSendAndRead(t *testing.T) {
	svc, _ := newMessageFixture()

	sent, err := svc.Send(context.Background(), "u1", SendMessageRequest{
		RecipientID: "u2", Subject: "Question", Content: "About the homework",
	})
	require.NoError(t, err)
	assert.False(t, sent.Read)

	opened, err := svc.Read(context.Background(), "u2", sent.ID)
	require.NoError(t, err)
	assert.True(t, opened.Read)

	stats, err := svc.Stats(context.Background(), "u2")
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Total)
	assert.Zero(t, stats.Unread)
}

func TestMessageSendToSelfRejected(t *testing.T) {
	svc, _ := newMessageFixture()

	_, err := svc.Send(context.Background(), "u1", SendMessageRequest{
		RecipientID: "u1", Subject: "Hi", Content: "Me",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "yourself")
}

func TestMessageSendToInactiveRejected(t *testing.T) {
	svc, _ := newMessageFixture()

	_, err := svc.Send(context.Background(), "u1", SendMessageRequest{
		RecipientID: "u3", Subject: "Hi", Content: "There",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "inactive")
}

func TestMessageReadForeignConversationForbidden(t *testing.T) {
	svc, _ := newMessageFixture()

	sent, err := svc.Send(context.Background(), "u1", SendMessageRequest{
		RecipientID: "u2", Subject: "Private", Content: "Between us",
	})
	require.NoError(t, err)

	_, err = svc.Read(context.Background(), "u3", sent.ID)
	require.Error(t, err)
}

func TestMessageSenderReadDoesNotMarkRead(t *testing.T) {
	svc, repo := newMessageFixture()

	sent, err := svc.Send(context.Background(), "u1", SendMessageRequest{
		RecipientID: "u2", Subject: "Hello", Content: "World",
	})
	require.NoError(t, err)

	_, err = svc.Read(context.Background(), "u1", sent.ID)
	require.NoError(t, err)
	assert.False(t, repo.messages[sent.ID].Read)
}
