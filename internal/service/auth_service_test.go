package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/educ8/educ8-api/internal/models"
)

type mockProfileRepo struct {
	profiles map[string]*models.Profile
	tokens   map[string]*models.RefreshToken
	audits   []models.AuditLog
}

func newMockProfileRepo() *mockProfileRepo {
	return &mockProfileRepo{profiles: map[string]*models.Profile{}, tokens: map[string]*models.RefreshToken{}}
}

func (m *mockProfileRepo) FindByEmail(ctx context.Context, email string) (*models.Profile, error) {
	for _, p := range m.profiles {
		if p.Email == email {
			return p, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockProfileRepo) FindByID(ctx context.Context, id string) (*models.Profile, error) {
	if p, ok := m.profiles[id]; ok {
		return p, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockProfileRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := m.FindByEmail(ctx, email)
	return err == nil, nil
}

func (m *mockProfileRepo) Create(ctx context.Context, profile *models.Profile) error {
	m.profiles[profile.ID] = profile
	return nil
}

func (m *mockProfileRepo) Update(ctx context.Context, profile *models.Profile) error {
	m.profiles[profile.ID] = profile
	return nil
}

func (m *mockProfileRepo) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error {
	if p, ok := m.profiles[id]; ok {
		p.LastLogin = &ts
	}
	return nil
}

func (m *mockProfileRepo) UpdatePassword(ctx context.Context, id, passwordHash string, updatedAt time.Time) error {
	if p, ok := m.profiles[id]; ok {
		p.PasswordHash = passwordHash
	}
	return nil
}

func (m *mockProfileRepo) RevokeUserRefreshTokens(ctx context.Context, userID string) error {
	for _, token := range m.tokens {
		if token.UserID == userID {
			token.Revoked = true
		}
	}
	return nil
}

func (m *mockProfileRepo) CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	m.tokens[token.Token] = token
	return nil
}

func (m *mockProfileRepo) FindRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	if t, ok := m.tokens[token]; ok {
		return t, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockProfileRepo) RevokeRefreshToken(ctx context.Context, id string, revokedAt time.Time) error {
	for _, token := range m.tokens {
		if token.ID == id {
			token.Revoked = true
			token.RevokedAt = &revokedAt
		}
	}
	return nil
}

func (m *mockProfileRepo) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	m.audits = append(m.audits, *log)
	return nil
}

func newAuthFixture(t *testing.T) (*AuthService, *mockProfileRepo) {
	t.Helper()
	repo := newMockProfileRepo()
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)
	repo.profiles["u1"] = &models.Profile{
		ID:           "u1",
		Email:        "ada@educ8.test",
		PasswordHash: string(hash),
		FullName:     "Ada Student",
		Role:         models.RoleStudent,
		Active:       true,
	}
	svc := NewAuthService(repo, validator.New(), zap.NewNop(), AuthConfig{
		AccessTokenSecret:  "test-secret",
		AccessTokenExpiry:  time.Hour,
		RefreshTokenExpiry: 24 * time.Hour,
		Issuer:             "educ8-api",
	})
	return svc, repo
}

func TestAuthLoginSuccess(t *testing.T) {
	svc, repo := newAuthFixture(t)

	resp, err := svc.Login(context.Background(), models.LoginRequest{Email: "ada@educ8.test", Password: "password123"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, models.RoleStudent, resp.User.Role)
	assert.NotNil(t, repo.profiles["u1"].LastLogin)

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, models.RoleStudent, claims.Role)
}

func TestAuthLoginWrongPassword(t *testing.T) {
	svc, _ := newAuthFixture(t)

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "ada@educ8.test", Password: "wrong"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid email or password")
}

func TestAuthLoginInactiveAccount(t *testing.T) {
	svc, repo := newAuthFixture(t)
	repo.profiles["u1"].Active = false

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "ada@educ8.test", Password: "password123"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "inactive")
}

func TestAuthRegisterDuplicateEmail(t *testing.T) {
	svc, _ := newAuthFixture(t)

	_, err := svc.Register(context.Background(), models.RegisterRequest{
		Email: "ada@educ8.test", Password: "password123", FullName: "Other", Role: models.RoleTeacher,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already registered")
}

func TestAuthRegisterUnknownRole(t *testing.T) {
	svc, _ := newAuthFixture(t)

	_, err := svc.Register(context.Background(), models.RegisterRequest{
		Email: "new@educ8.test", Password: "password123", FullName: "New User", Role: "superuser",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown role")
}

func TestAuthRefreshTokenRotation(t *testing.T) {
	svc, repo := newAuthFixture(t)

	login, err := svc.Login(context.Background(), models.LoginRequest{Email: "ada@educ8.test", Password: "password123"})
	require.NoError(t, err)

	refreshed, err := svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: login.RefreshToken})
	require.NoError(t, err)
	assert.NotEqual(t, login.RefreshToken, refreshed.RefreshToken)
	assert.True(t, repo.tokens[login.RefreshToken].Revoked)

	// the used token cannot be replayed
	_, err = svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: login.RefreshToken})
	require.Error(t, err)
}

func TestAuthChangePasswordRevokesTokens(t *testing.T) {
	svc, repo := newAuthFixture(t)

	login, err := svc.Login(context.Background(), models.LoginRequest{Email: "ada@educ8.test", Password: "password123"})
	require.NoError(t, err)

	err = svc.ChangePassword(context.Background(), "u1", models.ChangePasswordRequest{
		OldPassword: "password123", NewPassword: "password456",
	})
	require.NoError(t, err)
	assert.True(t, repo.tokens[login.RefreshToken].Revoked)

	_, err = svc.Login(context.Background(), models.LoginRequest{Email: "ada@educ8.test", Password: "password456"})
	require.NoError(t, err)
}
