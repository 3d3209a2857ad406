package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/educ8/educ8-api/internal/models"
)

// ProfileRepository manages persistence for profiles, refresh tokens and
// audit records.
type ProfileRepository struct {
	db *sqlx.DB
}

// NewProfileRepository constructs a ProfileRepository.
func NewProfileRepository(db *sqlx.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

const profileColumns = "id, email, password_hash, full_name, role, avatar_url, phone, active, last_login, created_at, updated_at"

// FindByEmail fetches a profile by email.
func (r *ProfileRepository) FindByEmail(ctx context.Context, email string) (*models.Profile, error) {
	query := fmt.Sprintf("SELECT %s FROM profiles WHERE LOWER(email) = LOWER($1)", profileColumns)
	var profile models.Profile
	if err := r.db.GetContext(ctx, &profile, query, email); err != nil {
		return nil, err
	}
	return &profile, nil
}

// FindByID fetches a profile by ID.
func (r *ProfileRepository) FindByID(ctx context.Context, id string) (*models.Profile, error) {
	query := fmt.Sprintf("SELECT %s FROM profiles WHERE id = $1", profileColumns)
	var profile models.Profile
	if err := r.db.GetContext(ctx, &profile, query, id); err != nil {
		return nil, err
	}
	return &profile, nil
}

// ExistsByEmail checks whether the email is already registered.
func (r *ProfileRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists int
	err := r.db.GetContext(ctx, &exists, "SELECT 1 FROM profiles WHERE LOWER(email) = LOWER($1) LIMIT 1", email)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check email: %w", err)
	}
	return true, nil
}

// List returns profiles matching the provided filters.
func (r *ProfileRepository) List(ctx context.Context, filter models.ProfileFilter) ([]models.Profile, int, error) {
	base := "FROM profiles"
	args := []interface{}{}
	conditions := []string{"1=1"}

	if filter.Role != nil {
		conditions = append(conditions, fmt.Sprintf("role = $%d", len(args)+1))
		args = append(args, *filter.Role)
	}
	if filter.Active != nil {
		conditions = append(conditions, fmt.Sprintf("active = $%d", len(args)+1))
		args = append(args, *filter.Active)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(full_name) LIKE $%d OR LOWER(email) LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	base = fmt.Sprintf("%s WHERE %s", base, strings.Join(conditions, " AND "))

	allowedSorts := map[string]string{
		"full_name":  "full_name",
		"email":      "email",
		"created_at": "created_at",
	}
	column, ok := allowedSorts[filter.SortBy]
	if !ok {
		column = "created_at"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "DESC"
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

	query := fmt.Sprintf("SELECT %s %s ORDER BY %s %s LIMIT %d OFFSET %d", profileColumns, base, column, order, size, offset)

	var profiles []models.Profile
	if err := r.db.SelectContext(ctx, &profiles, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list profiles: %w", err)
	}

	countQuery := "SELECT COUNT(*) " + base
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count profiles: %w", err)
	}
	return profiles, total, nil
}

// Create inserts a new profile row.
func (r *ProfileRepository) Create(ctx context.Context, profile *models.Profile) error {
	if profile.ID == "" {
		profile.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = now
	}
	profile.UpdatedAt = now
	const query = `INSERT INTO profiles (id, email, password_hash, full_name, role, avatar_url, phone, active, created_at, updated_at)
        VALUES (:id, :email, :password_hash, :full_name, :role, :avatar_url, :phone, :active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, profile); err != nil {
		return fmt.Errorf("create profile: %w", err)
	}
	return nil
}

// Update modifies the mutable profile fields.
func (r *ProfileRepository) Update(ctx context.Context, profile *models.Profile) error {
	profile.UpdatedAt = time.Now().UTC()
	const query = `UPDATE profiles SET full_name = :full_name, avatar_url = :avatar_url, phone = :phone, active = :active, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, profile); err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	return nil
}

// UpdateLastLogin stamps a successful login.
func (r *ProfileRepository) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error {
	if _, err := r.db.ExecContext(ctx, "UPDATE profiles SET last_login = $2 WHERE id = $1", id, ts); err != nil {
		return fmt.Errorf("update last login: %w", err)
	}
	return nil
}

// UpdatePassword replaces the stored password hash.
func (r *ProfileRepository) UpdatePassword(ctx context.Context, id, passwordHash string, updatedAt time.Time) error {
	if _, err := r.db.ExecContext(ctx, "UPDATE profiles SET password_hash = $2, updated_at = $3 WHERE id = $1", id, passwordHash, updatedAt); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}

// Deactivate marks a profile as inactive.
func (r *ProfileRepository) Deactivate(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "UPDATE profiles SET active = false, updated_at = $2 WHERE id = $1", id, time.Now().UTC()); err != nil {
		return fmt.Errorf("deactivate profile: %w", err)
	}
	return nil
}

// CreateRefreshToken persists a refresh token.
func (r *ProfileRepository) CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	const query = `INSERT INTO refresh_tokens (id, user_id, token, expires_at, created_at, revoked, ip_address, user_agent)
        VALUES (:id, :user_id, :token, :expires_at, :created_at, :revoked, :ip_address, :user_agent)`
	if _, err := r.db.NamedExecContext(ctx, query, token); err != nil {
		return fmt.Errorf("create refresh token: %w", err)
	}
	return nil
}

// FindRefreshToken looks up a refresh token by its value.
func (r *ProfileRepository) FindRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	const query = `SELECT id, user_id, token, expires_at, created_at, revoked, revoked_at, ip_address, user_agent
        FROM refresh_tokens WHERE token = $1`
	var rt models.RefreshToken
	if err := r.db.GetContext(ctx, &rt, query, token); err != nil {
		return nil, err
	}
	return &rt, nil
}

// RevokeRefreshToken marks a single token as revoked.
func (r *ProfileRepository) RevokeRefreshToken(ctx context.Context, id string, revokedAt time.Time) error {
	if _, err := r.db.ExecContext(ctx, "UPDATE refresh_tokens SET revoked = true, revoked_at = $2 WHERE id = $1", id, revokedAt); err != nil {
		return fmt.Errorf("revoke refresh token: %w", err)
	}
	return nil
}

// RevokeUserRefreshTokens revokes every active token for a user.
func (r *ProfileRepository) RevokeUserRefreshTokens(ctx context.Context, userID string) error {
	if _, err := r.db.ExecContext(ctx, "UPDATE refresh_tokens SET revoked = true, revoked_at = $2 WHERE user_id = $1 AND revoked = false", userID, time.Now().UTC()); err != nil {
		return fmt.Errorf("revoke user refresh tokens: %w", err)
	}
	return nil
}

// CreateAuditLog records a security event. Failures are the caller's to log.
func (r *ProfileRepository) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	if log.ID == "" {
		log.ID = uuid.NewString()
	}
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO audit_logs (id, user_id, action, resource, resource_id, new_values, ip_address, user_agent, created_at)
        VALUES (:id, :user_id, :action, :resource, :resource_id, :new_values, :ip_address, :user_agent, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, log); err != nil {
		return fmt.Errorf("create audit log: %w", err)
	}
	return nil
}
