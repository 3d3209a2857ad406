package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/educ8/educ8-api/internal/middleware"
	"github.com/educ8/educ8-api/internal/models"
	"github.com/educ8/educ8-api/internal/service"
)

type stubFeeRepo struct {
	fees map[string]*models.Fee
}

func (s *stubFeeRepo) List(ctx context.Context, filter models.FeeFilter) ([]models.Fee, int, error) {
	out := []models.Fee{}
	for _, fee := range s.fees {
		if filter.StudentID != "" && fee.StudentID != filter.StudentID {
			continue
		}
		out = append(out, *fee)
	}
	return out, len(out), nil
}

func (s *stubFeeRepo) FindByID(ctx context.Context, id string) (*models.Fee, error) {
	if fee, ok := s.fees[id]; ok {
		return fee, nil
	}
	return nil, sql.ErrNoRows
}

func (s *stubFeeRepo) Create(ctx context.Context, fee *models.Fee) error {
	fee.ID = "f1"
	s.fees[fee.ID] = fee
	return nil
}

func (s *stubFeeRepo) Update(ctx context.Context, fee *models.Fee) error {
	s.fees[fee.ID] = fee
	return nil
}

func (s *stubFeeRepo) Delete(ctx context.Context, id string) error {
	delete(s.fees, id)
	return nil
}

func newFeeTestContext(t *testing.T, method, target, body string, role models.Role) (*httptest.ResponseRecorder, *gin.Context) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "u1", Role: role})
	return rec, c
}

func TestFeeHandlerCreate(t *testing.T) {
	repo := &stubFeeRepo{fees: map[string]*models.Fee{}}
	h := NewFeeHandler(service.NewFeeService(repo, nil, nil))

	body := `{"student_id":"s1","student_name":"Ada Student","fee_type":"tuition","amount_due":450,"amount_paid":300,"status":"partial"}`
	rec, c := newFeeTestContext(t, http.MethodPost, "/fees", body, models.RoleAdmin)

	h.Create(c)

	require.Equal(t, http.StatusCreated, rec.Code)
	var envelope struct {
		Data models.Fee `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, 150.0, envelope.Data.OutstandingAmount)
}

func TestFeeHandlerCreateForbiddenForTeacher(t *testing.T) {
	repo := &stubFeeRepo{fees: map[string]*models.Fee{}}
	h := NewFeeHandler(service.NewFeeService(repo, nil, nil))

	body := `{"student_id":"s1","student_name":"Ada Student","fee_type":"tuition","amount_due":100,"status":"pending"}`
	rec, c := newFeeTestContext(t, http.MethodPost, "/fees", body, models.RoleTeacher)

	h.Create(c)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Empty(t, repo.fees)
}

func TestFeeHandlerCreateRejectsBadJSON(t *testing.T) {
	repo := &stubFeeRepo{fees: map[string]*models.Fee{}}
	h := NewFeeHandler(service.NewFeeService(repo, nil, nil))

	rec, c := newFeeTestContext(t, http.MethodPost, "/fees", "{not json", models.RoleAdmin)

	h.Create(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFeeHandlerListScopedToStudent(t *testing.T) {
	parentID := "p1"
	repo := &stubFeeRepo{fees: map[string]*models.Fee{
		"f1": {ID: "f1", StudentID: "u1", StudentName: "Ada Student", Status: models.FeeStatusPending},
		"f2": {ID: "f2", StudentID: "s2", StudentName: "Ben Student", ParentID: &parentID, Status: models.FeeStatusPending},
	}}
	h := NewFeeHandler(service.NewFeeService(repo, nil, nil))

	rec, c := newFeeTestContext(t, http.MethodGet, "/fees", "", models.RoleStudent)

	h.List(c)

	require.Equal(t, http.StatusOK, rec.Code)
	var envelope struct {
		Data []models.Fee `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.Len(t, envelope.Data, 1)
	assert.Equal(t, "u1", envelope.Data[0].StudentID)
}
