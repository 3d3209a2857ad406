package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/educ8/educ8-api/internal/models"
)

func runRBAC(t *testing.T, claims *models.JWTClaims, paramID string, allowed ...string) int {
	t.Helper()
	gin.SetMode(gin.TestMode)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	if claims != nil {
		c.Set(ContextUserKey, claims)
	}
	if paramID != "" {
		c.Params = gin.Params{{Key: "id", Value: paramID}}
	}

	handled := false
	RBAC(allowed...)(c)
	if !c.IsAborted() {
		handled = true
		c.Status(http.StatusOK)
	}
	if handled {
		return http.StatusOK
	}
	return rec.Code
}

func TestRBACAllowsListedRole(t *testing.T) {
	code := runRBAC(t, &models.JWTClaims{UserID: "u1", Role: models.RoleTeacher}, "",
		string(models.RoleAdmin), string(models.RoleTeacher))
	assert.Equal(t, http.StatusOK, code)
}

func TestRBACRejectsOtherRole(t *testing.T) {
	code := runRBAC(t, &models.JWTClaims{UserID: "u1", Role: models.RoleStudent}, "",
		string(models.RoleAdmin))
	assert.Equal(t, http.StatusForbidden, code)
}

func TestRBACRejectsMissingClaims(t *testing.T) {
	code := runRBAC(t, nil, "", string(models.RoleAdmin))
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestRBACSelfMatchAllows(t *testing.T) {
	code := runRBAC(t, &models.JWTClaims{UserID: "u1", Role: models.RoleStudent}, "u1",
		string(models.RoleAdmin), SelfParam)
	assert.Equal(t, http.StatusOK, code)
}

func TestRBACSelfMismatchForbidden(t *testing.T) {
	code := runRBAC(t, &models.JWTClaims{UserID: "u1", Role: models.RoleStudent}, "u2",
		string(models.RoleAdmin), SelfParam)
	assert.Equal(t, http.StatusForbidden, code)
}
