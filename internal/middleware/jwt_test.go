package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/educ8/educ8-api/internal/models"
	"github.com/educ8/educ8-api/internal/service"
)

const testSecret = "middleware-test-secret"

func newTestAuthService() *service.AuthService {
	return service.NewAuthService(nil, nil, nil, service.AuthConfig{
		AccessTokenSecret: testSecret,
		AccessTokenExpiry: time.Hour,
		Issuer:            "educ8-api",
	})
}

func signTestToken(t *testing.T, userID string, role models.Role, expiry time.Duration) string {
	t.Helper()
	claims := &models.JWTClaims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "educ8-api",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiry)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func runJWT(t *testing.T, header string) (*httptest.ResponseRecorder, *gin.Context) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		c.Request.Header.Set("Authorization", header)
	}

	JWT(newTestAuthService())(c)
	return rec, c
}

func TestJWTMissingHeader(t *testing.T) {
	rec, c := runJWT(t, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.True(t, c.IsAborted())
}

func TestJWTMalformedHeader(t *testing.T) {
	rec, _ := runJWT(t, "Token abc")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTExpiredToken(t *testing.T) {
	token := signTestToken(t, "u1", models.RoleStudent, -time.Minute)
	rec, _ := runJWT(t, "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTValidTokenSetsClaims(t *testing.T) {
	token := signTestToken(t, "u1", models.RoleTeacher, time.Hour)
	_, c := runJWT(t, "Bearer "+token)

	assert.False(t, c.IsAborted())
	value, ok := c.Get(ContextUserKey)
	require.True(t, ok)
	claims := value.(*models.JWTClaims)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, models.RoleTeacher, claims.Role)
}
