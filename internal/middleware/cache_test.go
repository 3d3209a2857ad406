package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type spyDashboardCache struct {
	calls int
}

func (s *spyDashboardCache) Invalidate(ctx context.Context) {
	s.calls++
}

func newCacheTestRouter(spy *spyDashboardCache) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CacheInvalidation(spy))
	r.GET("/things", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.POST("/things", func(c *gin.Context) { c.Status(http.StatusCreated) })
	r.POST("/rejected", func(c *gin.Context) { c.Status(http.StatusBadRequest) })
	r.DELETE("/things", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	return r
}

func TestCacheInvalidationFiresAfterWrite(t *testing.T) {
	spy := &spyDashboardCache{}
	r := newCacheTestRouter(spy)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/things", nil))
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, 1, spy.calls)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/things", nil))
	assert.Equal(t, 2, spy.calls)
}

func TestCacheInvalidationSkipsReads(t *testing.T) {
	spy := &spyDashboardCache{}
	r := newCacheTestRouter(spy)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/things", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, spy.calls)
}

func TestCacheInvalidationSkipsFailedWrites(t *testing.T) {
	spy := &spyDashboardCache{}
	r := newCacheTestRouter(spy)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/rejected", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 0, spy.calls)
}
