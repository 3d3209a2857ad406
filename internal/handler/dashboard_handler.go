package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/educ8/educ8-api/internal/models"
	"github.com/educ8/educ8-api/internal/service"
	appErrors "github.com/educ8/educ8-api/pkg/errors"
	"github.com/educ8/educ8-api/pkg/response"
)

// DashboardHandler serves the role-specific dashboard snapshot.
type DashboardHandler struct {
	dashboards *service.DashboardService
}

// NewDashboardHandler constructs DashboardHandler.
func NewDashboardHandler(dashboards *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboards: dashboards}
}

// Me godoc
// @Summary Dashboard for the current user
// @Description Returns the snapshot matching the caller's role.
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /dashboard [get]
func (h *DashboardHandler) Me(c *gin.Context) {
	caps, claims := capabilitiesFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var (
		data interface{}
		err  error
	)
	switch claims.Role {
	case models.RoleAdmin, models.RolePrincipal:
		data, err = h.dashboards.Admin(c.Request.Context(), caps)
	case models.RoleTeacher:
		data, err = h.dashboards.Teacher(c.Request.Context(), caps, claims.UserID)
	case models.RoleStudent:
		data, err = h.dashboards.Student(c.Request.Context(), caps, claims.UserID)
	case models.RoleParent:
		data, err = h.dashboards.Parent(c.Request.Context(), caps, claims.UserID)
	default:
		err = appErrors.Clone(appErrors.ErrForbidden, "role has no dashboard")
	}
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, data, nil)
}
