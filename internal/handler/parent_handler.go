package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/educ8/educ8-api/internal/models"
	"github.com/educ8/educ8-api/internal/service"
	appErrors "github.com/educ8/educ8-api/pkg/errors"
	"github.com/educ8/educ8-api/pkg/response"
)

// ParentHandler exposes parent lookup endpoints.
type ParentHandler struct {
	parents *service.ParentService
}

// NewParentHandler constructs ParentHandler.
func NewParentHandler(parents *service.ParentService) *ParentHandler {
	return &ParentHandler{parents: parents}
}

// List godoc
// @Summary List parent profiles
// @Tags Parents
// @Produce json
// @Param search query string false "Search by name or email"
// @Param active query bool false "Filter by active state"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /parents [get]
func (h *ParentHandler) List(c *gin.Context) {
	caps, claims := capabilitiesFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var filter models.ProfileFilter
	filter.Search = strings.TrimSpace(c.Query("search"))
	if active := c.Query("active"); active != "" {
		v := active == "true"
		filter.Active = &v
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}
	filter.SortBy = c.Query("sort")
	filter.SortOrder = c.Query("order")

	parents, total, err := h.parents.List(c.Request.Context(), caps, filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, parents, &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total})
}

// Children godoc
// @Summary List the students linked to a parent
// @Tags Parents
// @Produce json
// @Param id path string true "Parent ID"
// @Success 200 {object} response.Envelope
// @Router /parents/{id}/children [get]
func (h *ParentHandler) Children(c *gin.Context) {
	caps, claims := capabilitiesFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	children, err := h.parents.Children(c.Request.Context(), caps, claims.UserID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, children, nil)
}
