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

// AssignmentHandler exposes assignment endpoints. Listings are always scoped
// to the authenticated viewer's role.
type AssignmentHandler struct {
	assignments *service.AssignmentService
}

// NewAssignmentHandler constructs AssignmentHandler.
func NewAssignmentHandler(assignments *service.AssignmentService) *AssignmentHandler {
	return &AssignmentHandler{assignments: assignments}
}

func assignmentFilterFromQuery(c *gin.Context) models.AssignmentFilter {
	var filter models.AssignmentFilter
	filter.ClassID = c.Query("classId")
	filter.Type = c.Query("type")
	filter.Search = strings.TrimSpace(c.Query("search"))
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}
	filter.SortBy = c.Query("sort")
	filter.SortOrder = c.Query("order")
	return filter
}

// List godoc
// @Summary List assignments for the current viewer
// @Tags Assignments
// @Produce json
// @Param classId query string false "Filter by class"
// @Param type query string false "Filter by assignment type"
// @Param search query string false "Search by title"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /assignments [get]
func (h *AssignmentHandler) List(c *gin.Context) {
	caps, claims := capabilitiesFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	filter := assignmentFilterFromQuery(c)
	assignments, total, err := h.assignments.ListForViewer(c.Request.Context(), caps, claims.UserID, filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assignments, &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total})
}

// Get godoc
// @Summary Get assignment detail
// @Tags Assignments
// @Produce json
// @Param id path string true "Assignment ID"
// @Success 200 {object} response.Envelope
// @Router /assignments/{id} [get]
func (h *AssignmentHandler) Get(c *gin.Context) {
	caps, claims := capabilitiesFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	assignment, err := h.assignments.Get(c.Request.Context(), caps, claims.UserID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assignment, nil)
}

// Create godoc
// @Summary Create assignment
// @Tags Assignments
// @Accept json
// @Produce json
// @Param payload body service.CreateAssignmentRequest true "Assignment payload"
// @Success 201 {object} response.Envelope
// @Router /assignments [post]
func (h *AssignmentHandler) Create(c *gin.Context) {
	caps, claims := capabilitiesFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.CreateAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	assignment, err := h.assignments.Create(c.Request.Context(), caps, claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, assignment)
}

// Update godoc
// @Summary Update assignment
// @Tags Assignments
// @Accept json
// @Produce json
// @Param id path string true "Assignment ID"
// @Param payload body models.AssignmentPatch true "Assignment patch"
// @Success 200 {object} response.Envelope
// @Router /assignments/{id} [put]
func (h *AssignmentHandler) Update(c *gin.Context) {
	caps, claims := capabilitiesFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var patch models.AssignmentPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	assignment, err := h.assignments.Update(c.Request.Context(), caps, claims.UserID, c.Param("id"), patch)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assignment, nil)
}

// Delete godoc
// @Summary Delete assignment
// @Tags Assignments
// @Produce json
// @Param id path string true "Assignment ID"
// @Success 204
// @Router /assignments/{id} [delete]
func (h *AssignmentHandler) Delete(c *gin.Context) {
	caps, claims := capabilitiesFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	if err := h.assignments.Delete(c.Request.Context(), caps, claims.UserID, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Stats godoc
// @Summary Assignment workload counters for the current viewer
// @Tags Assignments
// @Produce json
// @Param classId query string false "Filter by class"
// @Success 200 {object} response.Envelope
// @Router /assignments/stats [get]
func (h *AssignmentHandler) Stats(c *gin.Context) {
	caps, claims := capabilitiesFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	stats, err := h.assignments.Stats(c.Request.Context(), caps, claims.UserID, assignmentFilterFromQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats, nil)
}
