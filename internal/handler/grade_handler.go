package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/educ8/educ8-api/internal/models"
	"github.com/educ8/educ8-api/internal/service"
	appErrors "github.com/educ8/educ8-api/pkg/errors"
	"github.com/educ8/educ8-api/pkg/response"
)

// GradeHandler exposes gradebook endpoints.
type GradeHandler struct {
	grades *service.GradeService
}

// NewGradeHandler constructs GradeHandler.
func NewGradeHandler(grades *service.GradeService) *GradeHandler {
	return &GradeHandler{grades: grades}
}

// List godoc
// @Summary List grades
// @Tags Grades
// @Produce json
// @Param studentId query string false "Filter by student"
// @Param classId query string false "Filter by class"
// @Param subject query string false "Filter by subject"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /grades [get]
func (h *GradeHandler) List(c *gin.Context) {
	caps, claims := capabilitiesFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var filter models.GradeFilter
	filter.StudentID = c.Query("studentId")
	filter.ClassID = c.Query("classId")
	filter.Subject = c.Query("subject")
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}

	grades, total, err := h.grades.List(c.Request.Context(), caps, claims.UserID, filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, grades, &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total})
}

// Create godoc
// @Summary Record grade
// @Tags Grades
// @Accept json
// @Produce json
// @Param payload body service.CreateGradeRequest true "Grade payload"
// @Success 201 {object} response.Envelope
// @Router /grades [post]
func (h *GradeHandler) Create(c *gin.Context) {
	caps, claims := capabilitiesFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.CreateGradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	grade, err := h.grades.Create(c.Request.Context(), caps, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, grade)
}

// Update godoc
// @Summary Update grade
// @Tags Grades
// @Accept json
// @Produce json
// @Param id path string true "Grade ID"
// @Param payload body models.GradePatch true "Grade patch"
// @Success 200 {object} response.Envelope
// @Router /grades/{id} [put]
func (h *GradeHandler) Update(c *gin.Context) {
	caps, claims := capabilitiesFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var patch models.GradePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	grade, err := h.grades.Update(c.Request.Context(), caps, c.Param("id"), patch)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, grade, nil)
}

// Delete godoc
// @Summary Delete grade
// @Tags Grades
// @Produce json
// @Param id path string true "Grade ID"
// @Success 204
// @Router /grades/{id} [delete]
func (h *GradeHandler) Delete(c *gin.Context) {
	caps, claims := capabilitiesFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	if err := h.grades.Delete(c.Request.Context(), caps, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Gradebook godoc
// @Summary Per-student subject averages for a class
// @Tags Grades
// @Produce json
// @Param classId path string true "Class ID"
// @Success 200 {object} response.Envelope
// @Router /grades/gradebook/{classId} [get]
func (h *GradeHandler) Gradebook(c *gin.Context) {
	caps, claims := capabilitiesFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	book, err := h.grades.Gradebook(c.Request.Context(), caps, c.Param("classId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, book, nil)
}

// SubjectStats godoc
// @Summary Class averages grouped by subject
// @Tags Grades
// @Produce json
// @Param classId path string true "Class ID"
// @Success 200 {object} response.Envelope
// @Router /grades/statistics/{classId} [get]
func (h *GradeHandler) SubjectStats(c *gin.Context) {
	caps, claims := capabilitiesFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	stats, err := h.grades.SubjectStatistics(c.Request.Context(), caps, c.Param("classId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats, nil)
}
