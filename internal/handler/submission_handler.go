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

// SubmissionHandler exposes the submit and grade workflow.
type SubmissionHandler struct {
	submissions *service.SubmissionService
}

// NewSubmissionHandler constructs SubmissionHandler.
func NewSubmissionHandler(submissions *service.SubmissionService) *SubmissionHandler {
	return &SubmissionHandler{submissions: submissions}
}

// List godoc
// @Summary List submissions
// @Tags Submissions
// @Produce json
// @Param assignmentId query string false "Filter by assignment"
// @Param studentId query string false "Filter by student"
// @Param status query string false "Filter by status"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /submissions [get]
func (h *SubmissionHandler) List(c *gin.Context) {
	caps, claims := capabilitiesFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var filter models.SubmissionFilter
	filter.AssignmentID = c.Query("assignmentId")
	filter.StudentID = c.Query("studentId")
	if status := c.Query("status"); status != "" {
		st := models.SubmissionStatus(status)
		filter.Status = &st
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}

	submissions, total, err := h.submissions.List(c.Request.Context(), caps, claims.UserID, filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, submissions, &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total})
}

// Get godoc
// @Summary Get submission detail
// @Tags Submissions
// @Produce json
// @Param id path string true "Submission ID"
// @Success 200 {object} response.Envelope
// @Router /submissions/{id} [get]
func (h *SubmissionHandler) Get(c *gin.Context) {
	caps, claims := capabilitiesFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	submission, err := h.submissions.Get(c.Request.Context(), caps, claims.UserID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, submission, nil)
}

// Submit godoc
// @Summary Submit work for an assignment
// @Description Students submit content or a file reference. Resubmitting an
// @Description ungraded submission replaces it; graded work is locked.
// @Tags Submissions
// @Accept json
// @Produce json
// @Param payload body service.SubmitRequest true "Submission payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /submissions [post]
func (h *SubmissionHandler) Submit(c *gin.Context) {
	caps, claims := capabilitiesFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	submission, err := h.submissions.Submit(c.Request.Context(), caps, claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, submission)
}

// Grade godoc
// @Summary Grade a submission
// @Tags Submissions
// @Accept json
// @Produce json
// @Param id path string true "Submission ID"
// @Param payload body service.GradeSubmissionRequest true "Grade payload"
// @Success 200 {object} response.Envelope
// @Router /submissions/{id}/grade [post]
func (h *SubmissionHandler) Grade(c *gin.Context) {
	caps, claims := capabilitiesFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.GradeSubmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	submission, err := h.submissions.Grade(c.Request.Context(), caps, claims.UserID, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, submission, nil)
}
