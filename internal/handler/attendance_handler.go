package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/educ8/educ8-api/internal/models"
	"github.com/educ8/educ8-api/internal/service"
	appErrors "github.com/educ8/educ8-api/pkg/errors"
	"github.com/educ8/educ8-api/pkg/response"
)

// AttendanceHandler exposes attendance endpoints.
type AttendanceHandler struct {
	attendance *service.AttendanceService
}

// NewAttendanceHandler constructs AttendanceHandler.
func NewAttendanceHandler(attendance *service.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{attendance: attendance}
}

func attendanceFilterFromQuery(c *gin.Context) (models.AttendanceFilter, error) {
	var filter models.AttendanceFilter
	filter.ClassID = c.Query("classId")
	filter.StudentID = c.Query("studentId")
	if raw := c.Query("date"); raw != "" {
		date, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return filter, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "date must be YYYY-MM-DD")
		}
		filter.Date = &date
	}
	if status := c.Query("status"); status != "" {
		st := models.AttendanceStatus(status)
		filter.Status = &st
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}
	return filter, nil
}

// List godoc
// @Summary List attendance records
// @Tags Attendance
// @Produce json
// @Param classId query string false "Filter by class"
// @Param studentId query string false "Filter by student"
// @Param date query string false "Filter by date (YYYY-MM-DD)"
// @Param status query string false "Filter by status"
// @Success 200 {object} response.Envelope
// @Router /attendance [get]
func (h *AttendanceHandler) List(c *gin.Context) {
	caps, claims := capabilitiesFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	filter, err := attendanceFilterFromQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	records, total, err := h.attendance.List(c.Request.Context(), caps, claims.UserID, filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, records, &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total})
}

// Record godoc
// @Summary Record attendance
// @Description Upserts the record for the student, class and day.
// @Tags Attendance
// @Accept json
// @Produce json
// @Param payload body service.RecordAttendanceRequest true "Attendance payload"
// @Success 200 {object} response.Envelope
// @Router /attendance [post]
func (h *AttendanceHandler) Record(c *gin.Context) {
	caps, claims := capabilitiesFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.RecordAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	record, err := h.attendance.Record(c.Request.Context(), caps, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, record, nil)
}

// RecordBulk godoc
// @Summary Record attendance for a whole class at once
// @Tags Attendance
// @Accept json
// @Produce json
// @Param payload body []service.RecordAttendanceRequest true "Attendance payloads"
// @Success 200 {object} response.Envelope
// @Router /attendance/bulk [post]
func (h *AttendanceHandler) RecordBulk(c *gin.Context) {
	caps, claims := capabilitiesFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var reqs []service.RecordAttendanceRequest
	if err := c.ShouldBindJSON(&reqs); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	records, err := h.attendance.RecordBulk(c.Request.Context(), caps, reqs)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, records, nil)
}

// Delete godoc
// @Summary Delete attendance record
// @Tags Attendance
// @Produce json
// @Param id path string true "Attendance ID"
// @Success 204
// @Router /attendance/{id} [delete]
func (h *AttendanceHandler) Delete(c *gin.Context) {
	caps, claims := capabilitiesFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	if err := h.attendance.Delete(c.Request.Context(), caps, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Stats godoc
// @Summary Attendance rate summary
// @Tags Attendance
// @Produce json
// @Param classId query string false "Filter by class"
// @Param studentId query string false "Filter by student"
// @Success 200 {object} response.Envelope
// @Router /attendance/stats [get]
func (h *AttendanceHandler) Stats(c *gin.Context) {
	caps, claims := capabilitiesFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	filter, err := attendanceFilterFromQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	stats, err := h.attendance.Stats(c.Request.Context(), caps, claims.UserID, filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats, nil)
}
