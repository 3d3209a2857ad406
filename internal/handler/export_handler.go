package handler

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/educ8/educ8-api/internal/service"
	appErrors "github.com/educ8/educ8-api/pkg/errors"
	"github.com/educ8/educ8-api/pkg/response"
)

// ExportHandler streams generated CSV and PDF documents.
type ExportHandler struct {
	exports *service.ExportService
}

// NewExportHandler constructs ExportHandler.
func NewExportHandler(exports *service.ExportService) *ExportHandler {
	return &ExportHandler{exports: exports}
}

func writeExport(c *gin.Context, result *service.ExportResult) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	c.Data(200, result.ContentType, result.Payload)
}

// GradebookCSV godoc
// @Summary Download the class gradebook as CSV
// @Tags Exports
// @Produce text/csv
// @Param classId path string true "Class ID"
// @Success 200 {file} file
// @Router /exports/gradebook/{classId} [get]
func (h *ExportHandler) GradebookCSV(c *gin.Context) {
	caps, claims := capabilitiesFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	result, err := h.exports.GradebookCSV(c.Request.Context(), caps, c.Param("classId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	writeExport(c, result)
}

// ReportCardPDF godoc
// @Summary Download a student report card as PDF
// @Tags Exports
// @Produce application/pdf
// @Param studentId path string true "Student ID"
// @Success 200 {file} file
// @Router /exports/report-card/{studentId} [get]
func (h *ExportHandler) ReportCardPDF(c *gin.Context) {
	caps, claims := capabilitiesFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	result, err := h.exports.ReportCardPDF(c.Request.Context(), caps, claims.UserID, c.Param("studentId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	writeExport(c, result)
}
