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

// FeeHandler exposes the fee ledger endpoints.
type FeeHandler struct {
	fees *service.FeeService
}

// NewFeeHandler constructs FeeHandler.
func NewFeeHandler(fees *service.FeeService) *FeeHandler {
	return &FeeHandler{fees: fees}
}

// List godoc
// @Summary List fees scoped to the current viewer
// @Tags Fees
// @Produce json
// @Param studentId query string false "Filter by student (admin only)"
// @Param status query string false "Filter by status"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /fees [get]
func (h *FeeHandler) List(c *gin.Context) {
	caps, claims := capabilitiesFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var filter models.FeeFilter
	filter.StudentID = c.Query("studentId")
	if status := c.Query("status"); status != "" {
		st := models.FeeStatus(status)
		filter.Status = &st
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}

	fees, total, err := h.fees.List(c.Request.Context(), caps, claims.UserID, filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, fees, &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total})
}

// Create godoc
// @Summary Create fee entry
// @Tags Fees
// @Accept json
// @Produce json
// @Param payload body service.CreateFeeRequest true "Fee payload"
// @Success 201 {object} response.Envelope
// @Router /fees [post]
func (h *FeeHandler) Create(c *gin.Context) {
	caps, claims := capabilitiesFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.CreateFeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	fee, err := h.fees.Create(c.Request.Context(), caps, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, fee)
}

// Update godoc
// @Summary Update fee entry
// @Tags Fees
// @Accept json
// @Produce json
// @Param id path string true "Fee ID"
// @Param payload body models.FeePatch true "Fee patch"
// @Success 200 {object} response.Envelope
// @Router /fees/{id} [put]
func (h *FeeHandler) Update(c *gin.Context) {
	caps, claims := capabilitiesFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var patch models.FeePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	fee, err := h.fees.Update(c.Request.Context(), caps, c.Param("id"), patch)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, fee, nil)
}

// RecordPayment godoc
// @Summary Record a payment against a fee
// @Tags Fees
// @Accept json
// @Produce json
// @Param id path string true "Fee ID"
// @Param payload body service.RecordPaymentRequest true "Payment payload"
// @Success 200 {object} response.Envelope
// @Router /fees/{id}/payments [post]
func (h *FeeHandler) RecordPayment(c *gin.Context) {
	caps, claims := capabilitiesFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	fee, err := h.fees.RecordPayment(c.Request.Context(), caps, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, fee, nil)
}

// Delete godoc
// @Summary Delete fee entry
// @Tags Fees
// @Produce json
// @Param id path string true "Fee ID"
// @Success 204
// @Router /fees/{id} [delete]
func (h *FeeHandler) Delete(c *gin.Context) {
	caps, claims := capabilitiesFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	if err := h.fees.Delete(c.Request.Context(), caps, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
