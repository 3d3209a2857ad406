package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/educ8/educ8-api/internal/models"
	"github.com/educ8/educ8-api/internal/service"
	appErrors "github.com/educ8/educ8-api/pkg/errors"
	"github.com/educ8/educ8-api/pkg/response"
)

// MessageHandler exposes direct messaging endpoints.
type MessageHandler struct {
	messages *service.MessageService
}

// NewMessageHandler constructs MessageHandler.
func NewMessageHandler(messages *service.MessageService) *MessageHandler {
	return &MessageHandler{messages: messages}
}

// List godoc
// @Summary List the caller's inbox or sent box
// @Tags Messages
// @Produce json
// @Param box query string false "inbox (default) or sent"
// @Success 200 {object} response.Envelope
// @Router /messages [get]
func (h *MessageHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	box := models.MessageBox(c.DefaultQuery("box", string(models.MessageBoxInbox)))
	messages, err := h.messages.ListBox(c.Request.Context(), claims.UserID, box)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, messages, nil)
}

// Send godoc
// @Summary Send a message
// @Tags Messages
// @Accept json
// @Produce json
// @Param payload body service.SendMessageRequest true "Message payload"
// @Success 201 {object} response.Envelope
// @Router /messages [post]
func (h *MessageHandler) Send(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	message, err := h.messages.Send(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, message)
}

// Read godoc
// @Summary Open a message
// @Description Marks the message read when the recipient opens it.
// @Tags Messages
// @Produce json
// @Param id path string true "Message ID"
// @Success 200 {object} response.Envelope
// @Router /messages/{id} [get]
func (h *MessageHandler) Read(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	message, err := h.messages.Read(c.Request.Context(), claims.UserID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, message, nil)
}

// Stats godoc
// @Summary Message counters for the caller
// @Tags Messages
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /messages/stats [get]
func (h *MessageHandler) Stats(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	stats, err := h.messages.Stats(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats, nil)
}
