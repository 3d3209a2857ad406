package handler

import (
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"github.com/educ8/educ8-api/internal/service"
	appErrors "github.com/educ8/educ8-api/pkg/errors"
	"github.com/educ8/educ8-api/pkg/response"
)

// UploadHandler accepts multipart uploads and serves signed downloads.
type UploadHandler struct {
	uploads *service.UploadService
}

// NewUploadHandler constructs UploadHandler.
func NewUploadHandler(uploads *service.UploadService) *UploadHandler {
	return &UploadHandler{uploads: uploads}
}

// Upload godoc
// @Summary Upload a file
// @Description Stores the file and returns a signed download token.
// @Tags Uploads
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "File"
// @Param folder formData string false "Target folder"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 413 {object} response.Envelope
// @Router /uploads [post]
func (h *UploadHandler) Upload(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "file field required"))
		return
	}

	folder := c.DefaultPostForm("folder", "attachments")
	src, err := fileHeader.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read upload"))
		return
	}
	defer src.Close()

	uploaded, err := h.uploads.Store(
		"uploads",
		folder,
		fileHeader.Filename,
		fileHeader.Header.Get("Content-Type"),
		fileHeader.Size,
		src,
	)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, uploaded)
}

// Download godoc
// @Summary Download a file by signed token
// @Tags Uploads
// @Produce octet-stream
// @Param token query string true "Signed download token"
// @Success 200 {file} file
// @Failure 401 {object} response.Envelope
// @Router /uploads/download [get]
func (h *UploadHandler) Download(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "token query parameter required"))
		return
	}

	file, relPath, err := h.uploads.Open(token)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.Close()

	c.FileAttachment(file.Name(), filepath.Base(relPath))
}

// Delete godoc
// @Summary Delete an uploaded file
// @Tags Uploads
// @Produce json
// @Param path query string true "Stored file path"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /uploads [delete]
func (h *UploadHandler) Delete(c *gin.Context) {
	relPath := c.Query("path")
	if relPath == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "path query parameter required"))
		return
	}

	if err := h.uploads.Remove(relPath); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
