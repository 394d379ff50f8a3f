// Package handler implements the endpoints of the mock ERP API.
package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/erp/client/internal/domain/shared"
	"github.com/erp/client/internal/interfaces/http/dto"
	"github.com/erp/client/internal/interfaces/http/middleware"
)

// BaseHandler provides the response helpers shared by every handler
type BaseHandler struct {
	validate *validator.Validate
}

// NewBaseHandler creates a BaseHandler with a JSON-aware validator
func NewBaseHandler() BaseHandler {
	return BaseHandler{validate: middleware.NewValidator()}
}

// Success sends a 200 success envelope
func (h *BaseHandler) Success(c *gin.Context, message string, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(message, data))
}

// Reject sends a 200 envelope with success=false. The ERP API reports
// business rule failures this way rather than with an HTTP error status.
func (h *BaseHandler) Reject(c *gin.Context, code, message string) {
	c.JSON(http.StatusOK, dto.NewErrorResponse(code, message))
}

// BadRequest sends a 400 response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.ErrCodeBadRequest, message))
}

// NotFound sends a 404 response
func (h *BaseHandler) NotFound(c *gin.Context, message string) {
	c.JSON(http.StatusNotFound, dto.NewErrorResponse(dto.ErrCodeNotFound, message))
}

// Unauthorized sends a 401 response
func (h *BaseHandler) Unauthorized(c *gin.Context, message string) {
	c.JSON(http.StatusUnauthorized, dto.NewErrorResponse(dto.ErrCodeUnauthorized, message))
}

// bind decodes and validates the JSON body into in. It writes the response
// and returns false when the body is unusable.
func (h *BaseHandler) bind(c *gin.Context, in any) bool {
	if err := c.ShouldBindJSON(in); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return false
	}
	if err := h.validate.Struct(in); err != nil {
		details := middleware.ValidationDetails(err)
		c.JSON(http.StatusOK, dto.NewValidationErrorResponse(middleware.ValidationSummary(details), details))
		return false
	}
	return true
}

// pathID parses the :id parameter, answering 400 when it is not a number
func (h *BaseHandler) pathID(c *gin.Context) (shared.ID, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		h.BadRequest(c, "Invalid ID")
		return 0, false
	}
	return id, true
}
