// Package handler adapts the application services to gin routes.
package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/tablekit/backoffice/internal/domain/shared"
	"github.com/tablekit/backoffice/internal/infrastructure/logger"
	"github.com/tablekit/backoffice/internal/interfaces/http/dto"
	"github.com/tablekit/backoffice/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

const genericServerError = "An unexpected error occurred"

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// Success sends a 200 response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// Created sends a 201 response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// Error sends an error response, deriving the status from the code
func (h *BaseHandler) Error(c *gin.Context, code, message string) {
	c.JSON(dto.GetHTTPStatus(code), dto.NewErrorResponse(code, message, middleware.GetRequestID(c)))
}

// HandleError maps a service error onto the response envelope. Server-side
// failures are logged with their cause and answered with a generic message.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)

	var domainErr *shared.DomainError
	if !errors.As(err, &domainErr) {
		h.logServerError(c, err)
		h.Error(c, dto.ErrCodeInternal, genericServerError)
		return
	}

	if dto.IsServerError(domainErr.Code) {
		h.logServerError(c, err)
		h.Error(c, domainErr.Code, genericServerError)
		return
	}
	h.Error(c, domainErr.Code, domainErr.Message)
}

func (h *BaseHandler) logServerError(c *gin.Context, err error) {
	logger.L(c.Request.Context()).Error("request failed",
		zap.String("route", c.FullPath()),
		zap.Error(err),
		zap.NamedError("cause", errors.Unwrap(err)),
	)
}

// bindJSON decodes the body into req. It writes the error response and
// returns false when the body is malformed or fails validation.
func (h *BaseHandler) bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		if details := middleware.ValidationDetails(err); details != nil {
			c.JSON(http.StatusBadRequest,
				dto.NewValidationErrorResponse("Request validation failed", middleware.GetRequestID(c), details))
			return false
		}
		h.Error(c, dto.ErrCodeInvalidJSON, "Malformed JSON body")
		return false
	}
	return true
}

// pathID parses the :id route parameter
func (h *BaseHandler) pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, dto.ErrCodeValidation, "Invalid id format")
		return uuid.Nil, false
	}
	return id, true
}

// actor returns the authenticated staff member
func (h *BaseHandler) actor(c *gin.Context) (shared.Actor, bool) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		h.Error(c, dto.ErrCodeUnauthorized, "Authentication required")
		return shared.Actor{}, false
	}
	return actor, true
}
