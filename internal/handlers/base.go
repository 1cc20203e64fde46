package handlers

import (
	"errors"
	"net/http"

	"agora/internal/middleware"
	"agora/internal/services"
	"agora/internal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Code    services.Kind `json:"code"`
	Message string        `json:"message"`
	Field   string        `json:"field,omitempty"`
	ID      uint          `json:"id,omitempty"`
}

var statusByKind = map[services.Kind]int{
	services.KindNotFound:           http.StatusNotFound,
	services.KindInvalidTarget:      http.StatusBadRequest,
	services.KindInvalidParent:      http.StatusBadRequest,
	services.KindInvalidInput:       http.StatusBadRequest,
	services.KindConflict:           http.StatusConflict,
	services.KindUnauthenticated:    http.StatusUnauthorized,
	services.KindInvalidCredentials: http.StatusUnauthorized,
	services.KindStorage:            http.StatusInternalServerError,
}

func respondError(c *gin.Context, err error) {
	var svcErr *services.Error
	if !errors.As(err, &svcErr) {
		svcErr = &services.Error{Kind: services.KindStorage, Err: err}
	}

	status, ok := statusByKind[svcErr.Kind]
	if !ok {
		status = http.StatusInternalServerError
	}

	resp := ErrorResponse{
		Code:    svcErr.Kind,
		Message: svcErr.Message,
		Field:   svcErr.Field,
		ID:      svcErr.ID,
	}
	if status >= http.StatusInternalServerError {
		zap.L().Error("request failed",
			zap.String("request_id", c.GetString(middleware.RequestIDKey)),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		resp.Message = "internal error"
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, resp)
}

// bindJSON binds the request body, answering 400 on malformed input.
func bindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{
			Code:    services.KindInvalidInput,
			Message: err.Error(),
		})
		return false
	}
	return true
}

// pathID reads a positive id path parameter, answering 404 otherwise.
func pathID(c *gin.Context, name, field string) (uint, bool) {
	id, ok := utils.ParseID(c.Param(name))
	if !ok {
		c.AbortWithStatusJSON(http.StatusNotFound, ErrorResponse{
			Code:    services.KindNotFound,
			Message: field + " does not exist",
			Field:   field,
		})
		return 0, false
	}
	return id, true
}
