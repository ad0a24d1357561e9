package utils

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

type APIResponse struct {
	Status  string      `json:"status"`
	Code    int         `json:"code"`
	Message string      `json:"message,omitempty"`
	TraceID string      `json:"trace_id,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func traceID(c *gin.Context) string {
	if v, ok := c.Get("trace_id"); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func RespondSuccess(c *gin.Context, data interface{}, message string) {
	c.JSON(http.StatusOK, APIResponse{
		Status:  "success",
		Code:    http.StatusOK,
		Message: message,
		TraceID: traceID(c),
		Data:    data,
	})
}

func RespondError(c *gin.Context, code int, message string) {
	c.JSON(code, APIResponse{
		Status:  "error",
		Code:    code,
		Message: message,
		TraceID: traceID(c),
	})
}

// HandleServiceError maps the service error taxonomy onto HTTP codes.
// Unknown errors are logged with the trace id and surfaced as opaque 500s.
func HandleServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrValidation):
		RespondError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrInvalidPage):
		RespondError(c, http.StatusBadRequest, "Page must be greater than 0")
	case errors.Is(err, ErrNotFound):
		RespondError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrConcurrency):
		RespondError(c, http.StatusConflict, err.Error())
	case errors.Is(err, ErrGeneration):
		log.Printf("generation error [%s]: %v", traceID(c), err)
		RespondError(c, http.StatusBadGateway, "Itinerary generation failed, please retry")
	case errors.Is(err, ErrInvariant):
		log.Printf("invariant error [%s]: %v", traceID(c), err)
		RespondError(c, http.StatusInternalServerError, "Generated itinerary was discarded, please retry")
	case errors.Is(err, ErrTransient):
		log.Printf("transient upstream error [%s]: %v", traceID(c), err)
		RespondError(c, http.StatusServiceUnavailable, "Upstream service unavailable, please retry")
	case errors.Is(err, ErrDatabaseError):
		log.Printf("database error [%s]: %v", traceID(c), err)
		RespondError(c, http.StatusInternalServerError, "Internal server error")
	default:
		log.Printf("unknown error [%s]: %v", traceID(c), err)
		RespondError(c, http.StatusInternalServerError, "Internal server error")
	}
}
