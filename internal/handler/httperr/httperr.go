package httperr

import (
	"net/http"

	"booking-hold-service/internal/engine"

	"github.com/gin-gonic/gin"
)

type Body struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

type Response struct {
	Status int  `json:"-"`
	Error  Body `json:"error"`
}

// Abort writes the envelope and records the original error on the context for
// the logging middleware.
func Abort(c *gin.Context, status int, code, message string, details map[string]any) {
	resp := Response{Status: status, Error: Body{Code: code, Message: message, Details: details}}
	_ = c.Error(gin.Error{
		Err:  engine.NewError(code, message, status, details),
		Type: gin.ErrorTypePublic,
		Meta: resp,
	})
	c.AbortWithStatusJSON(status, resp)
}

// AbortWithEngineError maps a domain error to its HTTP shape. Anything that is
// not an engine.Error is a programming fault and reported as a 500 without
// leaking its message.
func AbortWithEngineError(c *gin.Context, err error) {
	if domainErr, ok := engine.AsError(err); ok {
		Abort(c, domainErr.Status, domainErr.Code, domainErr.Message, domainErr.Details)
		return
	}
	_ = c.Error(gin.Error{Err: err, Type: gin.ErrorTypePrivate})
	c.AbortWithStatusJSON(http.StatusInternalServerError, Response{
		Status: http.StatusInternalServerError,
		Error:  Body{Code: "INTERNAL", Message: "internal server error"},
	})
}
