package httperr

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

type HTTPError struct {
	Code    string `json:"error_code"`
	Message string `json:"message"`
}

func Write(c *gin.Context, status int, code, message string) {
	c.JSON(status, HTTPError{
		Code:    code,
		Message: message,
	})
}

func BadRequest(c *gin.Context, code, message string) {
	Write(c, http.StatusBadRequest, code, message)
}

func NotFound(c *gin.Context, code, message string) {
	Write(c, http.StatusNotFound, code, message)
}

func Forbidden(c *gin.Context, code, message string) {
	Write(c, http.StatusForbidden, code, message)
}

func Conflict(c *gin.Context, code, message string) {
	Write(c, http.StatusConflict, code, message)
}

func Internal(c *gin.Context, code, message string) {
	Write(c, http.StatusInternalServerError, code, message)
}

func Unauthorized(c *gin.Context, code, message string) {
	Write(c, http.StatusUnauthorized, code, message)
}

// WriteBusiness maps a business error onto its HTTP status. A
// reconciliation failure is surfaced as 502 so operators can tell
// "payment failed" apart from "entitlement not yet applied".
func WriteBusiness(c *gin.Context, err error) {
	var be BusinessError
	if !errors.As(err, &be) {
		Internal(c, "internal_error", "Unexpected error.")
		return
	}

	switch be.Kind {
	case KindNotFound:
		NotFound(c, be.Code, "Resource not found.")
	case KindInvalidTransition:
		Conflict(c, be.Code, "State transition not permitted.")
	case KindForbidden:
		Forbidden(c, be.Code, "Not allowed for this account.")
	case KindValidation:
		BadRequest(c, be.Code, "Invalid input.")
	case KindReconciliation:
		Write(c, http.StatusBadGateway, be.Code, "Payment accepted but entitlement not yet applied; retry completion.")
	default:
		Internal(c, be.Code, "Unexpected error.")
	}
}
