package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/prepnest/prepnest/pkg/errors"
)

// HTTPError captures the metadata required to serialize an error response consistently.
type HTTPError struct {
	Status  int
	Code    string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *HTTPError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

// NewHTTPError is a helper to build an HTTPError instance.
func NewHTTPError(status int, code, message string, err error) *HTTPError {
	return &HTTPError{Status: status, Code: code, Message: message, Err: err}
}

// fromDomainError maps well known domain codes onto HTTP statuses. Unknown
// codes collapse into a 500 carrying fallbackCode.
func fromDomainError(err error, fallbackCode string) *HTTPError {
	code := apperrors.CodeOf(err)
	switch code {
	case "invalid_input":
		return NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err)
	case "not_found":
		return NewHTTPError(http.StatusNotFound, "not_found", errMessage(err), err)
	case "forbidden":
		return NewHTTPError(http.StatusForbidden, "forbidden", errMessage(err), err)
	case "already_accepted":
		return NewHTTPError(http.StatusConflict, "already_accepted", errMessage(err), err)
	case "email_exists":
		return NewHTTPError(http.StatusConflict, "email_exists", errMessage(err), err)
	case "invalid_credentials":
		return NewHTTPError(http.StatusUnauthorized, "invalid_credentials", errMessage(err), err)
	case "invalid_token":
		return NewHTTPError(http.StatusUnauthorized, "invalid_token", errMessage(err), err)
	default:
		return NewHTTPError(http.StatusInternalServerError, fallbackCode, errMessage(err), err)
	}
}

func asHTTPError(err error) *HTTPError {
	if err == nil {
		return nil
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}
	return &HTTPError{
		Status:  http.StatusInternalServerError,
		Code:    "internal_error",
		Message: "something went wrong",
		Err:     err,
	}
}

func abortWithError(c *gin.Context, err *HTTPError) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func errMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
