package response

import (
	"fmt"
	"net/http"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	CodeBadRequest             = "bad_request"
	CodeUnauthorized           = "unauthorized"
	CodePasswordChangeRequired = "password_change_required"
	CodeForbidden              = "forbidden"
	CodeNotFound               = "not_found"
	CodeConflict               = "conflict"
	CodeInternal               = "internal"
)

// Err is the body of every error response. Code is stable and meant for
// clients to branch on; Message is for humans.
type Err struct {
	HTTPStatusCode int    `json:"-"`
	Code           string `json:"code"`
	Message        string `json:"message"`

	err error
}

func (e *Err) Error() string {
	return e.Message
}

func (e *Err) Unwrap() error {
	return e.err
}

func RenderErr(ctx *gin.Context, e *Err) {
	if e.HTTPStatusCode >= http.StatusInternalServerError {
		zap.L().Error("request failed",
			zap.String("request_id", requestid.Get(ctx)),
			zap.String("path", ctx.FullPath()),
			zap.Error(e.err),
		)
	}

	ctx.AbortWithStatusJSON(e.HTTPStatusCode, e)
}

func ErrBadRequest(err error) *Err {
	return &Err{
		HTTPStatusCode: http.StatusBadRequest,
		Code:           CodeBadRequest,
		Message:        err.Error(),
		err:            err,
	}
}

func ErrUnauthorized(err error) *Err {
	return &Err{
		HTTPStatusCode: http.StatusUnauthorized,
		Code:           CodeUnauthorized,
		Message:        err.Error(),
		err:            err,
	}
}

func ErrPasswordChangeRequired() *Err {
	return &Err{
		HTTPStatusCode: http.StatusForbidden,
		Code:           CodePasswordChangeRequired,
		Message:        "password change required before accessing this resource",
	}
}

func ErrForbidden(err error) *Err {
	return &Err{
		HTTPStatusCode: http.StatusForbidden,
		Code:           CodeForbidden,
		Message:        err.Error(),
		err:            err,
	}
}

func ErrNotFound(resource, field string, value interface{}) *Err {
	return &Err{
		HTTPStatusCode: http.StatusNotFound,
		Code:           CodeNotFound,
		Message:        fmt.Sprintf("%s with %s %v not found", resource, field, value),
	}
}

func ErrConflict(err error) *Err {
	return &Err{
		HTTPStatusCode: http.StatusConflict,
		Code:           CodeConflict,
		Message:        err.Error(),
		err:            err,
	}
}

// ErrInternalServerError hides err from the client. It is logged by RenderErr.
func ErrInternalServerError(err error) *Err {
	return &Err{
		HTTPStatusCode: http.StatusInternalServerError,
		Code:           CodeInternal,
		Message:        "internal server error",
		err:            err,
	}
}
