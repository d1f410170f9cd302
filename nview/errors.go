package nview

import (
	"net/http"

	"github.com/pkg/errors"
)

// ReturnCode associates an HTTP return code with a error.
// if err is nil, then nil is returned.
func ReturnCode(err error, code int) error {
	if err == nil {
		return nil
	}
	return returnCode{
		cause: err,
		code:  code,
	}
}

type returnCode struct {
	cause error
	code  int
}

func (err returnCode) Cause() error {
	return err.cause
}

func (err returnCode) Unwrap() error {
	return err.cause
}

func (err returnCode) Error() string {
	return err.cause.Error()
}

// NotFound annotates an error has giving 404 HTTP return code
func NotFound(err error) error {
	return ReturnCode(err, http.StatusNotFound)
}

// BadRequest annotates an error has giving 400 HTTP return code
func BadRequest(err error) error {
	return ReturnCode(err, http.StatusBadRequest)
}

// Unauthorized annotates an error has giving 401 HTTP return code
func Unauthorized(err error) error {
	return ReturnCode(err, http.StatusUnauthorized)
}

// Forbidden annotates an error has giving 403 HTTP return code
func Forbidden(err error) error {
	return ReturnCode(err, http.StatusForbidden)
}

// GetReturnCode returns the code of the outermost ReturnCode
// annotation of err, or 500.
func GetReturnCode(err error) int {
	var rc returnCode
	if errors.As(err, &rc) {
		return rc.code
	}
	return http.StatusInternalServerError
}
