// Package errors provides coded errors shared by the thermogrid CLI and
// HTTP API.
//
// Every error that crosses a package boundary carries a [Code]. The CLI
// prints [UserMessage]; the server renders {code, message} with the status
// from [Code.Status]. Codes group by prefix: INVALID_* for rejected input,
// *_NOT_FOUND for missing resources, and INTERNAL_ERROR for everything the
// caller cannot fix.
//
//	err := errors.New(errors.ErrCodeInvalidTable, "table %q has no breakpoints", name)
//	if errors.Is(err, errors.ErrCodeInvalidTable) {
//	    ...
//	}
//
//	err = errors.Wrap(errors.ErrCodeInvalidGeoJSON, err, "read %s", path)
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code is a machine-readable error category.
type Code string

const (
	ErrCodeInvalidInput    Code = "INVALID_INPUT"
	ErrCodeInvalidTable    Code = "INVALID_TABLE"
	ErrCodeInvalidColor    Code = "INVALID_COLOR"
	ErrCodeInvalidLayer    Code = "INVALID_LAYER"
	ErrCodeInvalidConfig   Code = "INVALID_CONFIG"
	ErrCodeInvalidGeoJSON  Code = "INVALID_GEOJSON"
	ErrCodeInvalidRaster   Code = "INVALID_RASTER"
	ErrCodeInvalidViewport Code = "INVALID_VIEWPORT"
	ErrCodeInvalidPath     Code = "INVALID_PATH"

	ErrCodeNotFound        Code = "NOT_FOUND"
	ErrCodeLayerNotFound   Code = "LAYER_NOT_FOUND"
	ErrCodeTableNotFound   Code = "TABLE_NOT_FOUND"
	ErrCodeFileNotFound    Code = "FILE_NOT_FOUND"
	ErrCodeSessionNotFound Code = "SESSION_NOT_FOUND"
	ErrCodeSessionExpired  Code = "SESSION_EXPIRED"

	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// NotFound reports whether c names a missing resource.
func (c Code) NotFound() bool {
	switch c {
	case ErrCodeNotFound, ErrCodeLayerNotFound, ErrCodeTableNotFound,
		ErrCodeFileNotFound, ErrCodeSessionNotFound:
		return true
	}
	return false
}

// Status maps c to an HTTP status. Unknown and INVALID_* codes are 400.
func (c Code) Status() int {
	switch {
	case c == ErrCodeSessionExpired:
		return http.StatusGone
	case c == ErrCodeUnsupported:
		return http.StatusNotImplemented
	case c == ErrCodeInternal:
		return http.StatusInternalServerError
	case c.NotFound():
		return http.StatusNotFound
	}
	return http.StatusBadRequest
}

// Error is a coded error with an optional cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause == nil {
		return string(e.Code) + ": " + e.Message
	}
	return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
}

func (e *Error) Unwrap() error { return e.Cause }

// New returns an Error with a formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap is New with a cause kept for errors.Is and errors.As.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	e := New(code, format, args...)
	e.Cause = cause
	return e
}

// Is reports whether the outermost *Error in err's chain has code.
func Is(err error, code Code) bool {
	return err != nil && GetCode(err) == code
}

// GetCode returns the code of the outermost *Error in err's chain, or "".
func GetCode(err error) Code {
	if e, ok := asError(err); ok {
		return e.Code
	}
	return ""
}

// UserMessage returns the message without code prefix or cause. Errors
// without a code are returned as-is.
func UserMessage(err error) string {
	if e, ok := asError(err); ok {
		return e.Message
	}
	return err.Error()
}

// IsNotFound reports whether err carries any *_NOT_FOUND code.
func IsNotFound(err error) bool {
	return GetCode(err).NotFound()
}

func asError(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}
