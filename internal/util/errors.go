package util

import (
	"net/http"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// HTTPError carries a client facing message and status out of a transaction
// or helper so the handler can answer with it.
type HTTPError struct {
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	return e.Message
}

func NewHTTPError(status int, message string) *HTTPError {
	return &HTTPError{Status: status, Message: message}
}

func BadRequest(message string) *HTTPError   { return NewHTTPError(http.StatusBadRequest, message) }
func Forbidden(message string) *HTTPError    { return NewHTTPError(http.StatusForbidden, message) }
func NotFound(message string) *HTTPError     { return NewHTTPError(http.StatusNotFound, message) }
func Conflict(message string) *HTTPError     { return NewHTTPError(http.StatusConflict, message) }
func Unauthorized(message string) *HTTPError { return NewHTTPError(http.StatusUnauthorized, message) }

// AsHTTPError unwraps err looking for an *HTTPError.
func AsHTTPError(err error) (*HTTPError, bool) {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr, true
	}
	return nil, false
}

const mysqlDuplicateEntry = 1062

// IsDuplicateKey reports whether err is a unique constraint violation.
func IsDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == mysqlDuplicateEntry
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "Duplicate entry")
}

func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
