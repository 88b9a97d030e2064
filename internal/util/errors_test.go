package util

import (
	"net/http"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestAsHTTPError(t *testing.T) {
	wrapped := errors.Wrap(Conflict("busy"), "in transaction")

	httpErr, ok := AsHTTPError(wrapped)
	assert.True(t, ok)
	assert.Equal(t, http.StatusConflict, httpErr.Status)
	assert.Equal(t, "busy", httpErr.Message)

	_, ok = AsHTTPError(errors.New("plain"))
	assert.False(t, ok)
}

func TestIsDuplicateKey(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"mysql duplicate", &mysql.MySQLError{Number: 1062, Message: "Duplicate entry"}, true},
		{"mysql other", &mysql.MySQLError{Number: 1048, Message: "cannot be null"}, false},
		{"gorm translated", errors.Wrap(gorm.ErrDuplicatedKey, "create"), true},
		{"sqlite text", errors.New("UNIQUE constraint failed: users.phone_number"), true},
		{"unrelated", errors.New("connection refused"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsDuplicateKey(tt.err))
		})
	}
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, IsNotFound(errors.Wrap(gorm.ErrRecordNotFound, "take user")))
	assert.False(t, IsNotFound(errors.New("nope")))
}
