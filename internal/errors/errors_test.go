package errors

import (
	stderrors "errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_IsMatchesByCode(t *testing.T) {
	err := BookNotFollowedf("book %s is not followed", "book-1")

	assert.True(t, Is(err, ErrBookNotFollowed))
	assert.False(t, Is(err, ErrBookNotInReadList))
	assert.Equal(t, "book book-1 is not followed", err.Error())
}

func TestError_HTTPStatus(t *testing.T) {
	tests := []struct {
		code Code
		want int
	}{
		{CodeNotFound, http.StatusNotFound},
		{CodeBookNotFollowed, http.StatusConflict},
		{CodeBookNotInReadList, http.StatusConflict},
		{CodeBookAlreadyRead, http.StatusConflict},
		{CodeValidation, http.StatusBadRequest},
		{CodeRateLimited, http.StatusTooManyRequests},
		{CodePersistence, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.code.HTTPStatus())
		})
	}
}

func TestPersistence_WrapsCause(t *testing.T) {
	cause := stderrors.New("disk full")
	err := Persistence(cause, "save reader")

	assert.True(t, Is(err, ErrPersistence))
	assert.True(t, Is(err, cause))
	assert.Equal(t, "save reader: disk full", err.Error())
}

func TestWithDetails_KeepsCode(t *testing.T) {
	err := ErrValidation.WithDetails(map[string]string{"pages_read": "is required"})

	var domainErr *Error
	require.True(t, As(err, &domainErr))
	assert.Equal(t, CodeValidation, domainErr.Code)
	assert.Equal(t, map[string]string{"pages_read": "is required"}, domainErr.Details)
	assert.Nil(t, ErrValidation.Details)
}
