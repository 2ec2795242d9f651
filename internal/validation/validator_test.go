package validation_test

import (
	"testing"

	domainerrors "github.com/listenupapp/pagetrail-server/internal/errors"
	"github.com/listenupapp/pagetrail-server/internal/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type progressRequest struct {
	BookID     string `json:"book_id" validate:"required"`
	PagesRead  int    `json:"pages_read" validate:"gte=0,ltefield=TotalPages"`
	TotalPages int    `json:"total_pages" validate:"gt=0"`
}

type readerRequest struct {
	DisplayName string `json:"display_name,omitempty" validate:"required,max=10"`
}

func TestValidator_ValidateSuccess(t *testing.T) {
	v := validation.New()

	err := v.Validate(progressRequest{BookID: "book-1", PagesRead: 120, TotalPages: 300})
	assert.NoError(t, err)
}

func TestValidator_ValidateErrors(t *testing.T) {
	v := validation.New()

	tests := []struct {
		name      string
		req       any
		wantField string
		wantMsg   string
	}{
		{
			name:      "missing required field",
			req:       progressRequest{PagesRead: 1, TotalPages: 10},
			wantField: "book_id",
			wantMsg:   "is required",
		},
		{
			name:      "negative pages",
			req:       progressRequest{BookID: "b", PagesRead: -1, TotalPages: 10},
			wantField: "pages_read",
			wantMsg:   "must be greater than or equal to 0",
		},
		{
			name:      "pages beyond total",
			req:       progressRequest{BookID: "b", PagesRead: 11, TotalPages: 10},
			wantField: "pages_read",
			wantMsg:   "must not exceed TotalPages",
		},
		{
			name:      "zero total",
			req:       progressRequest{BookID: "b", TotalPages: 0},
			wantField: "total_pages",
			wantMsg:   "must be greater than 0",
		},
		{
			name:      "json tag options stripped",
			req:       readerRequest{DisplayName: "a very long name"},
			wantField: "display_name",
			wantMsg:   "must not exceed 10 characters",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.req)
			require.Error(t, err)
			assert.ErrorIs(t, err, domainerrors.ErrValidation)

			var domainErr *domainerrors.Error
			require.ErrorAs(t, err, &domainErr)
			assert.Equal(t, 400, domainErr.HTTPStatus())

			details, ok := domainErr.Details.(map[string]string)
			require.True(t, ok)
			assert.Equal(t, tt.wantMsg, details[tt.wantField])
		})
	}
}
