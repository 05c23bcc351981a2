package middleware

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type createProductPayload struct {
	ID         int64   `json:"id" validate:"required,gt=0"`
	Name       string  `json:"name" validate:"required"`
	Price      float64 `json:"price" validate:"gte=0"`
	CategoryID int64   `json:"category_id" validate:"required"`
}

func TestDecodeAndValidate(t *testing.T) {
	t.Run("valid payload passes", func(t *testing.T) {
		r := httptest.NewRequest("POST", "/products",
			strings.NewReader(`{"id":1,"name":"Phone","price":100,"category_id":1}`))

		var payload createProductPayload
		require.NoError(t, DecodeAndValidate(r, &payload))
		assert.Equal(t, "Phone", payload.Name)
	})

	t.Run("missing required field fails", func(t *testing.T) {
		r := httptest.NewRequest("POST", "/products",
			strings.NewReader(`{"id":1,"price":100,"category_id":1}`))

		var payload createProductPayload
		err := DecodeAndValidate(r, &payload)
		require.Error(t, err)

		fieldErrors := FormatValidationErrors(err)
		require.Len(t, fieldErrors, 1)
		assert.Equal(t, "Name", fieldErrors[0].Field)
	})

	t.Run("negative price fails", func(t *testing.T) {
		r := httptest.NewRequest("POST", "/products",
			strings.NewReader(`{"id":1,"name":"Phone","price":-5,"category_id":1}`))

		var payload createProductPayload
		err := DecodeAndValidate(r, &payload)
		require.Error(t, err)
		assert.NotEmpty(t, FormatValidationErrors(err))
	})

	t.Run("malformed json fails without field errors", func(t *testing.T) {
		r := httptest.NewRequest("POST", "/products", strings.NewReader(`{`))

		var payload createProductPayload
		err := DecodeAndValidate(r, &payload)
		require.Error(t, err)
		assert.Empty(t, FormatValidationErrors(err))
	})
}
