package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestNew_StatusMapping(t *testing.T) {
	cases := map[ErrorCode]int{
		ErrCodeNotFound:     http.StatusNotFound,
		ErrCodeUnauthorized: http.StatusUnauthorized,
		ErrCodeForbidden:    http.StatusForbidden,
		ErrCodeValidation:   http.StatusBadRequest,
		ErrCodeConflict:     http.StatusBadRequest,
		ErrCodeInternal:     http.StatusInternalServerError,
	}

	for code, status := range cases {
		assert.Equal(t, status, New(code, "x").HTTPStatus, string(code))
	}
}

func TestIsHelpers_WorkThroughWrapping(t *testing.T) {
	err := fmt.Errorf("service: %w", ErrOwnProduct)

	assert.True(t, IsConflict(err))
	assert.False(t, IsNotFound(err))
	assert.True(t, IsNotFound(ErrProductNotFound))
	assert.True(t, IsUnauthorized(ErrAccountDisabled))
}

func TestValidation_CarriesFields(t *testing.T) {
	err := Validation([]FieldError{{Field: "email", Message: "обязательное поле"}})

	assert.True(t, IsValidation(err))
	assert.Equal(t, http.StatusBadRequest, err.HTTPStatus)
	assert.Len(t, err.Fields, 1)
}

func TestFromStore_TranslatesConstraintViolations(t *testing.T) {
	unique := fmt.Errorf("insert: %w", &pq.Error{Code: "23505"})
	fk := &pq.Error{Code: "23503"}
	check := &pq.Error{Code: "23514"}

	assert.True(t, IsConflict(FromStore(unique)))
	assert.True(t, IsConflict(FromStore(fk)))
	assert.True(t, IsConflict(FromStore(check)))

	var pqErr *pq.Error
	assert.True(t, errors.As(FromStore(unique), &pqErr))
}

func TestFromStore_PassesOtherErrorsThrough(t *testing.T) {
	plain := errors.New("boom")

	assert.Nil(t, FromStore(nil))
	assert.Same(t, plain, FromStore(plain))
	assert.Equal(t, ErrForbidden, FromStore(ErrForbidden))

	other := &pq.Error{Code: "42601"}
	assert.Equal(t, error(other), FromStore(other))
}
