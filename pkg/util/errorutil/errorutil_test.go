package errorutil

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
)

func TestToDomainError(t *testing.T) {
	assert.Nil(t, ToDomainError(nil))

	notFound := ToDomainError(fmt.Errorf("load: %w", pgx.ErrNoRows))
	assert.Equal(t, CodeNotFound, notFound.Code)
	assert.Equal(t, http.StatusNotFound, notFound.HTTPStatus)

	internal := ToDomainError(errors.New("boom"))
	assert.Equal(t, CodeInternal, internal.Code)
	assert.Equal(t, "internal server error", internal.Message)

	wrapped := fmt.Errorf("ctx: %w", NewInvalidState("cannot approve", nil))
	assert.Equal(t, CodeInvalidState, ToDomainError(wrapped).Code)
}

func TestStatusCodes(t *testing.T) {
	cases := []struct {
		err    error
		code   string
		status int
	}{
		{NewValidationError("bad", nil), CodeValidation, http.StatusBadRequest},
		{NewNotFound("listing", nil), CodeNotFound, http.StatusNotFound},
		{NewInvalidOperation("no", nil), CodeInvalidOperation, http.StatusUnprocessableEntity},
		{NewInvalidState("no", nil), CodeInvalidState, http.StatusConflict},
		{NewUnauthorized("no"), CodeUnauthorized, http.StatusForbidden},
		{NewForbidden("no", nil), CodeForbidden, http.StatusForbidden},
		{NewUnauthenticated("no"), CodeUnauthenticated, http.StatusUnauthorized},
		{NewRateLimited("slow down"), CodeRateLimited, http.StatusTooManyRequests},
	}
	for _, tc := range cases {
		de := ToDomainError(tc.err)
		assert.Equal(t, tc.code, de.Code)
		assert.Equal(t, tc.status, de.HTTPStatus, tc.code)
		assert.True(t, HasCode(tc.err, tc.code))
	}
}

func TestNewNotFound_Message(t *testing.T) {
	de := ToDomainError(NewNotFound("transaction", map[string]any{"transaction_id": "t1"}))
	assert.Equal(t, "transaction not found", de.Message)
	assert.Equal(t, "t1", de.Details["transaction_id"])
}
