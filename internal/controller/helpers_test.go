package controller

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	domainErrors "github.com/cassiomorais/gozon/internal/domain/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"validation", domainErrors.NewValidationError("price", "must be positive"), http.StatusBadRequest, "validation_error"},
		{"order not found", domainErrors.ErrOrderNotFound, http.StatusNotFound, "not_found"},
		{"wrapped account not found", fmt.Errorf("lock account: %w", domainErrors.ErrAccountNotFound), http.StatusNotFound, "not_found"},
		{"account exists", domainErrors.ErrAccountAlreadyExists, http.StatusConflict, "already_exists"},
		{"optimistic lock", domainErrors.ErrOptimisticLockFailed, http.StatusConflict, "conflict"},
		{"domain error", domainErrors.NewDomainError("order_closed", "order is closed", nil), http.StatusUnprocessableEntity, "order_closed"},
		{"unknown", errors.New("connection reset"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeError(rec, tt.err)
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			assert.Contains(t, rec.Body.String(), `"code":"`+tt.code+`"`)
		})
	}
}

func TestWriteError_HidesInternalDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, errors.New("pq: password authentication failed"))
	assert.NotContains(t, rec.Body.String(), "password")
}

func TestDecodeAndValidate(t *testing.T) {
	var req TopUpRequest
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"userId":"u1","amount":-1}`))
	err := decodeAndValidate(r, &req)
	require.Error(t, err)
	assert.ErrorIs(t, err, domainErrors.ErrValidationFailed)
	assert.Contains(t, err.Error(), "Amount")

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"userId":"u1","amount":7}`))
	require.NoError(t, decodeAndValidate(r, &req))
	assert.Equal(t, TopUpRequest{UserID: "u1", Amount: 7}, req)
}
