package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *DomainError
		expected string
	}{
		{
			name: "with wrapped error",
			err: &DomainError{
				Code:    "settlement_failed",
				Message: "order settlement failed",
				Err:     errors.New("connection reset"),
			},
			expected: "order settlement failed: connection reset",
		},
		{
			name: "without wrapped error",
			err: &DomainError{
				Code:    "invalid_state",
				Message: "order is already settled",
			},
			expected: "order is already settled",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestDomainError_Unwrap(t *testing.T) {
	originalErr := errors.New("original error")
	domainErr := NewDomainError("test", "test message", originalErr)

	assert.Equal(t, originalErr, domainErr.Unwrap())
	assert.ErrorIs(t, domainErr, originalErr)
}

func TestValidationError(t *testing.T) {
	err := NewValidationError("price", "must be positive")

	assert.Equal(t, "price", err.Field)
	assert.Equal(t, "validation failed for field price: must be positive", err.Error())
	assert.ErrorIs(t, err, ErrValidationFailed)
}

func TestMalformed(t *testing.T) {
	t.Run("with cause", func(t *testing.T) {
		err := Malformed("decode PaymentRequested", errors.New("unexpected end of JSON input"))
		assert.ErrorIs(t, err, ErrMalformedMessage)
		assert.Contains(t, err.Error(), "decode PaymentRequested")
		assert.Contains(t, err.Error(), "unexpected end of JSON input")
	})

	t.Run("without cause", func(t *testing.T) {
		err := Malformed("messageId is missing", nil)
		assert.ErrorIs(t, err, ErrMalformedMessage)
		assert.Equal(t, "malformed message: messageId is missing", err.Error())
	})
}

func TestErrorUnwrapping(t *testing.T) {
	wrappedErr := NewDomainError("store_error", "payment insert failed", ErrPaymentAlreadyExists)

	assert.True(t, errors.Is(wrappedErr, ErrPaymentAlreadyExists))
	assert.False(t, errors.Is(wrappedErr, ErrMalformedMessage))
}
