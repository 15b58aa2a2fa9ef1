package account

import (
	"testing"

	"github.com/cassiomorais/gozon/internal/domain/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAccount_Valid(t *testing.T) {
	acct, err := NewAccount("u1", 150)
	require.NoError(t, err)
	assert.Equal(t, "u1", acct.UserID)
	assert.Equal(t, int64(150), acct.Balance)
	assert.Equal(t, 0, acct.Version)
	assert.False(t, acct.CreatedAt.IsZero())
}

func TestNewAccount_ZeroBalance(t *testing.T) {
	acct, err := NewAccount("u1", 0)
	require.NoError(t, err)
	assert.Equal(t, int64(0), acct.Balance)
}

func TestNewAccount_Invalid(t *testing.T) {
	_, err := NewAccount("u1", -1)
	assert.ErrorIs(t, err, errors.ErrValidationFailed)

	_, err = NewAccount("", 10)
	assert.ErrorIs(t, err, errors.ErrValidationFailed)
}

// --- Debit ---

func TestDebit_Success(t *testing.T) {
	acct, _ := NewAccount("u1", 150)

	err := acct.Debit(100)
	require.NoError(t, err)
	assert.Equal(t, int64(50), acct.Balance)
	assert.Equal(t, 1, acct.Version)
}

func TestDebit_ExactBalance(t *testing.T) {
	acct, _ := NewAccount("u1", 100)
	require.NoError(t, acct.Debit(100))
	assert.Equal(t, int64(0), acct.Balance)
}

func TestDebit_InsufficientFunds(t *testing.T) {
	acct, _ := NewAccount("u2", 50)
	err := acct.Debit(100)
	assert.ErrorIs(t, err, errors.ErrInsufficientFunds)
	assert.Equal(t, int64(50), acct.Balance) // balance unchanged
	assert.Equal(t, 0, acct.Version)
}

func TestDebit_NonPositiveAmount(t *testing.T) {
	acct, _ := NewAccount("u1", 100)
	assert.Error(t, acct.Debit(0))
	assert.Error(t, acct.Debit(-10))
	assert.Equal(t, int64(100), acct.Balance)
}

// --- Credit ---

func TestCredit_Success(t *testing.T) {
	acct, _ := NewAccount("u1", 100)

	require.NoError(t, acct.Credit(50))
	assert.Equal(t, int64(150), acct.Balance)
	assert.Equal(t, 1, acct.Version)
}

func TestCredit_ZeroAmount(t *testing.T) {
	acct, _ := NewAccount("u1", 100)
	assert.Error(t, acct.Credit(0))
}

func TestCanCover(t *testing.T) {
	acct, _ := NewAccount("u1", 100)
	assert.True(t, acct.CanCover(100))
	assert.True(t, acct.CanCover(1))
	assert.False(t, acct.CanCover(101))
}
