package account

import (
	"context"

	"github.com/cassiomorais/gozon/internal/domain/account"
	"github.com/cassiomorais/gozon/internal/domain/errors"
)

// GetBalanceUseCase reads the balance of a user's account.
type GetBalanceUseCase struct {
	accountRepo account.Repository
}

func NewGetBalanceUseCase(accountRepo account.Repository) *GetBalanceUseCase {
	return &GetBalanceUseCase{accountRepo: accountRepo}
}

// Execute returns the balance in minor units.
func (uc *GetBalanceUseCase) Execute(ctx context.Context, userID string) (int64, error) {
	if userID == "" {
		return 0, errors.NewValidationError("user_id", "cannot be empty")
	}
	acct, err := uc.accountRepo.GetByUserID(ctx, userID)
	if err != nil {
		return 0, err
	}
	return acct.Balance, nil
}
