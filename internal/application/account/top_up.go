package account

import (
	"context"
	"fmt"

	"github.com/cassiomorais/gozon/internal/domain/account"
)

// TransactionManager defines the interface for transaction management.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type TopUpRequest struct {
	UserID string
	Amount int64
}

// TopUpUseCase credits an account under the same row lock the payment saga
// takes, so a top-up never interleaves with a debit.
type TopUpUseCase struct {
	accountRepo account.Repository
	txManager   TransactionManager
}

func NewTopUpUseCase(accountRepo account.Repository, txManager TransactionManager) *TopUpUseCase {
	return &TopUpUseCase{accountRepo: accountRepo, txManager: txManager}
}

// Execute returns the account after the credit.
func (uc *TopUpUseCase) Execute(ctx context.Context, req TopUpRequest) (*account.Account, error) {
	var acct *account.Account
	err := uc.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		a, err := uc.accountRepo.LockByUserID(txCtx, req.UserID)
		if err != nil {
			return err
		}
		if err := a.Credit(req.Amount); err != nil {
			return err
		}
		if err := uc.accountRepo.Update(txCtx, a); err != nil {
			return fmt.Errorf("credit account: %w", err)
		}
		acct = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	return acct, nil
}
