package account

import (
	"context"

	"github.com/cassiomorais/gozon/internal/domain/account"
)

// CreateAccountRequest holds the input for opening an account.
type CreateAccountRequest struct {
	UserID string
}

// CreateAccountUseCase opens an empty account for a user.
type CreateAccountUseCase struct {
	accountRepo account.Repository
}

func NewCreateAccountUseCase(accountRepo account.Repository) *CreateAccountUseCase {
	return &CreateAccountUseCase{accountRepo: accountRepo}
}

// Execute creates the account with a zero balance. A user that already has
// one gets ErrAccountAlreadyExists.
func (uc *CreateAccountUseCase) Execute(ctx context.Context, req CreateAccountRequest) (*account.Account, error) {
	acct, err := account.NewAccount(req.UserID, 0)
	if err != nil {
		return nil, err
	}
	if err := uc.accountRepo.Create(ctx, acct); err != nil {
		return nil, err
	}
	return acct, nil
}
