package controller

import (
	"net/http"

	accountApp "github.com/cassiomorais/gozon/internal/application/account"
)

type AccountController struct {
	createAccount *accountApp.CreateAccountUseCase
	topUp         *accountApp.TopUpUseCase
	getBalance    *accountApp.GetBalanceUseCase
}

func NewAccountController(create *accountApp.CreateAccountUseCase, topUp *accountApp.TopUpUseCase, balance *accountApp.GetBalanceUseCase) *AccountController {
	return &AccountController{createAccount: create, topUp: topUp, getBalance: balance}
}

func (h *AccountController) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateAccountRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, err)
		return
	}

	acct, err := h.createAccount.Execute(r.Context(), accountApp.CreateAccountRequest{UserID: req.UserID})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, AccountResponse{UserID: acct.UserID})
}

func (h *AccountController) TopUp(w http.ResponseWriter, r *http.Request) {
	var req TopUpRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, err)
		return
	}

	acct, err := h.topUp.Execute(r.Context(), accountApp.TopUpRequest{UserID: req.UserID, Amount: req.Amount})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, BalanceResponse{UserID: acct.UserID, Balance: acct.Balance})
}

func (h *AccountController) Balance(w http.ResponseWriter, r *http.Request) {
	userID, err := requireQuery(r, "userId")
	if err != nil {
		writeError(w, err)
		return
	}

	balance, err := h.getBalance.Execute(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, BalanceResponse{UserID: userID, Balance: balance})
}
