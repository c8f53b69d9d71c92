// Package wallet exposes seller balances: viewing, withdrawing to a bank
// account and listing the transaction history.
package wallet

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/gatepass-ng/gatepass/internal/bank"
	"github.com/gatepass-ng/gatepass/internal/domain"
	"github.com/gatepass-ng/gatepass/internal/payment"
	"github.com/gatepass-ng/gatepass/internal/repository"
)

type WalletStore interface {
	Balance(ctx context.Context, userID string) (int64, error)
	Credit(ctx context.Context, userID string, amount int64) error
	Debit(ctx context.Context, userID string, amount int64) error
	InsertTransaction(ctx context.Context, tx *domain.Transaction) error
	ListTransactions(ctx context.Context, userID string) ([]domain.Transaction, error)
	SetTransactionStatus(ctx context.Context, reference string, status domain.TransactionStatus) error
}

type PayoutValidator interface {
	ValidatePayout(ctx context.Context, bankCode, accountNumber string) error
}

type Transferer interface {
	Transfer(ctx context.Context, req payment.TransferRequest) error
}

type Service struct {
	store    WalletStore
	payout   PayoutValidator
	transfer Transferer
}

func New(store WalletStore, payout PayoutValidator, transfer Transferer) *Service {
	return &Service{store: store, payout: payout, transfer: transfer}
}

func (s *Service) Balance(ctx context.Context, actor domain.Actor) (int64, error) {
	const op = "service.wallet.Balance"

	b, err := s.store.Balance(ctx, actor.UserID)
	if err != nil {
		return 0, fmt.Errorf("%s:%w", op, err)
	}

	return b, nil
}

type WithdrawRequest struct {
	Amount        int64  `json:"amount"`
	BankCode      string `json:"bankCode"`
	AccountNumber string `json:"accountNumber"`
}

// Withdraw sends part of the actor's balance to their bank account. The
// debit happens first so the balance can never go negative; if the transfer
// then fails the amount is credited back and the transaction marked FAILED.
func (s *Service) Withdraw(ctx context.Context, actor domain.Actor, req WithdrawRequest) (*domain.Transaction, error) {
	const op = "service.wallet.Withdraw"

	if req.Amount <= 0 {
		return nil, fmt.Errorf("%s:%w", op, ErrInvalidAmount)
	}

	if err := s.payout.ValidatePayout(ctx, req.BankCode, req.AccountNumber); err != nil {
		if errors.Is(err, bank.ErrUnknownBankCode) || errors.Is(err, bank.ErrBadAccountNumber) {
			return nil, fmt.Errorf("%s:%w", op, ErrInvalidDestination)
		}
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	if err := s.store.Debit(ctx, actor.UserID, req.Amount); err != nil {
		if errors.Is(err, repository.ErrInsufficientBalance) {
			return nil, fmt.Errorf("%s:%w", op, ErrInsufficientBalance)
		}
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	tx := &domain.Transaction{
		ID:        uuid.New().String(),
		UserID:    actor.UserID,
		Reference: newReference(),
		Type:      domain.TxWithdraw,
		Amount:    req.Amount,
		Status:    domain.TxPending,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.store.InsertTransaction(ctx, tx); err != nil {
		_ = s.store.Credit(ctx, actor.UserID, req.Amount)
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	err := s.transfer.Transfer(ctx, payment.TransferRequest{
		Reference:     tx.Reference,
		Amount:        req.Amount,
		BankCode:      req.BankCode,
		AccountNumber: req.AccountNumber,
		Narration:     "wallet withdrawal",
	})
	if err != nil {
		_ = s.store.Credit(ctx, actor.UserID, req.Amount)
		_ = s.store.SetTransactionStatus(ctx, tx.Reference, domain.TxFailed)
		tx.Status = domain.TxFailed
		return tx, fmt.Errorf("%s:%w", op, err)
	}

	if err := s.store.SetTransactionStatus(ctx, tx.Reference, domain.TxSuccess); err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}
	tx.Status = domain.TxSuccess

	return tx, nil
}

func (s *Service) Transactions(ctx context.Context, actor domain.Actor) ([]domain.Transaction, error) {
	const op = "service.wallet.Transactions"

	out, err := s.store.ListTransactions(ctx, actor.UserID)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return out, nil
}

func newReference() string {
	return "wd_" + strings.ReplaceAll(uuid.New().String(), "-", "")
}
