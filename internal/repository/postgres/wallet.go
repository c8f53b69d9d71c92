package postgres

import (
	"context"
	"fmt"

	"github.com/gatepass-ng/gatepass/internal/domain"
	"github.com/gatepass-ng/gatepass/internal/repository"
	"github.com/jackc/pgx/v5/pgxpool"
)

type WalletRepo struct {
	pool *pgxpool.Pool
	db   DB
}

func (r *WalletRepo) With(db DB) *WalletRepo {
	cp := *r
	cp.db = db
	return &cp
}

func (r *WalletRepo) handle() DB {
	if r.db != nil {
		return r.db
	}
	return r.pool
}

func (r *WalletRepo) Balance(ctx context.Context, userID string) (int64, error) {
	const op = "postgres.WalletRepo.Balance"

	var balance int64
	if err := r.handle().QueryRow(ctx,
		`SELECT balance FROM wallets WHERE user_id = $1`, userID,
	).Scan(&balance); err != nil {
		return 0, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return balance, nil
}

// Credit adds amount to the user's wallet, creating the wallet lazily.
func (r *WalletRepo) Credit(ctx context.Context, userID string, amount int64) error {
	const op = "postgres.WalletRepo.Credit"

	if _, err := r.handle().Exec(ctx,
		`INSERT INTO wallets(user_id, balance) VALUES ($1, $2)
		 ON CONFLICT (user_id) DO UPDATE SET balance = wallets.balance + $2`,
		userID, amount,
	); err != nil {
		return fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return nil
}

// Debit withdraws amount from the user's wallet. The balance guard makes the
// update a no-op when funds are short.
func (r *WalletRepo) Debit(ctx context.Context, userID string, amount int64) error {
	const op = "postgres.WalletRepo.Debit"

	tag, err := r.handle().Exec(ctx,
		`UPDATE wallets SET balance = balance - $2
		  WHERE user_id = $1 AND balance >= $2`, userID, amount)
	if err != nil {
		return fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s:%w", op, repository.ErrInsufficientBalance)
	}

	return nil
}

func (r *WalletRepo) InsertTransaction(ctx context.Context, tx *domain.Transaction) error {
	const op = "postgres.WalletRepo.InsertTransaction"

	var eventID any
	if tx.EventID != "" {
		eventID = tx.EventID
	}

	if _, err := r.handle().Exec(ctx,
		`INSERT INTO transactions(id, user_id, reference, type, amount, status, event_id, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, now())`,
		tx.ID, tx.UserID, tx.Reference, tx.Type, tx.Amount, tx.Status, eventID,
	); err != nil {
		return fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return nil
}

func (r *WalletRepo) ListTransactions(ctx context.Context, userID string) ([]domain.Transaction, error) {
	const op = "postgres.WalletRepo.ListTransactions"

	rows, err := r.handle().Query(ctx,
		`SELECT id, user_id, reference, type, amount, status, COALESCE(event_id, ''), created_at
		   FROM transactions
		  WHERE user_id = $1
		  ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}
	defer rows.Close()

	var out []domain.Transaction
	for rows.Next() {
		var tx domain.Transaction
		if err := rows.Scan(
			&tx.ID, &tx.UserID, &tx.Reference, &tx.Type, &tx.Amount,
			&tx.Status, &tx.EventID, &tx.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
		}
		out = append(out, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return out, nil
}

// SetTransactionStatus finalizes a pending transaction (payment webhook or
// transfer confirmation path).
func (r *WalletRepo) SetTransactionStatus(ctx context.Context, reference string, status domain.TransactionStatus) error {
	const op = "postgres.WalletRepo.SetTransactionStatus"

	tag, err := r.handle().Exec(ctx,
		`UPDATE transactions SET status = $2 WHERE reference = $1 AND status = 'PENDING'`,
		reference, status)
	if err != nil {
		return fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s:%w", op, repository.ErrNotFound)
	}

	return nil
}
