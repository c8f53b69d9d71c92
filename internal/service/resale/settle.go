package resale

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/gatepass-ng/gatepass/internal/domain"
	postgres "github.com/gatepass-ng/gatepass/internal/repository/postgres"
	"github.com/gatepass-ng/gatepass/internal/uow"
)

// storeSettler runs purchase settlement as serializable transactions against
// the primary store.
type storeSettler struct {
	store *postgres.Store
	uow   *uow.UoW
}

// NewStoreSettler binds settlement to the given store.
func NewStoreSettler(store *postgres.Store) Settler {
	return &storeSettler{store: store, uow: uow.NewUoW(store)}
}

// doTx retries serialization conflicts a few times before giving up; under
// serializable isolation concurrent settlements of the same event abort
// rather than block.
func (s *storeSettler) doTx(
	ctx context.Context,
	fn func(ctx context.Context, tx postgres.DB, after func(uow.AfterCommit)) error,
) error {
	var err error
	for attempt := 0; attempt < 3; attempt++ {
		err = s.uow.Do(ctx, fn)
		if err == nil || !postgres.IsRetryable(err) {
			return err
		}
	}
	return err
}

// MintPurchase atomically reserves inventory and issues tickets. The counter
// bumps fail the transaction when the event or category has run out, so
// overselling under concurrent confirmation is impossible.
func (s *storeSettler) MintPurchase(ctx context.Context, order MintOrder) ([]domain.Ticket, error) {
	const op = "resale.storeSettler.MintPurchase"

	now := time.Now().UTC()

	tickets := make([]domain.Ticket, 0, order.Quantity)
	for range order.Quantity {
		tickets = append(tickets, domain.Ticket{
			ID:        uuid.New().String(),
			Code:      newTicketCode(),
			EventID:   order.EventID,
			OwnerID:   order.BuyerID,
			Status:    domain.TicketActive,
			CreatedAt: now,
			UpdatedAt: now,
		})
	}

	err := s.doTx(ctx, func(ctx context.Context, tx postgres.DB, after func(uow.AfterCommit)) error {
		events := s.store.Events().With(tx)

		if err := events.BumpMinted(ctx, order.EventID, order.Quantity); err != nil {
			return err
		}

		if order.CategoryID != "" {
			if err := events.BumpCategoryMinted(ctx, order.CategoryID, order.Quantity); err != nil {
				return err
			}
		}

		if err := s.store.Tickets().With(tx).Mint(ctx, tickets); err != nil {
			return err
		}

		return s.store.Wallet().With(tx).InsertTransaction(ctx, &domain.Transaction{
			ID:        uuid.New().String(),
			UserID:    order.BuyerID,
			Reference: order.Reference,
			Type:      domain.TxPurchase,
			Amount:    order.Amount,
			Status:    domain.TxSuccess,
			EventID:   order.EventID,
			CreatedAt: now,
		})
	})
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return tickets, nil
}

// SettleResale moves a listed ticket to the buyer and records what the buyer
// was charged, service fee included, in one transaction.
func (s *storeSettler) SettleResale(ctx context.Context, sl Settlement) (*domain.Ticket, error) {
	const op = "resale.storeSettler.SettleResale"

	var transferred *domain.Ticket

	err := s.doTx(ctx, func(ctx context.Context, tx postgres.DB, after func(uow.AfterCommit)) error {
		t, err := s.store.Tickets().With(tx).CompleteResale(ctx, sl.TicketID, sl.BuyerID, sl.Commission)
		if err != nil {
			return err
		}
		transferred = t

		return s.store.Wallet().With(tx).InsertTransaction(ctx, &domain.Transaction{
			ID:        uuid.New().String(),
			UserID:    sl.BuyerID,
			Reference: sl.Reference,
			Type:      domain.TxResale,
			Amount:    sl.Amount,
			Status:    domain.TxSuccess,
			EventID:   t.EventID,
			CreatedAt: time.Now().UTC(),
		})
	})
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return transferred, nil
}

// CreditSeller adds resale proceeds to the seller's wallet. Used as the
// fallback when the bank transfer cannot go through.
func (s *storeSettler) CreditSeller(ctx context.Context, userID string, amount int64) error {
	const op = "resale.storeSettler.CreditSeller"

	if err := s.store.Wallet().Credit(ctx, userID, amount); err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}

	return nil
}

func newTicketCode() string {
	return "GP-" + strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:10])
}
