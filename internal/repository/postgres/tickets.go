package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gatepass-ng/gatepass/internal/domain"
	"github.com/gatepass-ng/gatepass/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type TicketRepo struct {
	pool *pgxpool.Pool
	db   DB
}

func (r *TicketRepo) With(db DB) *TicketRepo {
	cp := *r
	cp.db = db
	return &cp
}

func (r *TicketRepo) handle() DB {
	if r.db != nil {
		return r.db
	}
	return r.pool
}

const ticketColumns = `id, code, event_id, user_id, is_used, is_listed,
       resale_price, resale_count, resale_commission, listed_at, sold_to,
       created_at, updated_at`

func scanTicket(row pgx.Row) (*domain.Ticket, error) {
	var (
		t          domain.Ticket
		isUsed     bool
		isListed   bool
		price      *int64
		commission *int64
		soldTo     *string
	)

	if err := row.Scan(
		&t.ID, &t.Code, &t.EventID, &t.OwnerID, &isUsed, &isListed,
		&price, &t.ResaleCount, &commission, &t.ListedAt, &soldTo,
		&t.CreatedAt, &t.UpdatedAt,
	); err != nil {
		return nil, err
	}

	t.Status = domain.StatusFromFlags(isUsed, isListed)
	if price != nil {
		t.ResalePrice = *price
	}
	if commission != nil {
		t.ResaleCommission = *commission
	}
	if soldTo != nil {
		t.SoldTo = *soldTo
	}

	return &t, nil
}

// GetTicket retrieves a ticket by its ID.
//
// Returns repository.ErrNotFound when no such ticket exists.
func (r *TicketRepo) GetTicket(ctx context.Context, id string) (*domain.Ticket, error) {
	const op = "postgres.TicketRepo.GetTicket"

	row := r.handle().QueryRow(ctx,
		`SELECT `+ticketColumns+` FROM tickets WHERE id = $1`, id)

	t, err := scanTicket(row)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return t, nil
}

func (r *TicketRepo) ListByOwner(ctx context.Context, userID string) ([]domain.Ticket, error) {
	const op = "postgres.TicketRepo.ListByOwner"

	rows, err := r.handle().Query(ctx,
		`SELECT `+ticketColumns+` FROM tickets
		  WHERE user_id = $1
		  ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}
	defer rows.Close()

	return collectTickets(op, rows)
}

// ListResaleByEvent returns the currently listed tickets for an event.
func (r *TicketRepo) ListResaleByEvent(ctx context.Context, eventID string) ([]domain.Ticket, error) {
	const op = "postgres.TicketRepo.ListResaleByEvent"

	rows, err := r.handle().Query(ctx,
		`SELECT `+ticketColumns+` FROM tickets
		  WHERE event_id = $1 AND is_listed = true AND is_used = false
		  ORDER BY listed_at ASC`, eventID)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}
	defer rows.Close()

	return collectTickets(op, rows)
}

func collectTickets(op string, rows pgx.Rows) ([]domain.Ticket, error) {
	var out []domain.Ticket
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
		}
		out = append(out, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}
	return out, nil
}

// ListForResale puts an active ticket up for resale. The update is guarded on
// current ownership and on the ticket being neither used nor already listed,
// so a stale client loses the race here rather than overwriting state.
//
// Returns:
//   - repository.ErrNotFound when the ticket does not exist or is not owned
//     by ownerID.
//   - repository.ErrTicketStateConflict when the ticket is used or listed.
func (r *TicketRepo) ListForResale(
	ctx context.Context,
	ticketID, ownerID string,
	price int64,
	listedAt time.Time,
) (*domain.Ticket, error) {
	const op = "postgres.TicketRepo.ListForResale"

	row := r.handle().QueryRow(ctx,
		`UPDATE tickets
		    SET is_listed = true, resale_price = $3, listed_at = $4, updated_at = now()
		  WHERE id = $1 AND user_id = $2 AND is_used = false AND is_listed = false
		  RETURNING `+ticketColumns, ticketID, ownerID, price, listedAt)

	t, err := scanTicket(row)
	if err == nil {
		return t, nil
	}

	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	// Zero rows: either the ticket is gone / foreign, or its state moved on.
	if _, lookupErr := r.lookupOwned(ctx, ticketID, ownerID); lookupErr != nil {
		return nil, fmt.Errorf("%s:%w", op, lookupErr)
	}

	return nil, fmt.Errorf("%s:%w", op, repository.ErrTicketStateConflict)
}

// CompleteResale transfers a listed ticket to the buyer: the listing is
// deactivated, ownership moves, the resale counter grows and the commission
// retained on this sale is recorded. The conditional update is the mutual
// exclusion point for concurrent purchases of the same listing.
func (r *TicketRepo) CompleteResale(
	ctx context.Context,
	ticketID, buyerID string,
	commission int64,
) (*domain.Ticket, error) {
	const op = "postgres.TicketRepo.CompleteResale"

	row := r.handle().QueryRow(ctx,
		`UPDATE tickets
		    SET is_listed = false,
		        user_id = $2,
		        sold_to = $2,
		        resale_price = NULL,
		        listed_at = NULL,
		        resale_count = resale_count + 1,
		        resale_commission = $3,
		        updated_at = now()
		  WHERE id = $1 AND is_listed = true AND is_used = false AND user_id <> $2
		  RETURNING `+ticketColumns, ticketID, buyerID, commission)

	t, err := scanTicket(row)
	if err == nil {
		return t, nil
	}

	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	var exists bool
	if err := r.handle().QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM tickets WHERE id = $1)`, ticketID,
	).Scan(&exists); err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}
	if !exists {
		return nil, fmt.Errorf("%s:%w", op, repository.ErrNotFound)
	}

	return nil, fmt.Errorf("%s:%w", op, repository.ErrTicketStateConflict)
}

// Redeem marks a ticket used on successful entry verification. Only an active
// ticket whose id, code and event all match redeems; the transition is
// terminal.
func (r *TicketRepo) Redeem(ctx context.Context, ticketID, code, eventID string) (*domain.Ticket, error) {
	const op = "postgres.TicketRepo.Redeem"

	row := r.handle().QueryRow(ctx,
		`UPDATE tickets
		    SET is_used = true, updated_at = now()
		  WHERE id = $1 AND code = $2 AND event_id = $3
		    AND is_used = false AND is_listed = false
		  RETURNING `+ticketColumns, ticketID, code, eventID)

	t, err := scanTicket(row)
	if err == nil {
		return t, nil
	}

	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	var exists bool
	if err := r.handle().QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM tickets
		   WHERE id = $1 AND code = $2 AND event_id = $3)`,
		ticketID, code, eventID,
	).Scan(&exists); err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}
	if !exists {
		return nil, fmt.Errorf("%s:%w", op, repository.ErrNotFound)
	}

	return nil, fmt.Errorf("%s:%w", op, repository.ErrTicketStateConflict)
}

// Mint inserts freshly issued tickets for a primary purchase. Caller is
// expected to have bumped the event's minted counter in the same transaction.
func (r *TicketRepo) Mint(ctx context.Context, tickets []domain.Ticket) error {
	const op = "postgres.TicketRepo.Mint"

	batch := &pgx.Batch{}
	for _, t := range tickets {
		batch.Queue(
			`INSERT INTO tickets(id, code, event_id, user_id, is_used, is_listed,
			                     resale_count, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, false, false, 0, now(), now())`,
			t.ID, t.Code, t.EventID, t.OwnerID,
		)
	}

	if err := r.handle().SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return nil
}

func (r *TicketRepo) lookupOwned(ctx context.Context, ticketID, ownerID string) (*domain.Ticket, error) {
	row := r.handle().QueryRow(ctx,
		`SELECT `+ticketColumns+` FROM tickets WHERE id = $1 AND user_id = $2`,
		ticketID, ownerID)

	t, err := scanTicket(row)
	if err != nil {
		return nil, translateDBErr(err)
	}

	return t, nil
}
