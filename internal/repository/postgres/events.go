package postgres

import (
	"context"
	"fmt"

	"github.com/gatepass-ng/gatepass/internal/domain"
	"github.com/gatepass-ng/gatepass/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type EventRepo struct {
	pool *pgxpool.Pool
	db   DB
}

func (r *EventRepo) With(db DB) *EventRepo {
	cp := *r
	cp.db = db
	return &cp
}

func (r *EventRepo) handle() DB {
	if r.db != nil {
		return r.db
	}
	return r.pool
}

const eventColumns = `id, name, description, location, category, banner_url,
       price, date, is_active, organizer_id, max_tickets, minted,
       created_at, updated_at`

func scanEvent(row pgx.Row) (*domain.Event, error) {
	var e domain.Event
	if err := row.Scan(
		&e.ID, &e.Name, &e.Description, &e.Location, &e.Category, &e.BannerURL,
		&e.Price, &e.Date, &e.IsActive, &e.OrganizerID, &e.MaxTickets, &e.Minted,
		&e.CreatedAt, &e.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *EventRepo) GetEvent(ctx context.Context, id string) (*domain.Event, error) {
	const op = "postgres.EventRepo.GetEvent"

	row := r.handle().QueryRow(ctx,
		`SELECT `+eventColumns+` FROM events WHERE id = $1`, id)

	e, err := scanEvent(row)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return e, nil
}

func (r *EventRepo) CreateEvent(ctx context.Context, e *domain.Event) error {
	const op = "postgres.EventRepo.CreateEvent"

	if _, err := r.handle().Exec(ctx,
		`INSERT INTO events(id, name, description, location, category, banner_url,
		                    price, date, is_active, organizer_id, max_tickets, minted,
		                    created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, 0, now(), now())`,
		e.ID, e.Name, e.Description, e.Location, e.Category, e.BannerURL,
		e.Price, e.Date, e.IsActive, e.OrganizerID, e.MaxTickets,
	); err != nil {
		return fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return nil
}

// ListEvents returns active upcoming events; when all is set, inactive and
// past events are included too (organizer/admin views).
func (r *EventRepo) ListEvents(ctx context.Context, all bool, limit, offset int) ([]domain.Event, error) {
	const op = "postgres.EventRepo.ListEvents"

	q := `SELECT ` + eventColumns + ` FROM events`
	if !all {
		q += ` WHERE is_active = true AND date >= now()`
	}
	q += ` ORDER BY date ASC LIMIT $1 OFFSET $2`

	rows, err := r.handle().Query(ctx, q, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}
	defer rows.Close()

	var out []domain.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
		}
		out = append(out, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return out, nil
}

func (r *EventRepo) ListByOrganizer(ctx context.Context, organizerID string) ([]domain.Event, error) {
	const op = "postgres.EventRepo.ListByOrganizer"

	rows, err := r.handle().Query(ctx,
		`SELECT `+eventColumns+` FROM events
		  WHERE organizer_id = $1 ORDER BY date DESC`, organizerID)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}
	defer rows.Close()

	var out []domain.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
		}
		out = append(out, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return out, nil
}

// UpdateEvent rewrites an event's editable fields, scoped to its organizer.
// The minted guard keeps max_tickets from dropping below what has already
// been issued.
func (r *EventRepo) UpdateEvent(ctx context.Context, e *domain.Event) error {
	const op = "postgres.EventRepo.UpdateEvent"

	tag, err := r.handle().Exec(ctx,
		`UPDATE events
		    SET name = $1, description = $2, location = $3, category = $4,
		        banner_url = $5, price = $6, date = $7, max_tickets = $8,
		        updated_at = now()
		  WHERE id = $9 AND organizer_id = $10 AND minted <= $8`,
		e.Name, e.Description, e.Location, e.Category, e.BannerURL,
		e.Price, e.Date, e.MaxTickets, e.ID, e.OrganizerID)
	if err != nil {
		return fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s:%w", op, repository.ErrNotFound)
	}

	return nil
}

// ToggleActive flips an event's visibility and returns the new state.
func (r *EventRepo) ToggleActive(ctx context.Context, id, organizerID string) (bool, error) {
	const op = "postgres.EventRepo.ToggleActive"

	var active bool
	if err := r.handle().QueryRow(ctx,
		`UPDATE events SET is_active = NOT is_active, updated_at = now()
		  WHERE id = $1 AND organizer_id = $2
		  RETURNING is_active`, id, organizerID,
	).Scan(&active); err != nil {
		return false, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return active, nil
}

// BumpMinted reserves n tickets against the event's supply. The guard keeps
// minted from ever exceeding max_tickets; zero rows means the event sold out.
func (r *EventRepo) BumpMinted(ctx context.Context, eventID string, n int) error {
	const op = "postgres.EventRepo.BumpMinted"

	tag, err := r.handle().Exec(ctx,
		`UPDATE events SET minted = minted + $2, updated_at = now()
		  WHERE id = $1 AND minted + $2 <= max_tickets`, eventID, n)
	if err != nil {
		return fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s:%w", op, repository.ErrSoldOut)
	}

	return nil
}

func (r *EventRepo) GetCategory(ctx context.Context, id string) (*domain.TicketCategory, error) {
	const op = "postgres.EventRepo.GetCategory"

	var c domain.TicketCategory
	if err := r.handle().QueryRow(ctx,
		`SELECT id, event_id, name, price, max_tickets, minted
		   FROM ticket_categories WHERE id = $1`, id,
	).Scan(&c.ID, &c.EventID, &c.Name, &c.Price, &c.MaxTickets, &c.Minted); err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return &c, nil
}

func (r *EventRepo) CreateCategory(ctx context.Context, c *domain.TicketCategory) error {
	const op = "postgres.EventRepo.CreateCategory"

	if _, err := r.handle().Exec(ctx,
		`INSERT INTO ticket_categories(id, event_id, name, price, max_tickets, minted)
		 VALUES ($1, $2, $3, $4, $5, 0)`,
		c.ID, c.EventID, c.Name, c.Price, c.MaxTickets,
	); err != nil {
		return fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return nil
}

func (r *EventRepo) ListCategories(ctx context.Context, eventID string) ([]domain.TicketCategory, error) {
	const op = "postgres.EventRepo.ListCategories"

	rows, err := r.handle().Query(ctx,
		`SELECT id, event_id, name, price, max_tickets, minted
		   FROM ticket_categories WHERE event_id = $1 ORDER BY price ASC`, eventID)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}
	defer rows.Close()

	var out []domain.TicketCategory
	for rows.Next() {
		var c domain.TicketCategory
		if err := rows.Scan(&c.ID, &c.EventID, &c.Name, &c.Price, &c.MaxTickets, &c.Minted); err != nil {
			return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return out, nil
}

func (r *EventRepo) BumpCategoryMinted(ctx context.Context, categoryID string, n int) error {
	const op = "postgres.EventRepo.BumpCategoryMinted"

	tag, err := r.handle().Exec(ctx,
		`UPDATE ticket_categories SET minted = minted + $2
		  WHERE id = $1 AND minted + $2 <= max_tickets`, categoryID, n)
	if err != nil {
		return fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s:%w", op, repository.ErrSoldOut)
	}

	return nil
}
