// Package events manages the event catalog: creation, public listing and
// organizer administration.
package events

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/gatepass-ng/gatepass/internal/domain"
	"github.com/gatepass-ng/gatepass/internal/repository"
	redisrepo "github.com/gatepass-ng/gatepass/internal/repository/redis"
)

type EventStore interface {
	GetEvent(ctx context.Context, id string) (*domain.Event, error)
	CreateEvent(ctx context.Context, e *domain.Event) error
	ListEvents(ctx context.Context, all bool, limit, offset int) ([]domain.Event, error)
	ListByOrganizer(ctx context.Context, organizerID string) ([]domain.Event, error)
	UpdateEvent(ctx context.Context, e *domain.Event) error
	ToggleActive(ctx context.Context, id, organizerID string) (bool, error)
	CreateCategory(ctx context.Context, c *domain.TicketCategory) error
	ListCategories(ctx context.Context, eventID string) ([]domain.TicketCategory, error)
}

type Service struct {
	store EventStore
	cache *redisrepo.Cache
}

func New(store EventStore, cache *redisrepo.Cache) *Service {
	return &Service{store: store, cache: cache}
}

type CreateRequest struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	Category    string    `json:"category"`
	BannerURL   string    `json:"bannerUrl"`
	Price       int64     `json:"price"`
	Date        time.Time `json:"date"`
	MaxTickets  int       `json:"maxTickets"`
}

// Create registers a new event owned by the acting organizer.
func (s *Service) Create(ctx context.Context, actor domain.Actor, req CreateRequest) (*domain.Event, error) {
	const op = "service.events.Create"

	if !actor.IsOrganizer() {
		return nil, fmt.Errorf("%s:%w", op, ErrForbidden)
	}

	if req.Name == "" || req.MaxTickets <= 0 || req.Price < 0 || req.Date.IsZero() {
		return nil, fmt.Errorf("%s:%w", op, ErrInvalidEvent)
	}

	now := time.Now().UTC()
	e := &domain.Event{
		ID:          uuid.New().String(),
		Name:        req.Name,
		Description: req.Description,
		Location:    req.Location,
		Category:    req.Category,
		BannerURL:   req.BannerURL,
		Price:       req.Price,
		Date:        req.Date,
		IsActive:    true,
		OrganizerID: actor.UserID,
		MaxTickets:  req.MaxTickets,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.store.CreateEvent(ctx, e); err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return e, nil
}

// Update rewrites an event's editable fields. Only the owning organizer can
// edit, and capacity can never shrink below what has already been minted.
func (s *Service) Update(ctx context.Context, actor domain.Actor, eventID string, req CreateRequest) (*domain.Event, error) {
	const op = "service.events.Update"

	if !actor.IsOrganizer() {
		return nil, fmt.Errorf("%s:%w", op, ErrForbidden)
	}

	if req.Name == "" || req.MaxTickets <= 0 || req.Price < 0 || req.Date.IsZero() {
		return nil, fmt.Errorf("%s:%w", op, ErrInvalidEvent)
	}

	e, err := s.store.GetEvent(ctx, eventID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s:%w", op, ErrEventNotFound)
		}
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	if e.OrganizerID != actor.UserID {
		return nil, fmt.Errorf("%s:%w", op, ErrEventNotFound)
	}

	if req.MaxTickets < e.Minted {
		return nil, fmt.Errorf("%s:%w", op, ErrInvalidEvent)
	}

	e.Name = req.Name
	e.Description = req.Description
	e.Location = req.Location
	e.Category = req.Category
	e.BannerURL = req.BannerURL
	e.Price = req.Price
	e.Date = req.Date
	e.MaxTickets = req.MaxTickets
	e.UpdatedAt = time.Now().UTC()

	if err := s.store.UpdateEvent(ctx, e); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s:%w", op, ErrEventNotFound)
		}
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	if s.cache != nil {
		_ = s.cache.InvalidateEvent(ctx, eventID)
	}

	return e, nil
}

// Get returns a single event, served through the summary cache when one is
// wired.
func (s *Service) Get(ctx context.Context, id string) (*domain.Event, error) {
	const op = "service.events.Get"

	load := func(ctx context.Context) (*domain.Event, error) {
		return s.store.GetEvent(ctx, id)
	}

	var (
		e   *domain.Event
		err error
	)

	if s.cache != nil {
		e, err = redisrepo.GetOrSetJSON(ctx, s.cache, redisrepo.KeyEventSummary(id), time.Minute, load)
	} else {
		e, err = load(ctx)
	}

	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s:%w", op, ErrEventNotFound)
		}
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return e, nil
}

// List returns upcoming active events, paginated.
func (s *Service) List(ctx context.Context, limit, offset int) ([]domain.Event, error) {
	const op = "service.events.List"

	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	out, err := s.store.ListEvents(ctx, false, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return out, nil
}

// Mine returns every event the acting organizer owns, inactive ones included.
func (s *Service) Mine(ctx context.Context, actor domain.Actor) ([]domain.Event, error) {
	const op = "service.events.Mine"

	if !actor.IsOrganizer() {
		return nil, fmt.Errorf("%s:%w", op, ErrForbidden)
	}

	out, err := s.store.ListByOrganizer(ctx, actor.UserID)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return out, nil
}

type CategoryRequest struct {
	Name       string `json:"name"`
	Price      int64  `json:"price"`
	MaxTickets int    `json:"maxTickets"`
}

// AddCategory attaches a priced ticket tier to an event the acting organizer
// owns.
func (s *Service) AddCategory(ctx context.Context, actor domain.Actor, eventID string, req CategoryRequest) (*domain.TicketCategory, error) {
	const op = "service.events.AddCategory"

	if !actor.IsOrganizer() {
		return nil, fmt.Errorf("%s:%w", op, ErrForbidden)
	}

	if req.Name == "" || req.MaxTickets <= 0 || req.Price < 0 {
		return nil, fmt.Errorf("%s:%w", op, ErrInvalidEvent)
	}

	e, err := s.store.GetEvent(ctx, eventID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s:%w", op, ErrEventNotFound)
		}
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	if e.OrganizerID != actor.UserID {
		return nil, fmt.Errorf("%s:%w", op, ErrEventNotFound)
	}

	c := &domain.TicketCategory{
		ID:         uuid.New().String(),
		EventID:    eventID,
		Name:       req.Name,
		Price:      req.Price,
		MaxTickets: req.MaxTickets,
	}

	if err := s.store.CreateCategory(ctx, c); err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return c, nil
}

// Categories lists an event's ticket tiers.
func (s *Service) Categories(ctx context.Context, eventID string) ([]domain.TicketCategory, error) {
	const op = "service.events.Categories"

	out, err := s.store.ListCategories(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return out, nil
}

// ToggleActive flips the event's public visibility. Only the owning
// organizer can do it; for anyone else the event does not exist.
func (s *Service) ToggleActive(ctx context.Context, actor domain.Actor, eventID string) (bool, error) {
	const op = "service.events.ToggleActive"

	if !actor.IsOrganizer() {
		return false, fmt.Errorf("%s:%w", op, ErrForbidden)
	}

	active, err := s.store.ToggleActive(ctx, eventID, actor.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, fmt.Errorf("%s:%w", op, ErrEventNotFound)
		}
		return false, fmt.Errorf("%s:%w", op, err)
	}

	if s.cache != nil {
		_ = s.cache.InvalidateEvent(ctx, eventID)
	}

	return active, nil
}
