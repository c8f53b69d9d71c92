package resale

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/gatepass-ng/gatepass/internal/bank"
	"github.com/gatepass-ng/gatepass/internal/domain"
	"github.com/gatepass-ng/gatepass/internal/monitoring"
	"github.com/gatepass-ng/gatepass/internal/payment"
	"github.com/gatepass-ng/gatepass/internal/repository"
	redisrepo "github.com/gatepass-ng/gatepass/internal/repository/redis"
)

// TicketStore is the slice of the primary store the resale protocol reads
// and lists against.
type TicketStore interface {
	GetTicket(ctx context.Context, id string) (*domain.Ticket, error)
	ListForResale(ctx context.Context, ticketID, ownerID string, price int64, listedAt time.Time) (*domain.Ticket, error)
	ListResaleByEvent(ctx context.Context, eventID string) ([]domain.Ticket, error)
	ListByOwner(ctx context.Context, userID string) ([]domain.Ticket, error)
}

// Catalog resolves events and ticket categories for availability checks.
type Catalog interface {
	GetEvent(ctx context.Context, id string) (*domain.Event, error)
	GetCategory(ctx context.Context, id string) (*domain.TicketCategory, error)
}

// MintOrder describes a paid (or free) primary purchase ready to be issued.
type MintOrder struct {
	Reference  string
	EventID    string
	CategoryID string
	BuyerID    string
	Quantity   int
	Amount     int64
}

// Settlement describes a confirmed resale purchase ready for transfer.
// Amount is the full buyer charge, service fee included; Commission and
// SellerNet split the list price underneath it.
type Settlement struct {
	Reference  string
	TicketID   string
	BuyerID    string
	Amount     int64
	Commission int64
	SellerNet  int64
}

// Settler executes the transactional tail of a purchase against the primary
// store: minting tickets, transferring ownership, recording transactions.
type Settler interface {
	MintPurchase(ctx context.Context, order MintOrder) ([]domain.Ticket, error)
	SettleResale(ctx context.Context, s Settlement) (*domain.Ticket, error)
	CreditSeller(ctx context.Context, userID string, amount int64) error
}

// OrderStore keeps pending orders and payout destinations between checkout
// and the payment callback. ClaimOrder must remove the order atomically so
// that concurrent callbacks for one reference cannot both settle.
type OrderStore interface {
	SaveOrder(ctx context.Context, o domain.PendingOrder) error
	ClaimOrder(ctx context.Context, reference string) (*domain.PendingOrder, error)
	SavePayout(ctx context.Context, ticketID string, p domain.PayoutDestination) error
	GetPayout(ctx context.Context, ticketID string) (*domain.PayoutDestination, error)
	DeletePayout(ctx context.Context, ticketID string) error
}

// PayoutValidator checks a payout destination against the bank registry.
type PayoutValidator interface {
	ValidatePayout(ctx context.Context, bankCode, accountNumber string) error
}

// CheckoutProvider opens hosted checkout sessions with the payment gateway.
type CheckoutProvider interface {
	InitializeCheckout(ctx context.Context, req payment.CheckoutRequest) (string, error)
}

// Transferer pays sellers out at settlement time.
type Transferer interface {
	Transfer(ctx context.Context, req payment.TransferRequest) error
}

// Verifier confirms a charge with the gateway. No order settles on a bare
// reference string; the charge must exist, be paid, and match the amount
// the order was opened for.
type Verifier interface {
	VerifyTransaction(ctx context.Context, reference string) (paid bool, amount int64, err error)
}

type Config struct {
	MaxResalePrice int64
	Currency       string
	CallbackURL    string
}

type Service struct {
	tickets  TicketStore
	catalog  Catalog
	settler  Settler
	orders   OrderStore
	payout   PayoutValidator
	checkout CheckoutProvider
	transfer Transferer
	verifier Verifier
	cache    *redisrepo.Cache
	pubsub   *redisrepo.TicketsPubSub
	cfg      Config
}

func New(
	tickets TicketStore,
	catalog Catalog,
	settler Settler,
	orders OrderStore,
	payout PayoutValidator,
	checkout CheckoutProvider,
	transfer Transferer,
	verifier Verifier,
	cache *redisrepo.Cache,
	pubsub *redisrepo.TicketsPubSub,
	cfg Config,
) *Service {
	if cfg.MaxResalePrice <= 0 {
		cfg.MaxResalePrice = 10_000_000
	}

	if cfg.Currency == "" {
		cfg.Currency = "NGN"
	}

	return &Service{
		tickets:  tickets,
		catalog:  catalog,
		settler:  settler,
		orders:   orders,
		payout:   payout,
		checkout: checkout,
		transfer: transfer,
		verifier: verifier,
		cache:    cache,
		pubsub:   pubsub,
		cfg:      cfg,
	}
}

type ListingRequest struct {
	TicketID      string
	ResalePrice   int64
	BankCode      string
	AccountNumber string
	Narration     string
}

// List puts one of the actor's tickets up for resale.
//
// Price and payout destination are validated before the ticket is touched;
// the listable check runs against fresh ticket state so a used or already
// listed ticket fails fast without a write. The store-side conditional
// update still guards against the state moving underneath us.
//
// Returns:
//   - resale.ErrInvalidResalePrice, resale.ErrInvalidPayoutDestination,
//     resale.ErrTicketNotListable: local precondition failures.
//   - resale.ErrTicketStateConflict: the store rejected a stale transition.
func (s *Service) List(ctx context.Context, actor domain.Actor, req ListingRequest) (*domain.Ticket, error) {
	const op = "service.resale.List"

	if req.ResalePrice <= 0 || req.ResalePrice > s.cfg.MaxResalePrice {
		return nil, fmt.Errorf("%s:%w", op, ErrInvalidResalePrice)
	}

	if err := s.payout.ValidatePayout(ctx, req.BankCode, req.AccountNumber); err != nil {
		if errors.Is(err, bank.ErrUnknownBankCode) || errors.Is(err, bank.ErrBadAccountNumber) {
			return nil, fmt.Errorf("%s:%w", op, ErrInvalidPayoutDestination)
		}
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	t, err := s.tickets.GetTicket(ctx, req.TicketID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s:%w", op, ErrTicketNotFound)
		}
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	if t.OwnerID != actor.UserID {
		return nil, fmt.Errorf("%s:%w", op, ErrTicketNotFound)
	}

	if !t.Listable() {
		return nil, fmt.Errorf("%s:%w", op, ErrTicketNotListable)
	}

	listed, err := s.tickets.ListForResale(ctx, req.TicketID, actor.UserID, req.ResalePrice, time.Now().UTC())
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrTicketStateConflict):
			return nil, fmt.Errorf("%s:%w", op, ErrTicketStateConflict)
		case errors.Is(err, repository.ErrNotFound):
			return nil, fmt.Errorf("%s:%w", op, ErrTicketNotFound)
		default:
			return nil, fmt.Errorf("%s:%w", op, err)
		}
	}

	if err := s.orders.SavePayout(ctx, listed.ID, domain.PayoutDestination{
		BankCode:      req.BankCode,
		AccountNumber: req.AccountNumber,
		Narration:     req.Narration,
	}); err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	s.invalidate(ctx, listed.EventID)
	monitoring.ResaleListed()

	return listed, nil
}

type BuyRequest struct {
	EventID          string
	Quantity         int
	TicketCategoryID string
	ResaleTicketID   string
}

type BuyResult struct {
	Reference   string
	CheckoutURL string
	Confirmed   bool
	Tickets     []domain.TicketView
}

// Buy submits a unified purchase: a primary-category purchase or a resale
// purchase, depending on which identifier is populated. Exactly one must be
// set. Availability and identity preconditions are enforced locally before
// any checkout session is opened.
func (s *Service) Buy(ctx context.Context, actor domain.Actor, req BuyRequest) (*BuyResult, error) {
	const op = "service.resale.Buy"

	if (req.TicketCategoryID == "") == (req.ResaleTicketID == "") {
		return nil, fmt.Errorf("%s:%w", op, ErrInvalidPurchaseTarget)
	}

	if req.Quantity <= 0 {
		return nil, fmt.Errorf("%s:%w", op, ErrInvalidQuantity)
	}

	if req.ResaleTicketID != "" {
		return s.buyResale(ctx, actor, req)
	}

	return s.buyPrimary(ctx, actor, req)
}

func (s *Service) buyResale(ctx context.Context, actor domain.Actor, req BuyRequest) (*BuyResult, error) {
	const op = "service.resale.buyResale"

	// a listing is one admission right; quantity cannot apply
	if req.Quantity != 1 {
		return nil, fmt.Errorf("%s:%w", op, ErrInvalidQuantity)
	}

	t, err := s.tickets.GetTicket(ctx, req.ResaleTicketID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s:%w", op, ErrTicketNotFound)
		}
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	if t.OwnerID == actor.UserID || (t.SoldTo != "" && t.SoldTo == actor.UserID) {
		return nil, fmt.Errorf("%s:%w", op, ErrSelfPurchaseRejected)
	}

	if !t.IsListed() {
		return nil, fmt.Errorf("%s:%w", op, ErrTicketStateConflict)
	}

	total := BuyerTotal(t.ResalePrice)
	ref := newReference("rs")

	if err := s.orders.SaveOrder(ctx, domain.PendingOrder{
		Reference:      ref,
		Kind:           domain.OrderResale,
		BuyerID:        actor.UserID,
		BuyerEmail:     actor.Email,
		EventID:        t.EventID,
		ResaleTicketID: t.ID,
		Quantity:       1,
		Amount:         total,
	}); err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	url, err := s.checkout.InitializeCheckout(ctx, payment.CheckoutRequest{
		Reference:   ref,
		Email:       actor.Email,
		Amount:      total,
		Currency:    s.cfg.Currency,
		CallbackURL: s.cfg.CallbackURL,
	})
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return &BuyResult{Reference: ref, CheckoutURL: url}, nil
}

func (s *Service) buyPrimary(ctx context.Context, actor domain.Actor, req BuyRequest) (*BuyResult, error) {
	const op = "service.resale.buyPrimary"

	if req.EventID == "" {
		return nil, fmt.Errorf("%s:%w", op, ErrEventNotFound)
	}

	e, err := s.catalog.GetEvent(ctx, req.EventID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s:%w", op, ErrEventNotFound)
		}
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	if !e.IsActive {
		return nil, fmt.Errorf("%s:%w", op, ErrEventNotFound)
	}

	if e.Remaining() < req.Quantity {
		return nil, fmt.Errorf("%s:%w", op, ErrSoldOut)
	}

	cat, err := s.catalog.GetCategory(ctx, req.TicketCategoryID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s:%w", op, ErrTicketNotFound)
		}
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	if cat.EventID != e.ID {
		return nil, fmt.Errorf("%s:%w", op, ErrInvalidPurchaseTarget)
	}

	if cat.MaxTickets-cat.Minted < req.Quantity {
		return nil, fmt.Errorf("%s:%w", op, ErrSoldOut)
	}

	total := cat.Price * int64(req.Quantity)
	ref := newReference("tx")

	// free tickets confirm directly; no checkout session is opened
	if total == 0 {
		minted, err := s.settler.MintPurchase(ctx, MintOrder{
			Reference:  ref,
			EventID:    e.ID,
			CategoryID: cat.ID,
			BuyerID:    actor.UserID,
			Quantity:   req.Quantity,
			Amount:     0,
		})
		if err != nil {
			return nil, s.translateSettleErr(op, err)
		}

		s.invalidate(ctx, e.ID)
		monitoring.TicketsMinted(len(minted))

		return &BuyResult{Reference: ref, Confirmed: true, Tickets: views(minted)}, nil
	}

	if err := s.orders.SaveOrder(ctx, domain.PendingOrder{
		Reference:  ref,
		Kind:       domain.OrderPrimary,
		BuyerID:    actor.UserID,
		BuyerEmail: actor.Email,
		EventID:    e.ID,
		CategoryID: cat.ID,
		Quantity:   req.Quantity,
		Amount:     total,
	}); err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	url, err := s.checkout.InitializeCheckout(ctx, payment.CheckoutRequest{
		Reference:   ref,
		Email:       actor.Email,
		Amount:      total,
		Currency:    s.cfg.Currency,
		CallbackURL: s.cfg.CallbackURL,
	})
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return &BuyResult{Reference: ref, CheckoutURL: url}, nil
}

// ConfirmPayment settles a pending order once the gateway confirms the
// charge was actually paid in full. Primary orders mint tickets; resale
// orders transfer the listed ticket to the buyer and pay the seller out.
// The order is claimed out of the store before settling and put back only
// if settlement fails, so a replayed callback cannot settle twice.
func (s *Service) ConfirmPayment(ctx context.Context, reference string) (*BuyResult, error) {
	const op = "service.resale.ConfirmPayment"

	paid, amount, err := s.verifier.VerifyTransaction(ctx, reference)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}
	if !paid {
		return nil, fmt.Errorf("%s:%w", op, ErrPaymentNotConfirmed)
	}

	o, err := s.orders.ClaimOrder(ctx, reference)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}
	if o == nil {
		return nil, fmt.Errorf("%s:%w", op, ErrOrderNotFound)
	}

	if amount != o.Amount {
		_ = s.orders.SaveOrder(ctx, *o)
		return nil, fmt.Errorf("%s: charged %d, order is for %d:%w", op, amount, o.Amount, ErrPaymentNotConfirmed)
	}

	var result *BuyResult

	switch o.Kind {
	case domain.OrderResale:
		result, err = s.settleResale(ctx, o)
	default:
		result, err = s.settlePrimary(ctx, o)
	}
	if err != nil {
		// the charge is good; keep the order so the callback can retry
		_ = s.orders.SaveOrder(ctx, *o)
		return nil, err
	}

	s.invalidate(ctx, o.EventID)

	return result, nil
}

func (s *Service) settlePrimary(ctx context.Context, o *domain.PendingOrder) (*BuyResult, error) {
	const op = "service.resale.settlePrimary"

	minted, err := s.settler.MintPurchase(ctx, MintOrder{
		Reference:  o.Reference,
		EventID:    o.EventID,
		CategoryID: o.CategoryID,
		BuyerID:    o.BuyerID,
		Quantity:   o.Quantity,
		Amount:     o.Amount,
	})
	if err != nil {
		return nil, s.translateSettleErr(op, err)
	}

	monitoring.TicketsMinted(len(minted))

	return &BuyResult{Reference: o.Reference, Confirmed: true, Tickets: views(minted)}, nil
}

func (s *Service) settleResale(ctx context.Context, o *domain.PendingOrder) (*BuyResult, error) {
	const op = "service.resale.settleResale"

	t, err := s.tickets.GetTicket(ctx, o.ResaleTicketID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s:%w", op, ErrTicketNotFound)
		}
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	sellerID := t.OwnerID
	price := t.ResalePrice
	commission := Commission(price)
	sellerNet := SellerPayout(price)

	transferred, err := s.settler.SettleResale(ctx, Settlement{
		Reference:  o.Reference,
		TicketID:   o.ResaleTicketID,
		BuyerID:    o.BuyerID,
		Amount:     o.Amount,
		Commission: commission,
		SellerNet:  sellerNet,
	})
	if err != nil {
		return nil, s.translateSettleErr(op, err)
	}

	s.paySeller(ctx, sellerID, transferred.ID, sellerNet, o.Reference)
	monitoring.ResaleCompleted()

	return &BuyResult{
		Reference: o.Reference,
		Confirmed: true,
		Tickets:   []domain.TicketView{transferred.View()},
	}, nil
}

// paySeller sends the seller's net proceeds to the destination captured at
// listing time. If the transfer cannot be executed the amount is credited to
// the seller's wallet instead, so funds are never dropped.
func (s *Service) paySeller(ctx context.Context, sellerID, ticketID string, amount int64, reference string) {
	dest, err := s.orders.GetPayout(ctx, ticketID)
	if err == nil && dest != nil && s.transfer != nil {
		err = s.transfer.Transfer(ctx, payment.TransferRequest{
			Reference:     reference + "-payout",
			Amount:        amount,
			BankCode:      dest.BankCode,
			AccountNumber: dest.AccountNumber,
			Narration:     dest.Narration,
		})
		if err == nil {
			_ = s.orders.DeletePayout(ctx, ticketID)
			return
		}
	}

	_ = s.settler.CreditSeller(ctx, sellerID, amount)
	_ = s.orders.DeletePayout(ctx, ticketID)
}

// Listing pairs one resale ticket with the fee quote for its listed price.
type Listing struct {
	domain.TicketView
	Quote Quote `json:"quote"`
}

// ListingsByEvent returns an event's active listings with buyer-side quotes.
func (s *Service) ListingsByEvent(ctx context.Context, eventID string) ([]Listing, error) {
	const op = "service.resale.ListingsByEvent"

	key := redisrepo.KeyEventResale(eventID)

	load := func(ctx context.Context) ([]Listing, error) {
		tickets, err := s.tickets.ListResaleByEvent(ctx, eventID)
		if err != nil {
			return nil, err
		}

		out := make([]Listing, 0, len(tickets))
		for _, t := range tickets {
			out = append(out, Listing{
				TicketView: t.View(),
				Quote:      QuoteFor(t.ResalePrice),
			})
		}
		return out, nil
	}

	if s.cache == nil {
		out, err := load(ctx)
		if err != nil {
			return nil, fmt.Errorf("%s:%w", op, err)
		}
		return out, nil
	}

	out, err := redisrepo.GetOrSetJSON(ctx, s.cache, key, 15*time.Second, load)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return out, nil
}

// MyTickets returns the actor's tickets, newest first.
func (s *Service) MyTickets(ctx context.Context, actor domain.Actor) ([]domain.TicketView, error) {
	const op = "service.resale.MyTickets"

	tickets, err := s.tickets.ListByOwner(ctx, actor.UserID)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return views(tickets), nil
}

func (s *Service) translateSettleErr(op string, err error) error {
	switch {
	case errors.Is(err, repository.ErrSoldOut):
		return fmt.Errorf("%s:%w", op, ErrSoldOut)
	case errors.Is(err, repository.ErrTicketStateConflict):
		return fmt.Errorf("%s:%w", op, ErrTicketStateConflict)
	case errors.Is(err, repository.ErrNotFound):
		return fmt.Errorf("%s:%w", op, ErrTicketNotFound)
	default:
		return fmt.Errorf("%s:%w", op, err)
	}
}

func (s *Service) invalidate(ctx context.Context, eventID string) {
	if s.cache != nil {
		_ = s.cache.InvalidateEvent(ctx, eventID)
	}
	if s.pubsub != nil {
		_ = s.pubsub.PublishTicketsChanged(ctx, eventID)
	}
}

func views(tickets []domain.Ticket) []domain.TicketView {
	out := make([]domain.TicketView, 0, len(tickets))
	for _, t := range tickets {
		out = append(out, t.View())
	}
	return out
}

func newReference(prefix string) string {
	return prefix + "_" + strings.ReplaceAll(uuid.New().String(), "-", "")
}
