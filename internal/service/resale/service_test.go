package resale

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatepass-ng/gatepass/internal/bank"
	"github.com/gatepass-ng/gatepass/internal/domain"
	"github.com/gatepass-ng/gatepass/internal/payment"
	"github.com/gatepass-ng/gatepass/internal/repository"
)

type fakeTickets struct {
	byID      map[string]*domain.Ticket
	listCalls int
	listed    *domain.Ticket
}

func (f *fakeTickets) GetTicket(_ context.Context, id string) (*domain.Ticket, error) {
	t, ok := f.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (f *fakeTickets) ListForResale(_ context.Context, ticketID, ownerID string, price int64, listedAt time.Time) (*domain.Ticket, error) {
	f.listCalls++
	t, ok := f.byID[ticketID]
	if !ok || t.OwnerID != ownerID {
		return nil, repository.ErrNotFound
	}
	if t.Status != domain.TicketActive {
		return nil, repository.ErrTicketStateConflict
	}
	cp := *t
	cp.Status = domain.TicketListed
	cp.ResalePrice = price
	cp.ListedAt = &listedAt
	f.listed = &cp
	return &cp, nil
}

func (f *fakeTickets) ListResaleByEvent(_ context.Context, eventID string) ([]domain.Ticket, error) {
	var out []domain.Ticket
	for _, t := range f.byID {
		if t.EventID == eventID && t.Status == domain.TicketListed {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (f *fakeTickets) ListByOwner(_ context.Context, userID string) ([]domain.Ticket, error) {
	var out []domain.Ticket
	for _, t := range f.byID {
		if t.OwnerID == userID {
			out = append(out, *t)
		}
	}
	return out, nil
}

type fakeCatalog struct {
	events     map[string]*domain.Event
	categories map[string]*domain.TicketCategory
}

func (f *fakeCatalog) GetEvent(_ context.Context, id string) (*domain.Event, error) {
	e, ok := f.events[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return e, nil
}

func (f *fakeCatalog) GetCategory(_ context.Context, id string) (*domain.TicketCategory, error) {
	c, ok := f.categories[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return c, nil
}

type fakeSettler struct {
	mintCalls   int
	settleCalls int
	credits     map[string]int64
	settleErr   error
	lastSettle  Settlement
}

func (f *fakeSettler) MintPurchase(_ context.Context, order MintOrder) ([]domain.Ticket, error) {
	f.mintCalls++
	out := make([]domain.Ticket, 0, order.Quantity)
	for i := 0; i < order.Quantity; i++ {
		out = append(out, domain.Ticket{
			ID:      "minted-" + string(rune('a'+i)),
			EventID: order.EventID,
			OwnerID: order.BuyerID,
			Status:  domain.TicketActive,
		})
	}
	return out, nil
}

func (f *fakeSettler) SettleResale(_ context.Context, s Settlement) (*domain.Ticket, error) {
	f.settleCalls++
	f.lastSettle = s
	if f.settleErr != nil {
		return nil, f.settleErr
	}
	return &domain.Ticket{
		ID:      s.TicketID,
		OwnerID: s.BuyerID,
		SoldTo:  s.BuyerID,
		Status:  domain.TicketActive,
	}, nil
}

func (f *fakeSettler) CreditSeller(_ context.Context, userID string, amount int64) error {
	if f.credits == nil {
		f.credits = map[string]int64{}
	}
	f.credits[userID] += amount
	return nil
}

type fakeOrders struct {
	orders  map[string]domain.PendingOrder
	payouts map[string]domain.PayoutDestination
}

func newFakeOrders() *fakeOrders {
	return &fakeOrders{
		orders:  map[string]domain.PendingOrder{},
		payouts: map[string]domain.PayoutDestination{},
	}
}

func (f *fakeOrders) SaveOrder(_ context.Context, o domain.PendingOrder) error {
	f.orders[o.Reference] = o
	return nil
}

func (f *fakeOrders) ClaimOrder(_ context.Context, reference string) (*domain.PendingOrder, error) {
	o, ok := f.orders[reference]
	if !ok {
		return nil, nil
	}
	delete(f.orders, reference)
	return &o, nil
}

func (f *fakeOrders) SavePayout(_ context.Context, ticketID string, p domain.PayoutDestination) error {
	f.payouts[ticketID] = p
	return nil
}

func (f *fakeOrders) GetPayout(_ context.Context, ticketID string) (*domain.PayoutDestination, error) {
	p, ok := f.payouts[ticketID]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (f *fakeOrders) DeletePayout(_ context.Context, ticketID string) error {
	delete(f.payouts, ticketID)
	return nil
}

type fakePayout struct {
	err   error
	calls int
}

func (f *fakePayout) ValidatePayout(_ context.Context, _, _ string) error {
	f.calls++
	return f.err
}

type fakeCheckout struct {
	calls int
	last  payment.CheckoutRequest
	err   error
}

func (f *fakeCheckout) InitializeCheckout(_ context.Context, req payment.CheckoutRequest) (string, error) {
	f.calls++
	f.last = req
	if f.err != nil {
		return "", f.err
	}
	return "https://pay.example.com/" + req.Reference, nil
}

type fakeTransfer struct {
	calls int
	last  payment.TransferRequest
	err   error
}

func (f *fakeTransfer) Transfer(_ context.Context, req payment.TransferRequest) error {
	f.calls++
	f.last = req
	return f.err
}

// fakeVerifier reports a charge as paid only after markPaid.
type fakeVerifier struct {
	paid map[string]int64
	err  error
}

func (f *fakeVerifier) VerifyTransaction(_ context.Context, reference string) (bool, int64, error) {
	if f.err != nil {
		return false, 0, f.err
	}
	amount, ok := f.paid[reference]
	return ok, amount, nil
}

type fixture struct {
	svc      *Service
	tickets  *fakeTickets
	catalog  *fakeCatalog
	settler  *fakeSettler
	orders   *fakeOrders
	payout   *fakePayout
	checkout *fakeCheckout
	transfer *fakeTransfer
	verify   *fakeVerifier
}

func newFixture() *fixture {
	f := &fixture{
		tickets:  &fakeTickets{byID: map[string]*domain.Ticket{}},
		catalog:  &fakeCatalog{events: map[string]*domain.Event{}, categories: map[string]*domain.TicketCategory{}},
		settler:  &fakeSettler{},
		orders:   newFakeOrders(),
		payout:   &fakePayout{},
		checkout: &fakeCheckout{},
		transfer: &fakeTransfer{},
		verify:   &fakeVerifier{paid: map[string]int64{}},
	}

	f.svc = New(
		f.tickets, f.catalog, f.settler, f.orders, f.payout, f.checkout, f.transfer, f.verify,
		nil, nil,
		Config{MaxResalePrice: 100_000, Currency: "NGN", CallbackURL: "https://app.example.com/payments/confirm"},
	)

	return f
}

func (f *fixture) markPaid(reference string, amount int64) {
	f.verify.paid[reference] = amount
}

func activeTicket(id, eventID, ownerID string) *domain.Ticket {
	return &domain.Ticket{
		ID:      id,
		Code:    "GP-" + id,
		EventID: eventID,
		OwnerID: ownerID,
		Status:  domain.TicketActive,
	}
}

func TestList_RejectsInvalidPrice(t *testing.T) {
	f := newFixture()
	seller := domain.Actor{UserID: "u1"}

	for _, price := range []int64{0, -5, 100_001} {
		_, err := f.svc.List(context.Background(), seller, ListingRequest{
			TicketID:      "t1",
			ResalePrice:   price,
			BankCode:      "058",
			AccountNumber: "0123456789",
		})
		require.ErrorIs(t, err, ErrInvalidResalePrice)
	}

	assert.Zero(t, f.payout.calls, "price check must run before any lookup")
	assert.Zero(t, f.tickets.listCalls)
}

func TestList_RejectsBadPayoutDestination(t *testing.T) {
	f := newFixture()
	f.payout.err = bank.ErrUnknownBankCode
	f.tickets.byID["t1"] = activeTicket("t1", "e1", "u1")

	_, err := f.svc.List(context.Background(), domain.Actor{UserID: "u1"}, ListingRequest{
		TicketID:      "t1",
		ResalePrice:   1000,
		BankCode:      "999",
		AccountNumber: "0123456789",
	})

	require.ErrorIs(t, err, ErrInvalidPayoutDestination)
	assert.Zero(t, f.tickets.listCalls, "no listing write after payout rejection")
}

func TestList_RejectsForeignTicket(t *testing.T) {
	f := newFixture()
	f.tickets.byID["t1"] = activeTicket("t1", "e1", "somebody-else")

	_, err := f.svc.List(context.Background(), domain.Actor{UserID: "u1"}, ListingRequest{
		TicketID:      "t1",
		ResalePrice:   1000,
		BankCode:      "058",
		AccountNumber: "0123456789",
	})

	require.ErrorIs(t, err, ErrTicketNotFound)
	assert.Zero(t, f.tickets.listCalls)
}

func TestList_RejectsUsedAndListedTickets(t *testing.T) {
	f := newFixture()

	used := activeTicket("t-used", "e1", "u1")
	used.Status = domain.TicketUsed
	listed := activeTicket("t-listed", "e1", "u1")
	listed.Status = domain.TicketListed
	f.tickets.byID[used.ID] = used
	f.tickets.byID[listed.ID] = listed

	for _, id := range []string{"t-used", "t-listed"} {
		_, err := f.svc.List(context.Background(), domain.Actor{UserID: "u1"}, ListingRequest{
			TicketID:      id,
			ResalePrice:   1000,
			BankCode:      "058",
			AccountNumber: "0123456789",
		})
		require.ErrorIs(t, err, ErrTicketNotListable)
	}

	assert.Zero(t, f.tickets.listCalls, "unlistable state must fail before the write")
}

func TestList_Success(t *testing.T) {
	f := newFixture()
	f.tickets.byID["t1"] = activeTicket("t1", "e1", "u1")

	listed, err := f.svc.List(context.Background(), domain.Actor{UserID: "u1"}, ListingRequest{
		TicketID:      "t1",
		ResalePrice:   5000,
		BankCode:      "058",
		AccountNumber: "0123456789",
		Narration:     "resale proceeds",
	})

	require.NoError(t, err)
	assert.Equal(t, domain.TicketListed, listed.Status)
	assert.Equal(t, int64(5000), listed.ResalePrice)

	dest, ok := f.orders.payouts["t1"]
	require.True(t, ok, "payout destination captured at listing time")
	assert.Equal(t, "058", dest.BankCode)
	assert.Equal(t, "0123456789", dest.AccountNumber)
}

func TestBuy_RejectsAmbiguousTarget(t *testing.T) {
	f := newFixture()
	buyer := domain.Actor{UserID: "b1", Email: "b1@example.com"}

	_, err := f.svc.Buy(context.Background(), buyer, BuyRequest{Quantity: 1})
	require.ErrorIs(t, err, ErrInvalidPurchaseTarget)

	_, err = f.svc.Buy(context.Background(), buyer, BuyRequest{
		Quantity:         1,
		TicketCategoryID: "c1",
		ResaleTicketID:   "t1",
	})
	require.ErrorIs(t, err, ErrInvalidPurchaseTarget)

	assert.Zero(t, f.checkout.calls)
}

func TestBuyResale_RejectsSelfPurchase(t *testing.T) {
	f := newFixture()

	own := activeTicket("t1", "e1", "b1")
	own.Status = domain.TicketListed
	own.ResalePrice = 1000
	f.tickets.byID["t1"] = own

	prev := activeTicket("t2", "e1", "seller")
	prev.Status = domain.TicketListed
	prev.ResalePrice = 1000
	prev.SoldTo = "b1"
	f.tickets.byID["t2"] = prev

	buyer := domain.Actor{UserID: "b1", Email: "b1@example.com"}

	for _, id := range []string{"t1", "t2"} {
		_, err := f.svc.Buy(context.Background(), buyer, BuyRequest{Quantity: 1, ResaleTicketID: id})
		require.ErrorIs(t, err, ErrSelfPurchaseRejected)
	}

	assert.Zero(t, f.checkout.calls, "no checkout session for a rejected purchase")
	assert.Empty(t, f.orders.orders)
}

func TestBuyResale_RejectsUnlistedTicket(t *testing.T) {
	f := newFixture()
	f.tickets.byID["t1"] = activeTicket("t1", "e1", "seller")

	_, err := f.svc.Buy(context.Background(), domain.Actor{UserID: "b1"}, BuyRequest{
		Quantity:       1,
		ResaleTicketID: "t1",
	})

	require.ErrorIs(t, err, ErrTicketStateConflict)
	assert.Zero(t, f.checkout.calls)
}

func TestBuyResale_OpensCheckoutForBuyerTotal(t *testing.T) {
	f := newFixture()

	listed := activeTicket("t1", "e1", "seller")
	listed.Status = domain.TicketListed
	listed.ResalePrice = 1000
	f.tickets.byID["t1"] = listed

	res, err := f.svc.Buy(context.Background(), domain.Actor{UserID: "b1", Email: "b1@example.com"}, BuyRequest{
		Quantity:       1,
		ResaleTicketID: "t1",
	})

	require.NoError(t, err)
	assert.False(t, res.Confirmed)
	assert.NotEmpty(t, res.CheckoutURL)

	assert.Equal(t, int64(1050), f.checkout.last.Amount, "buyer pays price plus service fee")
	assert.Equal(t, "b1@example.com", f.checkout.last.Email)

	o, ok := f.orders.orders[res.Reference]
	require.True(t, ok)
	assert.Equal(t, domain.OrderResale, o.Kind)
	assert.Equal(t, "t1", o.ResaleTicketID)
	assert.Equal(t, int64(1050), o.Amount)
}

func TestBuyPrimary_RejectsSoldOut(t *testing.T) {
	f := newFixture()
	f.catalog.events["e1"] = &domain.Event{ID: "e1", IsActive: true, MaxTickets: 100, Minted: 100}
	f.catalog.categories["c1"] = &domain.TicketCategory{ID: "c1", EventID: "e1", Price: 1000, MaxTickets: 10, Minted: 10}

	_, err := f.svc.Buy(context.Background(), domain.Actor{UserID: "b1"}, BuyRequest{
		EventID:          "e1",
		TicketCategoryID: "c1",
		Quantity:         1,
	})

	require.ErrorIs(t, err, ErrSoldOut)
	assert.Zero(t, f.checkout.calls)
	assert.Zero(t, f.settler.mintCalls)
}

func TestBuyPrimary_RejectsForeignCategory(t *testing.T) {
	f := newFixture()
	f.catalog.events["e1"] = &domain.Event{ID: "e1", IsActive: true, MaxTickets: 100}
	f.catalog.categories["c9"] = &domain.TicketCategory{ID: "c9", EventID: "other", Price: 1000, MaxTickets: 10}

	_, err := f.svc.Buy(context.Background(), domain.Actor{UserID: "b1"}, BuyRequest{
		EventID:          "e1",
		TicketCategoryID: "c9",
		Quantity:         1,
	})

	require.ErrorIs(t, err, ErrInvalidPurchaseTarget)
}

func TestBuyPrimary_FreeTicketsConfirmDirectly(t *testing.T) {
	f := newFixture()
	f.catalog.events["e1"] = &domain.Event{ID: "e1", IsActive: true, MaxTickets: 100}
	f.catalog.categories["c1"] = &domain.TicketCategory{ID: "c1", EventID: "e1", Price: 0, MaxTickets: 10}

	res, err := f.svc.Buy(context.Background(), domain.Actor{UserID: "b1"}, BuyRequest{
		EventID:          "e1",
		TicketCategoryID: "c1",
		Quantity:         2,
	})

	require.NoError(t, err)
	assert.True(t, res.Confirmed)
	assert.Len(t, res.Tickets, 2)
	assert.Zero(t, f.checkout.calls, "free purchases never open a checkout session")
	assert.Equal(t, 1, f.settler.mintCalls)
}

func TestBuyPrimary_PaidOpensCheckout(t *testing.T) {
	f := newFixture()
	f.catalog.events["e1"] = &domain.Event{ID: "e1", IsActive: true, MaxTickets: 100}
	f.catalog.categories["c1"] = &domain.TicketCategory{ID: "c1", EventID: "e1", Price: 2500, MaxTickets: 10}

	res, err := f.svc.Buy(context.Background(), domain.Actor{UserID: "b1", Email: "b1@example.com"}, BuyRequest{
		EventID:          "e1",
		TicketCategoryID: "c1",
		Quantity:         3,
	})

	require.NoError(t, err)
	assert.False(t, res.Confirmed)
	assert.Equal(t, int64(7500), f.checkout.last.Amount)
	assert.Zero(t, f.settler.mintCalls, "nothing mints before the gateway confirms")

	o := f.orders.orders[res.Reference]
	assert.Equal(t, domain.OrderPrimary, o.Kind)
	assert.Equal(t, 3, o.Quantity)
}

func TestConfirmPayment_UnknownReference(t *testing.T) {
	f := newFixture()
	f.markPaid("tx_missing", 5000)

	_, err := f.svc.ConfirmPayment(context.Background(), "tx_missing")
	require.ErrorIs(t, err, ErrOrderNotFound)
}

func TestConfirmPayment_RejectsUnpaidCharge(t *testing.T) {
	f := newFixture()
	f.catalog.events["e1"] = &domain.Event{ID: "e1", IsActive: true, MaxTickets: 100}
	f.catalog.categories["c1"] = &domain.TicketCategory{ID: "c1", EventID: "e1", Price: 5000, MaxTickets: 10}

	res, err := f.svc.Buy(context.Background(), domain.Actor{UserID: "b1", Email: "b1@example.com"}, BuyRequest{
		EventID:          "e1",
		TicketCategoryID: "c1",
		Quantity:         1,
	})
	require.NoError(t, err)
	require.NotEmpty(t, res.CheckoutURL)

	// the gateway has no successful charge for this reference
	_, err = f.svc.ConfirmPayment(context.Background(), res.Reference)

	require.ErrorIs(t, err, ErrPaymentNotConfirmed)
	assert.Zero(t, f.settler.mintCalls, "nothing mints without a paid charge")
	assert.Contains(t, f.orders.orders, res.Reference, "order survives for a later confirmation")
}

func TestConfirmPayment_RejectsAmountMismatch(t *testing.T) {
	f := newFixture()
	f.orders.orders["tx_1"] = domain.PendingOrder{
		Reference: "tx_1",
		Kind:      domain.OrderPrimary,
		BuyerID:   "b1",
		EventID:   "e1",
		Quantity:  2,
		Amount:    5000,
	}
	f.markPaid("tx_1", 100)

	_, err := f.svc.ConfirmPayment(context.Background(), "tx_1")

	require.ErrorIs(t, err, ErrPaymentNotConfirmed)
	assert.Zero(t, f.settler.mintCalls)
	assert.Contains(t, f.orders.orders, "tx_1", "order goes back into the store")
}

func TestConfirmPayment_MintsPrimaryOrder(t *testing.T) {
	f := newFixture()
	f.orders.orders["tx_1"] = domain.PendingOrder{
		Reference:  "tx_1",
		Kind:       domain.OrderPrimary,
		BuyerID:    "b1",
		EventID:    "e1",
		CategoryID: "c1",
		Quantity:   2,
		Amount:     5000,
	}
	f.markPaid("tx_1", 5000)

	res, err := f.svc.ConfirmPayment(context.Background(), "tx_1")

	require.NoError(t, err)
	assert.True(t, res.Confirmed)
	assert.Len(t, res.Tickets, 2)
	assert.Empty(t, f.orders.orders, "settled order is gone")
}

func TestConfirmPayment_ReplayCannotSettleTwice(t *testing.T) {
	f := newFixture()
	f.orders.orders["tx_1"] = domain.PendingOrder{
		Reference: "tx_1",
		Kind:      domain.OrderPrimary,
		BuyerID:   "b1",
		EventID:   "e1",
		Quantity:  1,
		Amount:    5000,
	}
	f.markPaid("tx_1", 5000)

	_, err := f.svc.ConfirmPayment(context.Background(), "tx_1")
	require.NoError(t, err)

	_, err = f.svc.ConfirmPayment(context.Background(), "tx_1")
	require.ErrorIs(t, err, ErrOrderNotFound)
	assert.Equal(t, 1, f.settler.mintCalls, "the replayed callback mints nothing")
}

func TestConfirmPayment_SettlesResaleAndTransfers(t *testing.T) {
	f := newFixture()

	listed := activeTicket("t1", "e1", "seller")
	listed.Status = domain.TicketListed
	listed.ResalePrice = 1000
	f.tickets.byID["t1"] = listed

	f.orders.orders["rs_1"] = domain.PendingOrder{
		Reference:      "rs_1",
		Kind:           domain.OrderResale,
		BuyerID:        "b1",
		EventID:        "e1",
		ResaleTicketID: "t1",
		Quantity:       1,
		Amount:         1050,
	}
	f.orders.payouts["t1"] = domain.PayoutDestination{BankCode: "058", AccountNumber: "0123456789"}
	f.markPaid("rs_1", 1050)

	res, err := f.svc.ConfirmPayment(context.Background(), "rs_1")

	require.NoError(t, err)
	assert.True(t, res.Confirmed)

	assert.Equal(t, int64(1050), f.settler.lastSettle.Amount, "ledger records the full buyer charge")
	assert.Equal(t, int64(50), f.settler.lastSettle.Commission)
	assert.Equal(t, int64(950), f.settler.lastSettle.SellerNet)

	require.Equal(t, 1, f.transfer.calls)
	assert.Equal(t, int64(950), f.transfer.last.Amount, "seller receives the 95% leg")
	assert.Equal(t, "0123456789", f.transfer.last.AccountNumber)
	assert.Empty(t, f.settler.credits, "no wallet fallback when the transfer succeeds")
	assert.Empty(t, f.orders.payouts)
}

func TestConfirmPayment_FallsBackToWalletOnTransferFailure(t *testing.T) {
	f := newFixture()

	listed := activeTicket("t1", "e1", "seller")
	listed.Status = domain.TicketListed
	listed.ResalePrice = 1000
	f.tickets.byID["t1"] = listed

	f.orders.orders["rs_1"] = domain.PendingOrder{
		Reference:      "rs_1",
		Kind:           domain.OrderResale,
		BuyerID:        "b1",
		EventID:        "e1",
		ResaleTicketID: "t1",
		Quantity:       1,
		Amount:         1050,
	}
	f.orders.payouts["t1"] = domain.PayoutDestination{BankCode: "058", AccountNumber: "0123456789"}
	f.transfer.err = errors.New("gateway down")
	f.markPaid("rs_1", 1050)

	_, err := f.svc.ConfirmPayment(context.Background(), "rs_1")

	require.NoError(t, err)
	assert.Equal(t, int64(950), f.settler.credits["seller"], "proceeds land in the wallet instead")
}

func TestConfirmPayment_ResaleStateConflictSurfaces(t *testing.T) {
	f := newFixture()

	listed := activeTicket("t1", "e1", "seller")
	listed.Status = domain.TicketListed
	listed.ResalePrice = 1000
	f.tickets.byID["t1"] = listed

	f.orders.orders["rs_1"] = domain.PendingOrder{
		Reference:      "rs_1",
		Kind:           domain.OrderResale,
		BuyerID:        "b1",
		EventID:        "e1",
		ResaleTicketID: "t1",
		Quantity:       1,
		Amount:         1050,
	}
	f.settler.settleErr = repository.ErrTicketStateConflict
	f.markPaid("rs_1", 1050)

	_, err := f.svc.ConfirmPayment(context.Background(), "rs_1")
	require.ErrorIs(t, err, ErrTicketStateConflict)
	assert.Contains(t, f.orders.orders, "rs_1", "a failed settlement keeps the order retryable")
}

func TestListingsByEvent_CarriesQuotes(t *testing.T) {
	f := newFixture()

	listed := activeTicket("t1", "e1", "seller")
	listed.Status = domain.TicketListed
	listed.ResalePrice = 1000
	f.tickets.byID["t1"] = listed
	f.tickets.byID["t2"] = activeTicket("t2", "e1", "u2")

	out, err := f.svc.ListingsByEvent(context.Background(), "e1")

	require.NoError(t, err)
	require.Len(t, out, 1, "only listed tickets appear")
	assert.Equal(t, "t1", out[0].ID)
	assert.Equal(t, int64(950), out[0].Quote.SellerPayout)
	assert.Equal(t, int64(1050), out[0].Quote.BuyerTotal)
}

func TestMyTickets(t *testing.T) {
	f := newFixture()
	f.tickets.byID["t1"] = activeTicket("t1", "e1", "u1")
	f.tickets.byID["t2"] = activeTicket("t2", "e2", "u2")

	out, err := f.svc.MyTickets(context.Background(), domain.Actor{UserID: "u1"})

	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "t1", out[0].ID)
}
