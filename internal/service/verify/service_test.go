package verify

import (
	"context"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatepass-ng/gatepass/internal/domain"
	"github.com/gatepass-ng/gatepass/internal/repository"
	"github.com/gatepass-ng/gatepass/internal/token"
)

type fakeTickets struct {
	byID        map[string]*domain.Ticket
	redeemCalls int
}

func (f *fakeTickets) GetTicket(_ context.Context, id string) (*domain.Ticket, error) {
	t, ok := f.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (f *fakeTickets) Redeem(_ context.Context, ticketID, code, eventID string) (*domain.Ticket, error) {
	f.redeemCalls++

	t, ok := f.byID[ticketID]
	if !ok || t.Code != code || t.EventID != eventID {
		return nil, repository.ErrNotFound
	}
	if t.Status != domain.TicketActive {
		return nil, repository.ErrTicketStateConflict
	}

	t.Status = domain.TicketUsed
	cp := *t
	return &cp, nil
}

func newService(tickets *fakeTickets) *Service {
	return New(tickets, token.DisplayCodeGenerator{}, Config{Origin: "https://gatepass.ng"})
}

func active(id, code, eventID, ownerID string) *domain.Ticket {
	return &domain.Ticket{ID: id, Code: code, EventID: eventID, OwnerID: ownerID, Status: domain.TicketActive}
}

func TestIssueToken_RoundTripsThroughDecode(t *testing.T) {
	f := &fakeTickets{byID: map[string]*domain.Ticket{
		"t1": active("t1", "GP-AAA", "e1", "u1"),
	}}
	svc := newService(f)

	link, err := svc.IssueToken(context.Background(), domain.Actor{UserID: "u1"}, "t1")
	require.NoError(t, err)

	require.True(t, strings.HasPrefix(link, "https://gatepass.ng/verify-ticket?data="))

	tok := token.DecodeURL(link)
	require.NotNil(t, tok)
	assert.Equal(t, "t1", tok.TicketID)
	assert.Equal(t, "e1", tok.EventID)
	assert.Equal(t, "u1", tok.UserID)
	assert.Equal(t, "GP-AAA", tok.Code)
	assert.NotEmpty(t, tok.VerificationCode)
	assert.Positive(t, tok.Timestamp)
}

func TestIssueToken_OwnerOnly(t *testing.T) {
	f := &fakeTickets{byID: map[string]*domain.Ticket{
		"t1": active("t1", "GP-AAA", "e1", "u1"),
	}}
	svc := newService(f)

	_, err := svc.IssueToken(context.Background(), domain.Actor{UserID: "intruder"}, "t1")
	require.ErrorIs(t, err, ErrTicketNotFound)
}

func TestIssueToken_RefusesListedAndUsed(t *testing.T) {
	listed := active("t1", "GP-AAA", "e1", "u1")
	listed.Status = domain.TicketListed
	used := active("t2", "GP-BBB", "e1", "u1")
	used.Status = domain.TicketUsed

	f := &fakeTickets{byID: map[string]*domain.Ticket{"t1": listed, "t2": used}}
	svc := newService(f)

	for _, id := range []string{"t1", "t2"} {
		_, err := svc.IssueToken(context.Background(), domain.Actor{UserID: "u1"}, id)
		require.ErrorIs(t, err, ErrTicketNotIssuable)
	}
}

func TestVerify_AdmitsActiveTicketOnce(t *testing.T) {
	f := &fakeTickets{byID: map[string]*domain.Ticket{
		"t1": active("t1", "GP-AAA", "e1", "u1"),
	}}
	svc := newService(f)

	req := Request{TicketID: "t1", Code: "GP-AAA", EventID: "e1"}

	res, err := svc.Verify(context.Background(), req)
	require.NoError(t, err)
	require.True(t, res.Valid)
	require.NotNil(t, res.Ticket)
	assert.True(t, res.Ticket.IsUsed)

	// second scan of the same ticket is refused
	res, err = svc.Verify(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, res.Valid)
}

func TestVerify_WrongCodeOrEvent(t *testing.T) {
	f := &fakeTickets{byID: map[string]*domain.Ticket{
		"t1": active("t1", "GP-AAA", "e1", "u1"),
	}}
	svc := newService(f)

	cases := []Request{
		{TicketID: "t1", Code: "GP-ZZZ", EventID: "e1"},
		{TicketID: "t1", Code: "GP-AAA", EventID: "other"},
		{TicketID: "missing", Code: "GP-AAA", EventID: "e1"},
	}

	for _, req := range cases {
		res, err := svc.Verify(context.Background(), req)
		require.NoError(t, err)
		assert.False(t, res.Valid)
	}
}

func TestVerify_ListedTicketDoesNotAdmit(t *testing.T) {
	listed := active("t1", "GP-AAA", "e1", "u1")
	listed.Status = domain.TicketListed
	f := &fakeTickets{byID: map[string]*domain.Ticket{"t1": listed}}
	svc := newService(f)

	res, err := svc.Verify(context.Background(), Request{TicketID: "t1", Code: "GP-AAA", EventID: "e1"})
	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.Equal(t, domain.TicketListed, listed.Status, "state is untouched")
}

func TestVerifyData_MalformedPayloadIsInvalidNotError(t *testing.T) {
	f := &fakeTickets{byID: map[string]*domain.Ticket{}}
	svc := newService(f)

	for _, data := range []string{"", "not-json", "%zz", url.QueryEscape(`{"ticketId":"t1"}`)} {
		res, err := svc.VerifyData(context.Background(), data)
		require.NoError(t, err)
		assert.False(t, res.Valid)
	}

	assert.Zero(t, f.redeemCalls, "nothing reaches the store for malformed data")
}

func TestVerifyData_ValidPayload(t *testing.T) {
	f := &fakeTickets{byID: map[string]*domain.Ticket{
		"t1": active("t1", "GP-AAA", "e1", "u1"),
	}}
	svc := newService(f)

	link, err := svc.IssueToken(context.Background(), domain.Actor{UserID: "u1"}, "t1")
	require.NoError(t, err)

	u, err := url.Parse(link)
	require.NoError(t, err)

	res, err := svc.VerifyData(context.Background(), url.QueryEscape(u.Query().Get("data")))
	require.NoError(t, err)
	assert.True(t, res.Valid)
}
