// Package verify issues QR verification payloads for ticket holders and
// checks them at the gate. Admission is a single conditional state change:
// a ticket redeems exactly once, and only while it is active.
package verify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gatepass-ng/gatepass/internal/domain"
	"github.com/gatepass-ng/gatepass/internal/monitoring"
	"github.com/gatepass-ng/gatepass/internal/repository"
	"github.com/gatepass-ng/gatepass/internal/token"
)

// TicketStore is the slice of the primary store verification needs.
type TicketStore interface {
	GetTicket(ctx context.Context, id string) (*domain.Ticket, error)
	Redeem(ctx context.Context, ticketID, code, eventID string) (*domain.Ticket, error)
}

type Config struct {
	// Origin is the public base URL verification links resolve to,
	// e.g. "https://gatepass.ng".
	Origin string
}

type Service struct {
	tickets TicketStore
	gen     token.CodeGenerator
	cfg     Config
}

func New(tickets TicketStore, gen token.CodeGenerator, cfg Config) *Service {
	if gen == nil {
		gen = token.DisplayCodeGenerator{}
	}

	return &Service{tickets: tickets, gen: gen, cfg: cfg}
}

// IssueToken builds the verification URL embedded in a ticket's QR code.
// Only the current owner can request it, and only for an active ticket: a
// listed ticket's admission right is in escrow, a used one has none left.
func (s *Service) IssueToken(ctx context.Context, actor domain.Actor, ticketID string) (string, error) {
	const op = "service.verify.IssueToken"

	t, err := s.tickets.GetTicket(ctx, ticketID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", fmt.Errorf("%s:%w", op, ErrTicketNotFound)
		}
		return "", fmt.Errorf("%s:%w", op, err)
	}

	if t.OwnerID != actor.UserID {
		return "", fmt.Errorf("%s:%w", op, ErrTicketNotFound)
	}

	if t.Status != domain.TicketActive {
		return "", fmt.Errorf("%s:%w", op, ErrTicketNotIssuable)
	}

	now := time.Now()

	return token.Encode(s.cfg.Origin, token.Token{
		TicketID:         t.ID,
		EventID:          t.EventID,
		UserID:           t.OwnerID,
		Code:             t.Code,
		VerificationCode: s.gen.Generate(t.Code, t.EventID, t.OwnerID, now),
		Timestamp:        now.UnixMilli(),
	}), nil
}

// Request identifies the ticket a scanner wants to admit.
type Request struct {
	TicketID string `json:"ticketId"`
	Code     string `json:"code"`
	EventID  string `json:"eventId"`
}

// Result is the scanner-facing outcome. Valid is false for every failure
// mode the scanner does not need to distinguish: wrong code, wrong event,
// unknown ticket, already used, or currently listed.
type Result struct {
	Valid  bool               `json:"isValid"`
	Reason string             `json:"reason,omitempty"`
	Ticket *domain.TicketView `json:"ticket,omitempty"`
}

// Verify redeems the ticket for entry. The store-side conditional update is
// the only arbiter: concurrent scans of the same ticket admit exactly one.
func (s *Service) Verify(ctx context.Context, req Request) (*Result, error) {
	const op = "service.verify.Verify"

	if req.TicketID == "" || req.Code == "" || req.EventID == "" {
		return &Result{Valid: false, Reason: "invalid ticket data"}, nil
	}

	t, err := s.tickets.Redeem(ctx, req.TicketID, req.Code, req.EventID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return &Result{Valid: false, Reason: "ticket not found"}, nil
		case errors.Is(err, repository.ErrTicketStateConflict):
			return &Result{Valid: false, Reason: "ticket already used or listed"}, nil
		default:
			return nil, fmt.Errorf("%s:%w", op, err)
		}
	}

	monitoring.TicketRedeemed()

	view := t.View()

	return &Result{Valid: true, Ticket: &view}, nil
}

// VerifyData redeems from a raw QR `data` parameter. Malformed payloads are
// an invalid result, never an error.
func (s *Service) VerifyData(ctx context.Context, data string) (*Result, error) {
	tok := token.Decode(data)
	if tok == nil {
		return &Result{Valid: false, Reason: "invalid ticket data"}, nil
	}

	return s.Verify(ctx, Request{
		TicketID: tok.TicketID,
		Code:     tok.Code,
		EventID:  tok.EventID,
	})
}
