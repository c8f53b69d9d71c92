package domain

import (
	"time"
)

type TicketStatus string

const (
	TicketActive TicketStatus = "ACTIVE"
	TicketListed TicketStatus = "LISTED"
	TicketUsed   TicketStatus = "USED"
)

// StatusFromFlags collapses the legacy isUsed/isListed flag pair into a single
// status. The flags can arrive set simultaneously from older records; used
// takes precedence over listed so the ambiguity resolves deterministically.
func StatusFromFlags(isUsed, isListed bool) TicketStatus {
	switch {
	case isUsed:
		return TicketUsed
	case isListed:
		return TicketListed
	default:
		return TicketActive
	}
}

// CanTransitionTo reports whether the status transition is legal:
// ACTIVE→LISTED, LISTED→ACTIVE (ownership transfer on resale) and
// ACTIVE→USED. USED is terminal.
func (s TicketStatus) CanTransitionTo(next TicketStatus) bool {
	switch s {
	case TicketActive:
		return next == TicketListed || next == TicketUsed
	case TicketListed:
		return next == TicketActive
	default:
		return false
	}
}

// Display returns the user-facing status text. Precedence order matters:
// Used wins over Listed wins over Active.
func (s TicketStatus) Display() string {
	switch s {
	case TicketUsed:
		return "Used"
	case TicketListed:
		return "Listed for Resale"
	default:
		return "Active"
	}
}

type Ticket struct {
	ID               string
	Code             string
	EventID          string
	OwnerID          string
	Status           TicketStatus
	ResalePrice      int64
	ResaleCount      int
	ResaleCommission int64
	ListedAt         *time.Time
	SoldTo           string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Listable reports whether the current owner may put the ticket up for
// resale. Used and already-listed tickets never qualify.
func (t *Ticket) Listable() bool {
	return t.Status == TicketActive
}

func (t *Ticket) IsUsed() bool   { return t.Status == TicketUsed }
func (t *Ticket) IsListed() bool { return t.Status == TicketListed }

// TicketView is the transport representation of a Ticket. It mirrors the
// wire contract consumed by existing clients, which still expect the
// isUsed/isListed flag pair alongside the status string.
type TicketView struct {
	ID               string     `json:"id"`
	Code             string     `json:"code"`
	EventID          string     `json:"eventId"`
	UserID           string     `json:"userId"`
	Status           string     `json:"status"`
	StatusText       string     `json:"statusText"`
	IsUsed           bool       `json:"isUsed"`
	IsListed         bool       `json:"isListed"`
	ResalePrice      int64      `json:"resalePrice,omitempty"`
	ResaleCount      int        `json:"resaleCount"`
	ResaleCommission int64      `json:"resaleCommission,omitempty"`
	ListedAt         *time.Time `json:"listedAt,omitempty"`
	SoldTo           string     `json:"soldTo,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

// View derives the transport representation. The flag pair is computed from
// the status enum, so isUsed && isListed can never both be true.
func (t *Ticket) View() TicketView {
	return TicketView{
		ID:               t.ID,
		Code:             t.Code,
		EventID:          t.EventID,
		UserID:           t.OwnerID,
		Status:           string(t.Status),
		StatusText:       t.Status.Display(),
		IsUsed:           t.IsUsed(),
		IsListed:         t.IsListed(),
		ResalePrice:      t.ResalePrice,
		ResaleCount:      t.ResaleCount,
		ResaleCommission: t.ResaleCommission,
		ListedAt:         t.ListedAt,
		SoldTo:           t.SoldTo,
		CreatedAt:        t.CreatedAt,
		UpdatedAt:        t.UpdatedAt,
	}
}
