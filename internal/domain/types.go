package domain

import (
	"time"
)

type Role string

const (
	RoleUser       Role = "USER"
	RoleOrganizer  Role = "ORGANIZER"
	RoleAdmin      Role = "ADMIN"
	RoleSuperAdmin Role = "SUPERADMIN"
)

// Actor identifies the caller of an operation. It is passed explicitly into
// every service call instead of being read from ambient request state.
type Actor struct {
	UserID string
	Email  string
	Role   Role
}

func (a Actor) IsOrganizer() bool {
	return a.Role == RoleOrganizer || a.Role == RoleAdmin || a.Role == RoleSuperAdmin
}

type Event struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	Category    string    `json:"category"`
	BannerURL   string    `json:"bannerUrl"`
	Price       int64     `json:"price"`
	Date        time.Time `json:"date"`
	IsActive    bool      `json:"isActive"`
	OrganizerID string    `json:"organizerId"`
	MaxTickets  int       `json:"maxTickets"`
	Minted      int       `json:"minted"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Remaining is the number of tickets still available for primary purchase.
func (e *Event) Remaining() int {
	return e.MaxTickets - e.Minted
}

func (e *Event) SoldOut() bool {
	return e.Remaining() <= 0
}

type TicketCategory struct {
	ID         string `json:"id"`
	EventID    string `json:"eventId"`
	Name       string `json:"name"`
	Price      int64  `json:"price"`
	MaxTickets int    `json:"maxTickets"`
	Minted     int    `json:"minted"`
}

func (c *TicketCategory) SoldOut() bool {
	return c.MaxTickets-c.Minted <= 0
}

type Bank struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

type TransactionType string

const (
	TxWithdraw TransactionType = "WITHDRAW"
	TxPurchase TransactionType = "PURCHASE"
	TxResale   TransactionType = "RESALE"
)

type TransactionStatus string

const (
	TxPending TransactionStatus = "PENDING"
	TxSuccess TransactionStatus = "SUCCESS"
	TxFailed  TransactionStatus = "FAILED"
)

type OrderKind string

const (
	OrderPrimary OrderKind = "PRIMARY"
	OrderResale  OrderKind = "RESALE"
)

// PendingOrder is the short-lived record of a purchase awaiting payment
// confirmation. It lives in Redis between checkout initialization and the
// gateway callback.
type PendingOrder struct {
	Reference      string    `json:"reference"`
	Kind           OrderKind `json:"kind"`
	BuyerID        string    `json:"buyerId"`
	BuyerEmail     string    `json:"buyerEmail"`
	EventID        string    `json:"eventId"`
	CategoryID     string    `json:"categoryId,omitempty"`
	ResaleTicketID string    `json:"resaleTicketId,omitempty"`
	Quantity       int       `json:"quantity"`
	Amount         int64     `json:"amount"`
}

// PayoutDestination is where a seller wants resale proceeds sent. Captured at
// listing time and consumed at settlement.
type PayoutDestination struct {
	BankCode      string `json:"bankCode"`
	AccountNumber string `json:"accountNumber"`
	Narration     string `json:"narration,omitempty"`
}

type Transaction struct {
	ID        string            `json:"id"`
	UserID    string            `json:"userId"`
	Reference string            `json:"reference"`
	Type      TransactionType   `json:"type"`
	Amount    int64             `json:"amount"`
	Status    TransactionStatus `json:"status"`
	EventID   string            `json:"eventId,omitempty"`
	CreatedAt time.Time         `json:"createdAt"`
}
