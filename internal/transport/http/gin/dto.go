package httpgin

import "time"

type CreateEventRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Location    string `json:"location"`
	Category    string `json:"category"`
	BannerURL   string `json:"bannerUrl"`
	Price       int64  `json:"price" binding:"gte=0"`
	Date        string `json:"date" binding:"required"`
	MaxTickets  int    `json:"maxTickets" binding:"required,gt=0"`
}

type CreateCategoryRequest struct {
	Name       string `json:"name" binding:"required"`
	Price      int64  `json:"price" binding:"gte=0"`
	MaxTickets int    `json:"maxTickets" binding:"required,gt=0"`
}

type ListTicketRequest struct {
	TicketID      string `json:"ticketId" binding:"required"`
	ResalePrice   int64  `json:"resalePrice" binding:"required,gt=0"`
	BankCode      string `json:"bankCode" binding:"required"`
	AccountNumber string `json:"accountNumber" binding:"required"`
	Narration     string `json:"narration"`
}

// BuyTicketRequest carries both purchase shapes; exactly one of
// ticketCategoryId and resaleTicketId must be set.
type BuyTicketRequest struct {
	EventID          string `json:"eventId"`
	Quantity         int    `json:"quantity" binding:"required,gt=0"`
	TicketCategoryID string `json:"ticketCategoryId"`
	ResaleTicketID   string `json:"resaleTicketId"`
}

type VerifyTicketRequest struct {
	TicketID string `json:"ticketId" binding:"required"`
	Code     string `json:"code" binding:"required"`
	EventID  string `json:"eventId" binding:"required"`
}

type WithdrawRequest struct {
	Amount        int64  `json:"amount" binding:"required,gt=0"`
	BankCode      string `json:"bankCode" binding:"required"`
	AccountNumber string `json:"accountNumber" binding:"required"`
}

type ConfirmPaymentRequest struct {
	Reference string `json:"reference" binding:"required"`
}

type IssueTokenResponse struct {
	URL string `json:"url"`
}

type ToggleActiveResponse struct {
	ID       string `json:"id"`
	IsActive bool   `json:"isActive"`
}

type BalanceResponse struct {
	Balance int64 `json:"balance"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func parseRFC3339(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}
