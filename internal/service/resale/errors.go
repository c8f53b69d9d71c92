package resale

import "errors"

var (
	// local precondition failures, raised before any store or network call
	ErrTicketNotListable        = errors.New("ticket cannot be listed for resale")
	ErrInvalidResalePrice       = errors.New("invalid resale price")
	ErrInvalidPayoutDestination = errors.New("invalid payout destination")
	ErrSelfPurchaseRejected     = errors.New("cannot purchase your own ticket")
	ErrInvalidPurchaseTarget    = errors.New("exactly one of ticketCategoryId or resaleTicketId must be set")
	ErrInvalidQuantity          = errors.New("invalid quantity")
	ErrSoldOut                  = errors.New("event is sold out")

	// surfaced after a store round trip; the store's verdict wins over any
	// locally cached ticket state
	ErrTicketStateConflict = errors.New("ticket state has changed, refresh and retry")

	ErrTicketNotFound = errors.New("ticket not found")
	ErrEventNotFound  = errors.New("event not found")
	ErrOrderNotFound  = errors.New("order not found")

	// the gateway does not report a successful charge for the reference, or
	// the paid amount does not match the order
	ErrPaymentNotConfirmed = errors.New("payment not confirmed by gateway")
)
