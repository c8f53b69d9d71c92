package verify

import "errors"

var (
	// ErrTicketNotFound is returned when no ticket matches the request, or
	// when the caller has no right to see it.
	ErrTicketNotFound = errors.New("ticket not found")

	// ErrTicketNotIssuable is returned when a QR payload is requested for a
	// ticket that cannot currently admit anyone.
	ErrTicketNotIssuable = errors.New("ticket not issuable")
)
