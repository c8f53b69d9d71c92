// Package payment is the boundary to the external payment processor. The
// service layer only ever sees the Provider interface; checkout sessions and
// bank transfers are executed by the gateway, never locally.
package payment

import (
	"context"
)

type CheckoutRequest struct {
	Reference   string
	Email       string
	Amount      int64 // minor currency units
	Currency    string
	CallbackURL string
}

type TransferRequest struct {
	Reference     string
	Amount        int64
	BankCode      string
	AccountNumber string
	Narration     string
}

type Provider interface {
	// InitializeCheckout opens a hosted checkout session and returns the URL
	// the buyer must be redirected to.
	InitializeCheckout(ctx context.Context, req CheckoutRequest) (string, error)

	// VerifyTransaction looks a charge up by reference and reports whether
	// it was actually paid, and for how much. Settlement must never trust
	// the callback alone.
	VerifyTransaction(ctx context.Context, reference string) (paid bool, amount int64, err error)

	// Transfer pays out to a seller's bank account.
	Transfer(ctx context.Context, req TransferRequest) error
}
