package resale

import (
	"github.com/shopspring/decimal"
)

// Platform fee model: two independent 5% legs.
//
// The seller is quoted round(price * 0.95) at listing time and the buyer pays
// price * 1.05 at purchase time. The legs are never netted into a combined
// figure; the platform's total take across both sides is asymmetric on
// purpose. Commission is derived as price minus the seller payout so the two
// sides of the seller leg always sum back to the listed price exactly.
var (
	sellerRate = decimal.RequireFromString("0.95")
	feeRate    = decimal.RequireFromString("0.05")
)

// SellerPayout is the amount the seller receives for a resale at price,
// rounded to the nearest currency unit.
func SellerPayout(price int64) int64 {
	return decimal.NewFromInt(price).Mul(sellerRate).Round(0).IntPart()
}

// Commission is the platform's cut of the seller leg.
func Commission(price int64) int64 {
	return price - SellerPayout(price)
}

// ServiceFee is the buyer-side 5% surcharge.
func ServiceFee(price int64) int64 {
	return decimal.NewFromInt(price).Mul(feeRate).Round(0).IntPart()
}

// BuyerTotal is what the buyer is charged: the listed price plus the service
// fee.
func BuyerTotal(price int64) int64 {
	return price + ServiceFee(price)
}

// Quote bundles all fee figures for one listing price, so the listing-time
// display and the purchase-time charge always come from the same arithmetic.
type Quote struct {
	Price        int64 `json:"price"`
	SellerPayout int64 `json:"sellerPayout"`
	Commission   int64 `json:"commission"`
	ServiceFee   int64 `json:"serviceFee"`
	BuyerTotal   int64 `json:"buyerTotal"`
}

func QuoteFor(price int64) Quote {
	return Quote{
		Price:        price,
		SellerPayout: SellerPayout(price),
		Commission:   Commission(price),
		ServiceFee:   ServiceFee(price),
		BuyerTotal:   BuyerTotal(price),
	}
}
