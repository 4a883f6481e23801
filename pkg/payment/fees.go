package payment

import (
	"github.com/shopspring/decimal"

	"musicosbooking.pt/api/pkg/models"
)

var (
	payPalRate  = decimal.RequireFromString("0.034")
	payPalFixed = decimal.RequireFromString("0.35")
)

type Quote struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Fee      decimal.Decimal `json:"fee"`
	Total    decimal.Decimal `json:"total"`
}

// Fee is the surcharge for paying amount with method, rounded to cents.
// Bank transfer and MB WAY are free; PayPal costs 3.4% + €0.35.
func Fee(amount decimal.Decimal, method models.PaymentMethod) decimal.Decimal {
	if method != models.MethodPayPal || !amount.IsPositive() {
		return decimal.Zero
	}
	return amount.Mul(payPalRate).Add(payPalFixed).Round(2)
}

func QuoteFor(amount decimal.Decimal, method models.PaymentMethod) Quote {
	fee := Fee(amount, method)
	return Quote{Subtotal: amount, Fee: fee, Total: amount.Add(fee)}
}
