package models

import (
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/v2/bson"
)

type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusPaid      OrderStatus = "paid"
	StatusConfirmed OrderStatus = "confirmed"
)

func (s OrderStatus) rank() int {
	switch s {
	case StatusPending:
		return 1
	case StatusPaid:
		return 2
	case StatusConfirmed:
		return 3
	default:
		return 0
	}
}

func (s OrderStatus) Valid() bool { return s.rank() > 0 }

// CanAdvanceTo reports whether next is the step directly after s. Orders only move forward.
func (s OrderStatus) CanAdvanceTo(next OrderStatus) bool {
	return s.Valid() && next.rank() == s.rank()+1
}

type PaymentMethod string

const (
	MethodBankTransfer PaymentMethod = "bank_transfer"
	MethodPayPal       PaymentMethod = "paypal"
	MethodMBWay        PaymentMethod = "mbway"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case MethodBankTransfer, MethodPayPal, MethodMBWay:
		return true
	}
	return false
}

// BankDetails is copied into each order so historical orders keep the account
// they were issued against.
type BankDetails struct {
	IBAN        string `json:"iban" bson:"iban"`
	BIC         string `json:"bic" bson:"bic"`
	Beneficiary string `json:"beneficiary" bson:"beneficiary"`
	BankName    string `json:"bank_name" bson:"bank_name"`
	BankAddress string `json:"bank_address" bson:"bank_address"`
	Currency    string `json:"currency" bson:"currency"`
}

// CustomerData is what the checkout form submits alongside the cart.
type CustomerData struct {
	Email         string        `json:"email" binding:"omitempty,max=254"`
	Name          string        `json:"nome" binding:"omitempty,max=100"`
	Phone         string        `json:"telefone"`
	Notes         string        `json:"notes" binding:"max=1000"`
	PaymentMethod PaymentMethod `json:"payment_method"`
	MBWayPhone    string        `json:"mbway_phone"`
}

// Order represents a checkout submission awaiting or having received payment
type Order struct {
	ID                bson.ObjectID   `json:"id" bson:"_id,omitempty"`
	UID               string          `json:"uid" bson:"uid"`
	PaymentReference  string          `json:"payment_reference" bson:"payment_reference"`
	CustomerEmail     string          `json:"customer_email" bson:"customer_email"`
	CustomerName      string          `json:"customer_name" bson:"customer_name"`
	CustomerPhone     string          `json:"customer_phone" bson:"customer_phone"`
	Items             []CartItem      `json:"items" bson:"items"`
	TotalAmount       decimal.Decimal `json:"total_amount" bson:"total_amount"`
	PaymentFee        decimal.Decimal `json:"payment_fee" bson:"payment_fee"`
	AmountDue         decimal.Decimal `json:"amount_due" bson:"amount_due"`
	Status            OrderStatus     `json:"status" bson:"status"`
	PaymentMethod     PaymentMethod   `json:"payment_method" bson:"payment_method"`
	MBWayPhone        string          `json:"mbway_phone,omitempty" bson:"mbway_phone,omitempty"`
	BankDetails       BankDetails     `json:"bank_details" bson:"bank_details"`
	ProofOfPaymentURL *string         `json:"proof_of_payment_url" bson:"proof_of_payment_url"`
	ProofUploadedAt   *time.Time      `json:"proof_uploaded_at,omitempty" bson:"proof_uploaded_at,omitempty"`
	PaidAt            *time.Time      `json:"paid_at,omitempty" bson:"paid_at,omitempty"`
	ConfirmedAt       *time.Time      `json:"confirmed_at,omitempty" bson:"confirmed_at,omitempty"`
	Notes             string          `json:"notes" bson:"notes"`
	CreatedAt         time.Time       `json:"created_at" bson:"created_at"`
	ExpiresAt         time.Time       `json:"expires_at" bson:"expires_at"`
	UpdatedAt         time.Time       `json:"updated_at" bson:"updated_at"`
}

// SetTimestamps sets created_at and expires_at on first call and always updates updated_at
func (o *Order) SetTimestamps(now time.Time, ttl time.Duration) {
	if o.CreatedAt.IsZero() {
		o.CreatedAt = now
		o.ExpiresAt = now.Add(ttl)
	}
	o.UpdatedAt = now
}

// UpdateStatus moves the order one step forward and stamps the matching
// timeline field. It returns false and leaves the order untouched otherwise.
func (o *Order) UpdateStatus(next OrderStatus, now time.Time) bool {
	if !o.Status.CanAdvanceTo(next) {
		return false
	}
	o.Status = next
	switch next {
	case StatusPaid:
		o.PaidAt = &now
	case StatusConfirmed:
		o.ConfirmedAt = &now
	}
	o.UpdatedAt = now
	return true
}

// GetItemCount returns the total number of units in the order
func (o *Order) GetItemCount() int {
	var count int
	for _, item := range o.Items {
		count += item.Quantity
	}
	return count
}

func (o *Order) HasBeenPaid() bool {
	return o.Status == StatusPaid || o.Status == StatusConfirmed
}

func (o *Order) HasProof() bool {
	return o.ProofOfPaymentURL != nil && *o.ProofOfPaymentURL != ""
}

// IsExpired reports a still-pending order past its payment window. Nothing
// acts on it automatically.
func (o *Order) IsExpired(now time.Time) bool {
	return o.Status == StatusPending && !o.ExpiresAt.IsZero() && now.After(o.ExpiresAt)
}

// OrderReceipt is returned by checkout once the order is stored.
type OrderReceipt struct {
	OrderID          string          `json:"order_id"`
	PaymentReference string          `json:"payment_reference"`
	TotalAmount      decimal.Decimal `json:"total_amount"`
	AmountDue        decimal.Decimal `json:"amount_due"`
	Order            *Order          `json:"order"`
	Instructions     string          `json:"instructions"`
	PayPalLink       string          `json:"paypal_link,omitempty"`
}

// OrderStatusView is the public projection served by the status endpoint.
type OrderStatusView struct {
	Order   *Order `json:"order"`
	Expired bool   `json:"expired"`
}

// StatusCount is one bucket of the admin status summary.
type StatusCount struct {
	Status      OrderStatus     `json:"status" bson:"_id"`
	Count       int             `json:"count" bson:"count"`
	TotalAmount decimal.Decimal `json:"total_amount" bson:"total_amount"`
}
