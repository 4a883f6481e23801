package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type EventType string

const (
	EventOrderCreated       EventType = "order.created"
	EventOrderProofUploaded EventType = "order.proof_uploaded"
	EventOrderPaid          EventType = "order.paid"
	EventOrderConfirmed     EventType = "order.confirmed"
)

// OrderEvent is published on every order state change. The routing key is Type.
type OrderEvent struct {
	Type             EventType       `json:"type"`
	OrderID          string          `json:"order_id"`
	UID              string          `json:"uid"`
	PaymentReference string          `json:"payment_reference"`
	CustomerEmail    string          `json:"customer_email"`
	CustomerName     string          `json:"customer_name"`
	PaymentMethod    PaymentMethod   `json:"payment_method"`
	Status           OrderStatus     `json:"status"`
	TotalAmount      decimal.Decimal `json:"total_amount"`
	AmountDue        decimal.Decimal `json:"amount_due"`
	Instructions     string          `json:"instructions,omitempty"`
	ProofURL         string          `json:"proof_url,omitempty"`
	OccurredAt       time.Time       `json:"occurred_at"`
}

func NewOrderEvent(t EventType, o *Order, at time.Time) OrderEvent {
	ev := OrderEvent{
		Type:             t,
		OrderID:          o.ID.Hex(),
		UID:              o.UID,
		PaymentReference: o.PaymentReference,
		CustomerEmail:    o.CustomerEmail,
		CustomerName:     o.CustomerName,
		PaymentMethod:    o.PaymentMethod,
		Status:           o.Status,
		TotalAmount:      o.TotalAmount,
		AmountDue:        o.AmountDue,
		OccurredAt:       at,
	}
	if o.HasProof() {
		ev.ProofURL = *o.ProofOfPaymentURL
	}
	return ev
}
