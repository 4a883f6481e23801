package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type OrderAction string

const (
	ActionCreated       OrderAction = "created"
	ActionProofUploaded OrderAction = "proof_uploaded"
	ActionPaid          OrderAction = "paid"
	ActionConfirmed     OrderAction = "confirmed"
)

// ActorSystem marks entries written by the admin API key rather than a user.
const ActorSystem = "system"

// OrderLog is an audit record of a change applied to an order
type OrderLog struct {
	ID           bson.ObjectID `bson:"_id,omitempty" json:"id"`
	OrderID      string        `bson:"order_id" json:"order_id"`
	Action       OrderAction   `bson:"action" json:"action"`
	StatusBefore OrderStatus   `bson:"status_before,omitempty" json:"status_before,omitempty"`
	StatusAfter  OrderStatus   `bson:"status_after" json:"status_after"`
	PerformedBy  string        `bson:"performed_by" json:"performed_by"` // uid or "system"
	Notes        string        `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt    time.Time     `bson:"created_at" json:"created_at"`
}

// SetTimestamp sets the creation timestamp
func (l *OrderLog) SetTimestamp(now time.Time) {
	if l.CreatedAt.IsZero() {
		l.CreatedAt = now
	}
}

// IsStatusChange reports whether the entry moved the order to another status
func (l *OrderLog) IsStatusChange() bool {
	return l.StatusBefore != "" && l.StatusBefore != l.StatusAfter
}

func (l *OrderLog) IsSystemGenerated() bool {
	return l.PerformedBy == ActorSystem
}
