package models

import (
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/v2/bson"
)

const (
	ListingActive   = "active"
	ListingInactive = "inactive"
)

// Listing is a performance a musician offers for booking. Its price is the
// authoritative unit price used at checkout.
type Listing struct {
	ID          bson.ObjectID   `json:"id" bson:"_id,omitempty"`
	MusicianUID string          `json:"musician_uid" bson:"musician_uid"`
	Title       string          `json:"title" bson:"title"`
	Description string          `json:"description" bson:"description"`
	Genre       string          `json:"genre" bson:"genre"`
	Price       decimal.Decimal `json:"price" bson:"price"`
	Currency    string          `json:"currency" bson:"currency"`
	Status      string          `json:"status" bson:"status"`
	CreatedAt   time.Time       `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at" bson:"updated_at"`
}

func (l *Listing) IsAvailable() bool {
	return l.Status == ListingActive && l.Price.IsPositive()
}

func (l *Listing) SetTimestamps(now time.Time) {
	if l.CreatedAt.IsZero() {
		l.CreatedAt = now
	}
	l.UpdatedAt = now
}

type CreateListingRequest struct {
	Title       string          `json:"title" binding:"required,min=3,max=200"`
	Description string          `json:"description" binding:"max=2000"`
	Genre       string          `json:"genre" binding:"max=100"`
	Price       decimal.Decimal `json:"price"`
}

func (req *CreateListingRequest) ToListing(musicianUID string, now time.Time) *Listing {
	listing := &Listing{
		ID:          bson.NewObjectID(),
		MusicianUID: musicianUID,
		Title:       req.Title,
		Description: req.Description,
		Genre:       req.Genre,
		Price:       req.Price.Round(2),
		Currency:    "EUR",
		Status:      ListingActive,
	}
	listing.SetTimestamps(now)
	return listing
}
