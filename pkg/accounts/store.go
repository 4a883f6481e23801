package accounts

import (
	"context"
	"time"

	"musicosbooking.pt/api/pkg/models"
)

// UserStore persists accounts. Create reports ErrEmailTaken or ErrNIFTaken when
// a unique index rejects the document; lookups report ErrUserNotFound.
type UserStore interface {
	Create(ctx context.Context, user *models.User) (string, error)
	ByEmail(ctx context.Context, email string) (*models.User, error)
	ByID(ctx context.Context, uid string) (*models.User, error)
	RecordLogin(ctx context.Context, uid string, at time.Time) error
	UpdateProfile(ctx context.Context, uid string, fields map[string]any) error
}

// SessionStore keeps opaque bearer tokens and password reset tokens.
type SessionStore interface {
	Create(ctx context.Context, token string, id models.Identity, ttl time.Duration) error
	Lookup(ctx context.Context, token string) (models.Identity, bool, error)
	Revoke(ctx context.Context, token string) error
	SaveResetToken(ctx context.Context, token, uid string, ttl time.Duration) error
}
