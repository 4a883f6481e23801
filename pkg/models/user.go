package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type UserType string

const (
	UserMusician UserType = "musico"
	UserCompany  UserType = "empresa"
)

func (t UserType) Valid() bool {
	return t == UserMusician || t == UserCompany
}

// User represents a musician or event company account
type User struct {
	ID            bson.ObjectID `bson:"_id,omitempty" json:"uid"`
	Email         string        `bson:"email" json:"email"`
	PasswordHash  string        `bson:"password_hash" json:"-"` // Never expose in JSON
	Name          string        `bson:"nome" json:"nome"`
	Type          UserType      `bson:"tipo" json:"tipo"`
	Phone         string        `bson:"telefone" json:"telefone"`
	NIF           string        `bson:"nif,omitempty" json:"nif,omitempty"`
	EmailVerified bool          `bson:"email_verified" json:"email_verified"`
	Active        bool          `bson:"active" json:"active"`
	LoginCount    int           `bson:"login_count" json:"login_count"`
	LastLogin     *time.Time    `bson:"last_login,omitempty" json:"last_login,omitempty"`
	CreatedAt     time.Time     `bson:"created_at" json:"created_at"`
	UpdatedAt     time.Time     `bson:"updated_at" json:"updated_at"`
}

// SetTimestamps sets created_at on first call and always updates updated_at
func (u *User) SetTimestamps(now time.Time) {
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
}

func (u *User) UID() string {
	return u.ID.Hex()
}

func (u *User) Identity() Identity {
	return Identity{UID: u.UID(), Email: u.Email, Name: u.Name, Type: u.Type}
}

// PublicUser is the subset returned by login
type PublicUser struct {
	UID   string   `json:"uid"`
	Email string   `json:"email"`
	Name  string   `json:"nome"`
	Type  UserType `json:"tipo"`
}

func (u *User) Public() PublicUser {
	return PublicUser{UID: u.UID(), Email: u.Email, Name: u.Name, Type: u.Type}
}

type RegisterRequest struct {
	Email    string   `json:"email"`
	Password string   `json:"password"`
	Name     string   `json:"nome"`
	Type     UserType `json:"tipo"`
	Phone    string   `json:"telefone" binding:"omitempty,ptphone"`
	NIF      string   `json:"nif" binding:"omitempty,nif"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ResetPasswordRequest struct {
	Email string `json:"email"`
}

type UpdateProfileRequest struct {
	UID   string `json:"uid"`
	Name  string `json:"nome" binding:"omitempty,ptname"`
	Phone string `json:"telefone" binding:"omitempty,ptphone"`
}

// LoginResult carries the bearer token issued for a successful login
type LoginResult struct {
	Token     string     `json:"token"`
	ExpiresAt time.Time  `json:"expires_at"`
	User      PublicUser `json:"user"`
}
