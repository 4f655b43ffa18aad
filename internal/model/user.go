package model

import "time"

// User represents an account record as stored in the `users` table.
// PasswordHash is never serialized; the json:"-" tag guarantees the
// bcrypt hash cannot leave the store boundary through any response.
//
// Fields:
//  ID           – UUID primary key of the user.
//  FirstName    – given name.
//  LastName     – family name.
//  Email        – unique email address (lower-cased on write).
//  Phone        – optional phone number.
//  Location     – optional free-form city/region.
//  PasswordHash – bcrypt hashed password, excluded from JSON.
//  Rating       – aggregate rating, 0.0 for new accounts.
//  Verified     – whether the account passed verification.
//  Avatar       – optional avatar URL.
//  CreatedAt    – timestamp of registration.
//  UpdatedAt    – timestamp of last profile update.
type User struct {
	ID           string    `json:"id"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	Email        string    `json:"email"`
	Phone        *string   `json:"phone,omitempty"`
	Location     *string   `json:"location,omitempty"`
	PasswordHash string    `json:"-"`
	Rating       float64   `json:"rating"`
	Verified     bool      `json:"verified"`
	Avatar       *string   `json:"avatar,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// RefreshToken models an entry in the `refresh_tokens` table. The plain
// token is never stored; only its SHA-256 hash.
type RefreshToken struct {
	ID        uint64
	UserID    string
	TokenHash string
	ExpiresAt time.Time
	RevokedAt *time.Time
	CreatedAt time.Time
}
