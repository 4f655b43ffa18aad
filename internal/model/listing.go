package model

import "time"

// Listing categories. A listing belongs to exactly one category.
const (
	CategoryEmlak      = "emlak"
	CategoryVasita     = "vasita"
	CategoryElektronik = "elektronik"
	CategoryEvYasam    = "ev-yasam"
	CategoryModa       = "moda"
	CategoryIs         = "is"
	CategoryHizmet     = "hizmet"
	CategoryDiger      = "diger"
)

// Urgency levels describe how soon the buyer needs the request fulfilled.
const (
	UrgencyAcil      = "acil"
	UrgencyBuHafta   = "bu-hafta"
	UrgencyBuAy      = "bu-ay"
	UrgencyAcilDegil = "acil-degil"
)

// Listing lifecycle states.
const (
	StatusActive    = "active"
	StatusCompleted = "completed"
	StatusExpired   = "expired"
)

var categories = map[string]bool{
	CategoryEmlak: true, CategoryVasita: true, CategoryElektronik: true,
	CategoryEvYasam: true, CategoryModa: true, CategoryIs: true,
	CategoryHizmet: true, CategoryDiger: true,
}

var urgencies = map[string]bool{
	UrgencyAcil: true, UrgencyBuHafta: true, UrgencyBuAy: true, UrgencyAcilDegil: true,
}

var statuses = map[string]bool{
	StatusActive: true, StatusCompleted: true, StatusExpired: true,
}

// ValidCategory reports whether s is a known listing category.
func ValidCategory(s string) bool { return categories[s] }

// ValidUrgency reports whether s is a known urgency level.
func ValidUrgency(s string) bool { return urgencies[s] }

// ValidStatus reports whether s is a known listing status.
func ValidStatus(s string) bool { return statuses[s] }

// Listing is a buyer's posted request, the unit sellers respond to.
// Views is a stored counter incremented when a non-owner opens the
// listing; the message count is never stored, it is derived by a join
// at read time to avoid drift.
type Listing struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Location    *string   `json:"location,omitempty"`
	BudgetMin   *float64  `json:"budgetMin,omitempty"`
	BudgetMax   *float64  `json:"budgetMax,omitempty"`
	Urgency     string    `json:"urgency"`
	Status      string    `json:"status"`
	UserID      string    `json:"userId"`
	Views       int64     `json:"views"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ListingView is the denormalized read model returned by listing
// queries: the listing row plus its owner (password hash excluded via
// the User json tags) and the derived message count.
type ListingView struct {
	Listing
	MessageCount int64 `json:"messageCount"`
	User         *User `json:"user,omitempty"`
}
