package model

import "time"

// Favorite is a unique (UserID, ListingID) membership row. The pair is
// enforced unique by the store; duplicate adds are rejected, never
// upserted.
type Favorite struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	ListingID string    `json:"listingId"`
	CreatedAt time.Time `json:"createdAt"`
}

// FavoriteView carries the joined listing. Read paths only return
// favorites whose listing still exists.
type FavoriteView struct {
	Favorite
	Listing *Listing `json:"listing,omitempty"`
}
