package model

import "time"

// Message is a single message on a listing thread. Messages are
// immutable except for the IsRead flag, which only the receiver may
// set. ReceiverID always equals the listing owner's id at send time.
type Message struct {
	ID         string    `json:"id"`
	ListingID  string    `json:"listingId"`
	SenderID   string    `json:"senderId"`
	ReceiverID string    `json:"receiverId"`
	Content    string    `json:"content"`
	IsRead     bool      `json:"isRead"`
	CreatedAt  time.Time `json:"createdAt"`
}

// MessageView embeds the joined sender and listing for list/detail
// responses. Either may be nil when the related row no longer exists.
type MessageView struct {
	Message
	Sender  *User    `json:"sender,omitempty"`
	Listing *Listing `json:"listing,omitempty"`
}
