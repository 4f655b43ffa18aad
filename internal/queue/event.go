// Package queue defines message payloads exchanged over the broker and
// the background consumer that processes them.
package queue

// MessageSentEvent is published after a buyer inquiry is stored. It
// carries enough context for downstream consumers (notification,
// analytics) to act without querying the primary database.
type MessageSentEvent struct {
	MessageID    string `json:"message_id"`
	ListingID    string `json:"listing_id"`
	ListingTitle string `json:"listing_title"`
	SenderID     string `json:"sender_id"`
	SenderName   string `json:"sender_name,omitempty"`
	ReceiverID   string `json:"receiver_id"`
	SentAt       string `json:"sent_at"`
}
