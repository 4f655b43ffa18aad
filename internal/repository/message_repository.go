package repository

import (
	"context"
	"database/sql"

	"github.com/hemensatbana/marketplace-api/internal/model"
)

// MessageRepo provides persistence and joined reads for listing
// threads. Messages are immutable except the is_read flag.
type MessageRepo struct {
	db *sql.DB
}

// NewMessageRepo returns a new MessageRepo bound to the given database.
func NewMessageRepo(db *sql.DB) *MessageRepo { return &MessageRepo{db: db} }

// messageViewSelect joins the sender and the listing onto each message
// row. Both joins are LEFT so a message is never dropped when a
// related row disappeared; the embedded structs are nil instead.
const messageViewSelect = `SELECT
		m.id, m.listing_id, m.sender_id, m.receiver_id, m.content,
		m.is_read, m.created_at,
		u.id, u.first_name, u.last_name, u.email, u.phone, u.location,
		u.rating, u.verified, u.avatar, u.created_at, u.updated_at,
		l.id, l.title, l.description, l.category, l.location,
		l.budget_min, l.budget_max, l.urgency, l.status, l.user_id,
		l.views, l.created_at, l.updated_at
	FROM messages m
	LEFT JOIN users u ON u.id = m.sender_id
	LEFT JOIN listings l ON l.id = m.listing_id`

func scanMessageView(s rowScanner) (model.MessageView, error) {
	var (
		v  model.MessageView
		uc userColumns
		lc listingColumns
	)
	dest := []any{
		&v.ID, &v.ListingID, &v.SenderID, &v.ReceiverID, &v.Content,
		&v.IsRead, &v.CreatedAt,
	}
	dest = append(dest, uc.dests()...)
	dest = append(dest, lc.dests()...)
	if err := s.Scan(dest...); err != nil {
		return model.MessageView{}, err
	}
	v.Sender = uc.asUser()
	v.Listing = lc.asListing()
	return v, nil
}

func (r *MessageRepo) queryViews(ctx context.Context, query string, args ...any) ([]model.MessageView, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.MessageView, 0)
	for rows.Next() {
		v, err := scanMessageView(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// ListForUser returns messages where the user is sender or receiver,
// newest first, with sender and listing joined.
func (r *MessageRepo) ListForUser(ctx context.Context, userID string, skip, limit int) ([]model.MessageView, error) {
	query := messageViewSelect + `
	WHERE m.sender_id = ? OR m.receiver_id = ?
	ORDER BY m.created_at DESC
	LIMIT ? OFFSET ?`
	return r.queryViews(ctx, query, userID, userID, limit, skip)
}

// ListForListing returns the full thread of one listing in
// chronological reading order (oldest first), with the sender joined.
// Visibility is enforced by the caller.
func (r *MessageRepo) ListForListing(ctx context.Context, listingID string) ([]model.MessageView, error) {
	query := messageViewSelect + `
	WHERE m.listing_id = ?
	ORDER BY m.created_at ASC`
	return r.queryViews(ctx, query, listingID)
}

// GetView fetches a single message with joins. Returns ErrNotFound on
// a miss.
func (r *MessageRepo) GetView(ctx context.Context, id string) (model.MessageView, error) {
	row := r.db.QueryRowContext(ctx, messageViewSelect+` WHERE m.id = ?`, id)
	v, err := scanMessageView(row)
	if err == sql.ErrNoRows {
		return model.MessageView{}, ErrNotFound
	}
	return v, err
}

// GetRow fetches the bare message row, used for the receiver check
// before mark-read.
func (r *MessageRepo) GetRow(ctx context.Context, id string) (model.Message, error) {
	var m model.Message
	err := r.db.QueryRowContext(ctx, `SELECT
			id, listing_id, sender_id, receiver_id, content, is_read, created_at
		FROM messages WHERE id = ? LIMIT 1`, id).Scan(
		&m.ID, &m.ListingID, &m.SenderID, &m.ReceiverID, &m.Content,
		&m.IsRead, &m.CreatedAt)
	if err == sql.ErrNoRows {
		return model.Message{}, ErrNotFound
	}
	return m, err
}

// Create inserts a new message row.
func (r *MessageRepo) Create(ctx context.Context, m *model.Message) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO messages
			(id, listing_id, sender_id, receiver_id, content, is_read, created_at)
		VALUES (?,?,?,?,?,?,?)`,
		m.ID, m.ListingID, m.SenderID, m.ReceiverID, m.Content, m.IsRead, m.CreatedAt)
	return err
}

// HasSentToListing reports whether the user sent at least one message
// on the listing's thread. Non-owners gain thread visibility this way.
func (r *MessageRepo) HasSentToListing(ctx context.Context, listingID, senderID string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM messages WHERE listing_id = ? AND sender_id = ?)`,
		listingID, senderID).Scan(&exists)
	return exists, err
}

// MarkRead flips the is_read flag. The receiver-only rule is enforced
// by the caller.
func (r *MessageRepo) MarkRead(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE messages SET is_read = TRUE WHERE id = ?`, id)
	return err
}

// CountUnread counts unread messages addressed to the user.
func (r *MessageRepo) CountUnread(ctx context.Context, userID string) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM messages WHERE receiver_id = ? AND is_read = FALSE`,
		userID).Scan(&n)
	return n, err
}

// DeleteByListing removes every message of a listing thread, part of
// the listing delete cascade.
func (r *MessageRepo) DeleteByListing(ctx context.Context, listingID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM messages WHERE listing_id = ?`, listingID)
	return err
}
