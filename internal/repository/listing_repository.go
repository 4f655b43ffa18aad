package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/hemensatbana/marketplace-api/internal/model"
)

// ListingRepo provides persistence and joined reads for listings.
// Every read returns the denormalized view: the listing row, its owner
// (password hash excluded from the select list) and the message count
// derived from a per-listing count join. The count is materialized
// before ORDER BY so sort modes may reference it.
type ListingRepo struct {
	db *sql.DB
}

// NewListingRepo returns a new ListingRepo bound to the given database.
func NewListingRepo(db *sql.DB) *ListingRepo { return &ListingRepo{db: db} }

// listingViewSelect is the shared select+join block of the listing read
// pipeline: base row, owner left-join, message-count left-join. A
// listing with no messages yields COALESCE(..,0); a missing owner row
// yields NULL user columns and a nil embedded user.
const listingViewSelect = `SELECT
		l.id, l.title, l.description, l.category, l.location,
		l.budget_min, l.budget_max, l.urgency, l.status, l.user_id,
		l.views, l.created_at, l.updated_at,
		COALESCE(mc.cnt, 0) AS message_count,
		u.id, u.first_name, u.last_name, u.email, u.phone, u.location,
		u.rating, u.verified, u.avatar, u.created_at, u.updated_at
	FROM listings l
	LEFT JOIN users u ON u.id = l.user_id
	LEFT JOIN (
		SELECT listing_id, COUNT(*) AS cnt FROM messages GROUP BY listing_id
	) mc ON mc.listing_id = l.id`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanListingView(s rowScanner) (model.ListingView, error) {
	var (
		v  model.ListingView
		uc userColumns
	)
	dest := []any{
		&v.ID, &v.Title, &v.Description, &v.Category, &v.Location,
		&v.BudgetMin, &v.BudgetMax, &v.Urgency, &v.Status, &v.UserID,
		&v.Views, &v.CreatedAt, &v.UpdatedAt,
		&v.MessageCount,
	}
	dest = append(dest, uc.dests()...)
	if err := s.Scan(dest...); err != nil {
		return model.ListingView{}, err
	}
	v.User = uc.asUser()
	return v, nil
}

func (r *ListingRepo) queryViews(ctx context.Context, query string, args ...any) ([]model.ListingView, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.ListingView, 0)
	for rows.Next() {
		v, err := scanListingView(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// Browse returns active listings matching the query filters, sorted by
// the requested mode. An empty result is not an error.
func (r *ListingRepo) Browse(ctx context.Context, q ListingQuery) ([]model.ListingView, error) {
	cond, args := buildListingWhere(q)
	query := listingViewSelect + `
	WHERE ` + cond + `
	ORDER BY ` + orderByFor(q.SortBy) + `
	LIMIT ? OFFSET ?`
	args = append(args, q.Limit, q.Skip)
	return r.queryViews(ctx, query, args...)
}

// ListByOwner returns the owner's listings regardless of status,
// newest first.
func (r *ListingRepo) ListByOwner(ctx context.Context, ownerID string, skip, limit int) ([]model.ListingView, error) {
	query := listingViewSelect + `
	WHERE l.user_id = ?
	ORDER BY l.created_at DESC
	LIMIT ? OFFSET ?`
	return r.queryViews(ctx, query, ownerID, limit, skip)
}

// GetView fetches a single listing with its joins. Returns ErrNotFound
// when the id does not exist.
func (r *ListingRepo) GetView(ctx context.Context, id string) (model.ListingView, error) {
	row := r.db.QueryRowContext(ctx, listingViewSelect+` WHERE l.id = ?`, id)
	v, err := scanListingView(row)
	if err == sql.ErrNoRows {
		return model.ListingView{}, ErrNotFound
	}
	return v, err
}

// GetRow fetches the bare listing row without joins. Used for
// existence and ownership checks before mutations.
func (r *ListingRepo) GetRow(ctx context.Context, id string) (model.Listing, error) {
	var l model.Listing
	err := r.db.QueryRowContext(ctx, `SELECT
			id, title, description, category, location, budget_min,
			budget_max, urgency, status, user_id, views, created_at, updated_at
		FROM listings WHERE id = ? LIMIT 1`, id).Scan(
		&l.ID, &l.Title, &l.Description, &l.Category, &l.Location,
		&l.BudgetMin, &l.BudgetMax, &l.Urgency, &l.Status, &l.UserID,
		&l.Views, &l.CreatedAt, &l.UpdatedAt)
	if err == sql.ErrNoRows {
		return model.Listing{}, ErrNotFound
	}
	return l, err
}

// Create inserts a new listing row as given.
func (r *ListingRepo) Create(ctx context.Context, l *model.Listing) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO listings
			(id, title, description, category, location, budget_min,
			 budget_max, urgency, status, user_id, views, created_at, updated_at)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		l.ID, l.Title, l.Description, l.Category, l.Location, l.BudgetMin,
		l.BudgetMax, l.Urgency, l.Status, l.UserID, l.Views, l.CreatedAt, l.UpdatedAt)
	return err
}

// ListingPatch holds the optional fields of a partial update. Nil
// fields are left untouched.
type ListingPatch struct {
	Title       *string
	Description *string
	Category    *string
	Location    *string
	BudgetMin   *float64
	BudgetMax   *float64
	Urgency     *string
	Status      *string
}

// IsEmpty reports whether the patch carries no changes.
func (p ListingPatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.Category == nil &&
		p.Location == nil && p.BudgetMin == nil && p.BudgetMax == nil &&
		p.Urgency == nil && p.Status == nil
}

// Update applies the non-nil patch fields and refreshes updated_at.
// Callers verify existence and ownership first; a no-op patch must be
// short-circuited by the caller, not sent here.
func (r *ListingRepo) Update(ctx context.Context, id string, p ListingPatch) error {
	set := []string{}
	args := []any{}
	add := func(col string, v any) {
		set = append(set, col+" = ?")
		args = append(args, v)
	}
	if p.Title != nil {
		add("title", *p.Title)
	}
	if p.Description != nil {
		add("description", *p.Description)
	}
	if p.Category != nil {
		add("category", *p.Category)
	}
	if p.Location != nil {
		add("location", *p.Location)
	}
	if p.BudgetMin != nil {
		add("budget_min", *p.BudgetMin)
	}
	if p.BudgetMax != nil {
		add("budget_max", *p.BudgetMax)
	}
	if p.Urgency != nil {
		add("urgency", *p.Urgency)
	}
	if p.Status != nil {
		add("status", *p.Status)
	}
	add("updated_at", time.Now().UTC())

	query := "UPDATE listings SET " + strings.Join(set, ", ") + " WHERE id = ?"
	args = append(args, id)
	_, err := r.db.ExecContext(ctx, query, args...)
	return err
}

// Delete removes the listing row. Cascade deletion of dependent
// messages and favorites is orchestrated by the caller; the two child
// deletes are independent and best-effort, per the single-node
// consistency model.
func (r *ListingRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM listings WHERE id = ?`, id)
	return err
}

// IncrementViews bumps the view counter by one using an atomic
// store-side increment, tolerating concurrent readers.
func (r *ListingRepo) IncrementViews(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE listings SET views = views + 1 WHERE id = ?`, id)
	return err
}
