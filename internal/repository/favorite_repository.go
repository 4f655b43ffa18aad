package repository

import (
	"context"
	"database/sql"

	"github.com/hemensatbana/marketplace-api/internal/model"
)

// FavoriteRepo maintains the unique (user, listing) membership
// relation. The unique pair key in the store is the true guard against
// duplicates; handler pre-checks are advisory only.
type FavoriteRepo struct {
	db *sql.DB
}

// NewFavoriteRepo returns a new FavoriteRepo bound to the given database.
func NewFavoriteRepo(db *sql.DB) *FavoriteRepo { return &FavoriteRepo{db: db} }

// ListForUser returns the user's favorites newest first with the
// listing joined. The INNER JOIN silently drops favorites whose
// listing no longer exists; the stale rows themselves are left in
// place, cleanup is a separate concern.
func (r *FavoriteRepo) ListForUser(ctx context.Context, userID string, skip, limit int) ([]model.FavoriteView, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT
			f.id, f.user_id, f.listing_id, f.created_at,
			l.id, l.title, l.description, l.category, l.location,
			l.budget_min, l.budget_max, l.urgency, l.status, l.user_id,
			l.views, l.created_at, l.updated_at
		FROM favorites f
		JOIN listings l ON l.id = f.listing_id
		WHERE f.user_id = ?
		ORDER BY f.created_at DESC
		LIMIT ? OFFSET ?`, userID, limit, skip)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.FavoriteView, 0)
	for rows.Next() {
		var (
			v  model.FavoriteView
			lc listingColumns
		)
		dest := []any{&v.ID, &v.UserID, &v.ListingID, &v.CreatedAt}
		dest = append(dest, lc.dests()...)
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		v.Listing = lc.asListing()
		out = append(out, v)
	}
	return out, rows.Err()
}

// Exists reports whether the (user, listing) pair is favorited. Never
// errors on absence.
func (r *FavoriteRepo) Exists(ctx context.Context, userID, listingID string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM favorites WHERE user_id = ? AND listing_id = ?)`,
		userID, listingID).Scan(&exists)
	return exists, err
}

// Create inserts a favorite row. A duplicate pair is mapped to
// ErrDuplicateFavorite via the unique key violation, which also
// serializes concurrent adds of the same pair.
func (r *FavoriteRepo) Create(ctx context.Context, f *model.Favorite) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO favorites (id, user_id, listing_id, created_at) VALUES (?,?,?,?)`,
		f.ID, f.UserID, f.ListingID, f.CreatedAt)
	if isDuplicateKey(err) {
		return ErrDuplicateFavorite
	}
	return err
}

// GetView fetches one favorite with its listing joined.
func (r *FavoriteRepo) GetView(ctx context.Context, id string) (model.FavoriteView, error) {
	var (
		v  model.FavoriteView
		lc listingColumns
	)
	dest := []any{&v.ID, &v.UserID, &v.ListingID, &v.CreatedAt}
	dest = append(dest, lc.dests()...)
	err := r.db.QueryRowContext(ctx, `SELECT
			f.id, f.user_id, f.listing_id, f.created_at,
			l.id, l.title, l.description, l.category, l.location,
			l.budget_min, l.budget_max, l.urgency, l.status, l.user_id,
			l.views, l.created_at, l.updated_at
		FROM favorites f
		LEFT JOIN listings l ON l.id = f.listing_id
		WHERE f.id = ? LIMIT 1`, id).Scan(dest...)
	if err == sql.ErrNoRows {
		return model.FavoriteView{}, ErrNotFound
	}
	if err != nil {
		return model.FavoriteView{}, err
	}
	v.Listing = lc.asListing()
	return v, nil
}

// Delete removes exactly the (user, listing) pair. Returns ErrNotFound
// when the pair did not exist.
func (r *FavoriteRepo) Delete(ctx context.Context, userID, listingID string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM favorites WHERE user_id = ? AND listing_id = ?`,
		userID, listingID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteByListing removes every favorite of a listing, part of the
// listing delete cascade.
func (r *FavoriteRepo) DeleteByListing(ctx context.Context, listingID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM favorites WHERE listing_id = ?`, listingID)
	return err
}
