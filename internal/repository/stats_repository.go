package repository

import (
	"context"
	"database/sql"
	"math"
)

// UserStats aggregates per-user counts across listings, messages and
// favorites. Every value is derived at read time; the six counts are
// independent queries with no cross-collection atomicity.
type UserStats struct {
	TotalListings     int64   `json:"totalListings"`
	ActiveListings    int64   `json:"activeListings"`
	CompletedListings int64   `json:"completedListings"`
	ReceivedMessages  int64   `json:"receivedMessages"`
	SentMessages      int64   `json:"sentMessages"`
	FavoritesCount    int64   `json:"favoritesCount"`
	SuccessRate       float64 `json:"successRate"`
}

// StatsRepo derives profile statistics for a principal.
type StatsRepo struct{ db *sql.DB }

// NewStatsRepo returns a new StatsRepo bound to the given database.
func NewStatsRepo(db *sql.DB) *StatsRepo { return &StatsRepo{db: db} }

func (r *StatsRepo) count(ctx context.Context, query string, args ...any) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&n)
	return n, err
}

// ForUser computes the stats payload for one user.
func (r *StatsRepo) ForUser(ctx context.Context, userID string) (UserStats, error) {
	var (
		s   UserStats
		err error
	)
	if s.TotalListings, err = r.count(ctx,
		`SELECT COUNT(*) FROM listings WHERE user_id = ?`, userID); err != nil {
		return UserStats{}, err
	}
	if s.ActiveListings, err = r.count(ctx,
		`SELECT COUNT(*) FROM listings WHERE user_id = ? AND status = 'active'`, userID); err != nil {
		return UserStats{}, err
	}
	if s.CompletedListings, err = r.count(ctx,
		`SELECT COUNT(*) FROM listings WHERE user_id = ? AND status = 'completed'`, userID); err != nil {
		return UserStats{}, err
	}
	if s.ReceivedMessages, err = r.count(ctx,
		`SELECT COUNT(*) FROM messages WHERE receiver_id = ?`, userID); err != nil {
		return UserStats{}, err
	}
	if s.SentMessages, err = r.count(ctx,
		`SELECT COUNT(*) FROM messages WHERE sender_id = ?`, userID); err != nil {
		return UserStats{}, err
	}
	if s.FavoritesCount, err = r.count(ctx,
		`SELECT COUNT(*) FROM favorites WHERE user_id = ?`, userID); err != nil {
		return UserStats{}, err
	}
	s.SuccessRate = successRate(s.CompletedListings, s.TotalListings)
	return s, nil
}

// successRate returns completed/total as a percentage rounded to one
// decimal. A user with zero listings has a rate of 0, not an error.
func successRate(completed, total int64) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(completed)/float64(total)*100*10) / 10
}
