package repository

import "strings"

// ListingQuery defines filters, sort mode and pagination for browsing
// active listings.
type ListingQuery struct {
	Category string
	Urgency  string
	Search   string
	SortBy   string
	Skip     int
	Limit    int
}

// Sort modes accepted by the listing browse endpoint.
const (
	SortNewest       = "newest"
	SortOldest       = "oldest"
	SortMostViewed   = "most_viewed"
	SortMostMessages = "most_messages"
)

// ValidSort reports whether s is a known sort mode.
func ValidSort(s string) bool {
	switch s {
	case SortNewest, SortOldest, SortMostViewed, SortMostMessages:
		return true
	}
	return false
}

// buildListingWhere builds the WHERE clause for the active-listing
// browse query. The status constraint is always present; category and
// urgency are optional equality filters; search is a case-insensitive
// substring match against title OR description OR location. All user
// input goes through placeholders.
func buildListingWhere(q ListingQuery) (string, []any) {
	where := []string{"l.status = ?"}
	args := []any{"active"}

	if q.Category != "" {
		where = append(where, "l.category = ?")
		args = append(args, q.Category)
	}
	if q.Urgency != "" {
		where = append(where, "l.urgency = ?")
		args = append(args, q.Urgency)
	}
	if q.Search != "" {
		pat := "%" + strings.ToLower(q.Search) + "%"
		where = append(where,
			"(LOWER(l.title) LIKE ? OR LOWER(l.description) LIKE ? OR LOWER(COALESCE(l.location,'')) LIKE ?)")
		args = append(args, pat, pat, pat)
	}
	return strings.Join(where, " AND "), args
}

// orderByFor maps a sort mode to its ORDER BY clause. most_messages
// sorts on message_count, which the browse query materializes via the
// per-listing count join before this clause is applied, so the sort
// key is always available when it is referenced. Unknown values fall
// back to newest.
func orderByFor(sort string) string {
	switch sort {
	case SortOldest:
		return "l.created_at ASC"
	case SortMostViewed:
		return "l.views DESC, l.created_at DESC"
	case SortMostMessages:
		return "message_count DESC, l.created_at DESC"
	default: // newest
		return "l.created_at DESC"
	}
}
