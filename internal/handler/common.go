// Package handler implements the HTTP layer: parameter validation,
// authorization rules and the translation of repository sentinels into
// status codes. The pattern is uniform across resources: existence is
// checked first (404), ownership second (403), self-action violations
// are validation errors (400). Handlers depend on small store
// interfaces so they can be exercised without a database; the concrete
// repositories satisfy them.
package handler

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/hemensatbana/marketplace-api/internal/middleware"
	"github.com/hemensatbana/marketplace-api/internal/model"
	"github.com/hemensatbana/marketplace-api/internal/repository"
)

// Store interfaces implemented by the repositories in
// internal/repository. Handlers accept the interface, repositories
// return the structs.

type UserStore interface {
	Create(ctx context.Context, u *model.User, password string, cost int) error
	GetByEmail(ctx context.Context, email string) (model.User, error)
	GetByID(ctx context.Context, id string) (model.User, error)
	UpdateProfile(ctx context.Context, id string, p repository.UserPatch) error
}

type TokenStore interface {
	StoreRefresh(ctx context.Context, userID, tokenHash string, exp time.Time) error
	ValidateRefresh(ctx context.Context, tokenHash string) (string, error)
	RevokeByHash(ctx context.Context, tokenHash string) error
	RevokeAllForUser(ctx context.Context, userID string) error
}

type ListingStore interface {
	Browse(ctx context.Context, q repository.ListingQuery) ([]model.ListingView, error)
	ListByOwner(ctx context.Context, ownerID string, skip, limit int) ([]model.ListingView, error)
	GetView(ctx context.Context, id string) (model.ListingView, error)
	GetRow(ctx context.Context, id string) (model.Listing, error)
	Create(ctx context.Context, l *model.Listing) error
	Update(ctx context.Context, id string, p repository.ListingPatch) error
	Delete(ctx context.Context, id string) error
	IncrementViews(ctx context.Context, id string) error
}

type MessageStore interface {
	ListForUser(ctx context.Context, userID string, skip, limit int) ([]model.MessageView, error)
	ListForListing(ctx context.Context, listingID string) ([]model.MessageView, error)
	GetView(ctx context.Context, id string) (model.MessageView, error)
	GetRow(ctx context.Context, id string) (model.Message, error)
	Create(ctx context.Context, m *model.Message) error
	HasSentToListing(ctx context.Context, listingID, senderID string) (bool, error)
	MarkRead(ctx context.Context, id string) error
	CountUnread(ctx context.Context, userID string) (int64, error)
	DeleteByListing(ctx context.Context, listingID string) error
}

type FavoriteStore interface {
	ListForUser(ctx context.Context, userID string, skip, limit int) ([]model.FavoriteView, error)
	Exists(ctx context.Context, userID, listingID string) (bool, error)
	Create(ctx context.Context, f *model.Favorite) error
	GetView(ctx context.Context, id string) (model.FavoriteView, error)
	Delete(ctx context.Context, userID, listingID string) error
	DeleteByListing(ctx context.Context, listingID string) error
}

type StatsStore interface {
	ForUser(ctx context.Context, userID string) (repository.UserStats, error)
}

// currentUserID extracts the authenticated principal's id set by the
// JWT middleware. Protected routes always have it; an empty value
// means the middleware chain is misconfigured.
func currentUserID(c echo.Context) (string, error) {
	if v, ok := c.Get(middleware.ContextUserID).(string); ok && v != "" {
		return v, nil
	}
	return "", errors.New("no user_id in context")
}

// viewerID extracts an optional principal. The second return reports
// whether the request is authenticated at all, so anonymous viewers
// are an explicit case rather than an empty string convention.
func viewerID(c echo.Context) (string, bool) {
	v, ok := c.Get(middleware.ContextUserID).(string)
	return v, ok && v != ""
}

// Pagination defaults and bounds shared by every list endpoint.
const (
	defaultLimit = 20
	maxLimit     = 50
)

// pagination parses skip/limit query parameters, clamping them to
// skip >= 0 and limit in [1, maxLimit].
func pagination(c echo.Context) (skip, limit int) {
	skip = 0
	limit = defaultLimit
	if v := c.QueryParam("skip"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			skip = n
		}
	}
	if v := c.QueryParam("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}
	if limit < 1 {
		limit = 1
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return skip, limit
}
