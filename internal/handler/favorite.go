package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/hemensatbana/marketplace-api/internal/model"
	"github.com/hemensatbana/marketplace-api/internal/repository"
)

// FavoriteHandler serves the favorites membership relation.
type FavoriteHandler struct {
	Favorites FavoriteStore
	Listings  ListingStore
}

func NewFavoriteHandler(f FavoriteStore, l ListingStore) *FavoriteHandler {
	return &FavoriteHandler{Favorites: f, Listings: l}
}

// List handles GET /api/favorites: the principal's favorites newest
// first. Favorites whose listing was deleted are filtered out by the
// join, not removed.
func (h *FavoriteHandler) List(c echo.Context) error {
	uid, err := currentUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	skip, limit := pagination(c)
	out, err := h.Favorites.ListForUser(c.Request().Context(), uid, skip, limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, out)
}

// Add handles POST /api/favorites/:listing_id. Order of checks:
// listing existence (404), self-favorite (400), duplicate pair (409).
// The existence pre-check on the pair is advisory; the unique key in
// the store still rejects a concurrent duplicate, mapped to the same
// 409.
func (h *FavoriteHandler) Add(c echo.Context) error {
	uid, err := currentUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	listingID := c.Param("listing_id")
	ctx := c.Request().Context()

	listing, err := h.Listings.GetRow(ctx, listingID)
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "listing not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if listing.UserID == uid {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "cannot favorite your own listing"})
	}

	exists, err := h.Favorites.Exists(ctx, uid, listingID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if exists {
		return c.JSON(http.StatusConflict, echo.Map{"error": "listing already in favorites"})
	}

	f := model.Favorite{
		ID:        uuid.NewString(),
		UserID:    uid,
		ListingID: listingID,
		CreatedAt: time.Now().UTC(),
	}
	if err := h.Favorites.Create(ctx, &f); err != nil {
		if err == repository.ErrDuplicateFavorite {
			return c.JSON(http.StatusConflict, echo.Map{"error": "listing already in favorites"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "add favorite failed"})
	}

	view, err := h.Favorites.GetView(ctx, f.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load favorite failed"})
	}
	return c.JSON(http.StatusCreated, view)
}

// Remove handles DELETE /api/favorites/:listing_id: removes exactly
// the principal's pair, 404 when it does not exist.
func (h *FavoriteHandler) Remove(c echo.Context) error {
	uid, err := currentUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	listingID := c.Param("listing_id")

	if err := h.Favorites.Delete(c.Request().Context(), uid, listingID); err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "favorite not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "remove favorite failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "removed from favorites successfully"})
}

// Check handles GET /api/favorites/check/:listing_id: a pure existence
// query with no side effects, never an error on absence.
func (h *FavoriteHandler) Check(c echo.Context) error {
	uid, err := currentUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	exists, err := h.Favorites.Exists(c.Request().Context(), uid, c.Param("listing_id"))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"isFavorited": exists})
}
