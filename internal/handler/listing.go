package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/hemensatbana/marketplace-api/internal/model"
	"github.com/hemensatbana/marketplace-api/internal/repository"
)

// ListingHandler serves the listing resource. Messages and Favorites
// are needed for the delete cascade only.
type ListingHandler struct {
	Listings  ListingStore
	Messages  MessageStore
	Favorites FavoriteStore
}

func NewListingHandler(l ListingStore, m MessageStore, f FavoriteStore) *ListingHandler {
	return &ListingHandler{Listings: l, Messages: m, Favorites: f}
}

// Browse handles GET /api/listings: active listings with optional
// category/urgency/search facets and one of four sort modes.
func (h *ListingHandler) Browse(c echo.Context) error {
	skip, limit := pagination(c)
	q := repository.ListingQuery{
		Category: c.QueryParam("category"),
		Urgency:  c.QueryParam("urgency"),
		Search:   strings.TrimSpace(c.QueryParam("search")),
		SortBy:   c.QueryParam("sort_by"),
		Skip:     skip,
		Limit:    limit,
	}
	if q.SortBy == "" {
		q.SortBy = repository.SortNewest
	}
	if q.Category != "" && !model.ValidCategory(q.Category) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid category"})
	}
	if q.Urgency != "" && !model.ValidUrgency(q.Urgency) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid urgency"})
	}
	if !repository.ValidSort(q.SortBy) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid sort_by"})
	}

	out, err := h.Listings.Browse(c.Request().Context(), q)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, out)
}

// ByCategory handles GET /api/listings/categories/:category, a fixed
// newest-first browse over one category.
func (h *ListingHandler) ByCategory(c echo.Context) error {
	category := c.Param("category")
	if !model.ValidCategory(category) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid category"})
	}
	skip, limit := pagination(c)
	out, err := h.Listings.Browse(c.Request().Context(), repository.ListingQuery{
		Category: category,
		SortBy:   repository.SortNewest,
		Skip:     skip,
		Limit:    limit,
	})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, out)
}

// Mine handles GET /api/listings/my/listings: the principal's own
// listings regardless of status.
func (h *ListingHandler) Mine(c echo.Context) error {
	uid, err := currentUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	skip, limit := pagination(c)
	out, err := h.Listings.ListByOwner(c.Request().Context(), uid, skip, limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, out)
}

type createListingReq struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Location    *string  `json:"location"`
	BudgetMin   *float64 `json:"budgetMin"`
	BudgetMax   *float64 `json:"budgetMax"`
	Urgency     string   `json:"urgency"`
}

// Create handles POST /api/listings. The new listing starts active
// with zero views; the returned view has messageCount 0 by
// construction since no message can exist yet.
func (h *ListingHandler) Create(c echo.Context) error {
	uid, err := currentUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createListingReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Title = strings.TrimSpace(req.Title)
	req.Description = strings.TrimSpace(req.Description)
	if req.Title == "" || req.Description == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title and description are required"})
	}
	if !model.ValidCategory(req.Category) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid category"})
	}
	if !model.ValidUrgency(req.Urgency) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid urgency"})
	}

	now := time.Now().UTC()
	l := model.Listing{
		ID:          uuid.NewString(),
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Location:    req.Location,
		BudgetMin:   req.BudgetMin,
		BudgetMax:   req.BudgetMax,
		Urgency:     req.Urgency,
		Status:      model.StatusActive,
		UserID:      uid,
		Views:       0,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	ctx := c.Request().Context()
	if err := h.Listings.Create(ctx, &l); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create listing failed"})
	}
	view, err := h.Listings.GetView(ctx, l.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load listing failed"})
	}
	return c.JSON(http.StatusCreated, view)
}

// Get handles GET /api/listings/:id. An authenticated viewer who is
// not the owner bumps the view counter; the increment compares against
// the listing's owner id, and a failed increment never fails the read.
func (h *ListingHandler) Get(c echo.Context) error {
	id := c.Param("id")
	ctx := c.Request().Context()

	row, err := h.Listings.GetRow(ctx, id)
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "listing not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	if viewer, ok := viewerID(c); ok && viewer != row.UserID {
		if err := h.Listings.IncrementViews(ctx, id); err != nil {
			c.Logger().Warnf("view increment failed for listing %s: %v", id, err)
		}
	}

	view, err := h.Listings.GetView(ctx, id)
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "listing not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, view)
}

type updateListingReq struct {
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	Category    *string  `json:"category"`
	Location    *string  `json:"location"`
	BudgetMin   *float64 `json:"budgetMin"`
	BudgetMax   *float64 `json:"budgetMax"`
	Urgency     *string  `json:"urgency"`
	Status      *string  `json:"status"`
}

// Update handles PUT /api/listings/:id: owner-only field-level partial
// update. A patch with no fields short-circuits to a plain re-fetch.
func (h *ListingHandler) Update(c echo.Context) error {
	uid, err := currentUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id := c.Param("id")
	ctx := c.Request().Context()

	row, err := h.Listings.GetRow(ctx, id)
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "listing not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if row.UserID != uid {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "not authorized to update this listing"})
	}

	var req updateListingReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Category != nil && !model.ValidCategory(*req.Category) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid category"})
	}
	if req.Urgency != nil && !model.ValidUrgency(*req.Urgency) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid urgency"})
	}
	if req.Status != nil && !model.ValidStatus(*req.Status) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid status"})
	}

	patch := repository.ListingPatch{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Location:    req.Location,
		BudgetMin:   req.BudgetMin,
		BudgetMax:   req.BudgetMax,
		Urgency:     req.Urgency,
		Status:      req.Status,
	}
	if !patch.IsEmpty() {
		if err := h.Listings.Update(ctx, id, patch); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update listing failed"})
		}
	}

	view, err := h.Listings.GetView(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load listing failed"})
	}
	return c.JSON(http.StatusOK, view)
}

// Delete handles DELETE /api/listings/:id: owner-only. The listing row
// goes first, then its messages and favorites. The three deletes are
// not atomic; a child failure after the parent delete surfaces as a
// 500 with no compensation.
func (h *ListingHandler) Delete(c echo.Context) error {
	uid, err := currentUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id := c.Param("id")
	ctx := c.Request().Context()

	row, err := h.Listings.GetRow(ctx, id)
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "listing not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if row.UserID != uid {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "not authorized to delete this listing"})
	}

	if err := h.Listings.Delete(ctx, id); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete listing failed"})
	}
	if err := h.Messages.DeleteByListing(ctx, id); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete listing messages failed"})
	}
	if err := h.Favorites.DeleteByListing(ctx, id); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete listing favorites failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "listing deleted successfully"})
}
