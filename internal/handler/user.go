package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/hemensatbana/marketplace-api/internal/repository"
)

// UserHandler serves profile reads/updates and derived statistics.
type UserHandler struct {
	Users UserStore
	Stats StatsStore
}

func NewUserHandler(u UserStore, s StatsStore) *UserHandler {
	return &UserHandler{Users: u, Stats: s}
}

// GetProfile handles GET /api/users/profile.
func (h *UserHandler) GetProfile(c echo.Context) error {
	uid, err := currentUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	u, err := h.Users.GetByID(c.Request().Context(), uid)
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load user failed"})
	}
	return c.JSON(http.StatusOK, u)
}

type updateProfileReq struct {
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	Phone     *string `json:"phone"`
	Location  *string `json:"location"`
}

// UpdateProfile handles PUT /api/users/profile: partial update of the
// mutable profile fields. An empty patch returns the current profile
// without touching the store.
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	uid, err := currentUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req updateProfileReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx := c.Request().Context()
	patch := repository.UserPatch{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		Location:  req.Location,
	}
	if !patch.IsEmpty() {
		if err := h.Users.UpdateProfile(ctx, uid, patch); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update profile failed"})
		}
	}

	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load user failed"})
	}
	return c.JSON(http.StatusOK, u)
}

// GetStats handles GET /api/users/stats: derived counts across
// listings, messages and favorites plus the success rate. The counts
// are independent queries, best-effort consistent.
func (h *UserHandler) GetStats(c echo.Context) error {
	uid, err := currentUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	stats, err := h.Stats.ForUser(c.Request().Context(), uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, stats)
}
