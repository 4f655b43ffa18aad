package handler

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFavoriteAdd(t *testing.T) {
	t.Run("happy path", func(t *testing.T) {
		listings := newFakeListings(activeListing("l1", "owner-1"))
		favorites := newFakeFavorites()
		h := NewFavoriteHandler(favorites, listings)

		c, rec := newCtx(http.MethodPost, "/", "")
		c.SetParamNames("listing_id")
		c.SetParamValues("l1")
		asUser(c, "buyer-2")

		require.NoError(t, h.Add(c))
		assert.Equal(t, http.StatusCreated, rec.Code)
		exists, _ := favorites.Exists(nil, "buyer-2", "l1")
		assert.True(t, exists)
	})

	t.Run("missing listing is 404", func(t *testing.T) {
		h := NewFavoriteHandler(newFakeFavorites(), newFakeListings())
		c, rec := newCtx(http.MethodPost, "/", "")
		c.SetParamNames("listing_id")
		c.SetParamValues("ghost")
		asUser(c, "buyer-2")

		require.NoError(t, h.Add(c))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("own listing is 400", func(t *testing.T) {
		listings := newFakeListings(activeListing("l1", "owner-1"))
		h := NewFavoriteHandler(newFakeFavorites(), listings)
		c, rec := newCtx(http.MethodPost, "/", "")
		c.SetParamNames("listing_id")
		c.SetParamValues("l1")
		asUser(c, "owner-1")

		require.NoError(t, h.Add(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("duplicate is 409", func(t *testing.T) {
		listings := newFakeListings(activeListing("l1", "owner-1"))
		favorites := newFakeFavorites()
		h := NewFavoriteHandler(favorites, listings)

		add := func() int {
			c, rec := newCtx(http.MethodPost, "/", "")
			c.SetParamNames("listing_id")
			c.SetParamValues("l1")
			asUser(c, "buyer-2")
			require.NoError(t, h.Add(c))
			return rec.Code
		}
		assert.Equal(t, http.StatusCreated, add())
		assert.Equal(t, http.StatusConflict, add())
		assert.Len(t, favorites.rows, 1)
	})
}

func TestFavoriteRemove(t *testing.T) {
	listings := newFakeListings(activeListing("l1", "owner-1"))
	favorites := newFakeFavorites()
	h := NewFavoriteHandler(favorites, listings)

	c, rec := newCtx(http.MethodDelete, "/", "")
	c.SetParamNames("listing_id")
	c.SetParamValues("l1")
	asUser(c, "buyer-2")
	require.NoError(t, h.Remove(c))
	assert.Equal(t, http.StatusNotFound, rec.Code, "nothing to remove yet")

	c, _ = newCtx(http.MethodPost, "/", "")
	c.SetParamNames("listing_id")
	c.SetParamValues("l1")
	asUser(c, "buyer-2")
	require.NoError(t, h.Add(c))

	c, rec = newCtx(http.MethodDelete, "/", "")
	c.SetParamNames("listing_id")
	c.SetParamValues("l1")
	asUser(c, "buyer-2")
	require.NoError(t, h.Remove(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, favorites.rows)
}

func TestFavoriteCheck(t *testing.T) {
	listings := newFakeListings(activeListing("l1", "owner-1"))
	favorites := newFakeFavorites()
	h := NewFavoriteHandler(favorites, listings)

	check := func() bool {
		c, rec := newCtx(http.MethodGet, "/", "")
		c.SetParamNames("listing_id")
		c.SetParamValues("l1")
		asUser(c, "buyer-2")
		require.NoError(t, h.Check(c))
		require.Equal(t, http.StatusOK, rec.Code)

		var out map[string]bool
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
		return out["isFavorited"]
	}

	assert.False(t, check())

	c, _ := newCtx(http.MethodPost, "/", "")
	c.SetParamNames("listing_id")
	c.SetParamValues("l1")
	asUser(c, "buyer-2")
	require.NoError(t, h.Add(c))

	assert.True(t, check())
}
