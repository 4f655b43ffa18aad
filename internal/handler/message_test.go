package handler

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hemensatbana/marketplace-api/internal/model"
)

func TestMessageSend(t *testing.T) {
	t.Run("receiver is the listing owner", func(t *testing.T) {
		listings := newFakeListings(activeListing("l1", "owner-1"))
		messages := &fakeMessages{}
		events := &fakeEvents{}
		h := NewMessageHandler(messages, listings, events)

		c, rec := newCtx(http.MethodPost, "/api/messages",
			`{"listingId":"l1","content":"hala müsait mi?"}`)
		asUser(c, "seller-7")

		require.NoError(t, h.Send(c))
		require.Equal(t, http.StatusCreated, rec.Code)

		require.Len(t, messages.rows, 1)
		m := messages.rows[0]
		assert.Equal(t, "seller-7", m.SenderID)
		assert.Equal(t, "owner-1", m.ReceiverID)
		assert.False(t, m.IsRead)

		require.Len(t, events.published, 1)
		ev := events.published[0]
		assert.Equal(t, m.ID, ev.MessageID)
		assert.Equal(t, "l1", ev.ListingID)
		assert.Equal(t, "seller-7", ev.SenderID)
		assert.Equal(t, "owner-1", ev.ReceiverID)
	})

	t.Run("own listing is a validation error", func(t *testing.T) {
		listings := newFakeListings(activeListing("l1", "owner-1"))
		messages := &fakeMessages{}
		h := NewMessageHandler(messages, listings, nil)

		c, rec := newCtx(http.MethodPost, "/api/messages",
			`{"listingId":"l1","content":"kendime mesaj"}`)
		asUser(c, "owner-1")

		require.NoError(t, h.Send(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Empty(t, messages.rows)
	})

	t.Run("missing listing is 404", func(t *testing.T) {
		h := NewMessageHandler(&fakeMessages{}, newFakeListings(), nil)
		c, rec := newCtx(http.MethodPost, "/api/messages",
			`{"listingId":"ghost","content":"merhaba"}`)
		asUser(c, "seller-7")

		require.NoError(t, h.Send(c))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("blank content is rejected", func(t *testing.T) {
		listings := newFakeListings(activeListing("l1", "owner-1"))
		h := NewMessageHandler(&fakeMessages{}, listings, nil)
		c, rec := newCtx(http.MethodPost, "/api/messages",
			`{"listingId":"l1","content":"   "}`)
		asUser(c, "seller-7")

		require.NoError(t, h.Send(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("nil publisher is fine", func(t *testing.T) {
		listings := newFakeListings(activeListing("l1", "owner-1"))
		messages := &fakeMessages{}
		h := NewMessageHandler(messages, listings, nil)

		c, rec := newCtx(http.MethodPost, "/api/messages",
			`{"listingId":"l1","content":"broker yokken de çalışır"}`)
		asUser(c, "seller-7")

		require.NoError(t, h.Send(c))
		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.Len(t, messages.rows, 1)
	})
}

func TestMessageThreadVisibility(t *testing.T) {
	listings := newFakeListings(activeListing("l1", "owner-1"))
	messages := &fakeMessages{rows: []model.Message{
		{ID: "m1", ListingID: "l1", SenderID: "seller-7", ReceiverID: "owner-1", Content: "selam"},
	}}
	h := NewMessageHandler(messages, listings, nil)

	thread := func(uid string) int {
		c, rec := newCtx(http.MethodGet, "/", "")
		c.SetParamNames("listing_id")
		c.SetParamValues("l1")
		asUser(c, uid)
		require.NoError(t, h.Thread(c))
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, thread("owner-1"), "owner sees the thread")
	assert.Equal(t, http.StatusOK, thread("seller-7"), "participant sees the thread")
	assert.Equal(t, http.StatusForbidden, thread("lurker-3"), "outsider is rejected")

	c, rec := newCtx(http.MethodGet, "/", "")
	c.SetParamNames("listing_id")
	c.SetParamValues("ghost")
	asUser(c, "owner-1")
	require.NoError(t, h.Thread(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMessageMarkRead(t *testing.T) {
	messages := &fakeMessages{rows: []model.Message{
		{ID: "m1", ListingID: "l1", SenderID: "seller-7", ReceiverID: "owner-1"},
	}}
	h := NewMessageHandler(messages, newFakeListings(), nil)

	c, rec := newCtx(http.MethodPut, "/", "")
	c.SetParamNames("message_id")
	c.SetParamValues("m1")
	asUser(c, "seller-7")
	require.NoError(t, h.MarkRead(c))
	assert.Equal(t, http.StatusForbidden, rec.Code, "sender cannot mark their own message read")
	assert.False(t, messages.rows[0].IsRead)

	c, rec = newCtx(http.MethodPut, "/", "")
	c.SetParamNames("message_id")
	c.SetParamValues("m1")
	asUser(c, "owner-1")
	require.NoError(t, h.MarkRead(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, messages.rows[0].IsRead)

	c, rec = newCtx(http.MethodPut, "/", "")
	c.SetParamNames("message_id")
	c.SetParamValues("ghost")
	asUser(c, "owner-1")
	require.NoError(t, h.MarkRead(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMessageUnreadCount(t *testing.T) {
	messages := &fakeMessages{rows: []model.Message{
		{ID: "m1", ReceiverID: "owner-1", IsRead: false},
		{ID: "m2", ReceiverID: "owner-1", IsRead: true},
		{ID: "m3", ReceiverID: "someone-else", IsRead: false},
	}}
	h := NewMessageHandler(messages, newFakeListings(), nil)

	c, rec := newCtx(http.MethodGet, "/", "")
	asUser(c, "owner-1")
	require.NoError(t, h.UnreadCount(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var out map[string]int64
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.EqualValues(t, 1, out["unreadCount"])
}

func TestMessageListScopedToPrincipal(t *testing.T) {
	messages := &fakeMessages{rows: []model.Message{
		{ID: "m1", SenderID: "a", ReceiverID: "b"},
		{ID: "m2", SenderID: "b", ReceiverID: "c"},
		{ID: "m3", SenderID: "c", ReceiverID: "a"},
	}}
	h := NewMessageHandler(messages, newFakeListings(), nil)

	c, rec := newCtx(http.MethodGet, "/api/messages", "")
	asUser(c, "a")
	require.NoError(t, h.List(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var out []model.MessageView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Len(t, out, 2)
}
