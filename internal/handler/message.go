package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/hemensatbana/marketplace-api/internal/model"
	"github.com/hemensatbana/marketplace-api/internal/queue"
	"github.com/hemensatbana/marketplace-api/internal/repository"
)

// EventPublisher emits domain events after successful writes. Publish
// failures are logged and ignored; the request path never depends on
// the broker.
type EventPublisher interface {
	PublishMessageSent(ctx context.Context, ev queue.MessageSentEvent) error
}

// MessageHandler serves listing threads. Events may be nil when no
// broker is configured.
type MessageHandler struct {
	Messages MessageStore
	Listings ListingStore
	Events   EventPublisher
}

func NewMessageHandler(m MessageStore, l ListingStore, ev EventPublisher) *MessageHandler {
	return &MessageHandler{Messages: m, Listings: l, Events: ev}
}

// List handles GET /api/messages: every message where the principal is
// sender or receiver, newest first.
func (h *MessageHandler) List(c echo.Context) error {
	uid, err := currentUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	skip, limit := pagination(c)
	out, err := h.Messages.ListForUser(c.Request().Context(), uid, skip, limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, out)
}

type sendMessageReq struct {
	ListingID string `json:"listingId"`
	Content   string `json:"content"`
}

// Send handles POST /api/messages. The receiver is always the listing
// owner at send time; messaging one's own listing is a validation
// error, independent of any ownership rule.
func (h *MessageHandler) Send(c echo.Context) error {
	uid, err := currentUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req sendMessageReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Content = strings.TrimSpace(req.Content)
	if req.ListingID == "" || req.Content == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "listingId and content are required"})
	}

	ctx := c.Request().Context()
	listing, err := h.Listings.GetRow(ctx, req.ListingID)
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "listing not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if listing.UserID == uid {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "cannot send message to your own listing"})
	}

	m := model.Message{
		ID:         uuid.NewString(),
		ListingID:  listing.ID,
		SenderID:   uid,
		ReceiverID: listing.UserID,
		Content:    req.Content,
		IsRead:     false,
		CreatedAt:  time.Now().UTC(),
	}
	if err := h.Messages.Create(ctx, &m); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "send message failed"})
	}

	view, err := h.Messages.GetView(ctx, m.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load message failed"})
	}

	if h.Events != nil {
		ev := queue.MessageSentEvent{
			MessageID:    m.ID,
			ListingID:    listing.ID,
			ListingTitle: listing.Title,
			SenderID:     uid,
			ReceiverID:   listing.UserID,
			SentAt:       m.CreatedAt.Format(time.RFC3339),
		}
		if view.Sender != nil {
			ev.SenderName = view.Sender.FirstName + " " + view.Sender.LastName
		}
		if err := h.Events.PublishMessageSent(ctx, ev); err != nil {
			c.Logger().Warnf("message.sent publish failed: %v", err)
		}
	}
	return c.JSON(http.StatusCreated, view)
}

// Thread handles GET /api/messages/:listing_id: the chronological
// thread of one listing. Visible to the listing owner and to anyone
// who already sent a message on it; everyone else gets 403.
func (h *MessageHandler) Thread(c echo.Context) error {
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
	if listing.UserID != uid {
		sent, err := h.Messages.HasSentToListing(ctx, listingID, uid)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
		}
		if !sent {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "not authorized to view these messages"})
		}
	}

	out, err := h.Messages.ListForListing(ctx, listingID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, out)
}

// MarkRead handles PUT /api/messages/:message_id/read. Only the
// receiver may flip the flag; existence is checked before the
// receiver rule so 404 and 403 are never conflated.
func (h *MessageHandler) MarkRead(c echo.Context) error {
	uid, err := currentUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id := c.Param("message_id")
	ctx := c.Request().Context()

	m, err := h.Messages.GetRow(ctx, id)
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "message not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if m.ReceiverID != uid {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "not authorized to mark this message as read"})
	}

	if err := h.Messages.MarkRead(ctx, id); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "mark read failed"})
	}
	view, err := h.Messages.GetView(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load message failed"})
	}
	return c.JSON(http.StatusOK, view)
}

// UnreadCount handles GET /api/messages/unread/count.
func (h *MessageHandler) UnreadCount(c echo.Context) error {
	uid, err := currentUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	n, err := h.Messages.CountUnread(c.Request().Context(), uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"unreadCount": n})
}
