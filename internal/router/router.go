// Package router wires handlers to paths. Public browse endpoints get
// the response cache; everything touching a principal goes through
// JWTAuth. The single listing read uses OptionalJWTAuth because the
// view counter needs to know whether the viewer is the owner.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/hemensatbana/marketplace-api/internal/handler"
	"github.com/hemensatbana/marketplace-api/internal/middleware"
)

// RegisterRoutes registers routes that carry no authentication at all.
// Currently that is only the health check used by load balancers.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers registration, login and token lifecycle
// endpoints. Register, login and refresh are unauthenticated by
// nature; me and logout require a valid access token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/api/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)

	auth := e.Group("/api/auth", middleware.JWTAuth(jwtSecret))
	auth.GET("/me", a.Me)
	auth.POST("/logout", a.Logout)
}

// RegisterUsers registers profile and statistics endpoints, all
// scoped to the authenticated principal.
func RegisterUsers(e *echo.Echo, u *handler.UserHandler, jwtSecret string) {
	g := e.Group("/api/users", middleware.JWTAuth(jwtSecret))
	g.GET("/profile", u.GetProfile)
	g.PUT("/profile", u.UpdateProfile)
	g.GET("/stats", u.GetStats)
}

// RegisterListings registers the listing endpoints. Browse and the
// category feed are anonymous and cacheable; the single listing read
// accepts an optional token so owner views are not counted; create,
// update, delete and the owner feed require authentication.
func RegisterListings(e *echo.Echo, l *handler.ListingHandler, jwtSecret string, cache echo.MiddlewareFunc) {
	e.GET("/api/listings", l.Browse, cache)
	e.GET("/api/listings/categories/:category", l.ByCategory, cache)
	e.GET("/api/listings/:id", l.Get, middleware.OptionalJWTAuth(jwtSecret))

	auth := e.Group("/api/listings", middleware.JWTAuth(jwtSecret))
	auth.POST("", l.Create)
	auth.GET("/my/listings", l.Mine)
	auth.PUT("/:id", l.Update)
	auth.DELETE("/:id", l.Delete)
}

// RegisterMessages registers the inquiry endpoints. Every route needs
// a principal: the inbox, the unread counter, sending, per-listing
// threads and the read receipt.
func RegisterMessages(e *echo.Echo, m *handler.MessageHandler, jwtSecret string) {
	g := e.Group("/api/messages", middleware.JWTAuth(jwtSecret))
	g.GET("", m.List)
	g.POST("", m.Send)
	g.GET("/unread/count", m.UnreadCount)
	g.GET("/:listing_id", m.Thread)
	g.PUT("/:message_id/read", m.MarkRead)
}

// RegisterFavorites registers the favorites endpoints, all scoped to
// the authenticated principal.
func RegisterFavorites(e *echo.Echo, f *handler.FavoriteHandler, jwtSecret string) {
	g := e.Group("/api/favorites", middleware.JWTAuth(jwtSecret))
	g.GET("", f.List)
	g.POST("/:listing_id", f.Add)
	g.DELETE("/:listing_id", f.Remove)
	g.GET("/check/:listing_id", f.Check)
}
