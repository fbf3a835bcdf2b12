// Package handler serves the public blog, the admin pages and sign in over
// echo.
package handler

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/labstack/echo/v4"

	"folio/admin"
	"folio/auth"
	"folio/domain"
	"folio/web"
)

// Blog is the data access the pages need; *blog.Service implements it.
type Blog interface {
	admin.Backend
	admin.ListingBackend
	PublishedPosts(ctx context.Context) ([]domain.Post, error)
	PostBySlug(ctx context.Context, slug string) (*domain.Post, error)
}

type UserStore interface {
	Create(ctx context.Context, email, passwordHash string, role domain.Role) (domain.User, error)
	ByEmail(ctx context.Context, email string) (domain.User, string, error)
}

// draftTTL is how long an editor page is kept without being touched.
const draftTTL = 2 * time.Hour

type Handler struct {
	Blog         Blog
	Users        UserStore
	JWTSecret    string
	EnableSignup bool
	Environment  string
	Now          func() time.Time
	// Drafts keeps open editor pages between requests. Register creates one
	// when nil.
	Drafts *admin.Drafts
}

// Register mounts every route on e.
func (h *Handler) Register(e *echo.Echo) {
	if h.Drafts == nil {
		h.Drafts = admin.NewDrafts(draftTTL)
	}
	e.Use(auth.Middleware(h.JWTSecret))

	// Frontend
	e.GET("/", h.GetPosts)
	e.GET("/blog", h.GetPosts)
	e.GET("/blog/:slug", h.GetBySlug)
	e.GET("/signup", h.GetNewUserForm)
	e.GET("/login", h.GetLoginForm)

	// Backend
	e.POST("/signup", h.NewUser)
	e.POST("/login", h.Login)
	e.GET("/logout", h.Logout)

	g := e.Group("/admin", h.RequireAdmin)
	g.GET("", h.GetAdminPosts)
	g.GET("/posts/:id", h.GetEditPostForm)
	g.POST("/posts/:id", h.EditPost)
	g.POST("/posts/:id/command", h.EditorCommand)
	g.POST("/posts/:id/images", h.EditorImage)
	g.GET("/posts/:id/delete", h.GetDeletePostForm)
	g.POST("/posts/:id/delete", h.DeletePost)
	g.POST("/posts/:id/publish", h.TogglePublish)
	g.POST("/uploads", h.Upload)
}

// RequireAdmin runs the route guard in front of every admin page. Anonymous
// callers are sent to sign in, signed in non-admins see access denied.
func (h *Handler) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		sess := auth.SessionFrom(c)
		guard := admin.NewGuard()
		switch guard.Resolve(&sess) {
		case admin.Unauthenticated:
			return c.Redirect(http.StatusFound, "/login?next="+url.QueryEscape(c.Request().URL.Path))
		case admin.Forbidden:
			return c.Render(http.StatusForbidden, "access-denied.html", web.AccessDeniedView{
				Layout: layout(c, "Access denied"),
				Caller: guard.Session(),
			})
		}
		return next(c)
	}
}

func (h *Handler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

func layout(c echo.Context, title string) web.Layout {
	return web.Layout{PageTitle: title, Session: auth.SessionFrom(c)}
}

func notFound(c echo.Context) error {
	return c.Render(http.StatusNotFound, "not-found.html", layout(c, "Not found"))
}

// ErrorHandler renders an error page for anything a handler did not answer.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	code := http.StatusInternalServerError
	message := http.StatusText(code)
	var he *echo.HTTPError
	switch {
	case errors.As(err, &he):
		code = he.Code
		message = http.StatusText(code)
	case errors.Is(err, domain.ErrNotFound):
		code, message = http.StatusNotFound, http.StatusText(http.StatusNotFound)
	case errors.Is(err, domain.ErrUnauthorized):
		code, message = http.StatusUnauthorized, err.Error()
	case errors.Is(err, domain.ErrForbidden):
		code, message = http.StatusForbidden, err.Error()
	}
	if code >= http.StatusInternalServerError {
		c.Logger().Error(err)
	}
	if code == http.StatusNotFound {
		err = notFound(c)
	} else {
		err = c.Render(code, "error.html", web.ErrorView{Layout: layout(c, message), Code: code, Message: message})
	}
	if err != nil {
		c.Logger().Error(err)
	}
}
