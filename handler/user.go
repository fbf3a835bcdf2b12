package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"

	"folio/auth"
	"folio/domain"
	"folio/web"
)

const minPasswordLen = 8

func (h *Handler) Login(c echo.Context) error {
	email := strings.TrimSpace(c.FormValue("email"))
	password := c.FormValue("password")
	next := safeNext(c.FormValue("next"))

	view := web.UserFormView{Layout: layout(c, "Sign in"), Email: email, Next: next}
	if email == "" || password == "" {
		view.Error = "Email and password are required"
		return c.Render(http.StatusBadRequest, "user-login.html", view)
	}

	user, hash, err := h.Users.ByEmail(c.Request().Context(), email)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	if err != nil || auth.CheckPassword(hash, password) != nil {
		view.Error = domain.ErrInvalidLogin.Error()
		return c.Render(http.StatusUnauthorized, "user-login.html", view)
	}

	cookie, err := auth.Cookie(user.Session(), h.JWTSecret, h.now())
	if err != nil {
		return err
	}
	c.SetCookie(cookie)
	c.Logger().Infoj(log.JSON{"msg": "signed in", "user_id": user.ID})
	return c.Redirect(http.StatusFound, next)
}

// NewUser signs up a reader. Signup is closed outside dev unless enabled.
func (h *Handler) NewUser(c echo.Context) error {
	if !h.signupOpen() {
		return c.Render(http.StatusForbidden, "error.html", web.ErrorView{
			Layout:  layout(c, "Forbidden"),
			Code:    http.StatusForbidden,
			Message: "Sign up has been disabled.",
		})
	}

	email := strings.TrimSpace(c.FormValue("email"))
	password := c.FormValue("password")
	view := web.UserFormView{Layout: layout(c, "Sign up"), Email: email}
	if len(password) < minPasswordLen {
		view.Error = "Password must be at least 8 characters"
		return c.Render(http.StatusBadRequest, "user-signup.html", view)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	user, err := h.Users.Create(c.Request().Context(), email, hash, domain.RoleUser)
	switch {
	case errors.Is(err, domain.ErrEmailTaken):
		view.Error = "Email already registered"
		return c.Render(http.StatusConflict, "user-signup.html", view)
	case err != nil:
		var verrs domain.ValidationErrors
		if errors.As(err, &verrs) {
			view.Error = verrs["email"]
			return c.Render(http.StatusBadRequest, "user-signup.html", view)
		}
		return err
	}

	cookie, err := auth.Cookie(user.Session(), h.JWTSecret, h.now())
	if err != nil {
		return err
	}
	c.SetCookie(cookie)
	return c.Redirect(http.StatusFound, "/")
}

func (h *Handler) Logout(c echo.Context) error {
	c.SetCookie(auth.ClearCookie())
	return c.Redirect(http.StatusFound, "/")
}

func (h *Handler) GetNewUserForm(c echo.Context) error {
	if !h.signupOpen() {
		return c.Redirect(http.StatusFound, "/login")
	}
	return c.Render(http.StatusOK, "user-signup.html", web.UserFormView{Layout: layout(c, "Sign up")})
}

func (h *Handler) GetLoginForm(c echo.Context) error {
	return c.Render(http.StatusOK, "user-login.html", web.UserFormView{
		Layout: layout(c, "Sign in"),
		Next:   safeNext(c.QueryParam("next")),
	})
}

func (h *Handler) signupOpen() bool {
	return h.Environment == "dev" || h.EnableSignup
}

// safeNext keeps post-login redirects on this site.
func safeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.Contains(next, `\`) {
		return "/"
	}
	return next
}
