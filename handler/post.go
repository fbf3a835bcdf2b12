package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"

	"folio/admin"
	"folio/auth"
	"folio/domain"
	"folio/web"
)

func (h *Handler) GetPosts(c echo.Context) error {
	posts, err := h.Blog.PublishedPosts(c.Request().Context())
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, "blog-list.html", web.BlogListView{
		Layout: layout(c, "Blog"),
		Posts:  posts,
	})
}

// GetBySlug shows one published post. Drafts are not found here even for
// admins; they are reached through the editor.
func (h *Handler) GetBySlug(c echo.Context) error {
	post, err := h.Blog.PostBySlug(c.Request().Context(), c.Param("slug"))
	if err != nil {
		return err
	}
	if post == nil || !post.Published {
		return notFound(c)
	}
	return c.Render(http.StatusOK, "blog-post.html", web.BlogPostView{
		Layout: layout(c, post.Title),
		Post:   *post,
	})
}

// GetEditPostForm opens a fresh editor page, replacing whatever the caller
// had kept for the same post.
func (h *Handler) GetEditPostForm(c echo.Context) error {
	page, err := admin.OpenEditor(c.Request().Context(), h.Blog, auth.SessionFrom(c), c.Param("id"))
	if err != nil {
		return err
	}
	if page.State() == admin.NotFound {
		return notFound(c)
	}
	h.Drafts.Put(page)
	return h.renderEditor(c, http.StatusOK, page)
}

func (h *Handler) EditPost(c echo.Context) error {
	ctx := c.Request().Context()
	page, release, err := h.openDraft(c)
	if err != nil {
		return err
	}
	defer release()
	if page.State() == admin.NotFound {
		return notFound(c)
	}

	form, err := c.FormParams()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest)
	}
	if err := page.Fill(submission(form)); err != nil {
		return err
	}

	if err := page.Submit(ctx); err != nil {
		var verrs domain.ValidationErrors
		switch {
		case errors.As(err, &verrs):
			return h.renderEditor(c, http.StatusUnprocessableEntity, page)
		case errors.Is(err, domain.ErrSlugTaken), errors.Is(err, domain.ErrNotFound):
			return h.renderEditor(c, http.StatusConflict, page)
		}
		c.Logger().Errorj(log.JSON{"msg": "save post", "id": page.ID(), "error": err.Error()})
		return h.renderEditor(c, http.StatusInternalServerError, page)
	}
	h.Drafts.Drop(auth.SessionFrom(c), page.ID())
	return c.Redirect(http.StatusFound, page.Redirect())
}

func (h *Handler) renderEditor(c echo.Context, code int, page *admin.EditorPage) error {
	title := "New post"
	if !page.IsNew() {
		title = "Edit " + page.Form.Title
	}
	return c.Render(code, "post-edit.html", web.EditorView{Layout: layout(c, title), Page: page})
}

func (h *Handler) GetAdminPosts(c echo.Context) error {
	list, err := admin.LoadListing(c.Request().Context(), h.Blog, auth.SessionFrom(c))
	if err != nil {
		return err
	}
	return h.renderListing(c, http.StatusOK, list)
}

func (h *Handler) renderListing(c echo.Context, code int, list *admin.Listing) error {
	return c.Render(code, "admin-list.html", web.AdminListView{
		Layout: layout(c, "Posts"),
		Rows:   list.Rows(),
		Empty:  list.Empty(),
		Err:    list.Err,
	})
}

// GetDeletePostForm is the confirmation step; nothing is deleted on GET.
func (h *Handler) GetDeletePostForm(c echo.Context) error {
	list, err := admin.LoadListing(c.Request().Context(), h.Blog, auth.SessionFrom(c))
	if err != nil {
		return err
	}
	if err := list.RequestDelete(c.Param("id")); err != nil {
		if errors.Is(err, admin.ErrUnknownPost) {
			return notFound(c)
		}
		return err
	}
	post, _ := list.Confirming()
	return c.Render(http.StatusOK, "post-delete.html", web.DeleteView{
		Layout: layout(c, "Delete "+post.Title),
		Post:   post,
	})
}

func (h *Handler) DeletePost(c echo.Context) error {
	ctx := c.Request().Context()
	list, err := admin.LoadListing(ctx, h.Blog, auth.SessionFrom(c))
	if err != nil {
		return err
	}
	if err := list.RequestDelete(c.Param("id")); err != nil {
		if errors.Is(err, admin.ErrUnknownPost) {
			return notFound(c)
		}
		return err
	}
	if err := list.ConfirmDelete(ctx); err != nil {
		return h.renderListing(c, statusFor(err), list)
	}
	return c.Redirect(http.StatusFound, "/admin")
}

func (h *Handler) TogglePublish(c echo.Context) error {
	ctx := c.Request().Context()
	list, err := admin.LoadListing(ctx, h.Blog, auth.SessionFrom(c))
	if err != nil {
		return err
	}
	if err := list.TogglePublish(ctx, c.Param("id")); err != nil {
		if errors.Is(err, admin.ErrUnknownPost) {
			return notFound(c)
		}
		return h.renderListing(c, statusFor(err), list)
	}
	return c.Redirect(http.StatusFound, "/admin")
}

func statusFor(err error) int {
	if errors.Is(err, domain.ErrNotFound) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}
