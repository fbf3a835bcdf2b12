package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"

	"folio/admin"
	"folio/auth"
)

// openDraft checks out the editor page kept for the caller, opening and
// keeping a fresh one when there is none. release must be called once the
// request is done with the page.
func (h *Handler) openDraft(c echo.Context) (*admin.EditorPage, func(), error) {
	sess, id := auth.SessionFrom(c), c.Param("id")
	if page, release, ok := h.Drafts.Checkout(sess, id); ok {
		return page, release, nil
	}
	page, err := admin.OpenEditor(c.Request().Context(), h.Blog, sess, id)
	if err != nil {
		return nil, nil, err
	}
	if page.State() != admin.Editing {
		return page, func() {}, nil
	}
	h.Drafts.Put(page)
	if kept, release, ok := h.Drafts.Checkout(sess, id); ok {
		return kept, release, nil
	}
	return page, func() {}, nil
}

func submission(form url.Values) admin.Submission {
	return admin.Submission{
		Title:         form.Get("title"),
		Slug:          form.Get("slug"),
		Content:       form.Get("content"),
		Excerpt:       form.Get("excerpt"),
		FeaturedImage: form.Get("featured_image"),
		CategoryID:    form.Get("category_id"),
		Published:     form.Get("published") == "on",
		TagIDs:        form["tags"],
	}
}

// EditorCommand applies one toolbar action to the kept page. The posted form
// is copied in first so nothing typed since the last render is lost.
func (h *Handler) EditorCommand(c echo.Context) error {
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

	cmd := admin.Command{
		Name:  form.Get("command"),
		Href:  form.Get("href"),
		Text:  form.Get("text"),
		TagID: form.Get("tag"),
	}
	err = echo.FormFieldBinder(c).
		Int("block", &cmd.Range.Block).
		Int("item", &cmd.Range.Item).
		Int("from", &cmd.Range.From).
		Int("to", &cmd.Range.To).
		BindError()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "selection must be numbers")
	}

	if err := page.Apply(cmd); err != nil {
		if errors.Is(err, admin.ErrUnknownCommand) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return h.renderEditor(c, http.StatusUnprocessableEntity, page)
	}
	return h.renderEditor(c, http.StatusOK, page)
}

// EditorImage uploads the multipart field "file" into the kept page, as the
// featured image when "featured" is checked and otherwise into the content
// before block "at", which defaults to the end.
func (h *Handler) EditorImage(c echo.Context) error {
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

	at := page.Editor.Blocks()
	if err := echo.FormFieldBinder(c).Int("at", &at).BindError(); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "position must be a number")
	}

	f, err := readUpload(c)
	if err == nil {
		if form.Get("featured") == "on" {
			err = page.UploadFeaturedImage(ctx, f)
		} else {
			err = page.InsertImage(ctx, at, f)
		}
	} else {
		page.UploadErr = err
	}
	if err != nil {
		code, _ := uploadError(err)
		if code == http.StatusInternalServerError {
			c.Logger().Errorj(log.JSON{"msg": "editor upload", "id": page.ID(), "error": err.Error()})
		}
		return h.renderEditor(c, code, page)
	}
	return h.renderEditor(c, http.StatusOK, page)
}
