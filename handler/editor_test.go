package handler

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func editorForm(content string, extra url.Values) url.Values {
	form := url.Values{"title": {"Draft Notes"}, "content": {content}}
	for k, v := range extra {
		form[k] = v
	}
	return form
}

func TestEditorCommandsKeepHistoryAcrossRequests(t *testing.T) {
	f := newFixture(t)
	require.Equal(t, http.StatusOK, f.get(t, "/admin/posts/new", &f.admin).Code)

	rec := f.post(t, "/admin/posts/new/command", editorForm("<p>hello world</p>", url.Values{
		"command": {"bold"}, "block": {"0"}, "from": {"0"}, "to": {"5"},
	}), &f.admin)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "&lt;p&gt;&lt;strong&gt;hello&lt;/strong&gt; world&lt;/p&gt;")
	assert.Contains(t, body, "<p><strong>hello</strong> world</p>")
	assert.Contains(t, body, `value="Draft Notes"`)

	rec = f.post(t, "/admin/posts/new/command", editorForm("<p><strong>hello</strong> world</p>", url.Values{
		"command": {"undo"},
	}), &f.admin)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "&lt;p&gt;hello world&lt;/p&gt;")

	rec = f.post(t, "/admin/posts/new/command", editorForm("<p>hello world</p>", url.Values{
		"command": {"link"}, "from": {"6"}, "to": {"11"}, "href": {"example.com"},
	}), &f.admin)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.post(t, "/admin/posts/new", editorForm(`<p>hello <a href="https://example.com">world</a></p>`, nil), &f.admin)
	require.Equal(t, http.StatusFound, rec.Code)

	post, err := f.svc.PostByID(context.Background(), f.admin, mustFindID(t, f, "draft-notes"))
	require.NoError(t, err)
	require.NotNil(t, post)
	assert.Contains(t, post.Content, `href="https://example.com"`)
	assert.Contains(t, post.Content, ">world</a></p>")
}

func TestEditorCommandErrors(t *testing.T) {
	f := newFixture(t)

	rec := f.post(t, "/admin/posts/new/command", editorForm("<p>short</p>", url.Values{
		"command": {"bold"}, "block": {"7"}, "to": {"2"},
	}), &f.admin)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "Could not apply")
	assert.Contains(t, rec.Body.String(), "&lt;p&gt;short&lt;/p&gt;")

	rec = f.post(t, "/admin/posts/new/command", editorForm("<p>short</p>", url.Values{"command": {"dismiss"}}), &f.admin)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "Could not apply")

	rec = f.post(t, "/admin/posts/new/command", editorForm("<p>short</p>", url.Values{"command": {"explode"}}), &f.admin)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.post(t, "/admin/posts/new/command", editorForm("<p>short</p>", url.Values{
		"command": {"bold"}, "block": {"first"},
	}), &f.admin)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.post(t, "/admin/posts/does-not-exist/command", editorForm("<p>x</p>", url.Values{"command": {"bold"}}), &f.admin)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.post(t, "/admin/posts/new/command", editorForm("<p>x</p>", url.Values{"command": {"bold"}}), &f.reader)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestSaveErrorCanBeDismissed(t *testing.T) {
	f := newFixture(t)
	f.createPost(t, "Taken", true)

	rec := f.post(t, "/admin/posts/new", url.Values{
		"title": {"Another"}, "slug": {"taken"}, "content": {"<p>text</p>"},
	}, &f.admin)
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "Could not save")
	assert.Contains(t, rec.Body.String(), `value="dismiss"`)

	rec = f.post(t, "/admin/posts/new/command", url.Values{
		"title": {"Another"}, "slug": {"taken"}, "content": {"<p>text</p>"}, "command": {"dismiss"},
	}, &f.admin)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "Could not save")
	assert.Contains(t, rec.Body.String(), `value="Another"`)
}

func TestEditorInlineImage(t *testing.T) {
	f := newFixture(t)
	fields := editorForm("<p>keep</p>", url.Values{"at": {"0"}})

	rec := f.do(t, multipartRequest(t, "/admin/posts/new/images", fields, "notes.txt", "text/plain", []byte("hello")), &f.admin)
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Upload failed")
	assert.Contains(t, body, `value="Draft Notes"`)
	assert.Contains(t, body, "&lt;p&gt;keep&lt;/p&gt;")
	assert.NotContains(t, body, "&lt;img")

	rec = f.do(t, multipartRequest(t, "/admin/posts/new/images", fields, "", "", nil), &f.admin)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Upload failed")

	rec = f.do(t, multipartRequest(t, "/admin/posts/new/images", fields, "cover.png", "image/png", pngHeader), &f.admin)
	require.Equal(t, http.StatusOK, rec.Code)
	body = rec.Body.String()
	assert.NotContains(t, body, "Upload failed")
	assert.Contains(t, body, "&lt;img src=&#34;/uploads/")
	assert.Contains(t, body, "&lt;p&gt;keep&lt;/p&gt;")
}

func TestEditorFeaturedImage(t *testing.T) {
	f := newFixture(t)
	fields := editorForm("<p>body</p>", url.Values{"featured": {"on"}})

	rec := f.do(t, multipartRequest(t, "/admin/posts/new/images", fields, "cover.png", "image/png", pngHeader), &f.admin)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `name="featured_image" value="/uploads/`)
	assert.Contains(t, body, "Remove featured image")
	assert.NotContains(t, body, "&lt;img", "a featured image stays out of the content")

	rec = f.post(t, "/admin/posts/new/command", editorForm("<p>body</p>", url.Values{
		"featured_image": {"/uploads/cover.png"}, "command": {"clear-image"},
	}), &f.admin)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `name="featured_image" value=""`)
	assert.NotContains(t, rec.Body.String(), "Remove featured image")
}

func mustFindID(t *testing.T, f *fixture, slug string) string {
	t.Helper()
	posts, err := f.svc.AllPosts(context.Background(), f.admin)
	require.NoError(t, err)
	for _, p := range posts {
		if p.Slug == slug {
			return p.ID
		}
	}
	t.Fatalf("no post with slug %q", slug)
	return ""
}
